// Package store persists imported boards and blocks in PostgreSQL.
package store

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"

	"trelloimport/internal/guid"
	"trelloimport/internal/model"
	"trelloimport/internal/trello"
	"trelloimport/internal/username"
)

var ErrNotFound = errors.New("not found")

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store { return &Store{db: db} }

func (s *Store) Ping(ctx context.Context) error { return s.db.PingContext(ctx) }

func (s *Store) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, schema)
	return err
}

// BoardSummary is a board row without its property templates.
type BoardSummary struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}

// SaveImport writes boards and then blocks, in order, in one transaction.
func (s *Store) SaveImport(ctx context.Context, boards []model.Board, blocks []model.Block) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	for _, b := range boards {
		props, err := json.Marshal(b.CardProperties)
		if err != nil {
			return fmt.Errorf("encode properties of board %s: %w", b.ID, err)
		}
		if _, err := tx.ExecContext(ctx,
			`insert into boards(id, title, description, card_properties) values($1,$2,$3,$4)`,
			b.ID, b.Title, b.Description, props); err != nil {
			return fmt.Errorf("insert board %s: %w", b.ID, err)
		}
	}

	stmt, err := tx.PrepareContext(ctx, `insert into blocks(id, board_id, parent_id, type, title, fields,
		created_by, modified_by, create_at, update_at, delete_at) values($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)`)
	if err != nil {
		return err
	}
	defer stmt.Close()
	for _, b := range blocks {
		fields, err := json.Marshal(b.Fields)
		if err != nil {
			return fmt.Errorf("encode fields of block %s: %w", b.ID, err)
		}
		if _, err := stmt.ExecContext(ctx, b.ID, b.BoardID, b.ParentID, string(b.Type), b.Title, fields,
			b.CreatedBy, b.ModifiedBy, b.CreateAt, b.UpdateAt, b.DeleteAt); err != nil {
			return fmt.Errorf("insert block %s: %w", b.ID, err)
		}
	}
	return tx.Commit()
}

func (s *Store) ListBoards(ctx context.Context) ([]BoardSummary, error) {
	rows, err := s.db.QueryContext(ctx, `select id, title, description, created_at from boards order by created_at, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []BoardSummary
	for rows.Next() {
		var b BoardSummary
		if err := rows.Scan(&b.ID, &b.Title, &b.Description, &b.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

func (s *Store) GetBoard(ctx context.Context, id string) (model.Board, error) {
	var b model.Board
	var props []byte
	err := s.db.QueryRowContext(ctx, `select id, title, description, card_properties from boards where id=$1`, id).
		Scan(&b.ID, &b.Title, &b.Description, &props)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Board{}, ErrNotFound
	}
	if err != nil {
		return model.Board{}, err
	}
	if err := json.Unmarshal(props, &b.CardProperties); err != nil {
		return model.Board{}, fmt.Errorf("decode properties of board %s: %w", id, err)
	}
	return b, nil
}

// BlocksByBoard returns the board's blocks in insertion order. An empty
// blockType returns every type.
func (s *Store) BlocksByBoard(ctx context.Context, boardID string, blockType model.BlockType) ([]model.Block, error) {
	rows, err := s.db.QueryContext(ctx,
		`select id, board_id, parent_id, type, title, fields, created_by, modified_by, create_at, update_at, delete_at
		 from blocks where board_id=$1 and ($2::text = '' or type = $2::text) order by seq`, boardID, string(blockType))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.Block
	for rows.Next() {
		var b model.Block
		var typ string
		var fields []byte
		if err := rows.Scan(&b.ID, &b.BoardID, &b.ParentID, &typ, &b.Title, &fields,
			&b.CreatedBy, &b.ModifiedBy, &b.CreateAt, &b.UpdateAt, &b.DeleteAt); err != nil {
			return nil, err
		}
		b.Type = model.BlockType(typ)
		if err := json.Unmarshal(fields, &b.Fields); err != nil {
			return nil, fmt.Errorf("decode fields of block %s: %w", b.ID, err)
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

func (s *Store) DeleteBoard(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `delete from boards where id=$1`, id)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// EnsureMember returns the internal user linked to a Trello member. On first
// sight it links the member to the imported user owning the derived username,
// creating an inactive one when needed. Accounts not created by an import are
// never linked.
func (s *Store) EnsureMember(ctx context.Context, m trello.Member) (string, error) {
	var userID string
	err := s.db.QueryRowContext(ctx, `select user_id from trello_members where trello_id=$1`, m.ID).Scan(&userID)
	switch {
	case err == nil:
		return userID, nil
	case !errors.Is(err, sql.ErrNoRows):
		return "", err
	}

	name := username.MakeUsername(m.Username, m.FullName)
	if name == "" {
		name = m.ID
	}
	hash, err := placeholderPasswordHash()
	if err != nil {
		return "", err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", err
	}
	defer func() { _ = tx.Rollback() }()

	if userID, err = importedUser(ctx, tx, name, m.FullName, hash); err != nil {
		return "", err
	}
	if _, err = tx.ExecContext(ctx, `insert into trello_members(trello_id, user_id) values($1,$2)
		on conflict (trello_id) do nothing`, m.ID, userID); err != nil {
		return "", err
	}
	// a concurrent import may have linked the member first
	if err = tx.QueryRowContext(ctx, `select user_id from trello_members where trello_id=$1`, m.ID).Scan(&userID); err != nil {
		return "", err
	}
	if err = tx.Commit(); err != nil {
		return "", err
	}
	return userID, nil
}

// maxUsernameSuffix bounds the name-2, name-3, ... search in importedUser.
const maxUsernameSuffix = 100

// importedUser returns the imported user owning name, creating it when the
// name is free. Names held by accounts that were not created by an import
// are never reused; the next free name-N is taken instead.
func importedUser(ctx context.Context, tx *sql.Tx, name, fullName, hash string) (string, error) {
	lookup := func(candidate string) (id string, imported, found bool, err error) {
		err = tx.QueryRowContext(ctx, `select id, imported from users where username=$1`, candidate).Scan(&id, &imported)
		if errors.Is(err, sql.ErrNoRows) {
			return "", false, false, nil
		}
		return id, imported, err == nil, err
	}

	for i := 1; i <= maxUsernameSuffix; i++ {
		candidate := name
		if i > 1 {
			candidate = fmt.Sprintf("%s-%d", name, i)
		}
		id, imported, found, err := lookup(candidate)
		if err != nil {
			return "", err
		}
		if !found {
			err = tx.QueryRowContext(ctx, `insert into users(id, username, name, password_hash, is_active, imported)
				values($1,$2,$3,$4,false,true) on conflict (username) do nothing returning id`,
				guid.New(), candidate, fullName, hash).Scan(&id)
			if err == nil {
				return id, nil
			}
			if !errors.Is(err, sql.ErrNoRows) {
				return "", err
			}
			// taken concurrently
			if id, imported, found, err = lookup(candidate); err != nil {
				return "", err
			}
		}
		if found && imported {
			return id, nil
		}
	}
	return "", fmt.Errorf("no free username for %q", name)
}

// UserByUsername returns the user id and active flag for a username.
func (s *Store) UserByUsername(ctx context.Context, name string) (string, bool, error) {
	var id string
	var active bool
	err := s.db.QueryRowContext(ctx, `select id, is_active from users where username=$1`, name).Scan(&id, &active)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, ErrNotFound
	}
	return id, active, err
}

// Imported users cannot log in until they reset this random password.
func placeholderPasswordHash() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(base64.RawURLEncoding.EncodeToString(b)), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

const schema = `
create table if not exists boards(
    id text primary key,
    title text not null default '',
    description text not null default '',
    card_properties jsonb not null default '[]',
    created_at timestamptz not null default now()
);
create table if not exists blocks(
    seq bigserial,
    id text primary key,
    board_id text not null references boards(id) on delete cascade,
    parent_id text not null default '',
    type text not null,
    title text not null default '',
    fields jsonb not null default '{}',
    created_by text not null default '',
    modified_by text not null default '',
    create_at bigint not null default 0,
    update_at bigint not null default 0,
    delete_at bigint not null default 0
);
create index if not exists blocks_board_idx on blocks(board_id, seq);
create index if not exists blocks_parent_idx on blocks(parent_id);

create table if not exists users(
    id text primary key,
    username text unique not null,
    name text not null default '',
    password_hash text not null default '',
    is_active boolean not null default true,
    imported boolean not null default false,
    created_at timestamptz not null default now()
);
alter table users add column if not exists imported boolean not null default false;
create table if not exists trello_members(
    trello_id text primary key,
    user_id text not null references users(id) on delete cascade,
    created_at timestamptz not null default now()
);
`
