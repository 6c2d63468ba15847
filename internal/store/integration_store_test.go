package store

import (
	"context"
	"database/sql"
	"flag"
	"io"
	"log"
	"log/slog"
	"os"
	"testing"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"trelloimport/internal/guid"
	"trelloimport/internal/model"
	"trelloimport/internal/trello"
)

var testStore *Store

func TestMain(m *testing.M) {
	flag.Parse()
	if testing.Short() {
		os.Exit(m.Run())
	}

	ctx := context.Background()
	container, err := postgres.Run(ctx,
		"postgres:15.3-alpine",
		postgres.WithDatabase("trelloimport"),
		postgres.WithUsername("user"),
		postgres.WithPassword("password"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	if err != nil {
		log.Fatalf("failed to start container: %s", err)
	}
	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		log.Fatalf("failed to obtain connection string: %s", err)
	}
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		log.Fatalf("failed to open db: %s", err)
	}
	testStore = New(db)
	if err := testStore.Migrate(ctx); err != nil {
		log.Fatalf("failed to migrate: %s", err)
	}

	code := m.Run()

	_ = db.Close()
	if err := container.Terminate(ctx); err != nil {
		log.Printf("failed to terminate container: %s", err)
	}
	os.Exit(code)
}

func requireDB(t *testing.T) {
	t.Helper()
	if testStore == nil {
		t.Skip("postgres integration tests disabled in -short mode")
	}
}

func convertSample(t *testing.T) ([]model.Board, []model.Block) {
	t.Helper()
	in := &trello.Board{
		Name:  "Integration",
		Lists: []trello.List{{ID: "l1", Name: "Doing"}},
		Cards: []trello.Card{{ID: "c1", Name: "Card", Desc: "body", IDList: "l1", IDChecklists: []string{"ch"}}},
		Checklists: []trello.Checklist{{ID: "ch", CheckItems: []trello.CheckItem{
			{Name: "a", State: trello.CheckItemComplete},
		}}},
	}
	conv := trello.NewConverter(guid.New, slog.New(slog.NewTextHandler(io.Discard, nil)))
	return conv.Convert(in, nil, &trello.Collector{})
}

func TestIntegrationSaveAndLoad(t *testing.T) {
	requireDB(t)
	ctx := context.Background()
	boards, blocks := convertSample(t)

	require.NoError(t, testStore.SaveImport(ctx, boards, blocks))

	got, err := testStore.GetBoard(ctx, boards[0].ID)
	require.NoError(t, err)
	assert.Equal(t, boards[0], got)

	stored, err := testStore.BlocksByBoard(ctx, boards[0].ID, "")
	require.NoError(t, err)
	assert.Equal(t, blocks, stored)

	cards, err := testStore.BlocksByBoard(ctx, boards[0].ID, model.BlockCard)
	require.NoError(t, err)
	require.Len(t, cards, 1)
	assert.Equal(t, "Card", cards[0].Title)

	summaries, err := testStore.ListBoards(ctx)
	require.NoError(t, err)
	assert.NotEmpty(t, summaries)
}

func TestIntegrationSaveImportIsAtomic(t *testing.T) {
	requireDB(t)
	ctx := context.Background()
	boards, blocks := convertSample(t)
	blocks = append(blocks, blocks[0]) // duplicate primary key

	require.Error(t, testStore.SaveImport(ctx, boards, blocks))
	_, err := testStore.GetBoard(ctx, boards[0].ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestIntegrationDeleteBoardCascades(t *testing.T) {
	requireDB(t)
	ctx := context.Background()
	boards, blocks := convertSample(t)
	require.NoError(t, testStore.SaveImport(ctx, boards, blocks))

	require.NoError(t, testStore.DeleteBoard(ctx, boards[0].ID))
	left, err := testStore.BlocksByBoard(ctx, boards[0].ID, "")
	require.NoError(t, err)
	assert.Empty(t, left)
	assert.ErrorIs(t, testStore.DeleteBoard(ctx, boards[0].ID), ErrNotFound)
}

func TestIntegrationEnsureMember(t *testing.T) {
	requireDB(t)
	ctx := context.Background()

	id, err := testStore.EnsureMember(ctx, trello.Member{ID: "tm-1", Username: "user4411", FullName: "Ada Lovelace"})
	require.NoError(t, err)

	again, err := testStore.EnsureMember(ctx, trello.Member{ID: "tm-1", Username: "user4411", FullName: "Ada Lovelace"})
	require.NoError(t, err)
	assert.Equal(t, id, again)

	userID, active, err := testStore.UserByUsername(ctx, "ada-lovelace")
	require.NoError(t, err)
	assert.Equal(t, id, userID)
	assert.False(t, active)

	// a second Trello account with the same derived username maps to the same user
	other, err := testStore.EnsureMember(ctx, trello.Member{ID: "tm-2", Username: "user9", FullName: "Ada  Lovelace"})
	require.NoError(t, err)
	assert.Equal(t, id, other)
}

func TestIntegrationEnsureMemberSkipsRegularAccounts(t *testing.T) {
	requireDB(t)
	ctx := context.Background()

	_, err := testStore.db.ExecContext(ctx,
		`insert into users(id, username, name, password_hash, is_active) values('real-admin','admin','Admin','x',true)`)
	require.NoError(t, err)

	id, err := testStore.EnsureMember(ctx, trello.Member{ID: "tm-admin", Username: "admin", FullName: "Mallory"})
	require.NoError(t, err)
	assert.NotEqual(t, "real-admin", id)

	userID, active, err := testStore.UserByUsername(ctx, "admin-2")
	require.NoError(t, err)
	assert.Equal(t, id, userID)
	assert.False(t, active)

	// another member claiming the same name reuses the imported account
	again, err := testStore.EnsureMember(ctx, trello.Member{ID: "tm-admin-2", Username: "admin", FullName: "Mallory"})
	require.NoError(t, err)
	assert.Equal(t, id, again)
}
