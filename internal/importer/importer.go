// Package importer runs a Trello export through member reconciliation, the
// converter and the store.
package importer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"trelloimport/internal/metrics"
	"trelloimport/internal/model"
	"trelloimport/internal/trello"
)

// Store is the persistence the importer needs. *store.Store implements it.
type Store interface {
	EnsureMember(ctx context.Context, m trello.Member) (string, error)
	SaveImport(ctx context.Context, boards []model.Board, blocks []model.Block) error
}

type Service struct {
	store     Store
	converter *trello.Converter
	log       *slog.Logger
}

func New(store Store, converter *trello.Converter, log *slog.Logger) *Service {
	return &Service{store: store, converter: converter, log: log}
}

// Result summarises a finished import.
type Result struct {
	BoardID  string                  `json:"board_id"`
	Title    string                  `json:"title"`
	Blocks   map[model.BlockType]int `json:"blocks"`
	Members  int                     `json:"members"`
	Warnings []trello.Warning        `json:"warnings"`
}

// Conversion is the in-memory output of Convert.
type Conversion struct {
	Boards   []model.Board    `json:"boards"`
	Blocks   []model.Block    `json:"blocks"`
	Warnings []trello.Warning `json:"warnings"`
}

// Convert validates the export and converts it without touching the store.
func (s *Service) Convert(export *trello.Board, memberIDs map[string]string) (Conversion, error) {
	if err := trello.Validate(export); err != nil {
		return Conversion{}, err
	}
	sink := &trello.Collector{Next: trello.LogSink{Log: s.log}}
	boards, blocks := s.converter.Convert(export, memberIDs, sink)
	return Conversion{Boards: boards, Blocks: blocks, Warnings: sink.Warnings()}, nil
}

// Import reconciles the export's members with internal users, converts the
// board and stores the result.
func (s *Service) Import(ctx context.Context, export *trello.Board) (Result, error) {
	res, err := s.runImport(ctx, export)
	switch {
	case err == nil:
		metrics.RecordImport(metrics.ResultOK)
	case errors.Is(err, trello.ErrInvalidExport):
		metrics.RecordImport(metrics.ResultInvalid)
	default:
		metrics.RecordImport(metrics.ResultError)
	}
	return res, err
}

func (s *Service) runImport(ctx context.Context, export *trello.Board) (Result, error) {
	if err := trello.Validate(export); err != nil {
		return Result{}, err
	}
	memberIDs, err := s.ResolveMembers(ctx, export)
	if err != nil {
		return Result{}, fmt.Errorf("resolve members: %w", err)
	}

	conv, err := s.Convert(export, memberIDs)
	if err != nil {
		return Result{}, err
	}
	if err := s.store.SaveImport(ctx, conv.Boards, conv.Blocks); err != nil {
		return Result{}, fmt.Errorf("save import: %w", err)
	}

	res := Result{
		BoardID:  conv.Boards[0].ID,
		Title:    conv.Boards[0].Title,
		Blocks:   map[model.BlockType]int{},
		Members:  len(memberIDs),
		Warnings: conv.Warnings,
	}
	if res.Warnings == nil {
		res.Warnings = []trello.Warning{}
	}
	for _, b := range conv.Blocks {
		res.Blocks[b.Type]++
	}
	for typ, n := range res.Blocks {
		metrics.RecordBlocks(string(typ), n)
	}
	for _, w := range res.Warnings {
		metrics.RecordWarning(string(w.Kind))
	}
	s.log.Info("trello import stored", "board_id", res.BoardID, "title", res.Title, "blocks", len(conv.Blocks), "warnings", len(res.Warnings))
	return res, nil
}

// ResolveMembers maps every member listed in the export that cards or
// actions refer to onto an internal user id. Members referenced but not
// listed stay unresolved and surface as converter warnings.
func (s *Service) ResolveMembers(ctx context.Context, export *trello.Board) (map[string]string, error) {
	listed := make(map[string]trello.Member, len(export.Members))
	for _, m := range export.Members {
		listed[m.ID] = m
	}
	out := map[string]string{}
	for _, id := range export.ReferencedMembers() {
		m, ok := listed[id]
		if !ok {
			s.log.Debug("member not listed in export", "member_id", id)
			continue
		}
		userID, err := s.store.EnsureMember(ctx, m)
		if err != nil {
			return nil, fmt.Errorf("member %s: %w", id, err)
		}
		out[id] = userID
	}
	return out, nil
}
