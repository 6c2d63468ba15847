package trello

import (
	"context"
	"log/slog"
	"sync"
)

type WarningKind string

const (
	WarnMissingList      WarningKind = "missing_list"
	WarnUnknownList      WarningKind = "unknown_list"
	WarnUnknownLabel     WarningKind = "unknown_label"
	WarnUnknownMember    WarningKind = "unknown_member"
	WarnUnknownChecklist WarningKind = "unknown_checklist"
	WarnUnknownField     WarningKind = "unknown_custom_field"
	WarnBadDate          WarningKind = "bad_date"
)

// Warning describes a reference the converter could not resolve. The
// offending value is left out of the output.
type Warning struct {
	Kind     WarningKind `json:"kind"`
	CardID   string      `json:"card_id,omitempty"`
	CardName string      `json:"card_name,omitempty"`
	Ref      string      `json:"ref,omitempty"`
	Message  string      `json:"message"`
}

// Sink receives converter warnings.
type Sink interface {
	Warn(w Warning)
}

// LogSink writes each warning to a slog logger.
type LogSink struct {
	Log *slog.Logger
}

func (s LogSink) Warn(w Warning) {
	s.Log.LogAttrs(context.Background(), slog.LevelWarn, w.Message,
		slog.String("kind", string(w.Kind)),
		slog.String("card_id", w.CardID),
		slog.String("card", w.CardName),
		slog.String("ref", w.Ref),
	)
}

// Collector keeps warnings in memory and optionally forwards them.
type Collector struct {
	Next Sink

	mu       sync.Mutex
	warnings []Warning
}

func (c *Collector) Warn(w Warning) {
	c.mu.Lock()
	c.warnings = append(c.warnings, w)
	c.mu.Unlock()
	if c.Next != nil {
		c.Next.Warn(w)
	}
}

func (c *Collector) Warnings() []Warning {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Warning(nil), c.warnings...)
}
