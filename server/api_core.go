package main

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"trelloimport/internal/config"
	"trelloimport/internal/importer"
	"trelloimport/internal/model"
	"trelloimport/internal/store"
)

// boardStore is the read/delete side of *store.Store used by the handlers.
type boardStore interface {
	Ping(ctx context.Context) error
	ListBoards(ctx context.Context) ([]store.BoardSummary, error)
	GetBoard(ctx context.Context, id string) (model.Board, error)
	BlocksByBoard(ctx context.Context, boardID string, blockType model.BlockType) ([]model.Block, error)
	DeleteBoard(ctx context.Context, id string) error
}

type api struct {
	store    boardStore
	importer *importer.Service
	log      *slog.Logger
	bus      *EventBus
	cfg      config.Config
	// rate limiting buckets per IP:key
	rlMu      sync.Mutex
	rl        map[string]*rateBucket
	rlSweepAt time.Time
}

func newAPI(st boardStore, svc *importer.Service, cfg config.Config, log *slog.Logger) *api {
	return &api{store: st, importer: svc, cfg: cfg, log: log, bus: NewEventBus(), rl: map[string]*rateBucket{}}
}

type rateBucket struct {
	count   int
	resetAt time.Time
}

func (a *api) allow(ip, key string, max int, window time.Duration) bool {
	now := time.Now()
	rk := ip + ":" + key
	a.rlMu.Lock()
	defer a.rlMu.Unlock()
	// drop expired buckets at most once per window
	if now.After(a.rlSweepAt) {
		for k, old := range a.rl {
			if now.After(old.resetAt) {
				delete(a.rl, k)
			}
		}
		a.rlSweepAt = now.Add(window)
	}
	b, ok := a.rl[rk]
	if !ok || now.After(b.resetAt) {
		b = &rateBucket{count: 0, resetAt: now.Add(window)}
		a.rl[rk] = b
	}
	if b.count >= max {
		return false
	}
	b.count++
	return true
}

func (a *api) withRateLimit(name string, max int, window time.Duration, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if max > 0 && !a.allow(clientIP(r), name, max, window) {
			writeError(w, 429, "too many requests")
			return
		}
		next(w, r)
	}
}

func clientIP(r *http.Request) string {
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}

// readJSON decodes at most limit bytes of body into dst. Unknown fields are
// accepted: Trello exports carry far more than the importer reads.
func readJSON(w http.ResponseWriter, r *http.Request, dst any, limit int64) error {
	r.Body = http.MaxBytesReader(w, r.Body, limit)
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(dst); err != nil {
		return err
	}
	_, _ = io.Copy(io.Discard, r.Body)
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(true)
	_ = enc.Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]any{"ok": false, "error": msg})
}

func withLogging(log *slog.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sw := &statusWriter{ResponseWriter: w, status: 200}
		start := time.Now()
		next.ServeHTTP(sw, r)
		log.Info("http", "method", r.Method, "path", r.URL.Path, "status", sw.status, "dur_ms", time.Since(start).Milliseconds())
	})
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) { w.status = code; w.ResponseWriter.WriteHeader(code) }

// Implement http.Flusher if underlying writer supports it (needed for SSE)
func (w *statusWriter) Flush() {
	if f, ok := w.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}
