package main

import (
	"context"
	"net/http"
	"time"
)

// handleHealth answers 503 while the database is unreachable.
func (a *api) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()
	ts := time.Now().UTC().Format(time.RFC3339)
	if err := a.store.Ping(ctx); err != nil {
		a.log.Error("health ping", "err", err)
		writeJSON(w, 503, map[string]any{"ok": false, "db": "down", "ts": ts})
		return
	}
	writeJSON(w, 200, map[string]any{"ok": true, "db": "up", "ts": ts})
}
