package main

import (
	"net/http"

	"trelloimport/internal/metrics"
)

func (a *api) routes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/health", a.handleHealth)

	mux.HandleFunc("POST /api/imports/trello", a.withRateLimit("import", a.cfg.ImportRateLimit, a.cfg.ImportRateWindow, a.handleImportTrello))
	mux.HandleFunc("POST /api/imports/trello/preview", a.withRateLimit("import", a.cfg.ImportRateLimit, a.cfg.ImportRateWindow, a.handleImportPreview))

	mux.HandleFunc("GET /api/boards", a.handleListBoards)
	mux.HandleFunc("GET /api/boards/{id}", a.handleGetBoard)
	mux.HandleFunc("GET /api/boards/{id}/blocks", a.handleBoardBlocks)
	mux.HandleFunc("GET /api/boards/{id}/events", a.handleBoardEvents)
	mux.HandleFunc("DELETE /api/boards/{id}", a.handleDeleteBoard)

	mux.Handle("GET /metrics", metrics.Handler())
}
