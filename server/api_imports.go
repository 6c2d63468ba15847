package main

import (
	"errors"
	"net/http"

	"trelloimport/internal/trello"
)

func (a *api) handleImportTrello(w http.ResponseWriter, r *http.Request) {
	var export trello.Board
	if err := readJSON(w, r, &export, a.cfg.ImportMaxBytes); err != nil {
		a.log.Error("decode trello export", "err", err)
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			writeError(w, 413, "export too large")
			return
		}
		writeError(w, 400, "invalid payload")
		return
	}
	res, err := a.importer.Import(r.Context(), &export)
	if err != nil {
		if errors.Is(err, trello.ErrInvalidExport) {
			writeError(w, 400, err.Error())
			return
		}
		a.log.Error("import trello board", "err", err)
		writeError(w, 500, "internal error")
		return
	}
	writeJSON(w, 201, res)
	a.bus.Publish(Event{Type: "import.completed", BoardID: res.BoardID, Payload: res})
}

// handleImportPreview converts an export with a caller supplied member map
// and returns the blocks without storing anything.
func (a *api) handleImportPreview(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Board   *trello.Board     `json:"board"`
		Members map[string]string `json:"members"`
	}
	if err := readJSON(w, r, &req, a.cfg.ImportMaxBytes); err != nil || req.Board == nil {
		if err != nil {
			a.log.Error("decode preview", "err", err)
		}
		writeError(w, 400, "invalid payload")
		return
	}
	conv, err := a.importer.Convert(req.Board, req.Members)
	if err != nil {
		writeError(w, 400, err.Error())
		return
	}
	writeJSON(w, 200, conv)
}
