package main

import (
	"errors"
	"net/http"

	"trelloimport/internal/model"
	"trelloimport/internal/store"
)

func (a *api) handleListBoards(w http.ResponseWriter, r *http.Request) {
	items, err := a.store.ListBoards(r.Context())
	if err != nil {
		a.log.Error("list boards", "err", err)
		writeError(w, 500, "internal error")
		return
	}
	if items == nil {
		items = []store.BoardSummary{}
	}
	writeJSON(w, 200, items)
}

func (a *api) handleGetBoard(w http.ResponseWriter, r *http.Request) {
	b, err := a.store.GetBoard(r.Context(), r.PathValue("id"))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, 404, "not found")
			return
		}
		a.log.Error("get board", "err", err)
		writeError(w, 500, "internal error")
		return
	}
	writeJSON(w, 200, b)
}

func (a *api) handleBoardBlocks(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	blockType := model.BlockType(r.URL.Query().Get("type"))
	switch blockType {
	case "", model.BlockView, model.BlockCard, model.BlockText, model.BlockCheckbox, model.BlockComment:
	default:
		writeError(w, 400, "unknown block type")
		return
	}
	if _, err := a.store.GetBoard(r.Context(), id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, 404, "not found")
			return
		}
		a.log.Error("get board", "err", err)
		writeError(w, 500, "internal error")
		return
	}
	blocks, err := a.store.BlocksByBoard(r.Context(), id, blockType)
	if err != nil {
		a.log.Error("blocks by board", "err", err)
		writeError(w, 500, "internal error")
		return
	}
	if blocks == nil {
		blocks = []model.Block{}
	}
	writeJSON(w, 200, blocks)
}

func (a *api) handleDeleteBoard(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := a.store.DeleteBoard(r.Context(), id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, 404, "not found")
			return
		}
		a.log.Error("delete board", "err", err)
		writeError(w, 500, "internal error")
		return
	}
	writeJSON(w, 200, map[string]any{"ok": true})
	a.bus.Publish(Event{Type: "board.deleted", BoardID: id, Payload: map[string]any{"id": id}})
}

func (a *api) handleBoardEvents(w http.ResponseWriter, r *http.Request) {
	a.bus.ServeSSE(w, r, r.PathValue("id"))
}
