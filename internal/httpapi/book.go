package httpapi

import (
	"fmt"
	"net/http"

	"github.com/tapestry-labs/tapestry/internal/book"
)

func (s *Server) currentIntent() book.Intent {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.intent
}

func (s *Server) handleSetIntent(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Intent book.Intent `json:"intent"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}
	switch req.Intent {
	case book.IntentMakeSense, book.IntentLeaveLegacy, book.IntentExploreMemories, "":
	default:
		respondError(w, http.StatusBadRequest, "invalid_intent", "unknown intent")
		return
	}

	s.mu.Lock()
	s.intent = req.Intent
	s.mu.Unlock()

	respondJSON(w, http.StatusOK, map[string]string{"title": req.Intent.Title()})
}

func (s *Server) handleRenderBook(w http.ResponseWriter, _ *http.Request) {
	b := book.Render(s.currentIntent(), s.lib.Chapters(), s.lib.Memories())
	respondJSON(w, http.StatusOK, b)
}

func (s *Server) handleExportBook(w http.ResponseWriter, _ *http.Request) {
	b := book.Render(s.currentIntent(), s.lib.Chapters(), s.lib.Memories())
	text := book.Export(b)

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=%q", book.ExportFilename(b)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(text))
}
