package httpapi

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/tapestry-labs/tapestry/internal/chapters"
	"github.com/tapestry-labs/tapestry/internal/library"
)

func (s *Server) handleListChapters(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, s.lib.Chapters())
}

func (s *Server) handleCreateChapter(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Title       string   `json:"title"`
		Description string   `json:"description"`
		MemoryIDs   []string `json:"memory_ids"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}
	chapter, err := s.assembly.Create(r.Context(), req.Title, req.Description, req.MemoryIDs)
	if err != nil {
		respondChapterError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, chapter)
}

func (s *Server) handleDeleteChapter(w http.ResponseWriter, r *http.Request) {
	if err := s.assembly.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		respondChapterError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (s *Server) handleRegenerateIntroduction(w http.ResponseWriter, r *http.Request) {
	chapter, err := s.assembly.RegenerateIntroduction(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondChapterError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, chapter)
}

func (s *Server) handleGenerateTransition(w http.ResponseWriter, r *http.Request) {
	var req struct {
		FromID string `json:"from_id"`
		ToID   string `json:"to_id"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}
	text, err := s.assembly.GenerateTransition(r.Context(), chi.URLParam(r, "id"), req.FromID, req.ToID)
	if err != nil {
		respondChapterError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"from_id": req.FromID, "transition": text})
}

func (s *Server) handleUnassigned(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, s.assembly.Unassigned())
}

func respondChapterError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, library.ErrChapterNotFound):
		respondError(w, http.StatusNotFound, "chapter_not_found", err.Error())
	case errors.Is(err, chapters.ErrUnknownMemory):
		respondError(w, http.StatusNotFound, "memory_not_found", err.Error())
	case errors.Is(err, chapters.ErrGenerationPending):
		respondError(w, http.StatusConflict, "generation_pending", err.Error())
	case errors.Is(err, chapters.ErrMemoryAssigned):
		respondError(w, http.StatusConflict, "memory_assigned", err.Error())
	default:
		respondError(w, http.StatusBadRequest, "invalid_request", err.Error())
	}
}
