package httpapi

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/tapestry-labs/tapestry/internal/hub"
	"github.com/tapestry-labs/tapestry/internal/library"
	"github.com/tapestry-labs/tapestry/internal/memoir"
)

type viewState struct {
	Filters  hub.Filters `json:"filters"`
	Order    hub.Order   `json:"order"`
	Page     int         `json:"page"`
	PageSize int         `json:"page_size"`
}

func (s *Server) handleGetView(w http.ResponseWriter, _ *http.Request) {
	page := s.view.Current()
	respondJSON(w, http.StatusOK, viewState{
		Filters:  s.view.Filters(),
		Order:    s.view.Order(),
		Page:     page.Number,
		PageSize: page.Size,
	})
}

// handleUpdateView applies any combination of filter, order, page, and page
// size changes. Filter, order, and page-size changes snap back to page one;
// an explicit page in the same request then wins.
func (s *Server) handleUpdateView(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Filters  *hub.Filters `json:"filters"`
		Order    *hub.Order   `json:"order"`
		Page     *int         `json:"page"`
		PageSize *int         `json:"page_size"`
	}
	if err := decodeJSON(r, &req); err != nil && !errors.Is(err, errEmptyBody) {
		respondError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}
	if req.Filters != nil {
		s.view.SetFilters(*req.Filters)
	}
	if req.Order != nil {
		s.view.SetOrder(*req.Order)
	}
	if req.PageSize != nil {
		s.view.SetPageSize(*req.PageSize)
	}
	if req.Page != nil {
		s.view.SetPage(*req.Page)
	}
	respondJSON(w, http.StatusOK, s.view.Current())
}

func (s *Server) handleListMemories(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, s.view.Current())
}

func (s *Server) handleAggregates(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, s.view.Aggregates())
}

func (s *Server) handleBeginEdit(w http.ResponseWriter, r *http.Request) {
	m, err := s.view.BeginEdit(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusNotFound, "memory_not_found", err.Error())
		return
	}
	respondJSON(w, http.StatusOK, m)
}

func (s *Server) handleCancelEdit(w http.ResponseWriter, _ *http.Request) {
	s.view.CancelEdit()
	respondJSON(w, http.StatusOK, map[string]string{"status": "cancelled"})
}

func (s *Server) handleSaveEdit(w http.ResponseWriter, r *http.Request) {
	var m memoir.Memory
	if err := decodeJSON(r, &m); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}
	m.ID = chi.URLParam(r, "id")
	if err := s.view.SaveEdit(r.Context(), m); err != nil {
		respondHubError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "saved"})
}

func (s *Server) handleRequestDelete(w http.ResponseWriter, r *http.Request) {
	if err := s.view.RequestDelete(chi.URLParam(r, "id")); err != nil {
		respondHubError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "pending"})
}

func (s *Server) handleConfirmDelete(w http.ResponseWriter, r *http.Request) {
	if err := s.view.ConfirmDelete(r.Context(), chi.URLParam(r, "id")); err != nil {
		respondHubError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (s *Server) handleCancelDelete(w http.ResponseWriter, _ *http.Request) {
	s.view.CancelDelete()
	respondJSON(w, http.StatusOK, map[string]string{"status": "cancelled"})
}

func respondHubError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, library.ErrMemoryNotFound):
		respondError(w, http.StatusNotFound, "memory_not_found", err.Error())
	case errors.Is(err, hub.ErrNotEditing), errors.Is(err, hub.ErrNoPendingDelete):
		respondError(w, http.StatusConflict, "wrong_state", err.Error())
	default:
		respondError(w, http.StatusBadRequest, "invalid_request", err.Error())
	}
}
