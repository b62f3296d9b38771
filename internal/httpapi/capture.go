package httpapi

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/tapestry-labs/tapestry/internal/capture"
	"github.com/tapestry-labs/tapestry/internal/scribe"
)

func (s *Server) handleCreateCapture(w http.ResponseWriter, _ *http.Request) {
	sess := s.capture.Create()
	respondJSON(w, http.StatusCreated, sess)
}

func (s *Server) handleGetCapture(w http.ResponseWriter, r *http.Request) {
	sess, err := s.capture.Get(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusNotFound, "session_not_found", err.Error())
		return
	}
	respondJSON(w, http.StatusOK, sess)
}

func (s *Server) handleEndCapture(w http.ResponseWriter, r *http.Request) {
	if err := s.capture.End(chi.URLParam(r, "id")); err != nil {
		respondError(w, http.StatusNotFound, "session_not_found", err.Error())
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "ended"})
}

func (s *Server) handleSelectCategory(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Category string `json:"category"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}
	sess, err := s.capture.SelectCategory(chi.URLParam(r, "id"), req.Category)
	if err != nil {
		respondCaptureError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, sess)
}

func (s *Server) handleBeginCustomPrompt(w http.ResponseWriter, r *http.Request) {
	sess, err := s.capture.BeginCustomPrompt(chi.URLParam(r, "id"))
	if err != nil {
		respondCaptureError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, sess)
}

func (s *Server) handleSubmitCustomPrompt(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Prompt string `json:"prompt"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}
	sess, err := s.capture.SubmitCustomPrompt(chi.URLParam(r, "id"), req.Prompt)
	if err != nil {
		respondCaptureError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, sess)
}

func (s *Server) handleCancelCustomPrompt(w http.ResponseWriter, r *http.Request) {
	sess, err := s.capture.CancelCustomPrompt(chi.URLParam(r, "id"))
	if err != nil {
		respondCaptureError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, sess)
}

func (s *Server) handleReroll(w http.ResponseWriter, r *http.Request) {
	sess, err := s.capture.Reroll(chi.URLParam(r, "id"))
	if err != nil {
		respondCaptureError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, sess)
}

func (s *Server) handleStartOver(w http.ResponseWriter, r *http.Request) {
	sess, err := s.capture.StartOver(chi.URLParam(r, "id"))
	if err != nil {
		respondCaptureError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, sess)
}

func (s *Server) handleSubmitResponse(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Response string `json:"response"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}
	sess, err := s.capture.SubmitResponse(chi.URLParam(r, "id"), req.Response)
	if err != nil {
		respondCaptureError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, sess)
}

func (s *Server) handleSubmitFollowUps(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Answers            []string `json:"answers"`
		AdditionalThoughts string   `json:"additional_thoughts"`
	}
	if err := decodeJSON(r, &req); err != nil && !errors.Is(err, errEmptyBody) {
		respondError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}
	sess, err := s.capture.SubmitFollowUps(chi.URLParam(r, "id"), req.Answers, req.AdditionalThoughts)
	if err != nil {
		respondCaptureError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, sess)
}

func (s *Server) handleSetDetails(w http.ResponseWriter, r *http.Request) {
	var req struct {
		MemoryDate string   `json:"memory_date"`
		Emotions   []string `json:"emotions"`
		People     []string `json:"people"`
		Tags       []string `json:"tags"`
	}
	if err := decodeJSON(r, &req); err != nil && !errors.Is(err, errEmptyBody) {
		respondError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	var memoryDate *time.Time
	if strings.TrimSpace(req.MemoryDate) != "" {
		d, err := time.Parse("2006-01-02", req.MemoryDate)
		if err != nil {
			respondError(w, http.StatusBadRequest, "invalid_date", "memory_date must be YYYY-MM-DD")
			return
		}
		memoryDate = &d
	}

	sess, err := s.capture.SetDetails(chi.URLParam(r, "id"), memoryDate, req.Emotions, req.People, req.Tags)
	if err != nil {
		respondCaptureError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, sess)
}

// handleDraft runs the full draft round-trip: reserve the session, ask the
// scribe, store the result. The scribe always returns usable text, falling
// back to the fixed passage when generation is unavailable.
func (s *Server) handleDraft(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Tone string `json:"tone"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	id := chi.URLParam(r, "id")
	prompt, fullResponse, err := s.capture.BeginDraft(id, req.Tone)
	if err != nil {
		respondCaptureError(w, err)
		return
	}

	text, fromFallback := s.scribe.Draft(r.Context(), scribe.DraftRequest{
		Prompt:   prompt,
		Response: fullResponse,
		Tone:     req.Tone,
	})

	sess, err := s.capture.CompleteDraft(id, text, fromFallback)
	if err != nil {
		respondCaptureError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, sess)
}

func (s *Server) handleSetReflection(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Reflection string `json:"reflection"`
	}
	if err := decodeJSON(r, &req); err != nil && !errors.Is(err, errEmptyBody) {
		respondError(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}
	sess, err := s.capture.SetReflection(chi.URLParam(r, "id"), req.Reflection)
	if err != nil {
		respondCaptureError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, sess)
}

func (s *Server) handleSaveCapture(w http.ResponseWriter, r *http.Request) {
	sess, err := s.capture.Save(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondCaptureError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, sess)
}

func (s *Server) handleAmendCapture(w http.ResponseWriter, r *http.Request) {
	sess, err := s.capture.Amend(chi.URLParam(r, "id"))
	if err != nil {
		respondCaptureError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, sess)
}

func respondCaptureError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, capture.ErrNotFound):
		respondError(w, http.StatusNotFound, "session_not_found", err.Error())
	case errors.Is(err, capture.ErrWrongState):
		respondError(w, http.StatusConflict, "wrong_state", err.Error())
	case errors.Is(err, capture.ErrGenerationPending):
		respondError(w, http.StatusConflict, "generation_pending", err.Error())
	default:
		respondError(w, http.StatusBadRequest, "invalid_request", err.Error())
	}
}
