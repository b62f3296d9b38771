package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strings"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/tapestry-labs/tapestry/internal/book"
	"github.com/tapestry-labs/tapestry/internal/capture"
	"github.com/tapestry-labs/tapestry/internal/chapters"
	"github.com/tapestry-labs/tapestry/internal/config"
	"github.com/tapestry-labs/tapestry/internal/hub"
	"github.com/tapestry-labs/tapestry/internal/library"
	"github.com/tapestry-labs/tapestry/internal/observability"
	"github.com/tapestry-labs/tapestry/internal/scribe"
)

type Server struct {
	cfg      config.Config
	capture  *capture.Manager
	view     *hub.View
	assembly *chapters.Assembly
	lib      *library.Library
	scribe   *scribe.Scribe
	metrics  *observability.Metrics
	events   *Broadcaster
	upgrader websocket.Upgrader

	mu     sync.Mutex
	intent book.Intent
}

func New(cfg config.Config, cap *capture.Manager, view *hub.View, assembly *chapters.Assembly, lib *library.Library, sc *scribe.Scribe, metrics *observability.Metrics) *Server {
	return &Server{
		cfg:      cfg,
		capture:  cap,
		view:     view,
		assembly: assembly,
		lib:      lib,
		scribe:   sc,
		metrics:  metrics,
		events:   NewBroadcaster(metrics),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				// Only allow browser websocket connections from the same
				// origin unless explicitly opened up.
				if cfg.AllowAnyOrigin {
					return true
				}
				origin := strings.TrimSpace(r.Header.Get("Origin"))
				if origin == "" {
					// Non-browser clients often omit Origin. Allow them.
					return true
				}
				u, err := url.Parse(origin)
				if err != nil {
					return false
				}
				if u.Scheme != "http" && u.Scheme != "https" {
					return false
				}
				return strings.EqualFold(u.Host, r.Host)
			},
		},
	}
}

// Events exposes the change-feed broadcaster so the library's notify hook
// can be wired to it.
func (s *Server) Events() *Broadcaster {
	return s.events
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Get("/healthz", s.handleHealth)
	r.Get("/readyz", s.handleReady)
	r.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
		observability.MetricsHandler().ServeHTTP(w, r)
	})

	r.Post("/v1/capture/sessions", s.handleCreateCapture)
	r.Get("/v1/capture/sessions/{id}", s.handleGetCapture)
	r.Delete("/v1/capture/sessions/{id}", s.handleEndCapture)
	r.Post("/v1/capture/sessions/{id}/category", s.handleSelectCategory)
	r.Post("/v1/capture/sessions/{id}/custom-prompt/begin", s.handleBeginCustomPrompt)
	r.Post("/v1/capture/sessions/{id}/custom-prompt", s.handleSubmitCustomPrompt)
	r.Post("/v1/capture/sessions/{id}/custom-prompt/cancel", s.handleCancelCustomPrompt)
	r.Post("/v1/capture/sessions/{id}/reroll", s.handleReroll)
	r.Post("/v1/capture/sessions/{id}/start-over", s.handleStartOver)
	r.Post("/v1/capture/sessions/{id}/response", s.handleSubmitResponse)
	r.Post("/v1/capture/sessions/{id}/follow-ups", s.handleSubmitFollowUps)
	r.Post("/v1/capture/sessions/{id}/details", s.handleSetDetails)
	r.Post("/v1/capture/sessions/{id}/draft", s.handleDraft)
	r.Post("/v1/capture/sessions/{id}/reflection", s.handleSetReflection)
	r.Post("/v1/capture/sessions/{id}/save", s.handleSaveCapture)
	r.Post("/v1/capture/sessions/{id}/amend", s.handleAmendCapture)

	r.Get("/v1/view", s.handleGetView)
	r.Put("/v1/view", s.handleUpdateView)
	r.Get("/v1/memories", s.handleListMemories)
	r.Get("/v1/memories/aggregates", s.handleAggregates)
	r.Post("/v1/memories/{id}/edit", s.handleBeginEdit)
	r.Post("/v1/memories/{id}/edit/cancel", s.handleCancelEdit)
	r.Put("/v1/memories/{id}", s.handleSaveEdit)
	r.Post("/v1/memories/{id}/delete/request", s.handleRequestDelete)
	r.Post("/v1/memories/{id}/delete/confirm", s.handleConfirmDelete)
	r.Post("/v1/memories/{id}/delete/cancel", s.handleCancelDelete)

	r.Get("/v1/chapters", s.handleListChapters)
	r.Post("/v1/chapters", s.handleCreateChapter)
	r.Delete("/v1/chapters/{id}", s.handleDeleteChapter)
	r.Post("/v1/chapters/{id}/introduction", s.handleRegenerateIntroduction)
	r.Post("/v1/chapters/{id}/transitions", s.handleGenerateTransition)
	r.Get("/v1/chapters/candidates", s.handleUnassigned)

	r.Get("/v1/book", s.handleRenderBook)
	r.Get("/v1/book/export", s.handleExportBook)
	r.Put("/v1/book/intent", s.handleSetIntent)

	r.Get("/v1/events", s.handleEventsWS)

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{
		"status":            "ok",
		"scribe_configured": s.scribe.Configured(),
	})
}

func (s *Server) handleReady(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, map[string]any{
		"status":            "ready",
		"scribe_configured": s.scribe.Configured(),
		"memories":          s.lib.MemoryCount(),
	})
}

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

var errEmptyBody = errors.New("empty body")

func decodeJSON(r *http.Request, out any) error {
	if r.Body == nil {
		return errEmptyBody
	}
	defer r.Body.Close()
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(out); err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "eof") {
			return errEmptyBody
		}
		return err
	}
	return nil
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, errorResponse{Error: message, Code: code})
}
