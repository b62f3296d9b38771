package scribe

import (
	"context"
	"log"
	"strings"
	"time"

	"github.com/tapestry-labs/tapestry/internal/observability"
)

// DraftRequest asks for a memoir passage from a raw memory.
type DraftRequest struct {
	Prompt   string
	Response string
	Tone     string
}

// Excerpt carries the prompt/response pair of one memory.
type Excerpt struct {
	Prompt   string
	Response string
}

// IntroRequest asks for a chapter introduction.
type IntroRequest struct {
	Title       string
	Description string
	Memories    []Excerpt
}

// TransitionRequest asks for one-to-two sentences bridging two memories.
type TransitionRequest struct {
	From Excerpt
	To   Excerpt
}

// Generator produces prose. Implementations may fail; the Scribe wrapper
// replaces failures with the operation's fixed fallback.
type Generator interface {
	Draft(ctx context.Context, req DraftRequest) (string, error)
	Introduction(ctx context.Context, req IntroRequest) (string, error)
	Transition(ctx context.Context, req TransitionRequest) (string, error)
}

// Config controls scribe construction.
type Config struct {
	APIKey  string
	Model   string
	BaseURL string
}

// Scribe is the text-generation collaborator. Every operation returns a
// valid, final string: generated prose when the backing generator succeeds,
// the operation's canned fallback otherwise. Fallback output is not an error.
type Scribe struct {
	gen     Generator
	metrics *observability.Metrics
}

func New(cfg Config, metrics *observability.Metrics) *Scribe {
	s := &Scribe{metrics: metrics}
	if keyConfigured(cfg.APIKey) {
		s.gen = NewOpenAIGenerator(cfg)
	}
	return s
}

// NewWithGenerator wires an explicit generator; nil means fallback-only.
func NewWithGenerator(gen Generator, metrics *observability.Metrics) *Scribe {
	return &Scribe{gen: gen, metrics: metrics}
}

// Configured reports whether a real generator backs this scribe. When false,
// callers may surface a non-blocking missing-credentials advisory; saving
// work is never prevented.
func (s *Scribe) Configured() bool {
	return s.gen != nil
}

// Draft writes a memory as a memoir passage in the requested tone.
func (s *Scribe) Draft(ctx context.Context, req DraftRequest) (text string, fromFallback bool) {
	start := time.Now()
	if s.gen != nil {
		out, err := s.gen.Draft(ctx, req)
		if err == nil && strings.TrimSpace(out) != "" {
			s.metrics.ObserveScribeRequest("draft", "generated", time.Since(start))
			return out, false
		}
		if err != nil {
			log.Printf("draft generation failed, using fallback: %v", err)
		}
	}
	s.metrics.ObserveScribeRequest("draft", "fallback", time.Since(start))
	return FallbackDraft(req.Response, req.Tone), true
}

// Introduction writes a chapter introduction.
func (s *Scribe) Introduction(ctx context.Context, req IntroRequest) (text string, fromFallback bool) {
	start := time.Now()
	if s.gen != nil {
		out, err := s.gen.Introduction(ctx, req)
		if err == nil && strings.TrimSpace(out) != "" {
			s.metrics.ObserveScribeRequest("introduction", "generated", time.Since(start))
			return out, false
		}
		if err != nil {
			log.Printf("introduction generation failed, using fallback: %v", err)
		}
	}
	s.metrics.ObserveScribeRequest("introduction", "fallback", time.Since(start))
	return FallbackIntroduction(req.Title, req.Description), true
}

// Transition writes a bridge between two memories.
func (s *Scribe) Transition(ctx context.Context, req TransitionRequest) (text string, fromFallback bool) {
	start := time.Now()
	if s.gen != nil {
		out, err := s.gen.Transition(ctx, req)
		if err == nil && strings.TrimSpace(out) != "" {
			s.metrics.ObserveScribeRequest("transition", "generated", time.Since(start))
			return out, false
		}
		if err != nil {
			log.Printf("transition generation failed, using fallback: %v", err)
		}
	}
	s.metrics.ObserveScribeRequest("transition", "fallback", time.Since(start))
	return FallbackTransition(), true
}

// keyConfigured rejects empty keys and the placeholder values that ship in
// example env files.
func keyConfigured(key string) bool {
	key = strings.TrimSpace(key)
	if key == "" {
		return false
	}
	if strings.Contains(key, "your-openai-api-key") || strings.Contains(key, "your-ope") {
		return false
	}
	return true
}
