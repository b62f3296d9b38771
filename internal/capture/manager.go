package capture

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/tapestry-labs/tapestry/internal/library"
	"github.com/tapestry-labs/tapestry/internal/memoir"
	"github.com/tapestry-labs/tapestry/internal/observability"
	"github.com/tapestry-labs/tapestry/internal/prompts"
)

var ErrNotFound = errors.New("capture session not found")

// Manager owns all in-flight authoring sessions. Saved memories land in the
// library; a session that goes inactive before saving is simply dropped.
type Manager struct {
	mu                sync.RWMutex
	sessions          map[string]*Session
	deck              *prompts.Deck
	lib               *library.Library
	metrics           *observability.Metrics
	inactivityTimeout time.Duration
	onExpire          func(*Session)
}

func NewManager(deck *prompts.Deck, lib *library.Library, metrics *observability.Metrics, inactivityTimeout time.Duration) *Manager {
	if inactivityTimeout <= 0 {
		inactivityTimeout = 30 * time.Minute
	}
	return &Manager{
		sessions:          make(map[string]*Session),
		deck:              deck,
		lib:               lib,
		metrics:           metrics,
		inactivityTimeout: inactivityTimeout,
	}
}

func (m *Manager) SetExpireHook(hook func(*Session)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onExpire = hook
}

// Create opens a new session at theme selection.
func (m *Manager) Create() *Session {
	now := time.Now().UTC()
	s := &Session{
		ID:             uuid.NewString(),
		State:          StateThemeSelection,
		StartedAt:      now,
		LastActivityAt: now,
	}

	m.mu.Lock()
	m.sessions[s.ID] = s
	count := len(m.sessions)
	m.mu.Unlock()

	m.metrics.SetActiveCaptureSessions(count)
	m.metrics.ObserveCaptureEvent("session_created")
	return clone(s)
}

func (m *Manager) Get(sessionID string) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[sessionID]
	if !ok {
		return nil, ErrNotFound
	}
	return clone(s), nil
}

// SelectCategory draws a prompt from the category's pool and moves the
// session to prompt display.
func (m *Manager) SelectCategory(sessionID, category string) (*Session, error) {
	if !memoir.IsCategory(category) {
		return nil, ErrUnknownCategory
	}
	prompt, err := m.deck.Draw(category)
	if err != nil {
		return nil, ErrUnknownCategory
	}

	return m.update(sessionID, func(s *Session) error {
		if s.State != StateThemeSelection {
			return ErrWrongState
		}
		s.Category = category
		s.Prompt = prompt
		s.CustomPrompt = false
		s.State = StatePromptDisplay
		m.metrics.ObserveCaptureEvent("category_selected")
		return nil
	})
}

// BeginCustomPrompt branches into custom prompt entry.
func (m *Manager) BeginCustomPrompt(sessionID string) (*Session, error) {
	return m.update(sessionID, func(s *Session) error {
		if s.State != StateThemeSelection {
			return ErrWrongState
		}
		s.State = StateCustomPromptEntry
		return nil
	})
}

// SubmitCustomPrompt accepts the user's own question and moves to prompt
// display. Custom prompts have no category and cannot be rerolled.
func (m *Manager) SubmitCustomPrompt(sessionID, prompt string) (*Session, error) {
	if strings.TrimSpace(prompt) == "" {
		return nil, ErrEmptyPrompt
	}
	return m.update(sessionID, func(s *Session) error {
		if s.State != StateCustomPromptEntry {
			return ErrWrongState
		}
		s.Prompt = prompt
		s.Category = ""
		s.CustomPrompt = true
		s.State = StatePromptDisplay
		m.metrics.ObserveCaptureEvent("custom_prompt")
		return nil
	})
}

// CancelCustomPrompt returns to theme selection without keeping any text.
func (m *Manager) CancelCustomPrompt(sessionID string) (*Session, error) {
	return m.update(sessionID, func(s *Session) error {
		if s.State != StateCustomPromptEntry {
			return ErrWrongState
		}
		s.State = StateThemeSelection
		return nil
	})
}

// Reroll replaces the displayed prompt with a fresh draw from the same
// category. Custom prompts have no pool to draw from.
func (m *Manager) Reroll(sessionID string) (*Session, error) {
	return m.update(sessionID, func(s *Session) error {
		if s.State != StatePromptDisplay {
			return ErrWrongState
		}
		if s.CustomPrompt || s.Category == "" {
			return ErrNoCategory
		}
		prompt, err := m.deck.Draw(s.Category)
		if err != nil {
			return err
		}
		s.Prompt = prompt
		m.metrics.ObserveCaptureEvent("prompt_rerolled")
		return nil
	})
}

// StartOver discards everything collected so far and returns the same
// session to theme selection. Available from every state.
func (m *Manager) StartOver(sessionID string) (*Session, error) {
	return m.update(sessionID, func(s *Session) error {
		s.reset()
		m.metrics.ObserveCaptureEvent("started_over")
		return nil
	})
}

// SubmitResponse records the primary response and selects the two follow-up
// questions for the prompt.
func (m *Manager) SubmitResponse(sessionID, response string) (*Session, error) {
	if strings.TrimSpace(response) == "" {
		return nil, ErrEmptyResponse
	}
	return m.update(sessionID, func(s *Session) error {
		if s.State != StatePromptDisplay {
			return ErrWrongState
		}
		s.Response = response
		s.FollowUps = m.deck.FollowUps(s.Prompt)
		s.Answers = make([]string, len(s.FollowUps))
		s.State = StateFollowUpEnrich
		m.metrics.ObserveCaptureEvent("response_submitted")
		return nil
	})
}

// SubmitFollowUps records the follow-up answers, any of which may be blank,
// plus free-form additional thoughts. Moves to detail enrichment.
func (m *Manager) SubmitFollowUps(sessionID string, answers []string, additional string) (*Session, error) {
	return m.update(sessionID, func(s *Session) error {
		if s.State != StateFollowUpEnrich {
			return ErrWrongState
		}
		if len(answers) > len(s.FollowUps) {
			return ErrTooManyAnswers
		}
		copy(s.Answers, answers)
		s.Additional = additional
		s.State = StateDetailEnrich
		m.metrics.ObserveCaptureEvent("follow_ups_submitted")
		return nil
	})
}

// SetDetails records the optional occurrence date, emotions, people, and
// tags. Emotions must come from the fixed vocabulary; people and tags are
// free-form, deduplicated case-sensitively with order preserved.
func (m *Manager) SetDetails(sessionID string, memoryDate *time.Time, emotions, people, tags []string) (*Session, error) {
	for _, e := range emotions {
		if !memoir.IsEmotion(e) {
			return nil, ErrUnknownEmotion
		}
	}
	return m.update(sessionID, func(s *Session) error {
		if s.State != StateDetailEnrich {
			return ErrWrongState
		}
		if memoryDate != nil {
			d := *memoryDate
			s.MemoryDate = &d
		} else {
			s.MemoryDate = nil
		}
		s.Emotions = memoir.Dedupe(emotions)
		s.People = memoir.Dedupe(people)
		s.Tags = memoir.Dedupe(tags)
		return nil
	})
}

// BeginDraft reserves the session for one in-flight draft generation and
// returns the prompt and the combined response text for the generator.
// A second request while one is pending is rejected.
func (m *Manager) BeginDraft(sessionID, tone string) (prompt, fullResponse string, err error) {
	if !memoir.IsTone(tone) {
		return "", "", ErrUnknownTone
	}
	_, err = m.update(sessionID, func(s *Session) error {
		if s.State != StateDetailEnrich {
			return ErrWrongState
		}
		if s.draftPending {
			return ErrGenerationPending
		}
		s.draftPending = true
		s.Tone = tone
		prompt = s.Prompt
		fullResponse = s.fullResponse()
		m.metrics.ObserveCaptureEvent("draft_requested")
		return nil
	})
	return prompt, fullResponse, err
}

// CompleteDraft stores the generated passage and releases the pending
// reservation. Requesting a new draft afterwards overwrites the old one.
func (m *Manager) CompleteDraft(sessionID, draft string, fromFallback bool) (*Session, error) {
	return m.update(sessionID, func(s *Session) error {
		if !s.draftPending {
			return ErrWrongState
		}
		s.draftPending = false
		s.AIDraft = draft
		s.DraftFallback = fromFallback
		return nil
	})
}

// SetReflection records the present-day reflection text.
func (m *Manager) SetReflection(sessionID, reflection string) (*Session, error) {
	return m.update(sessionID, func(s *Session) error {
		if s.State != StateDetailEnrich {
			return ErrWrongState
		}
		s.Reflection = reflection
		return nil
	})
}

// Save turns the session into a library record. Only answered follow-ups are
// kept as question/answer pairs. A first save creates the record; a save
// after Amend wholly replaces it, keeping the original creation timestamp.
func (m *Manager) Save(ctx context.Context, sessionID string) (*Session, error) {
	return m.update(sessionID, func(s *Session) error {
		if s.State != StateDetailEnrich {
			return ErrWrongState
		}
		if s.draftPending {
			return ErrGenerationPending
		}

		var followUps []memoir.FollowUp
		for i, q := range s.FollowUps {
			if strings.TrimSpace(s.Answers[i]) == "" {
				continue
			}
			followUps = append(followUps, memoir.FollowUp{Question: q, Answer: s.Answers[i]})
		}

		record := memoir.Memory{
			ID:                 s.SavedMemoryID,
			Prompt:             s.Prompt,
			Response:           s.Response,
			FollowUps:          followUps,
			AdditionalThoughts: s.Additional,
			AIDraft:            s.AIDraft,
			Reflection:         s.Reflection,
			Tone:               s.Tone,
			Tags:               s.Tags,
			Emotions:           s.Emotions,
			People:             s.People,
			MemoryDate:         s.MemoryDate,
			Category:           s.Category,
		}

		if s.SavedMemoryID == "" {
			saved := m.lib.AddMemory(ctx, record)
			s.SavedMemoryID = saved.ID
			m.metrics.ObserveCaptureEvent("memory_saved")
		} else {
			if err := m.lib.UpdateMemory(ctx, record); err != nil {
				return err
			}
			m.metrics.ObserveCaptureEvent("memory_amended")
		}
		s.State = StateSaved
		return nil
	})
}

// Amend reopens a saved session for further enrichment. The next Save
// replaces the stored record in place.
func (m *Manager) Amend(sessionID string) (*Session, error) {
	return m.update(sessionID, func(s *Session) error {
		if s.State != StateSaved {
			return ErrWrongState
		}
		s.State = StateDetailEnrich
		return nil
	})
}

// End removes the session. Unsaved work is discarded.
func (m *Manager) End(sessionID string) error {
	m.mu.Lock()
	_, ok := m.sessions[sessionID]
	if ok {
		delete(m.sessions, sessionID)
	}
	count := len(m.sessions)
	m.mu.Unlock()

	if !ok {
		return ErrNotFound
	}
	m.metrics.SetActiveCaptureSessions(count)
	return nil
}

// StartJanitor periodically drops sessions that have been inactive past the
// configured timeout.
func (m *Manager) StartJanitor(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				m.expireInactive()
			}
		}
	}()
}

func (m *Manager) ActiveCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

func (m *Manager) expireInactive() {
	now := time.Now().UTC()
	var expired []*Session

	m.mu.Lock()
	for id, s := range m.sessions {
		if now.Sub(s.LastActivityAt) < m.inactivityTimeout {
			continue
		}
		expired = append(expired, clone(s))
		delete(m.sessions, id)
	}
	count := len(m.sessions)
	hook := m.onExpire
	m.mu.Unlock()

	if len(expired) > 0 {
		m.metrics.SetActiveCaptureSessions(count)
	}
	if hook != nil {
		for _, s := range expired {
			hook(s)
		}
	}
}

// update runs a mutation against the live session under the lock and returns
// a clone of the result. Any mutation counts as activity.
func (m *Manager) update(sessionID string, fn func(*Session) error) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[sessionID]
	if !ok {
		return nil, ErrNotFound
	}
	if err := fn(s); err != nil {
		return nil, err
	}
	s.LastActivityAt = time.Now().UTC()
	return clone(s), nil
}
