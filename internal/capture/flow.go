package capture

import (
	"errors"
	"strings"
	"time"
)

// State names one step of the memory-authoring flow. The flow moves strictly
// forward, with CustomPromptEntry as a side branch off ThemeSelection and a
// restart transition available from every state.
type State string

const (
	StateThemeSelection    State = "theme_selection"
	StateCustomPromptEntry State = "custom_prompt_entry"
	StatePromptDisplay     State = "prompt_display"
	StateFollowUpEnrich    State = "follow_up_enrichment"
	StateDetailEnrich      State = "detail_enrichment"
	StateSaved             State = "saved"
)

var (
	ErrWrongState        = errors.New("action not available in current state")
	ErrEmptyPrompt       = errors.New("prompt text is required")
	ErrEmptyResponse     = errors.New("response text is required")
	ErrNoCategory        = errors.New("no category selected")
	ErrUnknownCategory   = errors.New("unknown category")
	ErrUnknownEmotion    = errors.New("unknown emotion")
	ErrUnknownTone       = errors.New("unknown tone")
	ErrTooManyAnswers    = errors.New("more answers than follow-up questions")
	ErrGenerationPending = errors.New("a draft is already being generated")
)

// Session holds everything typed during one authoring flow. Nothing here is
// discarded except by an explicit start-over, so no transition can lose the
// user's text.
type Session struct {
	ID             string     `json:"session_id"`
	State          State      `json:"state"`
	Category       string     `json:"category,omitempty"`
	Prompt         string     `json:"prompt,omitempty"`
	CustomPrompt   bool       `json:"custom_prompt,omitempty"`
	Response       string     `json:"response,omitempty"`
	FollowUps      []string   `json:"follow_ups,omitempty"`
	Answers        []string   `json:"answers,omitempty"`
	Additional     string     `json:"additional_thoughts,omitempty"`
	MemoryDate     *time.Time `json:"memory_date,omitempty"`
	Emotions       []string   `json:"emotions,omitempty"`
	People         []string   `json:"people,omitempty"`
	Tags           []string   `json:"tags,omitempty"`
	Tone           string     `json:"tone,omitempty"`
	AIDraft        string     `json:"ai_draft,omitempty"`
	DraftFallback  bool       `json:"draft_fallback,omitempty"`
	Reflection     string     `json:"reflection,omitempty"`
	SavedMemoryID  string     `json:"saved_memory_id,omitempty"`
	StartedAt      time.Time  `json:"started_at"`
	LastActivityAt time.Time  `json:"last_activity_at"`

	draftPending bool
}

// reset clears everything collected so far, returning to theme selection.
// The session identity and timestamps survive.
func (s *Session) reset() {
	s.State = StateThemeSelection
	s.Category = ""
	s.Prompt = ""
	s.CustomPrompt = false
	s.Response = ""
	s.FollowUps = nil
	s.Answers = nil
	s.Additional = ""
	s.MemoryDate = nil
	s.Emotions = nil
	s.People = nil
	s.Tags = nil
	s.Tone = ""
	s.AIDraft = ""
	s.DraftFallback = false
	s.Reflection = ""
	s.SavedMemoryID = ""
	s.draftPending = false
}

// fullResponse concatenates the primary response, answered follow-ups, and
// additional thoughts for the text-generation collaborator. The stored record
// keeps these fields separate.
func (s *Session) fullResponse() string {
	parts := []string{s.Response}
	for _, a := range s.Answers {
		if strings.TrimSpace(a) != "" {
			parts = append(parts, a)
		}
	}
	if strings.TrimSpace(s.Additional) != "" {
		parts = append(parts, s.Additional)
	}
	return strings.Join(parts, " ")
}

func clone(s *Session) *Session {
	c := *s
	c.FollowUps = append([]string(nil), s.FollowUps...)
	c.Answers = append([]string(nil), s.Answers...)
	c.Emotions = append([]string(nil), s.Emotions...)
	c.People = append([]string(nil), s.People...)
	c.Tags = append([]string(nil), s.Tags...)
	if s.MemoryDate != nil {
		d := *s.MemoryDate
		c.MemoryDate = &d
	}
	return &c
}
