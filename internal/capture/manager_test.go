package capture

import (
	"context"
	"errors"
	"math/rand"
	"testing"
	"time"

	"github.com/tapestry-labs/tapestry/internal/library"
	"github.com/tapestry-labs/tapestry/internal/prompts"
	"github.com/tapestry-labs/tapestry/internal/store"
)

func newTestManager(t *testing.T) (*Manager, *library.Library) {
	t.Helper()
	lib := library.New(store.NewInMemoryStore(), nil)
	lib.Hydrate(context.Background())
	deck := prompts.NewDeck(rand.New(rand.NewSource(1)))
	return NewManager(deck, lib, nil, time.Minute), lib
}

// advance walks a fresh session through to detail enrichment.
func advance(t *testing.T, m *Manager) *Session {
	t.Helper()
	s := m.Create()
	if _, err := m.SelectCategory(s.ID, "childhood"); err != nil {
		t.Fatalf("SelectCategory() error = %v", err)
	}
	s, err := m.SubmitResponse(s.ID, "We had a treehouse in the back yard.")
	if err != nil {
		t.Fatalf("SubmitResponse() error = %v", err)
	}
	s, err = m.SubmitFollowUps(s.ID, []string{"My brother", ""}, "")
	if err != nil {
		t.Fatalf("SubmitFollowUps() error = %v", err)
	}
	return s
}

func TestFullCaptureFlow(t *testing.T) {
	m, lib := newTestManager(t)

	s := m.Create()
	if s.State != StateThemeSelection {
		t.Fatalf("State = %q, want %q", s.State, StateThemeSelection)
	}

	s, err := m.SelectCategory(s.ID, "childhood")
	if err != nil {
		t.Fatalf("SelectCategory() error = %v", err)
	}
	if s.State != StatePromptDisplay || s.Prompt == "" {
		t.Fatalf("after category: state=%q prompt=%q", s.State, s.Prompt)
	}

	s, err = m.SubmitResponse(s.ID, "We had a treehouse in the back yard.")
	if err != nil {
		t.Fatalf("SubmitResponse() error = %v", err)
	}
	if s.State != StateFollowUpEnrich {
		t.Fatalf("State = %q, want %q", s.State, StateFollowUpEnrich)
	}
	if len(s.FollowUps) != 2 {
		t.Fatalf("len(FollowUps) = %d, want 2", len(s.FollowUps))
	}

	s, err = m.SubmitFollowUps(s.ID, []string{"My brother was there", ""}, "It smelled of pine.")
	if err != nil {
		t.Fatalf("SubmitFollowUps() error = %v", err)
	}
	if s.State != StateDetailEnrich {
		t.Fatalf("State = %q, want %q", s.State, StateDetailEnrich)
	}

	date := time.Date(1994, 6, 1, 0, 0, 0, 0, time.UTC)
	s, err = m.SetDetails(s.ID, &date, []string{"joy"}, []string{"Tom"}, []string{"summer", "summer"})
	if err != nil {
		t.Fatalf("SetDetails() error = %v", err)
	}
	if len(s.Tags) != 1 {
		t.Fatalf("Tags = %v, want deduplicated to one entry", s.Tags)
	}

	s, err = m.Save(context.Background(), s.ID)
	if err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if s.State != StateSaved || s.SavedMemoryID == "" {
		t.Fatalf("after save: state=%q id=%q", s.State, s.SavedMemoryID)
	}

	got, err := lib.MemoryByID(s.SavedMemoryID)
	if err != nil {
		t.Fatalf("MemoryByID() error = %v", err)
	}
	if len(got.FollowUps) != 1 {
		t.Fatalf("stored follow-ups = %+v, want only the answered one", got.FollowUps)
	}
	if got.AdditionalThoughts != "It smelled of pine." {
		t.Fatalf("AdditionalThoughts = %q", got.AdditionalThoughts)
	}
	if got.MemoryDate == nil || !got.MemoryDate.Equal(date) {
		t.Fatalf("MemoryDate = %v, want %v", got.MemoryDate, date)
	}
}

func TestOutOfStateTransitionsRejected(t *testing.T) {
	m, _ := newTestManager(t)
	s := m.Create()

	if _, err := m.SubmitResponse(s.ID, "too early"); !errors.Is(err, ErrWrongState) {
		t.Fatalf("SubmitResponse() error = %v, want ErrWrongState", err)
	}
	if _, err := m.Reroll(s.ID); !errors.Is(err, ErrWrongState) {
		t.Fatalf("Reroll() error = %v, want ErrWrongState", err)
	}
	if _, err := m.Save(context.Background(), s.ID); !errors.Is(err, ErrWrongState) {
		t.Fatalf("Save() error = %v, want ErrWrongState", err)
	}
	if _, err := m.Amend(s.ID); !errors.Is(err, ErrWrongState) {
		t.Fatalf("Amend() error = %v, want ErrWrongState", err)
	}
}

func TestCustomPromptBranch(t *testing.T) {
	m, _ := newTestManager(t)
	s := m.Create()

	if _, err := m.SubmitCustomPrompt(s.ID, "What do you wish you had asked?"); !errors.Is(err, ErrWrongState) {
		t.Fatalf("SubmitCustomPrompt() before begin error = %v, want ErrWrongState", err)
	}

	if _, err := m.BeginCustomPrompt(s.ID); err != nil {
		t.Fatalf("BeginCustomPrompt() error = %v", err)
	}
	s, err := m.SubmitCustomPrompt(s.ID, "What do you wish you had asked?")
	if err != nil {
		t.Fatalf("SubmitCustomPrompt() error = %v", err)
	}
	if s.State != StatePromptDisplay || !s.CustomPrompt {
		t.Fatalf("after custom prompt: state=%q custom=%v", s.State, s.CustomPrompt)
	}

	// Custom prompts have no pool to reroll from.
	if _, err := m.Reroll(s.ID); !errors.Is(err, ErrNoCategory) {
		t.Fatalf("Reroll() error = %v, want ErrNoCategory", err)
	}
}

func TestCancelCustomPromptReturnsToThemes(t *testing.T) {
	m, _ := newTestManager(t)
	s := m.Create()
	if _, err := m.BeginCustomPrompt(s.ID); err != nil {
		t.Fatalf("BeginCustomPrompt() error = %v", err)
	}
	s, err := m.CancelCustomPrompt(s.ID)
	if err != nil {
		t.Fatalf("CancelCustomPrompt() error = %v", err)
	}
	if s.State != StateThemeSelection {
		t.Fatalf("State = %q, want %q", s.State, StateThemeSelection)
	}
}

func TestRerollStaysInCategory(t *testing.T) {
	m, _ := newTestManager(t)
	s := m.Create()
	s, err := m.SelectCategory(s.ID, "joy")
	if err != nil {
		t.Fatalf("SelectCategory() error = %v", err)
	}
	for i := 0; i < 5; i++ {
		s, err = m.Reroll(s.ID)
		if err != nil {
			t.Fatalf("Reroll() error = %v", err)
		}
		if s.Category != "joy" || s.Prompt == "" {
			t.Fatalf("after reroll: category=%q prompt=%q", s.Category, s.Prompt)
		}
	}
}

func TestStartOverDiscardsEverything(t *testing.T) {
	m, _ := newTestManager(t)
	s := advance(t, m)

	s, err := m.StartOver(s.ID)
	if err != nil {
		t.Fatalf("StartOver() error = %v", err)
	}
	if s.State != StateThemeSelection {
		t.Fatalf("State = %q, want %q", s.State, StateThemeSelection)
	}
	if s.Response != "" || s.Prompt != "" || len(s.FollowUps) != 0 {
		t.Fatalf("session not cleared: %+v", s)
	}
}

func TestSetDetailsRejectsUnknownEmotion(t *testing.T) {
	m, _ := newTestManager(t)
	s := advance(t, m)
	if _, err := m.SetDetails(s.ID, nil, []string{"melancholy-ish"}, nil, nil); !errors.Is(err, ErrUnknownEmotion) {
		t.Fatalf("SetDetails() error = %v, want ErrUnknownEmotion", err)
	}
}

func TestDraftPendingGuard(t *testing.T) {
	m, _ := newTestManager(t)
	s := advance(t, m)

	prompt, full, err := m.BeginDraft(s.ID, "warm")
	if err != nil {
		t.Fatalf("BeginDraft() error = %v", err)
	}
	if prompt == "" {
		t.Fatalf("BeginDraft() returned empty prompt")
	}
	if full != "We had a treehouse in the back yard. My brother" {
		t.Fatalf("full response = %q", full)
	}

	if _, _, err := m.BeginDraft(s.ID, "warm"); !errors.Is(err, ErrGenerationPending) {
		t.Fatalf("second BeginDraft() error = %v, want ErrGenerationPending", err)
	}
	if _, err := m.Save(context.Background(), s.ID); !errors.Is(err, ErrGenerationPending) {
		t.Fatalf("Save() during draft error = %v, want ErrGenerationPending", err)
	}

	got, err := m.CompleteDraft(s.ID, "A polished passage.", false)
	if err != nil {
		t.Fatalf("CompleteDraft() error = %v", err)
	}
	if got.AIDraft != "A polished passage." || got.DraftFallback {
		t.Fatalf("draft = %q fallback=%v", got.AIDraft, got.DraftFallback)
	}

	// A new draft request is allowed again and overwrites.
	if _, _, err := m.BeginDraft(s.ID, "raw"); err != nil {
		t.Fatalf("BeginDraft() after completion error = %v", err)
	}
}

func TestBeginDraftRejectsUnknownTone(t *testing.T) {
	m, _ := newTestManager(t)
	s := advance(t, m)
	if _, _, err := m.BeginDraft(s.ID, "sarcastic"); !errors.Is(err, ErrUnknownTone) {
		t.Fatalf("BeginDraft() error = %v, want ErrUnknownTone", err)
	}
}

func TestAmendReplacesSavedRecord(t *testing.T) {
	m, lib := newTestManager(t)
	s := advance(t, m)

	s, err := m.Save(context.Background(), s.ID)
	if err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	savedID := s.SavedMemoryID
	original, _ := lib.MemoryByID(savedID)

	s, err = m.Amend(s.ID)
	if err != nil {
		t.Fatalf("Amend() error = %v", err)
	}
	if s.State != StateDetailEnrich {
		t.Fatalf("State = %q, want %q", s.State, StateDetailEnrich)
	}
	if _, err := m.SetReflection(s.ID, "I still think about that summer."); err != nil {
		t.Fatalf("SetReflection() error = %v", err)
	}
	s, err = m.Save(context.Background(), s.ID)
	if err != nil {
		t.Fatalf("second Save() error = %v", err)
	}
	if s.SavedMemoryID != savedID {
		t.Fatalf("amend created a new record: %q vs %q", s.SavedMemoryID, savedID)
	}
	if lib.MemoryCount() != 1 {
		t.Fatalf("MemoryCount() = %d, want 1", lib.MemoryCount())
	}

	got, _ := lib.MemoryByID(savedID)
	if got.Reflection != "I still think about that summer." {
		t.Fatalf("Reflection = %q", got.Reflection)
	}
	if !got.Timestamp.Equal(original.Timestamp) {
		t.Fatalf("amend changed creation timestamp")
	}
}

func TestJanitorDropsInactiveSessions(t *testing.T) {
	lib := library.New(store.NewInMemoryStore(), nil)
	lib.Hydrate(context.Background())
	deck := prompts.NewDeck(rand.New(rand.NewSource(1)))
	m := NewManager(deck, lib, nil, time.Minute)
	m.inactivityTimeout = 30 * time.Millisecond

	expired := make(chan string, 1)
	m.SetExpireHook(func(s *Session) { expired <- s.ID })

	s := m.Create()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	m.StartJanitor(ctx, 10*time.Millisecond)

	select {
	case id := <-expired:
		if id != s.ID {
			t.Fatalf("expired id = %q, want %q", id, s.ID)
		}
	case <-time.After(time.Second):
		t.Fatalf("session never expired")
	}
	if _, err := m.Get(s.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Get() after expiry error = %v, want ErrNotFound", err)
	}
}
