package library

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/tapestry-labs/tapestry/internal/memoir"
	"github.com/tapestry-labs/tapestry/internal/store"
)

// failingStore rejects every write so tests can assert the in-memory state
// stays authoritative.
type failingStore struct {
	*store.InMemoryStore
}

func (failingStore) ReplaceMemories(context.Context, []memoir.Memory) error {
	return errors.New("disk full")
}

func (failingStore) ReplaceChapters(context.Context, []memoir.Chapter) error {
	return errors.New("disk full")
}

func newTestLibrary(t *testing.T) *Library {
	t.Helper()
	l := New(store.NewInMemoryStore(), nil)
	l.Hydrate(context.Background())
	return l
}

func TestAddMemoryAssignsIDAndPrepends(t *testing.T) {
	l := newTestLibrary(t)
	ctx := context.Background()

	first := l.AddMemory(ctx, memoir.Memory{Prompt: "p1", Response: "r1"})
	second := l.AddMemory(ctx, memoir.Memory{Prompt: "p2", Response: "r2"})

	if first.ID == "" || second.ID == "" {
		t.Fatalf("memory IDs should be assigned")
	}
	if first.Timestamp.IsZero() {
		t.Fatalf("creation timestamp should be assigned")
	}

	ms := l.Memories()
	if len(ms) != 2 {
		t.Fatalf("len(Memories()) = %d, want 2", len(ms))
	}
	if ms[0].ID != second.ID {
		t.Fatalf("newest memory should be first, got %q", ms[0].ID)
	}
}

func TestUpdateMemoryKeepsCreationTimestamp(t *testing.T) {
	l := newTestLibrary(t)
	ctx := context.Background()

	m := l.AddMemory(ctx, memoir.Memory{Prompt: "p", Response: "r"})
	original := m.Timestamp

	edited := m
	edited.Response = "rewritten"
	edited.Timestamp = time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)
	if err := l.UpdateMemory(ctx, edited); err != nil {
		t.Fatalf("UpdateMemory() error = %v", err)
	}

	got, err := l.MemoryByID(m.ID)
	if err != nil {
		t.Fatalf("MemoryByID() error = %v", err)
	}
	if got.Response != "rewritten" {
		t.Fatalf("Response = %q, want %q", got.Response, "rewritten")
	}
	if !got.Timestamp.Equal(original) {
		t.Fatalf("Timestamp = %v, want original %v", got.Timestamp, original)
	}
}

func TestUpdateMemoryNotFound(t *testing.T) {
	l := newTestLibrary(t)
	err := l.UpdateMemory(context.Background(), memoir.Memory{ID: "missing"})
	if !errors.Is(err, ErrMemoryNotFound) {
		t.Fatalf("UpdateMemory() error = %v, want ErrMemoryNotFound", err)
	}
}

func TestDeleteMemoryLeavesChapterReferences(t *testing.T) {
	l := newTestLibrary(t)
	ctx := context.Background()

	m := l.AddMemory(ctx, memoir.Memory{Prompt: "p", Response: "r"})
	c := l.AddChapter(ctx, memoir.Chapter{Title: "One", MemoryIDs: []string{m.ID}})

	if err := l.DeleteMemory(ctx, m.ID); err != nil {
		t.Fatalf("DeleteMemory() error = %v", err)
	}

	got, err := l.ChapterByID(c.ID)
	if err != nil {
		t.Fatalf("ChapterByID() error = %v", err)
	}
	if len(got.MemoryIDs) != 1 || got.MemoryIDs[0] != m.ID {
		t.Fatalf("chapter references = %v, want dangling %q kept", got.MemoryIDs, m.ID)
	}
}

func TestWriteFailureKeepsInMemoryState(t *testing.T) {
	l := New(failingStore{store.NewInMemoryStore()}, nil)
	l.Hydrate(context.Background())
	ctx := context.Background()

	m := l.AddMemory(ctx, memoir.Memory{Prompt: "p", Response: "r"})
	if got := l.MemoryCount(); got != 1 {
		t.Fatalf("MemoryCount() = %d, want 1 despite write failure", got)
	}
	if _, err := l.MemoryByID(m.ID); err != nil {
		t.Fatalf("MemoryByID() error = %v, record should be readable", err)
	}
}

func TestHydrateSurvivesLoadFailure(t *testing.T) {
	l := New(erroringLoadStore{}, nil)
	l.Hydrate(context.Background())
	if got := l.MemoryCount(); got != 0 {
		t.Fatalf("MemoryCount() = %d, want 0 after failed load", got)
	}
	// The library must stay usable for new records.
	l.AddMemory(context.Background(), memoir.Memory{Prompt: "p", Response: "r"})
	if got := l.MemoryCount(); got != 1 {
		t.Fatalf("MemoryCount() = %d, want 1", got)
	}
}

type erroringLoadStore struct{}

func (erroringLoadStore) LoadMemories(context.Context) ([]memoir.Memory, error) {
	return nil, errors.New("corrupt blob")
}

func (erroringLoadStore) LoadChapters(context.Context) ([]memoir.Chapter, error) {
	return nil, errors.New("corrupt blob")
}

func (erroringLoadStore) ReplaceMemories(context.Context, []memoir.Memory) error { return nil }

func (erroringLoadStore) ReplaceChapters(context.Context, []memoir.Chapter) error { return nil }

func (erroringLoadStore) Close() error { return nil }

func TestNotifyHookReceivesEvents(t *testing.T) {
	l := newTestLibrary(t)
	var events []Event
	l.SetNotify(func(ev Event) { events = append(events, ev) })

	m := l.AddMemory(context.Background(), memoir.Memory{Prompt: "p", Response: "r"})
	if len(events) != 1 || events[0].Type != EventMemoriesChanged || events[0].ID != m.ID {
		t.Fatalf("events = %+v, want one memories_changed for %q", events, m.ID)
	}
}

func TestNextChapterOrder(t *testing.T) {
	l := newTestLibrary(t)
	ctx := context.Background()
	if got := l.NextChapterOrder(); got != 0 {
		t.Fatalf("NextChapterOrder() = %d, want 0", got)
	}
	l.AddChapter(ctx, memoir.Chapter{Title: "One", Order: 0})
	l.AddChapter(ctx, memoir.Chapter{Title: "Two", Order: 1})
	if got := l.NextChapterOrder(); got != 2 {
		t.Fatalf("NextChapterOrder() = %d, want 2", got)
	}
}

func TestHydrateNormalizesOlderRecords(t *testing.T) {
	st := store.NewInMemoryStore()
	ctx := context.Background()
	if err := st.ReplaceMemories(ctx, []memoir.Memory{{ID: "m1", Prompt: "p", Response: "r"}}); err != nil {
		t.Fatalf("ReplaceMemories() error = %v", err)
	}

	l := New(st, nil)
	l.Hydrate(ctx)

	got, err := l.MemoryByID("m1")
	if err != nil {
		t.Fatalf("MemoryByID() error = %v", err)
	}
	if got.Tags == nil || got.Emotions == nil || got.People == nil {
		t.Fatalf("hydrated memory has nil collections: %+v", got)
	}
}
