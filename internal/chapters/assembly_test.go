package chapters

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/tapestry-labs/tapestry/internal/library"
	"github.com/tapestry-labs/tapestry/internal/memoir"
	"github.com/tapestry-labs/tapestry/internal/scribe"
	"github.com/tapestry-labs/tapestry/internal/store"
)

func newTestAssembly(t *testing.T) (*Assembly, *library.Library) {
	t.Helper()
	lib := library.New(store.NewInMemoryStore(), nil)
	lib.Hydrate(context.Background())
	// Fallback-only scribe keeps output deterministic.
	sc := scribe.NewWithGenerator(nil, nil)
	return New(lib, sc), lib
}

func addMemory(t *testing.T, lib *library.Library, id string) {
	t.Helper()
	lib.AddMemory(context.Background(), memoir.Memory{
		ID: id, Prompt: "prompt " + id, Response: "response " + id,
	})
}

func TestCreateRejectsEmptyTitleAndSelection(t *testing.T) {
	a, lib := newTestAssembly(t)
	addMemory(t, lib, "m1")

	if _, err := a.Create(context.Background(), "", "", []string{"m1"}); !errors.Is(err, ErrTitleRequired) {
		t.Fatalf("Create() error = %v, want ErrTitleRequired", err)
	}
	if _, err := a.Create(context.Background(), "Growing Up", "", nil); !errors.Is(err, ErrNoMemories) {
		t.Fatalf("Create() error = %v, want ErrNoMemories", err)
	}
}

func TestCreateRejectsUnknownAndAssignedMemories(t *testing.T) {
	a, lib := newTestAssembly(t)
	addMemory(t, lib, "m1")
	addMemory(t, lib, "m2")

	if _, err := a.Create(context.Background(), "One", "", []string{"missing"}); !errors.Is(err, ErrUnknownMemory) {
		t.Fatalf("Create() error = %v, want ErrUnknownMemory", err)
	}

	if _, err := a.Create(context.Background(), "One", "", []string{"m1"}); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	a.WaitIdle()

	if _, err := a.Create(context.Background(), "Two", "", []string{"m1", "m2"}); !errors.Is(err, ErrMemoryAssigned) {
		t.Fatalf("Create() error = %v, want ErrMemoryAssigned", err)
	}
}

func TestCreateFillsIntroductionInBackground(t *testing.T) {
	a, lib := newTestAssembly(t)
	addMemory(t, lib, "m1")

	c, err := a.Create(context.Background(), "Growing Up", "The early years.", []string{"m1"})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if c.Order != 0 {
		t.Fatalf("Order = %d, want 0", c.Order)
	}
	a.WaitIdle()

	got, err := lib.ChapterByID(c.ID)
	if err != nil {
		t.Fatalf("ChapterByID() error = %v", err)
	}
	if !strings.Contains(got.Introduction, `"Growing Up"`) {
		t.Fatalf("Introduction = %q, want the fallback template with the title", got.Introduction)
	}
	if !strings.Contains(got.Introduction, "The early years. ") {
		t.Fatalf("Introduction = %q, want the description folded in", got.Introduction)
	}
}

func TestUnassignedExcludesChapterMembers(t *testing.T) {
	a, lib := newTestAssembly(t)
	addMemory(t, lib, "m1")
	addMemory(t, lib, "m2")
	addMemory(t, lib, "m3")

	if _, err := a.Create(context.Background(), "One", "", []string{"m1", "m2"}); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	a.WaitIdle()

	got := a.Unassigned()
	if len(got) != 1 || got[0].ID != "m3" {
		t.Fatalf("Unassigned() = %+v, want only m3", got)
	}
}

func TestGenerateTransitionStoredByFromID(t *testing.T) {
	a, lib := newTestAssembly(t)
	addMemory(t, lib, "m1")
	addMemory(t, lib, "m2")
	c, err := a.Create(context.Background(), "One", "", []string{"m1", "m2"})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	a.WaitIdle()

	text, err := a.GenerateTransition(context.Background(), c.ID, "m1", "m2")
	if err != nil {
		t.Fatalf("GenerateTransition() error = %v", err)
	}
	if text == "" {
		t.Fatalf("GenerateTransition() returned empty text")
	}

	got, _ := lib.ChapterByID(c.ID)
	if got.Transitions["m1"] != text {
		t.Fatalf("Transitions[m1] = %q, want %q", got.Transitions["m1"], text)
	}

	// Repeat for the same pair overwrites rather than erroring.
	if _, err := a.GenerateTransition(context.Background(), c.ID, "m1", "m2"); err != nil {
		t.Fatalf("repeat GenerateTransition() error = %v", err)
	}
}

func TestGenerateTransitionRequiresChapterMembership(t *testing.T) {
	a, lib := newTestAssembly(t)
	addMemory(t, lib, "m1")
	addMemory(t, lib, "m2")
	addMemory(t, lib, "outside")
	c, err := a.Create(context.Background(), "One", "", []string{"m1", "m2"})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	a.WaitIdle()

	if _, err := a.GenerateTransition(context.Background(), c.ID, "m1", "outside"); !errors.Is(err, ErrMemoryNotInChapter) {
		t.Fatalf("GenerateTransition() error = %v, want ErrMemoryNotInChapter", err)
	}
}

func TestDeleteChapterKeepsMemories(t *testing.T) {
	a, lib := newTestAssembly(t)
	addMemory(t, lib, "m1")
	c, err := a.Create(context.Background(), "One", "", []string{"m1"})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	a.WaitIdle()

	if err := a.Delete(context.Background(), c.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if lib.MemoryCount() != 1 {
		t.Fatalf("MemoryCount() = %d, want 1", lib.MemoryCount())
	}
	if got := a.Unassigned(); len(got) != 1 {
		t.Fatalf("Unassigned() = %d entries, want the freed memory back", len(got))
	}
}

func TestRegenerateIntroductionUnknownChapter(t *testing.T) {
	a, _ := newTestAssembly(t)
	if _, err := a.RegenerateIntroduction(context.Background(), "missing"); !errors.Is(err, library.ErrChapterNotFound) {
		t.Fatalf("RegenerateIntroduction() error = %v, want ErrChapterNotFound", err)
	}
}
