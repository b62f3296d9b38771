package chapters

import (
	"context"
	"errors"
	"log"
	"sync"

	"github.com/tapestry-labs/tapestry/internal/library"
	"github.com/tapestry-labs/tapestry/internal/memoir"
	"github.com/tapestry-labs/tapestry/internal/scribe"
)

var (
	ErrTitleRequired      = errors.New("chapter title is required")
	ErrNoMemories         = errors.New("chapter needs at least one memory")
	ErrUnknownMemory      = errors.New("memory not found")
	ErrMemoryAssigned     = errors.New("memory already belongs to a chapter")
	ErrMemoryNotInChapter = errors.New("memory is not part of this chapter")
	ErrGenerationPending  = errors.New("generation already in progress")
)

// Assembly groups memories into chapters and fills in the connecting prose.
// Introductions are generated in the background so creating a chapter never
// waits on the scribe; transitions are generated on demand.
type Assembly struct {
	lib    *library.Library
	scribe *scribe.Scribe

	mu                sync.Mutex
	pendingIntro      map[string]bool
	pendingTransition map[string]bool

	wg sync.WaitGroup
}

func New(lib *library.Library, sc *scribe.Scribe) *Assembly {
	return &Assembly{
		lib:               lib,
		scribe:            sc,
		pendingIntro:      make(map[string]bool),
		pendingTransition: make(map[string]bool),
	}
}

// Unassigned returns the memories not referenced by any chapter. Only these
// are candidates for a new chapter; a memory belongs to at most one chapter
// by convention.
func (a *Assembly) Unassigned() []memoir.Memory {
	chapters := a.lib.Chapters()
	assigned := make(map[string]bool)
	for _, c := range chapters {
		for _, id := range c.MemoryIDs {
			assigned[id] = true
		}
	}

	var out []memoir.Memory
	for _, m := range a.lib.Memories() {
		if !assigned[m.ID] {
			out = append(out, m)
		}
	}
	return out
}

// Create persists a new chapter immediately and fills its introduction in
// the background. Every referenced memory must exist and be unassigned.
func (a *Assembly) Create(ctx context.Context, title, description string, memoryIDs []string) (memoir.Chapter, error) {
	if title == "" {
		return memoir.Chapter{}, ErrTitleRequired
	}
	if len(memoryIDs) == 0 {
		return memoir.Chapter{}, ErrNoMemories
	}

	assigned := make(map[string]bool)
	for _, c := range a.lib.Chapters() {
		for _, id := range c.MemoryIDs {
			assigned[id] = true
		}
	}
	for _, id := range memoryIDs {
		if _, err := a.lib.MemoryByID(id); err != nil {
			return memoir.Chapter{}, ErrUnknownMemory
		}
		if assigned[id] {
			return memoir.Chapter{}, ErrMemoryAssigned
		}
	}

	chapter := a.lib.AddChapter(ctx, memoir.Chapter{
		Title:       title,
		Description: description,
		MemoryIDs:   memoir.Dedupe(memoryIDs),
		Order:       a.lib.NextChapterOrder(),
	})

	a.mu.Lock()
	a.pendingIntro[chapter.ID] = true
	a.mu.Unlock()

	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		a.fillIntroduction(context.Background(), chapter.ID)
	}()

	return chapter, nil
}

// RegenerateIntroduction rewrites the introduction of an existing chapter,
// synchronously. Overlapping requests for the same chapter are rejected.
func (a *Assembly) RegenerateIntroduction(ctx context.Context, chapterID string) (memoir.Chapter, error) {
	if _, err := a.lib.ChapterByID(chapterID); err != nil {
		return memoir.Chapter{}, err
	}

	a.mu.Lock()
	if a.pendingIntro[chapterID] {
		a.mu.Unlock()
		return memoir.Chapter{}, ErrGenerationPending
	}
	a.pendingIntro[chapterID] = true
	a.mu.Unlock()

	a.fillIntroduction(ctx, chapterID)
	return a.lib.ChapterByID(chapterID)
}

func (a *Assembly) fillIntroduction(ctx context.Context, chapterID string) {
	defer func() {
		a.mu.Lock()
		delete(a.pendingIntro, chapterID)
		a.mu.Unlock()
	}()

	chapter, err := a.lib.ChapterByID(chapterID)
	if err != nil {
		log.Printf("introduction skipped, chapter gone: %v", err)
		return
	}

	var excerpts []scribe.Excerpt
	for _, id := range chapter.MemoryIDs {
		m, err := a.lib.MemoryByID(id)
		if err != nil {
			continue
		}
		excerpts = append(excerpts, scribe.Excerpt{Prompt: m.Prompt, Response: m.Response})
	}

	intro, _ := a.scribe.Introduction(ctx, scribe.IntroRequest{
		Title:       chapter.Title,
		Description: chapter.Description,
		Memories:    excerpts,
	})

	chapter, err = a.lib.ChapterByID(chapterID)
	if err != nil {
		return
	}
	chapter.Introduction = intro
	if err := a.lib.UpdateChapter(ctx, chapter); err != nil {
		log.Printf("storing introduction failed: %v", err)
		return
	}
	a.lib.Publish(library.Event{Type: library.EventIntroductionReady, ID: chapterID})
}

// GenerateTransition writes the bridge between two memories of a chapter and
// stores it keyed by the first memory's id, replacing any previous text for
// that key. Both memories must belong to the chapter. An overlapping request
// for the same chapter and key is rejected.
func (a *Assembly) GenerateTransition(ctx context.Context, chapterID, fromID, toID string) (string, error) {
	chapter, err := a.lib.ChapterByID(chapterID)
	if err != nil {
		return "", err
	}
	if !chapter.References(fromID) || !chapter.References(toID) {
		return "", ErrMemoryNotInChapter
	}
	from, err := a.lib.MemoryByID(fromID)
	if err != nil {
		return "", ErrUnknownMemory
	}
	to, err := a.lib.MemoryByID(toID)
	if err != nil {
		return "", ErrUnknownMemory
	}

	key := chapterID + "/" + fromID
	a.mu.Lock()
	if a.pendingTransition[key] {
		a.mu.Unlock()
		return "", ErrGenerationPending
	}
	a.pendingTransition[key] = true
	a.mu.Unlock()
	defer func() {
		a.mu.Lock()
		delete(a.pendingTransition, key)
		a.mu.Unlock()
	}()

	text, _ := a.scribe.Transition(ctx, scribe.TransitionRequest{
		From: scribe.Excerpt{Prompt: from.Prompt, Response: from.Response},
		To:   scribe.Excerpt{Prompt: to.Prompt, Response: to.Response},
	})

	chapter, err = a.lib.ChapterByID(chapterID)
	if err != nil {
		return "", err
	}
	chapter.Transitions[fromID] = text
	if err := a.lib.UpdateChapter(ctx, chapter); err != nil {
		return "", err
	}
	a.lib.Publish(library.Event{Type: library.EventTransitionReady, ID: chapterID})
	return text, nil
}

// Delete removes the chapter only. Its memories survive and become
// unassigned candidates again.
func (a *Assembly) Delete(ctx context.Context, chapterID string) error {
	return a.lib.DeleteChapter(ctx, chapterID)
}

// WaitIdle blocks until background introduction work has finished. Used at
// shutdown and by tests.
func (a *Assembly) WaitIdle() {
	a.wg.Wait()
}
