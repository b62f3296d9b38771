package library

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/tapestry-labs/tapestry/internal/memoir"
	"github.com/tapestry-labs/tapestry/internal/observability"
	"github.com/tapestry-labs/tapestry/internal/store"
)

var (
	ErrMemoryNotFound  = errors.New("memory not found")
	ErrChapterNotFound = errors.New("chapter not found")
)

// Event describes a collection change, published to the change feed.
type Event struct {
	Type string `json:"type"`
	ID   string `json:"id,omitempty"`
}

const (
	EventMemoriesChanged   = "memories_changed"
	EventChaptersChanged   = "chapters_changed"
	EventIntroductionReady = "introduction_ready"
	EventTransitionReady   = "transition_ready"
)

// Library exclusively owns the in-memory record collections. Every mutation
// computes the new full collection and rewrites the persisted blob; a write
// failure is logged and the in-memory state stays authoritative for the rest
// of the session. Writes are issued under the lock, in mutation order.
type Library struct {
	mu       sync.Mutex
	store    store.Store
	metrics  *observability.Metrics
	notify   func(Event)
	memories []memoir.Memory
	chapters []memoir.Chapter
}

func New(st store.Store, metrics *observability.Metrics) *Library {
	return &Library{store: st, metrics: metrics}
}

// SetNotify installs the change-feed hook. Not safe to call after the
// library is in use.
func (l *Library) SetNotify(notify func(Event)) {
	l.notify = notify
}

// Hydrate loads both collections, defaulting fields absent from older blobs.
// Load failures are soft: logged and treated as no persisted data.
func (l *Library) Hydrate(ctx context.Context) {
	memories, err := l.store.LoadMemories(ctx)
	if err != nil {
		log.Printf("loading memories failed, starting empty: %v", err)
		memories = nil
	}
	chapters, err := l.store.LoadChapters(ctx)
	if err != nil {
		log.Printf("loading chapters failed, starting empty: %v", err)
		chapters = nil
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	l.memories = memoir.NormalizeMemories(memories)
	l.chapters = memoir.NormalizeChapters(chapters)
}

func (l *Library) Memories() []memoir.Memory {
	l.mu.Lock()
	defer l.mu.Unlock()
	return memoir.CloneMemories(l.memories)
}

func (l *Library) Chapters() []memoir.Chapter {
	l.mu.Lock()
	defer l.mu.Unlock()
	return memoir.CloneChapters(l.chapters)
}

func (l *Library) MemoryByID(id string) (memoir.Memory, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, m := range l.memories {
		if m.ID == id {
			return m.Clone(), nil
		}
	}
	return memoir.Memory{}, ErrMemoryNotFound
}

func (l *Library) ChapterByID(id string) (memoir.Chapter, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, c := range l.chapters {
		if c.ID == id {
			return c.Clone(), nil
		}
	}
	return memoir.Chapter{}, ErrChapterNotFound
}

func (l *Library) MemoryCount() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.memories)
}

// AddMemory prepends the record, assigning an id and creation timestamp when
// absent. The creation timestamp is never altered afterwards.
func (l *Library) AddMemory(ctx context.Context, m memoir.Memory) memoir.Memory {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	if m.Timestamp.IsZero() {
		m.Timestamp = time.Now().UTC()
	}
	m = memoir.NormalizeMemory(m)

	l.mu.Lock()
	defer l.mu.Unlock()
	l.memories = append([]memoir.Memory{m.Clone()}, l.memories...)
	l.persistMemories(ctx)
	l.publish(Event{Type: EventMemoriesChanged, ID: m.ID})
	return m
}

// UpdateMemory wholly replaces the stored record with the incoming one,
// keeping the original creation timestamp.
func (l *Library) UpdateMemory(ctx context.Context, m memoir.Memory) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	for i, existing := range l.memories {
		if existing.ID != m.ID {
			continue
		}
		m.Timestamp = existing.Timestamp
		l.memories[i] = memoir.NormalizeMemory(m.Clone())
		l.persistMemories(ctx)
		l.publish(Event{Type: EventMemoriesChanged, ID: m.ID})
		return nil
	}
	return ErrMemoryNotFound
}

// DeleteMemory removes the record. Chapters referencing it are left as-is;
// readers tolerate the dangling reference.
func (l *Library) DeleteMemory(ctx context.Context, id string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	for i, existing := range l.memories {
		if existing.ID != id {
			continue
		}
		l.memories = append(l.memories[:i], l.memories[i+1:]...)
		l.persistMemories(ctx)
		l.publish(Event{Type: EventMemoriesChanged, ID: id})
		return nil
	}
	return ErrMemoryNotFound
}

func (l *Library) AddChapter(ctx context.Context, c memoir.Chapter) memoir.Chapter {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	c = memoir.NormalizeChapter(c)

	l.mu.Lock()
	defer l.mu.Unlock()
	l.chapters = append(l.chapters, c.Clone())
	l.persistChapters(ctx)
	l.publish(Event{Type: EventChaptersChanged, ID: c.ID})
	return c
}

func (l *Library) UpdateChapter(ctx context.Context, c memoir.Chapter) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	for i, existing := range l.chapters {
		if existing.ID != c.ID {
			continue
		}
		l.chapters[i] = memoir.NormalizeChapter(c.Clone())
		l.persistChapters(ctx)
		l.publish(Event{Type: EventChaptersChanged, ID: c.ID})
		return nil
	}
	return ErrChapterNotFound
}

// DeleteChapter removes the chapter only; referenced memories are unaffected
// and become eligible again as unassigned.
func (l *Library) DeleteChapter(ctx context.Context, id string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	for i, existing := range l.chapters {
		if existing.ID != id {
			continue
		}
		l.chapters = append(l.chapters[:i], l.chapters[i+1:]...)
		l.persistChapters(ctx)
		l.publish(Event{Type: EventChaptersChanged, ID: id})
		return nil
	}
	return ErrChapterNotFound
}

// NextChapterOrder returns the order index for a newly created chapter.
func (l *Library) NextChapterOrder() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	next := 0
	for _, c := range l.chapters {
		if c.Order >= next {
			next = c.Order + 1
		}
	}
	return next
}

func (l *Library) persistMemories(ctx context.Context) {
	if err := l.store.ReplaceMemories(ctx, l.memories); err != nil {
		log.Printf("persisting memories failed, in-memory state kept: %v", err)
		l.metrics.ObserveStoreWrite(store.KeyMemories, "error")
		return
	}
	l.metrics.ObserveStoreWrite(store.KeyMemories, "ok")
}

func (l *Library) persistChapters(ctx context.Context) {
	if err := l.store.ReplaceChapters(ctx, l.chapters); err != nil {
		log.Printf("persisting chapters failed, in-memory state kept: %v", err)
		l.metrics.ObserveStoreWrite(store.KeyChapters, "error")
		return
	}
	l.metrics.ObserveStoreWrite(store.KeyChapters, "ok")
}

func (l *Library) publish(ev Event) {
	if l.notify != nil {
		l.notify(ev)
	}
}

// Publish emits an event on behalf of collaborating services (e.g. when a
// chapter introduction finishes generating).
func (l *Library) Publish(ev Event) {
	l.publish(ev)
}
