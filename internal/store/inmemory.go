package store

import (
	"context"
	"sync"

	"github.com/tapestry-labs/tapestry/internal/memoir"
)

// InMemoryStore is a simple in-process store for local/dev use and tests.
type InMemoryStore struct {
	mu       sync.RWMutex
	memories []memoir.Memory
	chapters []memoir.Chapter
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{}
}

func (s *InMemoryStore) LoadMemories(_ context.Context) ([]memoir.Memory, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return memoir.CloneMemories(s.memories), nil
}

func (s *InMemoryStore) LoadChapters(_ context.Context) ([]memoir.Chapter, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return memoir.CloneChapters(s.chapters), nil
}

func (s *InMemoryStore) ReplaceMemories(_ context.Context, memories []memoir.Memory) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.memories = memoir.CloneMemories(memories)
	return nil
}

func (s *InMemoryStore) ReplaceChapters(_ context.Context, chapters []memoir.Chapter) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.chapters = memoir.CloneChapters(chapters)
	return nil
}

func (s *InMemoryStore) Close() error { return nil }
