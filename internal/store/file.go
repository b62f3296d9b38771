package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/tapestry-labs/tapestry/internal/memoir"
)

// FileStore keeps each collection in one JSON file under a data directory.
// This is the local-first backend: the whole blob is rewritten on every
// mutation, read once at startup.
type FileStore struct {
	mu  sync.Mutex
	dir string
}

func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	return &FileStore{dir: dir}, nil
}

func (s *FileStore) LoadMemories(_ context.Context) ([]memoir.Memory, error) {
	var out []memoir.Memory
	if err := s.read(KeyMemories, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *FileStore) LoadChapters(_ context.Context) ([]memoir.Chapter, error) {
	var out []memoir.Chapter
	if err := s.read(KeyChapters, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *FileStore) ReplaceMemories(_ context.Context, memories []memoir.Memory) error {
	return s.write(KeyMemories, memories)
}

func (s *FileStore) ReplaceChapters(_ context.Context, chapters []memoir.Chapter) error {
	return s.write(KeyChapters, chapters)
}

func (s *FileStore) Close() error { return nil }

func (s *FileStore) path(key string) string {
	return filepath.Join(s.dir, key+".json")
}

func (s *FileStore) read(key string, out any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, err := os.ReadFile(s.path(key))
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("read %s blob: %w", key, err)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("parse %s blob: %w", key, err)
	}
	return nil
}

// write replaces the blob atomically: marshal, write to a temp file in the
// same directory, rename over the old blob.
func (s *FileStore) write(key string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode %s blob: %w", key, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	tmp, err := os.CreateTemp(s.dir, key+"-*.tmp")
	if err != nil {
		return fmt.Errorf("write %s blob: %w", key, err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("write %s blob: %w", key, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("write %s blob: %w", key, err)
	}
	if err := os.Rename(tmp.Name(), s.path(key)); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("replace %s blob: %w", key, err)
	}
	return nil
}
