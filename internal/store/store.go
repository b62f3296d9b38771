package store

import (
	"context"
	"strings"

	"github.com/tapestry-labs/tapestry/internal/memoir"
)

// Store persists the two record collections as whole blobs. There is no
// partial-write API: every mutation replaces the full collection, which keeps
// writes ordered and the persisted shape identical to what a load returns.
type Store interface {
	LoadMemories(ctx context.Context) ([]memoir.Memory, error)
	LoadChapters(ctx context.Context) ([]memoir.Chapter, error)
	ReplaceMemories(ctx context.Context, memories []memoir.Memory) error
	ReplaceChapters(ctx context.Context, chapters []memoir.Chapter) error
	Close() error
}

// Blob keys, mirrored across all backends.
const (
	KeyMemories = "memories"
	KeyChapters = "chapters"
)

// NewStore creates a postgres-backed store when configured, a file-backed
// store when a data directory is set, otherwise in-memory.
func NewStore(ctx context.Context, databaseURL, dataDir string) (Store, error) {
	if strings.TrimSpace(databaseURL) != "" {
		return NewPostgresStore(ctx, databaseURL)
	}
	if strings.TrimSpace(dataDir) != "" {
		return NewFileStore(dataDir)
	}
	return NewInMemoryStore(), nil
}
