package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tapestry-labs/tapestry/internal/memoir"
)

// PostgresStore persists each collection as a single JSONB payload keyed by
// collection name, preserving the blob contract of the file backend.
type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(ctx context.Context, databaseURL string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}

	if err := initSchema(ctx, pool); err != nil {
		pool.Close()
		return nil, err
	}

	return &PostgresStore{pool: pool}, nil
}

func initSchema(ctx context.Context, pool *pgxpool.Pool) error {
	stmt := `CREATE TABLE IF NOT EXISTS tapestry_blobs (
		key TEXT PRIMARY KEY,
		payload JSONB NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	);`
	if _, err := pool.Exec(ctx, stmt); err != nil {
		return fmt.Errorf("init schema: %w", err)
	}
	return nil
}

func (s *PostgresStore) LoadMemories(ctx context.Context) ([]memoir.Memory, error) {
	var out []memoir.Memory
	if err := s.load(ctx, KeyMemories, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *PostgresStore) LoadChapters(ctx context.Context) ([]memoir.Chapter, error) {
	var out []memoir.Chapter
	if err := s.load(ctx, KeyChapters, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *PostgresStore) ReplaceMemories(ctx context.Context, memories []memoir.Memory) error {
	return s.replace(ctx, KeyMemories, memories)
}

func (s *PostgresStore) ReplaceChapters(ctx context.Context, chapters []memoir.Chapter) error {
	return s.replace(ctx, KeyChapters, chapters)
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

func (s *PostgresStore) load(ctx context.Context, key string, out any) error {
	var payload []byte
	err := s.pool.QueryRow(ctx,
		`SELECT payload FROM tapestry_blobs WHERE key=$1`, key,
	).Scan(&payload)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("load %s blob: %w", key, err)
	}
	if err := json.Unmarshal(payload, out); err != nil {
		return fmt.Errorf("parse %s blob: %w", key, err)
	}
	return nil
}

func (s *PostgresStore) replace(ctx context.Context, key string, v any) error {
	payload, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s blob: %w", key, err)
	}
	_, err = s.pool.Exec(ctx,
		`INSERT INTO tapestry_blobs (key, payload, updated_at)
		 VALUES ($1, $2, now())
		 ON CONFLICT (key) DO UPDATE SET payload = EXCLUDED.payload, updated_at = now()`,
		key, payload,
	)
	if err != nil {
		return fmt.Errorf("replace %s blob: %w", key, err)
	}
	return nil
}
