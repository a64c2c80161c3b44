// Package store persists jobs and scraping sessions in PostgreSQL and keeps
// the Redis seen-URL cache.
package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Store wraps the pgx connection pool. Construct with New; there is no
// package-level singleton — tests build their own against a disposable DB.
type Store struct {
	pool *pgxpool.Pool
}

// New creates and verifies a pgxpool connection pool.
func New(ctx context.Context, databaseURL string) (*Store, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("pgxpool.New: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres ping failed: %w", err)
	}
	return &Store{pool: pool}, nil
}

// Close releases the pool.
func (s *Store) Close() { s.pool.Close() }

// EnsureSchema creates the two tables when missing. Kept idempotent so every
// start can call it unconditionally.
func (s *Store) EnsureSchema(ctx context.Context) error {
	const ddl = `
	CREATE TABLE IF NOT EXISTS scraping_sessions (
		id                UUID PRIMARY KEY,
		session_date      TIMESTAMPTZ NOT NULL,
		status            TEXT NOT NULL DEFAULT 'RUNNING',
		queries           TEXT[] NOT NULL DEFAULT '{}',
		total_jobs_found  INT NOT NULL DEFAULT 0,
		top_jobs_selected INT NOT NULL DEFAULT 0,
		error_message     TEXT NOT NULL DEFAULT '',
		created_at        TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at        TIMESTAMPTZ NOT NULL DEFAULT now()
	);

	CREATE TABLE IF NOT EXISTS jobs (
		id            BIGSERIAL PRIMARY KEY,
		session_id    UUID REFERENCES scraping_sessions(id),
		job_url       TEXT NOT NULL UNIQUE,
		title         TEXT NOT NULL,
		company       TEXT NOT NULL DEFAULT '',
		company_url   TEXT NOT NULL DEFAULT '',
		description   TEXT NOT NULL DEFAULT '',
		requirements  TEXT NOT NULL DEFAULT '',
		tech_stack    TEXT[] NOT NULL DEFAULT '{}',
		salary_range  TEXT,
		location      TEXT,
		posted_date   TIMESTAMPTZ,
		score         DOUBLE PRECISION NOT NULL DEFAULT 0,
		match_reasons TEXT[] NOT NULL DEFAULT '{}',
		top_pick      BOOLEAN NOT NULL DEFAULT FALSE,
		created_at    TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at    TIMESTAMPTZ NOT NULL DEFAULT now()
	);

	CREATE INDEX IF NOT EXISTS idx_jobs_session ON jobs (session_id);
	CREATE INDEX IF NOT EXISTS idx_jobs_top_pick ON jobs (top_pick) WHERE top_pick;`

	if _, err := s.pool.Exec(ctx, ddl); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}
