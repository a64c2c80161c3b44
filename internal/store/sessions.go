package store

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/unlikelyUsual/job-listing-scraper/internal/model"
)

// CreateSession inserts a RUNNING session row and returns its id.
func (s *Store) CreateSession(ctx context.Context, date time.Time, queries []string) (string, error) {
	id := uuid.NewString()
	if _, err := s.pool.Exec(ctx,
		`INSERT INTO scraping_sessions (id, session_date, status, queries)
		 VALUES ($1, $2, $3, $4)`,
		id, date, model.SessionRunning, queries,
	); err != nil {
		return "", fmt.Errorf("create session: %w", err)
	}
	return id, nil
}

// CompleteSession marks a session COMPLETED with its final counts.
func (s *Store) CompleteSession(ctx context.Context, id string, totalFound, topSelected int) error {
	if _, err := s.pool.Exec(ctx,
		`UPDATE scraping_sessions
		 SET status = $2, total_jobs_found = $3, top_jobs_selected = $4, updated_at = now()
		 WHERE id = $1`,
		id, model.SessionCompleted, totalFound, topSelected,
	); err != nil {
		return fmt.Errorf("complete session %s: %w", id, err)
	}
	return nil
}

// FailSession marks a session FAILED with the captured error message.
func (s *Store) FailSession(ctx context.Context, id, message string) error {
	if _, err := s.pool.Exec(ctx,
		`UPDATE scraping_sessions
		 SET status = $2, error_message = $3, updated_at = now()
		 WHERE id = $1`,
		id, model.SessionFailed, message,
	); err != nil {
		return fmt.Errorf("fail session %s: %w", id, err)
	}
	return nil
}

// LastSessionDate returns the most recent session_date, or nil when no
// session has ever run. The pipeline's interval guard reads this.
func (s *Store) LastSessionDate(ctx context.Context) (*time.Time, error) {
	var date time.Time
	err := s.pool.QueryRow(ctx,
		`SELECT session_date FROM scraping_sessions ORDER BY session_date DESC LIMIT 1`,
	).Scan(&date)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("last session date: %w", err)
	}
	return &date, nil
}

// LatestSession returns the most recent session row, or nil when none exists.
// Backs the status command.
func (s *Store) LatestSession(ctx context.Context) (*model.Session, error) {
	var sess model.Session
	err := s.pool.QueryRow(ctx,
		`SELECT id, session_date, status, queries, total_jobs_found,
		        top_jobs_selected, error_message, created_at, updated_at
		 FROM scraping_sessions ORDER BY session_date DESC LIMIT 1`,
	).Scan(
		&sess.ID, &sess.SessionDate, &sess.Status, &sess.Queries,
		&sess.TotalJobsFound, &sess.TopJobsSelected, &sess.ErrorMessage,
		&sess.CreatedAt, &sess.UpdatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("latest session: %w", err)
	}
	return &sess, nil
}
