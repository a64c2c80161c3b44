package store

import (
	"context"
	"fmt"

	"github.com/unlikelyUsual/job-listing-scraper/internal/model"
)

// UpsertJob inserts a scored job or, when the job_url already exists,
// refreshes its mutable fields (title, company, description, score, reasons,
// session). top_pick is reset on update and re-marked by MarkTopPicks, so the
// two-phase write stays idempotent regardless of insert order.
func (s *Store) UpsertJob(ctx context.Context, sessionID string, sj model.ScoredJob) (int64, error) {
	var id int64
	err := s.pool.QueryRow(ctx,
		`INSERT INTO jobs (session_id, job_url, title, company, company_url,
		                   description, requirements, tech_stack, salary_range,
		                   location, posted_date, score, match_reasons)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NULLIF($9, ''), NULLIF($10, ''), $11, $12, $13)
		 ON CONFLICT (job_url) DO UPDATE SET
		   session_id    = EXCLUDED.session_id,
		   title         = EXCLUDED.title,
		   company       = EXCLUDED.company,
		   description   = EXCLUDED.description,
		   score         = EXCLUDED.score,
		   match_reasons = EXCLUDED.match_reasons,
		   top_pick      = FALSE,
		   updated_at    = now()
		 RETURNING id`,
		sessionID, sj.Job.JobURL, sj.Job.Title, sj.Job.Company, sj.Job.CompanyURL,
		sj.Job.Description, sj.Job.Requirements, sj.Job.TechStack, sj.Job.SalaryRange,
		sj.Job.Location, sj.Job.PostedDate, sj.Score, sj.MatchReasons,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("upsert job %s: %w", sj.Job.JobURL, err)
	}
	return id, nil
}

// MarkTopPicks flags the given job rows as this session's selection.
func (s *Store) MarkTopPicks(ctx context.Context, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}
	if _, err := s.pool.Exec(ctx,
		`UPDATE jobs SET top_pick = TRUE, updated_at = now() WHERE id = ANY($1)`,
		ids,
	); err != nil {
		return fmt.Errorf("mark top picks: %w", err)
	}
	return nil
}
