// Package model defines the shared data structures flowing through the
// discovery pipeline: profile in, search hits and raw pages through the
// middle, scored jobs and session rows out.
package model

import "time"

// CandidateProfile is the structured resume/preferences input driving search
// queries and scoring. Loaded once per run and never mutated.
type CandidateProfile struct {
	Name            string   `json:"name"`
	DesiredRoles    []string `json:"desiredRoles"`    // ordered by preference
	TechStack       []string `json:"techStack"`       // declared skills
	Locations       []string `json:"locations"`       // "remote" matches implicitly
	ExperienceYears int      `json:"experienceYears"`
	ExcludeKeywords []string `json:"excludeKeywords,omitempty"` // any match discards the listing
}

// SearchHit is one result from the upstream search step. The pipeline treats
// it as an opaque pointer to a page worth visiting.
type SearchHit struct {
	URL     string `json:"url"`
	Title   string `json:"title"`
	Snippet string `json:"snippet"`
	Site    string `json:"site"`
}

// JobRecord is the normalised representation of one scraped listing.
// JobURL is the natural identity — the persistence layer reconciles records
// sharing a URL (latest write wins) instead of duplicating rows.
// Immutable once produced by the extractor.
type JobRecord struct {
	Title        string     `json:"title"`
	Company      string     `json:"company"`
	CompanyURL   string     `json:"companyUrl,omitempty"`
	JobURL       string     `json:"jobUrl"`
	Description  string     `json:"description"`
	Requirements string     `json:"requirements,omitempty"`
	TechStack    []string   `json:"techStack"`
	SalaryRange  string     `json:"salaryRange,omitempty"`
	Location     string     `json:"location,omitempty"`
	PostedDate   *time.Time `json:"postedDate,omitempty"` // nil = unknown, distinct from "now"
}

// ScoredJob pairs a JobRecord with its relevance score and the human-readable
// justifications. Score is always within [0,1]; MatchReasons is never empty.
type ScoredJob struct {
	Job          JobRecord `json:"job"`
	Score        float64   `json:"score"`
	MatchReasons []string  `json:"matchReasons"`
}

// Session status values mirror the scraping_sessions.status column.
// RUNNING transitions exactly once, to COMPLETED or FAILED; both are terminal.
const (
	SessionRunning   = "RUNNING"
	SessionCompleted = "COMPLETED"
	SessionFailed    = "FAILED"
)

// Session is one end-to-end pipeline execution and its outcome.
type Session struct {
	ID              string
	SessionDate     time.Time
	Status          string
	Queries         []string
	TotalJobsFound  int
	TopJobsSelected int
	ErrorMessage    string // set only when Status == FAILED
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// JobReport is a derived aggregate over a scored batch. Pure function of its
// input — no identity, no lifecycle, never persisted.
type JobReport struct {
	TotalJobs    int
	AverageScore float64
	TopTech      []CountEntry   // top 10 technologies by frequency
	TopCompanies []CountEntry   // top 10 companies by frequency
	Locations    map[string]int // location histogram ("unknown" bucket for blanks)
	ScoreBands   ScoreBands
}

// CountEntry is one row of a frequency ranking.
type CountEntry struct {
	Name  string
	Count int
}

// ScoreBands buckets a batch by score: excellent >0.8, good (0.6,0.8],
// fair (0.4,0.6], poor ≤0.4.
type ScoreBands struct {
	Excellent int
	Good      int
	Fair      int
	Poor      int
}
