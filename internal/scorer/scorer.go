// Package scorer computes a deterministic relevance score for one job
// against one candidate profile, plus the human-readable match reasons.
//
// The score is a weighted sum of four sub-scores, each normalised to
// [0,100] before weighting:
//
//	tech overlap 0.40 · title match 0.30 · location 0.20 · recency 0.10
//
// The weighted sum is divided by 100 and clamped to [0,1]. Every sub-score
// degrades to a defined floor on missing input, so scoring never errors.
package scorer

import (
	"strings"
	"time"

	"github.com/unlikelyUsual/job-listing-scraper/internal/model"
)

const (
	weightTech     = 0.40
	weightTitle    = 0.30
	weightLocation = 0.20
	weightRecency  = 0.10
)

// genericTitleKeywords give partial title credit when no desired role matches.
var genericTitleKeywords = []string{
	"developer", "engineer", "software", "full stack", "backend", "frontend",
}

// Score computes the relevance of rec for p at time now.
// The result is always within [0,1] and the reasons list is never empty.
func Score(p *model.CandidateProfile, rec *model.JobRecord, now time.Time) (float64, []string) {
	sum := weightTech*techScore(p.TechStack, rec.TechStack) +
		weightTitle*titleScore(p.DesiredRoles, rec.Title) +
		weightLocation*locationScore(p.Locations, rec.Location) +
		weightRecency*recencyScore(rec.PostedDate, now)

	score := clamp(sum / 100)
	return score, reasons(p, rec, now, score)
}

// techScore: matched techs over the larger of the two stacks, ×100.
// A job with no listed tech stack scores 0 here.
func techScore(profileTech, jobTech []string) float64 {
	if len(jobTech) == 0 {
		return 0
	}

	profileSet := make(map[string]bool, len(profileTech))
	for _, t := range profileTech {
		profileSet[strings.ToLower(strings.TrimSpace(t))] = true
	}

	matches := 0
	for _, t := range jobTech {
		if profileSet[strings.ToLower(strings.TrimSpace(t))] {
			matches++
		}
	}

	denom := len(jobTech)
	if len(profileTech) > denom {
		denom = len(profileTech)
	}
	if denom == 0 {
		return 0
	}
	return float64(matches) / float64(denom) * 100
}

// titleScore: 100 when the job title contains any desired role as a
// substring; otherwise partial credit for generic keywords, 60 at most.
func titleScore(roles []string, title string) float64 {
	if title == "" {
		return 0
	}
	lower := strings.ToLower(title)

	for _, role := range roles {
		role = strings.ToLower(strings.TrimSpace(role))
		if role != "" && strings.Contains(lower, role) {
			return 100
		}
	}

	matched := 0
	for _, kw := range genericTitleKeywords {
		if strings.Contains(lower, kw) {
			matched++
		}
	}
	return float64(matched) / float64(len(genericTitleKeywords)) * 60
}

// locationScore: all-or-nothing. Remote listings always match.
func locationScore(preferred []string, location string) float64 {
	if location == "" {
		return 0
	}
	lower := strings.ToLower(location)

	if strings.Contains(lower, "remote") || strings.Contains(lower, "work from home") {
		return 100
	}
	for _, loc := range preferred {
		loc = strings.ToLower(strings.TrimSpace(loc))
		if loc != "" && strings.Contains(lower, loc) {
			return 100
		}
	}
	return 0
}

// recencyScore buckets by posting age. Unknown dates are neutral, not stale.
func recencyScore(posted *time.Time, now time.Time) float64 {
	if posted == nil {
		return 50
	}
	days := now.Sub(*posted).Hours() / 24
	switch {
	case days <= 1:
		return 100
	case days <= 3:
		return 80
	case days <= 7:
		return 60
	case days <= 14:
		return 40
	case days <= 30:
		return 20
	default:
		return 0
	}
}

// clamp keeps the final score inside [0,1]. The weighted sum cannot exceed
// 100 by construction, so this guards the invariant rather than correcting
// a real path.
func clamp(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
