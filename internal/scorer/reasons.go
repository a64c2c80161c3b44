package scorer

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/unlikelyUsual/job-listing-scraper/internal/model"
)

// Keyword groups for the seniority and startup reason rules.
var (
	seniorKeywords  = []string{"senior", "lead", "staff", "principal"}
	juniorKeywords  = []string{"junior", "entry level", "entry-level", "graduate", "intern"}
	startupKeywords = []string{"startup", "early-stage", "early stage", "seed stage", "series a"}
)

// reasons re-derives human-readable justifications in a fixed rule order.
// It deliberately does not reuse the numeric sub-scores: each rule states a
// fact a reader can verify on the listing. When no rule fires, the overall
// percentage is emitted so the list is never empty.
func reasons(p *model.CandidateProfile, rec *model.JobRecord, now time.Time, score float64) []string {
	var out []string

	if matched := matchedTech(p.TechStack, rec.TechStack); len(matched) > 0 {
		shown := matched
		suffix := ""
		if len(shown) > 3 {
			shown = shown[:3]
			suffix = ", ..."
		}
		out = append(out, fmt.Sprintf("matches your skills: %s%s", strings.Join(shown, ", "), suffix))
	}

	if role := matchedRole(p.DesiredRoles, rec.Title); role != "" {
		out = append(out, fmt.Sprintf("title matches desired role %q", role))
	}

	lowerLoc := strings.ToLower(rec.Location)
	switch {
	case strings.Contains(lowerLoc, "remote") || strings.Contains(lowerLoc, "work from home"):
		out = append(out, "remote-friendly position")
	case matchedLocation(p.Locations, lowerLoc):
		out = append(out, fmt.Sprintf("located in a preferred area (%s)", rec.Location))
	}

	if rec.PostedDate != nil {
		days := now.Sub(*rec.PostedDate).Hours() / 24
		if days <= 1 {
			out = append(out, "posted today")
		} else if days <= 3 {
			out = append(out, "recently posted")
		}
	}

	if r := seniorityReason(p.ExperienceYears, rec.Title); r != "" {
		out = append(out, r)
	}

	if rec.SalaryRange != "" {
		out = append(out, "salary information available")
	}

	haystack := strings.ToLower(rec.Title + " " + rec.Description)
	for _, kw := range startupKeywords {
		if strings.Contains(haystack, kw) {
			out = append(out, "startup / early-stage company")
			break
		}
	}

	if len(out) == 0 {
		out = append(out, fmt.Sprintf("overall score: %d%%", int(math.Round(score*100))))
	}
	return out
}

func matchedTech(profileTech, jobTech []string) []string {
	profileSet := make(map[string]bool, len(profileTech))
	for _, t := range profileTech {
		profileSet[strings.ToLower(strings.TrimSpace(t))] = true
	}
	var matched []string
	for _, t := range jobTech {
		if profileSet[strings.ToLower(strings.TrimSpace(t))] {
			matched = append(matched, t)
		}
	}
	return matched
}

func matchedRole(roles []string, title string) string {
	lower := strings.ToLower(title)
	for _, role := range roles {
		trimmed := strings.TrimSpace(role)
		if trimmed != "" && strings.Contains(lower, strings.ToLower(trimmed)) {
			return trimmed
		}
	}
	return ""
}

func matchedLocation(preferred []string, lowerLoc string) bool {
	if lowerLoc == "" {
		return false
	}
	for _, loc := range preferred {
		loc = strings.ToLower(strings.TrimSpace(loc))
		if loc != "" && strings.Contains(lowerLoc, loc) {
			return true
		}
	}
	return false
}

// seniorityReason fires when the title's seniority wording lines up with the
// candidate's years of experience.
func seniorityReason(years int, title string) string {
	lower := strings.ToLower(title)
	if years >= 5 {
		for _, kw := range seniorKeywords {
			if strings.Contains(lower, kw) {
				return fmt.Sprintf("seniority matches your %d years of experience", years)
			}
		}
	}
	if years <= 2 {
		for _, kw := range juniorKeywords {
			if strings.Contains(lower, kw) {
				return fmt.Sprintf("experience level matches your %d years of experience", years)
			}
		}
	}
	return ""
}
