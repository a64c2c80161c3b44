// Package profile loads the candidate profile that drives search and scoring.
package profile

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/unlikelyUsual/job-listing-scraper/internal/model"
)

// Load reads and validates a CandidateProfile from a JSON file.
// A profile must name at least one desired role — roles seed the search
// queries, so an empty list would make every session a no-op.
func Load(path string) (*model.CandidateProfile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read profile %s: %w", path, err)
	}

	var p model.CandidateProfile
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("parse profile %s: %w", path, err)
	}

	if len(p.DesiredRoles) == 0 {
		return nil, fmt.Errorf("profile %s: desiredRoles must not be empty", path)
	}
	if p.ExperienceYears < 0 {
		return nil, fmt.Errorf("profile %s: experienceYears must not be negative", path)
	}

	return &p, nil
}

// Queries builds the search queries for a profile: one per desired role,
// combined with the first preferred location (or "remote" when none is set).
func Queries(p *model.CandidateProfile) []string {
	location := "remote"
	if len(p.Locations) > 0 {
		location = p.Locations[0]
	}

	queries := make([]string, 0, len(p.DesiredRoles))
	for _, role := range p.DesiredRoles {
		role = strings.TrimSpace(role)
		if role == "" {
			continue
		}
		queries = append(queries, fmt.Sprintf("%s jobs %s", role, location))
	}
	return queries
}
