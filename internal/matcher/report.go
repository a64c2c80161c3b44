package matcher

import (
	"sort"
	"strings"

	"github.com/unlikelyUsual/job-listing-scraper/internal/model"
)

const reportTopSize = 10

// BuildReport aggregates a scored batch into a JobReport. Pure function of
// its input; operates on the full scored list, not the selection.
func BuildReport(scored []model.ScoredJob) model.JobReport {
	report := model.JobReport{
		TotalJobs: len(scored),
		Locations: make(map[string]int),
	}
	if len(scored) == 0 {
		return report
	}

	techCounts := make(map[string]int)
	companyCounts := make(map[string]int)
	var sum float64

	for _, sj := range scored {
		sum += sj.Score

		for _, tech := range sj.Job.TechStack {
			techCounts[tech]++
		}
		if company := strings.TrimSpace(sj.Job.Company); company != "" {
			companyCounts[company]++
		}

		location := strings.TrimSpace(sj.Job.Location)
		if location == "" {
			location = "unknown"
		}
		report.Locations[location]++

		switch {
		case sj.Score > 0.8:
			report.ScoreBands.Excellent++
		case sj.Score > 0.6:
			report.ScoreBands.Good++
		case sj.Score > 0.4:
			report.ScoreBands.Fair++
		default:
			report.ScoreBands.Poor++
		}
	}

	report.AverageScore = sum / float64(len(scored))
	report.TopTech = topEntries(techCounts, reportTopSize)
	report.TopCompanies = topEntries(companyCounts, reportTopSize)
	return report
}

// topEntries ranks a frequency map, highest count first, name ascending on
// ties so the ranking is deterministic.
func topEntries(counts map[string]int, n int) []model.CountEntry {
	entries := make([]model.CountEntry, 0, len(counts))
	for name, count := range counts {
		entries = append(entries, model.CountEntry{Name: name, Count: count})
	}
	sort.Slice(entries, func(a, b int) bool {
		if entries[a].Count != entries[b].Count {
			return entries[a].Count > entries[b].Count
		}
		return entries[a].Name < entries[b].Name
	})
	if len(entries) > n {
		entries = entries[:n]
	}
	return entries
}
