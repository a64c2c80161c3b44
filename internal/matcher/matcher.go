// Package matcher scores a batch of extracted jobs, ranks them, and selects
// the session's top picks.
package matcher

import (
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/unlikelyUsual/job-listing-scraper/internal/model"
	"github.com/unlikelyUsual/job-listing-scraper/internal/scorer"
)

// ContainsExcludeKeyword returns true if any profile exclusion term appears
// (case-insensitive) anywhere in the combined title + company + description
// text. Matching records are discarded before scoring.
func ContainsExcludeKeyword(rec *model.JobRecord, keywords []string) bool {
	if len(keywords) == 0 {
		return false
	}
	combined := strings.ToLower(rec.Title + " " + rec.Company + " " + rec.Description)
	for _, kw := range keywords {
		kw = strings.ToLower(strings.TrimSpace(kw))
		if kw != "" && strings.Contains(combined, kw) {
			return true
		}
	}
	return false
}

// Filter drops records hitting a profile exclusion term, returning the
// survivors in input order and the number discarded.
func Filter(p *model.CandidateProfile, recs []model.JobRecord) (kept []model.JobRecord, dropped int) {
	kept = make([]model.JobRecord, 0, len(recs))
	for i := range recs {
		if ContainsExcludeKeyword(&recs[i], p.ExcludeKeywords) {
			dropped++
			continue
		}
		kept = append(kept, recs[i])
	}
	return kept, dropped
}

// RankAndSelect scores every record against the profile, sorts descending by
// score, and selects up to topN records clearing minScore. Scoring reads only
// the profile and one record, so records are scored in parallel.
//
// The sort is stable: on equal scores, input order is preserved — scoring the
// same batch twice yields identical order. When no record clears the
// threshold, selection falls back to the top N of the unfiltered sorted list
// so a session always yields candidates when records exist.
func RankAndSelect(p *model.CandidateProfile, recs []model.JobRecord, topN int, minScore float64, now time.Time) (scored, selected []model.ScoredJob) {
	if len(recs) == 0 {
		return nil, nil
	}
	if topN < 1 {
		// Selection must never be empty when records exist, so the cap
		// floors at one.
		topN = 1
	}

	scored = make([]model.ScoredJob, len(recs))
	var wg sync.WaitGroup
	for i := range recs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			s, reasons := scorer.Score(p, &recs[i], now)
			scored[i] = model.ScoredJob{Job: recs[i], Score: s, MatchReasons: reasons}
		}(i)
	}
	wg.Wait()

	sort.SliceStable(scored, func(a, b int) bool {
		return scored[a].Score > scored[b].Score
	})

	for _, sj := range scored {
		if len(selected) >= topN {
			break
		}
		if sj.Score >= minScore {
			selected = append(selected, sj)
		}
	}
	if len(selected) == 0 {
		n := topN
		if n > len(scored) {
			n = len(scored)
		}
		selected = append(selected, scored[:n]...)
	}

	return scored, selected
}
