package matcher_test

import (
	"fmt"
	"reflect"
	"testing"
	"time"

	"github.com/unlikelyUsual/job-listing-scraper/internal/matcher"
	"github.com/unlikelyUsual/job-listing-scraper/internal/model"
)

var now = time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)

func profileFor(tech ...string) *model.CandidateProfile {
	return &model.CandidateProfile{
		Name:         "Candidate",
		DesiredRoles: []string{"Backend Engineer"},
		TechStack:    tech,
		Locations:    []string{"Remote"},
	}
}

// rec builds a record whose score is controlled by how many profile techs it
// lists: with profile tech {A,B}, both → tech 100, one → 50, none → 0.
func rec(url string, tech ...string) model.JobRecord {
	return model.JobRecord{Title: "clerk", JobURL: url, TechStack: tech}
}

// ── RankAndSelect — ordering ───────────────────────────────────────────────

func TestRankAndSelect_SortsDescending(t *testing.T) {
	p := profileFor("Go", "Redis")
	records := []model.JobRecord{
		rec("u1"),               // weakest
		rec("u2", "Go", "Redis"), // strongest
		rec("u3", "Go"),         // middle
	}

	scored, _ := matcher.RankAndSelect(p, records, 10, 0, now)
	if len(scored) != 3 {
		t.Fatalf("len(scored) = %d", len(scored))
	}
	for i := 1; i < len(scored); i++ {
		if scored[i].Score > scored[i-1].Score {
			t.Errorf("scored not descending at %d: %v > %v", i, scored[i].Score, scored[i-1].Score)
		}
	}
	if scored[0].Job.JobURL != "u2" {
		t.Errorf("strongest record should rank first, got %s", scored[0].Job.JobURL)
	}
}

func TestRankAndSelect_StableOnTies(t *testing.T) {
	p := profileFor("Go")
	// All identical scores: input order must survive, run after run.
	records := []model.JobRecord{rec("a"), rec("b"), rec("c"), rec("d")}

	first, _ := matcher.RankAndSelect(p, records, 10, 0, now)
	for run := 0; run < 5; run++ {
		again, _ := matcher.RankAndSelect(p, records, 10, 0, now)
		if !reflect.DeepEqual(urls(first), urls(again)) {
			t.Fatalf("run %d: order changed: %v vs %v", run, urls(first), urls(again))
		}
	}
	if got := urls(first); !reflect.DeepEqual(got, []string{"a", "b", "c", "d"}) {
		t.Errorf("tied records must keep input order, got %v", got)
	}
}

func TestRankAndSelect_DeterministicAcrossRuns(t *testing.T) {
	p := profileFor("Go", "Redis", "Kafka")
	var records []model.JobRecord
	for i := 0; i < 30; i++ {
		r := rec(fmt.Sprintf("u%d", i))
		if i%2 == 0 {
			r.TechStack = []string{"Go"}
		}
		if i%3 == 0 {
			r.TechStack = append(r.TechStack, "Redis")
		}
		records = append(records, r)
	}

	first, firstSel := matcher.RankAndSelect(p, records, 5, 0.1, now)
	second, secondSel := matcher.RankAndSelect(p, records, 5, 0.1, now)
	if !reflect.DeepEqual(urls(first), urls(second)) {
		t.Error("scoring the same batch twice must yield identical order")
	}
	if !reflect.DeepEqual(urls(firstSel), urls(secondSel)) {
		t.Error("selection must be deterministic")
	}
}

// ── RankAndSelect — selection policy ───────────────────────────────────────

func TestRankAndSelect_ThresholdFilters(t *testing.T) {
	p := profileFor("Go", "Redis")
	records := []model.JobRecord{
		rec("high", "Go", "Redis"), // tech 100 → score 0.45
		rec("low"),                 // score 0.05
	}

	_, selected := matcher.RankAndSelect(p, records, 5, 0.3, now)
	if len(selected) != 1 || selected[0].Job.JobURL != "high" {
		t.Errorf("only the high scorer clears 0.3, got %v", urls(selected))
	}
}

func TestRankAndSelect_FallbackWhenNothingClears(t *testing.T) {
	p := profileFor("Go", "Redis")
	records := []model.JobRecord{
		rec("a", "Go"), // 0.2 + 0.05
		rec("b"),       // 0.05
	}

	_, selected := matcher.RankAndSelect(p, records, 2, 0.9, now)
	if got := urls(selected); !reflect.DeepEqual(got, []string{"a", "b"}) {
		t.Errorf("fallback must return top N sorted desc, got %v", got)
	}
}

func TestRankAndSelect_TopNCaps(t *testing.T) {
	p := profileFor("Go")
	var records []model.JobRecord
	for i := 0; i < 8; i++ {
		records = append(records, rec(fmt.Sprintf("u%d", i), "Go"))
	}

	scored, selected := matcher.RankAndSelect(p, records, 3, 0, now)
	if len(scored) != 8 {
		t.Errorf("scored must cover the whole batch, got %d", len(scored))
	}
	if len(selected) != 3 {
		t.Errorf("selection must cap at topN, got %d", len(selected))
	}
}

func TestRankAndSelect_NonPositiveTopNStillSelects(t *testing.T) {
	p := profileFor("Go")
	records := []model.JobRecord{rec("a", "Go"), rec("b")}

	for _, topN := range []int{0, -3} {
		_, selected := matcher.RankAndSelect(p, records, topN, 0.9, now)
		if got := urls(selected); !reflect.DeepEqual(got, []string{"a"}) {
			t.Errorf("topN=%d: selection must never be empty when records exist, got %v", topN, got)
		}
	}
}

func TestRankAndSelect_EmptyInput(t *testing.T) {
	scored, selected := matcher.RankAndSelect(profileFor(), nil, 5, 0.3, now)
	if scored != nil || selected != nil {
		t.Errorf("empty input yields empty output, got %v / %v", scored, selected)
	}
}

// ── Exclude-keyword filter ─────────────────────────────────────────────────

func TestFilter_DropsExcludedListings(t *testing.T) {
	p := profileFor("Go")
	p.ExcludeKeywords = []string{"crypto", "Unpaid"}

	records := []model.JobRecord{
		{Title: "Backend Engineer", JobURL: "keep1"},
		{Title: "Crypto Trading Engineer", JobURL: "drop1"},
		{Title: "Engineer", Description: "unpaid internship", JobURL: "drop2"},
		{Title: "Platform Engineer", Company: "Fintech Ltd", JobURL: "keep2"},
	}

	kept, dropped := matcher.Filter(p, records)
	if dropped != 2 {
		t.Errorf("dropped = %d, want 2", dropped)
	}
	want := []string{"keep1", "keep2"}
	got := make([]string, len(kept))
	for i, r := range kept {
		got[i] = r.JobURL
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("kept = %v, want %v", got, want)
	}
}

func TestFilter_NoKeywordsKeepsAll(t *testing.T) {
	records := []model.JobRecord{{JobURL: "a"}, {JobURL: "b"}}
	kept, dropped := matcher.Filter(profileFor(), records)
	if dropped != 0 || len(kept) != 2 {
		t.Errorf("kept=%d dropped=%d, want 2/0", len(kept), dropped)
	}
}

func urls(jobs []model.ScoredJob) []string {
	out := make([]string, len(jobs))
	for i, j := range jobs {
		out[i] = j.Job.JobURL
	}
	return out
}
