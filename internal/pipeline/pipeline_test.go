package pipeline_test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/unlikelyUsual/job-listing-scraper/internal/browser"
	"github.com/unlikelyUsual/job-listing-scraper/internal/model"
	"github.com/unlikelyUsual/job-listing-scraper/internal/pipeline"
)

// ── Fakes ──────────────────────────────────────────────────────────────────

type fakeSearcher struct {
	hits []model.SearchHit
	err  error
}

func (f *fakeSearcher) Search(_ context.Context, _ []string, maxResults int) ([]model.SearchHit, error) {
	if f.err != nil {
		return nil, f.err
	}
	if len(f.hits) > maxResults {
		return f.hits[:maxResults], nil
	}
	return f.hits, nil
}

type fakeLoader struct {
	mu     sync.Mutex
	pages  map[string]string // url → html; missing url = load failure
	loads  []string
	noSlot bool // set when any load arrives without a pool slot
}

func (f *fakeLoader) Load(_ context.Context, slot *browser.Context, url string) (*browser.RawPage, error) {
	f.mu.Lock()
	f.loads = append(f.loads, url)
	if slot == nil {
		f.noSlot = true
	}
	f.mu.Unlock()

	html, ok := f.pages[url]
	if !ok {
		return nil, errors.New("navigation timeout")
	}
	return &browser.RawPage{URL: url, HTML: []byte(html)}, nil
}

type fakeStore struct {
	mu           sync.Mutex
	lastDate     *time.Time
	lastDateErr  error
	upsertErr    error
	sessionID    string
	queries      []string
	upserted     map[string]model.ScoredJob
	topPicks     []int64
	completed    bool
	failed       bool
	failMessage  string
	completedFnd int
	completedSel int
}

func newFakeStore() *fakeStore {
	return &fakeStore{sessionID: "sess-1", upserted: make(map[string]model.ScoredJob)}
}

func (f *fakeStore) CreateSession(_ context.Context, _ time.Time, queries []string) (string, error) {
	f.queries = queries
	return f.sessionID, nil
}

func (f *fakeStore) CompleteSession(_ context.Context, _ string, found, selected int) error {
	f.completed = true
	f.completedFnd = found
	f.completedSel = selected
	return nil
}

func (f *fakeStore) FailSession(_ context.Context, _ string, message string) error {
	f.failed = true
	f.failMessage = message
	return nil
}

func (f *fakeStore) LastSessionDate(_ context.Context) (*time.Time, error) {
	return f.lastDate, f.lastDateErr
}

func (f *fakeStore) UpsertJob(_ context.Context, _ string, sj model.ScoredJob) (int64, error) {
	if f.upsertErr != nil {
		return 0, f.upsertErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.upserted[sj.Job.JobURL] = sj
	return int64(len(f.upserted)), nil
}

func (f *fakeStore) MarkTopPicks(_ context.Context, ids []int64) error {
	f.topPicks = ids
	return nil
}

type fakeSeen struct {
	mu   sync.Mutex
	seen map[string]bool
}

func (f *fakeSeen) Seen(_ context.Context, url string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.seen[url], nil
}

func (f *fakeSeen) MarkSeen(_ context.Context, url string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seen[url] = true
	return nil
}

// ── Helpers ────────────────────────────────────────────────────────────────

func jobHTML(title, company string) string {
	return fmt.Sprintf(`<html><body>
		<h1 class="job-title">%s</h1>
		<div class="company-name">%s</div>
		<div class="job-location">Remote</div>
	</body></html>`, title, company)
}

func testProfile() *model.CandidateProfile {
	return &model.CandidateProfile{
		Name:         "Candidate",
		DesiredRoles: []string{"Backend Engineer"},
		TechStack:    []string{"Golang", "PostgreSQL"},
		Locations:    []string{"Remote"},
	}
}

func build(t *testing.T, searcher pipeline.Searcher, loader browser.Loader, store pipeline.Storage, seen pipeline.SeenCache) *pipeline.Pipeline {
	t.Helper()
	pool, err := browser.NewPool(3)
	if err != nil {
		t.Fatalf("NewPool: %v", err)
	}
	return pipeline.New(testProfile(), []string{"backend engineer jobs remote"},
		searcher, loader, pool, store, seen,
		pipeline.Options{
			MaxResults:  50,
			TopN:        2,
			MinScore:    0.3,
			Concurrency: 3,
			Interval:    24 * time.Hour,
		})
}

// ── Run — happy path ───────────────────────────────────────────────────────

func TestRun_PersistsAndMarksTopPicks(t *testing.T) {
	searcher := &fakeSearcher{hits: []model.SearchHit{
		{URL: "https://a.example/1"},
		{URL: "https://a.example/2"},
		{URL: "https://a.example/3"},
	}}
	loader := &fakeLoader{pages: map[string]string{
		"https://a.example/1": jobHTML("Senior Backend Engineer", "Acme"),
		"https://a.example/2": jobHTML("Office Clerk", "PaperCo"),
		"https://a.example/3": jobHTML("Backend Engineer", "Umbrella"),
	}}
	store := newFakeStore()

	if err := build(t, searcher, loader, store, nil).Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}

	if !store.completed || store.failed {
		t.Fatalf("session should complete: completed=%v failed=%v", store.completed, store.failed)
	}
	if store.completedFnd != 3 {
		t.Errorf("total found = %d, want 3", store.completedFnd)
	}
	if store.completedSel != 2 {
		t.Errorf("top selected = %d, want topN=2", store.completedSel)
	}
	if len(store.upserted) != 3 {
		t.Errorf("all scored jobs persist, got %d", len(store.upserted))
	}
	if len(store.topPicks) != 2 {
		t.Errorf("top picks marked = %d, want 2", len(store.topPicks))
	}
	if loader.noSlot {
		t.Error("every load must hold an acquired browser context")
	}
	for url, sj := range store.upserted {
		if sj.Score < 0 || sj.Score > 1 {
			t.Errorf("%s: score %v out of range", url, sj.Score)
		}
		if len(sj.MatchReasons) == 0 {
			t.Errorf("%s: empty match reasons", url)
		}
	}
}

// ── Run — partial failure is not failure ───────────────────────────────────

func TestRun_AllURLsFailingStillCompletes(t *testing.T) {
	searcher := &fakeSearcher{hits: []model.SearchHit{
		{URL: "https://dead.example/1"},
		{URL: "https://dead.example/2"},
	}}
	loader := &fakeLoader{pages: map[string]string{}} // every load fails
	store := newFakeStore()

	if err := build(t, searcher, loader, store, nil).Run(context.Background()); err != nil {
		t.Fatalf("Run must not fail on per-URL errors: %v", err)
	}
	if !store.completed {
		t.Fatal("session should be COMPLETED")
	}
	if store.completedFnd != 0 || store.completedSel != 0 {
		t.Errorf("counts = %d/%d, want 0/0", store.completedFnd, store.completedSel)
	}
}

func TestRun_UnparseablePageSkipped(t *testing.T) {
	searcher := &fakeSearcher{hits: []model.SearchHit{
		{URL: "https://a.example/good"},
		{URL: "https://a.example/blank"},
	}}
	loader := &fakeLoader{pages: map[string]string{
		"https://a.example/good":  jobHTML("Backend Engineer", "Acme"),
		"https://a.example/blank": "<html><body><p>blocked</p></body></html>",
	}}
	store := newFakeStore()

	if err := build(t, searcher, loader, store, nil).Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(store.upserted) != 1 {
		t.Errorf("only the extractable page persists, got %d", len(store.upserted))
	}
	if _, ok := store.upserted["https://a.example/good"]; !ok {
		t.Error("good URL missing from upserts")
	}
}

// ── Run — fatal failures mark the session FAILED ───────────────────────────

func TestRun_SearchFailureFailsSession(t *testing.T) {
	store := newFakeStore()
	p := build(t, &fakeSearcher{err: errors.New("engine unreachable")}, &fakeLoader{}, store, nil)

	if err := p.Run(context.Background()); err == nil {
		t.Fatal("Run should return the search error")
	}
	if !store.failed {
		t.Fatal("session should be FAILED")
	}
	if !strings.Contains(store.failMessage, "engine unreachable") {
		t.Errorf("error_message = %q, want the captured cause", store.failMessage)
	}
	if store.completed {
		t.Error("a failed session must not also complete")
	}
}

func TestRun_PersistFailureFailsSession(t *testing.T) {
	searcher := &fakeSearcher{hits: []model.SearchHit{{URL: "https://a.example/1"}}}
	loader := &fakeLoader{pages: map[string]string{
		"https://a.example/1": jobHTML("Backend Engineer", "Acme"),
	}}
	store := newFakeStore()
	store.upsertErr = errors.New("connection refused")

	if err := build(t, searcher, loader, store, nil).Run(context.Background()); err == nil {
		t.Fatal("Run should surface the persistence error")
	}
	if !store.failed || !strings.Contains(store.failMessage, "connection refused") {
		t.Errorf("failed=%v message=%q", store.failed, store.failMessage)
	}
}

// ── Seen cache ─────────────────────────────────────────────────────────────

func TestRun_SeenURLsNotRefetched(t *testing.T) {
	searcher := &fakeSearcher{hits: []model.SearchHit{
		{URL: "https://a.example/old"},
		{URL: "https://a.example/new"},
	}}
	loader := &fakeLoader{pages: map[string]string{
		"https://a.example/old": jobHTML("Old", "Acme"),
		"https://a.example/new": jobHTML("Backend Engineer", "Acme"),
	}}
	store := newFakeStore()
	seen := &fakeSeen{seen: map[string]bool{"https://a.example/old": true}}

	if err := build(t, searcher, loader, store, seen).Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}

	for _, url := range loader.loads {
		if url == "https://a.example/old" {
			t.Error("cached URL should be skipped, but it was loaded")
		}
	}
	if !seen.seen["https://a.example/new"] {
		t.Error("freshly fetched URL should be marked seen")
	}
}

// ── ShouldRun ──────────────────────────────────────────────────────────────

func TestShouldRun(t *testing.T) {
	recent := time.Now().Add(-1 * time.Hour)
	old := time.Now().Add(-25 * time.Hour)

	cases := []struct {
		name string
		last *time.Time
		want bool
	}{
		{"never ran", nil, true},
		{"ran recently", &recent, false},
		{"interval elapsed", &old, true},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			store := newFakeStore()
			store.lastDate = c.last
			p := build(t, &fakeSearcher{}, &fakeLoader{}, store, nil)

			due, err := p.ShouldRun(context.Background())
			if err != nil {
				t.Fatalf("ShouldRun: %v", err)
			}
			if due != c.want {
				t.Errorf("ShouldRun = %v, want %v", due, c.want)
			}
		})
	}
}

func TestShouldRun_StoreError(t *testing.T) {
	store := newFakeStore()
	store.lastDateErr = errors.New("db down")
	p := build(t, &fakeSearcher{}, &fakeLoader{}, store, nil)

	if _, err := p.ShouldRun(context.Background()); err == nil {
		t.Fatal("ShouldRun should surface store errors")
	}
}
