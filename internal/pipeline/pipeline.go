// Package pipeline sequences one discovery run: search feed → bounded
// fetch+extract → filter → score/rank → persist, wrapped in a session row
// that moves RUNNING → COMPLETED or RUNNING → FAILED exactly once.
package pipeline

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/unlikelyUsual/job-listing-scraper/internal/browser"
	"github.com/unlikelyUsual/job-listing-scraper/internal/extractor"
	"github.com/unlikelyUsual/job-listing-scraper/internal/matcher"
	"github.com/unlikelyUsual/job-listing-scraper/internal/model"
)

// Searcher supplies the candidate-URL feed.
type Searcher interface {
	Search(ctx context.Context, queries []string, maxResults int) ([]model.SearchHit, error)
}

// Storage is the persistence boundary the pipeline writes through.
type Storage interface {
	CreateSession(ctx context.Context, date time.Time, queries []string) (string, error)
	CompleteSession(ctx context.Context, id string, totalFound, topSelected int) error
	FailSession(ctx context.Context, id, message string) error
	LastSessionDate(ctx context.Context) (*time.Time, error)
	UpsertJob(ctx context.Context, sessionID string, sj model.ScoredJob) (int64, error)
	MarkTopPicks(ctx context.Context, ids []int64) error
}

// SeenCache remembers recently fetched URLs. Optional — may be nil — and
// advisory: its errors are logged, never fatal.
type SeenCache interface {
	Seen(ctx context.Context, url string) (bool, error)
	MarkSeen(ctx context.Context, url string) error
}

// Options bound one run.
type Options struct {
	MaxResults  int
	TopN        int
	MinScore    float64
	Concurrency int
	Interval    time.Duration // minimum gap between sessions
}

// Pipeline owns one profile's discovery runs. All collaborators are injected;
// there are no package-level clients.
type Pipeline struct {
	profile  *model.CandidateProfile
	queries  []string
	searcher Searcher
	loader   browser.Loader
	pool     *browser.Pool
	store    Storage
	seen     SeenCache
	opts     Options

	now func() time.Time // injectable clock
}

// New wires a Pipeline. seen may be nil.
func New(p *model.CandidateProfile, queries []string, searcher Searcher, loader browser.Loader, pool *browser.Pool, store Storage, seen SeenCache, opts Options) *Pipeline {
	return &Pipeline{
		profile:  p,
		queries:  queries,
		searcher: searcher,
		loader:   loader,
		pool:     pool,
		store:    store,
		seen:     seen,
		opts:     opts,
		now:      time.Now,
	}
}

// ShouldRun reports whether enough time has passed since the last session.
// The scheduler trigger may fire more often than the interval; this guard is
// what actually decides.
func (p *Pipeline) ShouldRun(ctx context.Context) (bool, error) {
	last, err := p.store.LastSessionDate(ctx)
	if err != nil {
		return false, err
	}
	if last == nil {
		return true, nil
	}
	return p.now().Sub(*last) >= p.opts.Interval, nil
}

// Run executes one full session. A per-URL failure is logged and skipped;
// any other failure marks the session FAILED and is returned — the caller
// decides whether the next scheduled trigger retries.
func (p *Pipeline) Run(ctx context.Context) error {
	start := p.now()
	sessionID, err := p.store.CreateSession(ctx, start, p.queries)
	if err != nil {
		return fmt.Errorf("create session: %w", err)
	}
	log.Printf("[pipeline] Session %s started — %d queries", sessionID, len(p.queries))

	totalFound, topSelected, err := p.run(ctx, sessionID, start)
	if err != nil {
		log.Printf("[pipeline] Session %s failed: %v", sessionID, err)
		if failErr := p.store.FailSession(ctx, sessionID, err.Error()); failErr != nil {
			log.Printf("[pipeline] Could not mark session %s failed: %v", sessionID, failErr)
		}
		return err
	}

	if err := p.store.CompleteSession(ctx, sessionID, totalFound, topSelected); err != nil {
		return fmt.Errorf("complete session: %w", err)
	}
	log.Printf("[pipeline] Session %s completed — found=%d selected=%d", sessionID, totalFound, topSelected)
	return nil
}

func (p *Pipeline) run(ctx context.Context, sessionID string, start time.Time) (totalFound, topSelected int, err error) {
	hits, err := p.searcher.Search(ctx, p.queries, p.opts.MaxResults)
	if err != nil {
		return 0, 0, fmt.Errorf("search: %w", err)
	}
	log.Printf("[pipeline] Feed returned %d candidate URLs", len(hits))

	records := p.fetchAll(ctx, hits, start)
	records, dropped := matcher.Filter(p.profile, records)
	if dropped > 0 {
		log.Printf("[pipeline] Dropped %d listing(s) matching exclude keywords", dropped)
	}

	scored, selected := matcher.RankAndSelect(p.profile, records, p.opts.TopN, p.opts.MinScore, start)

	// Two-phase write: upsert everything, then flag the selection. Upserts
	// reset top_pick, so re-running the same batch converges.
	idByURL := make(map[string]int64, len(scored))
	for _, sj := range scored {
		id, upErr := p.store.UpsertJob(ctx, sessionID, sj)
		if upErr != nil {
			return 0, 0, fmt.Errorf("persist jobs: %w", upErr)
		}
		idByURL[sj.Job.JobURL] = id
	}

	topIDs := make([]int64, 0, len(selected))
	for _, sj := range selected {
		if id, ok := idByURL[sj.Job.JobURL]; ok {
			topIDs = append(topIDs, id)
		}
	}
	if err := p.store.MarkTopPicks(ctx, topIDs); err != nil {
		return 0, 0, fmt.Errorf("mark top picks: %w", err)
	}

	logReport(matcher.BuildReport(scored))
	return len(scored), len(selected), nil
}

// fetchAll loads and extracts every hit with bounded concurrency. Results
// keep feed order so downstream tie-breaking stays deterministic. Every
// failure path here skips the single URL and continues.
func (p *Pipeline) fetchAll(ctx context.Context, hits []model.SearchHit, now time.Time) []model.JobRecord {
	ext := extractor.New(p.profile.TechStack)
	slots := make([]*model.JobRecord, len(hits))

	var wg sync.WaitGroup
	work := make(chan int)

	workers := p.opts.Concurrency
	if workers < 1 {
		workers = 1
	}
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range work {
				slots[i] = p.fetchOne(ctx, hits[i].URL, ext, now)
			}
		}()
	}
	for i := range hits {
		work <- i
	}
	close(work)
	wg.Wait()

	records := make([]model.JobRecord, 0, len(hits))
	for _, rec := range slots {
		if rec != nil {
			records = append(records, *rec)
		}
	}
	return records
}

// fetchOne loads one URL through a pool context and extracts it. Returns nil
// on any failure — the URL is simply dropped for this session.
func (p *Pipeline) fetchOne(ctx context.Context, url string, ext *extractor.Extractor, now time.Time) *model.JobRecord {
	if p.seen != nil {
		if seen, err := p.seen.Seen(ctx, url); err != nil {
			log.Printf("[pipeline] Seen-cache lookup for %s failed: %v — fetching anyway", url, err)
		} else if seen {
			log.Printf("[pipeline] Skipping %s — fetched recently", url)
			return nil
		}
	}

	bctx, err := p.pool.Acquire()
	if err != nil {
		log.Printf("[pipeline] No browser context for %s: %v — skipping", url, err)
		return nil
	}
	defer bctx.Release()

	page, err := p.loader.Load(ctx, bctx, url)
	if err != nil {
		log.Printf("[pipeline] Load %s failed: %v — skipping", url, err)
		return nil
	}

	rec, err := ext.Extract(page, now)
	if err != nil {
		log.Printf("[pipeline] Extract %s failed: %v — skipping", url, err)
		return nil
	}

	if p.seen != nil {
		if err := p.seen.MarkSeen(ctx, url); err != nil {
			log.Printf("[pipeline] Seen-cache mark for %s failed: %v", url, err)
		}
	}
	return rec
}

func logReport(r model.JobReport) {
	if r.TotalJobs == 0 {
		return
	}
	log.Printf("[pipeline] Batch report — jobs=%d avg=%.2f bands: excellent=%d good=%d fair=%d poor=%d",
		r.TotalJobs, r.AverageScore,
		r.ScoreBands.Excellent, r.ScoreBands.Good, r.ScoreBands.Fair, r.ScoreBands.Poor)
	if len(r.TopTech) > 0 {
		log.Printf("[pipeline] Top tech: %s (%d more listed)", r.TopTech[0].Name, len(r.TopTech)-1)
	}
}
