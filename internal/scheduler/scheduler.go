// Package scheduler wires the cron trigger that periodically offers the
// pipeline a chance to run.
//
// The trigger deliberately fires more often than the scrape interval: the
// pipeline's own duration guard (persisted last-session date) decides whether
// a fired trigger actually executes, so over-firing is always safe.
package scheduler

import (
	"context"
	"fmt"
	"log"

	"github.com/robfig/cron/v3"
)

// Runner is the pipeline surface the scheduler drives.
type Runner interface {
	ShouldRun(ctx context.Context) (bool, error)
	Run(ctx context.Context) error
}

// Scheduler wraps robfig/cron around a Runner.
type Scheduler struct {
	cron   *cron.Cron
	runner Runner
	spec   string
}

// New creates a Scheduler with an hourly trigger.
func New(runner Runner) *Scheduler {
	return &Scheduler{
		cron:   cron.New(cron.WithLogger(cron.DefaultLogger)),
		runner: runner,
		spec:   "@every 1h",
	}
}

// Start registers the trigger and starts the scheduler. Also offers one run
// immediately so a due pipeline does not wait for the first tick.
func (s *Scheduler) Start(ctx context.Context) error {
	_, err := s.cron.AddFunc(s.spec, func() {
		s.tick(ctx)
	})
	if err != nil {
		return fmt.Errorf("cron.AddFunc: %w", err)
	}

	s.cron.Start()
	log.Printf("[scheduler] Cron started — spec: %s", s.spec)

	go s.tick(ctx)
	return nil
}

// Stop gracefully shuts down the scheduler.
func (s *Scheduler) Stop() {
	s.cron.Stop()
	log.Println("[scheduler] Cron stopped")
}

// tick runs the pipeline when its interval guard says it is due. A failed
// run is logged, not retried — the next tick is the retry mechanism.
func (s *Scheduler) tick(ctx context.Context) {
	due, err := s.runner.ShouldRun(ctx)
	if err != nil {
		log.Printf("[scheduler] Interval check failed: %v", err)
		return
	}
	if !due {
		log.Println("[scheduler] Not due yet — skipping tick")
		return
	}

	if err := s.runner.Run(ctx); err != nil {
		log.Printf("[scheduler] Run failed: %v — will retry on a later tick", err)
	}
}
