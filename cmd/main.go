// job-listing-scraper — automated job discovery for one candidate profile.
//
// Commands:
//
//	run       execute a single discovery session and exit
//	schedule  run the cron daemon with a /health endpoint (default)
//	status    print the most recent session and exit
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/unlikelyUsual/job-listing-scraper/internal/browser"
	"github.com/unlikelyUsual/job-listing-scraper/internal/config"
	"github.com/unlikelyUsual/job-listing-scraper/internal/pipeline"
	"github.com/unlikelyUsual/job-listing-scraper/internal/profile"
	"github.com/unlikelyUsual/job-listing-scraper/internal/scheduler"
	"github.com/unlikelyUsual/job-listing-scraper/internal/search"
	"github.com/unlikelyUsual/job-listing-scraper/internal/store"
)

const version = "1.0.0"

type healthResponse struct {
	Status  string `json:"status"`
	Service string `json:"service"`
	Version string `json:"version"`
}

func healthHandler(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(healthResponse{
		Status:  "ok",
		Service: "job-listing-scraper",
		Version: version,
	})
}

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("[main] No .env file — using process environment")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("[main] Config: %v", err)
	}

	command := "schedule"
	if len(os.Args) > 1 {
		command = os.Args[1]
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	st, err := store.New(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("[main] Postgres: %v", err)
	}
	defer st.Close()

	if err := st.EnsureSchema(ctx); err != nil {
		log.Fatalf("[main] Schema: %v", err)
	}

	switch command {
	case "status":
		if err := printStatus(ctx, st); err != nil {
			log.Fatalf("[main] Status: %v", err)
		}
	case "run":
		p, err := buildPipeline(ctx, cfg, st)
		if err != nil {
			log.Fatalf("[main] Setup: %v", err)
		}
		if err := p.Run(ctx); err != nil {
			// Session row already records the failure; exit non-zero for cron.
			log.Fatalf("[main] Run: %v", err)
		}
	case "schedule":
		p, err := buildPipeline(ctx, cfg, st)
		if err != nil {
			log.Fatalf("[main] Setup: %v", err)
		}
		if err := runDaemon(ctx, cfg, p); err != nil {
			log.Fatalf("[main] Daemon: %v", err)
		}
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q — expected run | schedule | status\n", command)
		os.Exit(2)
	}
}

func buildPipeline(ctx context.Context, cfg *config.Config, st *store.Store) (*pipeline.Pipeline, error) {
	prof, err := profile.Load(cfg.ProfilePath)
	if err != nil {
		return nil, err
	}
	queries := profile.Queries(prof)
	log.Printf("[main] Profile %q loaded — %d queries", prof.Name, len(queries))

	seen, err := store.NewSeenCache(ctx, cfg.RedisURL, cfg.SeenTTL)
	if err != nil {
		return nil, err
	}

	pool, err := browser.NewPool(cfg.FetchConcurrency)
	if err != nil {
		return nil, err
	}

	return pipeline.New(
		prof,
		queries,
		search.NewClient(cfg.SearchDelay),
		browser.NewHTTPLoader(cfg.NavTimeout),
		pool,
		st,
		seen,
		pipeline.Options{
			MaxResults:  cfg.MaxResults,
			TopN:        cfg.TopN,
			MinScore:    cfg.MinScore,
			Concurrency: cfg.FetchConcurrency,
			Interval:    time.Duration(cfg.ScrapeIntervalHours) * time.Hour,
		},
	), nil
}

func runDaemon(ctx context.Context, cfg *config.Config, p *pipeline.Pipeline) error {
	sched := scheduler.New(p)
	if err := sched.Start(ctx); err != nil {
		return err
	}
	defer sched.Stop()

	mux := http.NewServeMux()
	mux.HandleFunc("/health", healthHandler)
	srv := &http.Server{Addr: ":" + cfg.Port, Handler: mux}

	go func() {
		<-ctx.Done()
		srv.Shutdown(context.Background())
	}()

	log.Printf("[main] Listening on :%s", cfg.Port)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func printStatus(ctx context.Context, st *store.Store) error {
	sess, err := st.LatestSession(ctx)
	if err != nil {
		return err
	}
	if sess == nil {
		fmt.Println("no sessions recorded yet")
		return nil
	}

	fmt.Printf("session   %s\n", sess.ID)
	fmt.Printf("date      %s\n", sess.SessionDate.Format("2006-01-02 15:04:05 MST"))
	fmt.Printf("status    %s\n", sess.Status)
	fmt.Printf("found     %d\n", sess.TotalJobsFound)
	fmt.Printf("selected  %d\n", sess.TopJobsSelected)
	if sess.ErrorMessage != "" {
		fmt.Printf("error     %s\n", sess.ErrorMessage)
	}
	return nil
}
