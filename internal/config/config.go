// Package config loads and validates environment variables at startup.
// Fail-fast: if a required variable is missing or malformed, the process exits.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds all runtime configuration for the scraper.
type Config struct {
	Port        string
	DatabaseURL string
	RedisURL    string
	ProfilePath string

	ScrapeIntervalHours int           // minimum gap between two sessions
	MaxResults          int           // cap on candidate URLs per session
	TopN                int           // size of the top-pick selection
	MinScore            float64       // selection threshold, [0,1]
	FetchConcurrency    int           // parallel page loads / browser contexts
	NavTimeout          time.Duration // per-URL navigation budget
	SearchDelay         time.Duration // politeness pause between search queries
	SeenTTL             time.Duration // how long a fetched URL stays cached
}

// Load reads environment variables and returns a validated Config.
func Load() (*Config, error) {
	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	redisURL := os.Getenv("REDIS_URL")
	if redisURL == "" {
		return nil, fmt.Errorf("REDIS_URL is required")
	}

	profilePath := os.Getenv("PROFILE_PATH")
	if profilePath == "" {
		profilePath = "profile.json"
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	cfg := &Config{
		Port:                port,
		DatabaseURL:         dbURL,
		RedisURL:            redisURL,
		ProfilePath:         profilePath,
		ScrapeIntervalHours: 24,
		MaxResults:          50,
		TopN:                10,
		MinScore:            0.3,
		FetchConcurrency:    3,
		NavTimeout:          20 * time.Second,
		SearchDelay:         3 * time.Second,
		SeenTTL:             20 * time.Hour,
	}

	var err error
	if cfg.ScrapeIntervalHours, err = intEnv("SCRAPE_INTERVAL_HOURS", cfg.ScrapeIntervalHours); err != nil {
		return nil, err
	}
	if cfg.MaxResults, err = intEnv("MAX_RESULTS", cfg.MaxResults); err != nil {
		return nil, err
	}
	if cfg.TopN, err = intEnv("TOP_N", cfg.TopN); err != nil {
		return nil, err
	}
	if cfg.FetchConcurrency, err = intEnv("FETCH_CONCURRENCY", cfg.FetchConcurrency); err != nil {
		return nil, err
	}

	if s := os.Getenv("MIN_SCORE"); s != "" {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil || v < 0 || v > 1 {
			return nil, fmt.Errorf("MIN_SCORE must be a float in [0,1], got %q", s)
		}
		cfg.MinScore = v
	}

	if secs, err := intEnv("NAV_TIMEOUT_SECONDS", int(cfg.NavTimeout.Seconds())); err != nil {
		return nil, err
	} else {
		cfg.NavTimeout = time.Duration(secs) * time.Second
	}
	if secs, err := intEnv("SEARCH_DELAY_SECONDS", int(cfg.SearchDelay.Seconds())); err != nil {
		return nil, err
	} else {
		cfg.SearchDelay = time.Duration(secs) * time.Second
	}
	if hours, err := intEnv("SEEN_TTL_HOURS", int(cfg.SeenTTL.Hours())); err != nil {
		return nil, err
	} else {
		cfg.SeenTTL = time.Duration(hours) * time.Hour
	}

	return cfg, nil
}

// intEnv reads a positive integer variable, falling back to def when unset.
func intEnv(name string, def int) (int, error) {
	s := os.Getenv(name)
	if s == "" {
		return def, nil
	}
	v, err := strconv.Atoi(s)
	if err != nil || v < 1 {
		return 0, fmt.Errorf("%s must be a positive integer, got %q", name, s)
	}
	return v, nil
}
