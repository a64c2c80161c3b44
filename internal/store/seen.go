package store

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// SeenCache remembers recently fetched job URLs so back-to-back sessions do
// not reload the same listings. Purely an optimisation: every method's error
// is safe to log and ignore.
type SeenCache struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewSeenCache parses redisURL, verifies connectivity, and returns the cache.
func NewSeenCache(ctx context.Context, redisURL string, ttl time.Duration) (*SeenCache, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("redis.ParseURL(%q): %w", redisURL, err)
	}
	rdb := redis.NewClient(opts)
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}
	return &SeenCache{rdb: rdb, ttl: ttl}, nil
}

// Close releases the client.
func (c *SeenCache) Close() error { return c.rdb.Close() }

func seenKey(url string) string { return "seen:" + url }

// Seen reports whether url was fetched within the TTL window.
func (c *SeenCache) Seen(ctx context.Context, url string) (bool, error) {
	n, err := c.rdb.Exists(ctx, seenKey(url)).Result()
	if err != nil {
		return false, fmt.Errorf("seen lookup: %w", err)
	}
	return n > 0, nil
}

// MarkSeen records url as fetched, expiring after the TTL.
func (c *SeenCache) MarkSeen(ctx context.Context, url string) error {
	if err := c.rdb.Set(ctx, seenKey(url), "1", c.ttl).Err(); err != nil {
		return fmt.Errorf("mark seen: %w", err)
	}
	return nil
}
