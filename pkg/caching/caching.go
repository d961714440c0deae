// Package caching keeps recently generated slug results so repeat requests
// for the same URL skip the pipeline.
package caching

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/dtnitsch/linkslug/models"
)

// DefaultTTL is how long a result stays fresh.
const DefaultTTL = 24 * time.Hour

// Store is implemented by every cache backend. Keys are normalized by the
// store, so callers may pass raw URLs.
type Store interface {
	// Get returns the cached result for key. A stale entry is evicted and
	// reported as a miss.
	Get(ctx context.Context, key string) (*models.SlugResult, bool, error)
	// Set stores r under key, overwriting any previous entry.
	Set(ctx context.Context, key string, r models.SlugResult) error
	Clear(ctx context.Context) error
	// Size returns the number of fresh entries.
	Size(ctx context.Context) (int, error)
	// Recent returns up to n fresh entries, newest first.
	Recent(ctx context.Context, n int) ([]models.CacheEntry, error)
}

// NormalizeKey trims and lower-cases a URL for use as a cache key.
func NormalizeKey(raw string) string {
	return strings.ToLower(strings.TrimSpace(raw))
}

// Open builds the Store selected by cfg.Backend.
func Open(cfg models.CacheConfig) (Store, error) {
	switch cfg.Backend {
	case "", "memory":
		return NewMemoryCache(cfg.TTL), nil
	case "file":
		c, err := NewFileCache(cfg.Dir, cfg.TTL)
		if err != nil {
			return nil, err
		}
		return c, nil
	case "redis":
		c, err := NewRedisCache(RedisConfig{
			Address:  cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		}, cfg.TTL)
		if err != nil {
			return nil, err
		}
		return c, nil
	default:
		return nil, fmt.Errorf("unknown cache backend %q", cfg.Backend)
	}
}

func fresh(e models.CacheEntry, ttl time.Duration, now time.Time) bool {
	return now.Sub(e.Timestamp) < ttl
}

// newestFirst sorts entries by timestamp, newest first, and caps them at n.
func newestFirst(entries []models.CacheEntry, n int) []models.CacheEntry {
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Timestamp.After(entries[j].Timestamp)
	})
	if n >= 0 && len(entries) > n {
		entries = entries[:n]
	}
	return entries
}
