package caching

import (
	"context"
	"sync"
	"time"

	"github.com/dtnitsch/linkslug/models"
)

// MemoryCache is an in-process Store.
type MemoryCache struct {
	mu      sync.Mutex
	ttl     time.Duration
	now     func() time.Time
	entries map[string]models.CacheEntry
}

func NewMemoryCache(ttl time.Duration) *MemoryCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &MemoryCache{ttl: ttl, now: time.Now, entries: make(map[string]models.CacheEntry)}
}

func (c *MemoryCache) Get(ctx context.Context, key string) (*models.SlugResult, bool, error) {
	key = NormalizeKey(key)

	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	if !ok {
		return nil, false, nil
	}
	if !fresh(e, c.ttl, c.now()) {
		delete(c.entries, key)
		return nil, false, nil
	}
	r := e.Result
	return &r, true, nil
}

func (c *MemoryCache) Set(ctx context.Context, key string, r models.SlugResult) error {
	key = NormalizeKey(key)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = models.CacheEntry{Key: key, Result: r, Timestamp: c.now()}
	return nil
}

func (c *MemoryCache) Clear(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]models.CacheEntry)
	return nil
}

func (c *MemoryCache) Size(ctx context.Context) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.evictLocked()
	return len(c.entries), nil
}

func (c *MemoryCache) Recent(ctx context.Context, n int) ([]models.CacheEntry, error) {
	c.mu.Lock()
	c.evictLocked()
	out := make([]models.CacheEntry, 0, len(c.entries))
	for _, e := range c.entries {
		out = append(out, e)
	}
	c.mu.Unlock()
	return newestFirst(out, n), nil
}

func (c *MemoryCache) evictLocked() {
	now := c.now()
	for k, e := range c.entries {
		if !fresh(e, c.ttl, now) {
			delete(c.entries, k)
		}
	}
}
