package caching

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/dtnitsch/linkslug/models"
)

const fileExt = ".json"

// FileCache stores one JSON file per key under a directory.
type FileCache struct {
	mu   sync.Mutex
	path string
	ttl  time.Duration
	now  func() time.Time
}

// NewFileCache creates a FileCache rooted at path.
// The directory will be created if it doesn't exist.
func NewFileCache(path string, ttl time.Duration) (*FileCache, error) {
	if err := os.MkdirAll(path, 0755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &FileCache{path: path, ttl: ttl, now: time.Now}, nil
}

// file maps a key to its SHA256-named file.
func (c *FileCache) file(key string) string {
	hash := sha256.Sum256([]byte(key))
	return filepath.Join(c.path, fmt.Sprintf("%x", hash)+fileExt)
}

func (c *FileCache) Get(ctx context.Context, key string) (*models.SlugResult, bool, error) {
	key = NormalizeKey(key)

	c.mu.Lock()
	defer c.mu.Unlock()

	filePath := c.file(key)
	e, err := readEntry(filePath)
	if errors.Is(err, os.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	if !fresh(e, c.ttl, c.now()) {
		if err := os.Remove(filePath); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, false, fmt.Errorf("failed to evict cache entry: %w", err)
		}
		return nil, false, nil
	}
	return &e.Result, true, nil
}

func (c *FileCache) Set(ctx context.Context, key string, r models.SlugResult) error {
	key = NormalizeKey(key)
	data, err := json.Marshal(models.CacheEntry{Key: key, Result: r, Timestamp: c.now()})
	if err != nil {
		return fmt.Errorf("failed to encode cache entry: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if err := os.WriteFile(c.file(key), data, 0644); err != nil {
		return fmt.Errorf("failed to write to cache: %w", err)
	}
	return nil
}

func (c *FileCache) Clear(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	files, err := c.files()
	if err != nil {
		return err
	}
	for _, f := range files {
		if err := os.Remove(f); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("failed to clear cache: %w", err)
		}
	}
	return nil
}

func (c *FileCache) Size(ctx context.Context) (int, error) {
	entries, err := c.scan()
	if err != nil {
		return 0, err
	}
	return len(entries), nil
}

func (c *FileCache) Recent(ctx context.Context, n int) ([]models.CacheEntry, error) {
	entries, err := c.scan()
	if err != nil {
		return nil, err
	}
	return newestFirst(entries, n), nil
}

// scan reads every fresh entry, removing stale and unreadable files.
func (c *FileCache) scan() ([]models.CacheEntry, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	files, err := c.files()
	if err != nil {
		return nil, err
	}
	now := c.now()
	var out []models.CacheEntry
	for _, f := range files {
		e, err := readEntry(f)
		if err != nil || !fresh(e, c.ttl, now) {
			_ = os.Remove(f)
			continue
		}
		out = append(out, e)
	}
	return out, nil
}

func (c *FileCache) files() ([]string, error) {
	dir, err := os.ReadDir(c.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read cache directory: %w", err)
	}
	var out []string
	for _, d := range dir {
		if !d.IsDir() && strings.HasSuffix(d.Name(), fileExt) {
			out = append(out, filepath.Join(c.path, d.Name()))
		}
	}
	return out, nil
}

func readEntry(path string) (models.CacheEntry, error) {
	var e models.CacheEntry
	data, err := os.ReadFile(path)
	if err != nil {
		return e, err
	}
	if err := json.Unmarshal(data, &e); err != nil {
		return e, fmt.Errorf("failed to decode cache entry %s: %w", filepath.Base(path), err)
	}
	return e, nil
}
