package caching

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/dtnitsch/linkslug/models"
	"github.com/redis/go-redis/v9"
)

// RedisConfig holds Redis connection settings.
type RedisConfig struct {
	Address  string
	Password string
	DB       int
	// Prefix namespaces every key this cache writes.
	Prefix string
}

// ErrEmptyAddress is returned when no Redis address is configured.
var ErrEmptyAddress = errors.New("redis address is required")

const (
	connectionTimeout = 5 * time.Second
	defaultPrefix     = "linkslug:"
)

// RedisCache stores entries as expiring string keys plus a sorted set of
// keys scored by write time, used for Size and Recent.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
	prefix string
	now    func() time.Time
}

// NewRedisCache connects to Redis and verifies the connection.
func NewRedisCache(cfg RedisConfig, ttl time.Duration) (*RedisCache, error) {
	if cfg.Address == "" {
		return nil, ErrEmptyAddress
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), connectionTimeout)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return NewRedisCacheFromClient(client, ttl, cfg.Prefix), nil
}

// NewRedisCacheFromClient wraps an existing client.
func NewRedisCacheFromClient(client *redis.Client, ttl time.Duration, prefix string) *RedisCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if prefix == "" {
		prefix = defaultPrefix
	}
	return &RedisCache{client: client, ttl: ttl, prefix: prefix, now: time.Now}
}

func (c *RedisCache) entryKey(key string) string { return c.prefix + "entry:" + key }
func (c *RedisCache) indexKey() string           { return c.prefix + "recent" }

func (c *RedisCache) Get(ctx context.Context, key string) (*models.SlugResult, bool, error) {
	key = NormalizeKey(key)

	data, err := c.client.Get(ctx, c.entryKey(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		c.client.ZRem(ctx, c.indexKey(), key)
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get failed: %w", err)
	}

	var e models.CacheEntry
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, false, fmt.Errorf("failed to decode cache entry: %w", err)
	}
	if !fresh(e, c.ttl, c.now()) {
		c.client.Del(ctx, c.entryKey(key))
		c.client.ZRem(ctx, c.indexKey(), key)
		return nil, false, nil
	}
	return &e.Result, true, nil
}

func (c *RedisCache) Set(ctx context.Context, key string, r models.SlugResult) error {
	key = NormalizeKey(key)
	now := c.now()
	data, err := json.Marshal(models.CacheEntry{Key: key, Result: r, Timestamp: now})
	if err != nil {
		return fmt.Errorf("failed to encode cache entry: %w", err)
	}

	_, err = c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, c.entryKey(key), data, c.ttl)
		pipe.ZAdd(ctx, c.indexKey(), redis.Z{Score: float64(now.UnixNano()), Member: key})
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

func (c *RedisCache) Clear(ctx context.Context) error {
	keys, err := c.client.ZRange(ctx, c.indexKey(), 0, -1).Result()
	if err != nil {
		return fmt.Errorf("redis clear failed: %w", err)
	}
	del := make([]string, 0, len(keys)+1)
	for _, k := range keys {
		del = append(del, c.entryKey(k))
	}
	del = append(del, c.indexKey())
	if err := c.client.Del(ctx, del...).Err(); err != nil {
		return fmt.Errorf("redis clear failed: %w", err)
	}
	return nil
}

func (c *RedisCache) Size(ctx context.Context) (int, error) {
	if err := c.prune(ctx); err != nil {
		return 0, err
	}
	n, err := c.client.ZCard(ctx, c.indexKey()).Result()
	if err != nil {
		return 0, fmt.Errorf("redis size failed: %w", err)
	}
	return int(n), nil
}

func (c *RedisCache) Recent(ctx context.Context, n int) ([]models.CacheEntry, error) {
	if n <= 0 {
		return nil, nil
	}
	if err := c.prune(ctx); err != nil {
		return nil, err
	}
	keys, err := c.client.ZRevRange(ctx, c.indexKey(), 0, int64(n-1)).Result()
	if err != nil {
		return nil, fmt.Errorf("redis recent failed: %w", err)
	}
	if len(keys) == 0 {
		return nil, nil
	}

	entryKeys := make([]string, len(keys))
	for i, k := range keys {
		entryKeys[i] = c.entryKey(k)
	}
	vals, err := c.client.MGet(ctx, entryKeys...).Result()
	if err != nil {
		return nil, fmt.Errorf("redis recent failed: %w", err)
	}

	out := make([]models.CacheEntry, 0, len(vals))
	for _, v := range vals {
		s, ok := v.(string)
		if !ok {
			continue
		}
		var e models.CacheEntry
		if err := json.Unmarshal([]byte(s), &e); err != nil {
			continue
		}
		out = append(out, e)
	}
	return out, nil
}

// prune drops index members older than the TTL.
func (c *RedisCache) prune(ctx context.Context) error {
	cutoff := c.now().Add(-c.ttl).UnixNano()
	err := c.client.ZRemRangeByScore(ctx, c.indexKey(), "-inf", strconv.FormatInt(cutoff, 10)).Err()
	if err != nil {
		return fmt.Errorf("redis prune failed: %w", err)
	}
	return nil
}

// Close releases the underlying connection pool.
func (c *RedisCache) Close() error {
	return c.client.Close()
}
