// Package models defines data structures for configuration and slug generation.
package models

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds runtime configuration. Values come from an optional YAML
// file, then environment, then CLI flags.
type Config struct {
	Database   DatabaseConfig   `yaml:"database"`
	Cache      CacheConfig      `yaml:"cache"`
	Fetch      FetchConfig      `yaml:"fetch"`
	AI         AIConfig         `yaml:"ai"`
	Generation GenerationConfig `yaml:"generation"`
	Pattern    PatternConfig    `yaml:"pattern"`
	Server     ServerConfig     `yaml:"server"`

	// LexiconPath overrides the embedded word tables when set.
	LexiconPath string `yaml:"lexicon_path"`
	LogLevel    string `yaml:"log_level"`
}

type DatabaseConfig struct {
	Path string `yaml:"path"`
}

type CacheConfig struct {
	Backend   string        `yaml:"backend"` // memory, file, redis
	TTL       time.Duration `yaml:"ttl"`
	Dir       string        `yaml:"dir"`
	RedisAddr string        `yaml:"redis_addr"`
	RedisDB   int           `yaml:"redis_db"`
	// RedisPassword is read from REDIS_PASSWORD, never from the file.
	RedisPassword string `yaml:"-"`
}

type FetchConfig struct {
	Timeout      time.Duration `yaml:"timeout"`
	UserAgent    string        `yaml:"user_agent"`
	MaxBodyBytes int64         `yaml:"max_body_bytes"`
}

type AIConfig struct {
	Enabled   bool          `yaml:"enabled"`
	Timeout   time.Duration `yaml:"timeout"`
	MaxTokens int           `yaml:"max_tokens"`
	// Models maps quality level (basic, standard, premium, ultra) to a model name.
	Models map[string]string `yaml:"models"`
	// APIKey is read from ANTHROPIC_API_KEY, never from the file.
	APIKey string `yaml:"-"`
}

type GenerationConfig struct {
	MaxAttempts int `yaml:"max_attempts"`
	MaxLength   int `yaml:"max_length"`
}

type PatternConfig struct {
	HistoryLimit       int           `yaml:"history_limit"`
	MinSamples         int           `yaml:"min_samples"`
	Freshness          time.Duration `yaml:"freshness"`
	PromotionThreshold float64       `yaml:"promotion_threshold"`
	Workers            int           `yaml:"workers"`
}

type ServerConfig struct {
	Addr            string `yaml:"addr"`
	AnalyzeSchedule string `yaml:"analyze_schedule"`
}

// DefaultConfig returns the published defaults.
func DefaultConfig() *Config {
	return &Config{
		Database: DatabaseConfig{Path: "linkslug.db"},
		Cache: CacheConfig{
			Backend: "memory",
			TTL:     24 * time.Hour,
			Dir:     ".linkslug-cache",
		},
		Fetch: FetchConfig{
			Timeout:      6 * time.Second,
			UserAgent:    "Mozilla/5.0 (compatible; linkslug/1.0; +https://github.com/dtnitsch/linkslug)",
			MaxBodyBytes: 2 << 20,
		},
		AI: AIConfig{
			Timeout:   8 * time.Second,
			MaxTokens: 40,
			Models: map[string]string{
				"basic":    "claude-3-5-haiku-latest",
				"standard": "claude-3-5-haiku-latest",
				"premium":  "claude-sonnet-4-5",
				"ultra":    "claude-sonnet-4-5",
			},
		},
		Generation: GenerationConfig{MaxAttempts: 3, MaxLength: 60},
		Pattern: PatternConfig{
			HistoryLimit:       20,
			MinSamples:         5,
			Freshness:          24 * time.Hour,
			PromotionThreshold: 0.7,
			Workers:            4,
		},
		Server:   ServerConfig{Addr: ":8080"},
		LogLevel: "info",
	}
}

// LoadConfig reads path over the defaults. A missing file is not an error.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("failed to read config: %w", err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
			}
		}
	}

	cfg.AI.APIKey = os.Getenv("ANTHROPIC_API_KEY")
	if addr := os.Getenv("REDIS_ADDRESS"); addr != "" {
		cfg.Cache.RedisAddr = addr
	}
	cfg.Cache.RedisPassword = os.Getenv("REDIS_PASSWORD")

	cfg.applyDefaults()
	return cfg, cfg.Validate()
}

// applyDefaults fills zero values left by a partial YAML file.
func (c *Config) applyDefaults() {
	d := DefaultConfig()
	if c.Database.Path == "" {
		c.Database.Path = d.Database.Path
	}
	if c.Cache.Backend == "" {
		c.Cache.Backend = d.Cache.Backend
	}
	if c.Cache.TTL <= 0 {
		c.Cache.TTL = d.Cache.TTL
	}
	if c.Cache.Dir == "" {
		c.Cache.Dir = d.Cache.Dir
	}
	if c.Fetch.Timeout <= 0 {
		c.Fetch.Timeout = d.Fetch.Timeout
	}
	if c.Fetch.UserAgent == "" {
		c.Fetch.UserAgent = d.Fetch.UserAgent
	}
	if c.Fetch.MaxBodyBytes <= 0 {
		c.Fetch.MaxBodyBytes = d.Fetch.MaxBodyBytes
	}
	if c.AI.Timeout <= 0 {
		c.AI.Timeout = d.AI.Timeout
	}
	if c.AI.MaxTokens <= 0 {
		c.AI.MaxTokens = d.AI.MaxTokens
	}
	if c.AI.Models == nil {
		c.AI.Models = d.AI.Models
	}
	if c.Generation.MaxAttempts <= 0 {
		c.Generation.MaxAttempts = d.Generation.MaxAttempts
	}
	if c.Generation.MaxLength <= 0 {
		c.Generation.MaxLength = d.Generation.MaxLength
	}
	if c.Pattern.HistoryLimit <= 0 {
		c.Pattern.HistoryLimit = d.Pattern.HistoryLimit
	}
	if c.Pattern.MinSamples <= 0 {
		c.Pattern.MinSamples = d.Pattern.MinSamples
	}
	if c.Pattern.Freshness <= 0 {
		c.Pattern.Freshness = d.Pattern.Freshness
	}
	if c.Pattern.PromotionThreshold <= 0 {
		c.Pattern.PromotionThreshold = d.Pattern.PromotionThreshold
	}
	if c.Pattern.Workers <= 0 {
		c.Pattern.Workers = d.Pattern.Workers
	}
	if c.Server.Addr == "" {
		c.Server.Addr = d.Server.Addr
	}
	if c.LogLevel == "" {
		c.LogLevel = d.LogLevel
	}
}

// Validate rejects settings the pipeline cannot run with.
func (c *Config) Validate() error {
	switch c.Cache.Backend {
	case "memory", "file":
	case "redis":
		if c.Cache.RedisAddr == "" {
			return errors.New("cache backend redis requires redis_addr or REDIS_ADDRESS")
		}
	default:
		return fmt.Errorf("unknown cache backend %q", c.Cache.Backend)
	}
	if c.Generation.MaxLength < 50 || c.Generation.MaxLength > 70 {
		return fmt.Errorf("generation.max_length must be within 50-70, got %d", c.Generation.MaxLength)
	}
	if c.Pattern.HistoryLimit > 20 {
		return fmt.Errorf("pattern.history_limit must be at most 20, got %d", c.Pattern.HistoryLimit)
	}
	if c.Pattern.MinSamples > c.Pattern.HistoryLimit {
		return fmt.Errorf("pattern.min_samples (%d) exceeds pattern.history_limit (%d)", c.Pattern.MinSamples, c.Pattern.HistoryLimit)
	}
	if c.Pattern.PromotionThreshold > 1 {
		return fmt.Errorf("pattern.promotion_threshold must be within (0,1], got %v", c.Pattern.PromotionThreshold)
	}
	return nil
}
