package common

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/dtnitsch/linkslug/models"
	"github.com/dtnitsch/linkslug/pkg/assembler"
	"github.com/dtnitsch/linkslug/pkg/caching"
	"github.com/dtnitsch/linkslug/pkg/db"
	"github.com/dtnitsch/linkslug/pkg/fetcher"
	"github.com/dtnitsch/linkslug/pkg/generator"
	"github.com/dtnitsch/linkslug/pkg/lexicon"
	"github.com/dtnitsch/linkslug/pkg/llm"
	"github.com/dtnitsch/linkslug/pkg/metrics"
	"github.com/dtnitsch/linkslug/pkg/pattern"
	"github.com/dtnitsch/linkslug/pkg/shortener"
	"github.com/dtnitsch/linkslug/pkg/slug"
	"github.com/urfave/cli/v2"
)

// Breaker settings for the hosted text generator.
const (
	aiFailureThreshold = 5
	aiCooldown         = 30 * time.Second
)

// App is a fully wired service plus the resources it owns.
type App struct {
	Config  *models.Config
	Service *shortener.Service
	DB      *db.DB
	Metrics *metrics.Metrics
	Lexicon *lexicon.Lexicon
	Logger  *slog.Logger
	closers []io.Closer
}

// NewLogger returns the JSON logger used by every command.
func NewLogger(level string, quiet bool) *slog.Logger {
	var l slog.Level
	switch strings.ToLower(level) {
	case "debug":
		l = slog.LevelDebug
	case "warn", "warning":
		l = slog.LevelWarn
	case "error":
		l = slog.LevelError
	default:
		l = slog.LevelInfo
	}
	if quiet {
		l = slog.LevelError
	}
	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: l}))
}

// LoadConfig reads the config file named by --config and applies the
// global flag overrides.
func LoadConfig(c *cli.Context) (*models.Config, error) {
	cfg, err := models.LoadConfig(c.String("config"))
	if err != nil {
		return nil, err
	}
	if c.IsSet("db") {
		cfg.Database.Path = c.String("db")
	}
	if c.IsSet("cache") {
		cfg.Cache.Backend = c.String("cache")
	}
	if c.IsSet("log-level") {
		cfg.LogLevel = c.String("log-level")
	}
	if c.Bool("no-ai") {
		cfg.AI.Enabled = false
	}
	return cfg, cfg.Validate()
}

// Setup loads configuration from the command line and builds the App.
func Setup(c *cli.Context) (*App, error) {
	cfg, err := LoadConfig(c)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return Build(cfg, NewLogger(cfg.LogLevel, c.Bool("quiet")))
}

// Build wires every component described by cfg.
func Build(cfg *models.Config, logger *slog.Logger) (*App, error) {
	app := &App{Config: cfg, Logger: logger, Metrics: metrics.New()}

	lex := lexicon.Default()
	if cfg.LexiconPath != "" {
		loaded, err := lexicon.Load(cfg.LexiconPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load lexicon: %w", err)
		}
		lex = loaded
	}
	app.Lexicon = lex

	database, err := db.Open(cfg.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	app.DB = database
	app.closers = append(app.closers, database)

	cache, err := caching.Open(cfg.Cache)
	if err != nil {
		_ = app.Close()
		return nil, fmt.Errorf("failed to open %s cache: %w", cfg.Cache.Backend, err)
	}
	if c, ok := cache.(io.Closer); ok {
		app.closers = append(app.closers, c)
	}

	pages := fetcher.NewFetcher(cfg.Fetch.UserAgent, cfg.Fetch.MaxBodyBytes)
	asm := assembler.New(assembler.Deps{
		Lexicon:  lex,
		Metadata: fetcher.NewMetadataFetcher(pages, cfg.Fetch.Timeout, logger),
		Profiles: database,
		Language: assembler.NewLinguaDetector(),
		Logger:   logger,
	})

	genCfg := generator.Config{
		Lexicon:     lex,
		Validator:   slug.NewValidator(lex, cfg.Generation.MaxLength),
		MaxTokens:   cfg.AI.MaxTokens,
		MaxAttempts: cfg.Generation.MaxAttempts,
		Recorder:    app.Metrics,
		Logger:      logger,
	}
	if ai := buildAI(cfg.AI, app.Metrics, logger); ai != nil {
		genCfg.AI = ai
	}

	detector := pattern.NewDetector(lex).WithMinSamples(cfg.Pattern.MinSamples)
	learner := pattern.NewLearner(pattern.LearnerConfig{
		Detector:           detector,
		Profiles:           database,
		History:            database,
		HistoryLimit:       cfg.Pattern.HistoryLimit,
		Freshness:          cfg.Pattern.Freshness,
		PromotionThreshold: cfg.Pattern.PromotionThreshold,
		Recorder:           app.Metrics,
		Logger:             logger,
	})

	app.Service = shortener.New(shortener.Config{
		Assembler: asm,
		Generator: generator.New(genCfg),
		Cache:     cache,
		History:   database,
		Learner:   learner,
		Observer:  app.Metrics,
		Workers:   cfg.Pattern.Workers,
		Logger:    logger,
	})
	return app, nil
}

// buildAI returns nil when the AI tier is disabled or has no credentials.
func buildAI(cfg models.AIConfig, m *metrics.Metrics, logger *slog.Logger) llm.TextGenerator {
	if !cfg.Enabled {
		return nil
	}
	if cfg.APIKey == "" {
		logger.Warn("ai tier enabled without ANTHROPIC_API_KEY; continuing without it")
		return nil
	}
	client := llm.NewAnthropic(cfg.APIKey, cfg.Models, cfg.Timeout)
	breaker := llm.NewBreaker(client, aiFailureThreshold, aiCooldown)
	return m.InstrumentGenerator(breaker)
}

// Close releases the database and cache connections.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i].Close(); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}
