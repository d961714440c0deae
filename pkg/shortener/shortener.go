// Package shortener is the public face of slug generation: it validates
// input URLs, consults the cache, runs the pipeline and exposes pattern
// analysis and cache introspection.
package shortener

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"
	"unicode"

	"github.com/dtnitsch/linkslug/models"
	"github.com/dtnitsch/linkslug/pkg/assembler"
	"github.com/dtnitsch/linkslug/pkg/caching"
	"github.com/dtnitsch/linkslug/pkg/db"
	"github.com/dtnitsch/linkslug/pkg/generator"
	"github.com/dtnitsch/linkslug/pkg/pattern"
)

var (
	// ErrMalformedURL is returned for input that is not a usable http(s) URL.
	ErrMalformedURL = errors.New("malformed url")
	// ErrNoIdentity is returned when analysis is requested without an identity.
	ErrNoIdentity = errors.New("identity id is required")
	// ErrNoLearner is returned when pattern analysis is not configured.
	ErrNoLearner = errors.New("pattern analysis is not configured")
)

// Observer receives service-level measurements. *metrics.Metrics
// implements it.
type Observer interface {
	CacheLookup(result string)
	SlugGenerated(r models.SlugResult, took time.Duration)
}

type nopObserver struct{}

func (nopObserver) CacheLookup(string)                            {}
func (nopObserver) SlugGenerated(models.SlugResult, time.Duration) {}

// Config wires a Service. Cache defaults to an in-memory cache; History,
// Learner and Observer may be nil.
type Config struct {
	Assembler *assembler.Assembler
	Generator *generator.Generator
	Cache     caching.Store
	History   db.HistoryStore
	Learner   *pattern.Learner
	Observer  Observer
	Workers   int
	Now       func() time.Time
	Logger    *slog.Logger
}

type Service struct {
	assembler *assembler.Assembler
	generator *generator.Generator
	cache     caching.Store
	history   db.HistoryStore
	learner   *pattern.Learner
	observer  Observer
	workers   int
	now       func() time.Time
	logger    *slog.Logger
}

func New(cfg Config) *Service {
	if cfg.Cache == nil {
		cfg.Cache = caching.NewMemoryCache(caching.DefaultTTL)
	}
	if cfg.Observer == nil {
		cfg.Observer = nopObserver{}
	}
	if cfg.Workers <= 0 {
		cfg.Workers = pattern.DefaultWorkers
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Service{
		assembler: cfg.Assembler,
		generator: cfg.Generator,
		cache:     cfg.Cache,
		history:   cfg.History,
		learner:   cfg.Learner,
		observer:  cfg.Observer,
		workers:   cfg.Workers,
		now:       cfg.Now,
		logger:    cfg.Logger,
	}
}

// ParseURL validates raw and returns the parsed URL and its canonical
// string. A missing scheme defaults to https.
func ParseURL(raw string) (*url.URL, string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, "", fmt.Errorf("%w: empty input", ErrMalformedURL)
	}
	if strings.IndexFunc(raw, unicode.IsSpace) >= 0 {
		return nil, "", fmt.Errorf("%w: %q contains whitespace", ErrMalformedURL, raw)
	}
	if !strings.Contains(raw, "://") {
		raw = "https://" + raw
	}

	u, err := url.Parse(raw)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", ErrMalformedURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, "", fmt.Errorf("%w: unsupported scheme %q", ErrMalformedURL, u.Scheme)
	}
	host := u.Hostname()
	if host == "" || !strings.Contains(host, ".") || strings.HasPrefix(host, ".") || strings.HasSuffix(host, ".") {
		return nil, "", fmt.Errorf("%w: invalid host %q", ErrMalformedURL, host)
	}
	return u, u.String(), nil
}

// GenerateSlug returns a validated slug for rawURL. Only malformed input
// fails; every other problem degrades to a lower tier. Results are cached
// per normalized URL.
func (s *Service) GenerateSlug(ctx context.Context, rawURL string, opts models.GenerateOptions) (models.SlugResult, error) {
	u, canonical, err := ParseURL(rawURL)
	if err != nil {
		return models.SlugResult{}, err
	}

	if r, ok := s.cached(ctx, canonical); ok {
		s.record(ctx, opts, canonical, r)
		return r, nil
	}

	start := time.Now()
	gc := s.assembler.Assemble(ctx, canonical, u, opts)
	c := s.generator.Generate(ctx, gc)
	r := models.SlugResult{
		Slug:        c.Slug,
		Tier:        c.Tier,
		Confidence:  c.Confidence,
		Metadata:    c.Metadata,
		GeneratedAt: s.now().UTC(),
	}
	s.observer.SlugGenerated(r, time.Since(start))
	s.logger.Debug("slug generated", "url", canonical, "slug", r.Slug, "tier", r.Tier, "confidence", r.Confidence)

	if err := s.cache.Set(ctx, canonical, r); err != nil {
		s.logger.Warn("cache write failed", "url", canonical, "error", err)
	}
	s.record(ctx, opts, canonical, r)
	return r, nil
}

func (s *Service) cached(ctx context.Context, key string) (models.SlugResult, bool) {
	r, ok, err := s.cache.Get(ctx, key)
	switch {
	case err != nil:
		s.observer.CacheLookup("error")
		s.logger.Warn("cache read failed", "url", key, "error", err)
		return models.SlugResult{}, false
	case !ok:
		s.observer.CacheLookup("miss")
		return models.SlugResult{}, false
	}
	if !s.generator.Validator().Validate(r.Slug) {
		s.observer.CacheLookup("miss")
		return models.SlugResult{}, false
	}
	s.observer.CacheLookup("hit")
	return *r, true
}

// record appends the result to the identity's history when asked to.
func (s *Service) record(ctx context.Context, opts models.GenerateOptions, u string, r models.SlugResult) {
	if !opts.RecordHistory || opts.IdentityID == "" || s.history == nil {
		return
	}
	err := s.history.AppendHistory(ctx, db.HistoryEntry{
		IdentityID: opts.IdentityID,
		URL:        u,
		Slug:       r.Slug,
		Tier:       string(r.Tier),
	})
	if err != nil {
		s.logger.Warn("history write failed", "identity", opts.IdentityID, "error", err)
	}
}

// GenerateMultipleSlugs returns count distinct candidates in cycling
// styles. count is clamped to [1, 10]. Candidates are not cached.
func (s *Service) GenerateMultipleSlugs(ctx context.Context, rawURL string, opts models.GenerateOptions, count int) ([]models.Candidate, error) {
	u, canonical, err := ParseURL(rawURL)
	if err != nil {
		return nil, err
	}
	gc := s.assembler.Assemble(ctx, canonical, u, opts)
	return s.generator.GenerateMultiple(ctx, gc, count), nil
}

// AnalyzeIdentityPattern recomputes one identity's naming pattern.
func (s *Service) AnalyzeIdentityPattern(ctx context.Context, identityID string, force bool) (*pattern.Result, error) {
	if s.learner == nil {
		return nil, ErrNoLearner
	}
	if strings.TrimSpace(identityID) == "" {
		return nil, ErrNoIdentity
	}
	return s.learner.Analyze(ctx, identityID, force)
}

// AnalyzeAll analyzes every identity with recorded history on a bounded
// worker pool.
func (s *Service) AnalyzeAll(ctx context.Context) ([]pattern.Result, error) {
	if s.learner == nil || s.history == nil {
		return nil, ErrNoLearner
	}
	ids, err := s.history.Identities(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list identities: %w", err)
	}
	return s.learner.AnalyzeBatch(ctx, ids, s.workers), nil
}

func (s *Service) CacheSize(ctx context.Context) (int, error) {
	return s.cache.Size(ctx)
}

func (s *Service) RecentEntries(ctx context.Context, n int) ([]models.CacheEntry, error) {
	return s.cache.Recent(ctx, n)
}

func (s *Service) ClearCache(ctx context.Context) error {
	return s.cache.Clear(ctx)
}
