package generator

import (
	"context"
	"log/slog"
	"time"

	"github.com/dtnitsch/linkslug/models"
	"github.com/dtnitsch/linkslug/pkg/lexicon"
	"github.com/dtnitsch/linkslug/pkg/llm"
	"github.com/dtnitsch/linkslug/pkg/slug"
)

// DefaultMaxAttempts is the number of passes over the chain.
const DefaultMaxAttempts = 3

// Config wires a Generator. AI may be nil, in which case the AI tier is
// left out of the chain.
type Config struct {
	Lexicon     *lexicon.Lexicon
	Validator   *slug.Validator
	AI          llm.TextGenerator
	MaxTokens   int
	MaxAttempts int
	Now         func() time.Time
	Recorder    Recorder
	Logger      *slog.Logger
}

// Generator runs the tier chain.
type Generator struct {
	lex        *lexicon.Lexicon
	validator  *slug.Validator
	ai         *AITier
	scraping   *ScrapingTier
	urlTier    *URLTier
	template   *TemplateTier
	tiers      []Tier
	lastResort *LastResort
	attempts   int
	recorder   Recorder
	logger     *slog.Logger
}

func New(cfg Config) *Generator {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Recorder == nil {
		cfg.Recorder = nopRecorder{}
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = DefaultMaxAttempts
	}
	if cfg.Validator == nil {
		cfg.Validator = slug.NewValidator(cfg.Lexicon, slug.DefaultMaxLength)
	}

	g := &Generator{
		lex:        cfg.Lexicon,
		validator:  cfg.Validator,
		scraping:   NewScrapingTier(cfg.Lexicon),
		urlTier:    NewURLTier(cfg.Lexicon),
		template:   NewTemplateTier(cfg.Lexicon),
		lastResort: NewLastResort(cfg.Lexicon, cfg.Validator, cfg.Now),
		attempts:   cfg.MaxAttempts,
		recorder:   cfg.Recorder,
		logger:     cfg.Logger,
	}
	if cfg.AI != nil {
		g.ai = NewAITier(cfg.AI, cfg.MaxTokens, cfg.Validator.MaxLength(), cfg.Logger)
		g.tiers = append(g.tiers, g.ai)
	}
	g.tiers = append(g.tiers, g.scraping, g.urlTier, g.template)
	return g
}

// enabler is implemented by tiers that can be switched off per request.
type enabler interface {
	Enabled(gc *models.GenerationContext) bool
}

// NewWithTiers builds a Generator over an explicit tier list.
func NewWithTiers(cfg Config, tiers ...Tier) *Generator {
	g := New(cfg)
	g.tiers = tiers
	return g
}

// Generate returns the first validated candidate of the chain. A candidate
// with fewer than two content tokens is held while the remaining tiers of
// the pass get a chance to do better. Passes after the first only re-run
// transient tiers. The last-resort tier ends the chain.
func (g *Generator) Generate(ctx context.Context, gc *models.GenerationContext) models.Candidate {
	var provisional *models.Candidate

	for pass := 1; pass <= g.attempts; pass++ {
		ran := false
		for _, t := range g.tiers {
			if pass > 1 && !t.Transient() {
				continue
			}
			if ctx.Err() != nil {
				break
			}
			if e, ok := t.(enabler); ok && !e.Enabled(gc) {
				continue
			}
			ran = true

			c := g.try(ctx, t, gc)
			if c == nil {
				continue
			}
			if c.Quality >= minQuality {
				g.recorder.TierOutcome(t.Name(), OutcomeAccepted)
				return *c
			}
			g.recorder.TierOutcome(t.Name(), OutcomeProvisional)
			if provisional == nil {
				provisional = c
			}
		}
		if provisional != nil {
			return *provisional
		}
		if !ran {
			break
		}
	}

	c := g.lastResort.Build(gc)
	g.recorder.TierOutcome(models.TierFallback, OutcomeAccepted)
	g.logger.Debug("last resort used", "url", gc.RawURL, "slug", c.Slug)
	return c
}

// try runs one tier and returns its sanitized candidate if it validates.
func (g *Generator) try(ctx context.Context, t Tier, gc *models.GenerationContext) *models.Candidate {
	c := t.Attempt(ctx, gc)
	if c == nil {
		g.recorder.TierOutcome(t.Name(), OutcomeEmpty)
		return nil
	}

	raw := c.Slug
	c.Slug = g.validator.Sanitize(raw)
	if err := g.validator.Check(c.Slug); err != nil {
		g.recorder.TierOutcome(t.Name(), OutcomeRejected)
		g.logger.Debug("candidate rejected", "tier", t.Name(), "raw", raw, "slug", c.Slug, "reason", err)
		return nil
	}
	return c
}

// Validator returns the validator candidates are checked against.
func (g *Generator) Validator() *slug.Validator { return g.validator }
