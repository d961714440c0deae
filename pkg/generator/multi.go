package generator

import (
	"context"
	"strconv"
	"strings"

	"github.com/dtnitsch/linkslug/models"
	"github.com/dtnitsch/linkslug/pkg/slug"
)

const (
	MinCandidates = 1
	MaxCandidates = 10
)

// Styles is the order in which multi-candidate styles are cycled.
var Styles = []string{
	models.StyleBrand,
	models.StyleProduct,
	models.StyleFeature,
	models.StyleBenefit,
	models.StyleAction,
}

// ClampCount keeps a requested candidate count within bounds.
func ClampCount(n int) int {
	switch {
	case n < MinCandidates:
		return MinCandidates
	case n > MaxCandidates:
		return MaxCandidates
	}
	return n
}

// GenerateMultiple returns count distinct (case-insensitive) validated
// candidates labelled with cycling styles. The AI tier is asked per style
// when available; otherwise each style is composed from the best available
// tokens. Numbered variants of the primary slug fill any gap.
func (g *Generator) GenerateMultiple(ctx context.Context, gc *models.GenerationContext, count int) []models.Candidate {
	count = ClampCount(count)
	primary := g.Generate(ctx, gc)

	out := make([]models.Candidate, 0, count)
	seen := make(map[string]bool)
	add := func(c models.Candidate) bool {
		key := strings.ToLower(c.Slug)
		if seen[key] || len(out) >= count {
			return false
		}
		seen[key] = true
		out = append(out, c)
		return true
	}

	base, baseTier := g.baseTokens(gc)
	for i := 0; i < count; i++ {
		style := Styles[i%len(Styles)]
		variant := i / len(Styles)

		if variant == 0 && g.ai.Enabled(gc) {
			if c := g.ai.AttemptStyle(ctx, gc, style); c != nil {
				if s := g.validator.Sanitize(c.Slug); g.validator.Validate(s) {
					c.Slug = s
					if add(*c) {
						continue
					}
				}
			}
		}

		tokens := g.styleTokens(gc, style, base, variant)
		if len(tokens) == 0 {
			continue
		}
		s := g.validator.Sanitize(slug.Compose(gc.Merchant, tokens, styleFor(gc)))
		if !g.validator.Validate(s) {
			continue
		}
		add(models.Candidate{
			Slug:       s,
			Tier:       baseTier,
			Confidence: models.ConfidenceMedium,
			Style:      style,
			Quality:    len(tokens),
			Metadata:   gc.Metadata,
		})
	}

	primary.Style = Styles[0]
	if len(out) == 0 {
		add(primary)
	}
	for n := 2; len(out) < count; n++ {
		c := primary
		c.Slug = g.numbered(primary.Slug, n, styleFor(gc).Separator)
		c.Confidence = models.ConfidenceLow
		c.Style = Styles[len(out)%len(Styles)]
		if g.validator.Validate(c.Slug) {
			add(c)
		}
		if n > 2*MaxCandidates+count {
			break
		}
	}
	return out
}

// baseTokens picks the richest deterministic token source for gc.
func (g *Generator) baseTokens(gc *models.GenerationContext) ([]string, models.Tier) {
	if t := g.scraping.Tokens(gc); len(t) > 0 {
		return t, models.TierScraping
	}
	if t := g.urlTier.Tokens(gc.URL, gc.Merchant); len(t) > 0 {
		return t, models.TierURL
	}
	if len(gc.Keywords) > 0 {
		return gc.Keywords, models.TierScraping
	}
	return nil, models.TierFallback
}

// styleTokens arranges base tokens for one style. Later variants lead with
// the season or year so repeated styles stay distinct.
func (g *Generator) styleTokens(gc *models.GenerationContext, style string, base []string, variant int) []string {
	if len(base) == 0 {
		return nil
	}
	maxWords := styleFor(gc).MaxWords

	var tokens []string
	switch style {
	case models.StyleBrand:
		tokens = append(tokens, capTokens(base, 2)...)
	case models.StyleProduct:
		tokens = append(tokens, capTokens(base, maxWords)...)
	case models.StyleFeature:
		var features, rest []string
		for _, t := range base {
			if g.lex.IsFeature(t) || slug.IsUnit(t) {
				features = append(features, t)
			} else {
				rest = append(rest, t)
			}
		}
		if len(features) == 0 {
			features = []string{"top"}
		}
		tokens = append(features, capTokens(rest, 2)...)
	case models.StyleBenefit:
		lead := strings.ToLower(gc.Temporal.Season)
		if len(gc.Signals) > 0 {
			if w, ok := g.lex.BenefitWord(string(gc.Signals[0].Type)); ok {
				lead = strings.ToLower(w)
			}
		}
		tokens = append([]string{lead}, capTokens(base, 2)...)
	case models.StyleAction:
		cta := strings.ToLower(g.lex.IntentCTA(gc.Intent))
		tokens = append([]string{cta}, capTokens(base, 2)...)
	}

	switch {
	case variant == 1 && gc.Temporal.Season != "":
		tokens = append([]string{gc.Temporal.Season}, tokens...)
	case variant >= 1 && gc.Temporal.Year > 0:
		tokens = append([]string{strconv.Itoa(gc.Temporal.Year)}, tokens...)
	}
	return capTokens(tokens, maxWords)
}

// numbered appends -n to s, shortening s at a separator when the result
// would exceed the length cap.
func (g *Generator) numbered(s string, n int, sep string) string {
	if sep == "" {
		sep = models.SeparatorHyphen
	}
	suffix := sep + strconv.Itoa(n)
	max := g.validator.MaxLength()
	for len(s)+len(suffix) > max {
		i := strings.LastIndexAny(s, ".-_")
		if i <= 0 {
			break
		}
		s = s[:i]
	}
	return s + suffix
}
