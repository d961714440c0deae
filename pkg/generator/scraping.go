package generator

import (
	"context"
	"strings"

	"github.com/dtnitsch/linkslug/models"
	"github.com/dtnitsch/linkslug/pkg/lexicon"
	"github.com/dtnitsch/linkslug/pkg/slug"
)

// ScrapingTier builds a slug from the fetched page title.
type ScrapingTier struct {
	lex *lexicon.Lexicon
}

func NewScrapingTier(lex *lexicon.Lexicon) *ScrapingTier {
	return &ScrapingTier{lex: lex}
}

func (t *ScrapingTier) Name() models.Tier { return models.TierScraping }
func (t *ScrapingTier) Transient() bool   { return false }

func (t *ScrapingTier) Attempt(ctx context.Context, gc *models.GenerationContext) *models.Candidate {
	tokens := t.Tokens(gc)
	if len(tokens) == 0 {
		return nil
	}

	st := styleFor(gc)
	tokens = capTokens(tokens, st.MaxWords)
	conf := models.ConfidenceHigh
	if len(tokens) < minQuality {
		conf = models.ConfidenceMedium
	}
	return &models.Candidate{
		Slug:       slug.Compose(gc.Merchant, tokens, st),
		Tier:       models.TierScraping,
		Confidence: conf,
		Quality:    len(tokens),
		Metadata:   gc.Metadata,
	}
}

// Tokens returns the content tokens of the page: the brand when it is not
// the merchant, then the title (or product name).
func (t *ScrapingTier) Tokens(gc *models.GenerationContext) []string {
	meta := gc.Metadata
	if !meta.WasFetched {
		return nil
	}
	text := meta.Title
	if text == "" {
		text = meta.ProductName
	}
	if text == "" {
		return nil
	}

	f := newTokenFilter(t.lex, 2, gc.Merchant, meta.SiteName)
	var words []string
	if meta.Brand != "" && !sameName(meta.Brand, gc.Merchant) {
		words = append(words, split(meta.Brand)...)
	}
	words = append(words, split(text)...)
	return f.Filter(words)
}

// sameName compares names ignoring case and punctuation.
func sameName(a, b string) bool {
	norm := func(s string) string {
		return strings.Join(split(s), "")
	}
	return norm(a) == norm(b)
}
