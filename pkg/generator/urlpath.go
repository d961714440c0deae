package generator

import (
	"context"
	"net/url"
	"path"
	"strings"

	"github.com/dtnitsch/linkslug/models"
	"github.com/dtnitsch/linkslug/pkg/lexicon"
	"github.com/dtnitsch/linkslug/pkg/slug"
)

// searchParams are query keys that carry a search phrase.
var searchParams = []string{"q", "k", "query", "search", "keywords", "_nkw"}

// URLTier builds a slug from the URL path, or from a search query when the
// path has no usable words.
type URLTier struct {
	lex *lexicon.Lexicon
}

func NewURLTier(lex *lexicon.Lexicon) *URLTier {
	return &URLTier{lex: lex}
}

func (t *URLTier) Name() models.Tier { return models.TierURL }
func (t *URLTier) Transient() bool   { return false }

func (t *URLTier) Attempt(ctx context.Context, gc *models.GenerationContext) *models.Candidate {
	tokens := t.Tokens(gc.URL, gc.Merchant)
	if len(tokens) == 0 {
		return nil
	}

	st := styleFor(gc)
	tokens = capTokens(tokens, st.MaxWords)
	return &models.Candidate{
		Slug:       slug.Compose(gc.Merchant, tokens, st),
		Tier:       models.TierURL,
		Confidence: models.ConfidenceMedium,
		Quality:    len(tokens),
		Metadata:   gc.Metadata,
	}
}

// Tokens extracts content words from u's path, falling back to its search
// query parameters.
func (t *URLTier) Tokens(u *url.URL, merchant string) []string {
	if u == nil {
		return nil
	}
	f := newTokenFilter(t.lex, 3, merchant)

	var words []string
	for _, seg := range PathSegments(u) {
		if looksLikeID(seg) {
			continue
		}
		seg = strings.ToLower(seg)
		if ext := path.Ext(seg); ext != "" && t.lex.IsFileExtension(ext[1:]) {
			seg = strings.TrimSuffix(seg, ext)
		}
		if seg == "" || t.lex.IsBoilerplateSegment(seg) || isNumeric(seg) || looksLikeID(seg) {
			continue
		}
		for _, w := range split(seg) {
			if !looksLikeID(w) {
				words = append(words, w)
			}
		}
	}
	if tokens := f.Filter(words); len(tokens) > 0 {
		return tokens
	}

	q := u.Query()
	for _, key := range searchParams {
		if v := q.Get(key); v != "" {
			if tokens := f.Tokens(v); len(tokens) > 0 {
				return tokens
			}
		}
	}
	return nil
}

// PathSegments returns the unescaped, non-empty path segments of u.
func PathSegments(u *url.URL) []string {
	var out []string
	for _, seg := range strings.Split(u.EscapedPath(), "/") {
		if seg == "" {
			continue
		}
		if unescaped, err := url.PathUnescape(seg); err == nil {
			seg = unescaped
		}
		out = append(out, seg)
	}
	return out
}
