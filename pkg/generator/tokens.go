package generator

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/dtnitsch/linkslug/models"
	"github.com/dtnitsch/linkslug/pkg/lexicon"
	"github.com/dtnitsch/linkslug/pkg/slug"
)

// minQuality is the number of content tokens below which a candidate is
// only held provisionally.
const minQuality = 2

var (
	hexID     = regexp.MustCompile(`^[0-9a-f]{8,}$`)
	asin      = regexp.MustCompile(`^b0[0-9a-z]{8}$`)
	uuidShape = regexp.MustCompile(`^[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}$`)
	videoID   = regexp.MustCompile(`^[A-Za-z0-9_-]{11}$`)
)

// tokenFilter turns free text into content tokens.
type tokenFilter struct {
	lex      *lexicon.Lexicon
	minLen   int
	exclude  map[string]bool
	keepNums bool
}

func newTokenFilter(lex *lexicon.Lexicon, minLen int, exclude ...string) *tokenFilter {
	f := &tokenFilter{lex: lex, minLen: minLen, exclude: make(map[string]bool)}
	for _, e := range exclude {
		if e != "" {
			f.exclude[strings.ToLower(e)] = true
		}
	}
	return f
}

// split lower-cases text and breaks it into words. Apostrophes are
// removed first so "men's" stays one word; dots survive only inside
// unit tokens such as 2.5oz.
func split(text string) []string {
	text = strings.ToLower(text)
	text = strings.NewReplacer("'", "", "’", "").Replace(text)
	fields := strings.FieldsFunc(text, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '.'
	})

	var out []string
	for _, f := range fields {
		f = strings.Trim(f, ".")
		if f == "" {
			continue
		}
		if slug.IsUnit(f) || !strings.Contains(f, ".") {
			out = append(out, f)
			continue
		}
		for _, part := range strings.Split(f, ".") {
			if part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

// Tokens returns the distinct content tokens of text in order.
func (f *tokenFilter) Tokens(text string) []string {
	return f.Filter(split(text))
}

// Filter drops stop words, filler, excluded words, short words and pure
// numbers. Unit tokens are always kept.
func (f *tokenFilter) Filter(words []string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, w := range words {
		if seen[w] || f.exclude[w] {
			continue
		}
		unit := slug.IsUnit(w)
		switch {
		case unit:
		case isNumeric(w):
			if !f.keepNums {
				continue
			}
		case len([]rune(w)) < f.minLen:
			continue
		case f.lex.IsStopWord(w), f.lex.IsGeneric(w):
			continue
		}
		seen[w] = true
		out = append(out, w)
	}
	return out
}

func isNumeric(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// looksLikeID reports whether a path token is an opaque identifier (SKU,
// ASIN, hash, uuid, video id) rather than a word.
func looksLikeID(tok string) bool {
	if videoID.MatchString(tok) && caseFlips(tok) >= 3 {
		return true
	}
	tok = strings.ToLower(tok)
	if uuidShape.MatchString(tok) || asin.MatchString(tok) {
		return true
	}
	if slug.IsUnit(tok) {
		return false
	}
	digits, letters := 0, 0
	for _, r := range tok {
		switch {
		case unicode.IsDigit(r):
			digits++
		case unicode.IsLetter(r):
			letters++
		}
	}
	if digits == 0 {
		return false
	}
	if hexID.MatchString(tok) {
		return true
	}
	return len(tok) >= 6 && letters > 0 && digits*3 >= len(tok)
}

// caseFlips counts upper-case letters that directly follow a lower-case
// letter or digit. Words and CamelCase names have few; random ids have many.
func caseFlips(s string) int {
	n := 0
	var prev rune
	for _, r := range s {
		if unicode.IsUpper(r) && (unicode.IsLower(prev) || unicode.IsDigit(prev)) {
			n++
		}
		prev = r
	}
	return n
}

// capTokens truncates tokens to max entries.
func capTokens(tokens []string, max int) []string {
	if max > 0 && len(tokens) > max {
		return tokens[:max]
	}
	return tokens
}

// contentCount counts the tokens of s, not counting a leading merchant.
func contentCount(s, merchant string) int {
	tokens := slug.Tokens(s)
	if len(tokens) > 0 && merchant != "" && strings.EqualFold(tokens[0], merchant) {
		return len(tokens) - 1
	}
	return len(tokens)
}

func styleFor(gc *models.GenerationContext) slug.Style {
	return slug.StyleFrom(gc.Preferences())
}
