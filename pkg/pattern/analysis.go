// Package pattern infers an identity's slug conventions from its history
// and folds trusted conventions back into its naming profile.
package pattern

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/dtnitsch/linkslug/models"
	"github.com/dtnitsch/linkslug/pkg/lexicon"
	"github.com/dtnitsch/linkslug/pkg/slug"
)

// Token categories, in cascade order.
const (
	CategoryBrand   = "brand"
	CategoryCTA     = "cta"
	CategoryFeature = "feature"
	CategoryNumber  = "number"
	CategoryYear    = "year"
	CategoryOrdinal = "ordinal"
	CategoryWord    = "word"
)

var (
	yearPattern    = regexp.MustCompile(`^(19|20)\d{2}$`)
	ordinalPattern = regexp.MustCompile(`^\d+(st|nd|rd|th)$`)
)

// Analysis describes the shape of one slug.
type Analysis struct {
	Slug           string
	Tokens         []string
	TokenCount     int
	Separator      string
	Capitalization string
	Categories     []string
	FirstCategory  string
	LastCategory   string
	ContainsBrand  bool
	ContainsYear   bool
	ContainsCTA    bool
	// Template is the categories joined by "-", e.g. brand-word-word.
	Template string
}

// Detector analyzes slugs against the lexicon word tables.
type Detector struct {
	lex        *lexicon.Lexicon
	minSamples int
}

func NewDetector(lex *lexicon.Lexicon) *Detector {
	return &Detector{lex: lex, minSamples: MinSamples}
}

// WithMinSamples raises the sample floor. Values below MinSamples are
// ignored.
func (d *Detector) WithMinSamples(n int) *Detector {
	d.minSamples = max(n, MinSamples)
	return d
}

// AnalyzeSlug categorizes the tokens of s and records its separator and
// capitalization.
func (d *Detector) AnalyzeSlug(s string) Analysis {
	s = strings.TrimSpace(s)
	a := Analysis{Slug: s, Separator: separatorOf(s)}

	a.Tokens = slug.Tokens(s)
	if len(a.Tokens) == 1 {
		if parts := splitCamel(a.Tokens[0]); len(parts) > 1 {
			a.Tokens = parts
		}
	}
	a.TokenCount = len(a.Tokens)
	lead := merchantLed(s)
	a.Capitalization = d.capitalization(s, a.Tokens, lead)

	a.Categories = make([]string, len(a.Tokens))
	for i, tok := range a.Tokens {
		c := d.Category(tok)
		if i == 0 && lead {
			c = CategoryBrand
		}
		a.Categories[i] = c
		switch c {
		case CategoryBrand:
			a.ContainsBrand = true
		case CategoryYear:
			a.ContainsYear = true
		case CategoryCTA:
			a.ContainsCTA = true
		}
	}
	if n := len(a.Categories); n > 0 {
		a.FirstCategory = a.Categories[0]
		a.LastCategory = a.Categories[n-1]
	}
	a.Template = strings.Join(a.Categories, "-")
	return a
}

// Category runs the token cascade: brand, cta, feature, number, year,
// ordinal, word. Four-digit 19xx/20xx values are years, not numbers.
func (d *Detector) Category(tok string) string {
	lower := strings.ToLower(tok)
	switch {
	case d.lex.IsBrand(lower):
		return CategoryBrand
	case d.lex.IsCTA(lower):
		return CategoryCTA
	case d.lex.IsFeature(lower):
		return CategoryFeature
	case yearPattern.MatchString(lower):
		return CategoryYear
	case isDigits(lower):
		return CategoryNumber
	case ordinalPattern.MatchString(lower):
		return CategoryOrdinal
	}
	return CategoryWord
}

// merchantLed reports whether s opens with a Merchant. prefix, which
// marks the first token as a brand even when the table does not know it.
func merchantLed(s string) bool {
	i := strings.IndexAny(s, ".-_")
	return i > 0 && s[i] == '.'
}

// separatorOf returns the dominant word separator. A leading merchant dot
// is ignored when other separators follow it.
func separatorOf(s string) string {
	var seps []byte
	for i := 0; i < len(s); i++ {
		if slug.IsSeparator(s[i]) {
			seps = append(seps, s[i])
		}
	}
	if len(seps) > 1 && seps[0] == '.' {
		seps = seps[1:]
	}
	if len(seps) == 0 {
		return models.SeparatorNone
	}

	counts := make(map[byte]int)
	best := seps[0]
	for _, c := range seps {
		counts[c]++
		if counts[c] > counts[best] {
			best = c
		}
	}
	return string(best)
}

// capitalization classifies letter casing. Brand and merchant tokens keep
// their own casing (eBay, GitHub) and are ignored unless nothing else has
// letters.
func (d *Detector) capitalization(s string, tokens []string, lead bool) string {
	if !strings.ContainsAny(s, ".-_") && len(tokens) > 1 {
		return models.CapsCamel
	}

	var words []string
	for i, t := range tokens {
		if i == 0 && lead {
			continue
		}
		if hasLetter(t) && !d.lex.IsBrand(strings.ToLower(t)) {
			words = append(words, t)
		}
	}
	if len(words) == 0 {
		for _, t := range tokens {
			if hasLetter(t) {
				words = append(words, t)
			}
		}
	}
	if len(words) == 0 {
		return models.CapsMixed
	}

	lower, upper, title := true, true, true
	for _, w := range words {
		if w != strings.ToLower(w) {
			lower = false
		}
		if w != strings.ToUpper(w) || len(w) < 2 {
			upper = false
		}
		if !isTitle(w) {
			title = false
		}
	}
	switch {
	case lower:
		return models.CapsLower
	case upper:
		return models.CapsUpper
	case title:
		return models.CapsTitle
	}
	return models.CapsMixed
}

// isTitle reports whether w starts with an upper-case letter and has no
// other upper-case letters. Leading digits are skipped (100ct, 4K).
func isTitle(w string) bool {
	seenLetter := false
	for _, r := range w {
		if !unicode.IsLetter(r) {
			continue
		}
		if !seenLetter {
			if !unicode.IsUpper(r) {
				return false
			}
			seenLetter = true
			continue
		}
		if unicode.IsUpper(r) {
			return false
		}
	}
	return seenLetter
}

// splitCamel splits AcmeSpringSale into Acme, Spring, Sale.
func splitCamel(s string) []string {
	var out []string
	start := 0
	runes := []rune(s)
	for i := 1; i < len(runes); i++ {
		if unicode.IsUpper(runes[i]) && !unicode.IsUpper(runes[i-1]) {
			out = append(out, string(runes[start:i]))
			start = i
		}
	}
	return append(out, string(runes[start:]))
}

func hasLetter(s string) bool {
	for _, r := range s {
		if unicode.IsLetter(r) {
			return true
		}
	}
	return false
}

func isDigits(s string) bool {
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
