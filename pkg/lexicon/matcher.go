package lexicon

import (
	"strings"
	"unicode"

	ahocorasick "github.com/cloudflare/ahocorasick"
)

// Matcher finds which keyword groups occur in a text in one pass.
// Keywords only match on word boundaries.
type Matcher struct {
	matcher  *ahocorasick.Matcher
	labels   []string
	groupOf  []int // keyword index -> label index
	keywords []string
}

// NewMatcher builds an automaton over groups[i] labelled labels[i]. Label
// order is preserved and decides precedence in First.
func NewMatcher(labels []string, groups [][]string) *Matcher {
	m := &Matcher{labels: labels}
	for gi, group := range groups {
		for _, kw := range group {
			normalized := normalizeForMatch(kw)
			if strings.TrimSpace(normalized) == "" {
				continue
			}
			m.keywords = append(m.keywords, normalized)
			m.groupOf = append(m.groupOf, gi)
		}
	}
	if len(m.keywords) > 0 {
		m.matcher = ahocorasick.NewStringMatcher(m.keywords)
	}
	return m
}

// Labels returns every label with at least one keyword in text, in label order.
func (m *Matcher) Labels(text string) []string {
	if m == nil || m.matcher == nil {
		return nil
	}
	hits := m.matcher.MatchThreadSafe([]byte(normalizeForMatch(text)))
	found := make([]bool, len(m.labels))
	for _, idx := range hits {
		if idx < len(m.groupOf) {
			found[m.groupOf[idx]] = true
		}
	}
	var out []string
	for i, ok := range found {
		if ok {
			out = append(out, m.labels[i])
		}
	}
	return out
}

// First returns the highest-precedence label present in text.
func (m *Matcher) First(text string) (string, bool) {
	labels := m.Labels(text)
	if len(labels) == 0 {
		return "", false
	}
	return labels[0], true
}

// normalizeForMatch lower-cases s, turns punctuation into spaces and pads
// it so " word " patterns only match whole words.
func normalizeForMatch(s string) string {
	var b strings.Builder
	b.Grow(len(s) + 2)
	b.WriteByte(' ')
	lastSpace := true
	for _, r := range strings.ToLower(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			lastSpace = false
			continue
		}
		if !lastSpace {
			b.WriteByte(' ')
			lastSpace = true
		}
	}
	if !lastSpace {
		b.WriteByte(' ')
	}
	return b.String()
}
