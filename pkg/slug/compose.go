package slug

import (
	"regexp"
	"strings"

	"github.com/dtnitsch/linkslug/models"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// unitToken matches quantity tokens such as 100ct, 16oz or 4k that must be
// kept verbatim.
var unitToken = regexp.MustCompile(`^\d+(\.\d+)?[a-z]{1,4}$`)

// IsUnit reports whether tok is a number-with-unit token.
func IsUnit(tok string) bool {
	return unitToken.MatchString(strings.ToLower(tok))
}

// Style controls how tokens become a slug.
type Style struct {
	Separator      string
	Capitalization string
	IncludeBrand   bool
	MaxWords       int
}

// StyleFrom derives a Style from identity preferences.
func StyleFrom(p models.Preferences) Style {
	st := Style{
		Separator:      p.Separator,
		Capitalization: p.Capitalization,
		IncludeBrand:   p.IncludeBrand,
		MaxWords:       p.MaxWords,
	}
	if st.Capitalization == "" {
		st.Capitalization = models.CapsTitle
	}
	if st.MaxWords <= 0 {
		st.MaxWords = models.DefaultMaxWords
	}
	if !p.Learned && p.Separator == "" {
		st.Separator = models.SeparatorHyphen
	}
	return st
}

// TitleWord upper-cases the first letter of w and lower-cases the rest.
// Unit tokens are returned unchanged.
func TitleWord(w string) string {
	if IsUnit(w) {
		return strings.ToLower(w)
	}
	// Casers are stateful; one per call keeps this safe for concurrent use.
	return cases.Title(language.English).String(w)
}

func applyCaps(w, caps string) string {
	switch caps {
	case models.CapsLower:
		return strings.ToLower(w)
	case models.CapsUpper:
		return strings.ToUpper(w)
	default:
		return TitleWord(w)
	}
}

// Compose joins merchant and content tokens under st. The merchant is
// always separated by a dot, and is kept even when the style drops brands
// if the content alone would be a single token.
func Compose(merchant string, tokens []string, st Style) string {
	if st.MaxWords > 0 && len(tokens) > st.MaxWords {
		tokens = tokens[:st.MaxWords]
	}

	words := make([]string, 0, len(tokens))
	for _, t := range tokens {
		if t == "" {
			continue
		}
		words = append(words, applyCaps(t, st.Capitalization))
	}

	sep := st.Separator
	if st.Capitalization == models.CapsCamel {
		sep = models.SeparatorNone
	}
	body := strings.Join(words, sep)

	if !st.IncludeBrand && len(words) >= 2 && sep != models.SeparatorNone {
		return body
	}

	switch st.Capitalization {
	case models.CapsLower:
		merchant = strings.ToLower(merchant)
	case models.CapsUpper:
		merchant = strings.ToUpper(merchant)
	}
	switch {
	case merchant == "":
		return body
	case body == "":
		return merchant
	default:
		return merchant + models.SeparatorDot + body
	}
}
