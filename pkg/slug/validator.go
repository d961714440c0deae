// Package slug normalizes, validates and composes slugs.
package slug

import (
	"errors"
	"regexp"
	"strings"
	"unicode"

	"github.com/dtnitsch/linkslug/pkg/lexicon"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

const (
	// MinLength is the shortest acceptable slug.
	MinLength = 5
	// DefaultMaxLength is used when no length is configured.
	DefaultMaxLength = 60

	separators = ".-_"
)

// Rejection reasons returned by Check.
var (
	ErrTooShort         = errors.New("slug too short")
	ErrTooLong          = errors.New("slug too long")
	ErrCharset          = errors.New("slug contains disallowed characters")
	ErrEdgeSeparator    = errors.New("slug starts or ends with a separator")
	ErrDoubledSeparator = errors.New("slug contains consecutive separators")
	ErrTooFewTokens     = errors.New("slug needs at least two tokens")
	ErrFileExtension    = errors.New("slug ends with a file extension")
	ErrGenericOnly      = errors.New("slug contains only generic filler")
	ErrNoWord           = errors.New("slug has no run of three letters")
)

var threeLetters = regexp.MustCompile(`[A-Za-z]{3}`)

// Validator sanitizes and accepts or rejects raw slugs.
type Validator struct {
	lex    *lexicon.Lexicon
	maxLen int
}

// NewValidator returns a Validator capping slugs at maxLen characters.
func NewValidator(lex *lexicon.Lexicon, maxLen int) *Validator {
	if maxLen <= 0 {
		maxLen = DefaultMaxLength
	}
	return &Validator{lex: lex, maxLen: maxLen}
}

// MaxLength returns the configured cap.
func (v *Validator) MaxLength() int { return v.maxLen }

// IsSeparator reports whether b is one of the slug separators.
func IsSeparator(b byte) bool {
	return b == '.' || b == '-' || b == '_'
}

func isAlnum(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9')
}

// Sanitize maps raw onto the allowed charset, collapses separator runs,
// trims separators and caps the length. Sanitize(Sanitize(x)) == Sanitize(x).
func (v *Validator) Sanitize(raw string) string {
	stripped, _, err := transform.String(transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC), raw)
	if err != nil {
		stripped = raw
	}

	var b strings.Builder
	b.Grow(len(stripped))
	var last byte
	for _, r := range stripped {
		var c byte
		switch {
		case isAlnum(r):
			c = byte(r)
		case r == '.' || r == '-' || r == '_':
			c = byte(r)
		case r == '\'' || r == '’' || r == '`' || r == '"':
			continue
		case unicode.IsSpace(r) || unicode.IsPunct(r) || unicode.IsSymbol(r):
			c = '-'
		default:
			continue
		}
		if IsSeparator(c) {
			if b.Len() == 0 || IsSeparator(last) {
				continue
			}
		}
		b.WriteByte(c)
		last = c
	}

	s := strings.TrimRight(b.String(), separators)
	if len(s) > v.maxLen {
		cut := s[:v.maxLen]
		if !IsSeparator(s[v.maxLen]) {
			if idx := strings.LastIndexAny(cut, separators); idx > 0 {
				cut = cut[:idx]
			}
		}
		s = strings.TrimRight(cut, separators)
	}
	return s
}

// Validate reports whether s is an acceptable slug.
func (v *Validator) Validate(s string) bool {
	return v.Check(s) == nil
}

// Check returns the first rule s violates, or nil.
func (v *Validator) Check(s string) error {
	if len(s) < MinLength {
		return ErrTooShort
	}
	if len(s) > v.maxLen {
		return ErrTooLong
	}
	for i := 0; i < len(s); i++ {
		if !isAlnum(rune(s[i])) && !IsSeparator(s[i]) {
			return ErrCharset
		}
	}
	if IsSeparator(s[0]) || IsSeparator(s[len(s)-1]) {
		return ErrEdgeSeparator
	}
	for i := 1; i < len(s); i++ {
		if IsSeparator(s[i]) && IsSeparator(s[i-1]) {
			return ErrDoubledSeparator
		}
	}

	tokens := Tokens(s)
	if len(tokens) < 2 {
		return ErrTooFewTokens
	}

	if dot := strings.LastIndexAny(s, separators); dot >= 0 && s[dot] == '.' {
		if v.lex.IsFileExtension(s[dot+1:]) {
			return ErrFileExtension
		}
	}

	filler := true
	for _, tok := range tokens {
		if !v.lex.IsGeneric(tok) && !isDigits(tok) {
			filler = false
			break
		}
	}
	if filler {
		return ErrGenericOnly
	}

	if !threeLetters.MatchString(s) {
		return ErrNoWord
	}
	return nil
}

// Tokens splits s on every separator, dropping empty parts.
func Tokens(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool {
		return r < 128 && IsSeparator(byte(r))
	})
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
