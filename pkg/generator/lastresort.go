package generator

import (
	"strings"
	"time"

	"github.com/dtnitsch/linkslug/models"
	"github.com/dtnitsch/linkslug/pkg/lexicon"
	"github.com/dtnitsch/linkslug/pkg/slug"
)

// floorMerchant is used when nothing about the host survives sanitizing.
const floorMerchant = "Link"

// LastResort always produces a valid slug: merchant plus a path fragment,
// else merchant plus a date suffix, else Link.<Mon><DD>.
type LastResort struct {
	lex       *lexicon.Lexicon
	validator *slug.Validator
	now       func() time.Time
}

func NewLastResort(lex *lexicon.Lexicon, v *slug.Validator, now func() time.Time) *LastResort {
	if now == nil {
		now = time.Now
	}
	return &LastResort{lex: lex, validator: v, now: now}
}

func (l *LastResort) Name() models.Tier { return models.TierFallback }

// Build returns the last-resort candidate for gc.
func (l *LastResort) Build(gc *models.GenerationContext) models.Candidate {
	suffix := DateSuffix(l.now())
	merchant := l.validator.Sanitize(strings.ReplaceAll(gc.Merchant, ".", ""))

	var attempts []string
	if frag := l.fragment(gc); frag != "" && merchant != "" {
		attempts = append(attempts, merchant+models.SeparatorDot+frag)
	}
	if merchant != "" {
		attempts = append(attempts, merchant+models.SeparatorDot+suffix)
	}

	for _, raw := range attempts {
		s := l.validator.Sanitize(raw)
		if l.validator.Validate(s) {
			return l.candidate(s, gc)
		}
	}
	return l.candidate(floorMerchant+models.SeparatorDot+suffix, gc)
}

func (l *LastResort) candidate(s string, gc *models.GenerationContext) models.Candidate {
	return models.Candidate{
		Slug:       s,
		Tier:       models.TierFallback,
		Confidence: models.ConfidenceLow,
		Quality:    contentCount(s, gc.Merchant),
		Metadata:   gc.Metadata,
	}
}

// fragment is the first path word with at least three letters, skipping
// structural segments such as /p/ or /wiki/.
func (l *LastResort) fragment(gc *models.GenerationContext) string {
	if gc.URL == nil {
		return ""
	}
	f := newTokenFilter(l.lex, 3, gc.Merchant)
	for _, seg := range PathSegments(gc.URL) {
		if looksLikeID(seg) || l.lex.IsBoilerplateSegment(seg) {
			continue
		}
		for _, w := range f.Tokens(seg) {
			if !looksLikeID(w) && threeLetterRun(w) {
				return slug.TitleWord(w)
			}
		}
	}
	return ""
}

func threeLetterRun(s string) bool {
	run := 0
	for i := 0; i < len(s); i++ {
		c := s[i]
		if (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') {
			run++
			if run >= 3 {
				return true
			}
		} else {
			run = 0
		}
	}
	return false
}

// DateSuffix renders t as e.g. Oct16.
func DateSuffix(t time.Time) string {
	return t.Format("Jan02")
}
