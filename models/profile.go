package models

import "time"

// Separator values recognised in slugs. SeparatorNone marks joined words.
const (
	SeparatorDot        = "."
	SeparatorHyphen     = "-"
	SeparatorUnderscore = "_"
	SeparatorNone       = ""
)

// Capitalization styles.
const (
	CapsTitle = "title"
	CapsLower = "lower"
	CapsUpper = "upper"
	CapsCamel = "camel"
	CapsMixed = "mixed"
)

// DetectedPattern is the statistical summary of an identity's recent slugs.
type DetectedPattern struct {
	Structure      string  `json:"structure"`
	AvgWordCount   float64 `json:"avg_word_count"`
	Separator      string  `json:"separator"`
	Capitalization string  `json:"capitalization"`
	IncludesBrand  bool    `json:"includes_brand"`
	IncludesYear   bool    `json:"includes_year"`
	UsesCTA        bool    `json:"uses_cta"`
	Confidence     float64 `json:"confidence"`
	SampleSize     int     `json:"sample_size"`
}

// Preferences steer generation for an identity. Explicit fields are set by
// the account owner; Separator, Capitalization, IncludeBrand and MaxWords are
// overwritten by the learner once a pattern is trusted (Learned).
type Preferences struct {
	Style       string   `json:"style,omitempty"`
	BrandVoice  string   `json:"brand_voice,omitempty"`
	AvoidWords  []string `json:"avoid_words,omitempty"`
	MustInclude []string `json:"must_include,omitempty"`

	Separator      string `json:"separator"`
	Capitalization string `json:"capitalization"`
	IncludeBrand   bool   `json:"include_brand"`
	MaxWords       int    `json:"max_words"`
	IncludeYear    bool   `json:"include_year,omitempty"`
	Learned        bool   `json:"learned"`
}

// NamingProfile is the persisted per-identity record of slug conventions.
type NamingProfile struct {
	IdentityID   string           `json:"identity_id"`
	Pattern      *DetectedPattern `json:"detected_pattern,omitempty"`
	Preferences  Preferences      `json:"preferences"`
	Examples     []string         `json:"examples,omitempty"`
	URLsAnalyzed int              `json:"urls_analyzed"`
	LastUpdated  time.Time        `json:"last_updated"`
}

// DefaultMaxWords caps content tokens when no learned preference exists.
const DefaultMaxWords = 5

// DefaultPreferences are used for anonymous callers and fresh profiles.
func DefaultPreferences() Preferences {
	return Preferences{
		Separator:      SeparatorHyphen,
		Capitalization: CapsTitle,
		IncludeBrand:   true,
		MaxWords:       DefaultMaxWords,
	}
}

// AnonymousProfile returns the profile used when no identity is known.
func AnonymousProfile() *NamingProfile {
	return &NamingProfile{Preferences: DefaultPreferences()}
}

// IsAnonymous reports whether the profile has no identity attached.
func (p *NamingProfile) IsAnonymous() bool {
	return p == nil || p.IdentityID == ""
}
