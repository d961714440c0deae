package models

import (
	"net/url"
	"time"
)

// Tier identifies the generation stage that produced a slug.
type Tier string

const (
	TierAI       Tier = "ai"
	TierScraping Tier = "scraping"
	TierURL      Tier = "url"
	TierTemplate Tier = "template"
	TierFallback Tier = "fallback"
)

// ConfidenceLabel is the coarse quality label returned to callers.
type ConfidenceLabel string

const (
	ConfidenceHigh   ConfidenceLabel = "high"
	ConfidenceMedium ConfidenceLabel = "medium"
	ConfidenceLow    ConfidenceLabel = "low"
)

// Styles used by multi-candidate generation.
const (
	StyleBrand   = "brand-focused"
	StyleProduct = "product-focused"
	StyleFeature = "feature-focused"
	StyleBenefit = "benefit-focused"
	StyleAction  = "action-focused"
)

// Candidate is a proposed slug. Quality counts the content tokens behind it.
type Candidate struct {
	Slug       string          `json:"slug"`
	Tier       Tier            `json:"tier"`
	Confidence ConfidenceLabel `json:"confidence"`
	Style      string          `json:"style,omitempty"`
	Quality    int             `json:"-"`
	Metadata   PageMetadata    `json:"metadata"`
}

// SlugResult is what generateSlug hands back, and what the cache stores.
type SlugResult struct {
	Slug        string          `json:"slug" yaml:"slug"`
	Tier        Tier            `json:"tier" yaml:"tier"`
	Confidence  ConfidenceLabel `json:"confidence" yaml:"confidence"`
	Metadata    PageMetadata    `json:"metadata" yaml:"metadata"`
	GeneratedAt time.Time       `json:"generated_at" yaml:"generated_at"`
}

// CacheEntry is a cached result with its write time.
type CacheEntry struct {
	Key       string     `json:"key"`
	Result    SlugResult `json:"result"`
	Timestamp time.Time  `json:"timestamp"`
}

// GenerateOptions are per-request knobs.
type GenerateOptions struct {
	IdentityID       string `json:"identity_id,omitempty"`
	SubscriptionTier string `json:"subscription_tier,omitempty"`
	BrandGuidelines  bool   `json:"brand_guidelines,omitempty"`
	DisableAI        bool   `json:"disable_ai,omitempty"`
	DisableFetch     bool   `json:"disable_fetch,omitempty"`
	RecordHistory    bool   `json:"record_history,omitempty"`
}

// TemporalContext carries seasonal hints for the request date.
type TemporalContext struct {
	Season  string `json:"season"`
	Holiday string `json:"holiday,omitempty"`
	Month   int    `json:"month"`
	Year    int    `json:"year"`
}

// CampaignContext holds UTM-style tracking parameters.
type CampaignContext struct {
	Source   string `json:"source,omitempty"`
	Medium   string `json:"medium,omitempty"`
	Name     string `json:"name,omitempty"`
	Content  string `json:"content,omitempty"`
	Term     string `json:"term,omitempty"`
	Platform string `json:"platform,omitempty"`
}

// Present reports whether any campaign parameter was supplied.
func (c CampaignContext) Present() bool {
	return c.Source != "" || c.Medium != "" || c.Name != "" || c.Platform != ""
}

// Intent labels.
const (
	IntentMarketing = "marketing"
	IntentSales     = "sales"
	IntentSharing   = "sharing"
	IntentReference = "reference"
	IntentEvent     = "event"
	IntentGeneral   = "general"
)

// GenerationContext is everything the tiers may look at. It is assembled
// fresh per request and not modified afterwards.
type GenerationContext struct {
	RawURL   string
	URL      *url.URL
	Merchant string

	Metadata PageMetadata
	Profile  *NamingProfile
	Temporal TemporalContext
	Campaign CampaignContext
	Intent   string
	Keywords []string
	Signals  []Signal
	Language string

	Options GenerateOptions
}

// HasHighPrioritySignal reports whether a high-priority cue was detected.
func (gc *GenerationContext) HasHighPrioritySignal() bool {
	for _, s := range gc.Signals {
		if s.Priority == PriorityHigh {
			return true
		}
	}
	return false
}

// Preferences returns the profile preferences, or anonymous defaults.
func (gc *GenerationContext) Preferences() Preferences {
	if gc.Profile == nil {
		return DefaultPreferences()
	}
	return gc.Profile.Preferences
}
