// Package assembler builds the per-request GenerationContext.
package assembler

import (
	"context"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/dtnitsch/linkslug/models"
	"github.com/dtnitsch/linkslug/pkg/analytics"
	"github.com/dtnitsch/linkslug/pkg/detector"
	"github.com/dtnitsch/linkslug/pkg/fetcher"
	"github.com/dtnitsch/linkslug/pkg/lexicon"
)

const (
	keywordCount       = 5
	minLanguageTextLen = 20
	defaultLanguage    = "en"
)

// MetadataSource fetches page metadata. It must not fail; see
// fetcher.MetadataFetcher.
type MetadataSource interface {
	Fetch(ctx context.Context, u *url.URL) models.PageMetadata
}

// ProfileGetter loads a naming profile. A nil profile with a nil error
// means the identity has none yet.
type ProfileGetter interface {
	GetProfile(ctx context.Context, identityID string) (*models.NamingProfile, error)
}

// Deps are the collaborators of an Assembler. Metadata, Profiles and
// Language may be nil.
type Deps struct {
	Lexicon  *lexicon.Lexicon
	Metadata MetadataSource
	Profiles ProfileGetter
	Language LanguageDetector
	Now      func() time.Time
	Logger   *slog.Logger
}

type Assembler struct {
	lex      *lexicon.Lexicon
	metadata MetadataSource
	profiles ProfileGetter
	language LanguageDetector
	words    *analytics.Analytics
	now      func() time.Time
	logger   *slog.Logger
}

func New(d Deps) *Assembler {
	if d.Now == nil {
		d.Now = time.Now
	}
	if d.Logger == nil {
		d.Logger = slog.Default()
	}
	return &Assembler{
		lex:      d.Lexicon,
		metadata: d.Metadata,
		profiles: d.Profiles,
		language: d.Language,
		words:    analytics.New(d.Lexicon),
		now:      d.Now,
		logger:   d.Logger,
	}
}

// Assemble gathers everything the generation tiers need. It never fails;
// every missing piece degrades to a default.
func (a *Assembler) Assemble(ctx context.Context, rawURL string, u *url.URL, opts models.GenerateOptions) *models.GenerationContext {
	var meta models.PageMetadata
	if opts.DisableFetch || a.metadata == nil {
		meta = fetcher.URLOnly(u)
	} else {
		meta = a.metadata.Fetch(ctx, u)
	}

	campaign := a.Campaign(u.Query())
	text := strings.TrimSpace(meta.Title + " " + meta.Description)

	return &models.GenerationContext{
		RawURL:   rawURL,
		URL:      u,
		Merchant: a.lex.Merchant(u.Hostname()),
		Metadata: meta,
		Profile:  a.profile(ctx, opts.IdentityID),
		Temporal: a.Temporal(a.now()),
		Campaign: campaign,
		Intent:   a.Intent(u, meta, campaign),
		Keywords: a.words.TopNWords(text, keywordCount),
		Signals:  detector.Detect(meta),
		Language: a.detectLanguage(text),
		Options:  opts,
	}
}

func (a *Assembler) profile(ctx context.Context, identityID string) *models.NamingProfile {
	if identityID == "" {
		return models.AnonymousProfile()
	}
	fresh := &models.NamingProfile{IdentityID: identityID, Preferences: models.DefaultPreferences()}
	if a.profiles == nil {
		return fresh
	}

	p, err := a.profiles.GetProfile(ctx, identityID)
	if err != nil {
		a.logger.Warn("profile lookup failed, using defaults", "identity", identityID, "error", err)
		return fresh
	}
	if p == nil {
		return fresh
	}
	return p
}

func (a *Assembler) detectLanguage(text string) string {
	if a.language == nil || len([]rune(text)) < minLanguageTextLen {
		return defaultLanguage
	}
	if code, ok := a.language.Detect(text); ok {
		return code
	}
	return defaultLanguage
}

// Intent classifies what the link is for. Campaign parameters win, then
// path markers, then keywords in the page text.
func (a *Assembler) Intent(u *url.URL, meta models.PageMetadata, campaign models.CampaignContext) string {
	if campaign.Present() {
		return models.IntentMarketing
	}

	segments := strings.FieldsFunc(strings.ToLower(u.Path), func(r rune) bool { return r == '/' })
	for _, intent := range []string{models.IntentSales, models.IntentSharing, models.IntentReference} {
		for _, seg := range segments {
			if a.lex.IsPathMarker(intent, seg) {
				return intent
			}
		}
	}

	if intent, ok := a.lex.ScanIntent(meta.Title + " " + meta.Description); ok {
		return intent
	}
	return models.IntentGeneral
}
