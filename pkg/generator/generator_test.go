package generator

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/dtnitsch/linkslug/models"
	"github.com/dtnitsch/linkslug/pkg/lexicon"
	"github.com/dtnitsch/linkslug/pkg/llm"
	"github.com/dtnitsch/linkslug/pkg/slug"
)

var testNow = time.Date(2025, time.October, 16, 12, 0, 0, 0, time.UTC)

type fakeAI struct {
	mu       sync.Mutex
	response string
	err      error
	calls    int
	prompts  []string
	quality  llm.Quality
}

func (f *fakeAI) GenerateText(ctx context.Context, prompt string, maxTokens int, temperature float64, quality llm.Quality) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.prompts = append(f.prompts, prompt)
	f.quality = quality
	return f.response, f.err
}

type countingTier struct {
	name      models.Tier
	transient bool
	slug      string
	quality   int
	calls     int
}

func (c *countingTier) Name() models.Tier { return c.name }
func (c *countingTier) Transient() bool   { return c.transient }
func (c *countingTier) Attempt(ctx context.Context, gc *models.GenerationContext) *models.Candidate {
	c.calls++
	if c.slug == "" {
		return nil
	}
	return &models.Candidate{Slug: c.slug, Tier: c.name, Quality: c.quality}
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestGenerator(ai llm.TextGenerator) *Generator {
	lex := lexicon.Default()
	cfg := Config{
		Lexicon:   lex,
		Validator: slug.NewValidator(lex, slug.DefaultMaxLength),
		Now:       func() time.Time { return testNow },
		Logger:    discardLogger(),
	}
	if ai != nil {
		cfg.AI = ai
	}
	return New(cfg)
}

// newContext builds a GenerationContext the way the assembler would for a
// request with no fetched metadata.
func newContext(t *testing.T, raw string) *models.GenerationContext {
	t.Helper()
	u, err := url.Parse(raw)
	if err != nil {
		t.Fatalf("url.Parse(%q): %v", raw, err)
	}
	return &models.GenerationContext{
		RawURL:   raw,
		URL:      u,
		Merchant: lexicon.Default().Merchant(u.Hostname()),
		Metadata: models.PageMetadata{Domain: strings.TrimPrefix(u.Hostname(), "www."), Pathname: u.Path},
		Profile:  models.AnonymousProfile(),
		Temporal: models.TemporalContext{Season: "fall", Month: 10, Year: 2025},
		Intent:   models.IntentSales,
	}
}

const targetURL = "https://www.target.com/p/centrum-silver-men-50-multivitamin-dietary-supplement-tablets"

func TestTierPrecedence(t *testing.T) {
	ai := &fakeAI{response: "Slug: `Target.Vitamins-For-Men`"}
	g := newTestGenerator(ai)

	gc := newContext(t, targetURL)
	gc.Metadata.WasFetched = true
	gc.Metadata.Title = "Centrum Silver Men 50+ Multivitamin"

	c := g.Generate(context.Background(), gc)
	if c.Tier != models.TierAI {
		t.Fatalf("Tier = %q, want ai (slug %q)", c.Tier, c.Slug)
	}
	if c.Slug != "Target.Vitamins-For-Men" {
		t.Errorf("Slug = %q, want %q", c.Slug, "Target.Vitamins-For-Men")
	}
	if c.Confidence != models.ConfidenceHigh {
		t.Errorf("Confidence = %q, want high", c.Confidence)
	}
	if ai.calls != 1 {
		t.Errorf("ai calls = %d, want 1", ai.calls)
	}
	if !strings.Contains(ai.prompts[0], "Title: Centrum Silver Men 50+ Multivitamin") {
		t.Errorf("prompt missing title:\n%s", ai.prompts[0])
	}
}

func TestFullFallback(t *testing.T) {
	ai := &fakeAI{err: errors.New("upstream timeout")}
	g := newTestGenerator(ai)
	gc := newContext(t, "https://www.example-shop.com/")

	c := g.Generate(context.Background(), gc)
	if c.Tier != models.TierFallback {
		t.Fatalf("Tier = %q, want fallback (slug %q)", c.Tier, c.Slug)
	}
	if c.Slug != "Exampleshop.Oct16" {
		t.Errorf("Slug = %q, want %q", c.Slug, "Exampleshop.Oct16")
	}
	if c.Confidence != models.ConfidenceLow {
		t.Errorf("Confidence = %q, want low", c.Confidence)
	}
	if ai.calls != DefaultMaxAttempts {
		t.Errorf("ai calls = %d, want %d (one per pass)", ai.calls, DefaultMaxAttempts)
	}
	if !g.Validator().Validate(c.Slug) {
		t.Errorf("last resort slug %q does not validate", c.Slug)
	}
}

func TestTargetScenario(t *testing.T) {
	g := newTestGenerator(&fakeAI{response: "Should.Not-Be-Used"})
	gc := newContext(t, targetURL)
	gc.Options.DisableAI = true

	c := g.Generate(context.Background(), gc)
	if !strings.HasPrefix(c.Slug, "Target.") {
		t.Fatalf("Slug = %q, want Target. prefix", c.Slug)
	}
	if len(c.Slug) > 60 {
		t.Errorf("len(Slug) = %d, want <= 60", len(c.Slug))
	}
	found := false
	for _, tok := range []string{"Centrum", "Silver", "Multivitamin", "Supplement", "Tablets"} {
		if strings.Contains(c.Slug, tok) {
			found = true
		}
	}
	if !found {
		t.Errorf("Slug = %q, want a product token", c.Slug)
	}
	if c.Slug != "Target.Centrum-Silver-Men-Multivitamin-Dietary" {
		t.Errorf("Slug = %q", c.Slug)
	}
	if c.Tier != models.TierURL {
		t.Errorf("Tier = %q, want url", c.Tier)
	}
}

func TestRetryOnlyTransientTiers(t *testing.T) {
	lex := lexicon.Default()
	transient := &countingTier{name: models.TierAI, transient: true}
	deterministic := &countingTier{name: models.TierURL}
	g := NewWithTiers(Config{Lexicon: lex, Now: func() time.Time { return testNow }, Logger: discardLogger()}, transient, deterministic)

	c := g.Generate(context.Background(), newContext(t, "https://www.example-shop.com/"))

	if transient.calls != DefaultMaxAttempts {
		t.Errorf("transient calls = %d, want %d", transient.calls, DefaultMaxAttempts)
	}
	if deterministic.calls != 1 {
		t.Errorf("deterministic calls = %d, want 1", deterministic.calls)
	}
	if c.Tier != models.TierFallback {
		t.Errorf("Tier = %q, want fallback", c.Tier)
	}
}

func TestNoRetryWithoutTransientTiers(t *testing.T) {
	lex := lexicon.Default()
	deterministic := &countingTier{name: models.TierURL}
	g := NewWithTiers(Config{Lexicon: lex, MaxAttempts: 5, Logger: discardLogger()}, deterministic)

	g.Generate(context.Background(), newContext(t, "https://www.example-shop.com/"))
	if deterministic.calls != 1 {
		t.Errorf("deterministic calls = %d, want 1", deterministic.calls)
	}
}

func TestProvisionalCandidate(t *testing.T) {
	lex := lexicon.Default()

	t.Run("later tier with more content wins", func(t *testing.T) {
		weak := &countingTier{name: models.TierScraping, slug: "Target.Vitamins", quality: 1}
		strong := &countingTier{name: models.TierURL, slug: "Target.Centrum-Silver", quality: 2}
		g := NewWithTiers(Config{Lexicon: lex, Logger: discardLogger()}, weak, strong)

		c := g.Generate(context.Background(), newContext(t, targetURL))
		if c.Slug != "Target.Centrum-Silver" {
			t.Errorf("Slug = %q, want the stronger candidate", c.Slug)
		}
	})

	t.Run("provisional kept when nothing better", func(t *testing.T) {
		weak := &countingTier{name: models.TierScraping, slug: "Target.Vitamins", quality: 1}
		empty := &countingTier{name: models.TierURL}
		g := NewWithTiers(Config{Lexicon: lex, Logger: discardLogger()}, weak, empty)

		c := g.Generate(context.Background(), newContext(t, targetURL))
		if c.Slug != "Target.Vitamins" || c.Tier != models.TierScraping {
			t.Errorf("got %q from %q, want provisional scraping candidate", c.Slug, c.Tier)
		}
		if empty.calls != 1 {
			t.Errorf("later tier calls = %d, want 1", empty.calls)
		}
	})
}

func TestInvalidCandidatesAdvance(t *testing.T) {
	lex := lexicon.Default()
	bad := &countingTier{name: models.TierAI, transient: true, slug: "page.index"}
	good := &countingTier{name: models.TierURL, slug: "Target.Centrum-Silver", quality: 2}
	g := NewWithTiers(Config{Lexicon: lex, Logger: discardLogger()}, bad, good)

	c := g.Generate(context.Background(), newContext(t, targetURL))
	if c.Slug != "Target.Centrum-Silver" {
		t.Errorf("Slug = %q, want the first valid candidate", c.Slug)
	}
}

func TestAIAvoidWords(t *testing.T) {
	ai := &fakeAI{response: "Target.Cheap-Vitamins-Deal"}
	g := newTestGenerator(ai)
	gc := newContext(t, targetURL)
	prefs := models.DefaultPreferences()
	prefs.AvoidWords = []string{"cheap"}
	gc.Profile = &models.NamingProfile{IdentityID: "acme", Preferences: prefs}

	c := g.Generate(context.Background(), gc)
	if c.Tier == models.TierAI {
		t.Errorf("AI candidate %q containing an avoid word was accepted", c.Slug)
	}
	if !strings.Contains(ai.prompts[0], "Never use: cheap") {
		t.Errorf("prompt missing avoid words:\n%s", ai.prompts[0])
	}
}

func TestAIQualityLevel(t *testing.T) {
	ai := &fakeAI{response: "Target.Flash-Sale-Vitamins"}
	g := newTestGenerator(ai)
	gc := newContext(t, targetURL)
	gc.Options.SubscriptionTier = "pro"
	gc.Signals = []models.Signal{{Type: models.SignalDiscount, MatchedText: "40% off", Priority: models.PriorityHigh}}

	g.Generate(context.Background(), gc)
	if ai.quality != llm.QualityPremium {
		t.Errorf("quality = %v, want premium", ai.quality)
	}
}

func TestCleanResponse(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"```\nTarget.Centrum-Silver\n```", "Target.Centrum-Silver"},
		{"Slug: **Target.Centrum-Silver**", "Target.Centrum-Silver"},
		{"\"Target.Centrum-Silver\"\nThis slug highlights the product.", "Target.Centrum-Silver"},
		{"`Nike.Air-Max`", "Nike.Air-Max"},
		{"- Nike.Air-Max", "Nike.Air-Max"},
		{"\n\n  ", ""},
	}
	for _, tt := range tests {
		if got := CleanResponse(tt.in); got != tt.want {
			t.Errorf("CleanResponse(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestTemplateTier(t *testing.T) {
	tier := NewTemplateTier(lexicon.Default())

	tests := []struct {
		url  string
		want string
	}{
		{"https://github.com/dtnitsch/llm-web-parser", "GitHub.Dtnitsch-Llmwebparser"},
		{"https://github.com/golang/go/issues/4242", "GitHub.Go-Issue-4242"},
		{"https://www.youtube.com/@mkbhd", "YouTube.Mkbhd-Channel"},
		{"https://www.reddit.com/r/golang/comments/abc123/go_125_released/", "Reddit.Golang-Released"},
		{"https://en.wikipedia.org/wiki/Go_(programming_language)", "Wikipedia.Go-Programming-Language"},
		{"https://twitter.com/golang/status/123", "X.Golang-Post"},
		{"https://www.amazon.com/Instant-Pot-Duo-Pressure-Cooker/dp/B00FLYWNYQ", "Amazon.Instant-Pot-Duo"},
		{"https://stackoverflow.com/questions/123/how-to-parse-json-in-go", "StackOverflow.Parse-Json"},
	}
	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			c := tier.Attempt(context.Background(), newContext(t, tt.url))
			if c == nil {
				t.Fatalf("Attempt(%q) = nil", tt.url)
			}
			if c.Slug != tt.want {
				t.Errorf("Attempt(%q) = %q, want %q", tt.url, c.Slug, tt.want)
			}
		})
	}

	if c := tier.Attempt(context.Background(), newContext(t, "https://example.com/x")); c != nil {
		t.Errorf("unknown host produced %q", c.Slug)
	}
}

func TestURLTierSearchFallback(t *testing.T) {
	tier := NewURLTier(lexicon.Default())
	gc := newContext(t, "https://shop.example.com/search?q=trail+running+shoes")
	c := tier.Attempt(context.Background(), gc)
	if c == nil {
		t.Fatal("Attempt() = nil, want search-query tokens")
	}
	if c.Slug != "Example.Trail-Running-Shoes" {
		t.Errorf("Slug = %q, want %q", c.Slug, "Example.Trail-Running-Shoes")
	}
}

func TestScrapingTier(t *testing.T) {
	tier := NewScrapingTier(lexicon.Default())
	gc := newContext(t, "https://www.target.com/p/-/A-1")
	gc.Metadata.WasFetched = true
	gc.Metadata.Title = "Centrum Silver Men's 50+ Multivitamin, 100ct : Target"
	gc.Metadata.Brand = "Centrum"

	c := tier.Attempt(context.Background(), gc)
	if c == nil {
		t.Fatal("Attempt() = nil")
	}
	if c.Slug != "Target.Centrum-Silver-Mens-Multivitamin-100ct" {
		t.Errorf("Slug = %q", c.Slug)
	}

	gc.Metadata.WasFetched = false
	if c := tier.Attempt(context.Background(), gc); c != nil {
		t.Errorf("Attempt() without fetch = %q, want nil", c.Slug)
	}
}

func TestGenerateMultiple(t *testing.T) {
	g := newTestGenerator(nil)
	gc := newContext(t, targetURL)

	got := g.GenerateMultiple(context.Background(), gc, 7)
	if len(got) != 7 {
		t.Fatalf("len = %d, want 7", len(got))
	}
	seen := make(map[string]bool)
	for i, c := range got {
		key := strings.ToLower(c.Slug)
		if seen[key] {
			t.Errorf("duplicate candidate %q", c.Slug)
		}
		seen[key] = true
		if !g.Validator().Validate(c.Slug) {
			t.Errorf("candidate %q does not validate", c.Slug)
		}
		if c.Style == "" {
			t.Errorf("candidate %d has no style", i)
		}
	}
	if got[0].Style != models.StyleBrand || got[0].Slug != "Target.Centrum-Silver" {
		t.Errorf("first candidate = %+v", got[0])
	}

	if n := len(g.GenerateMultiple(context.Background(), gc, 0)); n != 1 {
		t.Errorf("count 0 returned %d, want 1", n)
	}
	if n := len(g.GenerateMultiple(context.Background(), gc, 50)); n != MaxCandidates {
		t.Errorf("count 50 returned %d, want %d", n, MaxCandidates)
	}
}

func TestGenerateMultipleWithAI(t *testing.T) {
	ai := &fakeAI{response: "Target.Centrum-Silver-Men"}
	g := newTestGenerator(ai)
	gc := newContext(t, targetURL)

	got := g.GenerateMultiple(context.Background(), gc, 3)
	if len(got) != 3 {
		t.Fatalf("len = %d, want 3", len(got))
	}
	if got[0].Tier != models.TierAI || got[0].Style != models.StyleBrand {
		t.Errorf("first candidate = %+v, want ai brand-focused", got[0])
	}
	if got[1].Tier == models.TierAI {
		t.Errorf("duplicate AI reply accepted twice: %+v", got[1])
	}
}

func TestLooksLikeID(t *testing.T) {
	tests := []struct {
		tok  string
		want bool
	}{
		{"dQw4w9WgXcQ", true},
		{"B00FLYWNYQ", true},
		{"3f2504e0-4f89-11d3-9a0c-0305e82c3301", true},
		{"a1b2c3d4e5", true},
		{"iPhone15Pro", false},
		{"Air-Max-90s", false},
		{"multivitamin", false},
		{"100ct", false},
	}
	for _, tt := range tests {
		if got := looksLikeID(tt.tok); got != tt.want {
			t.Errorf("looksLikeID(%q) = %v, want %v", tt.tok, got, tt.want)
		}
	}
}

func TestStructuralPaths(t *testing.T) {
	g := newTestGenerator(nil)

	tests := []struct {
		url  string
		want string
	}{
		{"https://youtu.be/dQw4w9WgXcQ", "YouTube.Video"},
		{"https://www.ebay.com/itm/123456789", "eBay.Item"},
		{"https://en.wikipedia.org/wiki/%C3%89", "Wikipedia.Article"},
		{"https://en.wikipedia.org/wiki/Go_(programming_language)", "Wikipedia.Programming-Language"},
	}
	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			c := g.Generate(context.Background(), newContext(t, tt.url))
			if c.Slug != tt.want {
				t.Errorf("Generate(%q) = %q (%s), want %q", tt.url, c.Slug, c.Tier, tt.want)
			}
		})
	}
}

func TestLastResortFloor(t *testing.T) {
	lex := lexicon.Default()
	lr := NewLastResort(lex, slug.NewValidator(lex, slug.DefaultMaxLength), func() time.Time { return testNow })

	gc := newContext(t, "https://www.target.com/p/12345")
	if c := lr.Build(gc); c.Slug != "Target.Oct16" {
		t.Errorf("Build() = %q, want %q", c.Slug, "Target.Oct16")
	}

	gc = newContext(t, "https://www.target.com/weekly-ad")
	if c := lr.Build(gc); c.Slug != "Target.Weekly" {
		t.Errorf("Build() = %q, want %q", c.Slug, "Target.Weekly")
	}

	gc = newContext(t, "https://shop.example.com/itm/987654")
	if c := lr.Build(gc); c.Slug != "Example.Oct16" {
		t.Errorf("Build() = %q, want %q", c.Slug, "Example.Oct16")
	}

	gc.Merchant = "--"
	if c := lr.Build(gc); c.Slug != "Link.Oct16" {
		t.Errorf("Build() = %q, want %q", c.Slug, "Link.Oct16")
	}
}
