package assembler

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/url"
	"testing"
	"time"

	"github.com/dtnitsch/linkslug/models"
	"github.com/dtnitsch/linkslug/pkg/lexicon"
	"github.com/google/go-cmp/cmp"
)

type stubMetadata struct {
	meta  models.PageMetadata
	calls int
}

func (s *stubMetadata) Fetch(ctx context.Context, u *url.URL) models.PageMetadata {
	s.calls++
	m := s.meta
	m.Domain = u.Hostname()
	return m
}

type stubProfiles struct {
	profile *models.NamingProfile
	err     error
}

func (s *stubProfiles) GetProfile(ctx context.Context, identityID string) (*models.NamingProfile, error) {
	return s.profile, s.err
}

type stubLanguage struct {
	code  string
	calls int
}

func (s *stubLanguage) Detect(text string) (string, bool) {
	s.calls++
	return s.code, s.code != ""
}

func mustURL(t *testing.T, raw string) *url.URL {
	t.Helper()
	u, err := url.Parse(raw)
	if err != nil {
		t.Fatalf("url.Parse(%q): %v", raw, err)
	}
	return u
}

func newTestAssembler(d Deps) *Assembler {
	d.Lexicon = lexicon.Default()
	d.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	if d.Now == nil {
		d.Now = func() time.Time { return time.Date(2025, time.October, 16, 12, 0, 0, 0, time.UTC) }
	}
	return New(d)
}

func TestTemporal(t *testing.T) {
	a := newTestAssembler(Deps{})

	tests := []struct {
		date time.Time
		want models.TemporalContext
	}{
		{time.Date(2025, 12, 24, 9, 0, 0, 0, time.UTC), models.TemporalContext{Season: "winter", Holiday: "Christmas", Month: 12, Year: 2025}},
		{time.Date(2025, 12, 30, 9, 0, 0, 0, time.UTC), models.TemporalContext{Season: "winter", Holiday: "NewYear", Month: 12, Year: 2025}},
		{time.Date(2026, 7, 2, 9, 0, 0, 0, time.UTC), models.TemporalContext{Season: "summer", Holiday: "July4th", Month: 7, Year: 2026}},
		{time.Date(2025, 10, 16, 9, 0, 0, 0, time.UTC), models.TemporalContext{Season: "fall", Month: 10, Year: 2025}},
		{time.Date(2025, 4, 10, 9, 0, 0, 0, time.UTC), models.TemporalContext{Season: "spring", Month: 4, Year: 2025}},
	}
	for _, tt := range tests {
		t.Run(tt.date.Format("2006-01-02"), func(t *testing.T) {
			if diff := cmp.Diff(tt.want, a.Temporal(tt.date)); diff != "" {
				t.Errorf("Temporal() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestCampaign(t *testing.T) {
	a := newTestAssembler(Deps{})

	tests := []struct {
		name  string
		query string
		want  models.CampaignContext
	}{
		{"utm", "utm_source=fb&utm_medium=social&utm_campaign=spring", models.CampaignContext{Source: "fb", Medium: "social", Name: "spring", Platform: "facebook"}},
		{"gclid", "gclid=abc123", models.CampaignContext{Source: "google", Platform: "google"}},
		{"fbclid keeps source", "utm_source=partner&fbclid=x", models.CampaignContext{Source: "partner", Platform: "facebook"}},
		{"none", "q=shoes", models.CampaignContext{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q, _ := url.ParseQuery(tt.query)
			if diff := cmp.Diff(tt.want, a.Campaign(q)); diff != "" {
				t.Errorf("Campaign() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestIntent(t *testing.T) {
	a := newTestAssembler(Deps{})

	tests := []struct {
		name  string
		url   string
		title string
		want  string
	}{
		{"campaign", "https://shop.example/x?utm_source=newsletter", "", models.IntentMarketing},
		{"product path", "https://www.target.com/p/centrum/-/A-1", "", models.IntentSales},
		{"video path", "https://www.youtube.com/watch?v=abc", "", models.IntentSharing},
		{"article path", "https://example.com/blog/2024/launch", "", models.IntentReference},
		{"keyword scan", "https://example.com/x", "Register for our webinar", models.IntentEvent},
		{"nothing", "https://example.com/x", "", models.IntentGeneral},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u := mustURL(t, tt.url)
			got := a.Intent(u, models.PageMetadata{Title: tt.title}, a.Campaign(u.Query()))
			if got != tt.want {
				t.Errorf("Intent() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestAssemble(t *testing.T) {
	ctx := context.Background()
	u := mustURL(t, "https://www.target.com/p/centrum-silver/-/A-1")

	t.Run("fetched metadata and stored profile", func(t *testing.T) {
		meta := &stubMetadata{meta: models.PageMetadata{
			Title:      "Centrum Silver Men 50+ Multivitamin 40% off",
			WasFetched: true,
		}}
		stored := &models.NamingProfile{IdentityID: "acme", Preferences: models.Preferences{Separator: "_", Learned: true}}
		lang := &stubLanguage{code: "en"}
		a := newTestAssembler(Deps{Metadata: meta, Profiles: &stubProfiles{profile: stored}, Language: lang})

		gc := a.Assemble(ctx, u.String(), u, models.GenerateOptions{IdentityID: "acme"})

		if meta.calls != 1 {
			t.Errorf("metadata calls = %d, want 1", meta.calls)
		}
		if gc.Merchant != "Target" {
			t.Errorf("Merchant = %q, want %q", gc.Merchant, "Target")
		}
		if gc.Profile != stored {
			t.Errorf("Profile = %+v, want stored profile", gc.Profile)
		}
		if gc.Intent != models.IntentSales {
			t.Errorf("Intent = %q, want %q", gc.Intent, models.IntentSales)
		}
		if !gc.HasHighPrioritySignal() {
			t.Errorf("Signals = %+v, want a high priority discount", gc.Signals)
		}
		if len(gc.Keywords) == 0 || gc.Keywords[0] != "centrum" {
			t.Errorf("Keywords = %v, want centrum first", gc.Keywords)
		}
		if gc.Language != "en" || lang.calls != 1 {
			t.Errorf("Language = %q after %d calls", gc.Language, lang.calls)
		}
		if gc.Temporal.Month != 10 || gc.Temporal.Season != "fall" {
			t.Errorf("Temporal = %+v", gc.Temporal)
		}
	})

	t.Run("fetch disabled and profile store failing", func(t *testing.T) {
		meta := &stubMetadata{}
		lang := &stubLanguage{code: "de"}
		a := newTestAssembler(Deps{Metadata: meta, Profiles: &stubProfiles{err: errors.New("db locked")}, Language: lang})

		gc := a.Assemble(ctx, u.String(), u, models.GenerateOptions{IdentityID: "acme", DisableFetch: true})

		if meta.calls != 0 {
			t.Errorf("metadata calls = %d, want 0", meta.calls)
		}
		if gc.Metadata.WasFetched || gc.Metadata.Domain != "target.com" {
			t.Errorf("Metadata = %+v, want url-only", gc.Metadata)
		}
		if gc.Profile.IdentityID != "acme" {
			t.Errorf("Profile.IdentityID = %q, want acme", gc.Profile.IdentityID)
		}
		if diff := cmp.Diff(models.DefaultPreferences(), gc.Profile.Preferences); diff != "" {
			t.Errorf("Preferences mismatch (-want +got):\n%s", diff)
		}
		if gc.Language != "en" || lang.calls != 0 {
			t.Errorf("short text: Language = %q after %d calls, want en without detection", gc.Language, lang.calls)
		}
	})

	t.Run("anonymous", func(t *testing.T) {
		a := newTestAssembler(Deps{})
		gc := a.Assemble(ctx, u.String(), u, models.GenerateOptions{})
		if !gc.Profile.IsAnonymous() {
			t.Errorf("Profile = %+v, want anonymous", gc.Profile)
		}
	})
}

func TestLinguaDetector(t *testing.T) {
	d := NewLinguaDetector()

	tests := []struct {
		text string
		want string
	}{
		{"The quick brown fox jumps over the lazy dog while the children are playing outside", "en"},
		{"El rápido zorro marrón salta sobre el perro perezoso mientras los niños juegan afuera", "es"},
	}
	for _, tt := range tests {
		got, ok := d.Detect(tt.text)
		if !ok || got != tt.want {
			t.Errorf("Detect(%q) = %q, %v; want %q", tt.text, got, ok, tt.want)
		}
	}
}
