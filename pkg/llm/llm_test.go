package llm

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/anthropics/anthropic-sdk-go/option"
)

func TestQualityFor(t *testing.T) {
	tests := []struct {
		tier       string
		high       bool
		guidelines bool
		want       Quality
	}{
		{"free", false, false, QualityBasic},
		{"", false, false, QualityBasic},
		{"pro", false, false, QualityStandard},
		{"business", false, false, QualityPremium},
		{"enterprise", false, false, QualityUltra},
		{"free", true, false, QualityStandard},
		{"free", true, true, QualityPremium},
		{"business", true, true, QualityUltra},
		{"enterprise", true, true, QualityUltra},
	}
	for _, tt := range tests {
		if got := QualityFor(tt.tier, tt.high, tt.guidelines); got != tt.want {
			t.Errorf("QualityFor(%q, %v, %v) = %v, want %v", tt.tier, tt.high, tt.guidelines, got, tt.want)
		}
	}
}

func TestTemperature(t *testing.T) {
	want := map[Quality]float64{QualityBasic: 0.9, QualityStandard: 0.8, QualityPremium: 0.7, QualityUltra: 0.3}
	for q, temp := range want {
		if got := q.Temperature(); got != temp {
			t.Errorf("%v.Temperature() = %v, want %v", q, got, temp)
		}
	}
}

func TestAnthropicGenerateText(t *testing.T) {
	var got struct {
		Model       string  `json:"model"`
		MaxTokens   int     `json:"max_tokens"`
		Temperature float64 `json:"temperature"`
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/messages" {
			http.NotFound(w, r)
			return
		}
		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &got)
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{
			"id": "msg_01",
			"type": "message",
			"role": "assistant",
			"model": "claude-sonnet-4-5",
			"content": [{"type": "text", "text": "Target.Centrum-Silver-Men"}],
			"stop_reason": "end_turn",
			"stop_sequence": null,
			"usage": {"input_tokens": 42, "output_tokens": 7}
		}`)
	}))
	defer srv.Close()

	g := NewAnthropic("test-key", map[string]string{"premium": "claude-sonnet-4-5"}, 5*time.Second,
		option.WithBaseURL(srv.URL), option.WithMaxRetries(0))

	text, err := g.GenerateText(context.Background(), "make a slug", 40, 0.7, QualityPremium)
	if err != nil {
		t.Fatalf("GenerateText() error = %v", err)
	}
	if text != "Target.Centrum-Silver-Men" {
		t.Errorf("GenerateText() = %q", text)
	}
	if got.Model != "claude-sonnet-4-5" || got.MaxTokens != 40 || got.Temperature != 0.7 {
		t.Errorf("request = %+v", got)
	}
}

func TestAnthropicServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		io.WriteString(w, `{"type":"error","error":{"type":"api_error","message":"boom"}}`)
	}))
	defer srv.Close()

	g := NewAnthropic("test-key", nil, 5*time.Second, option.WithBaseURL(srv.URL), option.WithMaxRetries(0))
	if _, err := g.GenerateText(context.Background(), "p", 40, 0.9, QualityBasic); err == nil {
		t.Fatal("GenerateText() error = nil, want error")
	}
}

type flakyGenerator struct {
	err   error
	calls int
}

func (f *flakyGenerator) GenerateText(ctx context.Context, prompt string, maxTokens int, temperature float64, quality Quality) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	return "ok", nil
}

func TestBreaker(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	next := &flakyGenerator{err: errors.New("timeout")}
	b := NewBreaker(next, 2, time.Minute)
	b.now = func() time.Time { return now }

	for i := 0; i < 2; i++ {
		if _, err := b.GenerateText(ctx, "p", 10, 0.9, QualityBasic); err == nil {
			t.Fatal("GenerateText() error = nil, want failure")
		}
	}
	if !b.Open() {
		t.Fatal("Open() = false after threshold failures")
	}
	if _, err := b.GenerateText(ctx, "p", 10, 0.9, QualityBasic); !errors.Is(err, ErrCircuitOpen) {
		t.Errorf("GenerateText() error = %v, want ErrCircuitOpen", err)
	}
	if next.calls != 2 {
		t.Errorf("calls = %d, want 2 while open", next.calls)
	}

	now = now.Add(2 * time.Minute)
	next.err = nil
	if text, err := b.GenerateText(ctx, "p", 10, 0.9, QualityBasic); err != nil || text != "ok" {
		t.Fatalf("half-open call = %q, %v", text, err)
	}
	if b.Open() {
		t.Error("Open() = true after a successful half-open call")
	}
}

type gatedGenerator struct {
	started chan struct{}
	release chan struct{}
}

func (g *gatedGenerator) GenerateText(ctx context.Context, prompt string, maxTokens int, temperature float64, quality Quality) (string, error) {
	g.started <- struct{}{}
	<-g.release
	return "ok", nil
}

func TestBreakerSingleTrialCall(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	next := &gatedGenerator{started: make(chan struct{}, 1), release: make(chan struct{})}
	b := NewBreaker(next, 1, time.Minute)
	b.now = func() time.Time { return now }
	b.open = true
	b.openedAt = now.Add(-2 * time.Minute)

	done := make(chan error, 1)
	go func() {
		_, err := b.GenerateText(ctx, "p", 10, 0.9, QualityBasic)
		done <- err
	}()
	<-next.started

	if _, err := b.GenerateText(ctx, "p", 10, 0.9, QualityBasic); !errors.Is(err, ErrCircuitOpen) {
		t.Errorf("second call during trial error = %v, want ErrCircuitOpen", err)
	}
	if !b.Open() {
		t.Error("Open() = false while the trial call is in flight")
	}

	close(next.release)
	if err := <-done; err != nil {
		t.Fatalf("trial call error = %v", err)
	}
	if b.Open() {
		t.Error("Open() = true after a successful trial call")
	}
}
