package server_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/dtnitsch/linkslug/internal/server"
	"github.com/dtnitsch/linkslug/models"
	"github.com/dtnitsch/linkslug/pkg/pattern"
	"github.com/dtnitsch/linkslug/pkg/shortener"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockService struct {
	mock.Mock
}

func (m *MockService) GenerateSlug(ctx context.Context, rawURL string, opts models.GenerateOptions) (models.SlugResult, error) {
	args := m.Called(ctx, rawURL, opts)
	return args.Get(0).(models.SlugResult), args.Error(1)
}

func (m *MockService) GenerateMultipleSlugs(ctx context.Context, rawURL string, opts models.GenerateOptions, count int) ([]models.Candidate, error) {
	args := m.Called(ctx, rawURL, opts, count)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Candidate), args.Error(1)
}

func (m *MockService) AnalyzeIdentityPattern(ctx context.Context, identityID string, force bool) (*pattern.Result, error) {
	args := m.Called(ctx, identityID, force)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*pattern.Result), args.Error(1)
}

func (m *MockService) CacheSize(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

func (m *MockService) RecentEntries(ctx context.Context, n int) ([]models.CacheEntry, error) {
	args := m.Called(ctx, n)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.CacheEntry), args.Error(1)
}

func (m *MockService) ClearCache(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func setupTestServer(t *testing.T, svc server.Service) http.Handler {
	t.Helper()
	gin.SetMode(gin.TestMode)
	metrics := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("linkslug_up 1\n"))
	})
	return server.New(svc, metrics, discardLogger()).Handler()
}

func doJSON(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequestWithContext(t.Context(), method, path, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestGenerate_Success(t *testing.T) {
	svc := &MockService{}
	want := models.SlugResult{Slug: "Target.Vitamins-For-Men", Tier: models.TierAI, Confidence: models.ConfidenceHigh}
	svc.On("GenerateSlug", mock.Anything, "https://www.target.com/p/x",
		models.GenerateOptions{IdentityID: "acme", RecordHistory: true}).Return(want, nil)
	h := setupTestServer(t, svc)

	w := doJSON(t, h, http.MethodPost, "/slugs", map[string]any{
		"url":            "https://www.target.com/p/x",
		"identity_id":    "acme",
		"record_history": true,
	})

	require.Equal(t, http.StatusOK, w.Code)
	var got models.SlugResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, want.Slug, got.Slug)
	assert.Equal(t, models.TierAI, got.Tier)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
	svc.AssertExpectations(t)
}

func TestGenerate_Errors(t *testing.T) {
	svc := &MockService{}
	svc.On("GenerateSlug", mock.Anything, "not a url", mock.Anything).
		Return(models.SlugResult{}, fmt.Errorf("%w: bad", shortener.ErrMalformedURL))
	svc.On("GenerateSlug", mock.Anything, "https://boom.example.com", mock.Anything).
		Return(models.SlugResult{}, errors.New("boom"))
	h := setupTestServer(t, svc)

	tests := []struct {
		name string
		body any
		want int
	}{
		{"missing url", map[string]any{"identity_id": "acme"}, http.StatusBadRequest},
		{"malformed url", map[string]any{"url": "not a url"}, http.StatusBadRequest},
		{"internal", map[string]any{"url": "https://boom.example.com"}, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doJSON(t, h, http.MethodPost, "/slugs", tt.body)
			assert.Equal(t, tt.want, w.Code)
			assert.Contains(t, w.Body.String(), `"error"`)
		})
	}
}

func TestGenerateMultiple(t *testing.T) {
	svc := &MockService{}
	candidates := []models.Candidate{
		{Slug: "Target.Centrum-Silver", Style: models.StyleBrand},
		{Slug: "Target.Multivitamin-100ct", Style: models.StyleProduct},
	}
	svc.On("GenerateMultipleSlugs", mock.Anything, "https://www.target.com/p/x", models.GenerateOptions{}, 2).
		Return(candidates, nil)
	h := setupTestServer(t, svc)

	w := doJSON(t, h, http.MethodPost, "/slugs/multiple", map[string]any{"url": "https://www.target.com/p/x", "count": 2})

	require.Equal(t, http.StatusOK, w.Code)
	var got struct {
		Candidates []models.Candidate `json:"candidates"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	require.Len(t, got.Candidates, 2)
	assert.Equal(t, models.StyleProduct, got.Candidates[1].Style)
}

func TestAnalyze(t *testing.T) {
	svc := &MockService{}
	svc.On("AnalyzeIdentityPattern", mock.Anything, "acme", true).
		Return(&pattern.Result{IdentityID: "acme", Status: pattern.StatusUpdated, Promoted: true}, nil)
	svc.On("AnalyzeIdentityPattern", mock.Anything, "ghost", false).
		Return(nil, shortener.ErrNoLearner)
	h := setupTestServer(t, svc)

	w := doJSON(t, h, http.MethodPost, "/identities/acme/analyze?force=true", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"updated"`)

	w = doJSON(t, h, http.MethodPost, "/identities/ghost/analyze", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	svc.AssertExpectations(t)
}

func TestCache(t *testing.T) {
	svc := &MockService{}
	entries := []models.CacheEntry{{Key: "https://a.com", Result: models.SlugResult{Slug: "Acom.First"}}}
	svc.On("CacheSize", mock.Anything).Return(3, nil)
	svc.On("RecentEntries", mock.Anything, 1).Return(entries, nil)
	svc.On("RecentEntries", mock.Anything, 10).Return(nil, nil)
	svc.On("ClearCache", mock.Anything).Return(nil)
	h := setupTestServer(t, svc)

	w := doJSON(t, h, http.MethodGet, "/cache?limit=1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var got struct {
		Size    int                 `json:"size"`
		Entries []models.CacheEntry `json:"entries"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, 3, got.Size)
	require.Len(t, got.Entries, 1)
	assert.Equal(t, "Acom.First", got.Entries[0].Result.Slug)

	w = doJSON(t, h, http.MethodGet, "/cache", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"size":3,"entries":[]}`, w.Body.String())

	w = doJSON(t, h, http.MethodGet, "/cache?limit=-2", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(t, h, http.MethodDelete, "/cache", nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	svc.AssertExpectations(t)
}

func TestHealthAndMetrics(t *testing.T) {
	h := setupTestServer(t, &MockService{})

	w := doJSON(t, h, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())

	w = doJSON(t, h, http.MethodGet, "/metrics", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "linkslug_up 1")
}

func TestRequestIDPassthrough(t *testing.T) {
	h := setupTestServer(t, &MockService{})
	req, err := http.NewRequestWithContext(t.Context(), http.MethodGet, "/health", nil)
	require.NoError(t, err)
	req.Header.Set("X-Request-ID", "abc-123")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	assert.Equal(t, "abc-123", w.Header().Get("X-Request-ID"))
}

type blockingAnalyzer struct {
	calls   atomic.Int32
	release chan struct{}
	started chan struct{}
}

func (b *blockingAnalyzer) AnalyzeAll(ctx context.Context) ([]pattern.Result, error) {
	b.calls.Add(1)
	b.started <- struct{}{}
	<-b.release
	return []pattern.Result{{IdentityID: "acme", Status: pattern.StatusUpdated}}, nil
}

func TestScheduler(t *testing.T) {
	_, err := server.NewScheduler("not a schedule", &blockingAnalyzer{}, discardLogger())
	require.Error(t, err)

	a := &blockingAnalyzer{release: make(chan struct{}), started: make(chan struct{}, 1)}
	s, err := server.NewScheduler("@every 1h", a, discardLogger())
	require.NoError(t, err)

	done := make(chan bool)
	go func() { done <- s.RunOnce() }()
	select {
	case <-a.started:
	case <-time.After(5 * time.Second):
		t.Fatal("analysis did not start")
	}

	assert.False(t, s.RunOnce(), "overlapping run must be skipped")
	close(a.release)
	assert.True(t, <-done)
	assert.Equal(t, int32(1), a.calls.Load())

	s.Start()
	s.Stop()
}
