// Package metrics exports Prometheus counters for slug generation, the
// cache, the text generator and pattern analysis.
package metrics

import (
	"context"
	"net/http"
	"time"

	"github.com/dtnitsch/linkslug/models"
	"github.com/dtnitsch/linkslug/pkg/llm"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "linkslug"

// Cache lookup results.
const (
	CacheHit   = "hit"
	CacheMiss  = "miss"
	CacheError = "error"
)

// Metrics holds the collectors on their own registry, so several instances
// can coexist in one process.
type Metrics struct {
	registry *prometheus.Registry

	TierOutcomes       *prometheus.CounterVec
	SlugsGenerated     *prometheus.CounterVec
	GenerationDuration prometheus.Histogram
	CacheLookups       *prometheus.CounterVec
	AIRequests         *prometheus.CounterVec
	AIDuration         *prometheus.HistogramVec
	Analyses           *prometheus.CounterVec
}

func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	f := promauto.With(reg)

	return &Metrics{
		registry: reg,
		TierOutcomes: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tier_outcomes_total",
			Help:      "Tier attempts by tier and outcome (accepted, provisional, rejected, empty)",
		}, []string{"tier", "outcome"}),
		SlugsGenerated: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "slugs_generated_total",
			Help:      "Slugs returned to callers by winning tier and confidence label",
		}, []string{"tier", "confidence"}),
		GenerationDuration: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "generation_duration_seconds",
			Help:      "Time to produce an uncached slug",
			Buckets:   []float64{0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}),
		CacheLookups: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_lookups_total",
			Help:      "Cache lookups by result (hit, miss, error)",
		}, []string{"result"}),
		AIRequests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ai_requests_total",
			Help:      "Text generation calls by quality level and result",
		}, []string{"quality", "result"}),
		AIDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "ai_request_duration_seconds",
			Help:      "Text generation latency by quality level",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2, 4, 8},
		}, []string{"quality"}),
		Analyses: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "pattern_analyses_total",
			Help:      "Identity pattern analyses by status",
		}, []string{"status"}),
	}
}

// Handler serves the registry for the /metrics endpoint.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry exposes the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// TierOutcome implements generator.Recorder.
func (m *Metrics) TierOutcome(tier models.Tier, outcome string) {
	m.TierOutcomes.WithLabelValues(string(tier), outcome).Inc()
}

// AnalysisOutcome implements pattern.Recorder.
func (m *Metrics) AnalysisOutcome(status string) {
	m.Analyses.WithLabelValues(status).Inc()
}

// SlugGenerated records a freshly generated result.
func (m *Metrics) SlugGenerated(r models.SlugResult, took time.Duration) {
	m.SlugsGenerated.WithLabelValues(string(r.Tier), string(r.Confidence)).Inc()
	m.GenerationDuration.Observe(took.Seconds())
}

// CacheLookup records one cache read.
func (m *Metrics) CacheLookup(result string) {
	m.CacheLookups.WithLabelValues(result).Inc()
}

// InstrumentGenerator wraps next so every call is counted and timed.
func (m *Metrics) InstrumentGenerator(next llm.TextGenerator) llm.TextGenerator {
	return &instrumented{next: next, m: m}
}

type instrumented struct {
	next llm.TextGenerator
	m    *Metrics
}

func (i *instrumented) GenerateText(ctx context.Context, prompt string, maxTokens int, temperature float64, quality llm.Quality) (string, error) {
	start := time.Now()
	out, err := i.next.GenerateText(ctx, prompt, maxTokens, temperature, quality)
	i.m.AIDuration.WithLabelValues(quality.String()).Observe(time.Since(start).Seconds())

	result := "ok"
	if err != nil {
		result = "error"
	}
	i.m.AIRequests.WithLabelValues(quality.String(), result).Inc()
	return out, err
}
