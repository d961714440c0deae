package pattern

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sync"
	"time"

	"github.com/dtnitsch/linkslug/models"
	"github.com/dtnitsch/linkslug/pkg/db"
)

// Status is the outcome of one identity analysis.
type Status string

const (
	StatusInsufficientData Status = "insufficient-data"
	StatusSkipped          Status = "recently-analyzed-skipped"
	StatusUpdated          Status = "updated"
)

// Learner defaults.
const (
	DefaultHistoryLimit       = 20
	DefaultFreshness          = 24 * time.Hour
	DefaultPromotionThreshold = 0.7
	DefaultWorkers            = 4
	maxExamples               = 5
)

// SlugHistory is the part of the history store the learner reads.
type SlugHistory interface {
	HistorySlugs(ctx context.Context, identityID string, limit int) ([]string, error)
}

// Recorder observes analysis outcomes.
type Recorder interface {
	AnalysisOutcome(status string)
}

type nopRecorder struct{}

func (nopRecorder) AnalysisOutcome(string) {}

// Result is returned by Analyze. Err is only set by AnalyzeBatch.
type Result struct {
	IdentityID string                  `json:"identity_id"`
	Status     Status                  `json:"status,omitempty"`
	Pattern    *models.DetectedPattern `json:"detected_pattern,omitempty"`
	Promoted   bool                    `json:"promoted"`
	Err        error                   `json:"-"`
}

// LearnerConfig wires a Learner. Zero values take the defaults.
type LearnerConfig struct {
	Detector           *Detector
	Profiles           db.ProfileStore
	History            SlugHistory
	HistoryLimit       int
	Freshness          time.Duration
	PromotionThreshold float64
	Now                func() time.Time
	Recorder           Recorder
	Logger             *slog.Logger
}

// Learner turns slug history into naming profiles.
type Learner struct {
	detector  *Detector
	profiles  db.ProfileStore
	history   SlugHistory
	limit     int
	freshness time.Duration
	threshold float64
	now       func() time.Time
	recorder  Recorder
	logger    *slog.Logger
}

func NewLearner(cfg LearnerConfig) *Learner {
	if cfg.HistoryLimit <= 0 || cfg.HistoryLimit > DefaultHistoryLimit {
		cfg.HistoryLimit = DefaultHistoryLimit
	}
	if cfg.Freshness <= 0 {
		cfg.Freshness = DefaultFreshness
	}
	if cfg.PromotionThreshold <= 0 {
		cfg.PromotionThreshold = DefaultPromotionThreshold
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.Recorder == nil {
		cfg.Recorder = nopRecorder{}
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Learner{
		detector:  cfg.Detector,
		profiles:  cfg.Profiles,
		history:   cfg.History,
		limit:     cfg.HistoryLimit,
		freshness: cfg.Freshness,
		threshold: cfg.PromotionThreshold,
		now:       cfg.Now,
		recorder:  cfg.Recorder,
		logger:    cfg.Logger,
	}
}

// Analyze recomputes the naming pattern of identityID from its recent
// history. A profile updated within the freshness window is left alone
// unless force is set. Fewer than MinSamples slugs writes nothing. Store
// failures are returned.
func (l *Learner) Analyze(ctx context.Context, identityID string, force bool) (*Result, error) {
	res := &Result{IdentityID: identityID}

	profile, err := l.profiles.GetProfile(ctx, identityID)
	if err != nil {
		return nil, fmt.Errorf("failed to load profile %s: %w", identityID, err)
	}

	if !force && profile != nil && profile.Pattern != nil && l.now().Sub(profile.LastUpdated) < l.freshness {
		res.Status = StatusSkipped
		res.Pattern = profile.Pattern
		res.Promoted = profile.Preferences.Learned
		l.recorder.AnalysisOutcome(string(res.Status))
		return res, nil
	}

	slugs, err := l.history.HistorySlugs(ctx, identityID, l.limit)
	if err != nil {
		return nil, fmt.Errorf("failed to load history %s: %w", identityID, err)
	}

	pattern, ok := l.detector.Detect(slugs)
	if !ok {
		res.Status = StatusInsufficientData
		l.recorder.AnalysisOutcome(string(res.Status))
		l.logger.Debug("not enough history", "identity", identityID, "samples", len(slugs))
		return res, nil
	}

	if profile == nil {
		profile = &models.NamingProfile{IdentityID: identityID, Preferences: models.DefaultPreferences()}
	}
	profile.Pattern = pattern
	profile.Examples = append([]string(nil), slugs[:min(len(slugs), maxExamples)]...)
	profile.URLsAnalyzed = len(slugs)
	profile.LastUpdated = l.now().UTC()

	// Below the threshold, preferences promoted by an earlier analysis stay active.
	if pattern.Confidence >= l.threshold {
		Promote(&profile.Preferences, pattern)
		res.Promoted = true
	}

	if err := l.profiles.PutProfile(ctx, profile); err != nil {
		return nil, fmt.Errorf("failed to save profile %s: %w", identityID, err)
	}

	res.Status = StatusUpdated
	res.Pattern = pattern
	l.recorder.AnalysisOutcome(string(res.Status))
	l.logger.Info("profile analyzed", "identity", identityID, "samples", len(slugs),
		"structure", pattern.Structure, "confidence", pattern.Confidence, "promoted", res.Promoted)
	return res, nil
}

// Promote copies a trusted pattern into generation preferences. Explicit
// owner preferences (style, voice, word lists) are untouched.
func Promote(prefs *models.Preferences, p *models.DetectedPattern) {
	prefs.Separator = p.Separator
	prefs.Capitalization = p.Capitalization
	prefs.IncludeBrand = p.IncludesBrand
	prefs.IncludeYear = p.IncludesYear

	words := int(math.Round(p.AvgWordCount))
	if p.IncludesBrand {
		words--
	}
	prefs.MaxWords = max(words, 1)
	prefs.Learned = true
}

// AnalyzeBatch analyzes ids on a bounded pool of workers. Results are in
// the order of ids; a failed identity carries its error in Result.Err and
// does not stop the others.
func (l *Learner) AnalyzeBatch(ctx context.Context, ids []string, workers int) []Result {
	if workers <= 0 {
		workers = DefaultWorkers
	}
	workers = min(workers, max(len(ids), 1))

	type job struct {
		index int
		id    string
	}

	var wg sync.WaitGroup
	jobs := make(chan job, len(ids))
	results := make([]Result, len(ids))

	for w := 1; w <= workers; w++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			for j := range jobs {
				if err := ctx.Err(); err != nil {
					results[j.index] = Result{IdentityID: j.id, Err: err}
					continue
				}
				res, err := l.Analyze(ctx, j.id, false)
				if err != nil {
					l.logger.Error("analysis failed", "worker_id", workerID, "identity", j.id, "error", err)
					results[j.index] = Result{IdentityID: j.id, Err: err}
					continue
				}
				results[j.index] = *res
			}
		}(w)
	}

	for i, id := range ids {
		jobs <- job{index: i, id: id}
	}
	close(jobs)
	wg.Wait()

	return results
}
