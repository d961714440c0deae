package server

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/dtnitsch/linkslug/pkg/pattern"
	"github.com/robfig/cron/v3"
)

// Analyzer runs pattern analysis for every known identity.
type Analyzer interface {
	AnalyzeAll(ctx context.Context) ([]pattern.Result, error)
}

// Scheduler periodically re-analyzes identity patterns. Runs never
// overlap; a tick that fires while one is in progress is skipped.
type Scheduler struct {
	cron     *cron.Cron
	analyzer Analyzer
	logger   *slog.Logger

	ctx    context.Context
	cancel context.CancelFunc
	mu     sync.Mutex
	busy   bool
}

// NewScheduler accepts a five-field cron expression or a descriptor such as "@daily".
func NewScheduler(schedule string, analyzer Analyzer, logger *slog.Logger) (*Scheduler, error) {
	if logger == nil {
		logger = slog.Default()
	}
	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)
	ctx, cancel := context.WithCancel(context.Background())
	s := &Scheduler{
		cron:     cron.New(cron.WithParser(parser), cron.WithChain(cron.Recover(cron.DefaultLogger))),
		analyzer: analyzer,
		logger:   logger,
		ctx:      ctx,
		cancel:   cancel,
	}
	if _, err := s.cron.AddFunc(schedule, func() { s.RunOnce() }); err != nil {
		cancel()
		return nil, fmt.Errorf("invalid analyze schedule %q: %w", schedule, err)
	}
	return s, nil
}

func (s *Scheduler) Start() {
	s.cron.Start()
	s.logger.Info("pattern analysis scheduled")
}

// Stop cancels a running analysis and waits for it to return.
func (s *Scheduler) Stop() {
	s.cancel()
	<-s.cron.Stop().Done()
}

// RunOnce performs one analysis pass unless another is in progress. It
// reports whether a pass ran.
func (s *Scheduler) RunOnce() bool {
	s.mu.Lock()
	if s.busy {
		s.mu.Unlock()
		s.logger.Warn("pattern analysis still running, skipping tick")
		return false
	}
	s.busy = true
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		s.busy = false
		s.mu.Unlock()
	}()

	results, err := s.analyzer.AnalyzeAll(s.ctx)
	if err != nil {
		s.logger.Error("pattern analysis failed", "error", err)
		return true
	}

	counts := make(map[pattern.Status]int)
	failed := 0
	for _, r := range results {
		if r.Err != nil {
			failed++
			continue
		}
		counts[r.Status]++
	}
	s.logger.Info("pattern analysis finished",
		"identities", len(results),
		"updated", counts[pattern.StatusUpdated],
		"skipped", counts[pattern.StatusSkipped],
		"insufficient", counts[pattern.StatusInsufficientData],
		"failed", failed)
	return true
}
