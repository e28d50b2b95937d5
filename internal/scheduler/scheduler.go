// Package scheduler runs the cron-driven cache prefetch jobs.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/pitchside/internal/config"
	"github.com/yourusername/pitchside/internal/service"
)

// Scheduler warms the fixture caches ahead of traffic: on each tick it lists
// today's fixtures per configured league and assembles their bundles so user
// requests hit warm caches.
type Scheduler struct {
	cron       *cron.Cron
	aggregator *service.Aggregator
	logger     *logrus.Logger
	leagues    []string
	mu         sync.RWMutex
	isRunning  bool
	jobIDs     []cron.EntryID
}

// NewScheduler creates a prefetch scheduler.
func NewScheduler(aggregator *service.Aggregator, logger *logrus.Logger) *Scheduler {
	return &Scheduler{
		cron:       cron.New(cron.WithLocation(time.UTC)),
		aggregator: aggregator,
		logger:     logger,
		jobIDs:     make([]cron.EntryID, 0),
	}
}

// SchedulePrefetch registers the prefetch job from configuration.
func (s *Scheduler) SchedulePrefetch(cfg config.SchedulerConfig) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return fmt.Errorf("cannot schedule job while scheduler is running")
	}

	s.leagues = cfg.Leagues

	jobID, err := s.cron.AddFunc(cfg.PrefetchCron, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
		defer cancel()
		s.RunPrefetch(ctx)
	})
	if err != nil {
		return fmt.Errorf("failed to schedule prefetch job: %w", err)
	}

	s.jobIDs = append(s.jobIDs, jobID)
	s.logger.WithFields(logrus.Fields{
		"cron":    cfg.PrefetchCron,
		"leagues": cfg.Leagues,
	}).Info("Prefetch job scheduled")
	return nil
}

// RunPrefetch executes one prefetch pass immediately. Individual fixture
// failures are logged and skipped so the rest of the slate still warms up.
func (s *Scheduler) RunPrefetch(ctx context.Context) {
	start := time.Now()
	today := time.Now().UTC()

	leagues := s.leagues
	if len(leagues) == 0 {
		leagues = []string{""}
	}

	var warmed, failed int
	for _, league := range leagues {
		list, err := s.aggregator.GetFixturesByDate(ctx, today, league)
		if err != nil {
			s.logger.WithField("league", league).WithError(err).Warn("Prefetch fixture listing failed")
			continue
		}

		for _, summary := range list.Fixtures {
			if ctx.Err() != nil {
				s.logger.Warn("Prefetch aborted by context")
				return
			}
			if _, err := s.aggregator.GetFixtureBundle(ctx, summary.FixtureID); err != nil {
				failed++
				s.logger.WithField("fixture_id", summary.FixtureID).WithError(err).Warn("Prefetch bundle failed")
				continue
			}
			warmed++
		}
	}

	s.logger.WithFields(logrus.Fields{
		"warmed":      warmed,
		"failed":      failed,
		"duration_ms": time.Since(start).Milliseconds(),
	}).Info("Prefetch pass completed")
}

// Start begins executing scheduled jobs.
func (s *Scheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return fmt.Errorf("scheduler is already running")
	}

	s.cron.Start()
	s.isRunning = true
	s.logger.WithField("jobs", len(s.jobIDs)).Info("Scheduler started")
	return nil
}

// Stop halts job execution and waits for in-flight jobs to finish.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isRunning {
		return
	}

	stopCtx := s.cron.Stop()
	<-stopCtx.Done()
	s.isRunning = false
	s.logger.Info("Scheduler stopped")
}

// IsRunning reports whether the scheduler is active.
func (s *Scheduler) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}
