// Package scheduler runs background jobs for the WSA learning hub. The only
// job today is the periodic leaderboard cache rebuild, which keeps ranking
// reads warm between completion events and rolls the weekly view over even
// when nobody completes a unit across the week boundary.
package scheduler

import (
	"context"
	"time"

	"github.com/naluwan/wsa/internal/application/query"
	"github.com/naluwan/wsa/internal/domain/leaderboard"
	"github.com/naluwan/wsa/pkg/logger"
	"github.com/naluwan/wsa/pkg/timeutil"

	"github.com/go-co-op/gocron"
)

// Scheduler manages periodic background jobs.
type Scheduler struct {
	scheduler    *gocron.Scheduler
	leaderboards *query.GetLeaderboardHandler
	cache        leaderboard.Cache
	clock        timeutil.Clock
	log          *logger.Logger

	// RebuildInterval is how often the leaderboard cache is rebuilt.
	RebuildInterval time.Duration

	// JobTimeout bounds a single rebuild run.
	JobTimeout time.Duration
}

// New creates a scheduler. The cache must not be nil: without a cache there
// is nothing to rebuild and the scheduler should not be started at all.
func New(
	leaderboards *query.GetLeaderboardHandler,
	cache leaderboard.Cache,
	clock timeutil.Clock,
	log *logger.Logger,
) *Scheduler {
	return &Scheduler{
		scheduler:       gocron.NewScheduler(time.UTC),
		leaderboards:    leaderboards,
		cache:           cache,
		clock:           clock,
		log:             log.With(logger.String("component", "scheduler")),
		RebuildInterval: 10 * time.Minute,
		JobTimeout:      30 * time.Second,
	}
}

// Start registers the jobs and begins running them asynchronously.
func (s *Scheduler) Start() error {
	if _, err := s.scheduler.Every(s.RebuildInterval).Do(s.rebuildLeaderboards); err != nil {
		return err
	}
	s.scheduler.StartAsync()
	s.log.Info("scheduler started",
		logger.Duration("rebuild_interval", s.RebuildInterval),
	)
	return nil
}

// Stop terminates all scheduled jobs and waits for running ones to finish.
func (s *Scheduler) Stop() {
	s.scheduler.Stop()
	s.log.Info("scheduler stopped")
}

// rebuildLeaderboards recomputes both ranking views and replaces the cache.
// Failures are logged and retried on the next tick.
func (s *Scheduler) rebuildLeaderboards() {
	ctx, cancel := context.WithTimeout(context.Background(), s.JobTimeout)
	defer cancel()

	started := s.clock.Now()
	for _, view := range []leaderboard.View{leaderboard.ViewTotal, leaderboard.ViewWeekly} {
		entries, err := s.leaderboards.Compute(ctx, view, s.clock.Now())
		if err != nil {
			s.log.Error("leaderboard rebuild failed",
				logger.String("view", string(view)),
				logger.Err(err),
			)
			continue
		}
		if err := s.cache.Store(ctx, view, entries); err != nil {
			s.log.Error("leaderboard cache store failed",
				logger.String("view", string(view)),
				logger.Err(err),
			)
			continue
		}
		s.log.Debug("leaderboard view rebuilt",
			logger.String("view", string(view)),
			logger.Int("entries", len(entries)),
		)
	}
	s.log.Info("leaderboard rebuild finished",
		logger.Duration("took", s.clock.Now().Sub(started)),
	)
}
