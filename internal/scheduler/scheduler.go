// Package scheduler periodically refreshes the AQI leaderboard cache so the
// endpoint serves warm data.
package scheduler

import (
	"context"
	"time"

	"github.com/go-co-op/gocron"
	"go.uber.org/zap"

	"envirowatch/internal/airquality"
	"envirowatch/internal/metrics"
)

type Scheduler struct {
	scheduler   *gocron.Scheduler
	leaderboard *airquality.Leaderboard
	interval    time.Duration
	timeout     time.Duration
	logger      *zap.Logger
}

func New(leaderboard *airquality.Leaderboard, interval, timeout time.Duration, logger *zap.Logger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scheduler{
		scheduler:   gocron.NewScheduler(time.UTC),
		leaderboard: leaderboard,
		interval:    interval,
		timeout:     timeout,
		logger:      logger,
	}
}

// Start schedules the periodic refresh and starts the underlying scheduler.
func (s *Scheduler) Start() error {
	if len(s.leaderboard.Cities()) == 0 {
		s.logger.Info("scheduler: no leaderboard cities configured; nothing to schedule")
		return nil
	}

	minutes := int(s.interval.Minutes())
	if minutes <= 0 {
		minutes = 15
	}

	_, err := s.scheduler.Every(minutes).Minutes().Do(func() {
		s.logger.Debug("scheduler: refreshing leaderboard")

		ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
		defer cancel()

		s.leaderboard.Refresh(ctx)
		metrics.LeaderboardRefreshes.Inc()
	})
	if err != nil {
		return err
	}

	s.scheduler.StartAsync()
	return nil
}

// Stop stops the scheduler and cancels any future jobs.
func (s *Scheduler) Stop() {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
}
