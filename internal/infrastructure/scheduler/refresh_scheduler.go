// Package scheduler runs the background snapshot refresh on a cron schedule
// so the first request after a data drop does not pay the fetch cost.
package scheduler

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Refresher rebuilds the snapshot from its source.
type Refresher interface {
	Refresh(ctx context.Context) error
}

// RefreshScheduler triggers snapshot refreshes on a cron expression.
type RefreshScheduler struct {
	cron      *cron.Cron
	refresher Refresher
	logger    *zap.Logger
	timeout   time.Duration
}

// NewRefreshScheduler creates a scheduler. timeout bounds each refresh run.
func NewRefreshScheduler(refresher Refresher, timeout time.Duration, logger *zap.Logger) *RefreshScheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if timeout <= 0 {
		timeout = 5 * time.Minute
	}
	return &RefreshScheduler{
		cron:      cron.New(),
		refresher: refresher,
		logger:    logger,
		timeout:   timeout,
	}
}

// Start registers the schedule and starts the cron loop. A failed refresh is
// logged and retried at the next tick; the previous snapshot keeps serving.
func (s *RefreshScheduler) Start(schedule string) error {
	_, err := s.cron.AddFunc(schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
		defer cancel()

		start := time.Now()
		if err := s.refresher.Refresh(ctx); err != nil {
			s.logger.Error("Scheduled snapshot refresh failed", zap.Error(err))
			return
		}
		s.logger.Info("Snapshot refreshed", zap.Duration("took", time.Since(start)))
	})
	if err != nil {
		return err
	}

	s.cron.Start()
	s.logger.Info("Refresh scheduler started", zap.String("schedule", schedule))
	return nil
}

// Stop stops the cron loop and waits for a running refresh to finish.
func (s *RefreshScheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.logger.Info("Refresh scheduler stopped")
}
