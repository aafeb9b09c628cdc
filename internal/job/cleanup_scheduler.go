// Package job provides background job schedulers.
package job

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"catalog-metadata-service/internal/infra/cache"
	"catalog-metadata-service/pkg/locker"
)

// CleanupScheduler periodically sweeps expired cache entries from
// backends that cannot expire them on their own, with distributed
// locking to ensure only one instance runs a sweep at a time.
type CleanupScheduler struct {
	sweep    cache.Sweeper
	interval time.Duration
	timeout  time.Duration
	limit    int
	logger   *zap.Logger
	locker   locker.DistributedLocker

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// CleanupConfig holds cleanup scheduler configuration.
type CleanupConfig struct {
	Interval  time.Duration
	Timeout   time.Duration
	Limit     int
	OnStartup bool
}

// NewCleanupScheduler creates a new CleanupScheduler with distributed
// locking support.
func NewCleanupScheduler(
	sweep cache.Sweeper,
	cfg CleanupConfig,
	logger *zap.Logger,
	locker locker.DistributedLocker,
) *CleanupScheduler {
	return &CleanupScheduler{
		sweep:    sweep,
		interval: cfg.Interval,
		timeout:  cfg.Timeout,
		limit:    cfg.Limit,
		logger:   logger,
		locker:   locker,
	}
}

// Start begins the background cleanup job.
func (s *CleanupScheduler) Start(runOnStartup bool) {
	s.ctx, s.cancel = context.WithCancel(context.Background())

	s.logger.Info("starting cleanup scheduler",
		zap.Duration("interval", s.interval),
		zap.Bool("run_on_startup", runOnStartup),
	)

	s.wg.Add(1)
	go s.run(runOnStartup)
}

// Stop gracefully stops the scheduler.
func (s *CleanupScheduler) Stop() {
	s.logger.Info("stopping cleanup scheduler")
	s.cancel()
	s.wg.Wait()
	s.logger.Info("cleanup scheduler stopped")
}

// run is the main loop of the scheduler.
func (s *CleanupScheduler) run(runOnStartup bool) {
	defer s.wg.Done()

	// Run immediately if configured
	if runOnStartup {
		s.executeCleanup()
	}

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.ctx.Done():
			return
		case <-ticker.C:
			s.executeCleanup()
		}
	}
}

// executeCleanup performs one sweep with distributed locking and timeout.
//
// Locking behavior:
//   - Lock TTL = interval duration (cooldown model, not timeout)
//   - Success: Lock held for full interval to prevent duplicate sweeps
//   - Failure: Lock released immediately to allow retry by another instance
func (s *CleanupScheduler) executeCleanup() {
	const lockKey = "cache:cleanup:lock"

	// Try to acquire lock with interval-based TTL (cooldown model)
	acquired, err := s.locker.Acquire(s.ctx, lockKey, s.interval)
	if err != nil {
		s.logger.Error("failed to acquire distributed lock", zap.Error(err))

		return
	}
	if !acquired {
		s.logger.Debug("another instance is running cleanup, skipping execution")

		return
	}

	// Lock acquired - run the sweep with timeout
	ctx, cancel := context.WithTimeout(s.ctx, s.timeout)
	defer cancel()

	removed, err := s.sweep.CleanupExpired(ctx, s.limit)
	if err != nil {
		// Release lock immediately on error (allow immediate retry)
		if relErr := s.locker.Release(s.ctx, lockKey); relErr != nil {
			s.logger.Error("failed to release lock after cleanup error", zap.Error(relErr))
		}
		s.logger.Warn("cache cleanup failed, lock released for retry", zap.Error(err))

		return
	}

	// Lock will expire naturally after interval (cooldown period)
	s.logger.Info("cache cleanup completed, lock held for cooldown",
		zap.Int64("removed", removed),
		zap.Duration("cooldown", s.interval),
	)
}
