package scheduler

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/retailops/backend/internal/domain/prediction"
)

// RetentionSchedulerConfig holds configuration for the retention scheduler
type RetentionSchedulerConfig struct {
	// Enabled indicates if the scheduler is enabled
	Enabled bool
	// PurgeInterval is how often the purge runs
	PurgeInterval time.Duration
	// RetentionAge is the age past which non-current records are deleted
	RetentionAge time.Duration
	// JobTimeout is the maximum time a single purge pass can run
	JobTimeout time.Duration
}

// DefaultRetentionSchedulerConfig returns default retention scheduler
// configuration: a purge every six hours keeping thirty days of history.
func DefaultRetentionSchedulerConfig() RetentionSchedulerConfig {
	return RetentionSchedulerConfig{
		Enabled:       true,
		PurgeInterval: 6 * time.Hour,
		RetentionAge:  30 * 24 * time.Hour,
		JobTimeout:    5 * time.Minute,
	}
}

// RetentionScheduler periodically trims forecast and association history.
// The newest record per forecast key and the current association run are
// never deleted, so a purge can run at any time without racing readers.
type RetentionScheduler struct {
	config       RetentionSchedulerConfig
	forecasts    prediction.ForecastRepository
	associations prediction.AssociationRepository
	logger       *zap.Logger

	cancel    context.CancelFunc
	wg        sync.WaitGroup
	mu        sync.Mutex
	isRunning bool

	lastRunAt *time.Time
}

// NewRetentionScheduler creates a new retention scheduler
func NewRetentionScheduler(
	config RetentionSchedulerConfig,
	forecasts prediction.ForecastRepository,
	associations prediction.AssociationRepository,
	logger *zap.Logger,
) *RetentionScheduler {
	if config.PurgeInterval <= 0 {
		config.PurgeInterval = DefaultRetentionSchedulerConfig().PurgeInterval
	}
	if config.RetentionAge <= 0 {
		config.RetentionAge = DefaultRetentionSchedulerConfig().RetentionAge
	}
	if config.JobTimeout <= 0 {
		config.JobTimeout = DefaultRetentionSchedulerConfig().JobTimeout
	}

	return &RetentionScheduler{
		config:       config,
		forecasts:    forecasts,
		associations: associations,
		logger:       logger,
	}
}

// Start starts the purge loop. Starting a running scheduler is a no-op.
func (s *RetentionScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = true
	s.mu.Unlock()

	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	s.wg.Add(1)
	go s.purgeLoop(ctx)

	s.logger.Info("Retention scheduler started",
		zap.Duration("purge_interval", s.config.PurgeInterval),
		zap.Duration("retention_age", s.config.RetentionAge),
	)
	return nil
}

// Stop stops the purge loop, waiting for an in-flight pass to finish or the
// context to expire.
func (s *RetentionScheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = false
	s.mu.Unlock()

	if s.cancel != nil {
		s.cancel()
	}

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.logger.Info("Retention scheduler stopped")
		return nil
	case <-ctx.Done():
		s.logger.Warn("Retention scheduler stop timed out")
		return ctx.Err()
	}
}

func (s *RetentionScheduler) purgeLoop(ctx context.Context) {
	defer s.wg.Done()

	ticker := time.NewTicker(s.config.PurgeInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.runPurge(ctx)
		}
	}
}

// runPurge executes one purge pass. Failures are logged per table and never
// stop the remaining deletions.
func (s *RetentionScheduler) runPurge(ctx context.Context) {
	now := time.Now()
	s.mu.Lock()
	s.lastRunAt = &now
	s.mu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, s.config.JobTimeout)
	defer cancel()

	var total int64
	for _, forecastType := range prediction.AllForecastTypes() {
		deleted, err := s.forecasts.PurgeOlderThan(ctx, forecastType, s.config.RetentionAge)
		if err != nil {
			s.logger.Error("Failed to purge forecast history",
				zap.String("forecast_type", string(forecastType)),
				zap.Error(err))
			continue
		}
		total += deleted
	}

	deleted, err := s.associations.PurgeOlderThan(ctx, s.config.RetentionAge)
	if err != nil {
		s.logger.Error("Failed to purge association history", zap.Error(err))
	} else {
		total += deleted
	}

	s.logger.Info("Retention purge completed",
		zap.Int64("rows_deleted", total),
		zap.Duration("retention_age", s.config.RetentionAge),
	)
}

// TriggerManualRun runs a purge pass outside the schedule.
// Uses a background context so an HTTP-triggered run survives the request;
// the pass is tracked so Stop still waits for it.
func (s *RetentionScheduler) TriggerManualRun() error {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return ErrSchedulerNotRunning
	}
	s.wg.Add(1)
	s.mu.Unlock()

	go func() {
		defer s.wg.Done()
		s.runPurge(context.Background())
	}()
	return nil
}

// GetStatus returns the current scheduler status.
func (s *RetentionScheduler) GetStatus() map[string]any {
	s.mu.Lock()
	defer s.mu.Unlock()

	return map[string]any{
		"enabled":        s.config.Enabled,
		"is_running":     s.isRunning,
		"purge_interval": s.config.PurgeInterval.String(),
		"retention_age":  s.config.RetentionAge.String(),
		"last_run_at":    s.lastRunAt,
	}
}
