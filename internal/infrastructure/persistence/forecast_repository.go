package persistence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/retailops/backend/internal/domain/prediction"
	"github.com/retailops/backend/internal/domain/shared"
	"github.com/retailops/backend/internal/infrastructure/persistence/models"
)

// ForecastRepository is the GORM implementation of
// prediction.ForecastRepository.
type ForecastRepository struct {
	db    *gorm.DB
	clock shared.Clock
}

// ForecastRepositoryOption configures a ForecastRepository.
type ForecastRepositoryOption func(*ForecastRepository)

// WithForecastRepositoryClock overrides the clock used for purge cutoffs.
func WithForecastRepositoryClock(clock shared.Clock) ForecastRepositoryOption {
	return func(r *ForecastRepository) {
		r.clock = clock
	}
}

// NewForecastRepository creates a new ForecastRepository.
func NewForecastRepository(db *gorm.DB, opts ...ForecastRepositoryOption) *ForecastRepository {
	r := &ForecastRepository{db: db, clock: shared.SystemClock{}}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// FindLatest returns the most recently created record for the key, or nil
// when none exists.
func (r *ForecastRepository) FindLatest(ctx context.Context, key prediction.ForecastKey) (*prediction.ForecastRecord, error) {
	query := r.db.WithContext(ctx).
		Where("forecast_type = ? AND resource_type = ?", key.Type, key.ResourceType)
	if key.ResourceID != nil {
		query = query.Where("resource_id = ?", *key.ResourceID)
	} else {
		query = query.Where("resource_id IS NULL")
	}

	var model models.ForecastRecordModel
	err := query.Order("created_at DESC").First(&model).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find latest forecast: %w", err)
	}
	return model.ToDomain(), nil
}

// Insert appends a new record; history is never overwritten.
func (r *ForecastRepository) Insert(ctx context.Context, record *prediction.ForecastRecord) error {
	var model models.ForecastRecordModel
	model.FromDomain(record)

	if err := r.db.WithContext(ctx).Create(&model).Error; err != nil {
		return fmt.Errorf("failed to insert forecast record: %w", err)
	}
	return nil
}

// PurgeOlderThan deletes audit rows of the given type older than age. The
// newest row per key survives regardless of age so the cache path never
// loses its current record.
func (r *ForecastRepository) PurgeOlderThan(ctx context.Context, t prediction.ForecastType, age time.Duration) (int64, error) {
	cutoff := r.clock.Now().Add(-age)

	result := r.db.WithContext(ctx).Exec(`
		DELETE FROM forecast_records
		WHERE forecast_type = ?
		  AND created_at < ?
		  AND created_at < (
			SELECT MAX(f2.created_at) FROM forecast_records f2
			WHERE f2.forecast_type = forecast_records.forecast_type
			  AND f2.resource_type = forecast_records.resource_type
			  AND (f2.resource_id = forecast_records.resource_id
			       OR (f2.resource_id IS NULL AND forecast_records.resource_id IS NULL))
		  )`, t, cutoff)
	if result.Error != nil {
		return 0, fmt.Errorf("failed to purge forecast records: %w", result.Error)
	}
	return result.RowsAffected, nil
}
