package persistence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/retailops/backend/internal/domain/prediction"
	"github.com/retailops/backend/internal/infrastructure/persistence/models"
)

// ModelRegistry is the GORM implementation of prediction.ModelRegistry. The
// single-active invariant is enforced here by always reading before
// writing and updating the existing active row in place.
type ModelRegistry struct {
	db *gorm.DB
}

// NewModelRegistry creates a new ModelRegistry.
func NewModelRegistry(db *gorm.DB) *ModelRegistry {
	return &ModelRegistry{db: db}
}

// GetActive returns the active model for the type, or nil when none has
// been registered yet.
func (r *ModelRegistry) GetActive(ctx context.Context, t prediction.ForecastType) (*prediction.ModelRecord, error) {
	var model models.ModelRecordModel
	err := r.db.WithContext(ctx).
		Where("model_type = ? AND is_active = ?", t, true).
		First(&model).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find active model: %w", err)
	}
	return model.ToDomain(), nil
}

// UpsertActive updates the active record for the type in place, creating it
// on the first successful inference. A second active row is never created.
func (r *ModelRegistry) UpsertActive(ctx context.Context, t prediction.ForecastType, lastTrained time.Time, accuracy float64, parameters map[string]any) (*prediction.ModelRecord, error) {
	existing, err := r.GetActive(ctx, t)
	if err != nil {
		return nil, err
	}

	if existing == nil {
		record := prediction.NewModelRecord(t, lastTrained, accuracy, parameters)
		var model models.ModelRecordModel
		model.FromDomain(record)
		if err := r.db.WithContext(ctx).Create(&model).Error; err != nil {
			return nil, fmt.Errorf("failed to create model record: %w", err)
		}
		return record, nil
	}

	existing.Touch(lastTrained, accuracy, parameters)
	var model models.ModelRecordModel
	model.FromDomain(existing)
	if err := r.db.WithContext(ctx).Save(&model).Error; err != nil {
		return nil, fmt.Errorf("failed to update model record: %w", err)
	}
	return existing, nil
}
