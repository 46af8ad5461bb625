package persistence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/retailops/backend/internal/domain/prediction"
	"github.com/retailops/backend/internal/infrastructure/persistence/models"
)

// AnomalyRepository is the GORM implementation of
// prediction.AnomalyRepository. Detections inserted together share a
// run_id; the newest run for a window is the current one.
type AnomalyRepository struct {
	db *gorm.DB
}

// NewAnomalyRepository creates a new AnomalyRepository.
func NewAnomalyRepository(db *gorm.DB) *AnomalyRepository {
	return &AnomalyRepository{db: db}
}

// FindLatestRun returns the anomalies of the most recent run covering the
// window and the run's creation instant, or nil when none exists.
func (r *AnomalyRepository) FindLatestRun(ctx context.Context, windowStart, windowEnd time.Time) ([]prediction.AnomalyRecord, time.Time, error) {
	var newest models.AnomalyRecordModel
	err := r.db.WithContext(ctx).
		Where("window_start = ? AND window_end = ?", windowStart, windowEnd).
		Order("created_at DESC").
		First(&newest).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, time.Time{}, nil
	}
	if err != nil {
		return nil, time.Time{}, fmt.Errorf("failed to find latest anomaly run: %w", err)
	}

	var rows []models.AnomalyRecordModel
	if err := r.db.WithContext(ctx).
		Where("run_id = ?", newest.RunID).
		Order("score DESC").
		Find(&rows).Error; err != nil {
		return nil, time.Time{}, fmt.Errorf("failed to load anomaly run: %w", err)
	}

	records := make([]prediction.AnomalyRecord, 0, len(rows))
	for i := range rows {
		records = append(records, rows[i].ToDomain())
	}
	return records, newest.CreatedAt, nil
}

// InsertRun appends one detection run. An empty run is a no-op.
func (r *AnomalyRepository) InsertRun(ctx context.Context, anomalies []prediction.AnomalyRecord) error {
	if len(anomalies) == 0 {
		return nil
	}

	runID := uuid.New()
	rows := make([]models.AnomalyRecordModel, 0, len(anomalies))
	for _, a := range anomalies {
		var model models.AnomalyRecordModel
		model.FromDomain(a, runID)
		rows = append(rows, model)
	}

	if err := r.db.WithContext(ctx).Create(&rows).Error; err != nil {
		return fmt.Errorf("failed to insert anomaly run: %w", err)
	}
	return nil
}
