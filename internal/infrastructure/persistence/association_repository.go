package persistence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/retailops/backend/internal/domain/prediction"
	"github.com/retailops/backend/internal/domain/shared"
	"github.com/retailops/backend/internal/infrastructure/persistence/models"
)

// AssociationRepository is the GORM implementation of
// prediction.AssociationRepository. Rules mined together share a run_id.
type AssociationRepository struct {
	db    *gorm.DB
	clock shared.Clock
}

// AssociationRepositoryOption configures an AssociationRepository.
type AssociationRepositoryOption func(*AssociationRepository)

// WithAssociationRepositoryClock overrides the clock used for purge cutoffs.
func WithAssociationRepositoryClock(clock shared.Clock) AssociationRepositoryOption {
	return func(r *AssociationRepository) {
		r.clock = clock
	}
}

// NewAssociationRepository creates a new AssociationRepository.
func NewAssociationRepository(db *gorm.DB, opts ...AssociationRepositoryOption) *AssociationRepository {
	r := &AssociationRepository{db: db, clock: shared.SystemClock{}}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// FindLatestRun returns the most recent mining run and its creation
// instant, or nil when none exists.
func (r *AssociationRepository) FindLatestRun(ctx context.Context) ([]prediction.AssociationRule, time.Time, error) {
	var newest models.AssociationRuleModel
	err := r.db.WithContext(ctx).
		Order("created_at DESC").
		First(&newest).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, time.Time{}, nil
	}
	if err != nil {
		return nil, time.Time{}, fmt.Errorf("failed to find latest association run: %w", err)
	}

	var rows []models.AssociationRuleModel
	if err := r.db.WithContext(ctx).
		Where("run_id = ?", newest.RunID).
		Order("confidence DESC").
		Find(&rows).Error; err != nil {
		return nil, time.Time{}, fmt.Errorf("failed to load association run: %w", err)
	}

	rules := make([]prediction.AssociationRule, 0, len(rows))
	for i := range rows {
		rules = append(rules, rows[i].ToDomain())
	}
	return rules, newest.CreatedAt, nil
}

// InsertRun appends one mining run. An empty run is a no-op.
func (r *AssociationRepository) InsertRun(ctx context.Context, rules []prediction.AssociationRule) error {
	if len(rules) == 0 {
		return nil
	}

	runID := uuid.New()
	rows := make([]models.AssociationRuleModel, 0, len(rules))
	for _, rule := range rules {
		var model models.AssociationRuleModel
		model.FromDomain(rule, runID)
		rows = append(rows, model)
	}

	if err := r.db.WithContext(ctx).Create(&rows).Error; err != nil {
		return fmt.Errorf("failed to insert association run: %w", err)
	}
	return nil
}

// PurgeOlderThan deletes historical runs older than age. The newest run is
// always kept so the cache path still has a current record.
func (r *AssociationRepository) PurgeOlderThan(ctx context.Context, age time.Duration) (int64, error) {
	var newest models.AssociationRuleModel
	err := r.db.WithContext(ctx).
		Order("created_at DESC").
		First(&newest).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to find current association run: %w", err)
	}

	cutoff := r.clock.Now().Add(-age)
	result := r.db.WithContext(ctx).
		Where("created_at < ? AND run_id <> ?", cutoff, newest.RunID).
		Delete(&models.AssociationRuleModel{})
	if result.Error != nil {
		return 0, fmt.Errorf("failed to purge association runs: %w", result.Error)
	}
	return result.RowsAffected, nil
}
