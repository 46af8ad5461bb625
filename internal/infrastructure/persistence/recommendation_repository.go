package persistence

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/retailops/backend/internal/domain/prediction"
	"github.com/retailops/backend/internal/infrastructure/persistence/models"
)

// RecommendationRepository is the GORM implementation of
// prediction.RecommendationRepository.
type RecommendationRepository struct {
	db *gorm.DB
}

// NewRecommendationRepository creates a new RecommendationRepository.
func NewRecommendationRepository(db *gorm.DB) *RecommendationRepository {
	return &RecommendationRepository{db: db}
}

// FindByID returns the recommendation with the given id, or nil when it
// does not exist.
func (r *RecommendationRepository) FindByID(ctx context.Context, id uuid.UUID) (*prediction.OptimizationRecommendation, error) {
	var model models.RecommendationModel
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find recommendation: %w", err)
	}
	return model.ToDomain(), nil
}

// FindPending lists recommendations awaiting operator action, newest first.
func (r *RecommendationRepository) FindPending(ctx context.Context) ([]prediction.OptimizationRecommendation, error) {
	var rows []models.RecommendationModel
	err := r.db.WithContext(ctx).
		Where("status = ?", prediction.RecommendationStatusPending).
		Order("created_at DESC").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list pending recommendations: %w", err)
	}

	recs := make([]prediction.OptimizationRecommendation, 0, len(rows))
	for i := range rows {
		recs = append(recs, *rows[i].ToDomain())
	}
	return recs, nil
}

// FindByKey returns the most recent recommendation for the natural key
// (ingredient_id, type), or nil when none exists.
func (r *RecommendationRepository) FindByKey(ctx context.Context, ingredientID uuid.UUID, t prediction.RecommendationType) (*prediction.OptimizationRecommendation, error) {
	var model models.RecommendationModel
	err := r.db.WithContext(ctx).
		Where("ingredient_id = ? AND type = ?", ingredientID, t).
		Order("created_at DESC").
		First(&model).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find recommendation by key: %w", err)
	}
	return model.ToDomain(), nil
}

// Insert stores a new recommendation.
func (r *RecommendationRepository) Insert(ctx context.Context, rec *prediction.OptimizationRecommendation) error {
	var model models.RecommendationModel
	model.FromDomain(rec)

	if err := r.db.WithContext(ctx).Create(&model).Error; err != nil {
		return fmt.Errorf("failed to insert recommendation: %w", err)
	}
	return nil
}

// Update persists recommendation state changes.
func (r *RecommendationRepository) Update(ctx context.Context, rec *prediction.OptimizationRecommendation) error {
	var model models.RecommendationModel
	model.FromDomain(rec)

	if err := r.db.WithContext(ctx).Save(&model).Error; err != nil {
		return fmt.Errorf("failed to update recommendation: %w", err)
	}
	return nil
}
