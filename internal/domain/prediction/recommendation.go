package prediction

import (
	"time"

	"github.com/google/uuid"
	"github.com/retailops/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// RecommendationType classifies what an optimization recommendation asks
// the operator to do with an ingredient's stock.
type RecommendationType string

const (
	RecommendationTypeReorder RecommendationType = "reorder"
	RecommendationTypeReduce  RecommendationType = "reduce"
)

// RecommendationStatus is the one-way recommendation state machine:
// pending -> applied, with no revert transition.
type RecommendationStatus string

const (
	RecommendationStatusPending RecommendationStatus = "pending"
	RecommendationStatusApplied RecommendationStatus = "applied"
)

// OptimizationRecommendation suggests a stock adjustment for one
// ingredient, keyed by (ingredient_id, recommendation_type).
type OptimizationRecommendation struct {
	shared.BaseEntity
	IngredientID      uuid.UUID
	Type              RecommendationType
	Status            RecommendationStatus
	SuggestedQuantity decimal.Decimal
	EstimatedImpact   decimal.Decimal
	Reason            string
	AppliedAt         *time.Time
}

// Apply transitions the recommendation to applied. Applying twice, or
// applying anything not pending, is an invalid-state error.
func (r *OptimizationRecommendation) Apply(now time.Time) error {
	if r.Status != RecommendationStatusPending {
		return shared.ErrInvalidState
	}
	r.Status = RecommendationStatusApplied
	r.AppliedAt = &now
	r.UpdatedAt = now
	return nil
}

// NewRecommendation creates a pending recommendation.
func NewRecommendation(ingredientID uuid.UUID, t RecommendationType, quantity, impact decimal.Decimal, reason string) *OptimizationRecommendation {
	return &OptimizationRecommendation{
		BaseEntity:        shared.NewBaseEntity(),
		IngredientID:      ingredientID,
		Type:              t,
		Status:            RecommendationStatusPending,
		SuggestedQuantity: quantity,
		EstimatedImpact:   impact,
		Reason:            reason,
	}
}
