package prediction

import (
	"time"

	"github.com/google/uuid"

	"github.com/retailops/backend/internal/domain/prediction"
)

// ForecastPointDTO is one series point in API responses.
type ForecastPointDTO struct {
	Date       string   `json:"date"`
	Prediction float64  `json:"prediction"`
	Actual     *float64 `json:"actual,omitempty"`
	LowerBound float64  `json:"lower_bound"`
	UpperBound float64  `json:"upper_bound"`
}

// AccuracyDTO mirrors the stored accuracy metrics.
type AccuracyDTO struct {
	MAPE              float64                        `json:"mape"`
	RMSE              float64                        `json:"rmse"`
	OverallAccuracy   float64                        `json:"overall_accuracy"`
	FeatureImportance []prediction.FeatureImportance `json:"feature_importance,omitempty"`
}

// ForecastResponse is the shared response shape for the sales and financial
// forecast use cases. Synthetic results are flagged so the UI can show a
// soft "estimated data" notice.
type ForecastResponse struct {
	ForecastType string             `json:"forecast_type"`
	ResourceType string             `json:"resource_type"`
	ResourceID   *uuid.UUID         `json:"resource_id,omitempty"`
	RangeStart   string             `json:"range_start"`
	RangeEnd     string             `json:"range_end"`
	Series       []ForecastPointDTO `json:"series"`
	Accuracy     AccuracyDTO        `json:"accuracy"`
	Cached       bool               `json:"cached"`
	Synthetic    bool               `json:"synthetic"`
	GeneratedAt  time.Time          `json:"generated_at"`
}

const dateLayout = "2006-01-02"

func forecastResponse(result *prediction.ForecastResult) *ForecastResponse {
	series := make([]ForecastPointDTO, 0, len(result.Series))
	for _, p := range result.Series {
		series = append(series, ForecastPointDTO{
			Date:       p.Date.Format(dateLayout),
			Prediction: p.Prediction,
			Actual:     p.Actual,
			LowerBound: p.LowerBound,
			UpperBound: p.UpperBound,
		})
	}
	return &ForecastResponse{
		ForecastType: string(result.Key.Type),
		ResourceType: result.Key.ResourceType,
		ResourceID:   result.Key.ResourceID,
		RangeStart:   result.RangeStart.Format(dateLayout),
		RangeEnd:     result.RangeEnd.Format(dateLayout),
		Series:       series,
		Accuracy: AccuracyDTO{
			MAPE:              result.Accuracy.MAPE,
			RMSE:              result.Accuracy.RMSE,
			OverallAccuracy:   result.Accuracy.OverallAccuracy,
			FeatureImportance: result.Accuracy.FeatureImportance,
		},
		Cached:      result.Cached,
		Synthetic:   result.Synthetic,
		GeneratedAt: result.GeneratedAt,
	}
}

// AnomalyDTO is one detected anomaly in API responses.
type AnomalyDTO struct {
	ID          uuid.UUID `json:"id"`
	ResourceID  uuid.UUID `json:"resource_id"`
	Score       float64   `json:"score"`
	Severity    string    `json:"severity"`
	Description string    `json:"description"`
}

// AnomalyResponse is the inventory anomaly use case's response shape.
type AnomalyResponse struct {
	WindowStart string       `json:"window_start"`
	WindowEnd   string       `json:"window_end"`
	Anomalies   []AnomalyDTO `json:"anomalies"`
	HighCount   int          `json:"high_count"`
	Cached      bool         `json:"cached"`
	Synthetic   bool         `json:"synthetic"`
	GeneratedAt time.Time    `json:"generated_at"`
}

// AssociationRuleDTO is one mined rule in API responses.
type AssociationRuleDTO struct {
	SourceID   uuid.UUID `json:"source_id"`
	TargetID   uuid.UUID `json:"target_id"`
	Support    float64   `json:"support"`
	Confidence float64   `json:"confidence"`
	Lift       float64   `json:"lift"`
}

// AssociationResponse is the product association use case's response shape.
type AssociationResponse struct {
	Rules       []AssociationRuleDTO `json:"rules"`
	Cached      bool                 `json:"cached"`
	Synthetic   bool                 `json:"synthetic"`
	GeneratedAt time.Time            `json:"generated_at"`
}

// RecommendationDTO is one optimization recommendation in API responses.
type RecommendationDTO struct {
	ID                uuid.UUID  `json:"id"`
	IngredientID      uuid.UUID  `json:"ingredient_id"`
	Type              string     `json:"type"`
	Status            string     `json:"status"`
	SuggestedQuantity string     `json:"suggested_quantity"`
	EstimatedImpact   string     `json:"estimated_impact"`
	Reason            string     `json:"reason"`
	CreatedAt         time.Time  `json:"created_at"`
	AppliedAt         *time.Time `json:"applied_at,omitempty"`
}

func recommendationDTO(rec *prediction.OptimizationRecommendation) RecommendationDTO {
	return RecommendationDTO{
		ID:                rec.ID,
		IngredientID:      rec.IngredientID,
		Type:              string(rec.Type),
		Status:            string(rec.Status),
		SuggestedQuantity: rec.SuggestedQuantity.String(),
		EstimatedImpact:   rec.EstimatedImpact.String(),
		Reason:            rec.Reason,
		CreatedAt:         rec.CreatedAt,
		AppliedAt:         rec.AppliedAt,
	}
}
