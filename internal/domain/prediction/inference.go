package prediction

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// ForecastRequest is the payload sent to the inference boundary for the
// sales and financial forecast types.
type ForecastRequest struct {
	StartDate      time.Time  `json:"start_date"`
	EndDate        time.Time  `json:"end_date"`
	ForecastDays   int        `json:"forecast_days"`
	ResourceFilter *uuid.UUID `json:"resource_filter,omitempty"`
}

// InferenceAccuracy is the accuracy block the boundary reports alongside a
// forecast series.
type InferenceAccuracy struct {
	MAPE     float64 `json:"mape"`
	RMSE     float64 `json:"rmse"`
	RSquared float64 `json:"r_squared"`
}

// InferenceForecastResponse is the boundary's answer to a ForecastRequest.
type InferenceForecastResponse struct {
	Series   []ForecastPoint   `json:"series"`
	Accuracy InferenceAccuracy `json:"accuracy"`
}

// AnomalyRequest asks the boundary to scan a window at a given sensitivity.
// Sensitivity is a 0–1 detector threshold; lower values flag more.
type AnomalyRequest struct {
	StartDate   time.Time `json:"start_date"`
	EndDate     time.Time `json:"end_date"`
	Sensitivity float64   `json:"sensitivity"`
}

// InferredAnomaly is one raw detection from the boundary. The continuous
// score is bucketed into a severity level by the anomaly adapter.
type InferredAnomaly struct {
	ResourceID  uuid.UUID `json:"resource_id"`
	Score       float64   `json:"score"`
	Description string    `json:"description"`
}

// InferenceAnomalyResponse is the boundary's answer to an AnomalyRequest.
type InferenceAnomalyResponse struct {
	Anomalies []InferredAnomaly `json:"anomalies"`
}

// AssociationRequest asks the boundary to mine market-basket rules.
type AssociationRequest struct {
	MinSupport     float64    `json:"min_support"`
	MinConfidence  float64    `json:"min_confidence"`
	ResourceFilter *uuid.UUID `json:"resource_filter,omitempty"`
}

// RuleTarget is one mined consequent with its scores.
type RuleTarget struct {
	TargetID   uuid.UUID `json:"target_id"`
	Support    float64   `json:"support"`
	Confidence float64   `json:"confidence"`
	Lift       float64   `json:"lift"`
}

// InferredRuleGroup groups the targets mined for one source item.
type InferredRuleGroup struct {
	SourceID uuid.UUID    `json:"source_id"`
	Targets  []RuleTarget `json:"targets"`
}

// InferenceAssociationResponse is the boundary's answer to an
// AssociationRequest.
type InferenceAssociationResponse struct {
	Rules []InferredRuleGroup `json:"rules"`
}

// InferenceClient is the external inference boundary. The model behind it
// is opaque; any returned error triggers the synthetic fallback path.
type InferenceClient interface {
	Forecast(ctx context.Context, req ForecastRequest) (*InferenceForecastResponse, error)
	DetectAnomalies(ctx context.Context, req AnomalyRequest) (*InferenceAnomalyResponse, error)
	MineAssociations(ctx context.Context, req AssociationRequest) (*InferenceAssociationResponse, error)
}
