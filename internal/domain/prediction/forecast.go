package prediction

import (
	"time"

	"github.com/google/uuid"
	"github.com/retailops/backend/internal/domain/shared"
)

// ForecastPoint is one day of a forecast series. Actual is nil for future
// days where no ground truth exists yet.
type ForecastPoint struct {
	Date       time.Time `json:"date"`
	Prediction float64   `json:"prediction"`
	Actual     *float64  `json:"actual,omitempty"`
	LowerBound float64   `json:"lower_bound"`
	UpperBound float64   `json:"upper_bound"`
}

// FeatureImportance attributes a share of the model's signal to one input
// feature. Importances are percentages and sum to at most 100.
type FeatureImportance struct {
	Feature    string  `json:"feature"`
	Importance float64 `json:"importance"`
}

// AccuracyMetrics summarizes how well a forecast tracked reality.
type AccuracyMetrics struct {
	MAPE              float64             `json:"mape"`
	RMSE              float64             `json:"rmse"`
	OverallAccuracy   float64             `json:"overall_accuracy"`
	FeatureImportance []FeatureImportance `json:"feature_importance,omitempty"`
}

// ForecastRecord is the persisted result of one forecast run. Records are
// append-only; the newest per key is the one the cache path reads.
type ForecastRecord struct {
	shared.BaseEntity
	Type         ForecastType
	ResourceType string
	ResourceID   *uuid.UUID
	RangeStart   time.Time
	RangeEnd     time.Time
	Series       []ForecastPoint
	Accuracy     AccuracyMetrics
}

// Key returns the record's cache key.
func (r *ForecastRecord) Key() ForecastKey {
	return ForecastKey{Type: r.Type, ResourceType: r.ResourceType, ResourceID: r.ResourceID}
}

// Validate enforces the series invariants: strictly increasing dates with no
// gaps, and lower_bound <= prediction <= upper_bound at every point.
func (r *ForecastRecord) Validate() error {
	if !r.Type.IsValid() {
		return shared.ErrValidation
	}
	for i, p := range r.Series {
		if p.LowerBound > p.Prediction || p.Prediction > p.UpperBound {
			return shared.ErrValidation
		}
		if i == 0 {
			continue
		}
		prev := r.Series[i-1].Date
		if !p.Date.After(prev) {
			return shared.ErrValidation
		}
		if p.Date.Sub(prev) > 24*time.Hour {
			return shared.ErrValidation
		}
	}
	return nil
}

// ForecastResult is what the orchestrator hands back to the use-case
// adapters. The same shape is delivered on all three paths; adapters only
// inspect the Cached/Synthetic provenance flags.
type ForecastResult struct {
	Key         ForecastKey
	RangeStart  time.Time
	RangeEnd    time.Time
	Series      []ForecastPoint
	Accuracy    AccuracyMetrics
	Cached      bool
	Synthetic   bool
	GeneratedAt time.Time
}

// ResultFromRecord converts a stored record into the adapter-facing shape.
func ResultFromRecord(r *ForecastRecord, cached bool) *ForecastResult {
	return &ForecastResult{
		Key:         r.Key(),
		RangeStart:  r.RangeStart,
		RangeEnd:    r.RangeEnd,
		Series:      r.Series,
		Accuracy:    r.Accuracy,
		Cached:      cached,
		GeneratedAt: r.CreatedAt,
	}
}
