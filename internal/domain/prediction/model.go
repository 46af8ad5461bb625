package prediction

import (
	"time"

	"github.com/retailops/backend/internal/domain/shared"
)

// ModelRecord describes the active model for one forecast type. The
// registry guarantees at most one active record per type: the record is
// created on the first successful inference and updated in place afterwards.
type ModelRecord struct {
	shared.BaseEntity
	Type        ForecastType
	IsActive    bool
	LastTrained time.Time
	Accuracy    float64
	Parameters  map[string]any
}

// Touch records a successful inference run: refreshed training time and the
// rolling accuracy reported by the boundary.
func (m *ModelRecord) Touch(lastTrained time.Time, accuracy float64, parameters map[string]any) {
	m.LastTrained = lastTrained
	m.Accuracy = clampAccuracy(accuracy)
	if parameters != nil {
		m.Parameters = parameters
	}
	m.UpdatedAt = lastTrained
}

// NewModelRecord creates the first active model record for a type.
func NewModelRecord(t ForecastType, lastTrained time.Time, accuracy float64, parameters map[string]any) *ModelRecord {
	rec := &ModelRecord{
		BaseEntity: shared.NewBaseEntity(),
		Type:       t,
		IsActive:   true,
		Parameters: map[string]any{},
	}
	rec.Touch(lastTrained, accuracy, parameters)
	return rec
}

func clampAccuracy(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
