package prediction

import (
	"time"

	"github.com/google/uuid"
	"github.com/retailops/backend/internal/domain/shared"
)

// AnomalySeverity is the three-level classification shown on the dashboard.
type AnomalySeverity string

const (
	SeverityLow    AnomalySeverity = "low"
	SeverityMedium AnomalySeverity = "medium"
	SeverityHigh   AnomalySeverity = "high"
)

// DefaultConfirmedThreshold is the detector score at which an anomaly is
// treated as confirmed.
const DefaultConfirmedThreshold = 0.8

// AnomalyRecord is one detected inventory anomaly, keyed by
// (resource_id, detection window).
type AnomalyRecord struct {
	shared.BaseEntity
	ResourceID    uuid.UUID
	WindowStart   time.Time
	WindowEnd     time.Time
	Score         float64
	Description   string
	FalsePositive bool
	Severity      AnomalySeverity
}

// ClassifySeverity buckets a continuous detector score into a severity
// level. Scores at or above the confirmed threshold are high; anomalies
// marked false-positive by a reviewer are low; everything else is medium.
func ClassifySeverity(score, confirmedThreshold float64, falsePositive bool) AnomalySeverity {
	if confirmedThreshold <= 0 {
		confirmedThreshold = DefaultConfirmedThreshold
	}
	if score >= confirmedThreshold {
		return SeverityHigh
	}
	if falsePositive {
		return SeverityLow
	}
	return SeverityMedium
}
