package prediction

import (
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/retailops/backend/internal/domain/shared"
)

// AssociationRule is one source→target market-basket relationship with its
// support, confidence and lift scores.
type AssociationRule struct {
	shared.BaseEntity
	SourceID   uuid.UUID
	TargetID   uuid.UUID
	Support    float64
	Confidence float64
	Lift       float64
}

// FilterRules applies the minimum support and confidence thresholds and
// orders the survivors by descending confidence, breaking ties by
// descending lift. The input slice is not modified.
func FilterRules(rules []AssociationRule, minSupport, minConfidence float64) []AssociationRule {
	filtered := make([]AssociationRule, 0, len(rules))
	for _, r := range rules {
		if r.Support < minSupport {
			continue
		}
		if r.Confidence < minConfidence {
			continue
		}
		filtered = append(filtered, r)
	}

	sort.SliceStable(filtered, func(i, j int) bool {
		if filtered[i].Confidence != filtered[j].Confidence {
			return filtered[i].Confidence > filtered[j].Confidence
		}
		return filtered[i].Lift > filtered[j].Lift
	})

	return filtered
}

// AssociationResult is the adapter-facing shape for association mining,
// carrying the same provenance flags as forecasts.
type AssociationResult struct {
	Rules       []AssociationRule
	Cached      bool
	Synthetic   bool
	GeneratedAt time.Time
}

// AnomalyResult is the adapter-facing shape for anomaly detection.
type AnomalyResult struct {
	WindowStart time.Time
	WindowEnd   time.Time
	Anomalies   []AnomalyRecord
	Cached      bool
	Synthetic   bool
	GeneratedAt time.Time
}
