package prediction

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// ForecastRepository persists forecast records. Inserts append; history is
// retained for audit and only the newest record per key is ever read by the
// cache path. A missing record is reported as (nil, nil), not an error.
type ForecastRepository interface {
	// FindLatest returns the most recently created record for the key, or
	// nil when none exists.
	FindLatest(ctx context.Context, key ForecastKey) (*ForecastRecord, error)

	// Insert appends a new record; it never overwrites history.
	Insert(ctx context.Context, record *ForecastRecord) error

	// PurgeOlderThan deletes records of the given type older than age,
	// always keeping the newest record per key. Returns rows deleted.
	PurgeOlderThan(ctx context.Context, t ForecastType, age time.Duration) (int64, error)
}

// ModelRegistry tracks one active model descriptor per forecast type.
type ModelRegistry interface {
	// GetActive returns the active model for the type, or nil when none
	// has been registered yet.
	GetActive(ctx context.Context, t ForecastType) (*ModelRecord, error)

	// UpsertActive updates the active record in place, creating it on
	// first use. It never creates a second active row for a type.
	UpsertActive(ctx context.Context, t ForecastType, lastTrained time.Time, accuracy float64, parameters map[string]any) (*ModelRecord, error)
}

// AnomalyRepository persists anomaly detection runs keyed by detection
// window.
type AnomalyRepository interface {
	// FindLatestRun returns the anomalies of the most recent run covering
	// the window, or nil when none exists. The returned time is the run's
	// creation instant, used for staleness evaluation.
	FindLatestRun(ctx context.Context, windowStart, windowEnd time.Time) ([]AnomalyRecord, time.Time, error)

	// InsertRun appends one detection run.
	InsertRun(ctx context.Context, anomalies []AnomalyRecord) error
}

// AssociationRepository persists mined association rules as runs.
type AssociationRepository interface {
	// FindLatestRun returns the most recent mining run and its creation
	// instant, or nil when none exists.
	FindLatestRun(ctx context.Context) ([]AssociationRule, time.Time, error)

	// InsertRun appends one mining run.
	InsertRun(ctx context.Context, rules []AssociationRule) error

	// PurgeOlderThan bounds table growth by deleting runs older than age,
	// never the current one. Returns rows deleted.
	PurgeOlderThan(ctx context.Context, age time.Duration) (int64, error)
}

// RecommendationRepository persists optimization recommendations keyed by
// (ingredient_id, recommendation_type).
type RecommendationRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*OptimizationRecommendation, error)
	FindPending(ctx context.Context) ([]OptimizationRecommendation, error)
	FindByKey(ctx context.Context, ingredientID uuid.UUID, t RecommendationType) (*OptimizationRecommendation, error)
	Insert(ctx context.Context, rec *OptimizationRecommendation) error
	Update(ctx context.Context, rec *OptimizationRecommendation) error
}

// ForecastCache is the hot read-through tier in front of ForecastRepository.
// Implementations must treat read errors as misses at the call site; a
// cache failure never aborts a user-facing request.
type ForecastCache interface {
	Get(ctx context.Context, key ForecastKey) (*ForecastRecord, error)
	Set(ctx context.Context, key ForecastKey, record *ForecastRecord, ttl time.Duration) error
	Delete(ctx context.Context, key ForecastKey) error
	Close() error
}
