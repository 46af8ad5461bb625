package prediction

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/retailops/backend/internal/domain/prediction"
	"github.com/retailops/backend/internal/domain/shared"
)

// recommendationLookback is how far back the recommender scans for
// anomalies when generating suggestions.
const recommendationLookback = 14 * 24 * time.Hour

// OptimizationService turns recent anomaly detections into stock
// recommendations and drives their pending -> applied lifecycle.
type OptimizationService struct {
	provider Provider
	repo     prediction.RecommendationRepository
	clock    shared.Clock
	logger   *zap.Logger
}

// OptimizationOption configures an OptimizationService.
type OptimizationOption func(*OptimizationService)

// WithOptimizationClock overrides the service clock.
func WithOptimizationClock(clock shared.Clock) OptimizationOption {
	return func(s *OptimizationService) {
		s.clock = clock
	}
}

// WithOptimizationLogger sets the service logger.
func WithOptimizationLogger(logger *zap.Logger) OptimizationOption {
	return func(s *OptimizationService) {
		s.logger = logger
	}
}

// NewOptimizationService creates a new OptimizationService.
func NewOptimizationService(provider Provider, repo prediction.RecommendationRepository, opts ...OptimizationOption) *OptimizationService {
	s := &OptimizationService{
		provider: provider,
		repo:     repo,
		clock:    shared.SystemClock{},
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Generate scans the recent anomaly window and creates one pending
// recommendation per (ingredient, type) that does not already have one.
// Confirmed usage spikes suggest a reorder; unconfirmed drift suggests a
// reduction. Already-recommended keys are skipped, not duplicated.
func (s *OptimizationService) Generate(ctx context.Context) ([]RecommendationDTO, error) {
	now := s.clock.Now()
	windowStart := now.Add(-recommendationLookback)

	result, err := s.provider.GetAnomalies(ctx, windowStart, now, DefaultSensitivity, false)
	if err != nil {
		return nil, err
	}

	created := make([]RecommendationDTO, 0, len(result.Anomalies))
	for _, anomaly := range result.Anomalies {
		rec := s.recommendationFor(anomaly)
		if rec == nil {
			continue
		}

		existing, err := s.repo.FindByKey(ctx, rec.IngredientID, rec.Type)
		if err != nil {
			s.logger.Warn("Recommendation lookup failed, skipping anomaly",
				zap.String("ingredient_id", rec.IngredientID.String()),
				zap.Error(err))
			continue
		}
		if existing != nil && existing.Status == prediction.RecommendationStatusPending {
			continue
		}

		if err := s.repo.Insert(ctx, rec); err != nil {
			s.logger.Error("Recommendation persistence failed",
				zap.String("ingredient_id", rec.IngredientID.String()),
				zap.Error(err))
			continue
		}
		created = append(created, recommendationDTO(rec))
	}

	s.logger.Info("Optimization recommendations generated",
		zap.Int("anomalies", len(result.Anomalies)),
		zap.Int("created", len(created)))
	return created, nil
}

// recommendationFor maps one anomaly to a suggestion. Low severity means a
// reviewer already dismissed the signal, so nothing is suggested.
func (s *OptimizationService) recommendationFor(anomaly prediction.AnomalyRecord) *prediction.OptimizationRecommendation {
	score := decimal.NewFromFloat(anomaly.Score)

	switch anomaly.Severity {
	case prediction.SeverityHigh:
		quantity := score.Mul(decimal.NewFromInt(50)).Round(0)
		impact := score.Mul(decimal.NewFromInt(200)).Round(2)
		return prediction.NewRecommendation(anomaly.ResourceID, prediction.RecommendationTypeReorder,
			quantity, impact,
			fmt.Sprintf("Confirmed usage spike (score %.2f): %s", anomaly.Score, anomaly.Description))
	case prediction.SeverityMedium:
		quantity := score.Mul(decimal.NewFromInt(20)).Round(0)
		impact := score.Mul(decimal.NewFromInt(80)).Round(2)
		return prediction.NewRecommendation(anomaly.ResourceID, prediction.RecommendationTypeReduce,
			quantity, impact,
			fmt.Sprintf("Usage drifting below baseline (score %.2f): %s", anomaly.Score, anomaly.Description))
	default:
		return nil
	}
}

// Pending lists recommendations awaiting operator action.
func (s *OptimizationService) Pending(ctx context.Context) ([]RecommendationDTO, error) {
	recs, err := s.repo.FindPending(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]RecommendationDTO, 0, len(recs))
	for i := range recs {
		out = append(out, recommendationDTO(&recs[i]))
	}
	return out, nil
}

// Apply marks a recommendation as applied. Applying a missing or
// already-applied recommendation is an error.
func (s *OptimizationService) Apply(ctx context.Context, id uuid.UUID) (*RecommendationDTO, error) {
	rec, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, shared.ErrNotFound
	}

	if err := rec.Apply(s.clock.Now()); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, rec); err != nil {
		return nil, err
	}

	s.logger.Info("Recommendation applied",
		zap.String("id", rec.ID.String()),
		zap.String("type", string(rec.Type)))
	dto := recommendationDTO(rec)
	return &dto, nil
}
