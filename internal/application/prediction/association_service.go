package prediction

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/retailops/backend/internal/domain/prediction"
)

// Default mining thresholds used when a request leaves them unset.
const (
	DefaultMinSupport    = 0.1
	DefaultMinConfidence = 0.5
)

// AssociationMiningRequest selects the rule thresholds.
type AssociationMiningRequest struct {
	MinSupport    float64 `form:"min_support"`
	MinConfidence float64 `form:"min_confidence"`
	ForceRefresh  bool    `form:"force_refresh"`
}

// AssociationService adapts product association requests onto the
// orchestrator and owns retention of historical mining runs.
type AssociationService struct {
	provider Provider
	repo     prediction.AssociationRepository
	logger   *zap.Logger
}

// NewAssociationService creates a new AssociationService.
func NewAssociationService(provider Provider, repo prediction.AssociationRepository, logger *zap.Logger) *AssociationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AssociationService{provider: provider, repo: repo, logger: logger}
}

// GetRules returns the mined rules above the thresholds, ordered by
// confidence with descending lift as the tie-break.
func (s *AssociationService) GetRules(ctx context.Context, req AssociationMiningRequest) (*AssociationResponse, error) {
	minSupport := req.MinSupport
	if minSupport == 0 {
		minSupport = DefaultMinSupport
	}
	minConfidence := req.MinConfidence
	if minConfidence == 0 {
		minConfidence = DefaultMinConfidence
	}

	result, err := s.provider.GetAssociations(ctx, minSupport, minConfidence, req.ForceRefresh)
	if err != nil {
		return nil, err
	}

	rules := make([]AssociationRuleDTO, 0, len(result.Rules))
	for _, r := range result.Rules {
		rules = append(rules, AssociationRuleDTO{
			SourceID:   r.SourceID,
			TargetID:   r.TargetID,
			Support:    r.Support,
			Confidence: r.Confidence,
			Lift:       r.Lift,
		})
	}

	s.logger.Debug("Association rules served",
		zap.Int("count", len(rules)),
		zap.Bool("cached", result.Cached),
		zap.Bool("synthetic", result.Synthetic))

	return &AssociationResponse{
		Rules:       rules,
		Cached:      result.Cached,
		Synthetic:   result.Synthetic,
		GeneratedAt: result.GeneratedAt,
	}, nil
}

// PurgeHistory deletes mining runs older than age so the rules table does
// not grow without bound. The current run is always kept.
func (s *AssociationService) PurgeHistory(ctx context.Context, age time.Duration) (int64, error) {
	deleted, err := s.repo.PurgeOlderThan(ctx, age)
	if err != nil {
		return 0, err
	}
	if deleted > 0 {
		s.logger.Info("Purged association rule history", zap.Int64("deleted", deleted))
	}
	return deleted, nil
}
