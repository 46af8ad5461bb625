package prediction

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/retailops/backend/internal/domain/prediction"
)

// DefaultSensitivity is the detector threshold used when a request leaves
// it unset.
const DefaultSensitivity = 0.5

// AnomalyDetectionRequest selects the detection window and sensitivity.
type AnomalyDetectionRequest struct {
	StartDate    time.Time `form:"start_date" time_format:"2006-01-02" binding:"required"`
	EndDate      time.Time `form:"end_date" time_format:"2006-01-02" binding:"required"`
	Sensitivity  float64   `form:"sensitivity"`
	ForceRefresh bool      `form:"force_refresh"`
}

// AnomalyService adapts inventory anomaly requests onto the orchestrator.
type AnomalyService struct {
	provider Provider
	logger   *zap.Logger
}

// NewAnomalyService creates a new AnomalyService.
func NewAnomalyService(provider Provider, logger *zap.Logger) *AnomalyService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AnomalyService{provider: provider, logger: logger}
}

// Detect returns the anomalies flagged inside the window, each bucketed
// into a severity level.
func (s *AnomalyService) Detect(ctx context.Context, req AnomalyDetectionRequest) (*AnomalyResponse, error) {
	sensitivity := req.Sensitivity
	if sensitivity == 0 {
		sensitivity = DefaultSensitivity
	}

	result, err := s.provider.GetAnomalies(ctx, req.StartDate, req.EndDate, sensitivity, req.ForceRefresh)
	if err != nil {
		return nil, err
	}

	anomalies := make([]AnomalyDTO, 0, len(result.Anomalies))
	highCount := 0
	for _, a := range result.Anomalies {
		if a.Severity == prediction.SeverityHigh {
			highCount++
		}
		anomalies = append(anomalies, AnomalyDTO{
			ID:          a.ID,
			ResourceID:  a.ResourceID,
			Score:       a.Score,
			Severity:    string(a.Severity),
			Description: a.Description,
		})
	}

	s.logger.Debug("Anomaly detection served",
		zap.Int("count", len(anomalies)),
		zap.Int("high", highCount),
		zap.Bool("cached", result.Cached),
		zap.Bool("synthetic", result.Synthetic))

	return &AnomalyResponse{
		WindowStart: result.WindowStart.Format(dateLayout),
		WindowEnd:   result.WindowEnd.Format(dateLayout),
		Anomalies:   anomalies,
		HighCount:   highCount,
		Cached:      result.Cached,
		Synthetic:   result.Synthetic,
		GeneratedAt: result.GeneratedAt,
	}, nil
}
