package prediction

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/retailops/backend/internal/domain/prediction"
)

// FinancialForecastRequest filters the financial forecast. Financial
// forecasts are always aggregate; there is no per-resource scope.
type FinancialForecastRequest struct {
	StartDate    time.Time `form:"start_date" time_format:"2006-01-02" binding:"required"`
	EndDate      time.Time `form:"end_date" time_format:"2006-01-02" binding:"required"`
	ForecastDays int       `form:"forecast_days"`
	ForceRefresh bool      `form:"force_refresh"`
}

// FinancialForecastService adapts financial forecast requests onto the
// orchestrator.
type FinancialForecastService struct {
	provider Provider
	logger   *zap.Logger
}

// NewFinancialForecastService creates a new FinancialForecastService.
func NewFinancialForecastService(provider Provider, logger *zap.Logger) *FinancialForecastService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FinancialForecastService{provider: provider, logger: logger}
}

// GetForecast returns the overall financial forecast for the requested
// window.
func (s *FinancialForecastService) GetForecast(ctx context.Context, req FinancialForecastRequest) (*ForecastResponse, error) {
	key := prediction.ForecastKey{
		Type:         prediction.ForecastTypeFinancial,
		ResourceType: prediction.ResourceTypeOverall,
	}

	window := prediction.Window{
		StartDate:    req.StartDate,
		EndDate:      req.EndDate,
		ForecastDays: req.ForecastDays,
	}
	if window.ForecastDays == 0 {
		window.ForecastDays = DefaultForecastDays
	}

	result, err := s.provider.GetForecast(ctx, key, window, req.ForceRefresh)
	if err != nil {
		return nil, err
	}

	s.logger.Debug("Financial forecast served",
		zap.Bool("cached", result.Cached),
		zap.Bool("synthetic", result.Synthetic))
	return forecastResponse(result), nil
}
