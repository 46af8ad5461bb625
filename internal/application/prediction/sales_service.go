package prediction

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/retailops/backend/internal/domain/prediction"
)

// Provider is the orchestrator contract the use-case adapters depend on.
type Provider interface {
	GetForecast(ctx context.Context, key prediction.ForecastKey, window prediction.Window, forceRefresh bool) (*prediction.ForecastResult, error)
	GetAnomalies(ctx context.Context, windowStart, windowEnd time.Time, sensitivity float64, forceRefresh bool) (*prediction.AnomalyResult, error)
	GetAssociations(ctx context.Context, minSupport, minConfidence float64, forceRefresh bool) (*prediction.AssociationResult, error)
}

// DefaultForecastDays is the horizon used when a request leaves it unset.
const DefaultForecastDays = 7

// SalesForecastRequest filters the sales forecast, optionally scoped to one
// product.
type SalesForecastRequest struct {
	StartDate    time.Time  `form:"start_date" time_format:"2006-01-02" binding:"required"`
	EndDate      time.Time  `form:"end_date" time_format:"2006-01-02" binding:"required"`
	ForecastDays int        `form:"forecast_days"`
	ProductID    *uuid.UUID `form:"product_id"`
	ForceRefresh bool       `form:"force_refresh"`
}

// SalesForecastService adapts sales forecast requests onto the orchestrator.
type SalesForecastService struct {
	provider Provider
	logger   *zap.Logger
}

// NewSalesForecastService creates a new SalesForecastService.
func NewSalesForecastService(provider Provider, logger *zap.Logger) *SalesForecastService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SalesForecastService{provider: provider, logger: logger}
}

// GetForecast returns the sales forecast for the requested window, scoped to
// a single product when ProductID is set and to overall revenue otherwise.
func (s *SalesForecastService) GetForecast(ctx context.Context, req SalesForecastRequest) (*ForecastResponse, error) {
	key := prediction.ForecastKey{
		Type:         prediction.ForecastTypeSales,
		ResourceType: prediction.ResourceTypeOverall,
	}
	if req.ProductID != nil {
		key.ResourceType = "product"
		key.ResourceID = req.ProductID
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

	s.logger.Debug("Sales forecast served",
		zap.String("key", key.String()),
		zap.Bool("cached", result.Cached),
		zap.Bool("synthetic", result.Synthetic))
	return forecastResponse(result), nil
}
