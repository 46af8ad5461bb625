package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	apppred "github.com/retailops/backend/internal/application/prediction"
	"github.com/retailops/backend/internal/interfaces/http/dto"
	"github.com/retailops/backend/internal/interfaces/http/middleware"
)

// PredictionHandler exposes the predictive metrics endpoints.
type PredictionHandler struct {
	BaseHandler
	sales        *apppred.SalesForecastService
	finance      *apppred.FinancialForecastService
	anomalies    *apppred.AnomalyService
	associations *apppred.AssociationService
	optimization *apppred.OptimizationService
}

// NewPredictionHandler creates a new PredictionHandler.
func NewPredictionHandler(
	sales *apppred.SalesForecastService,
	finance *apppred.FinancialForecastService,
	anomalies *apppred.AnomalyService,
	associations *apppred.AssociationService,
	optimization *apppred.OptimizationService,
) *PredictionHandler {
	return &PredictionHandler{
		sales:        sales,
		finance:      finance,
		anomalies:    anomalies,
		associations: associations,
		optimization: optimization,
	}
}

// RegisterRoutes registers prediction routes
func (h *PredictionHandler) RegisterRoutes(rg *gin.RouterGroup) {
	predictions := rg.Group("/predictions")
	{
		predictions.GET("/sales-forecast", h.SalesForecast)
		predictions.GET("/financial-forecast", h.FinancialForecast)
		predictions.GET("/inventory-anomalies", h.InventoryAnomalies)
		predictions.GET("/associations", h.Associations)

		recommendations := predictions.Group("/recommendations")
		{
			recommendations.GET("", h.PendingRecommendations)
			recommendations.POST("/generate", h.GenerateRecommendations)
			recommendations.POST("/:id/apply", h.ApplyRecommendation)
		}
	}
}

// SalesForecast returns the sales forecast for a date window, optionally
// scoped to a single product.
//
//	GET /api/v1/predictions/sales-forecast?start_date=2026-02-01&end_date=2026-03-01
func (h *PredictionHandler) SalesForecast(c *gin.Context) {
	var req apppred.SalesForecastRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	resp, err := h.sales.GetForecast(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// FinancialForecast returns the overall financial forecast for a date window.
func (h *PredictionHandler) FinancialForecast(c *gin.Context) {
	var req apppred.FinancialForecastRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	resp, err := h.finance.GetForecast(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// InventoryAnomalies returns anomalies detected inside a date window.
func (h *PredictionHandler) InventoryAnomalies(c *gin.Context) {
	var req apppred.AnomalyDetectionRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	resp, err := h.anomalies.Detect(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Associations returns mined product association rules above the requested
// thresholds.
func (h *PredictionHandler) Associations(c *gin.Context) {
	var req apppred.AssociationMiningRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	resp, err := h.associations.GetRules(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// PendingRecommendations lists recommendations awaiting operator action.
func (h *PredictionHandler) PendingRecommendations(c *gin.Context) {
	recs, err := h.optimization.Pending(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, recs)
}

// GenerateRecommendations scans recent anomalies and creates pending stock
// recommendations.
func (h *PredictionHandler) GenerateRecommendations(c *gin.Context) {
	recs, err := h.optimization.Generate(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, recs)
}

// ApplyRecommendation marks a pending recommendation as applied.
func (h *PredictionHandler) ApplyRecommendation(c *gin.Context) {
	var req dto.IDRequest
	if err := c.ShouldBindUri(&req); err != nil {
		h.BadRequest(c, "Invalid recommendation ID")
		return
	}
	id, err := uuid.Parse(req.ID)
	if err != nil {
		h.BadRequest(c, "Invalid recommendation ID")
		return
	}

	rec, err := h.optimization.Apply(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, rec)
}
