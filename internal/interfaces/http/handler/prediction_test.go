package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apppred "github.com/retailops/backend/internal/application/prediction"
	"github.com/retailops/backend/internal/domain/prediction"
	"github.com/retailops/backend/internal/domain/shared"
	"github.com/retailops/backend/internal/interfaces/http/dto"
)

var handlerNow = time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)

type stubProvider struct {
	forecastErr error
}

func (p *stubProvider) GetForecast(_ context.Context, key prediction.ForecastKey, window prediction.Window, _ bool) (*prediction.ForecastResult, error) {
	if p.forecastErr != nil {
		return nil, p.forecastErr
	}
	return &prediction.ForecastResult{
		Key:        key,
		RangeStart: window.StartDate,
		RangeEnd:   window.EndDate.AddDate(0, 0, window.ForecastDays),
		Series: []prediction.ForecastPoint{
			{Date: window.StartDate, Prediction: 3000, LowerBound: 2550, UpperBound: 3450},
		},
		Accuracy:    prediction.AccuracyMetrics{MAPE: 8, RMSE: 120, OverallAccuracy: 92},
		GeneratedAt: handlerNow,
	}, nil
}

func (p *stubProvider) GetAnomalies(_ context.Context, windowStart, windowEnd time.Time, _ float64, _ bool) (*prediction.AnomalyResult, error) {
	return &prediction.AnomalyResult{
		WindowStart: windowStart,
		WindowEnd:   windowEnd,
		Anomalies: []prediction.AnomalyRecord{
			{BaseEntity: shared.NewBaseEntity(), ResourceID: uuid.New(), Score: 0.9, Severity: prediction.SeverityHigh, Description: "usage spike"},
		},
		GeneratedAt: handlerNow,
	}, nil
}

func (p *stubProvider) GetAssociations(context.Context, float64, float64, bool) (*prediction.AssociationResult, error) {
	return &prediction.AssociationResult{
		Rules: []prediction.AssociationRule{
			{SourceID: uuid.New(), TargetID: uuid.New(), Support: 0.2, Confidence: 0.7, Lift: 1.3},
		},
		GeneratedAt: handlerNow,
	}, nil
}

type stubRecommendationRepo struct {
	recs map[uuid.UUID]*prediction.OptimizationRecommendation
}

func newStubRecommendationRepo() *stubRecommendationRepo {
	return &stubRecommendationRepo{recs: make(map[uuid.UUID]*prediction.OptimizationRecommendation)}
}

func (r *stubRecommendationRepo) FindByID(_ context.Context, id uuid.UUID) (*prediction.OptimizationRecommendation, error) {
	return r.recs[id], nil
}

func (r *stubRecommendationRepo) FindPending(context.Context) ([]prediction.OptimizationRecommendation, error) {
	out := make([]prediction.OptimizationRecommendation, 0, len(r.recs))
	for _, rec := range r.recs {
		if rec.Status == prediction.RecommendationStatusPending {
			out = append(out, *rec)
		}
	}
	return out, nil
}

func (r *stubRecommendationRepo) FindByKey(_ context.Context, ingredientID uuid.UUID, t prediction.RecommendationType) (*prediction.OptimizationRecommendation, error) {
	for _, rec := range r.recs {
		if rec.IngredientID == ingredientID && rec.Type == t {
			return rec, nil
		}
	}
	return nil, nil
}

func (r *stubRecommendationRepo) Insert(_ context.Context, rec *prediction.OptimizationRecommendation) error {
	r.recs[rec.ID] = rec
	return nil
}

func (r *stubRecommendationRepo) Update(_ context.Context, rec *prediction.OptimizationRecommendation) error {
	r.recs[rec.ID] = rec
	return nil
}

func newTestRouter(provider apppred.Provider, repo prediction.RecommendationRepository) *gin.Engine {
	gin.SetMode(gin.TestMode)
	engine := gin.New()

	h := NewPredictionHandler(
		apppred.NewSalesForecastService(provider, nil),
		apppred.NewFinancialForecastService(provider, nil),
		apppred.NewAnomalyService(provider, nil),
		apppred.NewAssociationService(provider, nil, nil),
		apppred.NewOptimizationService(provider, repo),
	)

	api := engine.Group("/api/v1")
	h.RegisterRoutes(api)
	return engine
}

func doRequest(t *testing.T, engine *gin.Engine, method, url string) (*httptest.ResponseRecorder, dto.Response) {
	t.Helper()
	req := httptest.NewRequest(method, url, nil)
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	var body dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return w, body
}

func TestSalesForecastEndpoint(t *testing.T) {
	engine := newTestRouter(&stubProvider{}, newStubRecommendationRepo())

	w, body := doRequest(t, engine, http.MethodGet,
		"/api/v1/predictions/sales-forecast?start_date=2026-02-14&end_date=2026-03-15&forecast_days=7")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, body.Success)

	data, err := json.Marshal(body.Data)
	require.NoError(t, err)
	var resp apppred.ForecastResponse
	require.NoError(t, json.Unmarshal(data, &resp))
	assert.Equal(t, "sales", resp.ForecastType)
	assert.Equal(t, "overall", resp.ResourceType)
	require.Len(t, resp.Series, 1)
}

func TestSalesForecastMissingDates(t *testing.T) {
	engine := newTestRouter(&stubProvider{}, newStubRecommendationRepo())

	w, body := doRequest(t, engine, http.MethodGet, "/api/v1/predictions/sales-forecast")

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.False(t, body.Success)
	require.NotNil(t, body.Error)
	assert.Equal(t, dto.ErrCodeValidation, body.Error.Code)
}

func TestSalesForecastValidationErrorMapsTo400(t *testing.T) {
	engine := newTestRouter(&stubProvider{forecastErr: shared.ErrValidation}, newStubRecommendationRepo())

	w, body := doRequest(t, engine, http.MethodGet,
		"/api/v1/predictions/sales-forecast?start_date=2026-03-15&end_date=2026-02-14")

	assert.Equal(t, http.StatusBadRequest, w.Code)
	require.NotNil(t, body.Error)
	assert.Equal(t, dto.ErrCodeValidation, body.Error.Code)
}

func TestInventoryAnomaliesEndpoint(t *testing.T) {
	engine := newTestRouter(&stubProvider{}, newStubRecommendationRepo())

	w, body := doRequest(t, engine, http.MethodGet,
		"/api/v1/predictions/inventory-anomalies?start_date=2026-03-01&end_date=2026-03-15")

	assert.Equal(t, http.StatusOK, w.Code)

	data, err := json.Marshal(body.Data)
	require.NoError(t, err)
	var resp apppred.AnomalyResponse
	require.NoError(t, json.Unmarshal(data, &resp))
	require.Len(t, resp.Anomalies, 1)
	assert.Equal(t, 1, resp.HighCount)
	assert.Equal(t, "high", resp.Anomalies[0].Severity)
}

func TestAssociationsEndpoint(t *testing.T) {
	engine := newTestRouter(&stubProvider{}, newStubRecommendationRepo())

	w, body := doRequest(t, engine, http.MethodGet, "/api/v1/predictions/associations")

	assert.Equal(t, http.StatusOK, w.Code)

	data, err := json.Marshal(body.Data)
	require.NoError(t, err)
	var resp apppred.AssociationResponse
	require.NoError(t, json.Unmarshal(data, &resp))
	require.Len(t, resp.Rules, 1)
	assert.Equal(t, 0.7, resp.Rules[0].Confidence)
}

func TestGenerateAndApplyRecommendation(t *testing.T) {
	repo := newStubRecommendationRepo()
	engine := newTestRouter(&stubProvider{}, repo)

	w, body := doRequest(t, engine, http.MethodPost, "/api/v1/predictions/recommendations/generate")
	assert.Equal(t, http.StatusCreated, w.Code)

	data, err := json.Marshal(body.Data)
	require.NoError(t, err)
	var created []apppred.RecommendationDTO
	require.NoError(t, json.Unmarshal(data, &created))
	require.Len(t, created, 1)
	assert.Equal(t, "reorder", created[0].Type)

	w, _ = doRequest(t, engine, http.MethodPost,
		"/api/v1/predictions/recommendations/"+created[0].ID.String()+"/apply")
	assert.Equal(t, http.StatusOK, w.Code)

	applied := repo.recs[created[0].ID]
	require.NotNil(t, applied)
	assert.Equal(t, prediction.RecommendationStatusApplied, applied.Status)
}

func TestApplyMissingRecommendationReturns404(t *testing.T) {
	engine := newTestRouter(&stubProvider{}, newStubRecommendationRepo())

	w, body := doRequest(t, engine, http.MethodPost,
		"/api/v1/predictions/recommendations/"+uuid.NewString()+"/apply")

	assert.Equal(t, http.StatusNotFound, w.Code)
	require.NotNil(t, body.Error)
	assert.Equal(t, dto.ErrCodeNotFound, body.Error.Code)
}

func TestApplyRecommendationInvalidID(t *testing.T) {
	engine := newTestRouter(&stubProvider{}, newStubRecommendationRepo())

	w, _ := doRequest(t, engine, http.MethodPost,
		"/api/v1/predictions/recommendations/not-a-uuid/apply")

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPendingRecommendationsEndpoint(t *testing.T) {
	repo := newStubRecommendationRepo()
	rec := prediction.NewRecommendation(uuid.New(), prediction.RecommendationTypeReorder,
		decimal.NewFromInt(45), decimal.NewFromInt(180), "Confirmed usage spike")
	require.NoError(t, repo.Insert(context.Background(), rec))

	engine := newTestRouter(&stubProvider{}, repo)
	w, body := doRequest(t, engine, http.MethodGet, "/api/v1/predictions/recommendations")

	assert.Equal(t, http.StatusOK, w.Code)

	data, err := json.Marshal(body.Data)
	require.NoError(t, err)
	var pending []apppred.RecommendationDTO
	require.NoError(t, json.Unmarshal(data, &pending))
	require.Len(t, pending, 1)
	assert.Equal(t, "pending", pending[0].Status)
}
