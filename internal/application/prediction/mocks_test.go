package prediction

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/retailops/backend/internal/domain/prediction"
)

type mockForecastRepo struct {
	mock.Mock
}

func (m *mockForecastRepo) FindLatest(ctx context.Context, key prediction.ForecastKey) (*prediction.ForecastRecord, error) {
	args := m.Called(ctx, key)
	if rec := args.Get(0); rec != nil {
		return rec.(*prediction.ForecastRecord), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockForecastRepo) Insert(ctx context.Context, record *prediction.ForecastRecord) error {
	args := m.Called(ctx, record)
	return args.Error(0)
}

func (m *mockForecastRepo) PurgeOlderThan(ctx context.Context, t prediction.ForecastType, age time.Duration) (int64, error) {
	args := m.Called(ctx, t, age)
	return args.Get(0).(int64), args.Error(1)
}

type mockModelRegistry struct {
	mock.Mock
}

func (m *mockModelRegistry) GetActive(ctx context.Context, t prediction.ForecastType) (*prediction.ModelRecord, error) {
	args := m.Called(ctx, t)
	if rec := args.Get(0); rec != nil {
		return rec.(*prediction.ModelRecord), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockModelRegistry) UpsertActive(ctx context.Context, t prediction.ForecastType, lastTrained time.Time, accuracy float64, parameters map[string]any) (*prediction.ModelRecord, error) {
	args := m.Called(ctx, t, lastTrained, accuracy, parameters)
	if rec := args.Get(0); rec != nil {
		return rec.(*prediction.ModelRecord), args.Error(1)
	}
	return nil, args.Error(1)
}

type mockAnomalyRepo struct {
	mock.Mock
}

func (m *mockAnomalyRepo) FindLatestRun(ctx context.Context, windowStart, windowEnd time.Time) ([]prediction.AnomalyRecord, time.Time, error) {
	args := m.Called(ctx, windowStart, windowEnd)
	var records []prediction.AnomalyRecord
	if v := args.Get(0); v != nil {
		records = v.([]prediction.AnomalyRecord)
	}
	return records, args.Get(1).(time.Time), args.Error(2)
}

func (m *mockAnomalyRepo) InsertRun(ctx context.Context, anomalies []prediction.AnomalyRecord) error {
	args := m.Called(ctx, anomalies)
	return args.Error(0)
}

type mockAssociationRepo struct {
	mock.Mock
}

func (m *mockAssociationRepo) FindLatestRun(ctx context.Context) ([]prediction.AssociationRule, time.Time, error) {
	args := m.Called(ctx)
	var rules []prediction.AssociationRule
	if v := args.Get(0); v != nil {
		rules = v.([]prediction.AssociationRule)
	}
	return rules, args.Get(1).(time.Time), args.Error(2)
}

func (m *mockAssociationRepo) InsertRun(ctx context.Context, rules []prediction.AssociationRule) error {
	args := m.Called(ctx, rules)
	return args.Error(0)
}

func (m *mockAssociationRepo) PurgeOlderThan(ctx context.Context, age time.Duration) (int64, error) {
	args := m.Called(ctx, age)
	return args.Get(0).(int64), args.Error(1)
}

type mockRecommendationRepo struct {
	mock.Mock
}

func (m *mockRecommendationRepo) FindByID(ctx context.Context, id uuid.UUID) (*prediction.OptimizationRecommendation, error) {
	args := m.Called(ctx, id)
	if rec := args.Get(0); rec != nil {
		return rec.(*prediction.OptimizationRecommendation), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockRecommendationRepo) FindPending(ctx context.Context) ([]prediction.OptimizationRecommendation, error) {
	args := m.Called(ctx)
	if recs := args.Get(0); recs != nil {
		return recs.([]prediction.OptimizationRecommendation), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockRecommendationRepo) FindByKey(ctx context.Context, ingredientID uuid.UUID, t prediction.RecommendationType) (*prediction.OptimizationRecommendation, error) {
	args := m.Called(ctx, ingredientID, t)
	if rec := args.Get(0); rec != nil {
		return rec.(*prediction.OptimizationRecommendation), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockRecommendationRepo) Insert(ctx context.Context, rec *prediction.OptimizationRecommendation) error {
	args := m.Called(ctx, rec)
	return args.Error(0)
}

func (m *mockRecommendationRepo) Update(ctx context.Context, rec *prediction.OptimizationRecommendation) error {
	args := m.Called(ctx, rec)
	return args.Error(0)
}

type mockInferenceClient struct {
	mock.Mock
}

func (m *mockInferenceClient) Forecast(ctx context.Context, req prediction.ForecastRequest) (*prediction.InferenceForecastResponse, error) {
	args := m.Called(ctx, req)
	if resp := args.Get(0); resp != nil {
		return resp.(*prediction.InferenceForecastResponse), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockInferenceClient) DetectAnomalies(ctx context.Context, req prediction.AnomalyRequest) (*prediction.InferenceAnomalyResponse, error) {
	args := m.Called(ctx, req)
	if resp := args.Get(0); resp != nil {
		return resp.(*prediction.InferenceAnomalyResponse), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockInferenceClient) MineAssociations(ctx context.Context, req prediction.AssociationRequest) (*prediction.InferenceAssociationResponse, error) {
	args := m.Called(ctx, req)
	if resp := args.Get(0); resp != nil {
		return resp.(*prediction.InferenceAssociationResponse), args.Error(1)
	}
	return nil, args.Error(1)
}
