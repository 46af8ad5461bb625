package prediction

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/retailops/backend/internal/domain/prediction"
	"github.com/retailops/backend/internal/domain/shared"
)

// DefaultInferenceTimeout bounds how long a single inference call may run
// before the synthetic fallback takes over. Zero disables the deadline.
const DefaultInferenceTimeout = 30 * time.Second

// Orchestrator implements the get-or-generate flow behind every prediction
// use case: serve a fresh stored record, otherwise call the inference
// boundary and persist, otherwise synthesize. Identical requests in flight
// are collapsed so the boundary sees at most one call per key.
type Orchestrator struct {
	forecasts    prediction.ForecastRepository
	anomalies    prediction.AnomalyRepository
	associations prediction.AssociationRepository
	registry     prediction.ModelRegistry
	cache        prediction.ForecastCache
	inference    prediction.InferenceClient
	generator    *prediction.SyntheticGenerator
	clock        shared.Clock
	logger       *zap.Logger
	flight       singleflight.Group

	developmentMode  bool
	stalenessWindow  time.Duration
	inferenceTimeout time.Duration
}

// OrchestratorOption configures an Orchestrator.
type OrchestratorOption func(*Orchestrator)

// WithLogger sets the orchestrator logger.
func WithLogger(logger *zap.Logger) OrchestratorOption {
	return func(o *Orchestrator) {
		o.logger = logger
	}
}

// WithClock overrides the clock used for staleness decisions.
func WithClock(clock shared.Clock) OrchestratorOption {
	return func(o *Orchestrator) {
		o.clock = clock
	}
}

// WithCache attaches a hot cache tier in front of the forecast repository.
func WithCache(cache prediction.ForecastCache) OrchestratorOption {
	return func(o *Orchestrator) {
		o.cache = cache
	}
}

// WithDevelopmentMode makes the orchestrator skip the inference boundary
// entirely and serve synthetic data.
func WithDevelopmentMode(enabled bool) OrchestratorOption {
	return func(o *Orchestrator) {
		o.developmentMode = enabled
	}
}

// WithStalenessWindow overrides the 24h freshness window.
func WithStalenessWindow(window time.Duration) OrchestratorOption {
	return func(o *Orchestrator) {
		o.stalenessWindow = window
	}
}

// WithInferenceTimeout bounds each inference call. Zero disables the bound.
func WithInferenceTimeout(timeout time.Duration) OrchestratorOption {
	return func(o *Orchestrator) {
		o.inferenceTimeout = timeout
	}
}

// NewOrchestrator wires the orchestrator. The cache is optional; everything
// else is required.
func NewOrchestrator(
	forecasts prediction.ForecastRepository,
	anomalies prediction.AnomalyRepository,
	associations prediction.AssociationRepository,
	registry prediction.ModelRegistry,
	inference prediction.InferenceClient,
	generator *prediction.SyntheticGenerator,
	opts ...OrchestratorOption,
) *Orchestrator {
	o := &Orchestrator{
		forecasts:        forecasts,
		anomalies:        anomalies,
		associations:     associations,
		registry:         registry,
		inference:        inference,
		generator:        generator,
		clock:            shared.SystemClock{},
		logger:           zap.NewNop(),
		stalenessWindow:  prediction.DefaultStalenessWindow,
		inferenceTimeout: DefaultInferenceTimeout,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// GetForecast returns the forecast for the key and window, reusing a stored
// record while it is fresh. Only validation errors propagate; every
// downstream failure degrades to the synthetic path.
func (o *Orchestrator) GetForecast(ctx context.Context, key prediction.ForecastKey, window prediction.Window, forceRefresh bool) (*prediction.ForecastResult, error) {
	if err := key.Validate(); err != nil {
		return nil, err
	}
	if err := window.Validate(); err != nil {
		return nil, err
	}

	flightKey := fmt.Sprintf("forecast:%s:%t", key.String(), forceRefresh)
	v, err, _ := o.flight.Do(flightKey, func() (any, error) {
		return o.forecast(ctx, key, window, forceRefresh)
	})
	if err != nil {
		return nil, err
	}
	return v.(*prediction.ForecastResult), nil
}

func (o *Orchestrator) forecast(ctx context.Context, key prediction.ForecastKey, window prediction.Window, forceRefresh bool) (*prediction.ForecastResult, error) {
	if o.developmentMode {
		return o.syntheticForecast(key, window), nil
	}

	now := o.clock.Now()
	if record := o.lookupStored(ctx, key, forceRefresh, now); record != nil {
		return prediction.ResultFromRecord(record, true), nil
	}

	resp, err := o.callForecast(ctx, key, window)
	if err != nil {
		o.logger.Warn("Inference call failed, serving synthetic forecast",
			zap.String("key", key.String()),
			zap.Error(err))
		return o.syntheticForecast(key, window), nil
	}

	record := o.recordFromResponse(key, window, resp, now)
	if err := record.Validate(); err != nil {
		o.logger.Warn("Inference response failed validation, serving synthetic forecast",
			zap.String("key", key.String()),
			zap.Error(err))
		return o.syntheticForecast(key, window), nil
	}

	o.persistForecast(ctx, key, record, now)
	return prediction.ResultFromRecord(record, false), nil
}

// lookupStored checks the hot cache and then the repository. Read failures
// on either tier are logged and treated as misses.
func (o *Orchestrator) lookupStored(ctx context.Context, key prediction.ForecastKey, forceRefresh bool, now time.Time) *prediction.ForecastRecord {
	if o.cache != nil && !forceRefresh {
		record, err := o.cache.Get(ctx, key)
		if err != nil {
			o.logger.Warn("Forecast cache read failed, falling through",
				zap.String("key", key.String()),
				zap.Error(err))
		} else if record != nil && prediction.IsFresh(record.CreatedAt, forceRefresh, now, o.stalenessWindow) {
			return record
		}
	}

	record, err := o.forecasts.FindLatest(ctx, key)
	if err != nil {
		o.logger.Warn("Forecast repository read failed, falling through",
			zap.String("key", key.String()),
			zap.Error(err))
		return nil
	}
	if record == nil || !prediction.IsFresh(record.CreatedAt, forceRefresh, now, o.stalenessWindow) {
		return nil
	}

	if o.cache != nil {
		if err := o.cache.Set(ctx, key, record, o.stalenessWindow); err != nil {
			o.logger.Warn("Forecast cache refill failed",
				zap.String("key", key.String()),
				zap.Error(err))
		}
	}
	return record
}

func (o *Orchestrator) callForecast(ctx context.Context, key prediction.ForecastKey, window prediction.Window) (*prediction.InferenceForecastResponse, error) {
	ctx, cancel := o.inferenceContext(ctx)
	defer cancel()

	return o.inference.Forecast(ctx, prediction.ForecastRequest{
		StartDate:      window.StartDate,
		EndDate:        window.EndDate,
		ForecastDays:   window.ForecastDays,
		ResourceFilter: key.ResourceID,
	})
}

func (o *Orchestrator) inferenceContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if o.inferenceTimeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, o.inferenceTimeout)
}

func (o *Orchestrator) recordFromResponse(key prediction.ForecastKey, window prediction.Window, resp *prediction.InferenceForecastResponse, now time.Time) *prediction.ForecastRecord {
	record := &prediction.ForecastRecord{
		BaseEntity:   shared.NewBaseEntity(),
		Type:         key.Type,
		ResourceType: key.ResourceType,
		ResourceID:   key.ResourceID,
		RangeStart:   window.StartDate,
		RangeEnd:     window.EndDate,
		Series:       resp.Series,
		Accuracy: prediction.AccuracyMetrics{
			MAPE:            resp.Accuracy.MAPE,
			RMSE:            resp.Accuracy.RMSE,
			OverallAccuracy: overallAccuracy(resp.Accuracy.MAPE),
		},
	}
	record.CreatedAt = now
	record.UpdatedAt = now
	return record
}

// persistForecast stores a successful inference result and refreshes the
// model registry. Failures here are logged and swallowed; the caller still
// gets the freshly inferred result.
func (o *Orchestrator) persistForecast(ctx context.Context, key prediction.ForecastKey, record *prediction.ForecastRecord, now time.Time) {
	if err := o.forecasts.Insert(ctx, record); err != nil {
		o.logger.Error("Forecast persistence failed, result served unpersisted",
			zap.String("key", key.String()),
			zap.Error(err))
	}
	if o.cache != nil {
		if err := o.cache.Set(ctx, key, record, o.stalenessWindow); err != nil {
			o.logger.Warn("Forecast cache write failed",
				zap.String("key", key.String()),
				zap.Error(err))
		}
	}
	if _, err := o.registry.UpsertActive(ctx, key.Type, now, record.Accuracy.OverallAccuracy, map[string]any{
		"forecast_days": record.RangeEnd.Sub(record.RangeStart).Hours() / 24,
	}); err != nil {
		o.logger.Error("Model registry update failed",
			zap.String("type", string(key.Type)),
			zap.Error(err))
	}
}

func (o *Orchestrator) syntheticForecast(key prediction.ForecastKey, window prediction.Window) *prediction.ForecastResult {
	series, accuracy := o.generator.Forecast(window)
	return &prediction.ForecastResult{
		Key:         key,
		RangeStart:  window.StartDate,
		RangeEnd:    window.EndDate,
		Series:      series,
		Accuracy:    accuracy,
		Synthetic:   true,
		GeneratedAt: o.clock.Now(),
	}
}

// GetAnomalies returns anomaly detections for the window, reusing the most
// recent stored run while it is fresh.
func (o *Orchestrator) GetAnomalies(ctx context.Context, windowStart, windowEnd time.Time, sensitivity float64, forceRefresh bool) (*prediction.AnomalyResult, error) {
	if windowStart.IsZero() || windowEnd.IsZero() || windowEnd.Before(windowStart) {
		return nil, shared.ErrValidation
	}
	if sensitivity < 0 || sensitivity > 1 {
		return nil, shared.ErrValidation
	}

	flightKey := fmt.Sprintf("anomaly:%d:%d:%t", windowStart.Unix(), windowEnd.Unix(), forceRefresh)
	v, err, _ := o.flight.Do(flightKey, func() (any, error) {
		return o.detectAnomalies(ctx, windowStart, windowEnd, sensitivity, forceRefresh)
	})
	if err != nil {
		return nil, err
	}
	return v.(*prediction.AnomalyResult), nil
}

func (o *Orchestrator) detectAnomalies(ctx context.Context, windowStart, windowEnd time.Time, sensitivity float64, forceRefresh bool) (*prediction.AnomalyResult, error) {
	if o.developmentMode {
		return o.syntheticAnomalies(windowStart, windowEnd, sensitivity), nil
	}

	now := o.clock.Now()
	stored, runAt, err := o.anomalies.FindLatestRun(ctx, windowStart, windowEnd)
	if err != nil {
		o.logger.Warn("Anomaly run lookup failed, falling through", zap.Error(err))
	} else if stored != nil && prediction.IsFresh(runAt, forceRefresh, now, o.stalenessWindow) {
		return &prediction.AnomalyResult{
			WindowStart: windowStart,
			WindowEnd:   windowEnd,
			Anomalies:   stored,
			Cached:      true,
			GeneratedAt: runAt,
		}, nil
	}

	infCtx, cancel := o.inferenceContext(ctx)
	defer cancel()
	resp, err := o.inference.DetectAnomalies(infCtx, prediction.AnomalyRequest{
		StartDate:   windowStart,
		EndDate:     windowEnd,
		Sensitivity: sensitivity,
	})
	if err != nil {
		o.logger.Warn("Anomaly inference failed, serving synthetic detections", zap.Error(err))
		return o.syntheticAnomalies(windowStart, windowEnd, sensitivity), nil
	}

	records := make([]prediction.AnomalyRecord, 0, len(resp.Anomalies))
	for _, a := range resp.Anomalies {
		rec := prediction.AnomalyRecord{
			BaseEntity:  shared.NewBaseEntity(),
			ResourceID:  a.ResourceID,
			WindowStart: windowStart,
			WindowEnd:   windowEnd,
			Score:       a.Score,
			Description: a.Description,
		}
		rec.CreatedAt = now
		rec.UpdatedAt = now
		rec.Severity = prediction.ClassifySeverity(a.Score, prediction.DefaultConfirmedThreshold, false)
		records = append(records, rec)
	}

	if err := o.anomalies.InsertRun(ctx, records); err != nil {
		o.logger.Error("Anomaly run persistence failed, result served unpersisted", zap.Error(err))
	}
	if _, err := o.registry.UpsertActive(ctx, prediction.ForecastTypeInventoryAnomaly, now, 0, map[string]any{
		"sensitivity": sensitivity,
	}); err != nil {
		o.logger.Error("Model registry update failed",
			zap.String("type", string(prediction.ForecastTypeInventoryAnomaly)),
			zap.Error(err))
	}

	return &prediction.AnomalyResult{
		WindowStart: windowStart,
		WindowEnd:   windowEnd,
		Anomalies:   records,
		GeneratedAt: now,
	}, nil
}

func (o *Orchestrator) syntheticAnomalies(windowStart, windowEnd time.Time, sensitivity float64) *prediction.AnomalyResult {
	return &prediction.AnomalyResult{
		WindowStart: windowStart,
		WindowEnd:   windowEnd,
		Anomalies:   o.generator.Anomalies(windowStart, windowEnd, sensitivity),
		Synthetic:   true,
		GeneratedAt: o.clock.Now(),
	}
}

// GetAssociations returns mined association rules above the thresholds,
// reusing the most recent stored run while it is fresh. Threshold filtering
// always applies, including to cached and synthetic rules.
func (o *Orchestrator) GetAssociations(ctx context.Context, minSupport, minConfidence float64, forceRefresh bool) (*prediction.AssociationResult, error) {
	if minSupport < 0 || minSupport > 1 || minConfidence < 0 || minConfidence > 1 {
		return nil, shared.ErrValidation
	}

	flightKey := fmt.Sprintf("association:%t", forceRefresh)
	v, err, _ := o.flight.Do(flightKey, func() (any, error) {
		return o.mineAssociations(ctx, minSupport, minConfidence, forceRefresh)
	})
	if err != nil {
		return nil, err
	}
	return v.(*prediction.AssociationResult), nil
}

func (o *Orchestrator) mineAssociations(ctx context.Context, minSupport, minConfidence float64, forceRefresh bool) (*prediction.AssociationResult, error) {
	if o.developmentMode {
		return o.syntheticAssociations(minSupport, minConfidence), nil
	}

	now := o.clock.Now()
	stored, runAt, err := o.associations.FindLatestRun(ctx)
	if err != nil {
		o.logger.Warn("Association run lookup failed, falling through", zap.Error(err))
	} else if stored != nil && prediction.IsFresh(runAt, forceRefresh, now, o.stalenessWindow) {
		return &prediction.AssociationResult{
			Rules:       prediction.FilterRules(stored, minSupport, minConfidence),
			Cached:      true,
			GeneratedAt: runAt,
		}, nil
	}

	infCtx, cancel := o.inferenceContext(ctx)
	defer cancel()
	resp, err := o.inference.MineAssociations(infCtx, prediction.AssociationRequest{
		MinSupport:    minSupport,
		MinConfidence: minConfidence,
	})
	if err != nil {
		o.logger.Warn("Association inference failed, serving synthetic rules", zap.Error(err))
		return o.syntheticAssociations(minSupport, minConfidence), nil
	}

	var rules []prediction.AssociationRule
	for _, group := range resp.Rules {
		for _, target := range group.Targets {
			rule := prediction.AssociationRule{
				BaseEntity: shared.NewBaseEntity(),
				SourceID:   group.SourceID,
				TargetID:   target.TargetID,
				Support:    target.Support,
				Confidence: target.Confidence,
				Lift:       target.Lift,
			}
			rule.CreatedAt = now
			rule.UpdatedAt = now
			rules = append(rules, rule)
		}
	}

	if err := o.associations.InsertRun(ctx, rules); err != nil {
		o.logger.Error("Association run persistence failed, result served unpersisted", zap.Error(err))
	}
	if _, err := o.registry.UpsertActive(ctx, prediction.ForecastTypeAssociation, now, 0, map[string]any{
		"min_support":    minSupport,
		"min_confidence": minConfidence,
	}); err != nil {
		o.logger.Error("Model registry update failed",
			zap.String("type", string(prediction.ForecastTypeAssociation)),
			zap.Error(err))
	}

	return &prediction.AssociationResult{
		Rules:       prediction.FilterRules(rules, minSupport, minConfidence),
		GeneratedAt: now,
	}, nil
}

func (o *Orchestrator) syntheticAssociations(minSupport, minConfidence float64) *prediction.AssociationResult {
	return &prediction.AssociationResult{
		Rules:       o.generator.Associations(minSupport, minConfidence),
		Synthetic:   true,
		GeneratedAt: o.clock.Now(),
	}
}

func overallAccuracy(mape float64) float64 {
	acc := 100 - mape
	if acc < 0 {
		return 0
	}
	if acc > 100 {
		return 100
	}
	return acc
}
