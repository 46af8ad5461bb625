package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/retailops/backend/internal/domain/prediction"
)

// logger for model conversion errors (silent failures are logged for debugging)
var modelLogger = zap.L().Named("prediction.models")

// ForecastRecordModel is the persistence model for ForecastRecord. Rows are
// append-only; the newest per (forecast_type, resource_type, resource_id)
// key is the current one, older rows are audit history.
type ForecastRecordModel struct {
	BaseModel
	ForecastType string     `gorm:"type:varchar(30);not null;index:idx_forecast_key"`
	ResourceType string     `gorm:"type:varchar(50);not null;index:idx_forecast_key"`
	ResourceID   *uuid.UUID `gorm:"type:uuid;index:idx_forecast_key"`
	RangeStart   time.Time  `gorm:"not null"`
	RangeEnd     time.Time  `gorm:"not null"`
	SeriesJSON   string     `gorm:"column:series;type:jsonb;not null"`
	AccuracyJSON string     `gorm:"column:accuracy;type:jsonb"`
}

// TableName returns the table name for GORM
func (ForecastRecordModel) TableName() string {
	return "forecast_records"
}

// ToDomain converts the persistence model to a domain ForecastRecord.
func (m *ForecastRecordModel) ToDomain() *prediction.ForecastRecord {
	record := &prediction.ForecastRecord{
		BaseEntity:   m.BaseModel.ToDomain(),
		Type:         prediction.ForecastType(m.ForecastType),
		ResourceType: m.ResourceType,
		ResourceID:   m.ResourceID,
		RangeStart:   m.RangeStart,
		RangeEnd:     m.RangeEnd,
	}

	if m.SeriesJSON != "" {
		var series []prediction.ForecastPoint
		if err := json.Unmarshal([]byte(m.SeriesJSON), &series); err != nil {
			modelLogger.Warn("failed to parse series JSON",
				zap.String("record_id", m.ID.String()),
				zap.Error(err))
		} else {
			record.Series = series
		}
	}

	if m.AccuracyJSON != "" {
		var accuracy prediction.AccuracyMetrics
		if err := json.Unmarshal([]byte(m.AccuracyJSON), &accuracy); err != nil {
			modelLogger.Warn("failed to parse accuracy JSON",
				zap.String("record_id", m.ID.String()),
				zap.Error(err))
		} else {
			record.Accuracy = accuracy
		}
	}

	return record
}

// FromDomain populates the persistence model from a domain ForecastRecord.
func (m *ForecastRecordModel) FromDomain(r *prediction.ForecastRecord) {
	m.FromDomainBaseEntity(r.BaseEntity)
	m.ForecastType = string(r.Type)
	m.ResourceType = r.ResourceType
	m.ResourceID = r.ResourceID
	m.RangeStart = r.RangeStart
	m.RangeEnd = r.RangeEnd

	if jsonBytes, err := json.Marshal(r.Series); err == nil {
		m.SeriesJSON = string(jsonBytes)
	} else {
		m.SeriesJSON = "[]"
	}
	if jsonBytes, err := json.Marshal(r.Accuracy); err == nil {
		m.AccuracyJSON = string(jsonBytes)
	} else {
		m.AccuracyJSON = "{}"
	}
}

// ModelRecordModel is the persistence model for the model registry. The
// registry keeps at most one active row per model_type.
type ModelRecordModel struct {
	BaseModel
	ModelType      string    `gorm:"type:varchar(30);not null;index"`
	IsActive       bool      `gorm:"not null;index"`
	LastTrained    time.Time `gorm:"not null"`
	Accuracy       float64   `gorm:"not null"`
	ParametersJSON string    `gorm:"column:parameters;type:jsonb;default:'{}'"`
}

// TableName returns the table name for GORM
func (ModelRecordModel) TableName() string {
	return "model_records"
}

// ToDomain converts the persistence model to a domain ModelRecord.
func (m *ModelRecordModel) ToDomain() *prediction.ModelRecord {
	record := &prediction.ModelRecord{
		BaseEntity:  m.BaseModel.ToDomain(),
		Type:        prediction.ForecastType(m.ModelType),
		IsActive:    m.IsActive,
		LastTrained: m.LastTrained,
		Accuracy:    m.Accuracy,
		Parameters:  map[string]any{},
	}

	if m.ParametersJSON != "" && m.ParametersJSON != "{}" {
		var params map[string]any
		if err := json.Unmarshal([]byte(m.ParametersJSON), &params); err != nil {
			modelLogger.Warn("failed to parse parameters JSON",
				zap.String("model_type", m.ModelType),
				zap.Error(err))
		} else {
			record.Parameters = params
		}
	}

	return record
}

// FromDomain populates the persistence model from a domain ModelRecord.
func (m *ModelRecordModel) FromDomain(r *prediction.ModelRecord) {
	m.FromDomainBaseEntity(r.BaseEntity)
	m.ModelType = string(r.Type)
	m.IsActive = r.IsActive
	m.LastTrained = r.LastTrained
	m.Accuracy = r.Accuracy

	if len(r.Parameters) > 0 {
		if jsonBytes, err := json.Marshal(r.Parameters); err == nil {
			m.ParametersJSON = string(jsonBytes)
		} else {
			m.ParametersJSON = "{}"
		}
	} else {
		m.ParametersJSON = "{}"
	}
}

// AnomalyRecordModel is the persistence model for AnomalyRecord. Rows
// created together share a run_id; the newest run for a window is current.
type AnomalyRecordModel struct {
	BaseModel
	RunID         uuid.UUID `gorm:"type:uuid;not null;index"`
	ResourceID    uuid.UUID `gorm:"type:uuid;not null;index"`
	WindowStart   time.Time `gorm:"not null;index:idx_anomaly_window"`
	WindowEnd     time.Time `gorm:"not null;index:idx_anomaly_window"`
	Score         float64   `gorm:"not null"`
	Description   string    `gorm:"type:text"`
	FalsePositive bool      `gorm:"not null;default:false"`
	Severity      string    `gorm:"type:varchar(10);not null"`
}

// TableName returns the table name for GORM
func (AnomalyRecordModel) TableName() string {
	return "anomaly_records"
}

// ToDomain converts the persistence model to a domain AnomalyRecord.
func (m *AnomalyRecordModel) ToDomain() prediction.AnomalyRecord {
	return prediction.AnomalyRecord{
		BaseEntity:    m.BaseModel.ToDomain(),
		ResourceID:    m.ResourceID,
		WindowStart:   m.WindowStart,
		WindowEnd:     m.WindowEnd,
		Score:         m.Score,
		Description:   m.Description,
		FalsePositive: m.FalsePositive,
		Severity:      prediction.AnomalySeverity(m.Severity),
	}
}

// FromDomain populates the persistence model from a domain AnomalyRecord.
func (m *AnomalyRecordModel) FromDomain(r prediction.AnomalyRecord, runID uuid.UUID) {
	m.FromDomainBaseEntity(r.BaseEntity)
	m.RunID = runID
	m.ResourceID = r.ResourceID
	m.WindowStart = r.WindowStart
	m.WindowEnd = r.WindowEnd
	m.Score = r.Score
	m.Description = r.Description
	m.FalsePositive = r.FalsePositive
	m.Severity = string(r.Severity)
}

// AssociationRuleModel is the persistence model for AssociationRule. Rules
// mined together share a run_id.
type AssociationRuleModel struct {
	BaseModel
	RunID      uuid.UUID `gorm:"type:uuid;not null;index"`
	SourceID   uuid.UUID `gorm:"type:uuid;not null;index"`
	TargetID   uuid.UUID `gorm:"type:uuid;not null"`
	Support    float64   `gorm:"not null"`
	Confidence float64   `gorm:"not null"`
	Lift       float64   `gorm:"not null"`
}

// TableName returns the table name for GORM
func (AssociationRuleModel) TableName() string {
	return "association_rules"
}

// ToDomain converts the persistence model to a domain AssociationRule.
func (m *AssociationRuleModel) ToDomain() prediction.AssociationRule {
	return prediction.AssociationRule{
		BaseEntity: m.BaseModel.ToDomain(),
		SourceID:   m.SourceID,
		TargetID:   m.TargetID,
		Support:    m.Support,
		Confidence: m.Confidence,
		Lift:       m.Lift,
	}
}

// FromDomain populates the persistence model from a domain AssociationRule.
func (m *AssociationRuleModel) FromDomain(r prediction.AssociationRule, runID uuid.UUID) {
	m.FromDomainBaseEntity(r.BaseEntity)
	m.RunID = runID
	m.SourceID = r.SourceID
	m.TargetID = r.TargetID
	m.Support = r.Support
	m.Confidence = r.Confidence
	m.Lift = r.Lift
}

// RecommendationModel is the persistence model for
// OptimizationRecommendation, keyed by (ingredient_id, type).
type RecommendationModel struct {
	BaseModel
	IngredientID      uuid.UUID       `gorm:"type:uuid;not null;index:idx_recommendation_key"`
	Type              string          `gorm:"type:varchar(20);not null;index:idx_recommendation_key"`
	Status            string          `gorm:"type:varchar(20);not null;index"`
	SuggestedQuantity decimal.Decimal `gorm:"type:decimal(12,3);not null"`
	EstimatedImpact   decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Reason            string          `gorm:"type:text"`
	AppliedAt         *time.Time
}

// TableName returns the table name for GORM
func (RecommendationModel) TableName() string {
	return "optimization_recommendations"
}

// ToDomain converts the persistence model to a domain
// OptimizationRecommendation.
func (m *RecommendationModel) ToDomain() *prediction.OptimizationRecommendation {
	return &prediction.OptimizationRecommendation{
		BaseEntity:        m.BaseModel.ToDomain(),
		IngredientID:      m.IngredientID,
		Type:              prediction.RecommendationType(m.Type),
		Status:            prediction.RecommendationStatus(m.Status),
		SuggestedQuantity: m.SuggestedQuantity,
		EstimatedImpact:   m.EstimatedImpact,
		Reason:            m.Reason,
		AppliedAt:         m.AppliedAt,
	}
}

// FromDomain populates the persistence model from a domain
// OptimizationRecommendation.
func (m *RecommendationModel) FromDomain(r *prediction.OptimizationRecommendation) {
	m.FromDomainBaseEntity(r.BaseEntity)
	m.IngredientID = r.IngredientID
	m.Type = string(r.Type)
	m.Status = string(r.Status)
	m.SuggestedQuantity = r.SuggestedQuantity
	m.EstimatedImpact = r.EstimatedImpact
	m.Reason = r.Reason
	m.AppliedAt = r.AppliedAt
}
