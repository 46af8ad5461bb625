package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/retailops/backend/internal/domain/prediction"
	"github.com/retailops/backend/internal/infrastructure/persistence/models"
)

func TestModelRegistryGetActiveMissingIsNil(t *testing.T) {
	registry := NewModelRegistry(newTestDB(t))

	record, err := registry.GetActive(context.Background(), prediction.ForecastTypeSales)
	require.NoError(t, err)
	assert.Nil(t, record)
}

func TestModelRegistryUpsertKeepsSingleActiveRow(t *testing.T) {
	db := newTestDB(t)
	registry := NewModelRegistry(db)
	ctx := context.Background()

	first := time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC)
	second := time.Date(2026, 3, 12, 8, 0, 0, 0, time.UTC)

	created, err := registry.UpsertActive(ctx, prediction.ForecastTypeSales, first, 90, map[string]any{"horizon": 7})
	require.NoError(t, err)
	require.True(t, created.IsActive)

	updated, err := registry.UpsertActive(ctx, prediction.ForecastTypeSales, second, 94, map[string]any{"horizon": 14})
	require.NoError(t, err)

	// Same row, refreshed in place.
	assert.Equal(t, created.ID, updated.ID)
	assert.Equal(t, second, updated.LastTrained)
	assert.Equal(t, 94.0, updated.Accuracy)

	var count int64
	require.NoError(t, db.Model(&models.ModelRecordModel{}).
		Where("model_type = ? AND is_active = ?", prediction.ForecastTypeSales, true).
		Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestModelRegistryTypesAreIndependent(t *testing.T) {
	registry := NewModelRegistry(newTestDB(t))
	ctx := context.Background()
	now := time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC)

	_, err := registry.UpsertActive(ctx, prediction.ForecastTypeSales, now, 90, nil)
	require.NoError(t, err)
	_, err = registry.UpsertActive(ctx, prediction.ForecastTypeFinancial, now, 85, nil)
	require.NoError(t, err)

	sales, err := registry.GetActive(ctx, prediction.ForecastTypeSales)
	require.NoError(t, err)
	require.NotNil(t, sales)
	assert.Equal(t, 90.0, sales.Accuracy)

	financial, err := registry.GetActive(ctx, prediction.ForecastTypeFinancial)
	require.NoError(t, err)
	require.NotNil(t, financial)
	assert.Equal(t, 85.0, financial.Accuracy)
}

func TestModelRegistryAccuracyIsClamped(t *testing.T) {
	registry := NewModelRegistry(newTestDB(t))
	ctx := context.Background()

	record, err := registry.UpsertActive(ctx, prediction.ForecastTypeSales, time.Now(), 140, nil)
	require.NoError(t, err)
	assert.Equal(t, 100.0, record.Accuracy)
}
