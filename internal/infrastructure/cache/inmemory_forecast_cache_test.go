package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/retailops/backend/internal/domain/prediction"
	"github.com/retailops/backend/internal/domain/shared"
)

type stepClock struct {
	now time.Time
}

func (c *stepClock) Now() time.Time {
	return c.now
}

func cachedRecord() *prediction.ForecastRecord {
	record := &prediction.ForecastRecord{
		BaseEntity:   shared.NewBaseEntity(),
		Type:         prediction.ForecastTypeSales,
		ResourceType: prediction.ResourceTypeOverall,
		Series: []prediction.ForecastPoint{
			{Date: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC), Prediction: 3000, LowerBound: 2550, UpperBound: 3450},
		},
	}
	return record
}

func TestMemoryForecastCacheRoundTrip(t *testing.T) {
	cache := NewMemoryForecastCache()
	ctx := context.Background()
	record := cachedRecord()
	key := record.Key()

	missing, err := cache.Get(ctx, key)
	require.NoError(t, err)
	assert.Nil(t, missing)

	require.NoError(t, cache.Set(ctx, key, record, time.Hour))

	found, err := cache.Get(ctx, key)
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, record.ID, found.ID)

	require.NoError(t, cache.Delete(ctx, key))
	missing, err = cache.Get(ctx, key)
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestMemoryForecastCacheExpiry(t *testing.T) {
	clock := &stepClock{now: time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)}
	cache := NewMemoryForecastCache(WithMemoryCacheClock(clock))
	ctx := context.Background()
	record := cachedRecord()
	key := record.Key()

	require.NoError(t, cache.Set(ctx, key, record, time.Hour))

	clock.now = clock.now.Add(30 * time.Minute)
	found, err := cache.Get(ctx, key)
	require.NoError(t, err)
	assert.NotNil(t, found)

	clock.now = clock.now.Add(31 * time.Minute)
	found, err = cache.Get(ctx, key)
	require.NoError(t, err)
	assert.Nil(t, found)
}

func TestMemoryForecastCacheCloseDropsEntries(t *testing.T) {
	cache := NewMemoryForecastCache()
	ctx := context.Background()
	record := cachedRecord()

	require.NoError(t, cache.Set(ctx, record.Key(), record, time.Hour))
	require.NoError(t, cache.Close())

	found, err := cache.Get(ctx, record.Key())
	require.NoError(t, err)
	assert.Nil(t, found)
}
