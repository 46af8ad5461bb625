package prediction

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/retailops/backend/internal/domain/shared"
)

func TestRecommendationApply(t *testing.T) {
	rec := NewRecommendation(uuid.New(), RecommendationTypeReorder,
		decimal.NewFromInt(25), decimal.NewFromFloat(120.50), "Projected stockout in 4 days")
	require.Equal(t, RecommendationStatusPending, rec.Status)
	require.Nil(t, rec.AppliedAt)

	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	require.NoError(t, rec.Apply(now))

	assert.Equal(t, RecommendationStatusApplied, rec.Status)
	require.NotNil(t, rec.AppliedAt)
	assert.Equal(t, now, *rec.AppliedAt)
	assert.Equal(t, now, rec.UpdatedAt)
}

func TestRecommendationApplyTwiceFails(t *testing.T) {
	rec := NewRecommendation(uuid.New(), RecommendationTypeReduce,
		decimal.NewFromInt(10), decimal.NewFromInt(40), "Surplus against forecast demand")

	now := time.Now()
	require.NoError(t, rec.Apply(now))

	err := rec.Apply(now.Add(time.Minute))
	assert.ErrorIs(t, err, shared.ErrInvalidState)
	assert.Equal(t, now, *rec.AppliedAt)
}
