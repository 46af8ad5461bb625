package prediction

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/retailops/backend/internal/domain/shared"
)

func testWindow() Window {
	return Window{
		StartDate:    time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		EndDate:      time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC),
		ForecastDays: 7,
	}
}

func testGenerator(seed int64) *SyntheticGenerator {
	clock := shared.FixedClock{Instant: time.Date(2026, 3, 15, 9, 0, 0, 0, time.UTC)}
	return NewSyntheticGenerator(WithGeneratorSeed(seed), WithGeneratorClock(clock))
}

func TestSyntheticForecastShape(t *testing.T) {
	w := testWindow()
	series, accuracy := testGenerator(42).Forecast(w)

	// 30 history days + 14 window days + 7 projected days.
	require.Len(t, series, 30+w.Days()+w.ForecastDays)

	for i, p := range series {
		assert.LessOrEqual(t, p.LowerBound, p.Prediction, "point %d", i)
		assert.LessOrEqual(t, p.Prediction, p.UpperBound, "point %d", i)
		assert.Positive(t, p.Prediction, "point %d", i)
		if i > 0 {
			assert.Equal(t, 24*time.Hour, p.Date.Sub(series[i-1].Date), "point %d", i)
		}
		if p.Date.Before(w.StartDate) {
			require.NotNil(t, p.Actual, "historical point %d must carry an actual", i)
		} else {
			assert.Nil(t, p.Actual, "point %d in or past the window must not", i)
		}
	}

	assert.Greater(t, accuracy.MAPE, 0.0)
	assert.Greater(t, accuracy.RMSE, 0.0)
	assert.InDelta(t, 100-accuracy.MAPE, accuracy.OverallAccuracy, 0.01)
}

func TestSyntheticForecastPassesRecordValidation(t *testing.T) {
	series, accuracy := testGenerator(7).Forecast(testWindow())

	record := &ForecastRecord{
		BaseEntity:   shared.NewBaseEntity(),
		Type:         ForecastTypeSales,
		ResourceType: ResourceTypeOverall,
		Series:       series,
		Accuracy:     accuracy,
	}
	assert.NoError(t, record.Validate())
}

func TestSyntheticForecastDeterministicPerSeed(t *testing.T) {
	w := testWindow()

	first, firstAcc := testGenerator(99).Forecast(w)
	second, secondAcc := testGenerator(99).Forecast(w)
	assert.Equal(t, first, second)
	assert.Equal(t, firstAcc, secondAcc)

	other, _ := testGenerator(100).Forecast(w)
	assert.NotEqual(t, first, other)
}

func TestSyntheticForecastWeekendLift(t *testing.T) {
	// Noise is bounded to ±10% while the weekend factor is +25%, so averaged
	// over many weeks the weekend mean must exceed the weekday mean.
	w := Window{
		StartDate:    time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		EndDate:      time.Date(2026, 6, 30, 0, 0, 0, 0, time.UTC),
		ForecastDays: 0,
	}
	series, _ := testGenerator(5).Forecast(w)

	var weekendSum, weekdaySum float64
	var weekendN, weekdayN int
	for _, p := range series {
		switch p.Date.Weekday() {
		case time.Saturday, time.Sunday:
			weekendSum += p.Prediction
			weekendN++
		default:
			weekdaySum += p.Prediction
			weekdayN++
		}
	}

	require.Positive(t, weekendN)
	require.Positive(t, weekdayN)
	assert.Greater(t, weekendSum/float64(weekendN), weekdaySum/float64(weekdayN))
}

func TestSyntheticAccuracyPlaceholderWithoutActuals(t *testing.T) {
	metrics := seriesAccuracy([]ForecastPoint{
		{Date: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC), Prediction: 100, LowerBound: 85, UpperBound: 115},
	})

	assert.Equal(t, placeholderMAPE, metrics.MAPE)
	assert.Zero(t, metrics.RMSE)
	assert.Equal(t, 90.0, metrics.OverallAccuracy)
}

func TestSyntheticAnomalies(t *testing.T) {
	start := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC)

	anomalies := testGenerator(13).Anomalies(start, end, 0.5)

	require.NotEmpty(t, anomalies)
	for _, a := range anomalies {
		assert.GreaterOrEqual(t, a.Score, 0.5)
		assert.LessOrEqual(t, a.Score, 1.0)
		assert.Equal(t, start, a.WindowStart)
		assert.Equal(t, end, a.WindowEnd)
		assert.NotEmpty(t, a.Description)
		assert.Equal(t, ClassifySeverity(a.Score, DefaultConfirmedThreshold, false), a.Severity)
	}

	again := testGenerator(13).Anomalies(start, end, 0.5)
	assert.Equal(t, anomalies, again)
}

func TestSyntheticAssociations(t *testing.T) {
	rules := testGenerator(21).Associations(0.1, 0.5)

	require.NotEmpty(t, rules)
	for i, r := range rules {
		assert.GreaterOrEqual(t, r.Support, 0.1)
		assert.GreaterOrEqual(t, r.Confidence, 0.5)
		assert.GreaterOrEqual(t, r.Lift, 1.0)
		if i > 0 {
			assert.GreaterOrEqual(t, rules[i-1].Confidence, r.Confidence)
		}
	}
}
