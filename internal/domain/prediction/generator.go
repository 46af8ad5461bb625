package prediction

import (
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"github.com/retailops/backend/internal/domain/shared"
)

const (
	// historyDays is how far back the generator synthesizes "observed"
	// points before the requested window start.
	historyDays = 30

	// base daily revenue band the generator draws from.
	baseValueMin = 2500.0
	baseValueMax = 5000.0

	// placeholderMAPE is reported when no historical points exist to
	// compare against.
	placeholderMAPE = 10.0
)

// dayOfWeekFactors is a fixed weekly shape, indexed by time.Weekday
// (Sunday first). Weekends additionally get the weekend factor.
var dayOfWeekFactors = [7]float64{0.97, 0.90, 0.92, 0.95, 1.00, 1.08, 1.15}

// SyntheticGenerator produces forecast-shaped series with plausible retail
// seasonality. It is the fallback when the inference boundary is down and
// the only source in development mode. Output is deterministic for a given
// seed.
type SyntheticGenerator struct {
	clock shared.Clock
	seed  int64
}

// GeneratorOption configures a SyntheticGenerator.
type GeneratorOption func(*SyntheticGenerator)

// WithGeneratorClock sets the clock used to stamp generated payloads.
func WithGeneratorClock(clock shared.Clock) GeneratorOption {
	return func(g *SyntheticGenerator) {
		g.clock = clock
	}
}

// WithGeneratorSeed pins the random source so generated series are
// reproducible. A zero seed means derive one from the clock.
func WithGeneratorSeed(seed int64) GeneratorOption {
	return func(g *SyntheticGenerator) {
		g.seed = seed
	}
}

// NewSyntheticGenerator creates a generator with the system clock and a
// time-derived seed unless options say otherwise.
func NewSyntheticGenerator(opts ...GeneratorOption) *SyntheticGenerator {
	g := &SyntheticGenerator{
		clock: shared.SystemClock{},
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

func (g *SyntheticGenerator) rng() *rand.Rand {
	seed := g.seed
	if seed == 0 {
		seed = g.clock.Now().UnixNano()
	}
	return rand.New(rand.NewSource(seed))
}

// Forecast synthesizes a contiguous daily series from historyDays before
// the window start through ForecastDays past its end. Days before the
// window start carry a synthesized actual; bounds bracket every prediction
// by construction.
func (g *SyntheticGenerator) Forecast(w Window) ([]ForecastPoint, AccuracyMetrics) {
	rng := g.rng()
	baseValue := baseValueMin + rng.Float64()*(baseValueMax-baseValueMin)

	start := dateOnly(w.StartDate)
	first := start.AddDate(0, 0, -historyDays)
	last := dateOnly(w.EndDate).AddDate(0, 0, w.ForecastDays)

	var series []ForecastPoint
	for day, offset := first, 0; !day.After(last); day, offset = day.AddDate(0, 0, 1), offset+1 {
		prediction := baseValue *
			weekendFactor(day) *
			dayOfWeekFactors[day.Weekday()] *
			monthBoundaryFactor(day) *
			noiseFactor(rng) *
			trendFactor(offset)

		point := ForecastPoint{
			Date:       day,
			Prediction: round2(prediction),
			LowerBound: round2(prediction * 0.85),
			UpperBound: round2(prediction * 1.15),
		}
		if day.Before(start) {
			actual := round2(prediction * (0.92 + rng.Float64()*0.16))
			point.Actual = &actual
		}
		series = append(series, point)
	}

	return series, seriesAccuracy(series)
}

// Anomalies synthesizes a small set of detections for the window so the
// dashboard still has something to show when the detector is unreachable.
func (g *SyntheticGenerator) Anomalies(windowStart, windowEnd time.Time, sensitivity float64) []AnomalyRecord {
	rng := g.rng()
	now := g.clock.Now()

	count := 1 + rng.Intn(3)
	anomalies := make([]AnomalyRecord, 0, count)
	for i := 0; i < count; i++ {
		score := sensitivity + rng.Float64()*(1-sensitivity)
		rec := AnomalyRecord{
			BaseEntity: shared.BaseEntity{
				ID:        deterministicUUID(rng),
				CreatedAt: now,
				UpdatedAt: now,
			},
			ResourceID:  deterministicUUID(rng),
			WindowStart: dateOnly(windowStart),
			WindowEnd:   dateOnly(windowEnd),
			Score:       round2(score),
			Description: fmt.Sprintf("Usage deviated %.0f%% from the seasonal baseline", 10+rng.Float64()*40),
		}
		rec.Severity = ClassifySeverity(rec.Score, DefaultConfirmedThreshold, false)
		anomalies = append(anomalies, rec)
	}
	return anomalies
}

// Associations synthesizes market-basket rules above the given thresholds.
func (g *SyntheticGenerator) Associations(minSupport, minConfidence float64) []AssociationRule {
	rng := g.rng()
	now := g.clock.Now()

	count := 3 + rng.Intn(5)
	rules := make([]AssociationRule, 0, count)
	for i := 0; i < count; i++ {
		confidence := minConfidence + rng.Float64()*(1-minConfidence)
		rules = append(rules, AssociationRule{
			BaseEntity: shared.BaseEntity{
				ID:        deterministicUUID(rng),
				CreatedAt: now,
				UpdatedAt: now,
			},
			SourceID:   deterministicUUID(rng),
			TargetID:   deterministicUUID(rng),
			Support:    round2(minSupport + rng.Float64()*(1-minSupport)),
			Confidence: round2(confidence),
			Lift:       round2(1 + rng.Float64()*2),
		})
	}
	return FilterRules(rules, minSupport, minConfidence)
}

// seriesAccuracy computes MAPE and RMSE between predictions and the
// synthesized actuals over all historical points.
func seriesAccuracy(series []ForecastPoint) AccuracyMetrics {
	var absPctSum, sqSum float64
	var n int
	for _, p := range series {
		if p.Actual == nil || *p.Actual == 0 {
			continue
		}
		diff := p.Prediction - *p.Actual
		absPctSum += math.Abs(diff) / *p.Actual * 100
		sqSum += diff * diff
		n++
	}

	metrics := AccuracyMetrics{MAPE: placeholderMAPE}
	if n > 0 {
		metrics.MAPE = round2(absPctSum / float64(n))
		metrics.RMSE = round2(math.Sqrt(sqSum / float64(n)))
	}
	metrics.OverallAccuracy = clampAccuracy(round2(100 - metrics.MAPE))
	return metrics
}

func weekendFactor(day time.Time) float64 {
	switch day.Weekday() {
	case time.Saturday, time.Sunday:
		return 1.25
	default:
		return 1.0
	}
}

// monthBoundaryFactor elevates demand near month start and end (payday
// shopping).
func monthBoundaryFactor(day time.Time) float64 {
	dom := day.Day()
	lastDom := day.AddDate(0, 1, -dom).Day()
	if dom <= 2 || dom >= lastDom-1 {
		return 1.08
	}
	return 1.0
}

// noiseFactor is bounded to ±10%.
func noiseFactor(rng *rand.Rand) float64 {
	return 0.90 + rng.Float64()*0.20
}

// trendFactor grows slowly and monotonically with days since the start of
// the generated range.
func trendFactor(offset int) float64 {
	return 1.0 + 0.002*float64(offset)
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// deterministicUUID draws a UUIDv4-shaped value from the generator's own
// random source so seeded runs are fully reproducible.
func deterministicUUID(rng *rand.Rand) uuid.UUID {
	var b [16]byte
	rng.Read(b[:])
	b[6] = (b[6] & 0x0f) | 0x40
	b[8] = (b[8] & 0x3f) | 0x80
	id, _ := uuid.FromBytes(b[:])
	return id
}
