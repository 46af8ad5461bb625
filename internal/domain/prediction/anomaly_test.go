package prediction

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassifySeverity(t *testing.T) {
	tests := []struct {
		name          string
		score         float64
		threshold     float64
		falsePositive bool
		want          AnomalySeverity
	}{
		{"score at threshold is high", 0.8, 0.8, false, SeverityHigh},
		{"score above threshold is high", 0.95, 0.8, false, SeverityHigh},
		{"confirmed outranks false-positive review", 0.9, 0.8, true, SeverityHigh},
		{"false positive below threshold is low", 0.5, 0.8, true, SeverityLow},
		{"unreviewed below threshold is medium", 0.5, 0.8, false, SeverityMedium},
		{"zero threshold falls back to default", 0.8, 0, false, SeverityHigh},
		{"below default fallback is medium", 0.7, 0, false, SeverityMedium},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ClassifySeverity(tt.score, tt.threshold, tt.falsePositive)
			assert.Equal(t, tt.want, got)
		})
	}
}
