package prediction

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/retailops/backend/internal/domain/shared"
)

func TestWindowValidate(t *testing.T) {
	start := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		window  Window
		wantErr bool
	}{
		{"valid window", Window{StartDate: start, EndDate: end, ForecastDays: 7}, false},
		{"single day window", Window{StartDate: start, EndDate: start}, false},
		{"zero start date", Window{EndDate: end}, true},
		{"zero end date", Window{StartDate: start}, true},
		{"end before start", Window{StartDate: end, EndDate: start}, true},
		{"negative forecast days", Window{StartDate: start, EndDate: end, ForecastDays: -1}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.window.Validate()
			if tt.wantErr {
				assert.ErrorIs(t, err, shared.ErrValidation)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestForecastKeyString(t *testing.T) {
	id := uuid.MustParse("0d2ab7c4-6d1c-4c5f-9a78-1f6d3f2f9e10")

	overall := ForecastKey{Type: ForecastTypeSales, ResourceType: ResourceTypeOverall}
	assert.Equal(t, "sales:overall", overall.String())

	scoped := ForecastKey{Type: ForecastTypeSales, ResourceType: "product", ResourceID: &id}
	assert.Equal(t, "sales:product:"+id.String(), scoped.String())
}

func TestForecastKeyValidate(t *testing.T) {
	assert.NoError(t, ForecastKey{Type: ForecastTypeFinancial, ResourceType: ResourceTypeOverall}.Validate())
	assert.ErrorIs(t, ForecastKey{Type: "weather", ResourceType: ResourceTypeOverall}.Validate(), shared.ErrValidation)
	assert.ErrorIs(t, ForecastKey{Type: ForecastTypeSales}.Validate(), shared.ErrValidation)
}

func TestWindowDays(t *testing.T) {
	w := Window{
		StartDate: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC),
	}
	assert.Equal(t, 14, w.Days())
}
