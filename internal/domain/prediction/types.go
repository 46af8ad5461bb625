package prediction

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/retailops/backend/internal/domain/shared"
)

// ForecastType identifies which prediction domain a record answers.
type ForecastType string

const (
	ForecastTypeSales            ForecastType = "sales"
	ForecastTypeFinancial        ForecastType = "financial"
	ForecastTypeInventoryAnomaly ForecastType = "inventory_anomaly"
	ForecastTypeAssociation      ForecastType = "association"
)

// AllForecastTypes lists every known forecast type, in a stable order.
func AllForecastTypes() []ForecastType {
	return []ForecastType{
		ForecastTypeSales,
		ForecastTypeFinancial,
		ForecastTypeInventoryAnomaly,
		ForecastTypeAssociation,
	}
}

// IsValid reports whether the forecast type is one of the known domains.
func (t ForecastType) IsValid() bool {
	switch t {
	case ForecastTypeSales, ForecastTypeFinancial, ForecastTypeInventoryAnomaly, ForecastTypeAssociation:
		return true
	}
	return false
}

// ResourceTypeOverall is the resource scope for aggregate forecasts that are
// not tied to a single product or account.
const ResourceTypeOverall = "overall"

// ForecastKey is the natural key of the cache path. At most one record per
// key is treated as current; older rows are audit history.
type ForecastKey struct {
	Type         ForecastType
	ResourceType string
	ResourceID   *uuid.UUID
}

// String renders the key in a stable form usable for cache keys and
// in-flight request de-duplication.
func (k ForecastKey) String() string {
	if k.ResourceID == nil {
		return fmt.Sprintf("%s:%s", k.Type, k.ResourceType)
	}
	return fmt.Sprintf("%s:%s:%s", k.Type, k.ResourceType, k.ResourceID.String())
}

// Validate checks the key before any I/O is attempted.
func (k ForecastKey) Validate() error {
	if !k.Type.IsValid() {
		return shared.ErrValidation
	}
	if k.ResourceType == "" {
		return shared.ErrValidation
	}
	return nil
}

// Window is the requested forecast window: an inclusive calendar-day range
// plus the number of future days to project beyond EndDate.
type Window struct {
	StartDate    time.Time
	EndDate      time.Time
	ForecastDays int
}

// Validate rejects malformed windows before any I/O. This is the only
// failure class that propagates to the caller as a hard error.
func (w Window) Validate() error {
	if w.StartDate.IsZero() || w.EndDate.IsZero() {
		return shared.ErrValidation
	}
	if w.EndDate.Before(w.StartDate) {
		return shared.ErrValidation
	}
	if w.ForecastDays < 0 {
		return shared.ErrValidation
	}
	return nil
}

// Days returns the number of calendar days in the inclusive range.
func (w Window) Days() int {
	return int(w.EndDate.Sub(w.StartDate).Hours()/24) + 1
}
