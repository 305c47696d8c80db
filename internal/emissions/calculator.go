package emissions

import (
	"errors"
	"fmt"
	"math"
)

var (
	// ErrUnknownActivityType is returned when an activity type has no
	// entry in the emissions table.
	ErrUnknownActivityType = errors.New("unknown activity type")
	// ErrInvalidValue is returned when the quantity is not a finite number.
	ErrInvalidValue = errors.New("value must be a finite number")
)

// Calculator converts an (activity type, quantity) pair into a carbon
// footprint in kg CO2e. It is a pure function over the injected table.
type Calculator struct {
	table *Table
}

// NewCalculator creates a Calculator over the given table.
func NewCalculator(table *Table) *Calculator {
	return &Calculator{table: table}
}

// Compute returns value * factor for the activity type. No rounding is
// applied here; rounding is a presentation concern of the leaderboard.
func (c *Calculator) Compute(activityType string, value float64) (float64, error) {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return 0, ErrInvalidValue
	}
	entry, ok := c.table.Lookup(activityType)
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownActivityType, activityType)
	}
	return value * entry.Factor, nil
}
