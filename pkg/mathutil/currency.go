// Package mathutil provides common mathematical utility functions.
package mathutil

import (
	"math"

	"github.com/duyet/finance-hub-sub000/pkg/constants"
	"github.com/shopspring/decimal"
)

// Round rounds a value to two decimals, i.e. to represent real currency.
// Halves round away from zero. The conversion goes through a decimal so that
// values like 2.675 (stored as 2.67499... in binary) still round to 2.68.
func Round(val float64) float64 {
	rounded, _ := decimal.NewFromFloat(val).Round(constants.CurrencyDecimalPlaces).Float64()
	return rounded
}

// IsZero checks if a value is effectively zero (within one cent).
func IsZero(val float64) bool {
	return math.Abs(val) <= constants.CurrencyTolerance
}

// WithinTolerance checks if two values are within a specified tolerance.
func WithinTolerance(val1, val2, tolerance float64) bool {
	return math.Abs(val1-val2) <= tolerance
}
