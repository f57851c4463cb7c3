// Package mathutil provides common mathematical utility functions over
// nullable amounts.
package mathutil

import (
	"math"

	"github.com/iwvelando/gearing-dashboard/pkg/constants"
	"github.com/iwvelando/gearing-dashboard/pkg/value"
)

// Round rounds a value to two decimals, i.e. to represent real currency.
func Round(val float64) float64 {
	return math.Round(val*constants.DecimalPrecision) / constants.DecimalPrecision
}

// WithinTolerance checks if two values are within a specified tolerance
func WithinTolerance(val1, val2, tolerance float64) bool {
	return math.Abs(val1-val2) <= tolerance
}

// Divide returns numerator/denominator. A missing operand or a zero
// denominator gives a missing result rather than zero or an infinity.
func Divide(numerator, denominator value.Amount) value.Amount {
	if !numerator.Valid || !denominator.Valid || denominator.Value == 0 {
		return value.None()
	}
	return value.Normalize(value.Number(numerator.Value / denominator.Value))
}

// Scale divides an amount by divisor, keeping missing as missing.
func Scale(a value.Amount, divisor float64) value.Amount {
	if divisor == 0 {
		return value.None()
	}
	return Divide(a, value.Some(divisor))
}

// Trillions converts Rupiah into the "T" display unit.
func Trillions(a value.Amount) value.Amount {
	return Scale(a, constants.TrillionDivisor)
}

// Add sums two amounts, treating missing as absent rather than zero: the
// result is missing only when both operands are.
func Add(a, b value.Amount) value.Amount {
	switch {
	case !a.Valid:
		return b
	case !b.Valid:
		return a
	default:
		return value.Normalize(value.Number(a.Value + b.Value))
	}
}

// DeltaPercent returns (current-previous)/previous*100. A zero previous value
// gives zero, matching the dashboard's KPI card.
func DeltaPercent(current, previous float64) float64 {
	if previous == 0 {
		return 0
	}
	return (current - previous) / previous * constants.PercentageMultiplier
}
