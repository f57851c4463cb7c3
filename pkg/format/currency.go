// Package format renders amounts for display in the Indonesian locale.
package format

import (
	"math"

	"github.com/iwvelando/gearing-dashboard/pkg/value"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var printer = message.NewPrinter(language.Indonesian)

// Rupiah returns an amount with the currency prefix and Indonesian separators (e.g., "-Rp 1.234,56").
func Rupiah(amount float64) string {
	formatted := printer.Sprintf("%.2f", math.Abs(amount))
	if amount < 0 {
		return "-Rp " + formatted
	}
	return "Rp " + formatted
}

// Number returns a two-decimal number with Indonesian separators (e.g., "1.234,56").
func Number(amount float64) string {
	return printer.Sprintf("%.2f", amount)
}

// Count returns a whole number with Indonesian grouping, used for debtor counts.
func Count(amount float64) string {
	return printer.Sprintf("%.0f", amount)
}

// Trillions returns the "T" display form used on charts (e.g., "2,50 T").
func Trillions(amount float64) string {
	return printer.Sprintf("%.2f T", amount)
}

// Ratio returns the gearing-ratio display form (e.g., "5,00x").
func Ratio(ratio float64) string {
	return printer.Sprintf("%.2fx", ratio)
}

// Amount renders a nullable amount with fn, leaving missing values blank.
func Amount(a value.Amount, fn func(float64) string) string {
	if !a.Valid {
		return ""
	}
	return fn(a.Value)
}
