package value

import (
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

// Amount is a nullable amount in the base currency unit. A zero Amount is
// missing.
type Amount struct {
	Value float64
	Valid bool
}

// Some wraps a known amount.
func Some(v float64) Amount { return Amount{Value: v, Valid: true} }

// None is the missing amount.
func None() Amount { return Amount{} }

// Ptr returns nil for a missing amount, which encodes as JSON null.
func (a Amount) Ptr() *float64 {
	if !a.Valid {
		return nil
	}
	v := a.Value
	return &v
}

// maxDecimalMagnitude bounds the decimal exponent of parsed text. float64
// overflows past 1e308 and underflows to zero below 1e-324.
const maxDecimalMagnitude = 400

var nullMarkers = map[string]struct{}{
	"nan":  {},
	"none": {},
	"null": {},
	"na":   {},
	"n/a":  {},
	"-":    {},
}

// Normalize turns a raw cell into an amount. Numbers pass through unchanged,
// text is read in the Indonesian locale:
//
//   - "." and "," both present: "." groups thousands, "," is the decimal point
//   - only ".": every "." groups thousands, so "1234.5" reads as 12345
//   - only ",": every "," is a decimal point, so "12,5" reads as 12.5
//
// Anything that does not parse is missing. Normalize never returns NaN, an
// infinity or negative zero.
func Normalize(c Cell) Amount {
	switch c.kind {
	case KindNumber:
		return fromFloat(c.num)
	case KindText:
		return parseText(c.text)
	default:
		return None()
	}
}

// NormalizeText is Normalize for a text cell.
func NormalizeText(s string) Amount {
	return parseText(s)
}

func parseText(raw string) Amount {
	text := strings.TrimSpace(raw)
	if text == "" {
		return None()
	}
	if _, ok := nullMarkers[strings.ToLower(text)]; ok {
		return None()
	}

	hasDot := strings.Contains(text, ".")
	hasComma := strings.Contains(text, ",")
	switch {
	case hasDot && hasComma:
		text = strings.ReplaceAll(text, ".", "")
		text = strings.ReplaceAll(text, ",", ".")
	case hasDot:
		text = strings.ReplaceAll(text, ".", "")
	case hasComma:
		text = strings.ReplaceAll(text, ",", ".")
	}

	d, err := decimal.NewFromString(text)
	if err != nil {
		return None()
	}
	// Float64 expands the full exponent, so bound the magnitude first.
	magnitude := int64(d.Exponent()) + int64(d.NumDigits())
	switch {
	case d.IsZero():
		return Some(0)
	case magnitude > maxDecimalMagnitude:
		return None()
	case magnitude < -maxDecimalMagnitude:
		return Some(0)
	}
	f, _ := d.Float64()
	return fromFloat(f)
}

func fromFloat(f float64) Amount {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return None()
	}
	if f == 0 {
		// Collapses -0 to +0.
		return Some(0)
	}
	return Some(f)
}
