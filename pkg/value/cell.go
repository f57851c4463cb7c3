// Package value models raw spreadsheet cells and normalizes them into nullable
// amounts, following the Indonesian number convention ("." groups thousands,
// "," separates decimals).
package value

import (
	"strconv"
	"strings"
	"time"
)

// Kind identifies which variant a Cell holds.
type Kind int

const (
	KindMissing Kind = iota
	KindNumber
	KindText
	KindDate
)

func (k Kind) String() string {
	switch k {
	case KindNumber:
		return "number"
	case KindText:
		return "text"
	case KindDate:
		return "date"
	default:
		return "missing"
	}
}

// Cell is one raw input value: a number, a text, a date or nothing at all.
type Cell struct {
	kind Kind
	num  float64
	text string
	date time.Time
}

// Missing returns an empty cell.
func Missing() Cell { return Cell{kind: KindMissing} }

// Number returns a cell holding an already-numeric value.
func Number(f float64) Cell { return Cell{kind: KindNumber, num: f} }

// Text returns a cell holding free text. The text is kept verbatim.
func Text(s string) Cell { return Cell{kind: KindText, text: s} }

// Date returns a cell holding a native date value.
func Date(t time.Time) Cell { return Cell{kind: KindDate, date: t} }

// Kind reports the variant held by the cell.
func (c Cell) Kind() Kind { return c.kind }

// IsMissing reports whether the cell is empty, including whitespace-only text.
func (c Cell) IsMissing() bool {
	return c.kind == KindMissing || (c.kind == KindText && strings.TrimSpace(c.text) == "")
}

// Float returns the numeric payload of a KindNumber cell.
func (c Cell) Float() (float64, bool) {
	if c.kind != KindNumber {
		return 0, false
	}
	return c.num, true
}

// Time returns the payload of a KindDate cell.
func (c Cell) Time() (time.Time, bool) {
	if c.kind != KindDate {
		return time.Time{}, false
	}
	return c.date, true
}

// String renders the cell as text, the way it is shown in previews and used
// for substring checks such as the audited marker.
func (c Cell) String() string {
	switch c.kind {
	case KindNumber:
		return strconv.FormatFloat(c.num, 'f', -1, 64)
	case KindText:
		return c.text
	case KindDate:
		return c.date.Format("2006-01-02")
	default:
		return ""
	}
}
