// Package datetime provides date and time utility functions.
package datetime

import (
	"strings"
	"time"
)

// DateTimeLayout is the year-month form used for machine-readable period
// columns in exports.
const DateTimeLayout = "2006-01"

// dateLayouts are tried in order by ParseDate. Numeric day/month forms are
// read month-first.
var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02",
	DateTimeLayout,
	"2006/01/02",
	"2006/01",
	"01/02/2006",
	"1/2/2006",
	"January 2006",
	"Jan 2006",
	"Jan-2006",
	"Jan 06",
	"Jan-06",
	"02-Jan-2006",
	"2 January 2006",
	"2 Jan 2006",
	"January 2, 2006",
	"Jan 2, 2006",
}

// ParseDate attempts every known layout against the trimmed text and returns
// the first successful parse.
func ParseDate(text string) (time.Time, bool) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, trimmed); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// MonthKey formats t in DateTimeLayout.
func MonthKey(t time.Time) string {
	return t.Format(DateTimeLayout)
}
