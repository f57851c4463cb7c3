package datetime

import (
	"testing"
	"time"
)

func TestParseDate(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		wantYear  int
		wantMonth time.Month
		wantOK    bool
	}{
		{"ISO date", "2024-01-31", 2024, time.January, true},
		{"ISO datetime", "2023-12-31 00:00:00", 2023, time.December, true},
		{"RFC3339", "2024-06-30T00:00:00Z", 2024, time.June, true},
		{"Year month", "2024-08", 2024, time.August, true},
		{"Slashed year first", "2024/03/31", 2024, time.March, true},
		{"Month first", "02/29/2024", 2024, time.February, true},
		{"English month and year", "January 2024", 2024, time.January, true},
		{"Short month and year", "Aug 2024", 2024, time.August, true},
		{"Short month and two digit year", "Aug 24", 2024, time.August, true},
		{"Dashed short month", "Sep-2023", 2023, time.September, true},
		{"Day first with month name", "30 June 2024", 2024, time.June, true},
		{"Surrounding whitespace", "  2024-05  ", 2024, time.May, true},
		{"Indonesian month is not a layout", "Agustus 2024", 0, 0, false},
		{"Audited suffix", "Des 2023 Audited", 0, 0, false},
		{"Empty", "", 0, 0, false},
		{"Garbage", "not a date", 0, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, ok := ParseDate(tt.input)
			if ok != tt.wantOK {
				t.Fatalf("ParseDate(%q) ok = %v, expected %v", tt.input, ok, tt.wantOK)
			}
			if !ok {
				return
			}
			if result.Year() != tt.wantYear || result.Month() != tt.wantMonth {
				t.Errorf("ParseDate(%q) = %d-%02d, expected %d-%02d",
					tt.input, result.Year(), result.Month(), tt.wantYear, tt.wantMonth)
			}
		})
	}
}

func TestMonthKey(t *testing.T) {
	date := time.Date(2024, time.December, 31, 0, 0, 0, 0, time.UTC)
	if got := MonthKey(date); got != "2024-12" {
		t.Errorf("MonthKey() = %s, expected 2024-12", got)
	}
}
