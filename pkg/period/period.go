// Package period turns loosely formatted period labels ("Jan 2024",
// "Des 2023 Audited", "2024-08-31", "Agustus 24") into a sortable year/month
// key with an Indonesian display label.
package period

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/iwvelando/gearing-dashboard/pkg/constants"
	"github.com/iwvelando/gearing-dashboard/pkg/datetime"
	"github.com/iwvelando/gearing-dashboard/pkg/value"
)

// Parsed is a normalized period.
type Parsed struct {
	Year    int
	Month   int
	SortKey int
	Label   string
	Audited bool
}

type monthToken struct {
	token string
	month int
}

// monthTable is scanned in order; the first token found anywhere in the
// lower-cased text decides the month.
var monthTable = []monthToken{
	{"jan", 1}, {"feb", 2}, {"mar", 3}, {"apr", 4},
	{"may", 5}, {"mei", 5}, {"jun", 6}, {"jul", 7},
	{"aug", 8}, {"agu", 8}, {"sep", 9},
	{"oct", 10}, {"okt", 10},
	{"nov", 11}, {"dec", 12}, {"des", 12},
}

// MonthAbbrevID holds the Indonesian month abbreviations, indexed by month-1.
var MonthAbbrevID = [12]string{
	"Jan", "Feb", "Mar", "Apr", "Mei", "Jun",
	"Jul", "Agu", "Sep", "Okt", "Nov", "Des",
}

var (
	fourDigitYear = regexp.MustCompile(`(?:^|\D)(20\d{2})(?:\D|$)`)
	twoDigitYear  = regexp.MustCompile(`(?:^|\D)(\d{2})(?:\D|$)`)
)

// Parse normalizes a raw period cell. The boolean is false when no valid
// year and month could be found; such rows are dropped by callers.
func Parse(cell value.Cell) (Parsed, bool) {
	year, month, ok := YearMonth(cell)
	if !ok {
		return Parsed{}, false
	}
	return Parsed{
		Year:    year,
		Month:   month,
		SortKey: SortKey(year, month),
		Label:   Label(year, month),
		Audited: IsAudited(cell),
	}, true
}

// ParseText is Parse for a text cell.
func ParseText(text string) (Parsed, bool) {
	return Parse(value.Text(text))
}

// YearMonth extracts the year and month from a raw period cell.
func YearMonth(cell value.Cell) (int, int, bool) {
	if t, ok := cell.Time(); ok {
		return valid(t.Year(), int(t.Month()))
	}
	if cell.IsMissing() {
		return 0, 0, false
	}

	text := cell.String()
	if t, ok := datetime.ParseDate(text); ok {
		return valid(t.Year(), int(t.Month()))
	}

	lower := strings.ToLower(text)
	month := 0
	for _, m := range monthTable {
		if strings.Contains(lower, m.token) {
			month = m.month
			break
		}
	}
	if month == 0 {
		return 0, 0, false
	}

	year, ok := findYear(lower)
	if !ok {
		return 0, 0, false
	}
	return valid(year, month)
}

func findYear(text string) (int, bool) {
	if m := fourDigitYear.FindStringSubmatch(text); m != nil {
		y, err := strconv.Atoi(m[1])
		return y, err == nil
	}
	if m := twoDigitYear.FindStringSubmatch(text); m != nil {
		y, err := strconv.Atoi(m[1])
		if err != nil {
			return 0, false
		}
		return y + constants.TwoDigitYearBase, true
	}
	return 0, false
}

func valid(year, month int) (int, int, bool) {
	if month < 1 || month > constants.MonthsPerYear {
		return 0, 0, false
	}
	if year < constants.MinYear || year > constants.MaxYear {
		return 0, 0, false
	}
	return year, month, true
}

// IsAudited reports whether the raw period carries the audited marker.
func IsAudited(cell value.Cell) bool {
	return strings.Contains(strings.ToLower(cell.String()), constants.AuditedMarker)
}

// SortKey encodes a year and month as year*100+month.
func SortKey(year, month int) int {
	return year*constants.SortKeyYearFactor + month
}

// FromSortKey reverses SortKey.
func FromSortKey(key int) (year, month int) {
	return key / constants.SortKeyYearFactor, key % constants.SortKeyYearFactor
}

// Label renders "{Indonesian month abbreviation} {year}", e.g. "Agu 2024".
func Label(year, month int) string {
	if month < 1 || month > constants.MonthsPerYear {
		return strconv.Itoa(year)
	}
	return fmt.Sprintf("%s %d", MonthAbbrevID[month-1], year)
}

// MonthFromAbbrev maps an Indonesian or English month name or abbreviation
// to its number, for filter selections.
func MonthFromAbbrev(name string) (int, bool) {
	lower := strings.ToLower(strings.TrimSpace(name))
	if lower == "" {
		return 0, false
	}
	if n, err := strconv.Atoi(lower); err == nil {
		if n >= 1 && n <= constants.MonthsPerYear {
			return n, true
		}
		return 0, false
	}
	for _, m := range monthTable {
		if strings.HasPrefix(lower, m.token) {
			return m.month, true
		}
	}
	return 0, false
}
