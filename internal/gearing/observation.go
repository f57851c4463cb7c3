// Package gearing turns a table of periodic KUR/PEN guarantee figures into
// per-period outstanding, equity and gearing-ratio series.
package gearing

import (
	"strings"

	"github.com/iwvelando/gearing-dashboard/internal/workbook"
	"github.com/iwvelando/gearing-dashboard/pkg/constants"
	"github.com/iwvelando/gearing-dashboard/pkg/period"
	"github.com/iwvelando/gearing-dashboard/pkg/value"
)

// Observation is one input row after period and value normalization.
type Observation struct {
	Row      int
	Period   period.Parsed
	Category string
	Amount   value.Amount
}

// Table is the normalized form of one sheet.
type Table struct {
	Observations []Observation
	// Dropped counts rows whose period could not be parsed.
	Dropped int
	columns map[string]struct{}
}

// MissingColumns reports which of the named input columns are absent.
func (t Table) MissingColumns(names ...string) []string {
	var missing []string
	for _, name := range names {
		if _, ok := t.columns[strings.ToLower(name)]; !ok {
			missing = append(missing, name)
		}
	}
	return missing
}

// Prepare normalizes every row of sheet. Rows with an unparseable period are
// dropped and counted; unparseable values become missing amounts.
func Prepare(sheet *workbook.Sheet) Table {
	table := Table{columns: make(map[string]struct{})}
	if sheet == nil {
		return table
	}
	for _, h := range sheet.Header {
		table.columns[strings.ToLower(strings.TrimSpace(h))] = struct{}{}
	}

	periodCol, hasPeriod := sheet.ColumnIndex(constants.ColumnPeriod)
	valueCol, hasValue := sheet.ColumnIndex(constants.ColumnValue)
	if !hasPeriod || !hasValue {
		return table
	}
	categoryCol, hasCategory := sheet.ColumnIndex(constants.ColumnCategory)

	for i := range sheet.Rows {
		parsed, ok := period.Parse(sheet.Cell(i, periodCol))
		if !ok {
			table.Dropped++
			continue
		}
		obs := Observation{
			Row:    i,
			Period: parsed,
			Amount: value.Normalize(sheet.Cell(i, valueCol)),
		}
		if hasCategory {
			obs.Category = strings.TrimSpace(sheet.Cell(i, categoryCol).String())
		}
		table.Observations = append(table.Observations, obs)
	}
	return table
}

// Filter narrows observations to selected years and months. An empty list
// selects everything.
type Filter struct {
	Years  []int
	Months []int
}

// Apply returns the observations that pass the filter, in input order.
func (f Filter) Apply(obs []Observation) []Observation {
	if len(f.Years) == 0 && len(f.Months) == 0 {
		return obs
	}
	years := intSet(f.Years)
	months := intSet(f.Months)

	out := make([]Observation, 0, len(obs))
	for _, o := range obs {
		if len(years) > 0 {
			if _, ok := years[o.Period.Year]; !ok {
				continue
			}
		}
		if len(months) > 0 {
			if _, ok := months[o.Period.Month]; !ok {
				continue
			}
		}
		out = append(out, o)
	}
	return out
}

func intSet(values []int) map[int]struct{} {
	set := make(map[int]struct{}, len(values))
	for _, v := range values {
		set[v] = struct{}{}
	}
	return set
}
