// Package breakdown summarizes per-sheet outstanding guarantee figures by
// dimension: projection, tenor, policy type, credit type, bank and city.
package breakdown

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/iwvelando/gearing-dashboard/internal/workbook"
	"github.com/iwvelando/gearing-dashboard/pkg/constants"
	"github.com/iwvelando/gearing-dashboard/pkg/mathutil"
	"github.com/iwvelando/gearing-dashboard/pkg/period"
	"github.com/iwvelando/gearing-dashboard/pkg/value"
	"go.uber.org/zap"
)

// MinColumns is the narrowest sheet layout that can be mapped.
const MinColumns = 5

// Column positions of the positional layout.
const (
	colPeriod = iota
	colKurPen
	colDimension
	colTenor
)

// Kind is the analysis chosen from a sheet name.
type Kind string

const (
	KindProjection Kind = "proyeksi"
	KindTenor      Kind = "tenor"
	KindPolicy     Kind = "jenis polis"
	KindCredit     Kind = "jenis kredit"
	KindBank       Kind = "bank"
	KindCity       Kind = "kota"
	KindGeneric    Kind = "generic"
)

// Projection dimensions, compared case-insensitively.
const (
	DimensionGross = "os gross"
	DimensionNett  = "os nett"
)

// KindOf picks the analysis for a sheet name. Projection, tenor and policy
// sheets match exactly; credit, bank and city sheets match on substring.
func KindOf(sheetName string) Kind {
	name := strings.ToLower(strings.TrimSpace(sheetName))
	switch {
	case name == string(KindProjection):
		return KindProjection
	case name == string(KindTenor):
		return KindTenor
	case name == string(KindPolicy):
		return KindPolicy
	case strings.Contains(name, string(KindCredit)):
		return KindCredit
	case strings.Contains(name, string(KindBank)):
		return KindBank
	case strings.Contains(name, string(KindCity)):
		return KindCity
	default:
		return KindGeneric
	}
}

// Options restricts which rows take part. An empty list selects everything.
type Options struct {
	Periods    []string
	KurPen     []string
	Dimensions []string
	// Tenors applies to projection sheets only.
	Tenors []string
}

// Bar is one aggregated category of a chart.
type Bar struct {
	Label  string  `json:"label"`
	Total  float64 `json:"total"`
	TotalT float64 `json:"totalT"`
}

// Metric is one row of the metrics summary. Debtor metrics are head counts,
// everything else is a Rupiah amount.
type Metric struct {
	Name   string  `json:"name"`
	Total  float64 `json:"total"`
	TotalT float64 `json:"totalT"`
	Debtor bool    `json:"debtor"`
}

// SheetResult is the analysis of one sheet.
type SheetResult struct {
	Sheet          string   `json:"sheet"`
	Kind           Kind     `json:"kind"`
	DimensionLabel string   `json:"dimensionLabel,omitempty"`
	Rows           int      `json:"rows"`
	Skipped        bool     `json:"skipped"`
	Gross          []Bar    `json:"gross,omitempty"`
	Nett           []Bar    `json:"nett,omitempty"`
	Bars           []Bar    `json:"bars,omitempty"`
	Metrics        []Metric `json:"metrics,omitempty"`
	Choices        Choices  `json:"choices"`
	Warnings       []string `json:"warnings,omitempty"`
}

// Choices lists the distinct filter values found in a sheet, sorted.
type Choices struct {
	Periods    []string `json:"periods,omitempty"`
	KurPen     []string `json:"kurpen,omitempty"`
	Dimensions []string `json:"dimensions,omitempty"`
	Tenors     []string `json:"tenors,omitempty"`
}

// Report is the breakdown of every sheet of one workbook.
type Report struct {
	Workbook string        `json:"workbook"`
	Sheets   []SheetResult `json:"sheets"`
}

type row struct {
	period    string
	kurPen    string
	dimension string
	tenor     string
	metric    string
	amount    value.Amount
}

// Run analyzes every sheet of wb independently; a bad sheet only produces a
// warning on its own result.
func Run(logger *zap.Logger, wb *workbook.Workbook, opts Options) Report {
	if logger == nil {
		logger = zap.NewNop()
	}
	report := Report{}
	if wb == nil {
		return report
	}
	report.Workbook = wb.Name
	for _, sheet := range wb.Sheets {
		result := Analyze(sheet, opts)
		if result.Skipped {
			logger.Warn("sheet skipped",
				zap.String("op", "breakdown.Run"),
				zap.String("sheet", sheet.Name),
				zap.Strings("warnings", result.Warnings),
			)
		} else {
			logger.Debug("sheet analyzed",
				zap.String("op", "breakdown.Run"),
				zap.String("sheet", sheet.Name),
				zap.String("kind", string(result.Kind)),
				zap.Int("rows", result.Rows),
			)
		}
		report.Sheets = append(report.Sheets, result)
	}
	logger.Info("breakdown complete",
		zap.String("op", "breakdown.Run"),
		zap.String("workbook", wb.Name),
		zap.Int("sheets", len(report.Sheets)),
	)
	return report
}

// Analyze runs the analysis matching the sheet's name.
func Analyze(sheet *workbook.Sheet, opts Options) SheetResult {
	result := SheetResult{Sheet: sheet.Name, Kind: KindOf(sheet.Name)}
	if sheet.Empty() {
		return skip(result, "sheet is empty")
	}
	if len(sheet.Header) < MinColumns {
		return skip(result, fmt.Sprintf("sheet has %d columns, at least %d are required", len(sheet.Header), MinColumns))
	}
	valueCol, ok := sheet.ColumnIndex(constants.ColumnValue)
	if !ok {
		return skip(result, fmt.Sprintf("column %s not found", constants.ColumnValue))
	}
	metricsCol, hasMetrics := sheet.ColumnIndex(constants.ColumnMetrics)
	result.DimensionLabel = strings.TrimSpace(sheet.Header[colDimension])

	rows := make([]row, 0, len(sheet.Rows))
	for i := range sheet.Rows {
		r := row{
			period:    label(sheet.Cell(i, colPeriod)),
			kurPen:    label(sheet.Cell(i, colKurPen)),
			dimension: label(sheet.Cell(i, colDimension)),
			tenor:     label(sheet.Cell(i, colTenor)),
			amount:    value.Normalize(sheet.Cell(i, valueCol)),
		}
		if hasMetrics {
			r.metric = label(sheet.Cell(i, metricsCol))
		}
		rows = append(rows, r)
	}

	result.Choices = Choices{
		Periods:    distinct(rows, func(r row) string { return r.period }),
		KurPen:     distinct(rows, func(r row) string { return r.kurPen }),
		Dimensions: distinct(rows, func(r row) string { return r.dimension }),
	}

	rows = keep(rows, opts.Periods, func(r row) string { return r.period })
	rows = keep(rows, opts.KurPen, func(r row) string { return r.kurPen })
	rows = keep(rows, opts.Dimensions, func(r row) string { return r.dimension })
	if len(rows) == 0 {
		result.Warnings = append(result.Warnings, "no rows left after filtering")
		return result
	}

	switch result.Kind {
	case KindProjection:
		result.Choices.Tenors = distinct(rows, func(r row) string { return r.tenor })
		rows = keep(rows, opts.Tenors, func(r row) string { return r.tenor })
		if len(rows) == 0 {
			result.Warnings = append(result.Warnings, "no rows left after tenor filter")
			return result
		}
		result.Rows = len(rows)
		result.Gross = byPeriod(rows, DimensionGross)
		result.Nett = byPeriod(rows, DimensionNett)
		if len(result.Gross) == 0 {
			result.Warnings = append(result.Warnings, "no OS Gross data")
		}
		if len(result.Nett) == 0 {
			result.Warnings = append(result.Warnings, "no OS Nett data")
		}
		return result
	case KindTenor:
		result.Bars = byTenor(rows)
	case KindPolicy, KindCredit, KindBank:
		result.Bars = sortByLabel(sumBy(rows, func(r row) string { return r.dimension }))
	case KindCity:
		result.Bars = byCity(rows)
		if len(result.Bars) == 0 {
			result.Warnings = append(result.Warnings, "no city data after filtering")
		}
	}

	result.Rows = len(rows)
	if hasMetrics {
		result.Metrics = summarize(rows)
	} else {
		result.Warnings = append(result.Warnings, fmt.Sprintf("column %s not found, metrics summary skipped", constants.ColumnMetrics))
	}
	return result
}

func skip(result SheetResult, reason string) SheetResult {
	result.Skipped = true
	result.Warnings = append(result.Warnings, reason)
	return result
}

// byPeriod sums projection rows of one dimension per period, ordered by the
// parsed period when possible.
func byPeriod(rows []row, dimension string) []Bar {
	var selected []row
	for _, r := range rows {
		if strings.EqualFold(r.dimension, dimension) && r.amount.Valid {
			selected = append(selected, r)
		}
	}
	bars := sumBy(selected, func(r row) string { return r.period })
	sort.SliceStable(bars, func(i, j int) bool {
		ki, iok := periodKey(bars[i].Label)
		kj, jok := periodKey(bars[j].Label)
		if iok && jok && ki != kj {
			return ki < kj
		}
		if iok != jok {
			return iok
		}
		return bars[i].Label < bars[j].Label
	})
	return bars
}

func periodKey(text string) (int, bool) {
	p, ok := period.ParseText(text)
	if !ok {
		return 0, false
	}
	return p.SortKey, true
}

func byTenor(rows []row) []Bar {
	type tenorTotal struct {
		tenor float64
		total value.Amount
	}
	totals := make(map[float64]*tenorTotal)
	var order []float64
	for _, r := range rows {
		if !r.amount.Valid {
			continue
		}
		t, err := strconv.ParseFloat(r.dimension, 64)
		if err != nil {
			continue
		}
		if _, ok := totals[t]; !ok {
			totals[t] = &tenorTotal{tenor: t}
			order = append(order, t)
		}
		totals[t].total = mathutil.Add(totals[t].total, r.amount)
	}
	sort.Float64s(order)
	bars := make([]Bar, 0, len(order))
	for _, t := range order {
		bars = append(bars, newBar(strconv.FormatFloat(t, 'f', -1, 64), totals[t].total.Value))
	}
	return bars
}

func byCity(rows []row) []Bar {
	var cities []row
	for _, r := range rows {
		if r.dimension == "" || strings.EqualFold(r.dimension, "nan") {
			continue
		}
		cities = append(cities, r)
	}
	bars := sumBy(cities, func(r row) string { return r.dimension })
	sort.SliceStable(bars, func(i, j int) bool {
		return bars[i].Total > bars[j].Total
	})
	return bars
}

// summarize sums rows per metric. A metric whose name mentions debtors is
// reported as a count.
func summarize(rows []row) []Metric {
	bars := sortByLabel(sumBy(rows, func(r row) string { return r.metric }))
	metrics := make([]Metric, 0, len(bars))
	for _, b := range bars {
		metrics = append(metrics, Metric{
			Name:   b.Label,
			Total:  b.Total,
			TotalT: b.TotalT,
			Debtor: strings.Contains(strings.ToLower(b.Label), constants.DebtorMetricMarker),
		})
	}
	return metrics
}

// sumBy totals valid amounts per non-empty key, in first-seen order.
func sumBy(rows []row, key func(row) string) []Bar {
	totals := make(map[string]value.Amount)
	var order []string
	for _, r := range rows {
		k := key(r)
		if k == "" || !r.amount.Valid {
			continue
		}
		if _, ok := totals[k]; !ok {
			order = append(order, k)
		}
		totals[k] = mathutil.Add(totals[k], r.amount)
	}
	bars := make([]Bar, 0, len(order))
	for _, k := range order {
		bars = append(bars, newBar(k, totals[k].Value))
	}
	return bars
}

func sortByLabel(bars []Bar) []Bar {
	sort.SliceStable(bars, func(i, j int) bool { return bars[i].Label < bars[j].Label })
	return bars
}

func newBar(label string, total float64) Bar {
	return Bar{
		Label:  label,
		Total:  total,
		TotalT: mathutil.Trillions(value.Some(total)).Value,
	}
}

func label(c value.Cell) string {
	if c.IsMissing() {
		return ""
	}
	return strings.TrimSpace(c.String())
}

func keep(rows []row, selected []string, key func(row) string) []row {
	if len(selected) == 0 {
		return rows
	}
	set := make(map[string]struct{}, len(selected))
	for _, s := range selected {
		set[strings.TrimSpace(s)] = struct{}{}
	}
	out := rows[:0:0]
	for _, r := range rows {
		if _, ok := set[key(r)]; ok {
			out = append(out, r)
		}
	}
	return out
}

func distinct(rows []row, key func(row) string) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, r := range rows {
		k := key(r)
		if k == "" {
			continue
		}
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
