package gearing

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/iwvelando/gearing-dashboard/internal/workbook"
	"github.com/iwvelando/gearing-dashboard/pkg/constants"
	"github.com/iwvelando/gearing-dashboard/pkg/datetime"
	"github.com/iwvelando/gearing-dashboard/pkg/mathutil"
	"github.com/iwvelando/gearing-dashboard/pkg/period"
	"github.com/iwvelando/gearing-dashboard/pkg/value"
	"go.uber.org/zap"
)

var (
	// ErrMissingColumn aborts a section whose required input columns are absent.
	ErrMissingColumn = errors.New("required column not found")
	// ErrEmptyResult marks a section with no data after filtering.
	ErrEmptyResult = errors.New("no data for the selected filters")
	// ErrUnknownSection is returned when looking up a section key that was not run.
	ErrUnknownSection = errors.New("unknown section")
)

// RunContext carries everything one run needs. It is built once and never
// mutated.
type RunContext struct {
	RunID    string
	Filter   Filter
	Sections []Section
	Logger   *zap.Logger
}

// NewRunContext fills in a run id, the default sections and a no-op logger
// where the caller left them empty.
func NewRunContext(logger *zap.Logger, filter Filter, sections []Section) RunContext {
	if logger == nil {
		logger = zap.NewNop()
	}
	if len(sections) == 0 {
		sections = DefaultSections()
	}
	id := uuid.New().String()
	return RunContext{
		RunID:    id,
		Filter:   filter,
		Sections: append([]Section(nil), sections...),
		Logger:   logger.With(zap.String("run", id)),
	}
}

// Row is one period of a section series.
type Row struct {
	SortKey int
	Label   string
	Month   string
	// Amount is the section total, or the ratio numerator for ratio sections.
	Amount      value.Amount
	AmountT     value.Amount
	Denominator value.Amount
	Ratio       value.Amount
}

// Series returns the value a chart plots for the row.
func (r Row) Series(kind Kind) value.Amount {
	if kind == KindRatio {
		return r.Ratio
	}
	return r.Amount
}

// KPI summarizes the last two points of a section series.
type KPI struct {
	LatestLabel  string
	Latest       float64
	Previous     float64
	Delta        float64
	DeltaPercent float64
}

// SectionResult is either rows or an error; a failed section never affects
// the others.
type SectionResult struct {
	Section Section
	Rows    []Row
	KPI     *KPI
	Err     error
}

// Report is the outcome of one run over one sheet.
type Report struct {
	RunID    string
	Sheet    string
	Dropped  int
	Sections []SectionResult
	Warnings []string
}

// Section finds the result for key.
func (r Report) Section(key string) (SectionResult, error) {
	for _, s := range r.Sections {
		if s.Section.Key == key {
			return s, nil
		}
	}
	return SectionResult{}, fmt.Errorf("%w: %s", ErrUnknownSection, key)
}

// Run computes every section of rc over sheet.
func Run(rc RunContext, sheet *workbook.Sheet) Report {
	logger := rc.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	table := Prepare(sheet)
	report := Report{RunID: rc.RunID, Dropped: table.Dropped}
	if sheet != nil {
		report.Sheet = sheet.Name
	}
	if table.Dropped > 0 {
		report.Warnings = append(report.Warnings,
			fmt.Sprintf("%d rows skipped because the period could not be read", table.Dropped))
	}

	obs := rc.Filter.Apply(table.Observations)
	for _, section := range rc.Sections {
		result := runSection(section, table, obs)
		if result.Err != nil {
			report.Warnings = append(report.Warnings, fmt.Sprintf("%s: %v", section.Title, result.Err))
			logger.Warn("section skipped",
				zap.String("op", "gearing.Run"),
				zap.String("section", section.Key),
				zap.Error(result.Err),
			)
		} else {
			logger.Debug("section computed",
				zap.String("op", "gearing.Run"),
				zap.String("section", section.Key),
				zap.Int("rows", len(result.Rows)),
			)
		}
		report.Sections = append(report.Sections, result)
	}

	logger.Info("gearing run complete",
		zap.String("op", "gearing.Run"),
		zap.Int("observations", len(table.Observations)),
		zap.Int("filtered", len(obs)),
		zap.Int("dropped", table.Dropped),
		zap.Int("sections", len(report.Sections)),
	)
	return report
}

func runSection(section Section, table Table, obs []Observation) SectionResult {
	result := SectionResult{Section: section}
	if err := section.Validate(); err != nil {
		result.Err = err
		return result
	}

	required := []string{constants.ColumnPeriod, constants.ColumnValue, constants.ColumnCategory}
	if missing := table.MissingColumns(required...); len(missing) > 0 {
		result.Err = fmt.Errorf("%w: %s", ErrMissingColumn, strings.Join(missing, ", "))
		return result
	}

	switch section.Kind {
	case KindRatio:
		numerator := SumCategories(obs, section.Categories...)
		denominator := SingleSeries(obs, section.Denominator)
		for _, r := range ComputeRatios(numerator, denominator) {
			result.Rows = append(result.Rows, newRow(r.SortKey, r.Label, r.Numerator, r.Denominator, r.Ratio))
		}
	case KindSingle:
		for _, t := range SingleSeries(obs, section.Categories[0]) {
			result.Rows = append(result.Rows, newRow(t.SortKey, t.Label, t.Amount, value.None(), value.None()))
		}
	default:
		for _, t := range SumCategories(obs, section.Categories...) {
			result.Rows = append(result.Rows, newRow(t.SortKey, t.Label, t.Amount, value.None(), value.None()))
		}
	}

	if len(result.Rows) == 0 {
		result.Err = ErrEmptyResult
		return result
	}
	result.KPI = computeKPI(section.Kind, result.Rows)
	return result
}

func newRow(sortKey int, label string, amount, denominator, ratio value.Amount) Row {
	year, month := period.FromSortKey(sortKey)
	return Row{
		SortKey:     sortKey,
		Label:       label,
		Month:       datetime.MonthKey(time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)),
		Amount:      amount,
		AmountT:     mathutil.Trillions(amount),
		Denominator: denominator,
		Ratio:       ratio,
	}
}

func computeKPI(kind Kind, rows []Row) *KPI {
	var points []Row
	for _, r := range rows {
		if r.Series(kind).Valid {
			points = append(points, r)
		}
	}
	if len(points) == 0 {
		return nil
	}

	latest := points[len(points)-1]
	previous := latest
	if len(points) > 1 {
		previous = points[len(points)-2]
	}
	cur, prev := latest.Series(kind).Value, previous.Series(kind).Value
	return &KPI{
		LatestLabel:  latest.Label,
		Latest:       cur,
		Previous:     prev,
		Delta:        cur - prev,
		DeltaPercent: mathutil.DeltaPercent(cur, prev),
	}
}

// SelectSheet picks the sheet to run on: the first one carrying every
// required column, otherwise the first sheet.
func SelectSheet(wb *workbook.Workbook) *workbook.Sheet {
	if wb == nil {
		return nil
	}
	for _, s := range wb.Sheets {
		if len(s.MissingColumns(constants.ColumnPeriod, constants.ColumnValue, constants.ColumnCategory)) == 0 {
			return s
		}
	}
	return wb.First()
}
