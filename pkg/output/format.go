// Package output provides utilities for formatting and displaying gearing and
// breakdown results.
package output

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"

	"github.com/iwvelando/gearing-dashboard/internal/breakdown"
	"github.com/iwvelando/gearing-dashboard/internal/gearing"
	"github.com/iwvelando/gearing-dashboard/pkg/format"
	"github.com/iwvelando/gearing-dashboard/pkg/value"
)

// CsvHeader is the column layout of a section export.
var CsvHeader = []string{"period", "month", "amount", "amount_t", "denominator", "ratio"}

// PrettyFormat outputs a human-readable rather than machine-readable table.
func PrettyFormat(w io.Writer, report gearing.Report) {
	fmt.Fprintf(w, "Run %s", report.RunID)
	if report.Sheet != "" {
		fmt.Fprintf(w, " on sheet %s", report.Sheet)
	}
	fmt.Fprintf(w, "\n\n")

	for i, section := range report.Sections {
		fmt.Fprintf(w, "--- Results for section %s (%s) ---\n", section.Section.Title, section.Section.Key)
		if section.Err != nil {
			fmt.Fprintf(w, "Skipped: %v\n", section.Err)
		} else {
			prettySection(w, section)
		}
		if i < len(report.Sections)-1 {
			fmt.Fprintf(w, "\n")
		}
	}

	if len(report.Warnings) > 0 {
		fmt.Fprintf(w, "\nWarnings:\n")
		for _, warning := range report.Warnings {
			fmt.Fprintf(w, "  - %s\n", warning)
		}
	}
}

func prettySection(w io.Writer, section gearing.SectionResult) {
	if section.Section.Kind == gearing.KindRatio {
		fmt.Fprintf(w, "Periode  | Outstanding          | Ekuitas              | Gearing\n")
		fmt.Fprintf(w, "_______  | ___________          | _______              | _______\n")
		for _, row := range section.Rows {
			fmt.Fprintf(w, "%-8s | %-20s | %-20s | %s\n",
				row.Label,
				format.Amount(row.Amount, format.Rupiah),
				format.Amount(row.Denominator, format.Rupiah),
				format.Amount(row.Ratio, format.Ratio),
			)
		}
	} else {
		fmt.Fprintf(w, "Periode  | Nilai                | Nilai (T)\n")
		fmt.Fprintf(w, "_______  | _____                | _________\n")
		for _, row := range section.Rows {
			fmt.Fprintf(w, "%-8s | %-20s | %s\n",
				row.Label,
				format.Amount(row.Amount, format.Rupiah),
				format.Amount(row.AmountT, format.Trillions),
			)
		}
	}

	if kpi := section.KPI; kpi != nil {
		render := format.Rupiah
		if section.Section.Kind == gearing.KindRatio {
			render = format.Ratio
		}
		fmt.Fprintf(w, "Latest %s: %s (previous %s, change %s, %s%%)\n",
			kpi.LatestLabel, render(kpi.Latest), render(kpi.Previous), render(kpi.Delta), format.Number(kpi.DeltaPercent))
	}
}

// CsvFormat outputs one section in comma-separated value format. Numbers are
// written in the Indonesian locale without rounding; missing numbers are
// left empty.
func CsvFormat(w io.Writer, section gearing.SectionResult) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(CsvHeader); err != nil {
		return err
	}
	for _, row := range section.Rows {
		record := []string{
			row.Label,
			row.Month,
			value.FormatAmount(row.Amount),
			value.FormatAmount(row.AmountT),
			value.FormatAmount(row.Denominator),
			value.FormatAmount(row.Ratio),
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// CsvString renders CsvFormat into a string.
func CsvString(section gearing.SectionResult) (string, error) {
	var buf bytes.Buffer
	if err := CsvFormat(&buf, section); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// BreakdownFormat outputs a human-readable dimension breakdown.
func BreakdownFormat(w io.Writer, report breakdown.Report) {
	for i, sheet := range report.Sheets {
		fmt.Fprintf(w, "--- Breakdown by %s (%s) ---\n", sheet.Sheet, sheet.Kind)
		if sheet.Skipped {
			fmt.Fprintf(w, "Skipped\n")
		}
		printBars(w, "Proyeksi OS Gross", sheet.Gross)
		printBars(w, "Proyeksi OS Nett", sheet.Nett)
		printBars(w, sheet.DimensionLabel, sheet.Bars)

		if len(sheet.Metrics) > 0 {
			fmt.Fprintf(w, "Metrics:\n")
			for _, m := range sheet.Metrics {
				if m.Debtor {
					fmt.Fprintf(w, "  %-30s %s debitur\n", m.Name, format.Count(m.Total))
				} else {
					fmt.Fprintf(w, "  %-30s %s\n", m.Name, format.Trillions(m.TotalT))
				}
			}
		}
		for _, warning := range sheet.Warnings {
			fmt.Fprintf(w, "Warning: %s\n", warning)
		}
		if i < len(report.Sheets)-1 {
			fmt.Fprintf(w, "\n")
		}
	}
}

func printBars(w io.Writer, title string, bars []breakdown.Bar) {
	if len(bars) == 0 {
		return
	}
	fmt.Fprintf(w, "%s:\n", title)
	for _, b := range bars {
		fmt.Fprintf(w, "  %-30s %-26s %s\n", b.Label, format.Rupiah(b.Total), format.Trillions(b.TotalT))
	}
}
