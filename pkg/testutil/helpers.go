// Package testutil provides common utility functions for testing.
package testutil

import (
	"github.com/iwvelando/gearing-dashboard/internal/gearing"
	"github.com/iwvelando/gearing-dashboard/internal/workbook"
	"github.com/iwvelando/gearing-dashboard/pkg/constants"
	"github.com/iwvelando/gearing-dashboard/pkg/mathutil"
	"github.com/iwvelando/gearing-dashboard/pkg/value"
)

// FindSection finds a section result by key in a report.
// Returns a pointer to the result if found, nil otherwise.
func FindSection(report gearing.Report, key string) *gearing.SectionResult {
	for i := range report.Sections {
		if report.Sections[i].Section.Key == key {
			return &report.Sections[i]
		}
	}
	return nil
}

// FindRow finds a row by period label in a section result.
func FindRow(section *gearing.SectionResult, label string) *gearing.Row {
	if section == nil {
		return nil
	}
	for i := range section.Rows {
		if section.Rows[i].Label == label {
			return &section.Rows[i]
		}
	}
	return nil
}

// AmountNear reports whether a is present and within one sen of want.
func AmountNear(a value.Amount, want float64) bool {
	return a.Valid && mathutil.WithinTolerance(a.Value, want, constants.CurrencyTolerance)
}

// TextSheet builds a sheet whose cells are all text; empty strings become
// missing cells.
func TextSheet(name string, header []string, rows ...[]string) *workbook.Sheet {
	sheet := &workbook.Sheet{Name: name, Header: header}
	for _, r := range rows {
		cells := make([]value.Cell, len(r))
		for i, v := range r {
			if v == "" {
				cells[i] = value.Missing()
				continue
			}
			cells[i] = value.Text(v)
		}
		sheet.Rows = append(sheet.Rows, cells)
	}
	return sheet
}

// GearingCSV is a small gearing upload: KUR Gen 1 + Gen 2 of 150 against
// equity of 30 in Jan 2024, and 200 without equity in Feb 2024.
const GearingCSV = "Periode,Jenis,Value\n" +
	"Jan 2024,KUR Gen 1,100\n" +
	"Jan 2024,KUR Gen 2,50\n" +
	"Jan 2024,Ekuitas KUR,30\n" +
	"Feb 2024,KUR Gen 1,200\n" +
	"Des 2023,Ekuitas KUR,10\n" +
	"Des 2023 Audited,Ekuitas KUR,20\n"
