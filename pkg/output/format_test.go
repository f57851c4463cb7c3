package output

import (
	"bytes"
	"encoding/csv"
	"errors"
	"strings"
	"testing"

	"github.com/iwvelando/gearing-dashboard/internal/breakdown"
	"github.com/iwvelando/gearing-dashboard/internal/gearing"
	"github.com/iwvelando/gearing-dashboard/pkg/value"
)

func ratioSection() gearing.SectionResult {
	return gearing.SectionResult{
		Section: gearing.Section{Key: "gearing_kur", Title: "Gearing Ratio KUR", Kind: gearing.KindRatio},
		Rows: []gearing.Row{
			{
				SortKey: 202401, Label: "Jan 2024", Month: "2024-01",
				Amount: value.Some(516859837493.95), AmountT: value.Some(0.51685983749395),
				Denominator: value.Some(30), Ratio: value.Some(17228661249.798334),
			},
			{
				SortKey: 202402, Label: "Feb 2024", Month: "2024-02",
				Amount: value.Some(200), AmountT: value.Some(2e-10),
			},
		},
		KPI: &gearing.KPI{LatestLabel: "Jan 2024", Latest: 5, Previous: 5},
	}
}

func TestPrettyFormat(t *testing.T) {
	report := gearing.Report{
		RunID: "run-1",
		Sheet: "Gearing",
		Sections: []gearing.SectionResult{
			{
				Section: gearing.Section{Key: "os_kur", Title: "OS Penjaminan KUR", Kind: gearing.KindSum},
				Rows: []gearing.Row{
					{Label: "Jan 2024", Amount: value.Some(2_500_000_000_000), AmountT: value.Some(2.5)},
				},
			},
			ratioSection(),
			{
				Section: gearing.Section{Key: "ekuitas_kur", Title: "Ekuitas KUR", Kind: gearing.KindSingle},
				Err:     gearing.ErrEmptyResult,
			},
		},
		Warnings: []string{"1 rows skipped because the period could not be read"},
	}

	var buf bytes.Buffer
	PrettyFormat(&buf, report)
	output := buf.String()

	expected := []string{
		"Run run-1 on sheet Gearing",
		"--- Results for section OS Penjaminan KUR (os_kur) ---",
		"Rp 2.500.000.000.000,00",
		"2,50 T",
		"Periode  | Outstanding",
		"5,00x",
		"Skipped: no data for the selected filters",
		"Warnings:",
		"1 rows skipped",
	}
	for _, want := range expected {
		if !strings.Contains(output, want) {
			t.Errorf("PrettyFormat output missing %q\n%s", want, output)
		}
	}
}

func TestCsvFormat(t *testing.T) {
	out, err := CsvString(ratioSection())
	if err != nil {
		t.Fatalf("CsvString() error = %v", err)
	}

	records, err := csv.NewReader(strings.NewReader(out)).ReadAll()
	if err != nil {
		t.Fatalf("export is not valid CSV: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("expected header and 2 rows, got %d", len(records))
	}
	if strings.Join(records[0], ",") != strings.Join(CsvHeader, ",") {
		t.Errorf("unexpected header %v", records[0])
	}
	if records[1][0] != "Jan 2024" || records[1][1] != "2024-01" || records[1][2] != "516.859.837.493,95" {
		t.Errorf("unexpected first row %v", records[1])
	}
	if records[2][4] != "" || records[2][5] != "" {
		t.Errorf("missing denominator and ratio should be blank, got %v", records[2])
	}
}

func TestCsvRoundTrip(t *testing.T) {
	section := ratioSection()
	out, err := CsvString(section)
	if err != nil {
		t.Fatal(err)
	}
	records, err := csv.NewReader(strings.NewReader(out)).ReadAll()
	if err != nil {
		t.Fatal(err)
	}

	for i, row := range section.Rows {
		record := records[i+1]
		columns := []struct {
			name string
			text string
			want value.Amount
		}{
			{"amount", record[2], row.Amount},
			{"amount_t", record[3], row.AmountT},
			{"denominator", record[4], row.Denominator},
			{"ratio", record[5], row.Ratio},
		}
		for _, c := range columns {
			got := value.NormalizeText(c.text)
			if got != c.want {
				t.Errorf("row %d %s: %q read back as %+v, expected %+v", i, c.name, c.text, got, c.want)
			}
		}
	}
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("disk full") }

func TestCsvFormatWriteError(t *testing.T) {
	if err := CsvFormat(failingWriter{}, ratioSection()); err == nil {
		t.Error("expected write error to be returned")
	}
}

func TestBreakdownFormat(t *testing.T) {
	report := breakdown.Report{
		Sheets: []breakdown.SheetResult{
			{
				Sheet: "Bank", Kind: breakdown.KindBank, DimensionLabel: "Bank",
				Bars: []breakdown.Bar{{Label: "BRI", Total: 2_000_000_000_000, TotalT: 2}},
				Metrics: []breakdown.Metric{
					{Name: "Jumlah Debitur", Total: 12345, Debtor: true},
					{Name: "OS Penjaminan", Total: 3_500_000_000_000, TotalT: 3.5},
				},
			},
			{Sheet: "Kosong", Kind: breakdown.KindGeneric, Skipped: true, Warnings: []string{"sheet is empty"}},
		},
	}

	var buf bytes.Buffer
	BreakdownFormat(&buf, report)
	output := buf.String()

	for _, want := range []string{
		"--- Breakdown by Bank (bank) ---",
		"BRI",
		"Rp 2.000.000.000.000,00",
		"12.345 debitur",
		"3,50 T",
		"Skipped",
		"Warning: sheet is empty",
	} {
		if !strings.Contains(output, want) {
			t.Errorf("BreakdownFormat output missing %q\n%s", want, output)
		}
	}
}
