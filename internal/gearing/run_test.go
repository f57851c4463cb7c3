package gearing

import (
	"errors"
	"testing"

	"github.com/iwvelando/gearing-dashboard/internal/workbook"
	"github.com/iwvelando/gearing-dashboard/pkg/value"
	"go.uber.org/zap"
)

func gearingSheet(rows ...[3]string) *workbook.Sheet {
	sheet := &workbook.Sheet{Name: "Gearing", Header: []string{"Periode", "Jenis", "Value"}}
	for _, r := range rows {
		sheet.Rows = append(sheet.Rows, []value.Cell{value.Text(r[0]), value.Text(r[1]), value.Text(r[2])})
	}
	return sheet
}

func scenarioSheet() *workbook.Sheet {
	return gearingSheet(
		[3]string{"Jan 2024", "KUR Gen 1", "100"},
		[3]string{"Jan 2024", "KUR Gen 2", "50"},
		[3]string{"Jan 2024", "Ekuitas KUR", "30"},
		[3]string{"Jan 2024", "PEN Gen 1", "20"},
		[3]string{"Feb 2024", "KUR Gen 1", "200"},
		[3]string{"not a period", "KUR Gen 1", "999"},
	)
}

func TestRunScenario(t *testing.T) {
	rc := NewRunContext(zap.NewNop(), Filter{}, nil)
	report := Run(rc, scenarioSheet())

	if report.RunID == "" || report.RunID != rc.RunID {
		t.Errorf("expected report to carry run id %q, got %q", rc.RunID, report.RunID)
	}
	if report.Dropped != 1 {
		t.Errorf("expected 1 dropped row, got %d", report.Dropped)
	}
	if len(report.Sections) != len(DefaultSections()) {
		t.Fatalf("expected %d sections, got %d", len(DefaultSections()), len(report.Sections))
	}

	tests := []struct {
		key      string
		label    string
		expected float64
		ratio    bool
	}{
		{key: "os_kur", label: "Jan 2024", expected: 150},
		{key: "os_kur", label: "Feb 2024", expected: 200},
		{key: "ekuitas_kur", label: "Jan 2024", expected: 30},
		{key: "os_kur_pen", label: "Jan 2024", expected: 170},
		{key: "gearing_kur", label: "Jan 2024", expected: 5, ratio: true},
	}

	for _, tt := range tests {
		t.Run(tt.key+" "+tt.label, func(t *testing.T) {
			section, err := report.Section(tt.key)
			if err != nil {
				t.Fatalf("Section(%q) returned error: %v", tt.key, err)
			}
			if section.Err != nil {
				t.Fatalf("section %s failed: %v", tt.key, section.Err)
			}
			row, ok := findRow(section.Rows, tt.label)
			if !ok {
				t.Fatalf("no row %q in section %s", tt.label, tt.key)
			}
			got := row.Amount
			if tt.ratio {
				got = row.Ratio
			}
			if !got.Valid || got.Value != tt.expected {
				t.Errorf("%s %s = %+v, expected %v", tt.key, tt.label, got, tt.expected)
			}
		})
	}
}

func TestRunRatioWithoutEquity(t *testing.T) {
	report := Run(NewRunContext(nil, Filter{}, nil), scenarioSheet())
	section, err := report.Section("gearing_kur")
	if err != nil {
		t.Fatal(err)
	}
	row, ok := findRow(section.Rows, "Feb 2024")
	if !ok {
		t.Fatal("Feb 2024 must be present even without equity")
	}
	if row.Ratio.Valid {
		t.Errorf("expected missing ratio for Feb 2024, got %v", row.Ratio.Value)
	}
	if row.Month != "2024-02" {
		t.Errorf("expected month key 2024-02, got %q", row.Month)
	}
	if !row.AmountT.Valid || row.AmountT.Value != 200/1e12 {
		t.Errorf("unexpected trillion amount %+v", row.AmountT)
	}
}

func TestRunMissingColumn(t *testing.T) {
	sheet := &workbook.Sheet{
		Name:   "Gearing",
		Header: []string{"Periode", "Value"},
		Rows:   [][]value.Cell{{value.Text("Jan 2024"), value.Text("1")}},
	}

	report := Run(NewRunContext(nil, Filter{}, nil), sheet)
	for _, s := range report.Sections {
		if !errors.Is(s.Err, ErrMissingColumn) {
			t.Errorf("section %s: expected ErrMissingColumn, got %v", s.Section.Key, s.Err)
		}
		if len(s.Rows) != 0 {
			t.Errorf("section %s should have no rows", s.Section.Key)
		}
	}
	if len(report.Warnings) != len(report.Sections) {
		t.Errorf("expected one warning per section, got %v", report.Warnings)
	}
}

func TestRunSectionIsolation(t *testing.T) {
	sections := []Section{
		{Key: "broken", Title: "Broken", Kind: KindSingle, Categories: []string{"A", "B"}},
		{Key: "empty", Title: "Empty", Kind: KindSum, Categories: []string{"PEN Gen 2"}},
		{Key: "os_kur", Title: "OS", Kind: KindSum, Categories: []string{"KUR Gen 1", "KUR Gen 2"}},
	}
	report := Run(NewRunContext(nil, Filter{}, sections), scenarioSheet())

	if report.Sections[0].Err == nil {
		t.Error("expected invalid section definition to fail")
	}
	if !errors.Is(report.Sections[1].Err, ErrEmptyResult) {
		t.Errorf("expected ErrEmptyResult, got %v", report.Sections[1].Err)
	}
	if report.Sections[2].Err != nil || len(report.Sections[2].Rows) != 2 {
		t.Errorf("valid section should be unaffected: %+v", report.Sections[2])
	}
}

func TestRunFilter(t *testing.T) {
	tests := []struct {
		name     string
		filter   Filter
		rows     int
		emptyErr bool
	}{
		{name: "No filter", filter: Filter{}, rows: 2},
		{name: "January only", filter: Filter{Months: []int{1}}, rows: 1},
		{name: "Year without data", filter: Filter{Years: []int{2019}}, emptyErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			report := Run(NewRunContext(nil, tt.filter, nil), scenarioSheet())
			section, err := report.Section("os_kur")
			if err != nil {
				t.Fatal(err)
			}
			if tt.emptyErr {
				if !errors.Is(section.Err, ErrEmptyResult) {
					t.Errorf("expected ErrEmptyResult, got %v", section.Err)
				}
				return
			}
			if len(section.Rows) != tt.rows {
				t.Errorf("expected %d rows, got %d", tt.rows, len(section.Rows))
			}
		})
	}
}

func TestRunKPI(t *testing.T) {
	report := Run(NewRunContext(nil, Filter{}, nil), scenarioSheet())

	section, _ := report.Section("os_kur")
	if section.KPI == nil {
		t.Fatal("expected KPI for os_kur")
	}
	kpi := section.KPI
	if kpi.LatestLabel != "Feb 2024" || kpi.Latest != 200 || kpi.Previous != 150 || kpi.Delta != 50 {
		t.Errorf("unexpected KPI %+v", kpi)
	}

	// Feb 2024 has no ratio, so the ratio KPI falls back to the last valid point.
	ratio, _ := report.Section("gearing_kur")
	if ratio.KPI == nil || ratio.KPI.LatestLabel != "Jan 2024" || ratio.KPI.Latest != 5 || ratio.KPI.Delta != 0 {
		t.Errorf("unexpected ratio KPI %+v", ratio.KPI)
	}
}

func TestReportUnknownSection(t *testing.T) {
	report := Run(NewRunContext(nil, Filter{}, nil), scenarioSheet())
	if _, err := report.Section("nope"); !errors.Is(err, ErrUnknownSection) {
		t.Errorf("expected ErrUnknownSection, got %v", err)
	}
}

func TestRunNilSheet(t *testing.T) {
	report := Run(NewRunContext(nil, Filter{}, nil), nil)
	for _, s := range report.Sections {
		if !errors.Is(s.Err, ErrMissingColumn) {
			t.Errorf("section %s: expected ErrMissingColumn, got %v", s.Section.Key, s.Err)
		}
	}
}

func findRow(rows []Row, label string) (Row, bool) {
	for _, r := range rows {
		if r.Label == label {
			return r, true
		}
	}
	return Row{}, false
}

func TestSelectSheet(t *testing.T) {
	other := &workbook.Sheet{Name: "Notes", Header: []string{"Catatan"}}
	data := scenarioSheet()

	if got := SelectSheet(&workbook.Workbook{Sheets: []*workbook.Sheet{other, data}}); got != data {
		t.Errorf("expected the sheet with gearing columns, got %v", got.Name)
	}
	if got := SelectSheet(&workbook.Workbook{Sheets: []*workbook.Sheet{other}}); got != other {
		t.Error("expected fallback to the first sheet")
	}
	if SelectSheet(nil) != nil || SelectSheet(&workbook.Workbook{}) != nil {
		t.Error("expected nil for an empty workbook")
	}
}
