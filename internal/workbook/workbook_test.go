package workbook

import (
	"errors"
	"testing"
	"time"

	"github.com/iwvelando/gearing-dashboard/pkg/value"
	"github.com/xuri/excelize/v2"
)

func TestLoadCSV(t *testing.T) {
	data := []byte("\ufeffPeriode,Jenis,Value\n" +
		"Jan 2024,KUR Gen 1,\"516.859.837.493,95\"\n" +
		"Des 2023 Audited,Ekuitas KUR,30\n" +
		",KUR Gen 2,\n")

	wb, err := Load("upload.csv", data)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(wb.Sheets) != 1 {
		t.Fatalf("expected 1 sheet, got %d", len(wb.Sheets))
	}
	sheet := wb.First()
	if sheet.Name != "CSV" {
		t.Errorf("expected sheet name CSV, got %s", sheet.Name)
	}
	if idx, ok := sheet.ColumnIndex("periode"); !ok || idx != 0 {
		t.Errorf("expected Periode at index 0, got %d (%v)", idx, ok)
	}
	if len(sheet.Rows) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(sheet.Rows))
	}

	if got := sheet.Cell(0, 2); got.Kind() != value.KindText || got.String() != "516.859.837.493,95" {
		t.Errorf("expected Indonesian amount to stay text, got %v %q", got.Kind(), got.String())
	}
	if got := sheet.Cell(2, 0); !got.IsMissing() {
		t.Errorf("expected empty period to be missing, got %q", got.String())
	}
	if got := sheet.Cell(5, 5); !got.IsMissing() {
		t.Error("expected out of range cell to be missing")
	}
	if wb.ID == "" || wb.ID != Fingerprint(data) {
		t.Error("expected workbook id to be the content fingerprint")
	}
}

func TestLoadCSVNumericColumn(t *testing.T) {
	data := []byte("Periode,Jenis,Value\nJan 2024,KUR Gen 1,1000000\nFeb 2024,KUR Gen 1,1234.5\n")

	wb, err := Load("plain.csv", data)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	cell := wb.First().Cell(1, 2)
	f, ok := cell.Float()
	if !ok || f != 1234.5 {
		t.Errorf("expected numeric column cell 1234.5, got %v (%v)", f, cell.Kind())
	}
}

func TestLoadUnsupported(t *testing.T) {
	_, err := Load("report.pdf", []byte("%PDF"))
	if !errors.Is(err, ErrUnsupportedFormat) {
		t.Fatalf("expected ErrUnsupportedFormat, got %v", err)
	}
}

func TestLoadXLSX(t *testing.T) {
	data := buildXLSX(t)

	wb, err := Load("upload.xlsx", data)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(wb.Sheets) != 2 {
		t.Fatalf("expected 2 sheets, got %d", len(wb.Sheets))
	}

	gearing, ok := wb.Sheet("gearing")
	if !ok {
		t.Fatal("expected Gearing sheet")
	}
	if len(gearing.Rows) != 2 {
		t.Fatalf("expected 2 data rows, got %d", len(gearing.Rows))
	}

	if f, ok := gearing.Cell(0, 2).Float(); !ok || f != 100 {
		t.Errorf("expected numeric value 100, got %v (%v)", f, gearing.Cell(0, 2).Kind())
	}
	if got := gearing.Cell(1, 2); got.Kind() != value.KindText || got.String() != "1.000.000,50" {
		t.Errorf("expected text value, got %v %q", got.Kind(), got.String())
	}

	tm, ok := gearing.Cell(1, 0).Time()
	if !ok {
		t.Fatalf("expected date cell, got %v %q", gearing.Cell(1, 0).Kind(), gearing.Cell(1, 0).String())
	}
	if tm.Year() != 2024 || tm.Month() != time.February {
		t.Errorf("expected Feb 2024, got %s", tm.Format("2006-01"))
	}

	bank, ok := wb.Sheet("Bank")
	if !ok || len(bank.Header) != 5 {
		t.Fatalf("expected Bank sheet with 5 columns, got %+v", bank)
	}
}

func TestCache(t *testing.T) {
	cache, err := NewCache(2)
	if err != nil {
		t.Fatalf("NewCache() error = %v", err)
	}

	data := []byte("Periode,Value\nJan 2024,1\n")
	first, hit, err := cache.Load("a.csv", data)
	if err != nil || hit {
		t.Fatalf("first Load() hit=%v err=%v", hit, err)
	}
	second, hit, err := cache.Load("a.csv", data)
	if err != nil || !hit {
		t.Fatalf("second Load() hit=%v err=%v", hit, err)
	}
	if first != second {
		t.Error("expected cached workbook to be reused")
	}
	if got, ok := cache.Get(first.ID); !ok || got != first {
		t.Error("expected Get to find the cached workbook")
	}

	if _, _, err := cache.Load("bad.txt", []byte("x")); err == nil {
		t.Error("expected error for unsupported upload")
	}
	if cache.Len() != 1 {
		t.Errorf("expected failed loads not to be cached, len=%d", cache.Len())
	}
}

func buildXLSX(t *testing.T) []byte {
	t.Helper()
	f := excelize.NewFile()
	defer func() {
		_ = f.Close()
	}()

	if err := f.SetSheetName("Sheet1", "Gearing"); err != nil {
		t.Fatalf("SetSheetName() error = %v", err)
	}
	rows := [][]interface{}{
		{"Periode", "Jenis", "Value"},
		{"Jan 2024", "KUR Gen 1", 100},
		{time.Date(2024, time.February, 29, 0, 0, 0, 0, time.UTC), "KUR Gen 2", "1.000.000,50"},
	}
	for i, row := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := f.SetSheetRow("Gearing", cell, &row); err != nil {
			t.Fatalf("SetSheetRow() error = %v", err)
		}
	}

	if _, err := f.NewSheet("Bank"); err != nil {
		t.Fatalf("NewSheet() error = %v", err)
	}
	header := []interface{}{"Periode", "KUR/PEN", "Bank", "Metrics", "Value"}
	if err := f.SetSheetRow("Bank", "A1", &header); err != nil {
		t.Fatalf("SetSheetRow() error = %v", err)
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		t.Fatalf("WriteToBuffer() error = %v", err)
	}
	return buf.Bytes()
}
