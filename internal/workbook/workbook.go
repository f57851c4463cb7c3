// Package workbook reads uploaded CSV and XLSX files into in-memory sheets of
// typed cells.
package workbook

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/iwvelando/gearing-dashboard/pkg/value"
)

// ErrUnsupportedFormat is returned for uploads that are neither CSV nor XLSX.
var ErrUnsupportedFormat = errors.New("unsupported file format, expected .csv or .xlsx")

// Workbook is one parsed upload.
type Workbook struct {
	ID     string
	Name   string
	Sheets []*Sheet
}

// Sheet is one table: a header row and the data rows beneath it.
type Sheet struct {
	Name   string
	Header []string
	Rows   [][]value.Cell
}

// Load parses an upload, choosing the reader from the file extension.
func Load(name string, data []byte) (*Workbook, error) {
	var (
		sheets []*Sheet
		err    error
	)
	switch strings.ToLower(filepath.Ext(name)) {
	case ".csv":
		sheets, err = readCSV(data)
	case ".xlsx", ".xlsm":
		sheets, err = readXLSX(data)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, name)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", name, err)
	}
	return &Workbook{ID: Fingerprint(data), Name: name, Sheets: sheets}, nil
}

// Fingerprint identifies an upload by content.
func Fingerprint(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// Sheet returns the sheet with the given name, ignoring case.
func (w *Workbook) Sheet(name string) (*Sheet, bool) {
	for _, s := range w.Sheets {
		if strings.EqualFold(strings.TrimSpace(s.Name), strings.TrimSpace(name)) {
			return s, true
		}
	}
	return nil, false
}

// First returns the first sheet, or nil for an empty workbook.
func (w *Workbook) First() *Sheet {
	if len(w.Sheets) == 0 {
		return nil
	}
	return w.Sheets[0]
}

// ColumnIndex finds a header by name, ignoring case and surrounding spaces.
func (s *Sheet) ColumnIndex(name string) (int, bool) {
	want := strings.TrimSpace(name)
	for i, h := range s.Header {
		if strings.EqualFold(strings.TrimSpace(h), want) {
			return i, true
		}
	}
	return -1, false
}

// MissingColumns lists the names in required that the header lacks.
func (s *Sheet) MissingColumns(required ...string) []string {
	var missing []string
	for _, name := range required {
		if _, ok := s.ColumnIndex(name); !ok {
			missing = append(missing, name)
		}
	}
	return missing
}

// Cell returns the cell at row, col; short rows read as missing.
func (s *Sheet) Cell(row, col int) value.Cell {
	if row < 0 || row >= len(s.Rows) || col < 0 || col >= len(s.Rows[row]) {
		return value.Missing()
	}
	return s.Rows[row][col]
}

// Empty reports whether the sheet has no data rows.
func (s *Sheet) Empty() bool {
	return len(s.Rows) == 0
}
