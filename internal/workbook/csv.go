package workbook

import (
	"bytes"
	"encoding/csv"
	"errors"
	"io"
	"regexp"
	"strconv"
	"strings"

	"github.com/iwvelando/gearing-dashboard/pkg/constants"
	"github.com/iwvelando/gearing-dashboard/pkg/value"
)

// plainNumber matches what a spreadsheet tool would read as a number
// without any locale handling.
var plainNumber = regexp.MustCompile(`^[+-]?(\d+\.?\d*|\.\d+)([eE][+-]?\d+)?$`)

// readCSV reads a CSV upload as a single sheet. A column whose non-empty
// cells are all plain numbers is typed as numeric; every other column stays
// text, so "1.234,50" reaches the value normalizer untouched.
func readCSV(data []byte) ([]*Sheet, error) {
	data = bytes.TrimPrefix(data, []byte("\ufeff"))
	reader := csv.NewReader(bytes.NewReader(data))
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return []*Sheet{{Name: constants.CSVSheetName}}, nil
		}
		return nil, err
	}

	var records [][]string
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}

	numeric := numericColumns(len(header), records)
	rows := make([][]value.Cell, 0, len(records))
	for _, record := range records {
		row := make([]value.Cell, len(record))
		for i, field := range record {
			row[i] = csvCell(field, i < len(numeric) && numeric[i])
		}
		rows = append(rows, row)
	}

	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}
	return []*Sheet{{Name: constants.CSVSheetName, Header: header, Rows: rows}}, nil
}

func numericColumns(width int, records [][]string) []bool {
	numeric := make([]bool, width)
	seen := make([]bool, width)
	for i := range numeric {
		numeric[i] = true
	}
	for _, record := range records {
		for i := 0; i < width && i < len(record); i++ {
			field := strings.TrimSpace(record[i])
			if field == "" {
				continue
			}
			seen[i] = true
			if !plainNumber.MatchString(field) {
				numeric[i] = false
			}
		}
	}
	for i := range numeric {
		numeric[i] = numeric[i] && seen[i]
	}
	return numeric
}

func csvCell(field string, numeric bool) value.Cell {
	trimmed := strings.TrimSpace(field)
	if trimmed == "" {
		return value.Missing()
	}
	if numeric {
		if f, err := strconv.ParseFloat(trimmed, 64); err == nil {
			return value.Number(f)
		}
	}
	return value.Text(field)
}
