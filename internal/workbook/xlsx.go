package workbook

import (
	"bytes"
	"strconv"
	"strings"

	"github.com/iwvelando/gearing-dashboard/pkg/value"
	"github.com/xuri/excelize/v2"
)

// Built-in number formats that excelize and Excel treat as dates.
var builtinDateFormats = map[int]struct{}{
	14: {}, 15: {}, 16: {}, 17: {}, 18: {}, 19: {}, 20: {}, 21: {}, 22: {},
	27: {}, 28: {}, 29: {}, 30: {}, 31: {}, 32: {}, 33: {}, 34: {}, 35: {}, 36: {},
	45: {}, 46: {}, 47: {}, 50: {}, 51: {}, 52: {}, 53: {}, 54: {}, 55: {}, 56: {}, 57: {}, 58: {},
}

func readXLSX(data []byte) ([]*Sheet, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = f.Close()
	}()

	var sheets []*Sheet
	for _, name := range f.GetSheetList() {
		sheet, err := readXLSXSheet(f, name)
		if err != nil {
			return nil, err
		}
		sheets = append(sheets, sheet)
	}
	return sheets, nil
}

func readXLSXSheet(f *excelize.File, name string) (*Sheet, error) {
	raw, err := f.GetRows(name, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, err
	}
	sheet := &Sheet{Name: name}
	if len(raw) == 0 {
		return sheet, nil
	}

	sheet.Header = make([]string, len(raw[0]))
	for i, h := range raw[0] {
		sheet.Header[i] = strings.TrimSpace(h)
	}

	dateStyles := make(map[int]bool)
	for r := 1; r < len(raw); r++ {
		if blankRow(raw[r]) {
			continue
		}
		row := make([]value.Cell, len(raw[r]))
		for c, text := range raw[r] {
			axis, err := excelize.CoordinatesToCellName(c+1, r+1)
			if err != nil {
				return nil, err
			}
			row[c] = xlsxCell(f, name, axis, text, dateStyles)
		}
		sheet.Rows = append(sheet.Rows, row)
	}
	return sheet, nil
}

func xlsxCell(f *excelize.File, sheet, axis, text string, dateStyles map[int]bool) value.Cell {
	if strings.TrimSpace(text) == "" {
		return value.Missing()
	}

	cellType, err := f.GetCellType(sheet, axis)
	if err != nil {
		return value.Text(text)
	}
	switch cellType {
	case excelize.CellTypeNumber, excelize.CellTypeUnset, excelize.CellTypeDate, excelize.CellTypeFormula:
	default:
		return value.Text(text)
	}

	num, err := strconv.ParseFloat(strings.TrimSpace(text), 64)
	if err != nil {
		return value.Text(text)
	}

	if cellType == excelize.CellTypeDate || isDateStyled(f, sheet, axis, dateStyles) {
		if t, err := excelize.ExcelDateToTime(num, false); err == nil {
			return value.Date(t)
		}
	}
	return value.Number(num)
}

func isDateStyled(f *excelize.File, sheet, axis string, cache map[int]bool) bool {
	styleID, err := f.GetCellStyle(sheet, axis)
	if err != nil || styleID == 0 {
		return false
	}
	if known, ok := cache[styleID]; ok {
		return known
	}

	isDate := false
	if style, err := f.GetStyle(styleID); err == nil && style != nil {
		if _, ok := builtinDateFormats[style.NumFmt]; ok {
			isDate = true
		} else if style.CustomNumFmt != nil {
			isDate = looksLikeDateFormat(*style.CustomNumFmt)
		}
	}
	cache[styleID] = isDate
	return isDate
}

// looksLikeDateFormat spots custom formats such as "mmm yyyy" or "dd/mm/yy",
// skipping quoted literals and bracketed sections.
func looksLikeDateFormat(format string) bool {
	var plain strings.Builder
	inQuote, inBracket := false, false
	for _, r := range strings.ToLower(format) {
		switch {
		case r == '"':
			inQuote = !inQuote
		case inQuote:
		case r == '[':
			inBracket = true
		case r == ']':
			inBracket = false
		case inBracket:
		default:
			plain.WriteRune(r)
		}
	}
	s := plain.String()
	return strings.ContainsAny(s, "yd") || strings.Contains(s, "mmm")
}

func blankRow(cells []string) bool {
	for _, c := range cells {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
