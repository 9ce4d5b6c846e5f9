package parsers

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
)

// ExcelParser produces one unit per non-empty sheet. The unit text lists the
// column headers and every row, so sheet content stays searchable as prose.
type ExcelParser struct{}

func (p *ExcelParser) CanParse(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".xlsx" || ext == ".xlsm"
}

func (p *ExcelParser) Parse(path string) ([]Unit, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, &ParseError{Path: path, Err: err}
	}
	defer f.Close()

	var units []Unit
	for _, sheet := range f.GetSheetList() {
		rows, err := f.GetRows(sheet)
		if err != nil {
			return nil, &ParseError{Path: path, Err: fmt.Errorf("sheet %s: %w", sheet, err)}
		}

		text := sheetText(sheet, rows)
		if text == "" {
			continue
		}

		units = append(units, Unit{
			Text:     text,
			Location: fmt.Sprintf("Sheet: %s", sheet),
		})
	}

	return units, nil
}

func sheetText(sheet string, rows [][]string) string {
	if len(rows) == 0 {
		return ""
	}

	headers := rows[0]
	var b strings.Builder
	fmt.Fprintf(&b, "Sheet: %s\n", sheet)

	cols := make([]string, 0, len(headers))
	for _, h := range headers {
		if h = strings.TrimSpace(h); h != "" {
			cols = append(cols, normalizeCell(h))
		}
	}
	if len(cols) > 0 {
		fmt.Fprintf(&b, "Columns: %s\n", strings.Join(cols, ", "))
	}

	wrote := false
	for i, row := range rows[1:] {
		var cells []string
		for j, v := range row {
			v = strings.TrimSpace(v)
			if v == "" {
				continue
			}

			name := fmt.Sprintf("Column %d", j+1)
			if j < len(headers) && strings.TrimSpace(headers[j]) != "" {
				name = strings.TrimSpace(headers[j])
			}
			cells = append(cells, fmt.Sprintf("%s: %s", name, normalizeCell(v)))
		}
		if len(cells) == 0 {
			continue
		}

		fmt.Fprintf(&b, "Row %d: %s\n", i+2, strings.Join(cells, " | "))
		wrote = true
	}

	if !wrote && len(cols) == 0 {
		return ""
	}

	return strings.TrimRight(b.String(), "\n")
}

// normalizeCell renders numeric cells the same way regardless of how the
// workbook formatted them, so 42 and 42.0 hash identically across runs.
func normalizeCell(v string) string {
	if f, err := strconv.ParseFloat(v, 64); err == nil {
		return strconv.FormatFloat(f, 'f', -1, 64)
	}

	return v
}
