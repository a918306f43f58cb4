package ingest

import (
	"bytes"
	"errors"
	"strings"

	"github.com/xuri/excelize/v2"
)

// ErrNoSheet indicates the uploaded workbook contains no sheets.
var ErrNoSheet = errors.New("workbook has no sheets")

// headerScanLimit bounds how deep into a sheet the header search goes.
// Bank exports routinely prepend title banners and filter summaries
// before the real column row.
const headerScanLimit = 20

// ParseWorkbook decodes the first sheet of an XLSX payload into loosely
// typed rows keyed by the detected header row.
func ParseWorkbook(data []byte) ([]Row, error) {
	file, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer file.Close() //nolint:errcheck

	sheets := file.GetSheetList()
	if len(sheets) == 0 {
		return nil, ErrNoSheet
	}

	cells, err := file.GetRows(sheets[0])
	if err != nil {
		return nil, err
	}
	if len(cells) == 0 {
		return []Row{}, nil
	}

	headerIndex := findHeaderRow(cells)
	header := cells[headerIndex]

	rows := make([]Row, 0, len(cells)-headerIndex-1)
	for _, line := range cells[headerIndex+1:] {
		row := Row{}
		for col, key := range header {
			if strings.TrimSpace(key) == "" {
				continue
			}
			if col < len(line) {
				row[key] = line[col]
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// findHeaderRow scans the leading rows for one that looks like the real
// column header: it must mention the ticket id and either the amount or
// the days-open column. Falls back to the first row.
func findHeaderRow(cells [][]string) int {
	limit := len(cells)
	if limit > headerScanLimit {
		limit = headerScanLimit
	}
	for i := 0; i < limit; i++ {
		joined := strings.ToLower(strings.Join(cells[i], "|"))
		if strings.Contains(joined, "ticket id") &&
			(strings.Contains(joined, "amount") || strings.Contains(joined, "days open")) {
			return i
		}
	}
	return 0
}
