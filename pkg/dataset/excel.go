package dataset

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"
)

// parseExcel reads the first sheet of an Office Open XML workbook. The
// first row is the header. Legacy binary .xls files are rejected by the
// reader and reported as errors.
func parseExcel(body []byte) ([]string, [][]string, error) {
	f, err := excelize.OpenReader(bytes.NewReader(body))
	if err != nil {
		return nil, nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, nil, fmt.Errorf("workbook has no sheets")
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, nil, fmt.Errorf("read sheet %q: %w", sheets[0], err)
	}
	if len(rows) == 0 {
		return nil, nil, fmt.Errorf("no columns to parse")
	}

	// GetRows trims trailing empty cells, so the header may be shorter than
	// the widest data row.
	header := rows[0]
	width := len(header)
	for _, r := range rows[1:] {
		if len(r) > width {
			width = len(r)
		}
	}
	for len(header) < width {
		header = append(header, "")
	}
	return header, rows[1:], nil
}
