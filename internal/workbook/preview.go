package workbook

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/xuri/excelize/v2"
)

// previewRowLimit caps how many data rows a preview returns.
const previewRowLimit = 10

// Preview is a lightweight look at an uploaded aging report: the
// detected layout plus the first data rows, keyed by header name.
type Preview struct {
	Headers   []string            `json:"headers"`
	Rows      []map[string]string `json:"preview"`
	TotalRows int                 `json:"total_rows"`
	HeaderRow int                 `json:"header_row"`
}

// ReadPreview opens a workbook and returns its preview without running
// any classification. The upload UI uses it to confirm the detected
// layout before processing.
func ReadPreview(r io.Reader) (*Preview, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("ReadPreview: opening workbook: %w", err)
	}
	defer f.Close()

	sheet := f.GetSheetList()[0]
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("ReadPreview: reading sheet %q: %w", sheet, err)
	}

	headerRow, headers := detectHeaders(rows)

	type headerCol struct {
		name string
		col  int
	}
	ordered := make([]headerCol, 0, len(headers))
	for name, col := range headers {
		ordered = append(ordered, headerCol{name, col})
	}
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].col < ordered[j].col })

	p := &Preview{HeaderRow: headerRow}
	if total := len(rows) - headerRow; total > 0 {
		p.TotalRows = total
	}
	for _, h := range ordered {
		p.Headers = append(p.Headers, h.name)
	}

	for i := headerRow + 1; i <= len(rows) && len(p.Rows) < previewRowLimit; i++ {
		rowData := make(map[string]string, len(ordered))
		for _, h := range ordered {
			rowData[h.name] = strings.TrimSpace(cellAt(rows, i, h.col))
		}
		p.Rows = append(p.Rows, rowData)
	}
	return p, nil
}
