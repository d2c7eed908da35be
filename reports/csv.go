package reports

import (
	"bytes"
	"encoding/csv"
	"fmt"
)

// GenerateCSVReport writes headers followed by rows. Every row must have as
// many cells as headers.
func GenerateCSVReport(headers []string, rows [][]string, opts ...ReportOption) ([]byte, error) {
	options := getDefaultOptions()
	for _, opt := range opts {
		opt(options)
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write header: %w", err)
	}
	for i, row := range rows {
		if len(row) != len(headers) {
			return nil, fmt.Errorf("row %d length (%d) does not match header length (%d)", i, len(row), len(headers))
		}
		if err := w.Write(row); err != nil {
			return nil, fmt.Errorf("failed to write data row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("failed to flush CSV writer: %w", err)
	}
	return buf.Bytes(), nil
}
