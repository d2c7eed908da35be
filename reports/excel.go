package reports

import (
	"fmt"

	"github.com/xuri/excelize/v2"
)

const excelSheetName = "Sheet1"

// GenerateExcelReport writes a single sheet with a styled header row.
func GenerateExcelReport(headers []string, rows [][]string, opts ...ReportOption) ([]byte, error) {
	options := getDefaultOptions()
	for _, opt := range opts {
		opt(options)
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetRow(excelSheetName, "A1", &headers); err != nil {
		return nil, fmt.Errorf("failed to write header: %w", err)
	}
	headerStyle, err := f.NewStyle(createHeaderStyle(options.HeaderColor))
	if err != nil {
		return nil, fmt.Errorf("failed to create style: %w", err)
	}
	lastCol, err := excelize.ColumnNumberToName(len(headers))
	if err != nil {
		return nil, err
	}
	if err := f.SetCellStyle(excelSheetName, "A1", lastCol+"1", headerStyle); err != nil {
		return nil, fmt.Errorf("failed to apply style to header: %w", err)
	}

	for i, row := range rows {
		if len(row) != len(headers) {
			return nil, fmt.Errorf("row %d length (%d) does not match header length (%d)", i, len(row), len(headers))
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		if err := f.SetSheetRow(excelSheetName, cell, &row); err != nil {
			return nil, fmt.Errorf("failed to write data at %s: %w", cell, err)
		}
	}

	if err := f.SetColWidth(excelSheetName, "A", lastCol, 22); err != nil {
		return nil, fmt.Errorf("failed to set column width: %w", err)
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write Excel: %w", err)
	}
	return buf.Bytes(), nil
}

func createHeaderStyle(backgroundColor string) *excelize.Style {
	return &excelize.Style{
		Fill: excelize.Fill{
			Type:    "pattern",
			Color:   []string{backgroundColor},
			Pattern: 1,
		},
		Font: &excelize.Font{
			Bold: true,
		},
		Alignment: &excelize.Alignment{
			Horizontal: "center",
			Vertical:   "center",
		},
		Border: []excelize.Border{
			{Type: "left", Color: "000000", Style: 1},
			{Type: "top", Color: "000000", Style: 1},
			{Type: "bottom", Color: "000000", Style: 1},
			{Type: "right", Color: "000000", Style: 1},
		},
	}
}
