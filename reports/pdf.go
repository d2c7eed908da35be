package reports

import (
	"bytes"
	"fmt"
	"strconv"

	"github.com/jung-kurt/gofpdf"
)

const (
	pdfPageWidth  = 210.0
	pdfMargin     = 10.0
	pdfRowHeight  = 7.0
	pdfFontFamily = "Arial"
)

// GeneratePDFReport renders an A4 table. The header row is repeated on every
// page. Core PDF fonts only cover cp1252, so callers should pass plain text.
func GeneratePDFReport(headers []string, rows [][]string, opts ...ReportOption) ([]byte, error) {
	options := getDefaultOptions()
	for _, opt := range opts {
		opt(options)
	}
	if len(headers) == 0 {
		return nil, fmt.Errorf("headers cannot be empty")
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(pdfMargin, pdfMargin, pdfMargin)
	pdf.SetAutoPageBreak(false, pdfMargin)
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	colWidth := (pdfPageWidth - 2*pdfMargin) / float64(len(headers))
	r, g, b := hexToRGB(options.HeaderColor)

	drawHeader := func() {
		pdf.SetFont(pdfFontFamily, "B", 10)
		pdf.SetFillColor(r, g, b)
		for _, h := range headers {
			pdf.CellFormat(colWidth, pdfRowHeight, tr(h), "1", 0, "C", true, 0, "")
		}
		pdf.Ln(-1)
		pdf.SetFont(pdfFontFamily, "", 9)
	}

	pdf.AddPage()
	if options.Title != "" {
		pdf.SetFont(pdfFontFamily, "B", 14)
		pdf.CellFormat(0, 10, tr(options.Title), "", 1, "L", false, 0, "")
	}
	drawHeader()

	_, pageHeight := pdf.GetPageSize()
	for i, row := range rows {
		if len(row) != len(headers) {
			return nil, fmt.Errorf("row %d length (%d) does not match header length (%d)", i, len(row), len(headers))
		}
		if pdf.GetY()+pdfRowHeight > pageHeight-pdfMargin {
			pdf.AddPage()
			drawHeader()
		}
		for _, cell := range row {
			pdf.CellFormat(colWidth, pdfRowHeight, tr(cell), "1", 0, "L", false, 0, "")
		}
		pdf.Ln(-1)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to render PDF: %w", err)
	}
	return buf.Bytes(), nil
}

// hexToRGB parses "RRGGBB"; anything else is light grey.
func hexToRGB(hex string) (int, int, int) {
	if len(hex) == 7 && hex[0] == '#' {
		hex = hex[1:]
	}
	if len(hex) != 6 {
		return 220, 220, 220
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return 220, 220, 220
	}
	return int(v >> 16 & 0xFF), int(v >> 8 & 0xFF), int(v & 0xFF)
}
