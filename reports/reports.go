// Package reports exports the history window as CSV, Excel or PDF.
package reports

import (
	"slices"

	"github.com/infigaming-com/gold-monitor/rate"
	"github.com/infigaming-com/gold-monitor/util"
	"github.com/samber/lo"
)

type Format string

const (
	FormatCSV   Format = "csv"
	FormatExcel Format = "xlsx"
	FormatPDF   Format = "pdf"
)

func (f Format) ContentType() string {
	switch f {
	case FormatExcel:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	case FormatPDF:
		return "application/pdf"
	default:
		return "text/csv; charset=utf-8"
	}
}

type ReportOptions struct {
	Title       string
	HeaderColor string
}

type ReportOption func(*ReportOptions)

func WithTitle(title string) ReportOption {
	return func(o *ReportOptions) {
		o.Title = title
	}
}

func WithHeaderColor(color string) ReportOption {
	return func(o *ReportOptions) {
		if color != "" {
			o.HeaderColor = color
		}
	}
}

func getDefaultOptions() *ReportOptions {
	return &ReportOptions{
		Title:       "Harga Emas Treasury",
		HeaderColor: "FFD54F",
	}
}

var HistoryHeaders = []string{"Waktu", "Harga Beli", "Harga Jual", "Status"}

// HistoryRows renders readings newest first, the way the dashboard lists them.
// plainStatus drops the emoji from the status column.
func HistoryRows(readings []rate.Reading, plainStatus bool) [][]string {
	rows := lo.Map(readings, func(r rate.Reading, _ int) []string {
		status := r.Trend.Label()
		if plainStatus {
			status = r.Trend.Text()
		}
		return []string{
			r.UpdatedAt,
			util.FormatThousands(r.BuyRate),
			util.FormatThousands(r.SellRate),
			status,
		}
	})
	slices.Reverse(rows)
	return rows
}

// Generate renders readings in the requested format.
func Generate(format Format, readings []rate.Reading, opts ...ReportOption) ([]byte, error) {
	switch format {
	case FormatExcel:
		return GenerateExcelReport(HistoryHeaders, HistoryRows(readings, false), opts...)
	case FormatPDF:
		return GeneratePDFReport(HistoryHeaders, HistoryRows(readings, true), opts...)
	default:
		return GenerateCSVReport(HistoryHeaders, HistoryRows(readings, false), opts...)
	}
}
