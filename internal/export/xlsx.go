// Package export writes the waste log and its monthly report to files
// people can open elsewhere.
package export

import (
	"fmt"
	"io"
	"math"
	"time"

	"github.com/xuri/excelize/v2"

	"wastelog/internal/core"
	"wastelog/internal/metrics"
)

const (
	SheetEntries     = "Entries"
	SheetSummary     = "Summary"
	SheetTrends      = "Trends"
	SheetSuggestions = "Suggestions"
)

var entryColumns = []string{"ID", "Date", "Type", "Weight (kg)", "Disposal Method", "Recorded At", "Attachments"}

// Workbook builds an XLSX file with one sheet per view of the data.
type Workbook struct {
	file        *excelize.File
	headerStyle int
}

// NewWorkbook creates an empty workbook with the entries sheet in first place.
func NewWorkbook() (*Workbook, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", SheetEntries); err != nil {
		f.Close()
		return nil, fmt.Errorf("rename sheet: %w", err)
	}
	style, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"2E7D32"}},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("header style: %w", err)
	}
	return &Workbook{file: f, headerStyle: style}, nil
}

// WriteEntries fills the entries sheet, one row per entry in log order.
func (wb *Workbook) WriteEntries(entries []core.Entry) error {
	if err := wb.header(SheetEntries, entryColumns); err != nil {
		return err
	}
	for i, e := range entries {
		var recorded string
		if !e.RecordedAt.IsZero() {
			recorded = e.RecordedAt.UTC().Format(time.RFC3339)
		}
		row := []any{e.ID, e.Date.String(), string(e.Type), e.WeightKg, e.DisposalMethod, recorded, len(e.Attachments)}
		if err := wb.row(SheetEntries, i+2, row); err != nil {
			return err
		}
	}
	if err := wb.file.SetPanes(SheetEntries, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return fmt.Errorf("freeze header: %w", err)
	}
	if len(entries) > 0 {
		last, _ := excelize.CoordinatesToCellName(len(entryColumns), len(entries)+1)
		if err := wb.file.AutoFilter(SheetEntries, "A1:"+last, nil); err != nil {
			return fmt.Errorf("auto filter: %w", err)
		}
	}
	return wb.widths(SheetEntries, []float64{38, 12, 12, 12, 18, 22, 12})
}

// WriteReport adds the summary, trends and suggestions sheets for r.
func (wb *Workbook) WriteReport(r metrics.Report) error {
	for _, name := range []string{SheetSummary, SheetTrends, SheetSuggestions} {
		if _, err := wb.file.NewSheet(name); err != nil {
			return fmt.Errorf("create sheet %s: %w", name, err)
		}
	}

	if err := wb.header(SheetSummary, []string{"Metric", "Value"}); err != nil {
		return err
	}
	summary := [][]any{
		{"Month", r.Month.String()},
		{"Entries", r.EntryCount},
		{"Total weight (kg)", oneDecimal(r.Metrics.TotalWeightKg)},
		{"Carbon footprint (kg CO2)", oneDecimal(r.Metrics.TotalCarbonKg)},
		{"Recycling rate (%)", oneDecimal(r.Metrics.RecyclingRatePercent)},
		{"Environmental score", r.Metrics.EnvironmentalScore},
		{"Air pollution (kg)", oneDecimal(r.Pollution.AirKg)},
		{"Water pollution (kg)", oneDecimal(r.Pollution.WaterKg)},
		{"Soil contamination (kg)", oneDecimal(r.Pollution.SoilKg)},
	}
	for _, t := range core.WasteTypes() {
		if kg, ok := r.ByType[t]; ok {
			summary = append(summary, []any{"Waste: " + string(t) + " (kg)", oneDecimal(kg)})
		}
	}
	for i, row := range summary {
		if err := wb.row(SheetSummary, i+2, row); err != nil {
			return err
		}
	}
	if err := wb.widths(SheetSummary, []float64{28, 14}); err != nil {
		return err
	}

	if err := wb.header(SheetTrends, []string{"Month", "Key", "Weight (kg)"}); err != nil {
		return err
	}
	for i, p := range r.Trends {
		if err := wb.row(SheetTrends, i+2, []any{p.Label, p.Key.String(), oneDecimal(p.WeightKg)}); err != nil {
			return err
		}
	}

	if err := wb.header(SheetSuggestions, []string{"Suggestion"}); err != nil {
		return err
	}
	for i, s := range r.Suggestions {
		if err := wb.row(SheetSuggestions, i+2, []any{s}); err != nil {
			return err
		}
	}
	return wb.widths(SheetSuggestions, []float64{100})
}

// WriteTo serializes the workbook.
func (wb *Workbook) WriteTo(w io.Writer) error {
	return wb.file.Write(w)
}

// Close releases the workbook's temporary resources.
func (wb *Workbook) Close() error {
	return wb.file.Close()
}

func (wb *Workbook) header(sheet string, columns []string) error {
	row := make([]any, len(columns))
	for i, c := range columns {
		row[i] = c
	}
	if err := wb.row(sheet, 1, row); err != nil {
		return err
	}
	last, _ := excelize.CoordinatesToCellName(len(columns), 1)
	return wb.file.SetCellStyle(sheet, "A1", last, wb.headerStyle)
}

func (wb *Workbook) row(sheet string, n int, values []any) error {
	cell, err := excelize.CoordinatesToCellName(1, n)
	if err != nil {
		return err
	}
	if err := wb.file.SetSheetRow(sheet, cell, &values); err != nil {
		return fmt.Errorf("write %s row %d: %w", sheet, n, err)
	}
	return nil
}

func (wb *Workbook) widths(sheet string, widths []float64) error {
	for i, w := range widths {
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return err
		}
		if err := wb.file.SetColWidth(sheet, col, col, w); err != nil {
			return err
		}
	}
	return nil
}

func oneDecimal(v float64) float64 {
	return math.Round(v*10) / 10
}

// WriteXLSX writes the full log and the report for month as one workbook.
func WriteXLSX(w io.Writer, entries []core.Entry, r metrics.Report) error {
	wb, err := NewWorkbook()
	if err != nil {
		return err
	}
	defer wb.Close()

	if err := wb.WriteEntries(entries); err != nil {
		return err
	}
	if err := wb.WriteReport(r); err != nil {
		return err
	}
	return wb.WriteTo(w)
}
