// Package excel writes the screening history to an .xlsx workbook so
// results can leave the app for a clinician's desk.
package excel

import (
	"fmt"
	"io"
	"strconv"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"visioncheck/domain/vision"
)

const historySheet = "History"

var historyHeaders = []string{
	"ID", "Date", "Test", "Result", "Severity", "Confidence", "Status", "Summary",
}

// HistoryExporter renders stored results into a one-sheet workbook,
// newest first, one row per screening.
type HistoryExporter struct {
	log *zap.Logger
}

// NewHistoryExporter creates an exporter.
func NewHistoryExporter(log *zap.Logger) *HistoryExporter {
	return &HistoryExporter{log: log}
}

// Export writes the workbook to path.
func (e *HistoryExporter) Export(path string, records []vision.StoredTestResult) error {
	f, err := e.build(records)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save history workbook: %w", err)
	}
	e.log.Info("history exported",
		zap.String("path", path), zap.Int("records", len(records)))
	return nil
}

// Write streams the workbook to w.
func (e *HistoryExporter) Write(w io.Writer, records []vision.StoredTestResult) error {
	f, err := e.build(records)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write history workbook: %w", err)
	}
	return nil
}

func (e *HistoryExporter) build(records []vision.StoredTestResult) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", historySheet); err != nil {
		f.Close()
		return nil, fmt.Errorf("rename sheet: %w", err)
	}

	for col, header := range historyHeaders {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("header cell: %w", err)
		}
		if err := f.SetCellValue(historySheet, cell, header); err != nil {
			f.Close()
			return nil, fmt.Errorf("write header: %w", err)
		}
	}

	headerStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err == nil {
		lastHeader, _ := excelize.CoordinatesToCellName(len(historyHeaders), 1)
		f.SetCellStyle(historySheet, "A1", lastHeader, headerStyle)
	}

	for i, record := range records {
		row := i + 2
		values := historyRow(record)
		for col, value := range values {
			cell, err := excelize.CoordinatesToCellName(col+1, row)
			if err != nil {
				f.Close()
				return nil, fmt.Errorf("data cell: %w", err)
			}
			if err := f.SetCellValue(historySheet, cell, value); err != nil {
				f.Close()
				return nil, fmt.Errorf("write row %d: %w", row, err)
			}
		}
	}

	f.SetColWidth(historySheet, "A", "A", 38)
	f.SetColWidth(historySheet, "B", "C", 16)
	f.SetColWidth(historySheet, "D", "H", 32)

	return f, nil
}

// historyRow flattens a stored result into the sheet's columns. Rows
// without a report leave the report columns blank rather than failing
// the export.
func historyRow(record vision.StoredTestResult) []any {
	resultSummary := ""
	if record.Result != nil {
		resultSummary = record.Result.Summary()
	}

	severity, confidence, status, summary := "", "", "", ""
	if record.Report != nil {
		severity = string(record.Report.Severity)
		confidence = strconv.FormatFloat(record.Report.Confidence, 'f', 1, 64)
		status = string(record.Report.Status)
		summary = record.Report.Summary
	}

	return []any{
		record.ID.String(),
		record.Date,
		string(record.TestType),
		resultSummary,
		severity,
		confidence,
		status,
		summary,
	}
}
