package exporter

import (
	"fmt"
	"log/slog"

	"github.com/xuri/excelize/v2"

	apperrors "startupeda/internal/errors"
	"startupeda/internal/table"
	"startupeda/pkg/contracts/domain"
)

// Workbook sheet names
const (
	SheetCleaned  = "cleaned"
	SheetMappings = "mappings"
	SheetSummary  = "summary"
)

// WorkbookWriter exports a run as an XLSX workbook
type WorkbookWriter struct {
	logger *slog.Logger
}

// NewWorkbookWriter creates a workbook writer
func NewWorkbookWriter(logger *slog.Logger) *WorkbookWriter {
	if logger == nil {
		logger = slog.Default()
	}
	return &WorkbookWriter{logger: logger}
}

// Write saves the cleaned table, the mappings and, when report is not nil,
// a summary sheet to path.
func (w *WorkbookWriter) Write(path string, t *table.Table, mappings domain.Mappings, report *domain.AnalysisReport) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetCleaned); err != nil {
		return apperrors.NewStorageError("failed to name sheet", err)
	}
	if err := writeTableSheet(f, SheetCleaned, t); err != nil {
		return err
	}
	if err := writeMappingsSheet(f, mappings); err != nil {
		return err
	}
	if report != nil {
		if err := writeSummarySheet(f, report); err != nil {
			return err
		}
	}

	if err := ensureParent(path); err != nil {
		return err
	}
	if err := f.SaveAs(path); err != nil {
		return apperrors.NewStorageError("failed to save workbook", err).WithContext("path", path)
	}

	w.logger.Info("Wrote workbook",
		slog.String("file_path", path),
		slog.Int("rows", t.NumRows()),
		slog.Int("mappings", len(mappings)))
	return nil
}

func writeTableSheet(f *excelize.File, sheet string, t *table.Table) error {
	sw, err := f.NewStreamWriter(sheet)
	if err != nil {
		return apperrors.NewStorageError("failed to open sheet stream", err)
	}

	header := make([]interface{}, t.NumColumns())
	for i, name := range t.ColumnNames() {
		header[i] = name
	}
	if err := sw.SetRow("A1", header); err != nil {
		return apperrors.NewStorageError("failed to write header row", err)
	}

	for r := 0; r < t.NumRows(); r++ {
		row := make([]interface{}, t.NumColumns())
		for c := range row {
			row[c] = cellValue(t.ColumnAt(c), r)
		}
		cell, err := excelize.CoordinatesToCellName(1, r+2)
		if err != nil {
			return apperrors.NewStorageError("invalid cell", err)
		}
		if err := sw.SetRow(cell, row); err != nil {
			return apperrors.NewStorageError(fmt.Sprintf("failed to write row %d", r), err)
		}
	}
	if err := sw.Flush(); err != nil {
		return apperrors.NewStorageError("failed to flush sheet", err)
	}
	return nil
}

func writeMappingsSheet(f *excelize.File, mappings domain.Mappings) error {
	if _, err := f.NewSheet(SheetMappings); err != nil {
		return apperrors.NewStorageError("failed to add mappings sheet", err)
	}
	rows := [][]interface{}{{"column", "label", "code"}}
	for _, m := range mappings {
		for code, label := range m.Labels() {
			rows = append(rows, []interface{}{m.Column, label, code})
		}
	}
	return setRows(f, SheetMappings, rows)
}

func writeSummarySheet(f *excelize.File, report *domain.AnalysisReport) error {
	if _, err := f.NewSheet(SheetSummary); err != nil {
		return apperrors.NewStorageError("failed to add summary sheet", err)
	}
	rows := [][]interface{}{
		{"metric", "value"},
		{"run_id", report.RunID},
		{"rows", report.Rows},
		{"columns", report.Columns},
		{"reference_date", report.Pipeline.ReferenceDate},
		{"negatives_corrected", report.Pipeline.NegativesCorrected},
		{"outliers_flagged", report.Pipeline.OutliersFlagged},
		{"still_active", report.Pipeline.StillActive},
		{"acquired_share", formatFloat(report.AcquiredShare)},
	}
	for _, s := range report.Status {
		rows = append(rows, []interface{}{"status:" + s.Label, s.Count})
	}
	for _, c := range report.Correlations.Pearson {
		rows = append(rows, []interface{}{"pearson:" + c.Feature, formatFloat(c.Coefficient)})
	}
	for _, st := range report.Pipeline.Stages {
		rows = append(rows, []interface{}{"stage:" + st.ID, st.Status + " " + formatInt(int(st.DurationMS)) + "ms"})
	}
	return setRows(f, SheetSummary, rows)
}

func setRows(f *excelize.File, sheet string, rows [][]interface{}) error {
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return apperrors.NewStorageError("invalid cell", err)
		}
		r := row
		if err := f.SetSheetRow(sheet, cell, &r); err != nil {
			return apperrors.NewStorageError(fmt.Sprintf("failed to write %s row %d", sheet, i), err)
		}
	}
	return nil
}
