// Package exporter writes the artifacts of a run to disk.
//
// CSVWriter: the cleaned table as a flat CSV file with a header row and no
// index column. Existing files are overwritten.
//
// WriteMappings: the label → code mappings of the encoded columns as JSON,
// keeping both the column order and each column's first-appearance order.
//
// WorkbookWriter: an XLSX workbook with the cleaned table, the mappings and
// a summary sheet of the analysis report.
//
// Example usage:
//
//	w := exporter.NewCSVWriter(logger)
//	err := w.WriteTable("data/reports/cleaned_data.csv", result.Table)
//
//	err = exporter.WriteMappings("data/reports/column_mappings.json", result.Mappings)
package exporter
