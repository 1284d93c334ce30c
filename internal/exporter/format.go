package exporter

import (
	"math"
	"strconv"

	"startupeda/internal/table"
)

// formatFloat renders f with the shortest representation that round-trips;
// NaN and infinities render empty.
func formatFloat(f float64) string {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return ""
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// formatInt formats an int value for cell output
func formatInt(i int) string {
	return strconv.Itoa(i)
}

// cellValue returns the typed value of row i of col for a spreadsheet cell:
// float64 for numbers, 1/0 for booleans, formatted text for dates and an
// empty string for nulls.
func cellValue(col *table.Column, i int) interface{} {
	if col.IsNull(i) {
		return ""
	}
	switch col.Type() {
	case table.Numeric:
		v, _ := col.Float(i)
		return v
	case table.Boolean:
		if v, _ := col.Bool(i); v {
			return 1
		}
		return 0
	default:
		return col.Format(i)
	}
}
