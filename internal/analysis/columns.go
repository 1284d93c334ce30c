package analysis

import (
	"fmt"

	"github.com/spf13/cast"

	apperrors "startupeda/internal/errors"
	"startupeda/internal/table"
	"startupeda/pkg/contracts/domain"
)

// labelColumn is a column decoded to one label per row
type labelColumn struct {
	labels []string
	nulls  []bool
}

func (l labelColumn) get(i int) (string, bool) {
	if l.nulls[i] {
		return "", false
	}
	return l.labels[i], true
}

// decodeLabels turns a column back into labels. Encoded numeric columns are
// decoded through their mapping; other columns use their export rendering.
func decodeLabels(t *table.Table, mappings domain.Mappings, column string) (labelColumn, error) {
	col, err := t.Column(column)
	if err != nil {
		return labelColumn{}, err
	}
	out := labelColumn{labels: make([]string, col.Len()), nulls: col.Nulls()}
	mapping := mappings.Get(column)
	for i := range out.labels {
		if out.nulls[i] {
			continue
		}
		if col.Type() != table.Numeric {
			out.labels[i] = col.Format(i)
			continue
		}
		v, _ := col.Float(i)
		if mapping == nil {
			out.labels[i] = cast.ToString(v)
			continue
		}
		label, ok := mapping.Label(int(v))
		if !ok {
			return labelColumn{}, apperrors.NewValidationError(
				fmt.Sprintf("column %q row %d: code %v has no label", column, i, v)).
				WithContext("column", column)
		}
		out.labels[i] = label
	}
	return out, nil
}

// numericValues returns the values of a numeric or boolean column as floats,
// booleans as 1/0, with the null mask.
func numericValues(col *table.Column) ([]float64, []bool, bool) {
	switch col.Type() {
	case table.Numeric:
		return col.Floats(), col.Nulls(), true
	case table.Boolean:
		values := make([]float64, col.Len())
		for i, b := range col.Bools() {
			if b {
				values[i] = 1
			}
		}
		return values, col.Nulls(), true
	default:
		return nil, nil, false
	}
}

// pairs returns the rows where both x and y are present
func pairs(x []float64, xNull []bool, y []float64, yNull []bool) ([]float64, []float64) {
	var xs, ys []float64
	for i := range x {
		if xNull[i] || yNull[i] {
			continue
		}
		xs = append(xs, x[i])
		ys = append(ys, y[i])
	}
	return xs, ys
}
