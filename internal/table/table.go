package table

import (
	"fmt"
	"strings"

	apperrors "startupeda/internal/errors"
)

// Table is an ordered set of equally long columns. Tables are values: every
// operation returns a new Table and leaves the receiver untouched. Columns
// are immutable, so tables share them.
type Table struct {
	columns []*Column
	index   map[string]int
	rows    int
}

// New builds a table from columns. All columns must have the same length
// and distinct names.
func New(columns ...*Column) (*Table, error) {
	t := &Table{
		columns: make([]*Column, 0, len(columns)),
		index:   make(map[string]int, len(columns)),
	}
	for i, col := range columns {
		if col == nil {
			return nil, apperrors.NewValidationError(fmt.Sprintf("column %d is nil", i))
		}
		if _, dup := t.index[col.Name()]; dup {
			return nil, apperrors.NewDuplicateColumnError(col.Name())
		}
		if i == 0 {
			t.rows = col.Len()
		} else if col.Len() != t.rows {
			return nil, apperrors.NewValidationError(
				fmt.Sprintf("column %q has %d rows, want %d", col.Name(), col.Len(), t.rows)).
				WithContext("column", col.Name())
		}
		t.index[col.Name()] = len(t.columns)
		t.columns = append(t.columns, col)
	}
	return t, nil
}

// MustNew is New for literal tables in tests and examples; it panics on error.
func MustNew(columns ...*Column) *Table {
	t, err := New(columns...)
	if err != nil {
		panic(err)
	}
	return t
}

func (t *Table) NumRows() int    { return t.rows }
func (t *Table) NumColumns() int { return len(t.columns) }

// ColumnNames returns the schema in order
func (t *Table) ColumnNames() []string {
	names := make([]string, len(t.columns))
	for i, c := range t.columns {
		names[i] = c.Name()
	}
	return names
}

// Has reports whether the table has a column called name
func (t *Table) Has(name string) bool {
	_, ok := t.index[name]
	return ok
}

// Column returns the named column or a schema error
func (t *Table) Column(name string) (*Column, error) {
	i, ok := t.index[name]
	if !ok {
		return nil, apperrors.NewSchemaError(name)
	}
	return t.columns[i], nil
}

// ColumnAt returns the i-th column
func (t *Table) ColumnAt(i int) *Column { return t.columns[i] }

// Require returns the named column after checking its declared type is one
// of types. A missing column is a schema error, a mismatch a type error.
func (t *Table) Require(name string, types ...ColumnType) (*Column, error) {
	col, err := t.Column(name)
	if err != nil {
		return nil, err
	}
	if len(types) == 0 {
		return col, nil
	}
	for _, typ := range types {
		if col.Type() == typ {
			return col, nil
		}
	}
	return nil, apperrors.NewTypeError(name, typeList(types), col.Type().String())
}

// Clone returns a table with the same schema and cells
func (t *Table) Clone() *Table {
	out, _ := New(t.columns...)
	out.rows = t.rows
	return out
}

// Drop removes the named columns. Any name that is absent fails the whole
// call with a schema error naming it.
func (t *Table) Drop(names ...string) (*Table, error) {
	for _, name := range names {
		if !t.Has(name) {
			return nil, apperrors.NewSchemaError(name)
		}
	}
	out, _ := t.DropTolerant(names...)
	return out, nil
}

// DropTolerant removes the named columns that exist and reports the ones
// that did not.
func (t *Table) DropTolerant(names ...string) (*Table, []string) {
	drop := make(map[string]bool, len(names))
	var missing []string
	for _, name := range names {
		if !t.Has(name) {
			missing = append(missing, name)
			continue
		}
		drop[name] = true
	}

	kept := make([]*Column, 0, len(t.columns))
	for _, c := range t.columns {
		if !drop[c.Name()] {
			kept = append(kept, c)
		}
	}
	out, _ := New(kept...)
	if len(kept) == 0 {
		out.rows = t.rows
	}
	return out, missing
}

// WithColumn replaces the column of the same name in place, or appends col
// when the table has no such column.
func (t *Table) WithColumn(col *Column) (*Table, error) {
	if len(t.columns) > 0 && col.Len() != t.rows {
		return nil, apperrors.NewValidationError(
			fmt.Sprintf("column %q has %d rows, want %d", col.Name(), col.Len(), t.rows)).
			WithContext("column", col.Name())
	}
	cols := make([]*Column, len(t.columns), len(t.columns)+1)
	copy(cols, t.columns)
	if i, ok := t.index[col.Name()]; ok {
		cols[i] = col
	} else {
		cols = append(cols, col)
	}
	return New(cols...)
}

// Take reorders rows: row i of the result is row perm[i] of t. perm must be
// a permutation of 0..NumRows()-1.
func (t *Table) Take(perm []int) (*Table, error) {
	if len(perm) != t.rows {
		return nil, apperrors.NewValidationError(
			fmt.Sprintf("permutation has %d entries, want %d", len(perm), t.rows))
	}
	seen := make([]bool, t.rows)
	for _, p := range perm {
		if p < 0 || p >= t.rows || seen[p] {
			return nil, apperrors.NewValidationError(fmt.Sprintf("invalid permutation entry %d", p))
		}
		seen[p] = true
	}

	cols := make([]*Column, len(t.columns))
	for i, c := range t.columns {
		cols[i] = c.Take(perm)
	}
	out, err := New(cols...)
	if err != nil {
		return nil, err
	}
	out.rows = t.rows
	return out, nil
}

// Records renders the table as a header row followed by one row per record
func (t *Table) Records() [][]string {
	records := make([][]string, 0, t.rows+1)
	records = append(records, t.ColumnNames())
	for r := 0; r < t.rows; r++ {
		row := make([]string, len(t.columns))
		for i, c := range t.columns {
			row[i] = c.Format(r)
		}
		records = append(records, row)
	}
	return records
}

// Equal reports whether both tables have the same schema and cells
func (t *Table) Equal(o *Table) bool {
	if t.rows != o.rows || len(t.columns) != len(o.columns) {
		return false
	}
	for i := range t.columns {
		if !t.columns[i].Equal(o.columns[i]) {
			return false
		}
	}
	return true
}

// TypeCounts returns how many columns of each type the table has
func (t *Table) TypeCounts() map[ColumnType]int {
	counts := make(map[ColumnType]int)
	for _, c := range t.columns {
		counts[c.Type()]++
	}
	return counts
}

func typeList(types []ColumnType) string {
	names := make([]string, len(types))
	for i, typ := range types {
		names[i] = typ.String()
	}
	return strings.Join(names, "|")
}
