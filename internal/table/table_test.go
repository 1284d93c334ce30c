package table

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "startupeda/internal/errors"
)

func date(s string) time.Time {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		panic(err)
	}
	return t
}

func sampleTable() *Table {
	return MustNew(
		NewNumeric("age", []float64{-5, 10, 0}, []bool{false, false, true}),
		NewCategorical("status", []string{"closed", "acquired", "acquired"}, nil),
		NewDate("founded_at", []time.Time{date("2020-01-10"), {}, date("2020-01-20")}, []bool{false, true, false}),
		NewBoolean("is_outlier", []bool{true, false, false}, nil),
	)
}

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		columns []*Column
		errType apperrors.ErrorType
	}{
		{
			name: "valid",
			columns: []*Column{
				NewNumeric("a", []float64{1, 2}, nil),
				NewCategorical("b", []string{"x", "y"}, nil),
			},
		},
		{
			name: "duplicate names",
			columns: []*Column{
				NewNumeric("a", []float64{1}, nil),
				NewNumeric("a", []float64{2}, nil),
			},
			errType: apperrors.ErrTypeSchema,
		},
		{
			name: "length mismatch",
			columns: []*Column{
				NewNumeric("a", []float64{1, 2}, nil),
				NewNumeric("b", []float64{2}, nil),
			},
			errType: apperrors.ErrTypeValidation,
		},
		{
			name:    "nil column",
			columns: []*Column{nil},
			errType: apperrors.ErrTypeValidation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tbl, err := New(tt.columns...)
			if tt.errType != "" {
				require.Error(t, err)
				assert.True(t, apperrors.IsType(err, tt.errType), "got %v", err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, 2, tbl.NumRows())
			assert.Equal(t, []string{"a", "b"}, tbl.ColumnNames())
		})
	}
}

func TestColumn_NullHandling(t *testing.T) {
	col := NewNumeric("x", []float64{1, math.NaN(), 3}, []bool{false, false, true})

	assert.Equal(t, 2, col.NullCount())
	assert.True(t, col.IsNull(1))
	assert.True(t, col.IsNull(2))
	assert.Equal(t, []float64{1}, col.ObservedFloats())

	v, ok := col.Float(0)
	assert.True(t, ok)
	assert.Equal(t, 1.0, v)
	_, ok = col.Float(2)
	assert.False(t, ok)

	// typed accessors refuse other types
	_, ok = col.Text(0)
	assert.False(t, ok)
}

func TestColumn_BuildersCopyInput(t *testing.T) {
	values := []float64{1, 2}
	col := NewNumeric("x", values, nil)
	values[0] = 99

	v, _ := col.Float(0)
	assert.Equal(t, 1.0, v)

	out := col.Floats()
	out[1] = 42
	v, _ = col.Float(1)
	assert.Equal(t, 2.0, v)
}

func TestTable_Require(t *testing.T) {
	tbl := sampleTable()

	col, err := tbl.Require("age", Numeric)
	require.NoError(t, err)
	assert.Equal(t, "age", col.Name())

	_, err = tbl.Require("status", Numeric, Date)
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeType))
	assert.Contains(t, err.Error(), "numeric|date")

	_, err = tbl.Require("missing")
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeSchema))
	assert.Contains(t, err.Error(), `"missing"`)
}

func TestTable_Drop(t *testing.T) {
	tbl := sampleTable()

	out, err := tbl.Drop("status", "is_outlier")
	require.NoError(t, err)
	assert.Equal(t, []string{"age", "founded_at"}, out.ColumnNames())
	assert.Equal(t, 3, out.NumRows())
	// receiver untouched
	assert.Equal(t, 4, tbl.NumColumns())

	_, err = tbl.Drop("status", "nope")
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeSchema))

	out, missing := tbl.DropTolerant("status", "nope")
	assert.Equal(t, []string{"nope"}, missing)
	assert.Equal(t, []string{"age", "founded_at", "is_outlier"}, out.ColumnNames())

	out, _ = tbl.DropTolerant(tbl.ColumnNames()...)
	assert.Equal(t, 0, out.NumColumns())
	assert.Equal(t, 3, out.NumRows())
}

func TestTable_WithColumn(t *testing.T) {
	tbl := sampleTable()

	replaced, err := tbl.WithColumn(NewNumeric("status", []float64{0, 1, 1}, nil))
	require.NoError(t, err)
	assert.Equal(t, tbl.ColumnNames(), replaced.ColumnNames())
	col, _ := replaced.Column("status")
	assert.Equal(t, Numeric, col.Type())

	appended, err := tbl.WithColumn(NewNumeric("extra", []float64{1, 2, 3}, nil))
	require.NoError(t, err)
	assert.Equal(t, "extra", appended.ColumnNames()[4])

	_, err = tbl.WithColumn(NewNumeric("short", []float64{1}, nil))
	assert.Error(t, err)
}

func TestTable_Take(t *testing.T) {
	tbl := sampleTable()

	out, err := tbl.Take([]int{2, 0, 1})
	require.NoError(t, err)

	age, _ := out.Column("age")
	assert.True(t, age.IsNull(0))
	v, _ := age.Float(1)
	assert.Equal(t, -5.0, v)

	status, _ := out.Column("status")
	assert.Equal(t, []string{"acquired", "closed", "acquired"}, status.Texts())

	for _, perm := range [][]int{{0, 1}, {0, 0, 1}, {0, 1, 3}} {
		_, err := tbl.Take(perm)
		assert.Error(t, err, "perm %v", perm)
	}
}

func TestTable_Records(t *testing.T) {
	// summed at run time so the cell carries the rounding error
	a, b := 0.1, 0.2
	tbl := MustNew(
		NewNumeric("n", []float64{1, 2.5, a + b, 0}, []bool{false, false, false, true}),
		NewCategorical("c", []string{"a", "b", "", "d"}, []bool{false, false, true, false}),
		NewDate("d", []time.Time{date("2020-01-01"), date("1999-12-31"), {}, date("2007-01-01")}, []bool{false, false, true, false}),
		NewBoolean("b", []bool{true, false, false, true}, nil),
	)

	assert.Equal(t, [][]string{
		{"n", "c", "d", "b"},
		{"1", "a", "2020-01-01", "1"},
		{"2.5", "b", "1999-12-31", "0"},
		{"0.30000000000000004", "", "", "0"},
		{"", "d", "2007-01-01", "1"},
	}, tbl.Records())
}

func TestTable_CloneAndEqual(t *testing.T) {
	tbl := sampleTable()
	clone := tbl.Clone()
	assert.True(t, tbl.Equal(clone))

	annotated, err := tbl.WithColumn(mustColumn(tbl, "founded_at").WithMissingMeaning("still_active"))
	require.NoError(t, err)
	assert.False(t, tbl.Equal(annotated))
	assert.Equal(t, "still_active", mustColumn(annotated, "founded_at").MissingMeaning())
	assert.Empty(t, mustColumn(tbl, "founded_at").MissingMeaning())
}

func TestTable_TypeCounts(t *testing.T) {
	counts := sampleTable().TypeCounts()
	assert.Equal(t, map[ColumnType]int{Numeric: 1, Categorical: 1, Date: 1, Boolean: 1}, counts)
}

func mustColumn(t *Table, name string) *Column {
	c, err := t.Column(name)
	if err != nil {
		panic(err)
	}
	return c
}
