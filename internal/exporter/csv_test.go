package exporter

import (
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "startupeda/internal/errors"
	"startupeda/internal/shared/testutil"
	"startupeda/internal/table"
)

func sampleTable() *table.Table {
	return table.MustNew(
		table.NewNumeric("status", []float64{0, 1, math.NaN()}, nil),
		table.NewCategorical("city", []string{"San Diego", "Boston, MA", ""}, []bool{false, false, true}),
		table.NewNumeric("age", []float64{1.0849, 3, 2.5}, nil),
		table.NewBoolean("is_outlier", []bool{false, true, false}, nil),
		table.NewDate("founded_at", []time.Time{
			time.Date(2007, 1, 1, 0, 0, 0, 0, time.UTC), {}, time.Date(2000, 3, 5, 0, 0, 0, 0, time.UTC),
		}, []bool{false, true, false}),
	)
}

func TestCSVWriter_WriteTable(t *testing.T) {
	logger, handler := testutil.NewTestLogger(t)
	path := filepath.Join(t.TempDir(), "nested", "out", "cleaned_data.csv")

	w := NewCSVWriter(logger)
	require.NoError(t, w.WriteTable(path, sampleTable()))

	rows := testutil.ReadCSV(t, path)
	assert.Equal(t, [][]string{
		{"status", "city", "age", "is_outlier", "founded_at"},
		{"0", "San Diego", "1.0849", "0", "2007-01-01"},
		{"1", "Boston, MA", "3", "1", ""},
		{"", "", "2.5", "0", "2000-03-05"},
	}, rows)
	assert.True(t, handler.ContainsAttr("record_count", int64(3)))
}

func TestCSVWriter_Overwrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cleaned.csv")
	require.NoError(t, os.WriteFile(path, []byte("old,content,that,is,much,longer\n1,2,3,4,5,6\n7,8,9,10,11,12\n"), 0644))

	w := NewCSVWriter(nil)
	tbl := table.MustNew(table.NewNumeric("x", []float64{1}, nil))
	require.NoError(t, w.WriteTable(path, tbl))

	assert.Equal(t, [][]string{{"x"}, {"1"}}, testutil.ReadCSV(t, path))
}

func TestCSVWriter_WriteCSVOptions(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bom.csv")
	w := NewCSVWriter(nil)

	require.NoError(t, w.WriteCSV(path, WriteOptions{
		Headers:   []string{"a"},
		Records:   [][]string{{"1"}},
		BOMPrefix: true,
	}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, []byte{0xEF, 0xBB, 0xBF}, data[:3])
	assert.Equal(t, "a\n1\n", string(data[3:]))
}

func TestCSVWriter_UnwritablePath(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "file")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0644))

	err := NewCSVWriter(nil).WriteTable(filepath.Join(blocker, "out.csv"), sampleTable())
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeStorage))
}
