package exporter

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"startupeda/pkg/contracts/domain"
)

func TestWorkbookWriter_Write(t *testing.T) {
	path := filepath.Join(t.TempDir(), "book", "cleaned_data.xlsx")
	report := &domain.AnalysisReport{
		RunID:         "run-1",
		Rows:          3,
		Columns:       5,
		AcquiredShare: 0.5,
		Status:        []domain.LabelCount{{Label: "acquired", Count: 1}, {Label: "closed", Count: 1}},
		Pipeline:      domain.PipelineFacts{ReferenceDate: "2000-01-01", NegativesCorrected: 1},
	}

	require.NoError(t, NewWorkbookWriter(nil).Write(path, sampleTable(), sampleMappings(), report))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{SheetCleaned, SheetMappings, SheetSummary}, f.GetSheetList())

	rows, err := f.GetRows(SheetCleaned)
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, []string{"status", "city", "age", "is_outlier", "founded_at"}, rows[0])
	assert.Equal(t, []string{"0", "San Diego", "1.0849", "0", "2007-01-01"}, rows[1])

	mappingRows, err := f.GetRows(SheetMappings)
	require.NoError(t, err)
	assert.Equal(t, [][]string{
		{"column", "label", "code"},
		{"status", "closed", "0"},
		{"status", "acquired", "1"},
		{"city", "San Francisco", "0"},
		{"city", "Boston", "1"},
	}, mappingRows)

	summary, err := f.GetRows(SheetSummary)
	require.NoError(t, err)
	assert.Contains(t, summary, []string{"run_id", "run-1"})
	assert.Contains(t, summary, []string{"reference_date", "2000-01-01"})
	assert.Contains(t, summary, []string{"status:closed", "1"})
}

func TestWorkbookWriter_WithoutReport(t *testing.T) {
	path := filepath.Join(t.TempDir(), "book.xlsx")
	require.NoError(t, NewWorkbookWriter(nil).Write(path, sampleTable(), nil, nil))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()
	assert.Equal(t, []string{SheetCleaned, SheetMappings}, f.GetSheetList())
}
