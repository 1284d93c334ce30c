package main

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"startupeda/internal/config"
	apperrors "startupeda/internal/errors"
	"startupeda/internal/operations"
	"startupeda/internal/shared/testutil"
	"startupeda/pkg/contracts"
	"startupeda/pkg/contracts/domain"
)

func TestParseFlags(t *testing.T) {
	opts, err := parseFlags([]string{
		"-in", "raw.csv",
		"-out", "clean.csv",
		"-mappings", "m.json",
		"-report", "r.json",
		"-xlsx", "book.xlsx",
		"-threshold", "3",
		"-tolerant",
	}, io.Discard)
	require.NoError(t, err)

	cfg := config.Default()
	require.NoError(t, opts.apply(cfg))

	assert.Equal(t, "raw.csv", cfg.Paths.InputFile)
	assert.Equal(t, "clean.csv", cfg.Paths.CleanedFile)
	assert.Equal(t, "m.json", cfg.Paths.MappingsFile)
	assert.Equal(t, "r.json", cfg.Paths.ReportFile)
	assert.Equal(t, "book.xlsx", cfg.Paths.WorkbookFile)
	assert.Equal(t, 3.0, cfg.Pipeline.OutlierThreshold)
	assert.True(t, cfg.Pipeline.Tolerant)
}

func TestParseFlags_DefaultsLeaveConfigAlone(t *testing.T) {
	opts, err := parseFlags(nil, io.Discard)
	require.NoError(t, err)

	cfg := config.Default()
	require.NoError(t, opts.apply(cfg))
	assert.Equal(t, config.Default(), cfg)
}

func TestParseFlags_Invalid(t *testing.T) {
	_, err := parseFlags([]string{"-threshold", "many"}, io.Discard)
	assert.Error(t, err)

	opts, err := parseFlags([]string{"-threshold", "-1"}, io.Discard)
	require.NoError(t, err)
	assert.Error(t, opts.apply(config.Default()), "negative threshold fails validation")
}

func runConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.Paths.BaseDir = t.TempDir()
	cfg.Paths.InputFile = testutil.WriteCSV(t, "startup.csv", testutil.SampleStartupRows())
	cfg.Paths.ReportsDir = "reports"
	cfg.Paths.WorkbookFile = "startup.xlsx"
	cfg.Pipeline.Tolerant = true
	cfg.Telemetry.EnableMetrics = true
	return cfg
}

func TestRun_WritesArtifacts(t *testing.T) {
	cfg := runConfig(t)
	logger, handler := testutil.NewTestLogger(t)

	require.NoError(t, run(context.Background(), cfg, logger))

	reports := filepath.Join(cfg.Paths.BaseDir, "reports")

	rows := testutil.ReadCSV(t, filepath.Join(reports, config.DefaultCleanedFile))
	require.Len(t, rows, 7)
	assert.Len(t, rows[0], 25)
	assert.Equal(t, "state_code", rows[0][0])

	data, err := os.ReadFile(filepath.Join(reports, config.DefaultMappingsFile))
	require.NoError(t, err)
	var mappings domain.Mappings
	require.NoError(t, json.Unmarshal(data, &mappings))
	assert.Equal(t, cfg.Pipeline.CategoricalColumns, mappings.Columns())

	data, err = os.ReadFile(filepath.Join(reports, config.DefaultReportFile))
	require.NoError(t, err)
	var report domain.AnalysisReport
	require.NoError(t, json.Unmarshal(data, &report))
	assert.Equal(t, 6, report.Rows)
	assert.Equal(t, "2000-01-01", report.Pipeline.ReferenceDate)
	assert.Len(t, report.Pipeline.Stages, 10)

	book, err := excelize.OpenFile(filepath.Join(reports, "startup.xlsx"))
	require.NoError(t, err)
	defer book.Close()
	assert.Equal(t, []string{"cleaned", "mappings", "summary"}, book.GetSheetList())

	metrics, err := os.ReadFile(filepath.Join(reports, config.DefaultMetricsFile))
	require.NoError(t, err)
	assert.Contains(t, string(metrics), "pipeline_stage_executions")
	assert.Contains(t, string(metrics), `kind="workbook_xlsx"`)

	assert.True(t, handler.ContainsAttr("version", contracts.GetVersionString()))
	assert.True(t, handler.ContainsMessage("Startup EDA run completed"))
}

func TestRun_MissingInput(t *testing.T) {
	cfg := runConfig(t)
	cfg.Paths.InputFile = filepath.Join(cfg.Paths.BaseDir, "absent.csv")
	logger, _ := testutil.NewTestLogger(t)

	err := run(context.Background(), cfg, logger)

	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrTypeStorage))
	_, statErr := os.Stat(filepath.Join(cfg.Paths.BaseDir, "reports", config.DefaultCleanedFile))
	assert.True(t, os.IsNotExist(statErr))
}

func TestRun_StrictModeFailsOnMissingDropColumn(t *testing.T) {
	cfg := runConfig(t)
	cfg.Pipeline.Tolerant = false
	logger, _ := testutil.NewTestLogger(t)

	err := run(context.Background(), cfg, logger)

	require.Error(t, err)
	var opErr *operations.OperationError
	require.True(t, errors.As(err, &opErr))
	assert.Equal(t, operations.ErrorTypeSchema, opErr.Type)
	assert.Contains(t, err.Error(), "longitude")
}

func TestExecute_VersionAndBadFlags(t *testing.T) {
	assert.Equal(t, 0, execute([]string{"-version"}))
	assert.Equal(t, 2, execute([]string{"-no-such-flag"}))
}
