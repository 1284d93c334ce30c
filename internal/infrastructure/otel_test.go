package infrastructure

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"startupeda/internal/config"
	"startupeda/internal/shared/testutil"
)

func TestInitializeTelemetry_Disabled(t *testing.T) {
	logger, _ := testutil.NewTestLogger(t)

	tel, err := InitializeTelemetry(config.TelemetryConfig{}, logger)
	require.NoError(t, err)

	assert.Nil(t, tel.TracerProvider)
	assert.Nil(t, tel.MeterProvider)
	assert.Nil(t, tel.Registry)
	assert.NotNil(t, tel.Tracer)
	assert.NotNil(t, tel.Meter)
	require.NotNil(t, tel.Metrics)

	// no-op instruments accept recordings
	tel.Metrics.RecordStage(context.Background(), "prune", time.Millisecond, true)

	path := filepath.Join(t.TempDir(), "metrics.prom")
	require.NoError(t, tel.WriteMetrics(path))
	_, statErr := os.Stat(path)
	assert.True(t, os.IsNotExist(statErr))

	assert.NoError(t, tel.Shutdown(context.Background()))
}

func TestTelemetry_WriteMetrics(t *testing.T) {
	logger, _ := testutil.NewTestLogger(t)

	tel, err := InitializeTelemetry(config.TelemetryConfig{EnableMetrics: true, SampleRatio: 1}, logger)
	require.NoError(t, err)
	defer tel.Shutdown(context.Background())

	ctx := context.Background()
	tel.Metrics.RecordStage(ctx, "impute", 5*time.Millisecond, true)
	tel.Metrics.RecordStage(ctx, "flag_outliers", time.Millisecond, false)
	tel.Metrics.RecordRun(ctx, 20*time.Millisecond, true)
	tel.Metrics.RowsProcessed.Add(ctx, 923)
	tel.Metrics.RecordFileWritten(ctx, "cleaned_csv")

	path := filepath.Join(t.TempDir(), "pipeline.prom")
	require.NoError(t, tel.WriteMetrics(path))

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	text := string(content)
	assert.Contains(t, text, "pipeline_stage_executions")
	assert.Contains(t, text, "pipeline_stage_errors")
	assert.Contains(t, text, "pipeline_rows_processed")
	assert.Contains(t, text, `stage_id="impute"`)
	assert.Contains(t, text, `kind="cleaned_csv"`)
}

func TestTelemetry_TraceFile(t *testing.T) {
	logger, _ := testutil.NewTestLogger(t)
	traceFile := filepath.Join(t.TempDir(), "traces", "run.json")

	tel, err := InitializeTelemetry(config.TelemetryConfig{
		EnableTracing: true,
		TraceFile:     traceFile,
		SampleRatio:   1,
	}, logger)
	require.NoError(t, err)

	ctx, span := tel.Tracer.Start(context.Background(), "stage.test")
	AddSpanEvent(ctx, "rows", map[string]interface{}{"count": 3, "column": "status"})
	RecordError(ctx, errors.New("boom"))
	span.End()

	require.NoError(t, tel.Shutdown(context.Background()))

	content, err := os.ReadFile(traceFile)
	require.NoError(t, err)
	assert.Contains(t, string(content), "stage.test")
	assert.Contains(t, string(content), "boom")
}

func TestShutdown_NilTelemetry(t *testing.T) {
	var tel *Telemetry
	assert.NoError(t, tel.Shutdown(context.Background()))
	assert.NoError(t, tel.WriteMetrics("ignored"))
}
