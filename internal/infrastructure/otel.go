package infrastructure

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/metric"
	metricnoop "go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.28.0"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"

	"startupeda/internal/config"
)

const (
	ServiceName = config.AppName
	MeterName   = "startupeda"
)

// Telemetry holds the tracing and metrics providers of one process.
// Disabled signals are backed by no-op implementations, so callers never
// need to nil-check Tracer or Meter.
type Telemetry struct {
	TracerProvider *sdktrace.TracerProvider
	MeterProvider  *sdkmetric.MeterProvider
	Tracer         trace.Tracer
	Meter          metric.Meter
	Registry       *prom.Registry
	Metrics        *PipelineMetrics
	Logger         *slog.Logger

	traceOut io.Closer
}

// InitializeTelemetry sets up tracing (stdout exporter writing to the trace
// file) and metrics (OTel Prometheus exporter on a private registry).
func InitializeTelemetry(cfg config.TelemetryConfig, logger *slog.Logger) (*Telemetry, error) {
	if logger == nil {
		logger = GetLogger()
	}
	ctx := context.Background()

	res, err := createResource(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}

	t := &Telemetry{
		Tracer: tracenoop.NewTracerProvider().Tracer(MeterName),
		Meter:  metricnoop.NewMeterProvider().Meter(MeterName),
		Logger: logger,
	}

	if cfg.EnableTracing {
		if err := t.initializeTracing(cfg, res); err != nil {
			return nil, fmt.Errorf("failed to initialize tracing: %w", err)
		}
	}

	if cfg.EnableMetrics {
		if err := t.initializeMetrics(res); err != nil {
			return nil, fmt.Errorf("failed to initialize metrics: %w", err)
		}
	}

	t.Metrics, err = NewPipelineMetrics(t.Meter)
	if err != nil {
		return nil, fmt.Errorf("failed to create pipeline metrics: %w", err)
	}

	logger.DebugContext(ctx, "Telemetry initialized",
		slog.Bool("tracing_enabled", cfg.EnableTracing),
		slog.Bool("metrics_enabled", cfg.EnableMetrics),
		slog.String("trace_file", cfg.TraceFile))

	return t, nil
}

// createResource creates the OpenTelemetry resource
func createResource(cfg config.TelemetryConfig) (*resource.Resource, error) {
	env := cfg.Environment
	if env == "" {
		env = "development"
	}
	return resource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceName(ServiceName),
		semconv.ServiceVersion(config.AppVersion),
		semconv.DeploymentEnvironmentName(env),
		attribute.String("service.instance.id", generateInstanceID()),
	), nil
}

func (t *Telemetry) initializeTracing(cfg config.TelemetryConfig, res *resource.Resource) error {
	var out io.Writer = os.Stderr
	if cfg.TraceFile != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.TraceFile), 0755); err != nil {
			return fmt.Errorf("failed to create trace directory: %w", err)
		}
		f, err := os.Create(cfg.TraceFile)
		if err != nil {
			return fmt.Errorf("failed to open trace file: %w", err)
		}
		t.traceOut = f
		out = f
	}

	exporter, err := stdouttrace.New(stdouttrace.WithWriter(out))
	if err != nil {
		return fmt.Errorf("failed to create trace exporter: %w", err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.TraceIDRatioBased(cfg.SampleRatio)),
	)

	t.TracerProvider = tp
	t.Tracer = tp.Tracer(MeterName, trace.WithInstrumentationVersion(config.AppVersion))
	otel.SetTracerProvider(tp)
	return nil
}

func (t *Telemetry) initializeMetrics(res *resource.Resource) error {
	reg := prom.NewRegistry()
	exporter, err := prometheus.New(prometheus.WithRegisterer(reg))
	if err != nil {
		return fmt.Errorf("failed to create prometheus exporter: %w", err)
	}

	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(exporter),
	)

	t.Registry = reg
	t.MeterProvider = mp
	t.Meter = mp.Meter(MeterName, metric.WithInstrumentationVersion(config.AppVersion))
	otel.SetMeterProvider(mp)
	return nil
}

// WriteMetrics writes a Prometheus text-format snapshot of the run's metrics.
// It is a no-op when metrics are disabled or path is empty.
func (t *Telemetry) WriteMetrics(path string) error {
	if t == nil || t.Registry == nil || path == "" {
		return nil
	}
	if err := prom.WriteToTextfile(path, t.Registry); err != nil {
		return fmt.Errorf("failed to write metrics snapshot: %w", err)
	}
	return nil
}

// Shutdown flushes pending spans and releases the providers
func (t *Telemetry) Shutdown(ctx context.Context) error {
	if t == nil {
		return nil
	}
	var errs []error

	if t.TracerProvider != nil {
		if err := t.TracerProvider.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("tracer provider shutdown: %w", err))
		}
	}
	if t.MeterProvider != nil {
		if err := t.MeterProvider.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("meter provider shutdown: %w", err))
		}
	}
	if t.traceOut != nil {
		if err := t.traceOut.Close(); err != nil {
			errs = append(errs, fmt.Errorf("trace file close: %w", err))
		}
		t.traceOut = nil
	}

	return errors.Join(errs...)
}

// PipelineMetrics holds the instruments recorded by a preprocessing run
type PipelineMetrics struct {
	RunsTotal       metric.Int64Counter
	RunDuration     metric.Float64Histogram
	StageExecutions metric.Int64Counter
	StageDuration   metric.Float64Histogram
	StageErrors     metric.Int64Counter
	RowsProcessed   metric.Int64Counter
	OutliersFlagged metric.Int64Counter
	FilesWritten    metric.Int64Counter
}

// NewPipelineMetrics registers the pipeline instruments on meter
func NewPipelineMetrics(meter metric.Meter) (*PipelineMetrics, error) {
	runsTotal, err := meter.Int64Counter(
		"pipeline_runs_total",
		metric.WithDescription("Total number of preprocessing runs"),
	)
	if err != nil {
		return nil, err
	}

	runDuration, err := meter.Float64Histogram(
		"pipeline_run_duration_seconds",
		metric.WithDescription("Preprocessing run duration in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	stageExecutions, err := meter.Int64Counter(
		"pipeline_stage_executions_total",
		metric.WithDescription("Total number of stage executions"),
	)
	if err != nil {
		return nil, err
	}

	stageDuration, err := meter.Float64Histogram(
		"pipeline_stage_duration_seconds",
		metric.WithDescription("Stage execution duration in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	stageErrors, err := meter.Int64Counter(
		"pipeline_stage_errors_total",
		metric.WithDescription("Total number of failed stage executions"),
	)
	if err != nil {
		return nil, err
	}

	rowsProcessed, err := meter.Int64Counter(
		"pipeline_rows_processed_total",
		metric.WithDescription("Rows read from the input dataset"),
	)
	if err != nil {
		return nil, err
	}

	outliers, err := meter.Int64Counter(
		"pipeline_outliers_flagged_total",
		metric.WithDescription("Rows flagged as outliers"),
	)
	if err != nil {
		return nil, err
	}

	filesWritten, err := meter.Int64Counter(
		"pipeline_files_written_total",
		metric.WithDescription("Output artifacts written"),
	)
	if err != nil {
		return nil, err
	}

	return &PipelineMetrics{
		RunsTotal:       runsTotal,
		RunDuration:     runDuration,
		StageExecutions: stageExecutions,
		StageDuration:   stageDuration,
		StageErrors:     stageErrors,
		RowsProcessed:   rowsProcessed,
		OutliersFlagged: outliers,
		FilesWritten:    filesWritten,
	}, nil
}

// RecordStage records one stage execution
func (m *PipelineMetrics) RecordStage(ctx context.Context, stageID string, duration time.Duration, success bool) {
	if m == nil {
		return
	}
	attrs := []attribute.KeyValue{
		attribute.String("stage_id", stageID),
		attribute.String("status", statusLabel(success)),
	}
	m.StageExecutions.Add(ctx, 1, metric.WithAttributes(attrs...))
	m.StageDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(attrs...))
	if !success {
		m.StageErrors.Add(ctx, 1, metric.WithAttributes(attribute.String("stage_id", stageID)))
	}
}

// RecordRun records a completed run
func (m *PipelineMetrics) RecordRun(ctx context.Context, duration time.Duration, success bool) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(attribute.String("status", statusLabel(success)))
	m.RunsTotal.Add(ctx, 1, attrs)
	m.RunDuration.Record(ctx, duration.Seconds(), attrs)
}

// RecordFileWritten counts one output artifact of the given kind
func (m *PipelineMetrics) RecordFileWritten(ctx context.Context, kind string) {
	if m == nil {
		return
	}
	m.FilesWritten.Add(ctx, 1, metric.WithAttributes(attribute.String("kind", kind)))
}

func statusLabel(success bool) string {
	if success {
		return "success"
	}
	return "failure"
}

// generateInstanceID generates a unique instance identifier
func generateInstanceID() string {
	hostname, _ := os.Hostname()
	return fmt.Sprintf("%s-%d", hostname, time.Now().Unix())
}

// AddSpanEvent adds an event to the current span with structured attributes
func AddSpanEvent(ctx context.Context, name string, attributes map[string]interface{}) {
	span := trace.SpanFromContext(ctx)
	if !span.IsRecording() {
		return
	}
	span.AddEvent(name, trace.WithAttributes(toAttributes(attributes)...))
}

// RecordError records an error on the current span
func RecordError(ctx context.Context, err error, options ...trace.EventOption) {
	span := trace.SpanFromContext(ctx)
	if !span.IsRecording() {
		return
	}
	span.RecordError(err, options...)
	span.SetStatus(codes.Error, err.Error())
}

func toAttributes(attributes map[string]interface{}) []attribute.KeyValue {
	attrs := make([]attribute.KeyValue, 0, len(attributes))
	for k, v := range attributes {
		switch val := v.(type) {
		case string:
			attrs = append(attrs, attribute.String(k, val))
		case int:
			attrs = append(attrs, attribute.Int(k, val))
		case int64:
			attrs = append(attrs, attribute.Int64(k, val))
		case float64:
			attrs = append(attrs, attribute.Float64(k, val))
		case bool:
			attrs = append(attrs, attribute.Bool(k, val))
		default:
			attrs = append(attrs, attribute.String(k, fmt.Sprintf("%v", val)))
		}
	}
	return attrs
}
