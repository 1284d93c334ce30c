package operations

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"startupeda/internal/infrastructure"
)

const (
	TracerName = "startupeda.operation"
)

// RunTracer provides OpenTelemetry instrumentation for runs and steps
type RunTracer struct {
	tracer  trace.Tracer
	metrics *infrastructure.PipelineMetrics
}

// NewRunTracer creates a tracer over the process telemetry. A nil telemetry
// yields a tracer that records nothing.
func NewRunTracer(tel *infrastructure.Telemetry) *RunTracer {
	if tel == nil {
		return &RunTracer{tracer: noop.NewTracerProvider().Tracer(TracerName)}
	}
	return &RunTracer{tracer: tel.Tracer, metrics: tel.Metrics}
}

// TraceRun creates a span for a whole run
func (rt *RunTracer) TraceRun(ctx context.Context, runID string, rows, columns int) (context.Context, trace.Span) {
	ctx, span := rt.tracer.Start(ctx, "operation.run",
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(
			attribute.String("operation.id", runID),
			attribute.Int("table.rows", rows),
			attribute.Int("table.columns", columns),
		),
	)
	if rt.metrics != nil {
		rt.metrics.RowsProcessed.Add(ctx, int64(rows))
	}
	return ctx, span
}

// TraceStep creates a span for one step execution
func (rt *RunTracer) TraceStep(ctx context.Context, runID string, step Step) (context.Context, trace.Span) {
	return rt.tracer.Start(ctx, fmt.Sprintf("operation.step.%s", step.ID()),
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(
			attribute.String("operation.id", runID),
			attribute.String("step.id", step.ID()),
			attribute.String("step.name", step.Name()),
		),
	)
}

// RecordStepCompletion ends bookkeeping for a step: span attributes, status
// and the stage metrics.
func (rt *RunTracer) RecordStepCompletion(ctx context.Context, span trace.Span, stepID string, duration time.Duration, err error, columnsOut int) {
	span.SetAttributes(
		attribute.Float64("step.duration_seconds", duration.Seconds()),
		attribute.Int("table.columns", columnsOut),
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "step completed")
	}
	rt.metrics.RecordStage(ctx, stepID, duration, err == nil)
}

// RecordRunCompletion ends bookkeeping for a run
func (rt *RunTracer) RecordRunCompletion(ctx context.Context, span trace.Span, state *OperationState, err error) {
	span.SetAttributes(
		attribute.String("operation.status", string(state.GetStatus())),
		attribute.Float64("operation.duration_seconds", state.Duration().Seconds()),
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "operation completed")
	}
	rt.metrics.RecordRun(ctx, state.Duration(), err == nil)
	if rt.metrics != nil {
		if n, ok := state.GetContext(ContextKeyOutlierCount); ok {
			if count, ok := n.(int); ok {
				rt.metrics.OutliersFlagged.Add(ctx, int64(count))
			}
		}
	}
}
