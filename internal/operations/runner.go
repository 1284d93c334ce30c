package operations

import (
	"context"
	"log/slog"
	"time"

	"startupeda/internal/infrastructure"
	"startupeda/internal/table"
)

// Runner executes the registered steps in order over one table
type Runner struct {
	registry *Registry
	tracer   *RunTracer
	logger   *slog.Logger
}

// NewRunner creates a runner. A nil tracer records nothing; a nil logger
// falls back to slog.Default().
func NewRunner(registry *Registry, tracer *RunTracer, logger *slog.Logger) *Runner {
	if registry == nil {
		registry = NewRegistry()
	}
	if tracer == nil {
		tracer = NewRunTracer(nil)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{
		registry: registry,
		tracer:   tracer,
		logger:   logger.With("component", "operations"),
	}
}

// Registry returns the registry the runner executes
func (r *Runner) Registry() *Registry {
	return r.registry
}

// Run threads in through every step. Before a step executes its required
// inputs are checked against the current schema; after it returns its
// produced outputs are checked. The first failure stops the run and is
// returned as an *OperationError. The state is returned in every case.
func (r *Runner) Run(ctx context.Context, in *table.Table) (*table.Table, *OperationState, error) {
	ctx = infrastructure.EnsureRunID(ctx)
	runID := infrastructure.GetRunID(ctx)

	steps := r.registry.List()
	state := NewOperationState(runID)
	for _, s := range steps {
		state.SetStep(s.ID(), NewStepState(s.ID(), s.Name()))
	}

	ctx, span := r.tracer.TraceRun(ctx, runID, in.NumRows(), in.NumColumns())
	defer span.End()

	state.Start()
	r.logger.InfoContext(ctx, "Pipeline started",
		slog.Int("steps", len(steps)),
		slog.Int("rows", in.NumRows()),
		slog.Int("columns", in.NumColumns()))

	out, err := r.runSteps(ctx, state, steps, in)
	if err != nil {
		if GetErrorType(err) == ErrorTypeCancellation {
			state.Cancel(err)
		} else {
			state.Fail(err)
		}
		r.tracer.RecordRunCompletion(ctx, span, state, err)
		r.logger.ErrorContext(ctx, "Pipeline failed",
			slog.String("error", err.Error()),
			slog.String("status", string(state.GetStatus())))
		return nil, state, err
	}

	state.Complete()
	r.tracer.RecordRunCompletion(ctx, span, state, nil)
	r.logger.InfoContext(ctx, "Pipeline completed",
		slog.Int("rows", out.NumRows()),
		slog.Int("columns", out.NumColumns()),
		slog.Duration("duration", state.Duration()))
	return out, state, nil
}

func (r *Runner) runSteps(ctx context.Context, state *OperationState, steps []Step, in *table.Table) (*table.Table, error) {
	current := in
	for i, step := range steps {
		if err := ctx.Err(); err != nil {
			r.logger.WarnContext(ctx, "Pipeline cancelled", slog.String("step", step.ID()))
			return nil, NewCancellationError(step.ID(), err)
		}

		next, err := r.runStep(ctx, state, step, current)
		if err != nil {
			return nil, err
		}

		r.logger.DebugContext(ctx, "Step completed",
			slog.String("step", step.ID()),
			slog.Int("step_number", i+1),
			slog.Int("total_steps", len(steps)),
			slog.Int("columns", next.NumColumns()))
		current = next
	}
	return current, nil
}

func (r *Runner) runStep(ctx context.Context, state *OperationState, step Step, in *table.Table) (*table.Table, error) {
	stepState := state.GetStep(step.ID())
	ctx, span := r.tracer.TraceStep(ctx, state.ID, step)
	defer span.End()

	started := time.Now()
	fail := func(err error) (*table.Table, error) {
		stepState.Fail(err)
		r.tracer.RecordStepCompletion(ctx, span, step.ID(), time.Since(started), err, in.NumColumns())
		r.logger.ErrorContext(ctx, "Step failed",
			slog.String("step", step.ID()),
			slog.String("error_type", string(GetErrorType(err))),
			slog.String("error", err.Error()))
		return nil, err
	}

	if err := CheckInputs(step, in); err != nil {
		return fail(err)
	}

	stepState.Start()
	stepState.SetMetadata(MetadataRowsIn, in.NumRows())
	stepState.SetMetadata(MetadataColumnsIn, in.NumColumns())

	out, err := step.Execute(ctx, state, in)
	if err != nil {
		return fail(WrapError(err, step.ID(), "step execution failed"))
	}
	if out == nil {
		return fail(NewValidationError(step.ID(), "step returned no table"))
	}
	if err := CheckOutputs(step, out); err != nil {
		return fail(err)
	}

	stepState.SetMetadata(MetadataRowsOut, out.NumRows())
	stepState.SetMetadata(MetadataColumnsOut, out.NumColumns())
	stepState.Complete()
	r.tracer.RecordStepCompletion(ctx, span, step.ID(), time.Since(started), nil, out.NumColumns())
	return out, nil
}
