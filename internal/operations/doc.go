// Package operations runs an ordered set of table-transforming steps.
//
// A Step declares the columns it reads (with the types it accepts) and the
// columns it produces. The Runner checks the declared inputs against the
// current table schema before each step executes and the declared outputs
// after it returns, so a missing or mistyped column surfaces as a schema or
// type error naming the step instead of failing inside the transform.
//
// Core Components:
//
// Step: one unit of work. Execute receives the current table and returns a
// new one; steps never mutate their input.
//
// Registry: holds steps in registration order and rejects duplicate IDs.
//
// Runner: executes the registry in order, records a StepState per step,
// logs, traces and meters each step, and stops at the first failure.
//
// OperationState: the run ID, status and step states of one run, plus the
// artifacts steps hand to later steps or to the caller (Context).
//
// Example usage:
//
//	registry := operations.NewRegistry()
//	registry.Register(pruneStep)
//	registry.Register(imputeStep)
//
//	runner := operations.NewRunner(registry, operations.NewRunTracer(tel), logger)
//	out, state, err := runner.Run(ctx, in)
package operations
