package preprocess

import (
	"context"
	"log/slog"

	"startupeda/internal/operations"
	"startupeda/internal/table"
)

// ColumnPruner removes a fixed set of columns. In strict mode a missing
// column fails the stage with a schema error; in tolerant mode it is
// skipped with a warning.
type ColumnPruner struct {
	operations.BaseStep
	columns  []string
	tolerant bool
	logger   *slog.Logger
}

// NewColumnPruner creates a pruner stage
func NewColumnPruner(id string, columns []string, tolerant bool, logger *slog.Logger) *ColumnPruner {
	if logger == nil {
		logger = slog.Default()
	}
	return &ColumnPruner{
		BaseStep: operations.NewBaseStep(id, "Column Pruning"),
		columns:  append([]string(nil), columns...),
		tolerant: tolerant,
		logger:   logger,
	}
}

// RequiredInputs lists the pruned columns in strict mode only
func (p *ColumnPruner) RequiredInputs() []operations.Requirement {
	if p.tolerant {
		return nil
	}
	reqs := make([]operations.Requirement, len(p.columns))
	for i, c := range p.columns {
		reqs[i] = operations.Require(c)
	}
	return reqs
}

func (p *ColumnPruner) ProducedOutputs() []operations.Output { return nil }

// Prune returns in without the configured columns and the names that were
// absent (always empty in strict mode).
func (p *ColumnPruner) Prune(in *table.Table) (*table.Table, []string, error) {
	if !p.tolerant {
		out, err := in.Drop(p.columns...)
		return out, nil, err
	}
	out, missing := in.DropTolerant(p.columns...)
	return out, missing, nil
}

// Execute implements operations.Step
func (p *ColumnPruner) Execute(ctx context.Context, state *operations.OperationState, in *table.Table) (*table.Table, error) {
	out, missing, err := p.Prune(in)
	if err != nil {
		return nil, err
	}
	for _, name := range missing {
		p.logger.WarnContext(ctx, "Column to drop not found, skipping",
			slog.String("step", p.ID()),
			slog.String("column", name))
	}
	state.RecordStepMetadata(p.ID(), "dropped", in.NumColumns()-out.NumColumns())
	state.RecordStepMetadata(p.ID(), "missing", len(missing))
	return out, nil
}
