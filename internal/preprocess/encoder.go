package preprocess

import (
	"context"
	"log/slog"

	"startupeda/internal/operations"
	"startupeda/internal/table"
	"startupeda/pkg/contracts/domain"
)

// CategoricalEncoder rewrites categorical columns as integer codes assigned
// in order of first appearance, top to bottom. Nulls stay null and get no
// code.
type CategoricalEncoder struct {
	operations.BaseStep
	columns []string
	logger  *slog.Logger
}

// NewCategoricalEncoder creates an encoding stage
func NewCategoricalEncoder(id string, columns []string, logger *slog.Logger) *CategoricalEncoder {
	if logger == nil {
		logger = slog.Default()
	}
	return &CategoricalEncoder{
		BaseStep: operations.NewBaseStep(id, "Categorical Encoding"),
		columns:  append([]string(nil), columns...),
		logger:   logger,
	}
}

func (e *CategoricalEncoder) RequiredInputs() []operations.Requirement {
	reqs := make([]operations.Requirement, len(e.columns))
	for i, c := range e.columns {
		reqs[i] = operations.Require(c, table.Categorical)
	}
	return reqs
}

func (e *CategoricalEncoder) ProducedOutputs() []operations.Output {
	outs := make([]operations.Output, len(e.columns))
	for i, c := range e.columns {
		outs[i] = operations.Produce(c, table.Numeric)
	}
	return outs
}

// Encode returns the encoded table and one mapping per column, in column
// order.
func (e *CategoricalEncoder) Encode(in *table.Table) (*table.Table, domain.Mappings, error) {
	out := in
	mappings := make(domain.Mappings, 0, len(e.columns))
	for _, name := range e.columns {
		col, err := out.Require(name, table.Categorical)
		if err != nil {
			return nil, nil, err
		}
		mapping := domain.NewColumnMapping(name)
		codes := make([]float64, col.Len())
		for i := range codes {
			if label, ok := col.Text(i); ok {
				codes[i] = float64(mapping.Add(label))
			}
		}
		next := table.NewNumeric(name, codes, col.Nulls()).WithMissingMeaning(col.MissingMeaning())
		if out, err = out.WithColumn(next); err != nil {
			return nil, nil, err
		}
		mappings = append(mappings, mapping)
	}
	return out, mappings, nil
}

// Execute implements operations.Step
func (e *CategoricalEncoder) Execute(ctx context.Context, state *operations.OperationState, in *table.Table) (*table.Table, error) {
	out, mappings, err := e.Encode(in)
	if err != nil {
		return nil, err
	}
	for _, m := range mappings {
		e.logger.DebugContext(ctx, "Encoded column",
			slog.String("column", m.Column),
			slog.Int("labels", m.Len()))
	}
	state.SetContext(operations.ContextKeyMappings, mappings)
	state.RecordStepMetadata(e.ID(), "columns_encoded", len(mappings))
	return out, nil
}
