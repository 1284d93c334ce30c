package preprocess

import (
	"context"
	"fmt"
	"log/slog"

	apperrors "startupeda/internal/errors"
	"startupeda/internal/operations"
	"startupeda/internal/stats"
	"startupeda/internal/table"
)

// MeanImputer fills the nulls of numeric columns with the column mean. The
// mean is taken over the observed values before any cell is filled.
// Columns in keepMissing are left null on purpose and annotated with what
// their nulls mean.
type MeanImputer struct {
	operations.BaseStep
	columns     []string
	keepMissing map[string]string
	keepOrder   []string
	logger      *slog.Logger
}

// ImputeResult summarises one imputation pass
type ImputeResult struct {
	Values      map[string]float64 // fill value per column
	Filled      int                // cells filled across all columns
	KeptMissing int                // nulls deliberately left in annotated columns
}

// NewMeanImputer creates an imputer. keepMissing maps a column to the
// meaning attached to its nulls, e.g. "closed_at" → "still_active".
func NewMeanImputer(id string, columns []string, keepMissing map[string]string, logger *slog.Logger) *MeanImputer {
	if logger == nil {
		logger = slog.Default()
	}
	m := &MeanImputer{
		BaseStep:    operations.NewBaseStep(id, "Mean Imputation"),
		columns:     append([]string(nil), columns...),
		keepMissing: make(map[string]string, len(keepMissing)),
		logger:      logger,
	}
	for col, meaning := range keepMissing {
		m.keepMissing[col] = meaning
	}
	m.keepOrder = sortedKeys(m.keepMissing)
	return m
}

func (m *MeanImputer) RequiredInputs() []operations.Requirement {
	reqs := make([]operations.Requirement, 0, len(m.columns)+len(m.keepOrder))
	for _, c := range m.columns {
		reqs = append(reqs, operations.Require(c, table.Numeric))
	}
	for _, c := range m.keepOrder {
		reqs = append(reqs, operations.Require(c))
	}
	return reqs
}

func (m *MeanImputer) ProducedOutputs() []operations.Output {
	outs := make([]operations.Output, len(m.columns))
	for i, c := range m.columns {
		outs[i] = operations.Produce(c, table.Numeric)
	}
	return outs
}

// Impute fills every configured column and annotates the kept ones
func (m *MeanImputer) Impute(in *table.Table) (*table.Table, ImputeResult, error) {
	result := ImputeResult{Values: make(map[string]float64, len(m.columns))}
	out := in
	for _, name := range m.columns {
		col, err := out.Require(name, table.Numeric)
		if err != nil {
			return nil, result, err
		}
		observed := col.ObservedFloats()
		if len(observed) == 0 {
			return nil, result, apperrors.NewValidationError(
				fmt.Sprintf("column %q has no observed values to impute from", name)).
				WithContext("column", name)
		}
		mean := stats.Mean(observed)

		values := col.Floats()
		filled := 0
		for i := range values {
			if col.IsNull(i) {
				values[i] = mean
				filled++
			}
		}
		if out, err = out.WithColumn(table.NewNumeric(name, values, nil)); err != nil {
			return nil, result, err
		}
		result.Values[name] = mean
		result.Filled += filled
	}

	for _, name := range m.keepOrder {
		col, err := out.Column(name)
		if err != nil {
			return nil, result, err
		}
		result.KeptMissing += col.NullCount()
		if out, err = out.WithColumn(col.WithMissingMeaning(m.keepMissing[name])); err != nil {
			return nil, result, err
		}
	}
	return out, result, nil
}

// Execute implements operations.Step
func (m *MeanImputer) Execute(ctx context.Context, state *operations.OperationState, in *table.Table) (*table.Table, error) {
	out, result, err := m.Impute(in)
	if err != nil {
		return nil, err
	}
	for _, name := range m.columns {
		m.logger.DebugContext(ctx, "Imputed column",
			slog.String("column", name),
			slog.Float64("mean", result.Values[name]))
	}
	state.SetContext(operations.ContextKeyImputedValues, result.Values)
	state.SetContext(operations.ContextKeyStillActive, result.KeptMissing)
	state.RecordStepMetadata(m.ID(), operations.MetadataRowsTouched, result.Filled)
	state.RecordStepMetadata(m.ID(), "kept_missing", result.KeptMissing)
	return out, nil
}
