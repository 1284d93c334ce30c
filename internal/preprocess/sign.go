package preprocess

import (
	"context"
	"math"

	"startupeda/internal/operations"
	"startupeda/internal/table"
)

// SignNormalizer replaces every value of the configured numeric columns by
// its absolute value. Applying it twice equals applying it once.
type SignNormalizer struct {
	operations.BaseStep
	columns []string
}

// NewSignNormalizer creates a sign normalisation stage
func NewSignNormalizer(id string, columns []string) *SignNormalizer {
	return &SignNormalizer{
		BaseStep: operations.NewBaseStep(id, "Sign Normalization"),
		columns:  append([]string(nil), columns...),
	}
}

func (s *SignNormalizer) RequiredInputs() []operations.Requirement {
	reqs := make([]operations.Requirement, len(s.columns))
	for i, c := range s.columns {
		reqs[i] = operations.Require(c, table.Numeric)
	}
	return reqs
}

func (s *SignNormalizer) ProducedOutputs() []operations.Output {
	outs := make([]operations.Output, len(s.columns))
	for i, c := range s.columns {
		outs[i] = operations.Produce(c, table.Numeric)
	}
	return outs
}

// Normalize returns the corrected table and the number of negative values
// it turned positive.
func (s *SignNormalizer) Normalize(in *table.Table) (*table.Table, int, error) {
	out := in
	corrected := 0
	for _, name := range s.columns {
		col, err := out.Require(name, table.Numeric)
		if err != nil {
			return nil, corrected, err
		}
		values := col.Floats()
		for i, v := range values {
			if v < 0 {
				values[i] = math.Abs(v)
				corrected++
			}
		}
		next := table.NewNumeric(name, values, col.Nulls()).WithMissingMeaning(col.MissingMeaning())
		if out, err = out.WithColumn(next); err != nil {
			return nil, corrected, err
		}
	}
	return out, corrected, nil
}

// Execute implements operations.Step
func (s *SignNormalizer) Execute(_ context.Context, state *operations.OperationState, in *table.Table) (*table.Table, error) {
	out, corrected, err := s.Normalize(in)
	if err != nil {
		return nil, err
	}
	state.SetContext(operations.ContextKeyNegativesCorrected, corrected)
	state.RecordStepMetadata(s.ID(), operations.MetadataRowsTouched, corrected)
	return out, nil
}
