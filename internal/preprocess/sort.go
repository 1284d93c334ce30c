package preprocess

import (
	"context"
	"sort"

	"startupeda/internal/operations"
	"startupeda/internal/table"
)

// RowSorter reorders rows by a date column, latest first. The sort is
// stable and nulls go last.
type RowSorter struct {
	operations.BaseStep
	column string
}

// NewRowSorter creates a sorting stage
func NewRowSorter(id, column string) *RowSorter {
	return &RowSorter{
		BaseStep: operations.NewBaseStep(id, "Row Sort"),
		column:   column,
	}
}

func (r *RowSorter) RequiredInputs() []operations.Requirement {
	return []operations.Requirement{operations.Require(r.column, table.Date)}
}

func (r *RowSorter) ProducedOutputs() []operations.Output { return nil }

// Sort returns the reordered table
func (r *RowSorter) Sort(in *table.Table) (*table.Table, error) {
	col, err := in.Require(r.column, table.Date)
	if err != nil {
		return nil, err
	}
	perm := make([]int, in.NumRows())
	for i := range perm {
		perm[i] = i
	}
	sort.SliceStable(perm, func(a, b int) bool {
		ta, okA := col.Time(perm[a])
		tb, okB := col.Time(perm[b])
		if !okA || !okB {
			return okA && !okB
		}
		return ta.After(tb)
	})
	return in.Take(perm)
}

// Execute implements operations.Step
func (r *RowSorter) Execute(_ context.Context, state *operations.OperationState, in *table.Table) (*table.Table, error) {
	out, err := r.Sort(in)
	if err != nil {
		return nil, err
	}
	col, _ := in.Column(r.column)
	state.RecordStepMetadata(r.ID(), "null_rows", col.NullCount())
	return out, nil
}
