package testutil

import (
	"context"
	"errors"
	"sync"

	"startupeda/internal/operations"
	"startupeda/internal/table"
)

// MockStep is a configurable implementation of operations.Step
type MockStep struct {
	IDValue     string
	NameValue   string
	Inputs      []operations.Requirement
	Outputs     []operations.Output
	ExecuteFunc func(ctx context.Context, state *operations.OperationState, in *table.Table) (*table.Table, error)

	mu           sync.Mutex
	ExecuteCalls int
}

func (m *MockStep) ID() string                               { return m.IDValue }
func (m *MockStep) Name() string                             { return m.NameValue }
func (m *MockStep) RequiredInputs() []operations.Requirement { return m.Inputs }
func (m *MockStep) ProducedOutputs() []operations.Output     { return m.Outputs }

// Execute runs ExecuteFunc, or passes the table through unchanged
func (m *MockStep) Execute(ctx context.Context, state *operations.OperationState, in *table.Table) (*table.Table, error) {
	m.mu.Lock()
	m.ExecuteCalls++
	m.mu.Unlock()

	if m.ExecuteFunc != nil {
		return m.ExecuteFunc(ctx, state, in)
	}
	return in, nil
}

// GetExecuteCalls returns the number of Execute calls
func (m *MockStep) GetExecuteCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.ExecuteCalls
}

// PassThroughStep creates a step that returns its input
func PassThroughStep(id string) *MockStep {
	return &MockStep{IDValue: id, NameValue: id}
}

// FailingStep creates a step whose Execute always returns err
func FailingStep(id string, err error) *MockStep {
	if err == nil {
		err = errors.New("step failed")
	}
	return &MockStep{
		IDValue:   id,
		NameValue: id,
		ExecuteFunc: func(context.Context, *operations.OperationState, *table.Table) (*table.Table, error) {
			return nil, err
		},
	}
}

// AddColumnStep creates a step appending a constant numeric column
func AddColumnStep(id, column string, value float64) *MockStep {
	return &MockStep{
		IDValue:   id,
		NameValue: id,
		Outputs:   []operations.Output{operations.Produce(column, table.Numeric)},
		ExecuteFunc: func(_ context.Context, state *operations.OperationState, in *table.Table) (*table.Table, error) {
			values := make([]float64, in.NumRows())
			for i := range values {
				values[i] = value
			}
			state.RecordStepMetadata(id, operations.MetadataRowsTouched, in.NumRows())
			return in.WithColumn(table.NewNumeric(column, values, nil))
		},
	}
}

// NumericTable builds a single-column numeric table
func NumericTable(column string, values ...float64) *table.Table {
	return table.MustNew(table.NewNumeric(column, values, nil))
}
