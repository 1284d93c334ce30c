package operations

import (
	"context"
	"sync"
	"time"

	"startupeda/internal/table"
)

// Requirement names a column a step reads and the types it accepts.
// An empty Types list accepts any type.
type Requirement struct {
	Column string             `json:"column"`
	Types  []table.ColumnType `json:"types,omitempty"`
}

// Output names a column a step guarantees to leave in the table
type Output struct {
	Column string          `json:"column"`
	Type   table.ColumnType `json:"type"`
}

// Step represents a single step of the operation
type Step interface {
	// ID returns the unique identifier for this step
	ID() string

	// Name returns the human-readable name for this step
	Name() string

	// RequiredInputs returns the columns this step reads
	RequiredInputs() []Requirement

	// ProducedOutputs returns the columns this step produces
	ProducedOutputs() []Output

	// Execute transforms in into a new table. Artifacts for later steps or
	// for the caller go into state.
	Execute(ctx context.Context, state *OperationState, in *table.Table) (*table.Table, error)
}

// StepStatus represents the current status of a step
type StepStatus string

const (
	StepStatusPending   StepStatus = "pending"
	StepStatusActive    StepStatus = "active"
	StepStatusCompleted StepStatus = "completed"
	StepStatusFailed    StepStatus = "failed"
)

// StepState represents the runtime state of a step
type StepState struct {
	mu        sync.RWMutex
	ID        string                 `json:"id"`
	Name      string                 `json:"name"`
	Status    StepStatus             `json:"status"`
	StartTime *time.Time             `json:"start_time,omitempty"`
	EndTime   *time.Time             `json:"end_time,omitempty"`
	Error     error                  `json:"-"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
}

// NewStepState creates a new step state with default values
func NewStepState(id, name string) *StepState {
	return &StepState{
		ID:       id,
		Name:     name,
		Status:   StepStatusPending,
		Metadata: make(map[string]interface{}),
	}
}

// Start marks the step as active and sets the start time
func (s *StepState) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	s.StartTime = &now
	s.Status = StepStatusActive
}

// Complete marks the step as completed and sets the end time
func (s *StepState) Complete() {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	s.EndTime = &now
	s.Status = StepStatusCompleted
}

// Fail marks the step as failed with the given error
func (s *StepState) Fail(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	s.EndTime = &now
	s.Status = StepStatusFailed
	s.Error = err
}

// GetStatus returns the current status
func (s *StepState) GetStatus() StepStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.Status
}

// SetMetadata records a per-step statistic such as rows touched
func (s *StepState) SetMetadata(key string, value interface{}) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Metadata[key] = value
}

// GetMetadata returns a per-step statistic
func (s *StepState) GetMetadata(key string) (interface{}, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.Metadata[key]
	return v, ok
}

// MetadataSnapshot returns a copy of the step's statistics
func (s *StepState) MetadataSnapshot() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]interface{}, len(s.Metadata))
	for k, v := range s.Metadata {
		out[k] = v
	}
	return out
}

// Duration returns the duration of the step execution
func (s *StepState) Duration() time.Duration {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.StartTime == nil {
		return 0
	}
	if s.EndTime != nil {
		return s.EndTime.Sub(*s.StartTime)
	}
	return time.Since(*s.StartTime)
}

// BaseStep provides the identity half of a Step
type BaseStep struct {
	id   string
	name string
}

// NewBaseStep creates a new base step
func NewBaseStep(id, name string) BaseStep {
	return BaseStep{id: id, name: name}
}

// ID returns the step ID
func (b BaseStep) ID() string { return b.id }

// Name returns the step name
func (b BaseStep) Name() string { return b.name }

// CheckInputs verifies every requirement of step against t's schema
func CheckInputs(step Step, t *table.Table) error {
	for _, req := range step.RequiredInputs() {
		if _, err := t.Require(req.Column, req.Types...); err != nil {
			return WrapError(err, step.ID(), "required input check failed")
		}
	}
	return nil
}

// CheckOutputs verifies t holds every column step promised to produce
func CheckOutputs(step Step, t *table.Table) error {
	for _, out := range step.ProducedOutputs() {
		if _, err := t.Require(out.Column, out.Type); err != nil {
			return WrapError(err, step.ID(), "produced output check failed")
		}
	}
	return nil
}

// Require is shorthand for a Requirement on column accepting types
func Require(column string, types ...table.ColumnType) Requirement {
	return Requirement{Column: column, Types: types}
}

// Produce is shorthand for an Output
func Produce(column string, typ table.ColumnType) Output {
	return Output{Column: column, Type: typ}
}
