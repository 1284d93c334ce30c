package operations_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	apperrors "startupeda/internal/errors"
	"startupeda/internal/operations"
)

func TestOperationError(t *testing.T) {
	cause := errors.New("disk full")
	err := operations.NewExecutionError("export", cause)

	assert.Equal(t, "[execution] export: step execution failed: disk full", err.Error())
	assert.ErrorIs(t, err, cause)

	var nilErr *operations.OperationError
	assert.Equal(t, "unknown operation error", nilErr.Error())
	assert.Nil(t, nilErr.Unwrap())

	assert.Equal(t, "[validation] bad config", (&operations.OperationError{
		Type: operations.ErrorTypeValidation, Message: "bad config",
	}).Error())
}

func TestWrapError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantType operations.ErrorType
	}{
		{"schema", apperrors.NewSchemaError("city"), operations.ErrorTypeSchema},
		{"type", apperrors.NewTypeError("founded_at", "date", "numeric"), operations.ErrorTypeType},
		{"validation", apperrors.NewValidationError("no values"), operations.ErrorTypeValidation},
		{"wrapped schema", fmt.Errorf("ctx: %w", apperrors.NewSchemaError("x")), operations.ErrorTypeSchema},
		{"cancelled", context.Canceled, operations.ErrorTypeCancellation},
		{"deadline", fmt.Errorf("wait: %w", context.DeadlineExceeded), operations.ErrorTypeCancellation},
		{"plain", errors.New("boom"), operations.ErrorTypeExecution},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wrapped := operations.WrapError(tt.err, "step", "failed")
			assert.Equal(t, tt.wantType, wrapped.Type)
			assert.Equal(t, "step", wrapped.Step)
			assert.ErrorIs(t, wrapped, tt.err)
			assert.Equal(t, tt.wantType, operations.GetErrorType(wrapped))
		})
	}

	assert.Nil(t, operations.WrapError(nil, "step", "failed"))
}

func TestWrapError_KeepsContextAndExistingOperationError(t *testing.T) {
	wrapped := operations.WrapError(apperrors.NewSchemaError("city"), "encode", "failed")
	assert.Equal(t, "city", wrapped.Context["column"])
	assert.True(t, apperrors.IsType(wrapped, apperrors.ErrTypeSchema))

	inner := operations.NewValidationError("", "bad")
	again := operations.WrapError(inner, "outer", "ignored")
	assert.Same(t, inner, again)
	assert.Equal(t, "outer", again.Step)
}

func TestGetErrorType(t *testing.T) {
	assert.Equal(t, operations.ErrorType(""), operations.GetErrorType(nil))
	assert.Equal(t, operations.ErrorTypeExecution, operations.GetErrorType(errors.New("x")))
	assert.Equal(t, operations.ErrorTypeCancellation,
		operations.GetErrorType(operations.NewCancellationError("s", context.Canceled)))
}
