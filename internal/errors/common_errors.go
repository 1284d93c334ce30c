package errors

import (
	stderrors "errors"
	"fmt"
)

// ErrorType represents the type of error
type ErrorType string

const (
	ErrTypeSchema     ErrorType = "SCHEMA"
	ErrTypeType       ErrorType = "TYPE"
	ErrTypeParsing    ErrorType = "PARSING"
	ErrTypeStorage    ErrorType = "STORAGE"
	ErrTypeValidation ErrorType = "VALIDATION"
	ErrTypeConfig     ErrorType = "CONFIG"
)

// AppError represents an application-specific error
type AppError struct {
	Type    ErrorType
	Message string
	Cause   error
	Context map[string]interface{}
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Type, e.Message)
}

// Unwrap allows errors.Is and errors.As to work with AppError
func (e *AppError) Unwrap() error {
	return e.Cause
}

// WithContext adds context to the error
func (e *AppError) WithContext(key string, value interface{}) *AppError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// NewAppError creates a new application error
func NewAppError(errType ErrorType, message string, cause error) *AppError {
	return &AppError{
		Type:    errType,
		Message: message,
		Cause:   cause,
		Context: make(map[string]interface{}),
	}
}

// IsType reports whether err, or anything it wraps, is an AppError of the given type.
func IsType(err error, errType ErrorType) bool {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr.Type == errType
	}
	return false
}

// Helper functions for common error types

// NewSchemaError reports a column referenced by a stage that the table does not have.
func NewSchemaError(column string) *AppError {
	return NewAppError(ErrTypeSchema, fmt.Sprintf("column %q not found", column), nil).
		WithContext("column", column)
}

// NewDuplicateColumnError reports a column name that appears twice in one table.
func NewDuplicateColumnError(column string) *AppError {
	return NewAppError(ErrTypeSchema, fmt.Sprintf("duplicate column %q", column), nil).
		WithContext("column", column)
}

// NewTypeError reports a column whose declared type does not match what a stage expects.
func NewTypeError(column, want, got string) *AppError {
	return NewAppError(ErrTypeType, fmt.Sprintf("column %q has type %s, want %s", column, got, want), nil).
		WithContext("column", column).
		WithContext("want", want).
		WithContext("got", got)
}

// NewDateParseError reports a cell of a date column that matches no accepted layout.
func NewDateParseError(column string, row int, value string) *AppError {
	return NewAppError(ErrTypeType, fmt.Sprintf("column %q row %d: cannot parse %q as a date", column, row, value), nil).
		WithContext("column", column).
		WithContext("row", row).
		WithContext("value", value)
}

// NewParsingError creates a parsing-related error
func NewParsingError(message string, cause error) *AppError {
	return NewAppError(ErrTypeParsing, message, cause)
}

// NewStorageError creates a storage-related error
func NewStorageError(message string, cause error) *AppError {
	return NewAppError(ErrTypeStorage, message, cause)
}

// NewValidationError creates a validation error
func NewValidationError(message string) *AppError {
	return NewAppError(ErrTypeValidation, message, nil)
}

// NewConfigError creates a configuration error
func NewConfigError(message string, cause error) *AppError {
	return NewAppError(ErrTypeConfig, message, cause)
}
