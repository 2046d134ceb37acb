package errors

import (
	"errors"
	"fmt"
	"time"
)

// ErrorType represents the type of error
type ErrorType string

const (
	ErrNotFound        ErrorType = "NOT_FOUND"
	ErrConflict        ErrorType = "CONFLICT"
	ErrInvalidInput    ErrorType = "INVALID_INPUT"
	ErrTransient       ErrorType = "TRANSIENT"
	ErrSchemaViolation ErrorType = "SCHEMA_VIOLATION"
	ErrInternal        ErrorType = "INTERNAL"
)

// AppError represents an application error
type AppError struct {
	Type      ErrorType
	Message   string
	Cause     error
	Timestamp time.Time
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// New creates a new AppError
func New(errType ErrorType, message string, cause error) *AppError {
	return &AppError{
		Type:      errType,
		Message:   message,
		Cause:     cause,
		Timestamp: time.Now(),
	}
}

func is(err error, errType ErrorType) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Type == errType
	}
	return false
}

// IsNotFound checks if the error is a not found error
func IsNotFound(err error) bool {
	return is(err, ErrNotFound)
}

// IsConflict checks if the error is a duplicate-key conflict
func IsConflict(err error) bool {
	return is(err, ErrConflict)
}

// IsValidationError checks if the error is a validation error
func IsValidationError(err error) bool {
	return is(err, ErrInvalidInput)
}

// IsTransient checks if the error is a transient store/network error.
// Transient errors are recoverable by retry and must never be folded
// into a false dedup.
func IsTransient(err error) bool {
	return is(err, ErrTransient)
}

// IsSchemaViolation checks if the error reports classifier output that
// did not conform to the expected structure
func IsSchemaViolation(err error) bool {
	return is(err, ErrSchemaViolation)
}

// NewNotFoundError creates a new not found error
func NewNotFoundError(message string, err error) *AppError {
	return New(ErrNotFound, message, err)
}

// NewConflictError creates a new conflict error
func NewConflictError(message string, err error) *AppError {
	return New(ErrConflict, message, err)
}

// NewValidationError creates a new validation error
func NewValidationError(message string, err error) *AppError {
	return New(ErrInvalidInput, message, err)
}

// NewTransientError creates a new transient error
func NewTransientError(message string, err error) *AppError {
	return New(ErrTransient, message, err)
}

// NewSchemaViolationError creates a new schema violation error
func NewSchemaViolationError(message string, err error) *AppError {
	return New(ErrSchemaViolation, message, err)
}

// NewInternalError creates a new internal error
func NewInternalError(message string, err error) *AppError {
	return New(ErrInternal, message, err)
}
