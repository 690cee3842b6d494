package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors used across all layers.
var (
	ErrNotFound      = errors.New("not found")
	ErrAlreadyExists = errors.New("already exists")
	ErrValidation    = errors.New("validation error")
	ErrConflict      = errors.New("conflict")

	// ErrTransientStore marks an I/O failure of the backing store. The
	// operation left no partial state and may be retried as-is.
	ErrTransientStore = errors.New("transient store error")
)

// Input errors. Each one is also an ErrValidation.
var (
	ErrInvalidTimeZone       = fmt.Errorf("%w: invalid time zone", ErrValidation)
	ErrInvalidDateTime       = fmt.Errorf("%w: invalid date-time", ErrValidation)
	ErrMissingScheduleFields = fmt.Errorf("%w: scheduled_at and scheduled_timezone are required", ErrValidation)
	ErrInvalidStatus         = fmt.Errorf("%w: invalid status", ErrValidation)
)

// FieldError describes a validation error for a specific field.
type FieldError struct {
	Field   string
	Message string
}

// ValidationError contains a list of field-level validation errors.
// Cause, when set, is the sentinel the error reports through errors.Is.
type ValidationError struct {
	Errors []FieldError
	Cause  error
}

func (e *ValidationError) Error() string {
	if len(e.Errors) == 1 {
		return fmt.Sprintf("validation: %s — %s", e.Errors[0].Field, e.Errors[0].Message)
	}
	return fmt.Sprintf("validation: %d errors", len(e.Errors))
}

func (e *ValidationError) Unwrap() error {
	if e.Cause != nil {
		return e.Cause
	}
	return ErrValidation
}

// NewValidationError creates a ValidationError for a single field.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{
		Errors: []FieldError{{Field: field, Message: message}},
	}
}

// NewValidationErrors creates a ValidationError from multiple field errors.
func NewValidationErrors(errs []FieldError) *ValidationError {
	return &ValidationError{Errors: errs}
}

// NewFieldError wraps one of the input sentinels with the offending field,
// so callers can both match the sentinel and report the field.
func NewFieldError(cause error, field, message string) *ValidationError {
	return &ValidationError{
		Errors: []FieldError{{Field: field, Message: message}},
		Cause:  cause,
	}
}
