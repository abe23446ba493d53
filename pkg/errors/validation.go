package errors

import (
	"errors"
	"fmt"
)

// Sentinel causes for caller mistakes. They are always delivered wrapped
// in a ValidationError so the failing field and value travel with them;
// match with errors.Is.
var (
	// ErrInputEmpty is returned when an operation that requires payload
	// bytes receives none.
	ErrInputEmpty = errors.New("input is empty")

	// ErrInvalidOption is returned for an option value outside its
	// supported range, e.g. an unknown block size id or a compression
	// level above the maximum.
	ErrInvalidOption = errors.New("invalid option value")

	// ErrInvalidContext is returned when a context is used out of order:
	// updating before beginning a frame, beginning mid-frame, or any use
	// after Close.
	ErrInvalidContext = errors.New("context is not usable")
)

// ValidationError represents an error that occurs due to invalid input.
// It includes the field name, the invalid value, and the underlying error.
type ValidationError struct {
	Value any    `json:"value"` // The actual value that failed validation.
	Field string `json:"field"` // Name of the field that caused the validation error.
	Err   error  `json:"error"` // The underlying error providing details about the validation issue.
}

// NewValidationError creates a new ValidationError instance.
func NewValidationError(field string, value any, err error) *ValidationError {
	return &ValidationError{
		Err:   err,
		Field: field,
		Value: value,
	}
}

// Error implements the error interface for ValidationError.
func (e *ValidationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s (%v): %v", e.Field, e.Value, e.Err)
	}
	return fmt.Sprintf("%s (%v): validation error", e.Field, e.Value)
}

// Unwrap exposes the underlying cause so sentinel values remain
// matchable through errors.Is.
func (e *ValidationError) Unwrap() error {
	return e.Err
}

// IsValidationError checks if a given error is of type ValidationError.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// AsValidationError attempts to extract a ValidationError from a given error.
func AsValidationError(err error) *ValidationError {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve
	}
	return nil
}
