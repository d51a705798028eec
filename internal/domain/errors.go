package domain

import (
	"errors"
	"fmt"
)

// ErrValidation is the sentinel every ValidationError unwraps to.
var ErrValidation = errors.New("validation failed")

// FieldError describes a validation failure for a single input field.
type FieldError struct {
	Field   string
	Message string
}

// ValidationError reports caller-supplied input that violates an invariant,
// such as an empty quiz or a grade outside [0,100].
type ValidationError struct {
	Errors []FieldError
}

func (e *ValidationError) Error() string {
	if len(e.Errors) == 1 {
		return fmt.Sprintf("validation: %s: %s", e.Errors[0].Field, e.Errors[0].Message)
	}
	return fmt.Sprintf("validation: %d errors", len(e.Errors))
}

// Unwrap makes errors.Is(err, ErrValidation) hold for every ValidationError.
func (e *ValidationError) Unwrap() error { return ErrValidation }

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
