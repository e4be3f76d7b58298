package domain

import (
	"errors"
	"fmt"
)

// Validation failures that reject an audit before any rate is computed.
var (
	// ErrShapeMismatch indicates that the prediction, label, and group
	// vectors do not share one length.
	ErrShapeMismatch = errors.New("shape mismatch")

	// ErrEmptyInput indicates that at least one input vector has no elements.
	ErrEmptyInput = errors.New("empty input")

	// ErrNonBinaryValue indicates that a prediction or label is neither 0 nor 1.
	ErrNonBinaryValue = errors.New("non-binary value")

	// ErrInvalidTolerance indicates a tolerance outside (0, 1].
	ErrInvalidTolerance = errors.New("invalid tolerance")
)

// ErrorKind names the category of a ValidationError.
type ErrorKind string

// Validation error kinds, one per sentinel above.
const (
	KindShapeMismatch    ErrorKind = "ShapeMismatch"
	KindEmptyInput       ErrorKind = "EmptyInput"
	KindNonBinaryValue   ErrorKind = "NonBinaryValue"
	KindInvalidTolerance ErrorKind = "InvalidTolerance"
)

// ValidationError represents a rejected audit input.
// It can contain multiple validation messages describing the failure.
type ValidationError struct {
	// Kind is the failure category.
	Kind ErrorKind

	// Entity is the name of the input that failed validation.
	Entity string

	// Errors contains the list of validation error messages.
	Errors []string

	// Err is the sentinel matching Kind.
	Err error
}

// Error implements the error interface for ValidationError.
func (e *ValidationError) Error() string {
	if len(e.Errors) == 1 {
		return fmt.Sprintf("validation error (%s) for %s: %s", e.Kind, e.Entity, e.Errors[0])
	}
	return fmt.Sprintf("validation errors (%s) for %s: %v", e.Kind, e.Entity, e.Errors)
}

// Unwrap returns the sentinel error so callers can use errors.Is.
func (e *ValidationError) Unwrap() error { return e.Err }

// AddError adds a new error message to the validation error.
func (e *ValidationError) AddError(msg string) { e.Errors = append(e.Errors, msg) }

// HasErrors returns true if there are any validation errors.
func (e *ValidationError) HasErrors() bool { return len(e.Errors) > 0 }

// NewValidationError creates a new ValidationError for the given entity.
func NewValidationError(kind ErrorKind, entity string) *ValidationError {
	return &ValidationError{
		Kind:   kind,
		Entity: entity,
		Errors: make([]string, 0),
		Err:    sentinelFor(kind),
	}
}

func sentinelFor(kind ErrorKind) error {
	switch kind {
	case KindShapeMismatch:
		return ErrShapeMismatch
	case KindEmptyInput:
		return ErrEmptyInput
	case KindNonBinaryValue:
		return ErrNonBinaryValue
	case KindInvalidTolerance:
		return ErrInvalidTolerance
	default:
		return nil
	}
}

// KindOf reports the ErrorKind carried by err, if any.
func KindOf(err error) (ErrorKind, bool) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve.Kind, true
	}
	return "", false
}
