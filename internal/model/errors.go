package model

import (
	"errors"
	"fmt"
)

// Error kinds surfaced to callers. All are client-input errors.
var (
	ErrInvalidIdentifierFormat = errors.New("invalid identifier format")
	ErrFieldTooLong            = errors.New("field too long")
	ErrInvalidTimestampFormat  = errors.New("invalid timestamp format")
	ErrInvalidDueDate          = errors.New("invalid due date")
	ErrEntryNotFound           = errors.New("entry not found")
)

// ValidationError attaches the offending field and a readable reason to an error kind.
type ValidationError struct {
	Kind   error
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	switch {
	case e.Field != "" && e.Reason != "":
		return fmt.Sprintf("%s: %s: %s", e.Kind, e.Field, e.Reason)
	case e.Reason != "":
		return fmt.Sprintf("%s: %s", e.Kind, e.Reason)
	case e.Field != "":
		return fmt.Sprintf("%s: %s", e.Kind, e.Field)
	default:
		return e.Kind.Error()
	}
}

// Unwrap exposes the kind to errors.Is.
func (e *ValidationError) Unwrap() error {
	return e.Kind
}

// NewValidationError builds a ValidationError.
func NewValidationError(kind error, field, reason string) *ValidationError {
	return &ValidationError{Kind: kind, Field: field, Reason: reason}
}
