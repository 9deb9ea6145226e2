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
	// ErrStaleUpdate marks a status update whose sequence marker is not newer
	// than the one already recorded. Stale updates are discarded, never applied.
	ErrStaleUpdate = errors.New("stale update")
	// ErrTimeout marks a bot forced to a terminal state by the watchdog.
	ErrTimeout = errors.New("watchdog timeout")
	// ErrConfiguration marks missing credentials or templates. Surfaced to the
	// user, never retried.
	ErrConfiguration = errors.New("configuration error")
)

// ExternalError wraps a failure from an external collaborator (recording
// service, text generation, social platform) with a retryability class.
type ExternalError struct {
	Op        string
	Err       error
	Transient bool
}

func (e *ExternalError) Error() string {
	kind := "permanent"
	if e.Transient {
		kind = "transient"
	}
	return fmt.Sprintf("%s: %s external error: %v", e.Op, kind, e.Err)
}

func (e *ExternalError) Unwrap() error { return e.Err }

// NewTransientError wraps err as a retryable external failure.
func NewTransientError(op string, err error) *ExternalError {
	return &ExternalError{Op: op, Err: err, Transient: true}
}

// NewPermanentError wraps err as a non-retryable external failure.
func NewPermanentError(op string, err error) *ExternalError {
	return &ExternalError{Op: op, Err: err, Transient: false}
}

// IsTransient reports whether err is an external error worth retrying.
func IsTransient(err error) bool {
	var e *ExternalError
	return errors.As(err, &e) && e.Transient
}

// FieldError describes a validation error for a specific field.
type FieldError struct {
	Field   string
	Message string
}

// ValidationError contains a list of field-level validation errors.
type ValidationError struct {
	Errors []FieldError
}

func (e *ValidationError) Error() string {
	if len(e.Errors) == 1 {
		return fmt.Sprintf("validation: %s: %s", e.Errors[0].Field, e.Errors[0].Message)
	}
	return fmt.Sprintf("validation: %d errors", len(e.Errors))
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// NewValidationError creates a ValidationError for a single field.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{
		Errors: []FieldError{{Field: field, Message: message}},
	}
}
