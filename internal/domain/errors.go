package domain

import "fmt"

// ValidationError reports a missing or invalid field on a mutation request.
type ValidationError struct {
	Field string
	Msg   string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return "validation failed: " + e.Msg
	}
	return fmt.Sprintf("validation failed: %s %s", e.Field, e.Msg)
}

// NewValidationError builds a ValidationError with a formatted message.
func NewValidationError(field, format string, args ...any) *ValidationError {
	return &ValidationError{Field: field, Msg: fmt.Sprintf(format, args...)}
}

// ReferenceError reports an id that does not resolve to an existing record.
type ReferenceError struct {
	Entity string
	ID     string
}

func (e *ReferenceError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Entity, e.ID)
}

// StaleReferenceWarning describes a record excluded from a derived view because
// one of its references could not be resolved. It is never fatal.
type StaleReferenceWarning struct {
	Entity string // "task" or "dependency"
	ID     string
	Ref    string
	Reason string
}

func (w StaleReferenceWarning) Error() string {
	return fmt.Sprintf("stale %s %s -> %s: %s", w.Entity, w.ID, w.Ref, w.Reason)
}

// StoreError wraps a failure returned by the persistence layer.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store %s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error { return e.Err }
