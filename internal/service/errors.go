// Package service holds the booking domain logic: request validation,
// availability checking and the booking lifecycle.  It sits between
// HTTP handlers and the repositories and works against narrow store
// interfaces so the logic is testable without a database.
package service

import "fmt"

// ValidationError reports a request the caller can fix: a past date,
// an empty selection, a guest count over capacity, an illegal status
// transition.  Handlers translate it into HTTP 400.
type ValidationError struct {
	Field string
	Msg   string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Msg
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Msg)
}

// Invalid builds a ValidationError for a field.
func Invalid(field, format string, args ...any) error {
	return &ValidationError{Field: field, Msg: fmt.Sprintf(format, args...)}
}
