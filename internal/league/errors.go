package league

import (
	"errors"
	"strings"

	"f1league-app/internal/store"
)

var (
	ErrForbidden       = errors.New("admin role required")
	ErrValidation      = errors.New("validation failed")
	ErrNotFound        = errors.New("not found")
	ErrRosterFull      = errors.New("roster is full")
	ErrCompetitorTaken = store.ErrCompetitorTaken
)

// ValidationError describes one rejected input field.
type ValidationError struct {
	Field  string
	Reason string
}

func (e ValidationError) Error() string {
	return e.Field + ": " + e.Reason
}

// ValidationErrors collects every problem found in one request.
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	parts := make([]string, len(e))
	for i, v := range e {
		parts[i] = v.Error()
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func (e ValidationErrors) Unwrap() error { return ErrValidation }

func invalid(field, reason string) error {
	return ValidationErrors{{Field: field, Reason: reason}}
}
