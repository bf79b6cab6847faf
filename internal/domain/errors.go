package domain

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"
)

// ErrNotFound is returned by repo and service functions when the requested
// resource does not exist or is not visible to the caller.
// Handlers should map this to HTTP 404.
var ErrNotFound = errors.New("not found")

// ErrValidation is returned when input fails business rule validation
// (e.g. missing required field, end date before start date).
// Handlers should map this to HTTP 422 Unprocessable Entity.
var ErrValidation = errors.New("validation failed")

// ErrUnauthenticated is returned when an operation needs an identity and none is present.
var ErrUnauthenticated = errors.New("auth session missing")

// ErrAccessDenied is returned when a private trip is read by someone other than its owner.
var ErrAccessDenied = errors.New("access denied")

// ErrConflict is returned when a write collides with an existing row.
var ErrConflict = errors.New("conflict")

// ErrConfig marks a missing or malformed configuration value.
var ErrConfig = errors.New("missing configuration")

// ValidationError reports field-level validation failures keyed by JSON field name.
// It matches ErrValidation under errors.Is.
type ValidationError struct {
	Fields map[string]string
}

// NewValidationError builds a ValidationError for a single field.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Fields: map[string]string{field: message}}
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return ErrValidation.Error()
	}
	parts := make([]string, 0, len(e.Fields))
	for _, k := range slices.Sorted(maps.Keys(e.Fields)) {
		parts = append(parts, fmt.Sprintf("%s %s", k, e.Fields[k]))
	}
	return ErrValidation.Error() + ": " + strings.Join(parts, "; ")
}

// Is reports ErrValidation as a match.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}
