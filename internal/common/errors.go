// Package common provides shared utilities and types used across the application.
package common

import (
	"errors"
	"fmt"
)

// Error kinds. Every failure surfaced by the catalog engine unwraps to
// exactly one of these sentinels so callers can classify with errors.Is.
var (
	// ErrValidation indicates malformed input: unknown catalog type, bad
	// name length, cross-type parent, query too short.
	ErrValidation = errors.New("validation failed")
	// ErrNotFound indicates the requested item does not exist or is not
	// visible to the caller.
	ErrNotFound = errors.New("not found")
	// ErrForbidden indicates the item exists but may not be mutated by the
	// caller: it is a system item or owned by someone else.
	ErrForbidden = errors.New("forbidden")
	// ErrConflict indicates a uniqueness violation, e.g. a duplicate slug
	// within the same catalog type and parent.
	ErrConflict = errors.New("conflict")
	// ErrInternal indicates a storage or invariant failure. Details are
	// logged, not surfaced.
	ErrInternal = errors.New("internal error")
)

// ValidationError carries field-level detail for a rejected input.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("%v: %s", ErrValidation, e.Reason)
	}
	return fmt.Sprintf("%v: %s: %s", ErrValidation, e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

// NewValidationError creates a field-level validation error.
func NewValidationError(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

// NotFound wraps ErrNotFound with the missing item's identifier.
func NotFound(id string) error {
	return fmt.Errorf("%w: catalog item %s", ErrNotFound, id)
}

// Forbidden wraps ErrForbidden with a reason.
func Forbidden(reason string) error {
	return fmt.Errorf("%w: %s", ErrForbidden, reason)
}

// Conflict wraps ErrConflict with a reason.
func Conflict(reason string) error {
	return fmt.Errorf("%w: %s", ErrConflict, reason)
}

// Internal wraps a storage failure so callers see a generic internal error
// while the cause stays available for logging via Unwrap.
func Internal(err error) error {
	return fmt.Errorf("%w: %v", ErrInternal, err)
}

// Kind maps an error to its sentinel, or ErrInternal when it carries none.
// Useful at the CLI boundary for choosing an outward presentation.
func Kind(err error) error {
	for _, kind := range []error{ErrValidation, ErrNotFound, ErrForbidden, ErrConflict, ErrInternal} {
		if errors.Is(err, kind) {
			return kind
		}
	}
	return ErrInternal
}
