// Package errs defines the failure kinds shared by the repository, service
// and handler layers.  Every error returned by the reservation engine
// matches exactly one of the sentinels below through errors.Is.
package errs

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNotFound covers a missing tenant, resource or reservation and any
	// tenant mismatch.  Callers must not distinguish the two.
	ErrNotFound = errors.New("not found")
	// ErrValidation is returned for malformed input before storage is touched.
	ErrValidation = errors.New("validation failed")
	// ErrConflict is returned when the proposed interval overlaps an active
	// reservation or the storage layer rejects a duplicate.
	ErrConflict = errors.New("conflict")
	// ErrInvalidTransition is returned when an action is not permitted from
	// the reservation's current status.
	ErrInvalidTransition = errors.New("invalid transition")
)

// ValidationError names the offending field.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed: %s %s", e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// Invalid builds a ValidationError.
func Invalid(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

// ConflictError lists the active reservations that block an interval.
type ConflictError struct {
	ReservationIDs []uint64
}

func (e *ConflictError) Error() string {
	ids := make([]string, len(e.ReservationIDs))
	for i, id := range e.ReservationIDs {
		ids[i] = fmt.Sprint(id)
	}
	if len(ids) == 0 {
		return "conflict"
	}
	return "conflict with reservations " + strings.Join(ids, ",")
}

func (e *ConflictError) Unwrap() error { return ErrConflict }

// Kind returns the sentinel err matches, or nil for unclassified errors.
func Kind(err error) error {
	for _, k := range []error{ErrNotFound, ErrValidation, ErrConflict, ErrInvalidTransition} {
		if errors.Is(err, k) {
			return k
		}
	}
	return nil
}
