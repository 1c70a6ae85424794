/*
errors.go - Centralized error types for the invoice engine

PURPOSE:
  All error types in one place for consistency and discoverability.
  Callers classify failures with errors.Is / errors.As; the API layer
  maps them onto HTTP statuses.

ERROR CATEGORIES:
  1. Creation errors  - Invalid facts, rejected before anything persists
  2. Payment errors   - Violations of the one-shot paid transition
  3. Store errors     - Missing records

PROPAGATION POLICY:
  Every engine-level error is terminal for the single computation and is
  surfaced unchanged to the immediate caller. No silent defaults, no
  partial results, no retries (the engine is pure).
*/
package invoice

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrInvalidDate is returned when an invoice date cannot be parsed as a
	// calendar date or is missing. Future invoice dates are NOT an error;
	// DaysUntilDue simply grows.
	ErrInvalidDate = errors.New("invalid invoice date")

	// ErrInvalidAmount is returned when the principal is non-positive or
	// non-numeric. Rejected at creation, never reaches the engine.
	ErrInvalidAmount = errors.New("amount must be a positive number")

	// ErrAlreadyPaid is returned on an attempt to mark a paid invoice paid
	// again. The paid transition happens exactly once.
	ErrAlreadyPaid = errors.New("invoice is already marked as paid")

	// ErrNotFound is returned by stores when no record exists for an id.
	ErrNotFound = errors.New("invoice not found")
)

// MissingFieldError reports an empty required creation field.
type MissingFieldError struct {
	Field string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("missing required field: %s", e.Field)
}

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsClientError returns true if the error is due to invalid client input
// or a violated caller precondition.
func IsClientError(err error) bool {
	var missing *MissingFieldError
	return errors.Is(err, ErrInvalidDate) ||
		errors.Is(err, ErrInvalidAmount) ||
		errors.Is(err, ErrAlreadyPaid) ||
		errors.As(err, &missing)
}

// IsNotFound returns true if the error indicates a missing record.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
