/*
errors.go - Centralized error types for the roster engine

PURPOSE:
  All domain error types in one place for consistency and discoverability.
  Outer layers (API, CLI) classify errors with the helpers at the bottom
  instead of matching strings.

ERROR CATEGORIES:
  1. Input errors  - Rejected at the boundary, prior state unchanged
  2. Empty results - Reported conditions, not failures (ErrNoCandidates)
  3. Guard errors  - Destructive operations missing explicit confirmation
  4. Not-found     - Referenced soldier/transaction does not exist

USAGE:
  if errors.Is(err, engine.ErrNoCandidates) {
      // zero-result signal to surface to the user
  }

SEE ALSO:
  - extraduty.go, timebank.go: producers of these errors
  - api/handlers.go: HTTP status mapping
*/
package engine

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrInvalidDate is returned for malformed or unparseable dates.
	ErrInvalidDate = errors.New("invalid date")

	// ErrEmptyDescription is returned when a time-bank transaction is
	// recorded without a reason.
	ErrEmptyDescription = errors.New("description is required")

	// ErrInvalidAmount is returned when a time-bank amount is negative.
	ErrInvalidAmount = errors.New("amount must be positive")

	// ErrInvalidTransactionType is returned for types other than
	// CREDIT/DEBIT.
	ErrInvalidTransactionType = errors.New("invalid transaction type")

	// ErrInvalidCount is returned when an extra-duty preview asks for a
	// non-positive number of soldiers.
	ErrInvalidCount = errors.New("count must be positive")

	// ErrNoCandidates signals that an extra-duty preview matched zero
	// soldiers. A reported condition, not a failure.
	ErrNoCandidates = errors.New("no available soldiers for extra duty")

	// ErrEmptyPreview guards Confirm against an empty selection.
	ErrEmptyPreview = errors.New("extra-duty preview is empty")

	// ErrConfirmationRequired is returned when a destructive operation is
	// attempted without explicit confirmation.
	ErrConfirmationRequired = errors.New("explicit confirmation required")

	// ErrSoldierNotFound is returned when a referenced soldier doesn't exist.
	ErrSoldierNotFound = errors.New("soldier not found")

	// ErrRosterNotFound is returned when a referenced roster doesn't exist.
	ErrRosterNotFound = errors.New("roster not found")

	// ErrTransactionNotFound is returned when a ledger entry id is unknown.
	ErrTransactionNotFound = errors.New("transaction not found")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// NotFoundError identifies which record was missing.
type NotFoundError struct {
	Kind string // "soldier", "roster", "transaction"
	ID   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Kind, e.ID)
}

func (e *NotFoundError) Unwrap() error {
	switch e.Kind {
	case "soldier":
		return ErrSoldierNotFound
	case "roster":
		return ErrRosterNotFound
	case "transaction":
		return ErrTransactionNotFound
	}
	return nil
}

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsClientError reports whether the error is due to invalid caller input.
func IsClientError(err error) bool {
	return errors.Is(err, ErrInvalidDate) ||
		errors.Is(err, ErrEmptyDescription) ||
		errors.Is(err, ErrInvalidAmount) ||
		errors.Is(err, ErrInvalidTransactionType) ||
		errors.Is(err, ErrInvalidCount) ||
		errors.Is(err, ErrEmptyPreview) ||
		errors.Is(err, ErrConfirmationRequired)
}

// IsNotFound reports whether the error indicates a missing record.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrSoldierNotFound) ||
		errors.Is(err, ErrRosterNotFound) ||
		errors.Is(err, ErrTransactionNotFound)
}
