/*
errors.go - Centralized error types for the CE engine

PURPOSE:
  All error types in one place for consistency and discoverability.
  Domain packages and the API layer wrap these errors with additional
  context rather than inventing their own.

ERROR CATEGORIES:
  1. Not-found errors - Referenced entities that don't exist
  2. Duplicate errors - Uniqueness violations (records, designations, accounts)
  3. Validation errors - Malformed or rejected input

USAGE:
  Callers branch with errors.Is():

    if errors.Is(err, ce.ErrDuplicateRecord) {
        // skip row, keep importing
    }

SEE ALSO:
  - calculator.go: Returns not-found errors from record lookups
  - store/sqlite: Maps constraint violations onto duplicate sentinels
  - transfer: Wraps duplicates with row context during import
*/
package ce

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrUserNotFound is returned when a referenced user doesn't exist.
	ErrUserNotFound = errors.New("user not found")

	// ErrRecordNotFound is returned when a referenced CE record doesn't exist.
	ErrRecordNotFound = errors.New("ce record not found")

	// ErrAssignmentNotFound is returned when a user doesn't hold the
	// referenced designation.
	ErrAssignmentNotFound = errors.New("designation assignment not found")

	// ErrFeedbackNotFound is returned when a referenced feedback entry
	// doesn't exist.
	ErrFeedbackNotFound = errors.New("feedback not found")

	// ErrDuplicateRecord is returned when a record matches an existing one
	// on user, title, completion date, and hours. Imports treat this as a
	// skip, not a failure.
	ErrDuplicateRecord = errors.New("duplicate ce record")

	// ErrDuplicateDesignation is returned when a user already holds the
	// designation being assigned.
	ErrDuplicateDesignation = errors.New("designation already assigned")

	// ErrDuplicateUsername is returned when the username is taken.
	ErrDuplicateUsername = errors.New("username already registered")

	// ErrDuplicateEmail is returned when the email is taken.
	ErrDuplicateEmail = errors.New("email already registered")

	// ErrInvalidInput is returned when input fails validation.
	ErrInvalidInput = errors.New("invalid input")

	// ErrInvalidCredentials is returned on a failed login. Deliberately
	// silent about whether the username or the password was wrong.
	ErrInvalidCredentials = errors.New("invalid username or password")

	// ErrUnauthorized is returned when a request lacks a valid identity
	// or the required role.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrTokenExpired is returned when a password reset token is past its
	// expiry window.
	ErrTokenExpired = errors.New("reset token expired")

	// ErrInvalidPeriod is returned when a period is malformed (end before start).
	ErrInvalidPeriod = errors.New("invalid period: end before start")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// DuplicateRecordError identifies which existing record an insert collided
// with. Unwraps to ErrDuplicateRecord.
type DuplicateRecordError struct {
	UserID      UserID
	Title       string
	CompletedOn TimePoint
	Hours       Amount
}

func (e *DuplicateRecordError) Error() string {
	return fmt.Sprintf("duplicate ce record: %q on %s (%v hours)",
		e.Title, e.CompletedOn, e.Hours.Value)
}

func (e *DuplicateRecordError) Unwrap() error {
	return ErrDuplicateRecord
}

// ValidationError names the field that failed validation.
// Unwraps to ErrInvalidInput.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error {
	return ErrInvalidInput
}

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsNotFound returns true if the error indicates a missing entity.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrUserNotFound) ||
		errors.Is(err, ErrRecordNotFound) ||
		errors.Is(err, ErrAssignmentNotFound) ||
		errors.Is(err, ErrFeedbackNotFound)
}

// IsDuplicate returns true if the error indicates a uniqueness violation.
func IsDuplicate(err error) bool {
	return errors.Is(err, ErrDuplicateRecord) ||
		errors.Is(err, ErrDuplicateDesignation) ||
		errors.Is(err, ErrDuplicateUsername) ||
		errors.Is(err, ErrDuplicateEmail)
}

// IsClientError returns true if the error is due to invalid client input
// rather than a server fault.
func IsClientError(err error) bool {
	return IsDuplicate(err) ||
		errors.Is(err, ErrInvalidInput) ||
		errors.Is(err, ErrInvalidCredentials) ||
		errors.Is(err, ErrTokenExpired) ||
		errors.Is(err, ErrInvalidPeriod)
}
