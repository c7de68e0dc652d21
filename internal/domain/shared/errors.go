// Package shared contains common domain types, errors, and events that are
// used across all domain packages. This package has zero external dependencies.
package shared

import (
	"errors"
	"fmt"
)

// Base domain errors that can be used for error checking with errors.Is().
var (
	// Entity errors
	ErrNotFound      = errors.New("entity not found")
	ErrAlreadyExists = errors.New("entity already exists")

	// Validation errors
	ErrValidation      = errors.New("validation error")
	ErrInvalidInput    = errors.New("invalid input")
	ErrEmptyValue      = errors.New("value cannot be empty")
	ErrNegativeValue   = errors.New("value cannot be negative")
	ErrValueOutOfRange = errors.New("value out of range")
	ErrInvalidFormat   = errors.New("invalid format")

	// Stored data errors
	ErrMalformedData = errors.New("malformed stored data")

	// State errors
	ErrInvalidState = errors.New("invalid state")
)

// DomainError represents a domain-specific error with context.
type DomainError struct {
	Domain  string // e.g., "progress", "achievement", "report"
	Op      string // Operation that failed, e.g., "Record", "Recompute"
	Kind    error  // Base error type for errors.Is() checking
	Message string // Human-readable message
	Err     error  // Underlying error (optional)
}

// Error implements the error interface.
func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s.%s: %s: %v", e.Domain, e.Op, e.Message, e.Err)
	}
	return fmt.Sprintf("%s.%s: %s", e.Domain, e.Op, e.Message)
}

// Unwrap returns the underlying error for errors.Unwrap().
func (e *DomainError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return e.Kind
}

// Is implements errors.Is() matching.
func (e *DomainError) Is(target error) bool {
	if e.Kind != nil && errors.Is(e.Kind, target) {
		return true
	}
	if e.Err != nil && errors.Is(e.Err, target) {
		return true
	}
	return false
}

// NewDomainError creates a new domain error.
func NewDomainError(domain, op string, kind error, message string) *DomainError {
	return &DomainError{
		Domain:  domain,
		Op:      op,
		Kind:    kind,
		Message: message,
	}
}

// WrapError wraps an existing error with domain context.
func WrapError(domain, op string, kind error, message string, err error) *DomainError {
	return &DomainError{
		Domain:  domain,
		Op:      op,
		Kind:    kind,
		Message: message,
		Err:     err,
	}
}

// Progress domain errors
var (
	ErrSessionEmpty      = NewDomainError("progress", "Validate", ErrEmptyValue, "session id is required")
	ErrInvalidDateFormat = NewDomainError("progress", "ParseDate", ErrInvalidFormat, "date must be YYYY-MM-DD")
	ErrNegativeIndex     = NewDomainError("progress", "Validate", ErrNegativeValue, "content index must be non-negative")
	ErrEmptyTerm         = NewDomainError("progress", "Validate", ErrEmptyValue, "term name is required")
	ErrRecordNotFound    = NewDomainError("progress", "Get", ErrNotFound, "progress record not found")
	ErrSnapshotNotFound  = NewDomainError("progress", "GetSnapshot", ErrNotFound, "stats snapshot not found")
	ErrMalformedRecord   = NewDomainError("progress", "Decode", ErrMalformedData, "stored record payload cannot be parsed")
)

// Report domain errors
var (
	ErrInvalidRange = NewDomainError("report", "Validate", ErrValueOutOfRange, "start date is after end date")
)

// IsNotFound checks if the error is a "not found" error.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsValidation checks if the error is a validation error.
func IsValidation(err error) bool {
	return errors.Is(err, ErrValidation) ||
		errors.Is(err, ErrInvalidInput) ||
		errors.Is(err, ErrEmptyValue) ||
		errors.Is(err, ErrNegativeValue) ||
		errors.Is(err, ErrValueOutOfRange) ||
		errors.Is(err, ErrInvalidFormat)
}

// IsMalformedData checks if the error indicates an unreadable stored payload.
// Aggregations treat such records as empty rather than failing outright.
func IsMalformedData(err error) bool {
	return errors.Is(err, ErrMalformedData)
}
