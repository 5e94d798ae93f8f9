// Package domain defines the core domain models for SecureSnap.
package domain

import (
	"errors"
	"fmt"
)

// DomainError represents a business domain error with a structured error code.
type DomainError struct {
	Code    string // Error code (e.g., "SS-MSG-4040")
	Message string // Human-readable message
	Details string // Optional additional details
	Cause   error  // Underlying error (if any)
}

// Error implements the error interface.
func (e *DomainError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("[%s] %s: %s", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error for errors.Unwrap() support.
func (e *DomainError) Unwrap() error {
	return e.Cause
}

// Is implements errors.Is() support for error comparison.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// NewDomainError creates a new DomainError with the given code and message.
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// WithDetails returns a copy of the error with additional details.
func (e *DomainError) WithDetails(details string) *DomainError {
	return &DomainError{
		Code:    e.Code,
		Message: e.Message,
		Details: details,
		Cause:   e.Cause,
	}
}

// WithCause returns a copy of the error wrapping the given cause.
func (e *DomainError) WithCause(cause error) *DomainError {
	return &DomainError{
		Code:    e.Code,
		Message: e.Message,
		Details: e.Details,
		Cause:   cause,
	}
}

// IsDomainError checks if an error is a DomainError with the given code.
// If code is empty, it only checks if the error is a DomainError.
func IsDomainError(err error, code string) bool {
	var de *DomainError
	if errors.As(err, &de) {
		if code == "" {
			return true
		}
		return de.Code == code
	}
	return false
}

// GetErrorCode extracts the error code from an error if it's a DomainError.
func GetErrorCode(err error) string {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Code
	}
	return ""
}

// ============================================================================
// Message Errors (MSG)
// ============================================================================

var (
	// ErrMessageNotFound indicates the message does not exist, was already
	// read, was deleted, or has expired. These cases are indistinguishable
	// to callers.
	ErrMessageNotFound = NewDomainError("SS-MSG-4040", "message not found")

	// ErrMessageValidation indicates message data validation failed.
	ErrMessageValidation = NewDomainError("SS-MSG-4001", "message validation failed")

	// ErrExpiryOutOfRange indicates the requested expiry is non-positive or
	// exceeds the configured maximum.
	ErrExpiryOutOfRange = NewDomainError("SS-MSG-4002", "expiry out of range")

	// ErrMessageConflict indicates the message ID already exists in the
	// record store. IDs are never reused, so this signals a store-level
	// anomaly rather than a client mistake.
	ErrMessageConflict = NewDomainError("SS-MSG-4090", "message id conflict")

	// ErrMarkerDivergence indicates the record store and the existence
	// cache disagree about a message. It is handled internally by treating
	// the message as not found and is never surfaced to callers.
	ErrMarkerDivergence = NewDomainError("SS-MSG-5002", "store divergence detected")
)

// ============================================================================
// System Errors (SYS)
// ============================================================================

var (
	// ErrInternalServer indicates an internal server error.
	ErrInternalServer = NewDomainError("SS-SYS-5000", "internal server error")

	// ErrStorageError indicates a record store or cache failure.
	ErrStorageError = NewDomainError("SS-SYS-5001", "storage error")

	// ErrBadRequest indicates a malformed request.
	ErrBadRequest = NewDomainError("SS-SYS-4000", "bad request")

	// ErrRateLimited indicates too many requests.
	ErrRateLimited = NewDomainError("SS-SYS-4290", "too many requests")
)

// ============================================================================
// Argument Errors (ARG)
// ============================================================================

var (
	// ErrMissingArgument indicates a required argument is missing.
	ErrMissingArgument = NewDomainError("SS-ARG-1002", "missing required argument")
)
