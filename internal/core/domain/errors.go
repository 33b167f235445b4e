// Package domain defines the core domain models for RevGate.
package domain

import (
	"errors"
	"fmt"
	"strings"
)

// DomainError represents a business domain error with a structured error code.
//
// Codes are grouped by category:
//
//	RG-VAL-xxxx  malformed input (validation errors)
//	RG-TOK-xxxx  token lifecycle rule violations
//	RG-INF-xxxx  infrastructure failures (cache tier unreachable, storage)
type DomainError struct {
	Code    string // Error code (e.g., "RG-TOK-4090")
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

// IsValidation reports whether err is a validation error (RG-VAL-*).
// Validation errors are surfaced synchronously and never partially applied.
func IsValidation(err error) bool {
	return strings.HasPrefix(GetErrorCode(err), "RG-VAL-")
}

// IsDomainRule reports whether err is a lifecycle rule violation (RG-TOK-*).
func IsDomainRule(err error) bool {
	return strings.HasPrefix(GetErrorCode(err), "RG-TOK-")
}

// IsInfrastructure reports whether err is an infrastructure failure (RG-INF-*).
func IsInfrastructure(err error) bool {
	return strings.HasPrefix(GetErrorCode(err), "RG-INF-")
}

// ============================================================================
// Validation Errors (VAL)
// ============================================================================

var (
	// ErrInvalidArgument indicates an invalid argument.
	ErrInvalidArgument = NewDomainError("RG-VAL-4000", "invalid argument")

	// ErrMissingArgument indicates a required argument is missing.
	ErrMissingArgument = NewDomainError("RG-VAL-4002", "missing required argument")

	// ErrReasonRequired indicates a revocation was attempted without a reason.
	ErrReasonRequired = NewDomainError("RG-VAL-4003", "revocation reason required")

	// ErrExpiryNotFuture indicates ExpiresAt is not strictly in the future.
	ErrExpiryNotFuture = NewDomainError("RG-VAL-4004", "expiry must be in the future")

	// ErrTokenIDMalformed indicates the token identifier format is invalid.
	ErrTokenIDMalformed = NewDomainError("RG-VAL-4005", "malformed token id")
)

// ============================================================================
// Token Lifecycle Errors (TOK)
// ============================================================================

var (
	// ErrTokenNotFound indicates the requested token was not found.
	ErrTokenNotFound = NewDomainError("RG-TOK-4040", "token not found")

	// ErrCredentialInvalid indicates the presented credential is invalid.
	ErrCredentialInvalid = NewDomainError("RG-TOK-4010", "invalid credential")

	// ErrCredentialExpired indicates the presented credential has expired.
	ErrCredentialExpired = NewDomainError("RG-TOK-4011", "credential expired")

	// ErrAlreadyRevoked indicates the token is already in the Revoked state.
	ErrAlreadyRevoked = NewDomainError("RG-TOK-4090", "token already revoked")

	// ErrRevokeExpired indicates a revocation of an already-expired token.
	ErrRevokeExpired = NewDomainError("RG-TOK-4091", "cannot revoke expired token")

	// ErrNotYetExpired indicates MarkExpired was called on a live token.
	ErrNotYetExpired = NewDomainError("RG-TOK-4092", "token has not expired")

	// ErrLifetimeCap indicates the type-specific lifetime cap was exceeded.
	ErrLifetimeCap = NewDomainError("RG-TOK-4001", "token lifetime exceeds cap")
)

// ============================================================================
// Infrastructure Errors (INF)
// ============================================================================

var (
	// ErrInternal indicates an internal error.
	ErrInternal = NewDomainError("RG-INF-5000", "internal error")

	// ErrStorage indicates a storage layer error.
	ErrStorage = NewDomainError("RG-INF-5001", "storage error")

	// ErrSharedTierUnavailable indicates the shared cache tier is unreachable.
	ErrSharedTierUnavailable = NewDomainError("RG-INF-5030", "shared revocation tier unavailable")
)
