// Package domain defines the core domain models for RevGate.
package domain

import (
	"errors"
	"fmt"
	"testing"
)

func TestDomainError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *DomainError
		expected string
	}{
		{
			name:     "error without details",
			err:      NewDomainError("RG-TEST-1000", "test message"),
			expected: "[RG-TEST-1000] test message",
		},
		{
			name:     "error with details",
			err:      NewDomainError("RG-TEST-1001", "test message").WithDetails("extra info"),
			expected: "[RG-TEST-1001] test message: extra info",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.expected {
				t.Errorf("Error() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestDomainError_Is(t *testing.T) {
	err1 := NewDomainError("RG-TEST-1000", "message 1")
	err2 := NewDomainError("RG-TEST-1000", "message 2") // Same code, different message
	err3 := NewDomainError("RG-TEST-1001", "message 1") // Different code

	if !errors.Is(err1, err2) {
		t.Error("errors.Is should return true for same error code")
	}
	if errors.Is(err1, err3) {
		t.Error("errors.Is should return false for different error code")
	}
	if errors.Is(err1, fmt.Errorf("some error")) {
		t.Error("errors.Is should return false for non-DomainError")
	}
}

func TestDomainError_Unwrap(t *testing.T) {
	cause := fmt.Errorf("underlying cause")
	err := NewDomainError("RG-TEST-1000", "wrapper").WithCause(cause)

	if !errors.Is(err, cause) {
		t.Error("errors.Is should find the wrapped cause")
	}
	if errors.Unwrap(err) != cause {
		t.Error("Unwrap should return the cause")
	}
}

func TestDomainError_Categories(t *testing.T) {
	tests := []struct {
		name  string
		err   error
		val   bool
		rule  bool
		infra bool
	}{
		{"validation", ErrReasonRequired, true, false, false},
		{"domain rule", ErrAlreadyRevoked, false, true, false},
		{"infrastructure", ErrSharedTierUnavailable, false, false, true},
		{"wrapped infrastructure", ErrStorage.WithCause(fmt.Errorf("dial tcp: refused")), false, false, true},
		{"plain error", fmt.Errorf("some error"), false, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsValidation(tt.err); got != tt.val {
				t.Errorf("IsValidation = %v, want %v", got, tt.val)
			}
			if got := IsDomainRule(tt.err); got != tt.rule {
				t.Errorf("IsDomainRule = %v, want %v", got, tt.rule)
			}
			if got := IsInfrastructure(tt.err); got != tt.infra {
				t.Errorf("IsInfrastructure = %v, want %v", got, tt.infra)
			}
		})
	}
}

func TestGetErrorCode(t *testing.T) {
	if code := GetErrorCode(ErrAlreadyRevoked); code != "RG-TOK-4090" {
		t.Errorf("GetErrorCode = %s, want RG-TOK-4090", code)
	}
	if code := GetErrorCode(fmt.Errorf("plain")); code != "" {
		t.Errorf("GetErrorCode for plain error = %s, want empty", code)
	}
	wrapped := fmt.Errorf("handler: %w", ErrTokenNotFound)
	if code := GetErrorCode(wrapped); code != "RG-TOK-4040" {
		t.Errorf("GetErrorCode for wrapped = %s, want RG-TOK-4040", code)
	}
}
