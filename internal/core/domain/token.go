// Package domain defines the core domain models for RevGate.
package domain

import (
	"crypto/rand"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
)

// Token constraints.
const (
	MaxOwnerIDLength   = 128
	MaxOwnerNameLength = 256
	MaxReasonLength    = 256
	MaxIPAddressLength = 45 // IPv6 max length
	MaxUserAgentLength = 512

	// TokenIDPrefix is the prefix for token identifiers (jti claims).
	TokenIDPrefix = "rgtk-"

	// TokenIDLength is the total token id length: rgtk- (5) + ULID (26).
	TokenIDLength = 31

	// AccessTokenMaxLifetime is the lifetime cap for access tokens.
	AccessTokenMaxLifetime = 2 * time.Hour

	// RefreshTokenMaxLifetime is the lifetime cap for refresh tokens.
	RefreshTokenMaxLifetime = 90 * 24 * time.Hour
)

// TokenType distinguishes short-lived access tokens from long-lived
// refresh tokens.
type TokenType string

const (
	TokenTypeAccess  TokenType = "access"
	TokenTypeRefresh TokenType = "refresh"
)

// MaxLifetime returns the lifetime cap for the token type.
func (t TokenType) MaxLifetime() time.Duration {
	if t == TokenTypeRefresh {
		return RefreshTokenMaxLifetime
	}
	return AccessTokenMaxLifetime
}

// IsValid reports whether the token type is a known type.
func (t TokenType) IsValid() bool {
	return t == TokenTypeAccess || t == TokenTypeRefresh
}

// TokenStatus is the lifecycle state of a token.
//
// Transitions are one-way: Active -> Revoked and Active -> Expired.
// No transition originates from a terminal state.
type TokenStatus string

const (
	StatusActive  TokenStatus = "active"
	StatusRevoked TokenStatus = "revoked"
	StatusExpired TokenStatus = "expired"
)

// Token represents one issued credential.
//
// The credential string itself (signature, wire format) belongs to the
// issuance collaborator; the entity tracks only lifecycle state keyed by
// the opaque TokenID (the jti claim).
type Token struct {
	// ID is the unique token identifier. Format: rgtk-{ulid_lowercase}.
	ID string `json:"id"`

	// OwnerID identifies the principal the credential was issued to.
	OwnerID string `json:"owner_id"`

	// OwnerName is the display name of the owner at issuance.
	OwnerName string `json:"owner_name"`

	// Type is the credential type (access or refresh).
	Type TokenType `json:"type"`

	// IssuedAt is the issuance timestamp (Unix milliseconds).
	IssuedAt int64 `json:"issued_at"`

	// ExpiresAt is the absolute expiration timestamp (Unix milliseconds).
	ExpiresAt int64 `json:"expires_at"`

	// Status is the current lifecycle state.
	Status TokenStatus `json:"status"`

	// RevokedAt is the revocation timestamp (Unix milliseconds, 0 if not revoked).
	RevokedAt int64 `json:"revoked_at,omitempty"`

	// RevokedReason is non-empty if and only if Status is Revoked.
	RevokedReason string `json:"revoked_reason,omitempty"`

	// ClientIP is the client IP at issuance (optional).
	ClientIP string `json:"client_ip,omitempty"`

	// UserAgent is the client user agent at issuance (optional).
	UserAgent string `json:"user_agent,omitempty"`

	// events collects revocation facts during state transitions. The
	// command handler drains them after successful persistence.
	events []Event
}

// NewToken creates an Active token and validates all creation invariants.
//
// It fails with a validation error if an identity field is empty or
// expiresAt is not strictly in the future, and with a lifecycle rule
// error if the type-specific lifetime cap is exceeded.
func NewToken(ownerID, ownerName string, expiresAt time.Time, typ TokenType, clientIP, userAgent string) (*Token, error) {
	var violations []string
	if ownerID == "" {
		violations = append(violations, "owner_id is required")
	}
	if ownerName == "" {
		violations = append(violations, "owner_name is required")
	}
	if len(ownerID) > MaxOwnerIDLength {
		violations = append(violations, "owner_id exceeds 128 characters")
	}
	if len(ownerName) > MaxOwnerNameLength {
		violations = append(violations, "owner_name exceeds 256 characters")
	}
	if len(clientIP) > MaxIPAddressLength {
		violations = append(violations, "client_ip exceeds 45 characters")
	}
	if len(userAgent) > MaxUserAgentLength {
		violations = append(violations, "user_agent exceeds 512 characters")
	}
	if !typ.IsValid() {
		violations = append(violations, "type must be access or refresh")
	}
	if len(violations) > 0 {
		return nil, ErrInvalidArgument.WithDetails(strings.Join(violations, "; "))
	}

	now := time.Now()
	if !expiresAt.After(now) {
		return nil, ErrExpiryNotFuture
	}
	if expiresAt.Sub(now) > typ.MaxLifetime() {
		return nil, ErrLifetimeCap.WithDetails(
			"requested lifetime " + expiresAt.Sub(now).String() + " exceeds " + typ.MaxLifetime().String())
	}

	id, err := GenerateTokenID()
	if err != nil {
		return nil, err
	}

	return &Token{
		ID:        id,
		OwnerID:   ownerID,
		OwnerName: ownerName,
		Type:      typ,
		IssuedAt:  now.UnixMilli(),
		ExpiresAt: expiresAt.UnixMilli(),
		Status:    StatusActive,
		ClientIP:  clientIP,
		UserAgent: userAgent,
	}, nil
}

// GenerateTokenID generates a new token identifier using ULID.
// Format: rgtk-{ulid_lowercase}, 31 characters total.
func GenerateTokenID() (string, error) {
	entropy := ulid.Monotonic(rand.Reader, 0)
	id, err := ulid.New(ulid.Timestamp(time.Now()), entropy)
	if err != nil {
		return "", ErrInternal.WithCause(err)
	}
	return TokenIDPrefix + strings.ToLower(id.String()), nil
}

// IsValidTokenID checks if a string is a valid token ID format.
// It normalizes the ID to lowercase before validation.
func IsValidTokenID(id string) bool {
	id = strings.ToLower(id)
	if !strings.HasPrefix(id, TokenIDPrefix) {
		return false
	}
	if len(id) != TokenIDLength {
		return false
	}
	_, err := ulid.Parse(strings.ToUpper(id[len(TokenIDPrefix):]))
	return err == nil
}

// NormalizeTokenID normalizes a token ID to lowercase.
// Returns empty string if the ID is invalid.
func NormalizeTokenID(id string) string {
	normalized := strings.ToLower(id)
	if !IsValidTokenID(normalized) {
		return ""
	}
	return normalized
}

// Revoke transitions the token from Active to Revoked.
//
// It fails with a validation error if reason is empty, and with a
// lifecycle rule error if the token is already revoked or already past
// its expiry (revoking an expired token is rejected, not silently
// accepted). On success it records the revocation fact as a domain
// event for the caller to drain after persistence.
func (t *Token) Revoke(reason string) error {
	if strings.TrimSpace(reason) == "" {
		return ErrReasonRequired
	}
	if len(reason) > MaxReasonLength {
		return ErrInvalidArgument.WithDetails("reason exceeds 256 characters")
	}
	if t.Status == StatusRevoked {
		return ErrAlreadyRevoked
	}
	if t.Status == StatusExpired || t.pastExpiry() {
		return ErrRevokeExpired
	}

	t.Status = StatusRevoked
	t.RevokedAt = time.Now().UnixMilli()
	t.RevokedReason = reason
	t.events = append(t.events, NewTokenRevokedEvent(t))
	return nil
}

// MarkExpired transitions the token from Active to Expired.
//
// It fails if ExpiresAt is still in the future. It is a no-op on
// terminal states: Revoked takes precedence and is never overwritten
// by an expiry sweep.
func (t *Token) MarkExpired() error {
	if t.Status == StatusRevoked || t.Status == StatusExpired {
		return nil
	}
	if !t.pastExpiry() {
		return ErrNotYetExpired
	}
	t.Status = StatusExpired
	return nil
}

// IsValid reports whether the token is Active and not yet past expiry.
func (t *Token) IsValid() bool {
	return t.Status == StatusActive && !t.pastExpiry()
}

// pastExpiry reports whether the wall clock has passed ExpiresAt.
func (t *Token) pastExpiry() bool {
	return time.Now().UnixMilli() >= t.ExpiresAt
}

// RemainingLifetime returns the time until expiry, or 0 if already past.
func (t *Token) RemainingLifetime() time.Duration {
	remaining := t.ExpiresAt - time.Now().UnixMilli()
	if remaining < 0 {
		return 0
	}
	return time.Duration(remaining) * time.Millisecond
}

// Events returns the domain events collected so far.
func (t *Token) Events() []Event {
	return t.events
}

// ClearEvents discards collected events after they have been dispatched.
func (t *Token) ClearEvents() {
	t.events = nil
}

// Clone creates a deep copy of the token. Collected events are not copied.
func (t *Token) Clone() *Token {
	clone := *t
	clone.events = nil
	return &clone
}

// IssuedAtTime returns IssuedAt as time.Time.
func (t *Token) IssuedAtTime() time.Time {
	return time.UnixMilli(t.IssuedAt)
}

// ExpiresAtTime returns ExpiresAt as time.Time.
func (t *Token) ExpiresAtTime() time.Time {
	return time.UnixMilli(t.ExpiresAt)
}

// RevokedAtTime returns RevokedAt as time.Time, zero if not revoked.
func (t *Token) RevokedAtTime() time.Time {
	if t.RevokedAt == 0 {
		return time.Time{}
	}
	return time.UnixMilli(t.RevokedAt)
}

// MaskTokenID masks a token ID for safe logging.
// Example: rgtk-01j...9fq
func MaskTokenID(id string) string {
	if len(id) < 12 || !strings.HasPrefix(id, TokenIDPrefix) {
		return "***REDACTED***"
	}
	body := id[len(TokenIDPrefix):]
	return TokenIDPrefix + body[:3] + "..." + body[len(body)-3:]
}
