// Package domain defines the core domain models for RevGate.
package domain

import "time"

// RevocationRecord is the materialized fact "this TokenID is revoked".
//
// One record exists per revoked token, keyed by TokenID in both cache
// tiers. ExpiresAt is copied from the token at revoke time and is used
// only to compute the record's TTL, so an entry never outlives the
// token it describes.
type RevocationRecord struct {
	// TokenID is the revoked token's identifier.
	TokenID string `json:"token_id"`

	// RevokedAt is the revocation timestamp (Unix milliseconds).
	RevokedAt int64 `json:"revoked_at"`

	// ExpiresAt is the token's expiration timestamp (Unix milliseconds).
	ExpiresAt int64 `json:"expires_at"`

	// Reason is the revocation reason.
	Reason string `json:"reason"`
}

// NewRevocationRecord builds the record for a revoked token.
func NewRevocationRecord(t *Token) *RevocationRecord {
	return &RevocationRecord{
		TokenID:   t.ID,
		RevokedAt: t.RevokedAt,
		ExpiresAt: t.ExpiresAt,
		Reason:    t.RevokedReason,
	}
}

// TTL returns the remaining time-to-live at the current wall clock.
// Never negative: a record for an already-expired token gets 0.
func (r *RevocationRecord) TTL() time.Duration {
	remaining := r.ExpiresAt - time.Now().UnixMilli()
	if remaining < 0 {
		return 0
	}
	return time.Duration(remaining) * time.Millisecond
}

// IsStale reports whether the described token is already past expiry,
// meaning the record should have been auto-evicted by its tier.
func (r *RevocationRecord) IsStale() bool {
	return time.Now().UnixMilli() >= r.ExpiresAt
}

// Validate checks the record's required fields.
func (r *RevocationRecord) Validate() error {
	if r.TokenID == "" {
		return ErrMissingArgument.WithDetails("token_id is required")
	}
	if r.Reason == "" {
		return ErrReasonRequired
	}
	if r.ExpiresAt == 0 {
		return ErrMissingArgument.WithDetails("expires_at is required")
	}
	return nil
}

// RevokedAtTime returns RevokedAt as time.Time.
func (r *RevocationRecord) RevokedAtTime() time.Time {
	return time.UnixMilli(r.RevokedAt)
}

// ExpiresAtTime returns ExpiresAt as time.Time.
func (r *RevocationRecord) ExpiresAtTime() time.Time {
	return time.UnixMilli(r.ExpiresAt)
}
