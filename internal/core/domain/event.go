// Package domain defines the core domain models for RevGate.
package domain

import "time"

// Event names.
const (
	EventTokenRevoked = "token.revoked"
)

// Event is a domain event raised during a state transition.
//
// Events are appended to the entity's internal list while the transition
// executes and are published by the command handler only after the
// corresponding store write succeeds, then cleared. There is no implicit
// event bus; collect/publish/clear is an explicit protocol.
type Event struct {
	// Name identifies the event kind (e.g., "token.revoked").
	Name string `json:"name"`

	// TokenID is the subject token.
	TokenID string `json:"token_id"`

	// OwnerID is the token owner at the time of the event.
	OwnerID string `json:"owner_id"`

	// Reason carries the revocation reason for token.revoked events.
	Reason string `json:"reason,omitempty"`

	// OccurredAt is the event timestamp (Unix milliseconds).
	OccurredAt int64 `json:"occurred_at"`
}

// NewTokenRevokedEvent builds the revocation fact for a just-revoked token.
func NewTokenRevokedEvent(t *Token) Event {
	return Event{
		Name:       EventTokenRevoked,
		TokenID:    t.ID,
		OwnerID:    t.OwnerID,
		Reason:     t.RevokedReason,
		OccurredAt: time.Now().UnixMilli(),
	}
}
