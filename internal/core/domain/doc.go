// Package domain defines the core domain models for RevGate.
//
// Domain models are pure value objects and entities without any
// IO dependencies or framework coupling. This package contains:
//
//   - Token: issued credential entity with its lifecycle state machine
//   - RevocationRecord: the materialized "this token is revoked" fact
//   - Event: domain events collected during state transitions
//   - Errors: domain-specific error definitions
//
// Tokens transition one way only: Active -> Revoked or Active -> Expired.
// Terminal states are never left.
package domain
