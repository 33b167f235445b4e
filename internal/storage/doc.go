// Package storage provides the dual-tier revocation store for RevGate.
//
// The store combines two tiers with different visibility and latency
// characteristics:
//
//   - Local tier: an in-process TTL cache for sub-microsecond lookups.
//     Its contents are private to one RevGate instance.
//   - Shared tier: a Redis-backed record set visible to every instance,
//     giving cluster-wide propagation of revocations.
//
// Writes go through the shared tier first; the local tier is only
// updated after the shared tier has acknowledged the record. Reads
// consult the local tier first and fall back to the shared tier on a
// miss, backfilling the local tier so repeated checks for the same
// token stay local. Entries in both tiers carry a TTL equal to the
// revoked token's remaining natural lifetime, so the store never holds
// a record for a token that could no longer pass validation anyway.
package storage
