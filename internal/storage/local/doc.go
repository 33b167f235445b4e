// Package local provides the process-local revocation cache tier.
//
// It is a TTL-bounded in-memory map of revoked token identifiers,
// giving sub-millisecond lookups for the request-time validation gate.
// It is not shared across instances; the shared tier is authoritative.
package local
