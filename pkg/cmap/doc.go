// Package cmap provides a concurrent-safe sharded map keyed by string.
//
// It uses murmur3 hashing to spread keys across independently locked
// shards, reducing contention under the many short-lived, concurrent
// lookups the revocation path produces.
package cmap
