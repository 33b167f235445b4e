// Package redis implements the shared revocation tier on Redis.
//
// Each revocation record is stored as a JSON string under
// "revgate:revoked:{token_id}" with a TTL equal to the revoked token's
// remaining lifetime, so Redis expires records on its own and the key
// space never outgrows the set of tokens that could still be presented.
package redis
