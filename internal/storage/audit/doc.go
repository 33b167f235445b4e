// Package audit provides a durable archive of revocation decisions.
//
// The live revocation store forgets a record once the underlying token
// expires. The archive keeps an append-only, optionally encrypted copy
// of every revocation in a local Badger database so operators can
// answer "was this token revoked, and why" long after the token itself
// is gone.
//
// Archive writes are best effort from the caller's point of view: a
// revocation that cannot be archived is still a successful revocation.
package audit
