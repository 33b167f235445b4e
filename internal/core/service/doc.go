// Package service provides the application services for RevGate.
//
// The write and read sides are separate handlers over the same
// revocation store:
//
//   - RevocationService: the Revoke command. Transitions the Token,
//     writes through the store, archives the decision, then publishes
//     the drained domain events.
//   - CheckService: the CheckRevocation query, fronted by a
//     short-lived result cache with an explicit bypass flag.
//   - StatsService: the GetStatistics query, a cached aggregate over
//     store counters with derived health flags.
//   - Issuer: the credential collaborator. Signs and parses JWTs and
//     reconstructs Token entities from verified claims.
//
// Services accept their dependencies as interfaces defined here and
// are safe for concurrent use.
package service
