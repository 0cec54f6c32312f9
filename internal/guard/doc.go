// Package guard provides the Redis-backed abuse-rate gate for
// recovery-key operations reachable without a trusted session.
//
// # Window semantics
//
// Fixed-window counters: INCR + conditional EXPIRE on first hit, one
// counter per (keyspace, operation tag) tuple. The keyspace is the
// identifier being probed — an email for anonymous lookups, an account id
// for the verify path. Key prefix: arg:.
//
// # What this package must NOT do
//
//   - Implement per-operation policy (which paths are guarded is decided
//     by the root package).
//   - Be imported outside the recoverykey module.
package guard
