// Package recoverykey implements the account-recovery-key subsystem of an
// authentication service: the state machine that lets a user regain access to
// their encrypted data key (kB) after a forgotten password, without weakening
// the account's security posture.
//
// The package is designed for concurrent server workloads: Service methods are
// safe to call from multiple goroutines after initialization through
// [Builder.Build].
//
// # Architecture boundaries
//
// recoverykey is the public surface. It exposes [Service], [Builder],
// [Config], the error taxonomy, and value types (AuditEvent, AccountRecord,
// Session). Storage and abuse-rate limiting live under internal/ and are
// never exported. Collaborators — the account directory, the transactional
// mailer, the audit sink — are consumed through narrow interfaces so test
// doubles substitute without a global registry.
//
// # What this package must NOT do
//
//   - Decrypt, inspect, or return recovery key material outside of
//     [Service.FetchRecoveryData]; recoveryData is an opaque client-encrypted
//     blob end to end.
//   - Let a notification or audit-sink failure change the outcome of a
//     committed state transition (best-effort side effects are logged and
//     swallowed).
//   - Expose Redis clients, key layouts, or record encodings in its public
//     API.
//
// # Consistency contract
//
// For a given account at most one enabled recovery key exists at any
// observation point. The invariant is enforced by the store's uniqueness
// guarantee on the account key plus a single bounded create retry. This is
// optimistic concurrency, not a per-account lock: concurrent creates race and
// the loser observes a conflict.
package recoverykey
