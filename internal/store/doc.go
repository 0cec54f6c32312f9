// Package store provides the Redis-backed persistence layer for account
// recovery-key records and their hints.
//
// # Design
//
// One versioned, binary-encoded record per account under an account-keyed
// Redis key; the hint lives under a sibling key so hint reads never touch
// key material. The enabled flag sits at a fixed byte offset so Lua scripts
// can test and flip it in place. Create uses SET NX, which is what makes the
// at-most-one-record-per-account guarantee hold under concurrent creates:
// exactly one writer wins, every loser observes a conflict.
//
// # Architecture boundaries
//
// This package owns persistence and single-record atomicity. It does NOT
// gate sessions, rate limit, audit, or notify — those responsibilities
// belong to the root package.
//
// # What this package must NOT do
//
//   - Import the recoverykey root package or any sibling internal package.
//   - Decode, inspect, or log recovery data payloads.
//   - Use non-constant-time comparisons when matching recovery key ids.
package store
