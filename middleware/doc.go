// Package middleware exposes HTTP middleware adapters that resolve the
// caller's session before recovery-key handlers run.
//
// # Guards
//
//   - [ResolveSession] — resolves the session, anonymous callers pass through.
//   - [RequireSession] — rejects anonymous callers with 401.
//   - [RequireVerified] — additionally rejects unverified sessions with 403.
//
// Each guard calls a caller-supplied [SessionResolver], injects the result
// into the request context, and hands off to the wrapped handler. Handlers
// read it back with [SessionFromContext].
//
// # Architecture boundaries
//
// This package translates HTTP semantics into session context. It does NOT
// validate tokens itself — the resolver owns that, backed by whatever auth
// layer issues session tokens upstream.
//
// # What this package must NOT do
//
//   - Parse or create session tokens directly (delegates to the resolver).
//   - Access Redis (the service handles I/O).
//   - Make recovery-key policy decisions; the service layer gates every
//     operation again regardless of which guard ran.
package middleware
