// Package resettoken issues and verifies account-reset authorization
// tokens: the narrow, short-lived credential minted mid password-reset
// flow. It is the only credential accepted for fetching recoveryData —
// a normal session token is deliberately NOT trusted once a password
// reset is underway.
//
// Tokens are HS256 JWTs carrying the account id and a fixed scope claim.
// Nothing else rides along: a reset token must not be usable as a general
// session credential.
package resettoken
