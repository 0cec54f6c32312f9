package recoverykey

// SessionState classifies the caller's authentication context. Session token
// issuance and rotation happen upstream; this package consumes the token's
// already-computed verification status.
type SessionState uint8

const (
	// SessionAnonymous is an exported constant or variable used by the recovery-key service.
	SessionAnonymous SessionState = iota
	// SessionUnverified is an exported constant or variable used by the recovery-key service.
	SessionUnverified
	// SessionVerified is an exported constant or variable used by the recovery-key service.
	SessionVerified
)

// Session is the caller's session context as derived from a session token by
// the upstream auth layer. A nil *Session means no token was presented.
//
// Unverified marks a token whose email-confirmation / second-factor step is
// still pending. All recovery-key mutations reject unverified sessions: an
// attacker holding a stolen unverified token must not gain persistent
// recovery capability.
type Session struct {
	AccountID  string
	Unverified bool
}

// State describes the state operation and its observable behavior.
//
// State does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (s *Session) State() SessionState {
	switch {
	case s == nil:
		return SessionAnonymous
	case s.Unverified:
		return SessionUnverified
	default:
		return SessionVerified
	}
}

// requireVerified gates every mutating operation.
func requireVerified(sess *Session) error {
	switch sess.State() {
	case SessionVerified:
		return nil
	case SessionUnverified:
		return ErrUnverifiedSession
	default:
		return ErrSessionRequired
	}
}
