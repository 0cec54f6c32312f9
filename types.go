package recoverykey

import "context"

// AccountRecord is the minimal account view the service needs from the
// surrounding system: an identifier and the addresses that receive
// security notifications.
type AccountRecord struct {
	AccountID    string
	PrimaryEmail string
	// Emails lists every address on the account, primary included.
	// Post-add and post-remove notifications go to all of them.
	Emails []string
	Locale string
}

// AccountDirectory is the interface callers must implement to integrate
// the recovery-key service with their account database. It covers
// email-to-account resolution for anonymous lookups and account hydration
// for notification dispatch.
type AccountDirectory interface {
	// ResolveEmail maps an email address to its account. Returns
	// [ErrUnknownAccount] when no account owns the address.
	ResolveEmail(ctx context.Context, email string) (AccountRecord, error)
	// AccountByID returns the account record for a known account id.
	AccountByID(ctx context.Context, accountID string) (AccountRecord, error)
}

// EmailMeta carries request-scoped details forwarded to notification
// emails so the user can recognize the device behind the change.
type EmailMeta struct {
	ClientIP       string
	UserAgent      string
	AcceptLanguage string
	// DispatchID is a unique id for the dispatch attempt, kept in logs
	// and message headers for correlation.
	DispatchID string
}

// Mailer sends transactional security notifications. Implementations are
// called from detached goroutines after the primary state transition has
// committed; an error is logged and counted, never surfaced to the caller
// of the mutating operation.
type Mailer interface {
	SendPostAddRecoveryKeyEmail(ctx context.Context, addresses []string, account AccountRecord, meta EmailMeta) error
	SendPostRemoveRecoveryKeyEmail(ctx context.Context, addresses []string, account AccountRecord, meta EmailMeta) error
}

// ExistsResult is returned by [Service.Exists]. It carries only the
// membership bit; key material and hints never ride along.
type ExistsResult struct {
	Exists bool
}
