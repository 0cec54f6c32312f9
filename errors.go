package recoverykey

import "errors"

var (
	// ErrUnverifiedSession is an exported constant or variable used by the recovery-key service.
	ErrUnverifiedSession = errors.New("unverified session")
	// ErrSessionRequired is an exported constant or variable used by the recovery-key service.
	ErrSessionRequired = errors.New("session required")
	// ErrRecoveryKeyExists is an exported constant or variable used by the recovery-key service.
	ErrRecoveryKeyExists = errors.New("recovery key already exists")
	// ErrRecoveryKeyNotFound is an exported constant or variable used by the recovery-key service.
	ErrRecoveryKeyNotFound = errors.New("recovery key not found")
	// ErrUnknownAccount is an exported constant or variable used by the recovery-key service.
	ErrUnknownAccount = errors.New("unknown account")
	// ErrMissingParameter is an exported constant or variable used by the recovery-key service.
	ErrMissingParameter = errors.New("missing request parameter")
	// ErrRateLimited is an exported constant or variable used by the recovery-key service.
	ErrRateLimited = errors.New("request rate limited")
	// ErrResetTokenInvalid is an exported constant or variable used by the recovery-key service.
	ErrResetTokenInvalid = errors.New("invalid account reset token")
	// ErrStoreUnavailable is an exported constant or variable used by the recovery-key service.
	ErrStoreUnavailable = errors.New("recovery key store unavailable")
	// ErrServiceNotReady is an exported constant or variable used by the recovery-key service.
	ErrServiceNotReady = errors.New("service not initialized")
)
