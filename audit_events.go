package recoverykey

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

const (
	auditEventRecoveryKeyAdded            = "recovery_key_added"
	auditEventRecoveryKeyChallengeSuccess = "recovery_key_challenge_success"
	auditEventRecoveryKeyChallengeFailure = "recovery_key_challenge_failure"
	auditEventRecoveryKeyRemoved          = "recovery_key_removed"
	auditEventRateLimitTriggered          = "rate_limit_triggered"
)

// AuditErrorCode defines a public type used by recoverykey APIs.
//
// AuditErrorCode instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type AuditErrorCode string

const (
	auditErrUnverifiedSession  AuditErrorCode = "unverified_session"
	auditErrSessionRequired    AuditErrorCode = "session_required"
	auditErrKeyExists          AuditErrorCode = "recovery_key_exists"
	auditErrKeyNotFound        AuditErrorCode = "recovery_key_not_found"
	auditErrUnknownAccount     AuditErrorCode = "unknown_account"
	auditErrMissingParameter   AuditErrorCode = "missing_parameter"
	auditErrRateLimited        AuditErrorCode = "rate_limited"
	auditErrResetTokenInvalid  AuditErrorCode = "reset_token_invalid"
	auditErrStoreUnavailable   AuditErrorCode = "store_unavailable"
	auditErrInternal           AuditErrorCode = "internal_error"
)

func (s *Service) emitAudit(
	ctx context.Context,
	eventType string,
	success bool,
	accountID string,
	err error,
	metadataBuilder func() map[string]string,
) {
	if s == nil || s.audit == nil {
		return
	}

	var metadata map[string]string
	if metadataBuilder != nil {
		metadata = metadataBuilder()
	}

	event := AuditEvent{
		EventID:   uuid.NewString(),
		Timestamp: time.Now().UTC(),
		EventType: eventType,
		AccountID: accountID,
		IP:        clientIPFromContext(ctx),
		Success:   success,
		Metadata:  metadata,
	}
	if code := auditErrorCode(err); code != "" {
		event.Error = string(code)
	}

	s.audit.Emit(ctx, event)
}

func (s *Service) emitRateLimit(
	ctx context.Context,
	scope string,
	accountID string,
	metadataBuilder func() map[string]string,
) {
	s.metricInc(MetricRateLimitHit)
	s.emitAudit(ctx, auditEventRateLimitTriggered, false, accountID, nil, func() map[string]string {
		base := map[string]string{
			"scope": scope,
		}
		if metadataBuilder == nil {
			return base
		}
		for k, v := range metadataBuilder() {
			base[k] = v
		}
		return base
	})
}

func auditErrorCode(err error) AuditErrorCode {
	if err == nil {
		return ""
	}

	switch {
	case errors.Is(err, ErrUnverifiedSession):
		return auditErrUnverifiedSession
	case errors.Is(err, ErrSessionRequired):
		return auditErrSessionRequired
	case errors.Is(err, ErrRecoveryKeyExists):
		return auditErrKeyExists
	case errors.Is(err, ErrRecoveryKeyNotFound):
		return auditErrKeyNotFound
	case errors.Is(err, ErrUnknownAccount):
		return auditErrUnknownAccount
	case errors.Is(err, ErrMissingParameter):
		return auditErrMissingParameter
	case errors.Is(err, ErrRateLimited):
		return auditErrRateLimited
	case errors.Is(err, ErrResetTokenInvalid):
		return auditErrResetTokenInvalid
	case errors.Is(err, ErrStoreUnavailable):
		return auditErrStoreUnavailable
	default:
		return auditErrInternal
	}
}
