package recoverykey

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/dschom/recoverykey/internal/guard"
	"github.com/dschom/recoverykey/internal/store"
	"github.com/dschom/recoverykey/resettoken"
)

// Guard operation tags. The verify and fetch paths share one budget: both
// let a caller probe validity of a guessed recovery key id.
const (
	guardTagGetRecoveryKey    = "getRecoveryKey"
	guardTagRecoveryKeyExists = "recoveryKeyExists"
)

// ResetTokenParser verifies account-reset authorization tokens. Satisfied
// by [resettoken.Manager]; substituted in tests.
type ResetTokenParser interface {
	Parse(tokenStr string) (*resettoken.Claims, error)
}

// Service defines a public type used by recoverykey APIs.
//
// Service instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Service struct {
	config      Config
	store       *store.RecoveryKeys
	guard       *guard.Guard
	directory   AccountDirectory
	resetTokens ResetTokenParser
	audit       *auditDispatcher
	notify      *notifier
	metrics     *Metrics
}

// Close describes the close operation and its observable behavior.
//
// Close drains in-flight notification dispatches and the audit dispatcher.
func (s *Service) Close() {
	if s == nil {
		return
	}
	if s.notify != nil {
		s.notify.Close()
	}
	if s.audit != nil {
		s.audit.Close()
	}
}

// AuditDropped describes the auditdropped operation and its observable behavior.
//
// AuditDropped does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (s *Service) AuditDropped() uint64 {
	if s == nil || s.audit == nil {
		return 0
	}
	return s.audit.Dropped()
}

// NotificationsFailed describes the notificationsfailed operation and its observable behavior.
//
// NotificationsFailed does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (s *Service) NotificationsFailed() uint64 {
	if s == nil || s.notify == nil {
		return 0
	}
	return s.notify.Failed()
}

// MetricsSnapshot describes the metricssnapshot operation and its observable behavior.
//
// MetricsSnapshot does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (s *Service) MetricsSnapshot() MetricsSnapshot {
	if s == nil || s.metrics == nil {
		return MetricsSnapshot{
			Counters:   map[MetricID]uint64{},
			Histograms: map[MetricID][]uint64{},
		}
	}
	return s.metrics.Snapshot()
}

func (s *Service) metricInc(id MetricID) {
	if s == nil || s.metrics == nil {
		return
	}
	s.metrics.Inc(id)
}

// gate rejects anonymous and unverified callers for mutating operations.
func (s *Service) gate(sess *Session) error {
	if err := requireVerified(sess); err != nil {
		if errors.Is(err, ErrUnverifiedSession) {
			s.metricInc(MetricUnverifiedSessionRejected)
		}
		return err
	}
	return nil
}

// guardCheck applies the abuse gate when configured; a disabled guard
// allows everything.
func (s *Service) guardCheck(ctx context.Context, keySpace, tag string) error {
	if s.guard == nil {
		return nil
	}
	if err := s.guard.Check(ctx, keySpace, tag); err != nil {
		if errors.Is(err, guard.ErrRateLimited) {
			return ErrRateLimited
		}
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return nil
}

// mapStoreErr translates store sentinels into the public taxonomy.
func mapStoreErr(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, store.ErrNotFound), errors.Is(err, store.ErrHintNotFound):
		return ErrRecoveryKeyNotFound
	case errors.Is(err, store.ErrRedisUnavailable):
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	default:
		return err
	}
}

func accountIDOf(sess *Session) string {
	if sess == nil {
		return ""
	}
	return sess.AccountID
}

// accountForNotification hydrates the account record for a best-effort
// email. A directory failure here must not fail the committed mutation;
// the zero record signals "skip the email".
func (s *Service) accountForNotification(ctx context.Context, accountID string) (AccountRecord, bool) {
	if s.notify == nil || s.directory == nil {
		return AccountRecord{}, false
	}
	account, err := s.directory.AccountByID(ctx, accountID)
	if err != nil {
		s.metricInc(MetricNotifyFailed)
		log.Print("recoverykey: account hydration for notification failed")
		return AccountRecord{}, false
	}
	return account, true
}
