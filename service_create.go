package recoverykey

import (
	"context"
	"time"

	"github.com/dschom/recoverykey/internal/store"
)

// Create registers a recovery key for the session's account. The server
// receives only the derived public id and the client-encrypted blob; the
// recovery key secret itself never arrives here.
//
// An account that already has an *enabled* recovery key cannot create a
// second one and gets [ErrRecoveryKeyExists]. A disabled leftover from an
// interrupted earlier attempt is superseded: it is deleted and the create
// retried exactly once. Two concurrent creates may both pass the
// no-enabled-record observation and race to insert; the store's uniqueness
// guarantee rejects the loser, which surfaces here as [ErrRecoveryKeyExists]
// rather than a silent overwrite.
//
// With enabled=true (the client already holds proof of key control) the
// record is immediately active: a recovery_key_added audit event is recorded
// and a best-effort "recovery key added" email goes to all addresses on the
// account. Nothing key-derived is returned to the caller.
func (s *Service) Create(ctx context.Context, sess *Session, recoveryKeyID string, recoveryData []byte, enabled bool) error {
	if s == nil || s.store == nil {
		return ErrServiceNotReady
	}
	if err := s.gate(sess); err != nil {
		return err
	}
	if recoveryKeyID == "" || len(recoveryData) == 0 {
		return ErrMissingParameter
	}

	accountID := sess.AccountID
	record := &store.Record{
		RecoveryKeyID: recoveryKeyID,
		RecoveryData:  recoveryData,
		Enabled:       enabled,
		CreatedAt:     time.Now().Unix(),
	}

	outcome, err := s.store.Create(ctx, accountID, record)
	if err != nil {
		return mapStoreErr(err)
	}

	if outcome == store.CreateConflict {
		// An enabled record means a real active key: reject, which also
		// neutralizes replay of a stale create request. Only a disabled
		// stray may be superseded.
		exists, err := s.store.Exists(ctx, accountID)
		if err != nil {
			return mapStoreErr(err)
		}
		if exists {
			s.metricInc(MetricCreateConflict)
			return ErrRecoveryKeyExists
		}

		if err := s.store.Delete(ctx, accountID); err != nil {
			return mapStoreErr(err)
		}
		outcome, err = s.store.Create(ctx, accountID, record)
		if err != nil {
			return mapStoreErr(err)
		}
		if outcome == store.CreateConflict {
			// Lost the race again; a concurrent create won.
			s.metricInc(MetricCreateConflict)
			return ErrRecoveryKeyExists
		}
		s.metricInc(MetricCreateSuperseded)
	}

	s.metricInc(MetricCreateSuccess)

	if enabled {
		s.emitAudit(ctx, auditEventRecoveryKeyAdded, true, accountID, nil, nil)
		if account, ok := s.accountForNotification(ctx, accountID); ok {
			s.notify.dispatch(ctx, notifyPostAdd, account)
		}
	}

	return nil
}
