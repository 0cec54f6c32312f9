package recoverykey

import "context"

// Delete removes the account's recovery key, enabled or not, along with its
// hint. Deleting when no key exists succeeds: the caller's goal state is
// "no recovery key" and it already holds. Every call — including the no-op
// case — is audited and triggers the post-remove notification, mirroring
// the create path.
func (s *Service) Delete(ctx context.Context, sess *Session) error {
	if s == nil || s.store == nil {
		return ErrServiceNotReady
	}

	if err := s.gate(sess); err != nil {
		return err
	}

	accountID := sess.AccountID

	if err := s.store.Delete(ctx, accountID); err != nil {
		return mapStoreErr(err)
	}

	s.metricInc(MetricDeleteSuccess)
	s.emitAudit(ctx, auditEventRecoveryKeyRemoved, true, accountID, nil, nil)

	if account, ok := s.accountForNotification(ctx, accountID); ok {
		s.notify.dispatch(ctx, notifyPostRemove, account)
	}

	return nil
}
