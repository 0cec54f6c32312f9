package recoverykey

import "context"

// Verify proves possession of the recovery key id and transitions the
// account's disabled record to enabled. Verifying an already-enabled key
// succeeds idempotently without re-sending the post-add notification.
//
// The path is rate limited even for authenticated callers: it lets a caller
// probe validity of a guessed id. Every outcome — success or any failure,
// including rate limiting and session rejection — is recorded in the audit
// trail before the result is surfaced, which is why the whole operation is
// wrapped rather than auditing only the success branch.
func (s *Service) Verify(ctx context.Context, sess *Session, recoveryKeyID string) error {
	if s == nil || s.store == nil {
		return ErrServiceNotReady
	}

	accountID := accountIDOf(sess)

	if err := s.verify(ctx, sess, recoveryKeyID); err != nil {
		s.metricInc(MetricVerifyFailure)
		s.emitAudit(ctx, auditEventRecoveryKeyChallengeFailure, false, accountID, err, nil)
		return err
	}

	s.emitAudit(ctx, auditEventRecoveryKeyChallengeSuccess, true, accountID, nil, nil)
	return nil
}

func (s *Service) verify(ctx context.Context, sess *Session, recoveryKeyID string) error {
	if err := s.gate(sess); err != nil {
		return err
	}
	if recoveryKeyID == "" {
		return ErrMissingParameter
	}

	accountID := sess.AccountID

	if err := s.guardCheck(ctx, accountID, guardTagGetRecoveryKey); err != nil {
		if err == ErrRateLimited {
			s.metricInc(MetricVerifyRateLimited)
			s.emitRateLimit(ctx, "verify", accountID, nil)
		}
		return err
	}

	record, err := s.store.Get(ctx, accountID, recoveryKeyID)
	if err != nil {
		return mapStoreErr(err)
	}

	if record.Enabled {
		// Already proven; success without duplicate notification.
		s.metricInc(MetricVerifySuccess)
		return nil
	}

	if err := s.store.Enable(ctx, accountID, recoveryKeyID); err != nil {
		return mapStoreErr(err)
	}

	s.metricInc(MetricVerifySuccess)

	if account, ok := s.accountForNotification(ctx, accountID); ok {
		s.notify.dispatch(ctx, notifyPostAdd, account)
	}

	return nil
}
