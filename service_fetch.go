package recoverykey

import (
	"context"
	"time"
)

// FetchRecoveryData returns the encrypted recovery bundle for the account
// named by a valid account-reset token, provided the caller also presents
// the matching recovery key id. This is the one read of the bundle itself;
// it happens mid password-reset, after the session that created the key is
// gone, which is why authorization is a reset token rather than a session.
//
// The id comparison runs in the store in constant time and a mismatch is
// indistinguishable from an absent key. The path shares the verify guard
// budget: both let a caller probe guessed ids.
func (s *Service) FetchRecoveryData(ctx context.Context, resetToken, recoveryKeyID string) ([]byte, error) {
	if s == nil || s.store == nil {
		return nil, ErrServiceNotReady
	}
	if resetToken == "" || recoveryKeyID == "" {
		return nil, ErrMissingParameter
	}

	var start time.Time
	if s.metrics.LatencyEnabled() {
		start = time.Now()
	}

	if s.resetTokens == nil {
		return nil, ErrServiceNotReady
	}
	claims, err := s.resetTokens.Parse(resetToken)
	if err != nil {
		s.metricInc(MetricFetchFailure)
		return nil, ErrResetTokenInvalid
	}
	accountID := claims.AccountID

	if err := s.guardCheck(ctx, accountID, guardTagGetRecoveryKey); err != nil {
		if err == ErrRateLimited {
			s.metricInc(MetricFetchFailure)
			s.emitRateLimit(ctx, "fetch", accountID, nil)
		}
		return nil, err
	}

	record, err := s.store.Get(ctx, accountID, recoveryKeyID)
	if err != nil {
		s.metricInc(MetricFetchFailure)
		return nil, mapStoreErr(err)
	}

	s.metricInc(MetricFetchSuccess)
	if !start.IsZero() {
		s.metrics.Observe(MetricFetchLatency, time.Since(start))
	}

	return record.RecoveryData, nil
}
