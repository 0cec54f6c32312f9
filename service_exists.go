package recoverykey

import (
	"context"
	"errors"
)

// Exists reports whether the account has an enabled recovery key.
// Disabled in-progress records do not count.
//
// With a session the account is implicit and the call is not rate limited
// (the trusted settings surface; session issuance is throttled upstream).
// Without a session the caller must supply an email — this is the password
// reset entry page deciding which reset flow to offer — and the check is
// rate limited per email. An unknown email is reported as a plain
// non-existence result: this path must not be an account-enumeration
// oracle.
func (s *Service) Exists(ctx context.Context, sess *Session, email string) (ExistsResult, error) {
	if s == nil || s.store == nil {
		return ExistsResult{}, ErrServiceNotReady
	}

	accountID := accountIDOf(sess)

	if accountID == "" {
		if email == "" {
			return ExistsResult{}, ErrMissingParameter
		}

		if err := s.guardCheck(ctx, email, guardTagRecoveryKeyExists); err != nil {
			if err == ErrRateLimited {
				s.metricInc(MetricExistsRateLimited)
				s.emitRateLimit(ctx, "exists", "", func() map[string]string {
					return map[string]string{
						"identifier": email,
					}
				})
			}
			return ExistsResult{}, err
		}

		account, err := s.directory.ResolveEmail(ctx, email)
		if err != nil {
			if errors.Is(err, ErrUnknownAccount) {
				s.metricInc(MetricExistsCheck)
				return ExistsResult{Exists: false}, nil
			}
			return ExistsResult{}, err
		}
		accountID = account.AccountID
	}

	exists, err := s.store.Exists(ctx, accountID)
	if err != nil {
		return ExistsResult{}, mapStoreErr(err)
	}

	s.metricInc(MetricExistsCheck)
	return ExistsResult{Exists: exists}, nil
}
