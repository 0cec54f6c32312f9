package recoverykey

import (
	"context"
	"errors"

	"github.com/dschom/recoverykey/internal/store"
)

// GetHint returns the storage hint for the account's enabled recovery key.
//
// Reachable with or without a session. Without one the caller supplies an
// email, the lookup is rate limited per email, and an unknown email is
// surfaced as [ErrUnknownAccount]: unlike Exists this path is only offered
// once the caller has already demonstrated knowledge of the account, so a
// concrete error is more useful than an enumeration-safe blank. An account
// without an enabled key, or one whose key has no hint recorded, yields
// [ErrRecoveryKeyNotFound].
func (s *Service) GetHint(ctx context.Context, sess *Session, email string) (string, error) {
	if s == nil || s.store == nil {
		return "", ErrServiceNotReady
	}

	accountID := accountIDOf(sess)

	if accountID == "" {
		if email == "" {
			return "", ErrMissingParameter
		}

		if err := s.guardCheck(ctx, email, guardTagRecoveryKeyExists); err != nil {
			if err == ErrRateLimited {
				s.metricInc(MetricExistsRateLimited)
				s.emitRateLimit(ctx, "hint", "", func() map[string]string {
					return map[string]string{
						"identifier": email,
					}
				})
			}
			return "", err
		}

		account, err := s.directory.ResolveEmail(ctx, email)
		if err != nil {
			if errors.Is(err, ErrUnknownAccount) {
				return "", ErrUnknownAccount
			}
			return "", err
		}
		accountID = account.AccountID
	}

	exists, err := s.store.Exists(ctx, accountID)
	if err != nil {
		return "", mapStoreErr(err)
	}
	if !exists {
		return "", ErrRecoveryKeyNotFound
	}

	hint, err := s.store.GetHint(ctx, accountID)
	if err != nil {
		if errors.Is(err, store.ErrHintNotFound) {
			return "", ErrRecoveryKeyNotFound
		}
		return "", mapStoreErr(err)
	}

	s.metricInc(MetricHintRead)
	return hint, nil
}

// UpdateHint replaces the storage hint on the account's recovery key. The
// hint is advisory plaintext chosen by the user ("kitchen drawer"); it must
// never contain key material. Requires a verified session and an existing
// record.
func (s *Service) UpdateHint(ctx context.Context, sess *Session, hint string) error {
	if s == nil || s.store == nil {
		return ErrServiceNotReady
	}

	if err := s.gate(sess); err != nil {
		return err
	}

	if err := s.store.UpdateHint(ctx, sess.AccountID, hint); err != nil {
		return mapStoreErr(err)
	}

	s.metricInc(MetricHintUpdated)
	return nil
}
