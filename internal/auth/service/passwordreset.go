package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/aussiebroadwan/siteauth/internal/auth/domain"
	"github.com/aussiebroadwan/siteauth/internal/auth/mail"
	"github.com/aussiebroadwan/siteauth/internal/auth/metrics"
	"github.com/aussiebroadwan/siteauth/internal/auth/settings"
	"github.com/aussiebroadwan/siteauth/internal/auth/store"
	"github.com/aussiebroadwan/siteauth/pkg/cryptox"
	"github.com/aussiebroadwan/siteauth/pkg/slogx"
)

// DefaultResetTTL applies when PasswordResetService.TTL is unset.
const DefaultResetTTL = 60 * time.Minute

// PasswordResetService issues and redeems self-service reset tokens. Tokens
// are stateless: each one is bound to the install secret and the user's
// password hash at issue time, so a successful reset retires every token
// issued before it.
type PasswordResetService struct {
	Store    store.Store
	Hasher   cryptox.Hasher
	Codec    cryptox.ResetTokenCodec
	Settings *settings.Cache
	Mail     mail.Dispatcher
	Composer mail.Composer
	Metrics  *metrics.Metrics
	TTL      time.Duration
	Now      func() time.Time
}

func (s *PasswordResetService) ttl() time.Duration {
	if s.TTL <= 0 {
		return DefaultResetTTL
	}
	return s.TTL
}

// RequestReset mails a reset link when email belongs to an active or locked
// account. The result is identical whether or not such an account exists.
func (s *PasswordResetService) RequestReset(ctx context.Context, email string) error {
	log := slogx.FromContext(ctx)

	email = normalizeEmail(email)
	if err := validateEmail(email); err != nil {
		s.Metrics.Flow(metrics.FlowResetRequest, outcome(err))
		return err
	}

	u, err := s.Store.Users().GetUserByEmail(ctx, email)
	switch {
	case errors.Is(err, store.ErrNotFound):
		log.Debug("password reset requested for unknown email")
		s.Metrics.Flow(metrics.FlowResetRequest, "ok")
		return nil
	case err != nil:
		log.Error("password reset lookup failed", slog.Any("error", err))
		s.Metrics.Flow(metrics.FlowResetRequest, "error")
		return nil
	}

	if u.Status == domain.StatusInactive {
		log.Debug("password reset requested for inactive user", slog.String("user_id", u.ID))
		s.Metrics.Flow(metrics.FlowResetRequest, "ok")
		return nil
	}

	s.sendReset(ctx, u, clock(s.Now))
	s.Metrics.Flow(metrics.FlowResetRequest, "ok")
	return nil
}

// sendReset issues a token against the user's current hash and hands the
// mail to the dispatcher. Delivery problems never reach the caller.
func (s *PasswordResetService) sendReset(ctx context.Context, u domain.User, now time.Time) {
	log := slogx.FromContext(ctx)

	secret := s.Settings.InstallSecret()
	if secret == "" {
		log.Error("install secret missing, cannot issue reset token")
		return
	}

	ttl := s.ttl()
	token := s.Codec.Issue(cryptox.ResetClaims{Email: u.Email, ExpiresAt: now.Add(ttl)}, secret, u.PasswordHash)

	msg, err := s.Composer.ResetPassword(u.Email, token, humanDuration(ttl))
	if err != nil {
		log.Warn("failed to compose reset mail", slog.String("user_id", u.ID), slog.Any("error", err))
		return
	}
	s.Mail.Dispatch(ctx, msg)
	log.Info("password reset issued", slog.String("user_id", u.ID))
}

// ConfirmReset redeems a reset token. Verification, the password swap and
// session revocation happen in one transaction and the swap only applies if
// the hash the token was checked against is still current.
func (s *PasswordResetService) ConfirmReset(ctx context.Context, in ConfirmResetInput) (domain.User, error) {
	log := slogx.FromContext(ctx)

	u, err := s.confirmReset(ctx, in)
	s.Metrics.Flow(metrics.FlowResetConfirm, outcome(err))
	if err != nil {
		switch {
		case errors.Is(err, ErrUnauthorized):
			log.Warn("password reset with malformed or forged token")
		case errors.Is(err, ErrInvalidOrExpired):
			log.Info("password reset with stale token")
		case errors.Is(err, ErrValidation):
		default:
			log.Error("password reset failed", slog.Any("error", err))
		}
		return domain.User{}, err
	}

	log.Info("password reset completed", slog.String("user_id", u.ID))
	return u, nil
}

func (s *PasswordResetService) confirmReset(ctx context.Context, in ConfirmResetInput) (domain.User, error) {
	// 1. Validate input
	if err := in.validate(); err != nil {
		return domain.User{}, err
	}

	// 2. Decode the token shape
	claims, err := s.Codec.Parse(in.Token)
	if err != nil {
		return domain.User{}, ErrUnauthorized
	}

	secret := s.Settings.InstallSecret()
	if secret == "" {
		return domain.User{}, errors.New("install secret missing")
	}

	// 3. Hash before opening the transaction
	hash, err := s.Hasher.Hash(in.NewPassword)
	if err != nil {
		return domain.User{}, err
	}

	now := clock(s.Now)
	var u domain.User
	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		// 4. Resolve the account named by the token
		var err error
		u, err = tx.Users().GetUserByEmail(ctx, claims.Email)
		if errors.Is(err, store.ErrNotFound) {
			// Forged tokens stay Unauthorized even for unknown emails.
			if _, verr := s.Codec.Verify(in.Token, secret, "", now); errors.Is(verr, cryptox.ErrResetTokenMalformed) {
				return ErrUnauthorized
			}
			return ErrInvalidOrExpired
		}
		if err != nil {
			return err
		}

		// 5. Verify against the current hash
		if _, err := s.Codec.Verify(in.Token, secret, u.PasswordHash, now); err != nil {
			if errors.Is(err, cryptox.ErrResetTokenStale) {
				return ErrInvalidOrExpired
			}
			return ErrUnauthorized
		}
		if u.Status == domain.StatusInactive {
			return ErrInvalidOrExpired
		}

		// 6. Swap the hash only if it is still the one we verified
		if err := tx.Users().ResetPassword(ctx, u.ID, u.PasswordHash, hash); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrInvalidOrExpired
			}
			return err
		}

		// 7. End every session of this user
		if _, err := tx.Sessions().DeleteUserSessions(ctx, u.ID); err != nil {
			return err
		}

		u, err = tx.Users().GetUserByID(ctx, u.ID)
		return err
	})
	if err != nil {
		return domain.User{}, err
	}
	return u, nil
}
