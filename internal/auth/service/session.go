package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/aussiebroadwan/siteauth/internal/auth/domain"
	"github.com/aussiebroadwan/siteauth/internal/auth/metrics"
	"github.com/aussiebroadwan/siteauth/internal/auth/store"
	"github.com/aussiebroadwan/siteauth/pkg/cryptox"
	"github.com/aussiebroadwan/siteauth/pkg/slogx"
)

// DefaultSessionTTL applies when a service is built without one.
const DefaultSessionTTL = 30 * 24 * time.Hour

// IssuedSession is a freshly created session together with the raw cookie
// value. Only the fingerprint of Token is stored.
type IssuedSession struct {
	Token     string
	ExpiresAt time.Time
}

func clock(now func() time.Time) time.Time {
	if now == nil {
		return time.Now().UTC()
	}
	return now()
}

// startSession must run inside the caller's transaction so the session
// commits or rolls back with whatever created the user.
func startSession(ctx context.Context, tx store.Tx, userID string, ttl time.Duration, now time.Time) (IssuedSession, error) {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	raw, err := cryptox.GenerateToken(cryptox.TokenSize256)
	if err != nil {
		return IssuedSession{}, err
	}
	sess := domain.Session{
		ID:        cryptox.FingerprintToken(raw),
		UserID:    userID,
		ExpiresAt: now.Add(ttl),
		CreatedAt: now,
	}
	if err := tx.Sessions().CreateSession(ctx, sess); err != nil {
		return IssuedSession{}, err
	}
	return IssuedSession{Token: raw, ExpiresAt: sess.ExpiresAt}, nil
}

// SessionService signs staff in and out and resolves session cookies.
type SessionService struct {
	Store   store.Store
	Hasher  cryptox.Hasher
	TTL     time.Duration
	Metrics *metrics.Metrics
	Now     func() time.Time
}

// Login checks credentials and opens a session. The status check and the
// session insert share a transaction, so a concurrent mass reset either
// sees the new session and deletes it or blocks the login.
func (s *SessionService) Login(ctx context.Context, email, password string) (domain.User, IssuedSession, error) {
	log := slogx.FromContext(ctx)
	email = normalizeEmail(email)

	u, err := s.Store.Users().GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			s.Metrics.Flow(metrics.FlowLogin, "unauthorized")
			return domain.User{}, IssuedSession{}, ErrUnauthorized
		}
		return domain.User{}, IssuedSession{}, err
	}

	if err := s.Hasher.Verify(password, u.PasswordHash); err != nil {
		if !errors.Is(err, cryptox.ErrPasswordMismatch) {
			log.Error("stored password hash unreadable", slog.String("user_id", u.ID), slog.Any("error", err))
		}
		s.Metrics.Flow(metrics.FlowLogin, "unauthorized")
		return domain.User{}, IssuedSession{}, ErrUnauthorized
	}

	now := clock(s.Now)
	var issued IssuedSession
	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		current, err := tx.Users().GetUserByID(ctx, u.ID)
		if err != nil {
			return err
		}
		switch {
		case current.PasswordHash != u.PasswordHash:
			return ErrUnauthorized
		case current.Status == domain.StatusLocked:
			return ErrPasswordResetRequired
		case current.Status != domain.StatusActive:
			return ErrForbidden
		}
		u = current

		issued, err = startSession(ctx, tx, u.ID, s.TTL, now)
		if err != nil {
			return err
		}
		return tx.Users().TouchLastSeen(ctx, u.ID, now)
	})
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			err = ErrUnauthorized
		}
		s.Metrics.Flow(metrics.FlowLogin, outcome(err))
		return domain.User{}, IssuedSession{}, err
	}

	log.Info("user signed in", slog.String("user_id", u.ID))
	s.Metrics.Flow(metrics.FlowLogin, "ok")
	return u, issued, nil
}

// Authenticate resolves a raw session cookie to its active user.
func (s *SessionService) Authenticate(ctx context.Context, rawToken string) (domain.User, error) {
	if rawToken == "" {
		return domain.User{}, ErrUnauthorized
	}
	now := clock(s.Now)

	sess, err := s.Store.Sessions().GetSession(ctx, cryptox.FingerprintToken(rawToken))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.User{}, ErrUnauthorized
		}
		return domain.User{}, err
	}
	if !now.Before(sess.ExpiresAt) {
		if err := s.Store.Sessions().DeleteSession(ctx, sess.ID); err != nil {
			slogx.FromContext(ctx).Warn("failed to delete expired session", slog.String("user_id", sess.UserID), slog.Any("error", err))
		}
		return domain.User{}, ErrUnauthorized
	}

	u, err := s.Store.Users().GetUserByID(ctx, sess.UserID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.User{}, ErrUnauthorized
		}
		return domain.User{}, err
	}
	if u.Status != domain.StatusActive {
		return domain.User{}, ErrUnauthorized
	}

	if err := s.Store.Users().TouchLastSeen(ctx, u.ID, now); err != nil {
		slogx.FromContext(ctx).Warn("failed to update last_seen", slog.String("user_id", u.ID), slog.Any("error", err))
	}
	return u, nil
}

// Logout deletes the session behind rawToken. Unknown tokens are ignored.
func (s *SessionService) Logout(ctx context.Context, rawToken string) error {
	if rawToken == "" {
		return nil
	}
	return s.Store.Sessions().DeleteSession(ctx, cryptox.FingerprintToken(rawToken))
}

// outcome labels an error for the flow counter.
func outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrValidation):
		return "invalid"
	case errors.Is(err, ErrAlreadyConfigured):
		return "already_configured"
	case errors.Is(err, ErrNotConfigured):
		return "not_configured"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrConflict):
		return "conflict"
	case errors.Is(err, ErrUnauthorized):
		return "unauthorized"
	case errors.Is(err, ErrInvalidOrExpired):
		return "invalid_or_expired"
	case errors.Is(err, ErrForbidden):
		return "forbidden"
	case errors.Is(err, ErrPasswordResetRequired):
		return "reset_required"
	default:
		return "error"
	}
}
