package service

import (
	"context"
	"log/slog"

	"github.com/aussiebroadwan/siteauth/internal/auth/domain"
	"github.com/aussiebroadwan/siteauth/internal/auth/metrics"
	"github.com/aussiebroadwan/siteauth/internal/auth/store"
	"github.com/aussiebroadwan/siteauth/pkg/slogx"
)

// Actor identifies who triggered a privileged operation.
type Actor struct {
	// Internal is set for trusted callers such as the CLI or a holder of an
	// internal bearer token.
	Internal bool
	Subject  string
	User     *domain.User
}

func InternalActor(subject string) Actor {
	return Actor{Internal: true, Subject: subject}
}

func UserActor(u domain.User) Actor {
	return Actor{Subject: u.ID, User: &u}
}

func (a Actor) mayResetAll() bool {
	if a.Internal {
		return true
	}
	return a.User != nil && a.User.Status == domain.StatusActive && a.User.Role.Privileged()
}

// MassResetService is the emergency switch: every account is locked, every
// session ends and each Owner and Administrator is mailed a reset link.
type MassResetService struct {
	Store   store.Store
	Resets  *PasswordResetService
	Metrics *metrics.Metrics
}

// ResetAllPasswords locks all users and revokes all sessions in a single
// transaction, then mails privileged accounts. Mail dispatch never fails
// the call.
func (s *MassResetService) ResetAllPasswords(ctx context.Context, actor Actor) error {
	log := slogx.FromContext(ctx)

	if !actor.mayResetAll() {
		log.Warn("mass password reset refused", slog.String("actor", actor.Subject))
		s.Metrics.Flow(metrics.FlowResetAll, outcome(ErrForbidden))
		return ErrForbidden
	}

	var (
		locked, revoked int64
		recipients      []domain.User
	)
	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		var err error
		if locked, err = tx.Users().LockAll(ctx); err != nil {
			return err
		}
		if revoked, err = tx.Sessions().DeleteAllSessions(ctx); err != nil {
			return err
		}
		recipients, err = tx.Users().ListPrivileged(ctx)
		return err
	})
	if err != nil {
		log.Error("mass password reset failed", slog.Any("error", err))
		s.Metrics.Flow(metrics.FlowResetAll, "error")
		return err
	}

	log.Warn("all passwords reset",
		slog.String("actor", actor.Subject),
		slog.Bool("internal", actor.Internal),
		slog.Int64("users_locked", locked),
		slog.Int64("sessions_revoked", revoked),
		slog.Int("notified", len(recipients)),
	)

	now := clock(s.Resets.Now)
	for _, u := range recipients {
		s.Resets.sendReset(ctx, u, now)
	}

	s.Metrics.Flow(metrics.FlowResetAll, "ok")
	return nil
}
