package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/aussiebroadwan/siteauth/internal/auth/domain"
	"github.com/aussiebroadwan/siteauth/internal/auth/mail"
	"github.com/aussiebroadwan/siteauth/internal/auth/metrics"
	"github.com/aussiebroadwan/siteauth/internal/auth/store"
	"github.com/aussiebroadwan/siteauth/pkg/cryptox"
	"github.com/aussiebroadwan/siteauth/pkg/idx"
	"github.com/aussiebroadwan/siteauth/pkg/slogx"
)

// DefaultInviteTTL applies when InviteService.InviteTTL is unset.
const DefaultInviteTTL = 7 * 24 * time.Hour

type InviteService struct {
	Store      store.Store
	Hasher     cryptox.Hasher
	Mail       mail.Dispatcher
	Composer   mail.Composer
	Metrics    *metrics.Metrics
	InviteTTL  time.Duration
	SessionTTL time.Duration
	Now        func() time.Time
}

// InvitationStatus answers whether an email has a redeemable invitation.
// InvitedBy is the inviter's name, empty when unknown.
type InvitationStatus struct {
	Valid     bool
	InvitedBy string
}

// CreateInvitationInput describes a new staff invitation.
type CreateInvitationInput struct {
	Email     string
	Role      domain.Role
	InvitedBy string // user id, empty for operator-issued invites
	Send      bool   // dispatch the invitation mail
}

// CheckInvitation reports whether email holds an unconsumed, unexpired
// invitation. It deliberately says nothing about existing accounts.
func (s *InviteService) CheckInvitation(ctx context.Context, email string) (InvitationStatus, error) {
	email = normalizeEmail(email)
	if err := validateEmail(email); err != nil {
		s.Metrics.Flow(metrics.FlowInvitationCheck, outcome(err))
		return InvitationStatus{}, err
	}

	inv, err := s.Store.Invites().GetActiveInviteByEmail(ctx, email, clock(s.Now))
	switch {
	case err == nil:
		s.Metrics.Flow(metrics.FlowInvitationCheck, "ok")
		return InvitationStatus{Valid: true, InvitedBy: s.inviterName(ctx, inv.InvitedBy)}, nil
	case errors.Is(err, store.ErrNotFound):
		s.Metrics.Flow(metrics.FlowInvitationCheck, "ok")
		return InvitationStatus{Valid: false}, nil
	default:
		s.Metrics.Flow(metrics.FlowInvitationCheck, "error")
		return InvitationStatus{}, err
	}
}

// CreateInvitation mints an invitation and returns the raw token. Only its
// fingerprint is stored.
func (s *InviteService) CreateInvitation(ctx context.Context, in CreateInvitationInput) (string, domain.Invite, error) {
	log := slogx.FromContext(ctx)

	// 1. Validate input
	email := normalizeEmail(in.Email)
	if err := validateEmail(email); err != nil {
		return "", domain.Invite{}, err
	}
	if !slices.Contains(domain.InvitableRoles, in.Role) {
		return "", domain.Invite{}, invalidField("role", fmt.Sprintf("must be one of %v", domain.InvitableRoles))
	}

	// 2. Refuse addresses that already belong to an account
	if _, err := s.Store.Users().GetUserByEmail(ctx, email); err == nil {
		log.Warn("invitation requested for existing account", slog.String("email", email))
		return "", domain.Invite{}, ErrConflict
	} else if !errors.Is(err, store.ErrNotFound) {
		return "", domain.Invite{}, err
	}

	// 3. Generate and fingerprint the token
	token, err := cryptox.GenerateToken(cryptox.TokenSize256)
	if err != nil {
		log.Error("failed to generate invite token", slog.Any("error", err))
		return "", domain.Invite{}, err
	}

	ttl := s.InviteTTL
	if ttl <= 0 {
		ttl = DefaultInviteTTL
	}
	now := clock(s.Now)
	inv := domain.Invite{
		ID:        idx.NewAt(now).String(),
		TokenHash: cryptox.FingerprintToken(token),
		Email:     email,
		Role:      in.Role,
		InvitedBy: in.InvitedBy,
		ExpiresAt: now.Add(ttl),
		CreatedAt: now,
		UpdatedAt: now,
	}

	// 4. Persist
	if err := s.Store.Invites().CreateInvite(ctx, inv); err != nil {
		log.Error("failed to create invite", slog.String("invite_id", inv.ID), slog.Any("error", err))
		return "", domain.Invite{}, err
	}

	log.Info("invite created",
		slog.String("invite_id", inv.ID),
		slog.String("role", string(inv.Role)),
		slog.Time("expires_at", inv.ExpiresAt),
	)

	if in.Send {
		s.sendInvitation(ctx, inv, token, ttl)
	}
	return token, inv, nil
}

func (s *InviteService) sendInvitation(ctx context.Context, inv domain.Invite, token string, ttl time.Duration) {
	log := slogx.FromContext(ctx)

	msg, err := s.Composer.Invitation(inv.Email, token, s.inviterName(ctx, inv.InvitedBy), inv.Role, humanDuration(ttl))
	if err != nil {
		log.Warn("failed to compose invitation mail", slog.Any("error", err))
		return
	}
	s.Mail.Dispatch(ctx, msg)
}

// inviterName resolves an inviter id to a display name. Operator-issued
// invites and deleted inviters yield "".
func (s *InviteService) inviterName(ctx context.Context, id string) string {
	if id == "" {
		return ""
	}
	u, err := s.Store.Users().GetUserByID(ctx, id)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			slogx.FromContext(ctx).Warn("failed to look up inviter", slog.String("user_id", id), slog.Any("error", err))
		}
		return ""
	}
	return u.Name
}

// AcceptInvitation redeems an invitation token and creates the account. The
// lookup, account creation and consumption commit together, so of two
// concurrent redemptions exactly one succeeds and a failed one leaves the
// invitation untouched.
func (s *InviteService) AcceptInvitation(ctx context.Context, in AcceptInvitationInput) (domain.User, IssuedSession, error) {
	log := slogx.FromContext(ctx)

	u, issued, err := s.acceptInvitation(ctx, in)
	s.Metrics.Flow(metrics.FlowInvitationAccept, outcome(err))
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			log.Warn("invitation redemption with unknown, used or expired token")
		case errors.Is(err, ErrConflict):
			log.Warn("invitation redemption for an email already in use")
		case errors.Is(err, ErrValidation):
		default:
			log.Error("invitation redemption failed", slog.Any("error", err))
		}
		return domain.User{}, IssuedSession{}, err
	}

	log.Info("invitation accepted", slog.String("user_id", u.ID), slog.String("role", string(u.Role)))
	return u, issued, nil
}

func (s *InviteService) acceptInvitation(ctx context.Context, in AcceptInvitationInput) (domain.User, IssuedSession, error) {
	// 1. Shape checks only; account rules wait until the token is known good
	if err := in.validateShape(); err != nil {
		return domain.User{}, IssuedSession{}, err
	}

	now := clock(s.Now)
	fingerprint := cryptox.FingerprintToken(in.Token)

	// 2. An unknown, used or expired token is NotFound whatever the payload
	if _, err := s.Store.Invites().GetActiveInviteByTokenHash(ctx, fingerprint, now); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.User{}, IssuedSession{}, ErrNotFound
		}
		return domain.User{}, IssuedSession{}, err
	}

	// 3. Account rules
	if err := in.validateAccount(); err != nil {
		return domain.User{}, IssuedSession{}, err
	}

	// 4. Hash before opening the transaction
	hash, err := s.Hasher.Hash(in.Password)
	if err != nil {
		return domain.User{}, IssuedSession{}, err
	}

	var (
		u      domain.User
		issued IssuedSession
	)
	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		// 5. Re-read the invitation under the transaction
		inv, err := tx.Invites().GetActiveInviteByTokenHash(ctx, fingerprint, now)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrNotFound
			}
			return err
		}

		// 6. Email must be free
		if _, err := tx.Users().GetUserByEmail(ctx, normalizeEmail(in.Email)); err == nil {
			return ErrConflict
		} else if !errors.Is(err, store.ErrNotFound) {
			return err
		}

		// 7. Create the user with the invited role
		u = domain.User{
			ID:           idx.NewAt(now).String(),
			Name:         strings.TrimSpace(in.Name),
			Email:        normalizeEmail(in.Email),
			PasswordHash: hash,
			Status:       domain.StatusActive,
			Role:         inv.Role,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		if err := tx.Users().CreateUser(ctx, u); err != nil {
			if errors.Is(err, store.ErrAlreadyExists) {
				return ErrConflict
			}
			return err
		}

		// 8. Consume; zero rows means another redemption won
		if err := tx.Invites().ConsumeInvite(ctx, inv.ID, u.ID, now); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrNotFound
			}
			return err
		}

		// 9. Sign in
		issued, err = startSession(ctx, tx, u.ID, s.SessionTTL, now)
		return err
	})
	if err != nil {
		return domain.User{}, IssuedSession{}, err
	}
	return u, issued, nil
}

// humanDuration renders a validity window for mail copy.
func humanDuration(d time.Duration) string {
	switch {
	case d >= 24*time.Hour && d%(24*time.Hour) == 0:
		return plural(int(d/(24*time.Hour)), "day")
	case d >= time.Hour && d%time.Hour == 0:
		return plural(int(d/time.Hour), "hour")
	default:
		return plural(int(d.Round(time.Minute)/time.Minute), "minute")
	}
}

func plural(n int, unit string) string {
	if n == 1 {
		return "1 " + unit
	}
	return fmt.Sprintf("%d %ss", n, unit)
}
