package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/aussiebroadwan/siteauth/internal/auth/domain"
	"github.com/aussiebroadwan/siteauth/internal/auth/mail"
	"github.com/aussiebroadwan/siteauth/internal/auth/metrics"
	"github.com/aussiebroadwan/siteauth/internal/auth/settings"
	"github.com/aussiebroadwan/siteauth/internal/auth/store"
	"github.com/aussiebroadwan/siteauth/pkg/cryptox"
	"github.com/aussiebroadwan/siteauth/pkg/idx"
	"github.com/aussiebroadwan/siteauth/pkg/slogx"
)

// SetupService performs the one-time creation of the site Owner and lets
// the Owner revise those details afterwards.
type SetupService struct {
	Store      store.Store
	Hasher     cryptox.Hasher
	Settings   *settings.Cache
	Mail       mail.Dispatcher
	Composer   mail.Composer
	Metrics    *metrics.Metrics
	SessionTTL time.Duration
	Now        func() time.Time
}

// IsConfigured reports whether an Owner exists.
func (s *SetupService) IsConfigured(ctx context.Context) (bool, error) {
	_, err := s.Store.Users().GetOwner(ctx)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, store.ErrNotFound):
		return false, nil
	default:
		return false, err
	}
}

// CompleteSetup creates the Owner, records the site title and signs the
// Owner in. Only the first caller can win; the database refuses a second
// Owner even when two requests race past the initial check.
func (s *SetupService) CompleteSetup(ctx context.Context, d domain.SetupData) (domain.User, IssuedSession, error) {
	log := slogx.FromContext(ctx)

	owner, issued, err := s.completeSetup(ctx, d)
	s.Metrics.Flow(metrics.FlowSetup, outcome(err))
	if err != nil {
		if !errors.Is(err, ErrAlreadyConfigured) && !errors.Is(err, ErrValidation) {
			log.Error("setup failed", slog.Any("error", err))
		}
		return domain.User{}, IssuedSession{}, err
	}

	log.Info("site setup completed", slog.String("user_id", owner.ID))
	s.sendWelcome(ctx, owner)
	return owner, issued, nil
}

func (s *SetupService) completeSetup(ctx context.Context, d domain.SetupData) (domain.User, IssuedSession, error) {
	if configured, err := s.IsConfigured(ctx); err != nil {
		return domain.User{}, IssuedSession{}, err
	} else if configured {
		return domain.User{}, IssuedSession{}, ErrAlreadyConfigured
	}
	if err := validateSetup(d); err != nil {
		return domain.User{}, IssuedSession{}, err
	}

	hash, err := s.Hasher.Hash(d.Password)
	if err != nil {
		return domain.User{}, IssuedSession{}, err
	}

	now := clock(s.Now)
	owner := domain.User{
		ID:           string(idx.NewAt(now)),
		Name:         strings.TrimSpace(d.Name),
		Email:        normalizeEmail(d.Email),
		PasswordHash: hash,
		Status:       domain.StatusActive,
		Role:         domain.RoleOwner,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	title := strings.TrimSpace(d.Title)

	var issued IssuedSession
	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.Users().CreateUser(ctx, owner); err != nil {
			switch {
			case errors.Is(err, store.ErrOwnerExists):
				return ErrAlreadyConfigured
			case errors.Is(err, store.ErrAlreadyExists):
				return ErrConflict
			}
			return err
		}
		if title != "" {
			if err := tx.Settings().SetSetting(ctx, domain.SettingTitle, title); err != nil {
				return err
			}
		}
		var err error
		issued, err = startSession(ctx, tx, owner.ID, s.SessionTTL, now)
		return err
	})
	if err != nil {
		return domain.User{}, IssuedSession{}, err
	}

	s.publishTitle(ctx, title)
	return owner, issued, nil
}

// UpdateSetup rewrites the Owner's name, email, password and the site
// title. Changing the password ends every Owner session, so a fresh one is
// returned for the caller.
func (s *SetupService) UpdateSetup(ctx context.Context, d domain.SetupData, actor domain.User) (domain.User, IssuedSession, error) {
	log := slogx.FromContext(ctx)

	owner, issued, err := s.updateSetup(ctx, d, actor)
	s.Metrics.Flow(metrics.FlowSetupUpdate, outcome(err))
	if err != nil {
		return domain.User{}, IssuedSession{}, err
	}

	log.Info("owner details updated", slog.String("user_id", owner.ID))
	return owner, issued, nil
}

func (s *SetupService) updateSetup(ctx context.Context, d domain.SetupData, actor domain.User) (domain.User, IssuedSession, error) {
	if configured, err := s.IsConfigured(ctx); err != nil {
		return domain.User{}, IssuedSession{}, err
	} else if !configured {
		return domain.User{}, IssuedSession{}, ErrNotConfigured
	}
	if actor.Role != domain.RoleOwner {
		return domain.User{}, IssuedSession{}, ErrForbidden
	}
	if err := validateSetup(d); err != nil {
		return domain.User{}, IssuedSession{}, err
	}

	hash, err := s.Hasher.Hash(d.Password)
	if err != nil {
		return domain.User{}, IssuedSession{}, err
	}

	now := clock(s.Now)
	title := strings.TrimSpace(d.Title)

	var (
		owner  domain.User
		issued IssuedSession
	)
	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		var err error
		owner, err = tx.Users().GetOwner(ctx)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrNotConfigured
			}
			return err
		}
		if owner.ID != actor.ID {
			return ErrForbidden
		}

		owner.Name = strings.TrimSpace(d.Name)
		owner.Email = normalizeEmail(d.Email)
		owner.PasswordHash = hash
		owner.UpdatedAt = now
		if err := tx.Users().UpdateProfile(ctx, owner); err != nil {
			if errors.Is(err, store.ErrAlreadyExists) {
				return ErrConflict
			}
			return err
		}
		if title != "" {
			if err := tx.Settings().SetSetting(ctx, domain.SettingTitle, title); err != nil {
				return err
			}
		}
		if _, err := tx.Sessions().DeleteUserSessions(ctx, owner.ID); err != nil {
			return err
		}
		issued, err = startSession(ctx, tx, owner.ID, s.SessionTTL, now)
		return err
	})
	if err != nil {
		return domain.User{}, IssuedSession{}, err
	}

	s.publishTitle(ctx, title)
	return owner, issued, nil
}

func (s *SetupService) publishTitle(ctx context.Context, title string) {
	if title == "" || s.Settings == nil {
		return
	}
	if err := s.Settings.Set(domain.SettingTitle, title); err != nil {
		slogx.FromContext(ctx).Warn("failed to refresh settings cache", slog.Any("error", err))
	}
}

func (s *SetupService) sendWelcome(ctx context.Context, owner domain.User) {
	msg, err := s.Composer.Welcome(owner.Email, owner.Name)
	if err != nil {
		slogx.FromContext(ctx).Warn("failed to compose welcome mail", slog.Any("error", err))
		return
	}
	s.Mail.Dispatch(ctx, msg)
}
