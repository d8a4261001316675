package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aussiebroadwan/siteauth/internal/auth/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")

	// ErrOwnerExists is returned when inserting a second Owner.
	ErrOwnerExists = fmt.Errorf("%w: owner", ErrAlreadyExists)
)

// Store is the root data access interface. It exposes sub-repositories to
// keep concerns tidy and to stop transactions being nested by accident.
type Store interface {
	Users() Users
	Invites() Invites
	Sessions() Sessions
	Settings() Settings

	ApplyMigrations() error

	// Tx starts a read/write transaction and returns a Tx-scoped Store.
	// The caller MUST call Commit() or Rollback() on the returned Tx.
	Tx(ctx context.Context) (Tx, error)

	// WithTx executes fn within a transaction. If fn returns an error the
	// transaction is rolled back, otherwise it is committed. Inside fn only
	// the tx may be used; the outer Store would block on the same connection.
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	Close() error

	// Ping verifies the database connection is still alive.
	Ping(ctx context.Context) error
}

// Tx is a transactional store. It embeds the same repos but adds Commit/Rollback.
type Tx interface {
	Store
	Commit() error
	Rollback() error
}

type Users interface {
	GetUserByID(ctx context.Context, id string) (domain.User, error)

	// GetUserByEmail matches case-insensitively.
	GetUserByEmail(ctx context.Context, email string) (domain.User, error)

	// GetOwner returns the single Owner, or ErrNotFound before setup.
	GetOwner(ctx context.Context) (domain.User, error)

	// CreateUser inserts a new user. A duplicate email yields ErrAlreadyExists
	// and a second Owner yields ErrOwnerExists.
	CreateUser(ctx context.Context, u domain.User) error

	// UpdateProfile rewrites name, email and password_hash and bumps updated_at.
	UpdateProfile(ctx context.Context, u domain.User) error

	// ResetPassword swaps the password hash only if it still equals expectedHash,
	// and unlocks a locked account. ErrNotFound when nothing matched.
	ResetPassword(ctx context.Context, userID, expectedHash, newHash string) error

	// LockAll sets every user to locked and returns how many rows changed.
	LockAll(ctx context.Context) (int64, error)

	// ListPrivileged returns Owner and Administrator accounts.
	ListPrivileged(ctx context.Context) ([]domain.User, error)

	TouchLastSeen(ctx context.Context, userID string, at time.Time) error
}

type Invites interface {
	// CreateInvite writes a new invite (token_hash is the fingerprint of the opaque token).
	CreateInvite(ctx context.Context, inv domain.Invite) error

	// GetActiveInviteByTokenHash returns an unconsumed, unexpired invite by hash.
	GetActiveInviteByTokenHash(ctx context.Context, hash string, now time.Time) (domain.Invite, error)

	// GetActiveInviteByEmail returns the newest unconsumed, unexpired invite for email.
	GetActiveInviteByEmail(ctx context.Context, email string, now time.Time) (domain.Invite, error)

	// ConsumeInvite flips consumed only if it was not already set. ErrNotFound
	// tells the caller someone else got there first.
	ConsumeInvite(ctx context.Context, inviteID, userID string, now time.Time) error

	DeleteExpiredInvites(ctx context.Context, now time.Time) (int64, error)
}

type Sessions interface {
	CreateSession(ctx context.Context, s domain.Session) error

	// GetSession returns a session by id, expired or not.
	GetSession(ctx context.Context, id string) (domain.Session, error)

	ListSessions(ctx context.Context) ([]domain.Session, error)

	DeleteSession(ctx context.Context, id string) error
	DeleteUserSessions(ctx context.Context, userID string) (int64, error)
	DeleteAllSessions(ctx context.Context) (int64, error)
	DeleteExpiredSessions(ctx context.Context, now time.Time) (int64, error)
}

type Settings interface {
	GetSetting(ctx context.Context, key string) (string, error)

	// SetSetting inserts or replaces a value.
	SetSetting(ctx context.Context, key, value string) error

	ListSettings(ctx context.Context) (map[string]string, error)
}
