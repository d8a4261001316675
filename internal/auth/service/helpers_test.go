package service

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/aussiebroadwan/siteauth/internal/auth/domain"
	"github.com/aussiebroadwan/siteauth/internal/auth/mail"
	"github.com/aussiebroadwan/siteauth/internal/auth/settings"
	"github.com/aussiebroadwan/siteauth/internal/auth/store/drivers/sqlite"
	"github.com/aussiebroadwan/siteauth/pkg/cryptox"
)

const testSiteURL = "https://blog.example.com"

type outbox struct {
	mu   sync.Mutex
	msgs []domain.Message
}

func (o *outbox) Dispatch(_ context.Context, msg domain.Message) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.msgs = append(o.msgs, msg)
}

func (o *outbox) sent() []domain.Message {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]domain.Message(nil), o.msgs...)
}

// linkToken pulls the token out of the first {site}/{kind}/{token}/ link.
func linkToken(t *testing.T, msg domain.Message, kind string) string {
	t.Helper()
	prefix := testSiteURL + "/" + kind + "/"
	for _, line := range strings.Split(msg.Body, "\n") {
		if strings.HasPrefix(line, prefix) {
			return strings.TrimSuffix(strings.TrimPrefix(line, prefix), "/")
		}
	}
	t.Fatalf("no %s link in message body:\n%s", kind, msg.Body)
	return ""
}

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type testEnv struct {
	store    *sqlite.Store
	settings *settings.Cache
	outbox   *outbox
	clock    *testClock
	hasher   cryptox.Hasher
	codec    cryptox.HMACResetCodec

	setup    *SetupService
	invites  *InviteService
	resets   *PasswordResetService
	mass     *MassResetService
	sessions *SessionService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	ctx := context.Background()

	st, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	require.NoError(t, st.ApplyMigrations())
	t.Cleanup(func() { _ = st.Close() })

	_, err = settings.EnsureInstallSecret(ctx, st)
	require.NoError(t, err)
	cache, err := settings.Load(ctx, st)
	require.NoError(t, err)

	env := &testEnv{
		store:    st,
		settings: cache,
		outbox:   &outbox{},
		clock:    &testClock{now: time.Now().UTC().Truncate(time.Millisecond)},
		hasher:   cryptox.Argon2Hasher{Pepper: "test-pepper"},
	}
	composer := mail.Composer{SiteURL: testSiteURL, Title: cache.Title}

	env.setup = &SetupService{
		Store:    st,
		Hasher:   env.hasher,
		Settings: cache,
		Mail:     env.outbox,
		Composer: composer,
		Now:      env.clock.Now,
	}
	env.invites = &InviteService{
		Store:    st,
		Hasher:   env.hasher,
		Mail:     env.outbox,
		Composer: composer,
		Now:      env.clock.Now,
	}
	env.resets = &PasswordResetService{
		Store:    st,
		Hasher:   env.hasher,
		Codec:    env.codec,
		Settings: cache,
		Mail:     env.outbox,
		Composer: composer,
		Now:      env.clock.Now,
	}
	env.mass = &MassResetService{Store: st, Resets: env.resets}
	env.sessions = &SessionService{Store: st, Hasher: env.hasher, Now: env.clock.Now}
	return env
}

var ownerData = domain.SetupData{
	Name:     "test user",
	Email:    "test@example.com",
	Password: "thisissupersafe",
	Title:    "a test blog",
}

func (e *testEnv) mustSetup(t *testing.T) (domain.User, IssuedSession) {
	t.Helper()
	owner, sess, err := e.setup.CompleteSetup(context.Background(), ownerData)
	require.NoError(t, err)
	return owner, sess
}

// mustStaff creates an active user of role through an invitation.
func (e *testEnv) mustStaff(t *testing.T, email string, role domain.Role) (domain.User, IssuedSession) {
	t.Helper()
	ctx := context.Background()
	token, _, err := e.invites.CreateInvitation(ctx, CreateInvitationInput{Email: email, Role: role})
	require.NoError(t, err)
	u, sess, err := e.invites.AcceptInvitation(ctx, AcceptInvitationInput{
		Token:    token,
		Email:    email,
		Password: "staffpassword1",
		Name:     "Staff " + string(role),
	})
	require.NoError(t, err)
	return u, sess
}

func (e *testEnv) sessionCount(t *testing.T) int {
	t.Helper()
	all, err := e.store.Sessions().ListSessions(context.Background())
	require.NoError(t, err)
	return len(all)
}
