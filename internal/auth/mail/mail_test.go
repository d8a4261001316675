package mail

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/aussiebroadwan/siteauth/internal/auth/domain"
	"github.com/aussiebroadwan/siteauth/internal/auth/metrics"
	"github.com/aussiebroadwan/siteauth/pkg/slogx"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	mu      sync.Mutex
	sent    []domain.Message
	failFor string
	block   chan struct{}
}

func (r *recorder) Send(_ context.Context, msg domain.Message) error {
	if r.block != nil {
		<-r.block
	}
	if msg.To == r.failFor {
		return errors.New("mailbox unavailable")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, msg)
	return nil
}

func (r *recorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sent)
}

func TestDirectSwallowsFailures(t *testing.T) {
	rec := &recorder{failFor: "bad@example.com"}
	d := Direct{Mailer: rec, Metrics: metrics.New(metrics.NewRegistry())}

	d.Dispatch(context.Background(), domain.Message{Kind: KindWelcome, To: "bad@example.com"})
	d.Dispatch(context.Background(), domain.Message{Kind: KindWelcome, To: "good@example.com"})

	require.Equal(t, 1, rec.count())
}

func TestQueueDeliversEverythingBeforeStop(t *testing.T) {
	rec := &recorder{failFor: "bad@example.com"}
	q := NewQueue(rec, slogx.Discard(), nil, QueueOptions{Workers: 3, Size: 50})
	q.Start()

	for i := range 20 {
		to := "user@example.com"
		if i == 5 {
			to = "bad@example.com"
		}
		q.Dispatch(context.Background(), domain.Message{Kind: KindResetPassword, To: to})
	}
	q.Stop()

	require.Equal(t, 19, rec.count())

	// Dispatch after Stop is a logged drop, not a panic.
	q.Dispatch(context.Background(), domain.Message{Kind: KindResetPassword, To: "late@example.com"})
	q.Stop()
	require.Equal(t, 19, rec.count())
}

func TestQueueDropsWhenFull(t *testing.T) {
	rec := &recorder{block: make(chan struct{})}
	q := NewQueue(rec, slogx.Discard(), nil, QueueOptions{Workers: 1, Size: 1})
	q.Start()

	// At most one in flight and one buffered; the rest are dropped. The worker
	// may not have picked up the first job yet, so one or two get through.
	for range 5 {
		q.Dispatch(context.Background(), domain.Message{Kind: KindWelcome, To: "a@example.com"})
	}
	close(rec.block)
	q.Stop()

	require.GreaterOrEqual(t, rec.count(), 1)
	require.LessOrEqual(t, rec.count(), 2)
}

func TestComposer(t *testing.T) {
	c := Composer{SiteURL: "https://example.com/", Title: func() string { return "A Test Blog" }}

	msg, err := c.ResetPassword("jo@example.com", "dG9rZW4", "1 hour")
	require.NoError(t, err)
	require.Equal(t, SubjectResetPassword, msg.Subject)
	require.Equal(t, KindResetPassword, msg.Kind)
	require.Contains(t, msg.Body, "https://example.com/reset/dG9rZW4/")
	require.Contains(t, msg.Body, "1 hour")

	msg, err = c.Welcome("jo@example.com", "Jo")
	require.NoError(t, err)
	require.Equal(t, "Welcome to A Test Blog", msg.Subject)
	require.Contains(t, msg.Body, "Hi Jo,")

	msg, err = c.Invitation("new@example.com", "abc", "Jo", domain.RoleEditor, "7 days")
	require.NoError(t, err)
	require.Equal(t, "Jo has invited you to join A Test Blog", msg.Subject)
	require.Contains(t, msg.Body, "https://example.com/signup/abc/")
	require.Contains(t, msg.Body, "as Editor")

	msg, err = c.Invitation("new@example.com", "abc", "", domain.RoleAuthor, "7 days")
	require.NoError(t, err)
	require.Contains(t, msg.Body, "You have been invited to join")
}
