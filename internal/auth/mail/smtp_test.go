package mail

import (
	"bufio"
	"context"
	"net"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/aussiebroadwan/siteauth/internal/auth/domain"
)

// fakeRelay is a loopback SMTP listener. When stall is set it accepts
// connections and never sends a greeting.
type fakeRelay struct {
	ln    net.Listener
	stall bool

	mu   sync.Mutex
	data []string
}

func startRelay(t *testing.T, stall bool) *fakeRelay {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	r := &fakeRelay{ln: ln, stall: stall}
	done := make(chan struct{})
	t.Cleanup(func() {
		close(done)
		_ = ln.Close()
	})

	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			go func() {
				defer conn.Close()
				if r.stall {
					<-done
					return
				}
				r.serve(conn)
			}()
		}
	}()
	return r
}

func (r *fakeRelay) port() int {
	return r.ln.Addr().(*net.TCPAddr).Port
}

func (r *fakeRelay) messages() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.data...)
}

func (r *fakeRelay) serve(conn net.Conn) {
	rw := bufio.NewReadWriter(bufio.NewReader(conn), bufio.NewWriter(conn))
	reply := func(line string) {
		_, _ = rw.WriteString(line + "\r\n")
		_ = rw.Flush()
	}

	reply("220 relay.test ESMTP")
	for {
		line, err := rw.ReadString('\n')
		if err != nil {
			return
		}
		cmd := strings.ToUpper(strings.TrimSpace(line))
		switch {
		case strings.HasPrefix(cmd, "EHLO"), strings.HasPrefix(cmd, "HELO"):
			reply("250 relay.test")
		case cmd == "DATA":
			reply("354 end with <CRLF>.<CRLF>")
			var b strings.Builder
			for {
				l, err := rw.ReadString('\n')
				if err != nil {
					return
				}
				if l == ".\r\n" {
					break
				}
				b.WriteString(l)
			}
			r.mu.Lock()
			r.data = append(r.data, b.String())
			r.mu.Unlock()
			reply("250 queued")
		case cmd == "QUIT":
			reply("221 bye")
			return
		default:
			reply("250 ok")
		}
	}
}

func TestNewSMTPMailer(t *testing.T) {
	_, err := NewSMTPMailer(SMTPConfig{}, "noreply@example.com")
	require.Error(t, err)

	_, err = NewSMTPMailer(SMTPConfig{Host: "localhost"}, "")
	require.Error(t, err)

	_, err = NewSMTPMailer(SMTPConfig{Host: "localhost", TLS: "sometimes"}, "noreply@example.com")
	require.Error(t, err)

	m, err := NewSMTPMailer(SMTPConfig{Host: "localhost"}, "noreply@example.com")
	require.NoError(t, err)
	require.Equal(t, 587, m.Config.Port)
	require.Equal(t, TLSOpportunistic, m.Config.TLS)
}

func TestSMTPMailerDelivers(t *testing.T) {
	relay := startRelay(t, false)
	m, err := NewSMTPMailer(SMTPConfig{Host: "127.0.0.1", Port: relay.port(), TLS: TLSNone}, "noreply@example.com")
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, m.Send(ctx, domain.Message{
		To: "jo@example.com", Subject: SubjectResetPassword, Body: "line one\nline two",
	}))

	msgs := relay.messages()
	require.Len(t, msgs, 1)
	require.Contains(t, msgs[0], "Subject: Reset Password")
	require.Contains(t, msgs[0], "jo@example.com")
	require.Contains(t, msgs[0], "line one")
	require.Contains(t, msgs[0], "line two")
}

func TestSMTPMailerRejectsHeaderInjection(t *testing.T) {
	m, err := NewSMTPMailer(SMTPConfig{Host: "127.0.0.1", Port: 1, TLS: TLSNone}, "noreply@example.com")
	require.NoError(t, err)

	require.Error(t, m.Send(context.Background(), domain.Message{To: "x@example.com\r\nBcc: y@example.com"}))
}

func TestSMTPMailerHonoursContextOnStalledRelay(t *testing.T) {
	relay := startRelay(t, true)
	m, err := NewSMTPMailer(SMTPConfig{Host: "127.0.0.1", Port: relay.port(), TLS: TLSNone}, "noreply@example.com")
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	start := time.Now()
	err = m.Send(ctx, domain.Message{To: "jo@example.com", Subject: "Welcome", Body: "hi"})
	require.Error(t, err)
	require.Less(t, time.Since(start), 5*time.Second)
}

func TestSMTPMailerStopsOnCancel(t *testing.T) {
	relay := startRelay(t, true)
	m, err := NewSMTPMailer(SMTPConfig{Host: "127.0.0.1", Port: relay.port(), TLS: TLSNone}, "noreply@example.com")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	time.AfterFunc(200*time.Millisecond, cancel)

	start := time.Now()
	require.Error(t, m.Send(ctx, domain.Message{To: "jo@example.com", Subject: "Welcome", Body: "hi"}))
	require.Less(t, time.Since(start), 5*time.Second)
}
