package mail

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
	"time"

	gomail "github.com/wneessen/go-mail"

	"github.com/aussiebroadwan/siteauth/internal/auth/domain"
)

// STARTTLS policies accepted in SMTPConfig.TLS.
const (
	TLSMandatory     = "mandatory"
	TLSOpportunistic = "opportunistic"
	TLSNone          = "none"
)

// SMTPConfig configures the SMTP transport.
type SMTPConfig struct {
	Host     string `koanf:"host"`
	Port     int    `koanf:"port"`
	Username string `koanf:"username"`
	Password string `koanf:"password"`
	TLS      string `koanf:"tls"` // mandatory, opportunistic, none
}

// SMTPMailer sends plain-text mail through a relay. PLAIN auth is only used
// when a username is configured.
//
// Every connection is bound to the context passed to Send: its deadline
// becomes the socket deadline, and cancellation unblocks any pending read or
// write.
type SMTPMailer struct {
	Config SMTPConfig
	From   string

	policy gomail.TLSPolicy
	dialer net.Dialer
}

func NewSMTPMailer(cfg SMTPConfig, from string) (*SMTPMailer, error) {
	if cfg.Host == "" {
		return nil, errors.New("mail: smtp host is required")
	}
	if from == "" {
		return nil, errors.New("mail: from address is required")
	}
	if cfg.Port == 0 {
		cfg.Port = 587
	}

	var policy gomail.TLSPolicy
	switch cfg.TLS {
	case TLSMandatory:
		policy = gomail.TLSMandatory
	case TLSOpportunistic, "":
		cfg.TLS = TLSOpportunistic
		policy = gomail.TLSOpportunistic
	case TLSNone:
		policy = gomail.NoTLS
	default:
		return nil, fmt.Errorf("mail: smtp tls policy %q is not one of mandatory, opportunistic, none", cfg.TLS)
	}

	return &SMTPMailer{Config: cfg, From: from, policy: policy}, nil
}

func (m *SMTPMailer) Send(ctx context.Context, msg domain.Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if strings.ContainsAny(msg.To, "\r\n") {
		return fmt.Errorf("mail: invalid recipient %q", msg.To)
	}

	em, err := m.message(msg)
	if err != nil {
		return err
	}

	opts := []gomail.Option{
		gomail.WithPort(m.Config.Port),
		gomail.WithTLSPolicy(m.policy),
		gomail.WithDialContextFunc(m.dial(ctx)),
	}
	if m.Config.Username != "" {
		opts = append(opts,
			gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
			gomail.WithUsername(m.Config.Username),
			gomail.WithPassword(m.Config.Password),
		)
	}
	client, err := gomail.NewClient(m.Config.Host, opts...)
	if err != nil {
		return fmt.Errorf("mail: smtp client: %w", err)
	}

	if err := client.DialAndSendWithContext(ctx, em); err != nil {
		return fmt.Errorf("mail: smtp send: %w", err)
	}
	return nil
}

func (m *SMTPMailer) message(msg domain.Message) (*gomail.Msg, error) {
	em := gomail.NewMsg()
	if err := em.From(m.From); err != nil {
		return nil, fmt.Errorf("mail: invalid sender %q: %w", m.From, err)
	}
	if err := em.To(msg.To); err != nil {
		return nil, fmt.Errorf("mail: invalid recipient %q: %w", msg.To, err)
	}
	em.Subject(msg.Subject)
	em.SetDate()
	em.SetBodyString(gomail.TypeTextPlain, msg.Body)
	return em, nil
}

// dial returns a dialer whose connections honour sendCtx for their whole
// lifetime, not just the TCP handshake.
func (m *SMTPMailer) dial(sendCtx context.Context) gomail.DialContextFunc {
	return func(ctx context.Context, network, addr string) (net.Conn, error) {
		conn, err := m.dialer.DialContext(ctx, network, addr)
		if err != nil {
			return nil, err
		}
		if dl, ok := sendCtx.Deadline(); ok {
			_ = conn.SetDeadline(dl)
		}
		stop := context.AfterFunc(sendCtx, func() {
			_ = conn.SetDeadline(time.Unix(1, 0))
		})
		return &boundConn{Conn: conn, stop: stop}, nil
	}
}

type boundConn struct {
	net.Conn
	stop func() bool
}

func (c *boundConn) Close() error {
	c.stop()
	return c.Conn.Close()
}
