// Package mail delivers notifications. Every call site in the credential
// flows treats delivery as best effort: failures are logged and counted,
// never returned to the caller of the flow.
package mail

import (
	"context"
	"log/slog"

	"github.com/aussiebroadwan/siteauth/internal/auth/domain"
	"github.com/aussiebroadwan/siteauth/internal/auth/metrics"
	"github.com/aussiebroadwan/siteauth/pkg/slogx"
)

// Mailer is a transport. Send blocks until the message is handed off or fails.
type Mailer interface {
	Send(ctx context.Context, msg domain.Message) error
}

// Dispatcher accepts a message for delivery and never reports failure.
// When Dispatch returns, delivery has been initiated.
type Dispatcher interface {
	Dispatch(ctx context.Context, msg domain.Message)
}

// Direct dispatches synchronously on the caller's goroutine.
type Direct struct {
	Mailer  Mailer
	Metrics *metrics.Metrics
}

func (d Direct) Dispatch(ctx context.Context, msg domain.Message) {
	deliver(ctx, d.Mailer, d.Metrics, slogx.FromContext(ctx), msg)
}

func deliver(ctx context.Context, m Mailer, mx *metrics.Metrics, log *slog.Logger, msg domain.Message) {
	if err := m.Send(ctx, msg); err != nil {
		log.Warn("mail delivery failed",
			slog.String("kind", msg.Kind),
			slog.String("to", msg.To),
			slog.Any("error", err),
		)
		mx.Mail(msg.Kind, "failed")
		return
	}
	log.Debug("mail delivered", slog.String("kind", msg.Kind), slog.String("to", msg.To))
	mx.Mail(msg.Kind, "sent")
}

// LogMailer writes messages to a logger instead of sending them. It is the
// default transport for development installs.
type LogMailer struct {
	Logger *slog.Logger
}

func (l LogMailer) Send(ctx context.Context, msg domain.Message) error {
	l.Logger.InfoContext(ctx, "mail",
		slog.String("kind", msg.Kind),
		slog.String("to", msg.To),
		slog.String("subject", msg.Subject),
		slog.String("body", msg.Body),
	)
	return nil
}
