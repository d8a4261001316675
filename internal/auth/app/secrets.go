package app

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/aussiebroadwan/siteauth/pkg/cryptox"
	"github.com/aussiebroadwan/siteauth/pkg/jwtx"
)

// initSecrets loads the password pepper and the internal token secret,
// creating either file on first start.
func (app *Application) initSecrets() error {
	pepper, err := cryptox.LoadOrCreateSecret(app.cfg.Secrets.Pepper)
	if err != nil {
		return fmt.Errorf("load pepper: %w", err)
	}
	app.hasher = cryptox.Argon2Hasher{Pepper: pepper}

	internal, err := cryptox.LoadOrCreateSecret(app.cfg.Secrets.Internal)
	if err != nil {
		return fmt.Errorf("load internal token secret: %w", err)
	}
	signer, err := jwtx.NewSignerHS256(internal)
	if err != nil {
		return fmt.Errorf("internal token secret %s: %w", app.cfg.Secrets.Internal, err)
	}
	app.signer = signer
	app.verifier = jwtx.NewVerifierHS256(internal, app.cfg.Internal.Issuer, app.cfg.Internal.Leeway)

	app.logger.Info("secrets loaded",
		slog.String("pepper", app.cfg.Secrets.Pepper),
		slog.String("internal", app.cfg.Secrets.Internal),
	)
	return nil
}

// MintInternalToken signs a bearer token for an operator or automation
// caller. A non-positive ttl uses internal.tokenttl.
func (app *Application) MintInternalToken(subject string, scopes []string, ttl time.Duration) (string, error) {
	if ttl <= 0 {
		ttl = app.cfg.Internal.TokenTTL
	}
	if ttl <= 0 {
		ttl = jwtx.DefaultInternalTokenTTL
	}
	claims := jwtx.NewInternalClaims(subject, scopes, ttl, app.cfg.Internal.Issuer, time.Now())
	return app.signer.Sign(claims)
}
