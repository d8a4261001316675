package http

import (
	"context"
	"net/http"
	"time"

	"github.com/aussiebroadwan/siteauth/internal/auth/domain"
	"github.com/aussiebroadwan/siteauth/internal/auth/service"
	"github.com/aussiebroadwan/siteauth/pkg/httpx"
	"github.com/aussiebroadwan/siteauth/pkg/jwtx"
)

const DefaultCookieName = "siteauth-session"

// CookieConfig controls the session cookie.
type CookieConfig struct {
	Name   string `koanf:"name"`
	Secure bool   `koanf:"secure"`
}

func (c CookieConfig) name() string {
	if c.Name == "" {
		return DefaultCookieName
	}
	return c.Name
}

func (c CookieConfig) set(w http.ResponseWriter, s service.IssuedSession) {
	http.SetCookie(w, &http.Cookie{
		Name:     c.name(),
		Value:    s.Token,
		Path:     "/",
		Expires:  s.ExpiresAt,
		MaxAge:   int(time.Until(s.ExpiresAt).Seconds()),
		HttpOnly: true,
		Secure:   c.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func (c CookieConfig) clear(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     c.name(),
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   c.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func (c CookieConfig) token(r *http.Request) string {
	ck, err := r.Cookie(c.name())
	if err != nil {
		return ""
	}
	return ck.Value
}

type ctxKey struct{}

func withUser(ctx context.Context, u domain.User) context.Context {
	return httpx.WithUserID(context.WithValue(ctx, ctxKey{}, u), u.ID)
}

// userFrom returns the user RequireSession attached to ctx.
func userFrom(ctx context.Context) (domain.User, bool) {
	u, ok := ctx.Value(ctxKey{}).(domain.User)
	return u, ok
}

// RequireSession resolves the session cookie to an active user or answers 401.
func RequireSession(sessions *service.SessionService, cookie CookieConfig) httpx.Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			u, err := sessions.Authenticate(r.Context(), cookie.token(r))
			if err != nil {
				writeServiceError(w, r, err)
				return
			}
			next.ServeHTTP(w, r.WithContext(withUser(r.Context(), u)))
		})
	}
}

// ScopeResetAllPasswords lets an internal token trigger the mass reset.
const ScopeResetAllPasswords = "users:reset_all"

// resolveActor accepts either an internal bearer token carrying scope or a
// staff session cookie.
func resolveActor(r *http.Request, verifier jwtx.Verifier, sessions *service.SessionService, cookie CookieConfig, scope string) (service.Actor, error) {
	if raw, ok := httpx.BearerToken(r); ok {
		if verifier == nil {
			return service.Actor{}, service.ErrUnauthorized
		}
		claims, err := verifier.Verify(raw)
		if err != nil {
			return service.Actor{}, service.ErrUnauthorized
		}
		if !claims.HasScope(scope) {
			return service.Actor{}, service.ErrForbidden
		}
		return service.InternalActor(claims.Subject), nil
	}

	token := cookie.token(r)
	if token == "" {
		return service.Actor{}, service.ErrUnauthorized
	}
	u, err := sessions.Authenticate(r.Context(), token)
	if err != nil {
		return service.Actor{}, err
	}
	return service.UserActor(u), nil
}
