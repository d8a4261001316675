package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/aussiebroadwan/siteauth/internal/auth/service"
	"github.com/aussiebroadwan/siteauth/internal/auth/settings"
	"github.com/aussiebroadwan/siteauth/internal/auth/store"
	"github.com/aussiebroadwan/siteauth/pkg/httpx"
	"github.com/aussiebroadwan/siteauth/pkg/jwtx"
	"github.com/aussiebroadwan/siteauth/pkg/slogx"

	_ "github.com/aussiebroadwan/siteauth/api/siteauth" // Swagger docs
	httpSwagger "github.com/swaggo/http-swagger"
)

// Limits are the rate limit profiles applied to route groups.
type Limits struct {
	Strict   httpx.RateLimitConfig
	Moderate httpx.RateLimitConfig
	Public   httpx.RateLimitConfig
}

// DefaultLimits uses the httpx profiles.
func DefaultLimits() Limits {
	return Limits{
		Strict:   httpx.StrictLimit,
		Moderate: httpx.ModerateLimit,
		Public:   httpx.PublicLimit,
	}
}

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	buildVersion string
	startTime    time.Time
	logger       *slog.Logger
	store        store.Store
	settings     *settings.Cache

	SetupService         *service.SetupService
	InviteService        *service.InviteService
	PasswordResetService *service.PasswordResetService
	MassResetService     *service.MassResetService
	SessionService       *service.SessionService

	// InternalVerifier authenticates bearer tokens from internal callers.
	// Nil disables bearer access.
	InternalVerifier jwtx.Verifier

	// Metrics serves /metrics when set.
	Metrics http.Handler

	Cookie CookieConfig
	Limits Limits
}

func NewRouter(
	buildVersion string,
	st store.Store,
	cache *settings.Cache,
	logger *slog.Logger,
) *Router {
	r := &Router{
		Mux:          http.NewServeMux(),
		buildVersion: buildVersion,
		startTime:    time.Now(),
		logger:       logger,
		store:        st,
		settings:     cache,
		Cookie:       CookieConfig{Name: DefaultCookieName},
		Limits:       DefaultLimits(),
	}

	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
	}

	return r
}

func (r *Router) ApplyRoutes() {
	r.registerSetup()
	r.registerInvitation()
	r.registerPasswordReset()
	r.registerSession()
	r.registerSystem()

	r.Mux.Handle("/swagger/", httpSwagger.Handler())
}

// ServeHTTP implements http.Handler for Router and applies the global middleware chain.
//
//	@title			siteauth API
//	@version		0.1.0
//	@description	Credential lifecycle for a single-site publishing platform: first-run setup,
//	@description	staff invitations, self-service password reset and the emergency mass reset.
//	@description
//	@description				Payloads use Ghost-style envelopes, e.g. {"setup":[{...}]}.
//
//	@contact.name				AussieBroadWAN Team
//	@contact.url				https://github.com/aussiebroadwan/siteauth
//
//	@license.name				MIT
//	@license.url				https://opensource.org/licenses/MIT
//
//	@host						localhost:8080
//	@BasePath					/
//
//	@schemes					http https
//
//	@securityDefinitions.apikey	SessionCookie
//	@in							cookie
//	@name						siteauth-session
//
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Internal caller token. Format: "Bearer {token}".
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

func (r *Router) requireSession() httpx.Middleware {
	return RequireSession(r.SessionService, r.Cookie)
}

func (r *Router) registerSetup() {
	h := &SetupHandler{
		SetupService: r.SetupService,
		Settings:     r.settings,
		Cookie:       r.Cookie,
	}

	r.Mux.Handle("GET /authentication/setup",
		httpx.Chain(http.HandlerFunc(h.HandleStatus),
			httpx.RateLimitByIP(r.Limits.Public),
		),
	)

	// POST /setup - strict, it creates the Owner
	r.Mux.Handle("POST /authentication/setup",
		httpx.Chain(http.HandlerFunc(h.HandleCreate),
			httpx.RateLimitByIP(r.Limits.Strict),
		),
	)

	r.Mux.Handle("PUT /authentication/setup",
		httpx.Chain(http.HandlerFunc(h.HandleUpdate),
			r.requireSession(),
			httpx.RateLimitByUser(r.Limits.Moderate),
		),
	)
}

func (r *Router) registerInvitation() {
	h := &InvitationHandler{InviteService: r.InviteService, Cookie: r.Cookie}

	// GET /invitation - limited per IP and address to slow enumeration
	r.Mux.Handle("GET /authentication/invitation",
		httpx.Chain(http.HandlerFunc(h.HandleCheck),
			httpx.RateLimitByIPAndQuery(r.Limits.Moderate, "email"),
		),
	)

	r.Mux.Handle("POST /authentication/invitation",
		httpx.Chain(http.HandlerFunc(h.HandleAccept),
			httpx.RateLimitByIP(r.Limits.Strict),
		),
	)
}

func (r *Router) registerPasswordReset() {
	h := &PasswordResetHandler{PasswordResetService: r.PasswordResetService}

	r.Mux.Handle("POST /authentication/passwordreset",
		httpx.Chain(http.HandlerFunc(h.HandleRequest),
			httpx.RateLimitByIP(r.Limits.Strict),
		),
	)
	r.Mux.Handle("PUT /authentication/passwordreset",
		httpx.Chain(http.HandlerFunc(h.HandleConfirm),
			httpx.RateLimitByIP(r.Limits.Strict),
		),
	)

	all := &ResetAllHandler{
		MassResetService: r.MassResetService,
		SessionService:   r.SessionService,
		Verifier:         r.InternalVerifier,
		Cookie:           r.Cookie,
	}
	r.Mux.Handle("POST /authentication/reset_all_passwords",
		httpx.Chain(all,
			httpx.RateLimitByIP(r.Limits.Moderate),
		),
	)
}

func (r *Router) registerSession() {
	h := &SessionHandler{SessionService: r.SessionService, Cookie: r.Cookie}

	// POST /session - strict by IP to slow brute force
	r.Mux.Handle("POST /session",
		httpx.Chain(http.HandlerFunc(h.HandleLogin),
			httpx.RateLimitByIP(r.Limits.Strict),
		),
	)
	r.Mux.Handle("DELETE /session",
		httpx.Chain(http.HandlerFunc(h.HandleLogout),
			httpx.RateLimitByIP(r.Limits.Moderate),
		),
	)
}

func (r *Router) registerSystem() {
	// Health check endpoints - monitoring systems may poll frequently
	r.Mux.Handle("GET /livez",
		httpx.Chain(LivezHandler(r.startTime, r.buildVersion),
			httpx.RateLimitByIP(r.Limits.Public),
		),
	)
	r.Mux.Handle("GET /readyz",
		httpx.Chain(ReadyzHandler(r.startTime, r.buildVersion, r.store, r.settings),
			httpx.RateLimitByIP(r.Limits.Public),
		),
	)
	if r.Metrics != nil {
		r.Mux.Handle("GET /metrics", r.Metrics)
	}
}
