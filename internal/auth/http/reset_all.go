package http

import (
	"net/http"

	"github.com/aussiebroadwan/siteauth/internal/auth/service"
	"github.com/aussiebroadwan/siteauth/pkg/httpx"
	"github.com/aussiebroadwan/siteauth/pkg/jwtx"
)

type ResetAllHandler struct {
	MassResetService *service.MassResetService
	SessionService   *service.SessionService
	Verifier         jwtx.Verifier
	Cookie           CookieConfig
}

// ServeHTTP godoc
//
//	@Summary		Reset all passwords
//	@Description	Locks every account, ends every session and mails a reset link to each Owner and Administrator.
//	@Description	Needs an Owner or Administrator session, or an internal bearer token with the users:reset_all scope.
//	@Tags			Password reset
//	@Produce		json
//	@Success		200	{object}	object
//	@Failure		401	{object}	httpx.ErrorBody
//	@Failure		403	{object}	httpx.ErrorBody	"NoPermissionError"
//	@Security		SessionCookie
//	@Security		BearerAuth
//	@Router			/authentication/reset_all_passwords [post].
func (h *ResetAllHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	actor, err := resolveActor(r, h.Verifier, h.SessionService, h.Cookie, ScopeResetAllPasswords)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	if err := h.MassResetService.ResetAllPasswords(r.Context(), actor); err != nil {
		writeServiceError(w, r, err)
		return
	}

	// The caller's own session is gone too.
	if !actor.Internal {
		h.Cookie.clear(w)
	}
	httpx.WriteJSON(w, http.StatusOK, struct{}{})
}
