package http

import (
	"net/http"

	"github.com/aussiebroadwan/siteauth/internal/auth/service"
	"github.com/aussiebroadwan/siteauth/pkg/authsdk"
	"github.com/aussiebroadwan/siteauth/pkg/httpx"
	"github.com/aussiebroadwan/siteauth/pkg/slogx"
)

type SessionHandler struct {
	SessionService *service.SessionService
	Cookie         CookieConfig
}

// HandleLogin godoc
//
//	@Summary		Sign in
//	@Description	Opens a staff session. Locked accounts must reset their password first.
//	@Tags			Session
//	@Accept			json
//	@Produce		json
//	@Param			body	body		authsdk.LoginRequest	true	"username is the email address"
//	@Success		201		{object}	authsdk.UsersResponse
//	@Failure		401		{object}	httpx.ErrorBody
//	@Failure		403		{object}	httpx.ErrorBody	"PasswordResetRequiredError"
//	@Router			/session [post].
func (h *SessionHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req authsdk.LoginRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		writeBadRequest(w, err.Error())
		return
	}

	u, sess, err := h.SessionService.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	h.Cookie.set(w, sess)
	httpx.WriteJSON(w, http.StatusCreated, usersResponse(u))
}

// HandleLogout godoc
//
//	@Summary		Sign out
//	@Tags			Session
//	@Success		204
//	@Router			/session [delete].
func (h *SessionHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	if err := h.SessionService.Logout(r.Context(), h.Cookie.token(r)); err != nil {
		slogx.FromContext(r.Context()).Warn("failed to delete session", "error", err)
	}
	h.Cookie.clear(w)
	w.WriteHeader(http.StatusNoContent)
}
