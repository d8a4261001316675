package http

import (
	"net/http"

	"github.com/aussiebroadwan/siteauth/internal/auth/service"
	"github.com/aussiebroadwan/siteauth/pkg/authsdk"
	"github.com/aussiebroadwan/siteauth/pkg/httpx"
)

type PasswordResetHandler struct {
	PasswordResetService *service.PasswordResetService
}

func decodePasswordReset(w http.ResponseWriter, r *http.Request) (authsdk.PasswordReset, bool) {
	var req authsdk.PasswordResetRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		writeBadRequest(w, err.Error())
		return authsdk.PasswordReset{}, false
	}
	if len(req.PasswordReset) == 0 {
		writeBadRequest(w, "No password reset data provided.")
		return authsdk.PasswordReset{}, false
	}
	return req.PasswordReset[0], true
}

// HandleRequest godoc
//
//	@Summary		Request password reset
//	@Description	Mails a reset link if the address belongs to an account. The response is the same either way.
//	@Tags			Password reset
//	@Accept			json
//	@Produce		json
//	@Param			body	body		authsdk.PasswordResetRequest	true	"passwordreset[0].email"
//	@Success		200		{object}	authsdk.PasswordResetRequestResponse
//	@Failure		400		{object}	httpx.ErrorBody	"ValidationError"
//	@Router			/authentication/passwordreset [post].
func (h *PasswordResetHandler) HandleRequest(w http.ResponseWriter, r *http.Request) {
	in, ok := decodePasswordReset(w, r)
	if !ok {
		return
	}

	if err := h.PasswordResetService.RequestReset(r.Context(), in.Email); err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, authsdk.PasswordResetRequestResponse{
		PasswordReset: []authsdk.Message{{Message: "Check your email for further instructions."}},
	})
}

// HandleConfirm godoc
//
//	@Summary		Confirm password reset
//	@Description	Sets a new password using a reset token. Every session of the account ends and a locked account is unlocked.
//	@Description	confirmPassword may also be sent under its legacy name ne2Password.
//	@Tags			Password reset
//	@Accept			json
//	@Produce		json
//	@Param			body	body		authsdk.PasswordResetRequest	true	"passwordreset[0].token, newPassword, confirmPassword"
//	@Success		200		{object}	authsdk.PasswordResetConfirmResponse
//	@Failure		400		{object}	httpx.ErrorBody	"ValidationError or InvalidTokenError"
//	@Failure		401		{object}	httpx.ErrorBody	"UnauthorizedError"
//	@Router			/authentication/passwordreset [put].
func (h *PasswordResetHandler) HandleConfirm(w http.ResponseWriter, r *http.Request) {
	in, ok := decodePasswordReset(w, r)
	if !ok {
		return
	}

	confirm := in.ConfirmPassword
	if confirm == "" {
		confirm = in.Ne2Password
	}

	u, err := h.PasswordResetService.ConfirmReset(r.Context(), service.ConfirmResetInput{
		Token:           in.Token,
		NewPassword:     in.NewPassword,
		ConfirmPassword: confirm,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, authsdk.PasswordResetConfirmResponse{
		Password: []authsdk.Message{{Message: "Password changed successfully."}},
		Users:    []authsdk.User{toUser(u)},
	})
}
