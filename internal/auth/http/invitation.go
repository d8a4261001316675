package http

import (
	"net/http"

	"github.com/aussiebroadwan/siteauth/internal/auth/service"
	"github.com/aussiebroadwan/siteauth/pkg/authsdk"
	"github.com/aussiebroadwan/siteauth/pkg/httpx"
)

type InvitationHandler struct {
	InviteService *service.InviteService
	Cookie        CookieConfig
}

// HandleCheck godoc
//
//	@Summary		Check invitation
//	@Description	Reports whether the address holds an unconsumed, unexpired invitation. Says nothing about existing accounts.
//	@Tags			Invitations
//	@Produce		json
//	@Param			email	query		string	true	"Email address"
//	@Success		200		{object}	authsdk.InvitationCheckResponse
//	@Failure		400		{object}	httpx.ErrorBody	"ValidationError"
//	@Router			/authentication/invitation [get].
func (h *InvitationHandler) HandleCheck(w http.ResponseWriter, r *http.Request) {
	status, err := h.InviteService.CheckInvitation(r.Context(), r.URL.Query().Get("email"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, authsdk.InvitationCheckResponse{
		Invitation: []authsdk.InvitationCheck{{Valid: status.Valid, InvitedBy: status.InvitedBy}},
	})
}

// HandleAccept godoc
//
//	@Summary		Accept invitation
//	@Description	Redeems an invitation token, creates the staff account with the invited role and signs it in.
//	@Tags			Invitations
//	@Accept			json
//	@Produce		json
//	@Param			body	body		authsdk.InvitationAcceptRequest	true	"Invitation token and account details"
//	@Success		200		{object}	authsdk.InvitationAcceptResponse
//	@Failure		400		{object}	httpx.ErrorBody	"ValidationError"
//	@Failure		404		{object}	httpx.ErrorBody	"NotFoundError"
//	@Failure		422		{object}	httpx.ErrorBody	"ConflictError"
//	@Router			/authentication/invitation [post].
func (h *InvitationHandler) HandleAccept(w http.ResponseWriter, r *http.Request) {
	var req authsdk.InvitationAcceptRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		writeBadRequest(w, err.Error())
		return
	}
	if len(req.Invitation) == 0 {
		writeBadRequest(w, "No invitation data provided.")
		return
	}
	in := req.Invitation[0]

	u, sess, err := h.InviteService.AcceptInvitation(r.Context(), service.AcceptInvitationInput{
		Token:    in.Token,
		Email:    in.Email,
		Password: in.Password,
		Name:     in.Name,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	h.Cookie.set(w, sess)
	httpx.WriteJSON(w, http.StatusOK, authsdk.InvitationAcceptResponse{
		Invitation: []authsdk.Message{{Message: "Invitation accepted."}},
		Users:      []authsdk.User{toUser(u)},
	})
}
