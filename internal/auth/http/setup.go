package http

import (
	"net/http"

	"github.com/aussiebroadwan/siteauth/internal/auth/domain"
	"github.com/aussiebroadwan/siteauth/internal/auth/service"
	"github.com/aussiebroadwan/siteauth/internal/auth/settings"
	"github.com/aussiebroadwan/siteauth/pkg/authsdk"
	"github.com/aussiebroadwan/siteauth/pkg/httpx"
)

type SetupHandler struct {
	SetupService *service.SetupService
	Settings     *settings.Cache
	Cookie       CookieConfig
}

// HandleStatus godoc
//
//	@Summary		Setup status
//	@Description	Reports whether the Owner account exists.
//	@Tags			Setup
//	@Produce		json
//	@Success		200	{object}	authsdk.SetupStatusResponse
//	@Router			/authentication/setup [get].
func (h *SetupHandler) HandleStatus(w http.ResponseWriter, r *http.Request) {
	configured, err := h.SetupService.IsConfigured(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	status := authsdk.SetupStatus{Status: configured}
	if configured && h.Settings != nil {
		status.Title = h.Settings.Title()
	}
	httpx.WriteJSON(w, http.StatusOK, authsdk.SetupStatusResponse{Setup: []authsdk.SetupStatus{status}})
}

// HandleCreate godoc
//
//	@Summary		Complete setup
//	@Description	Creates the Owner account, stores the site title and signs the Owner in. Only the first call succeeds.
//	@Tags			Setup
//	@Accept			json
//	@Produce		json
//	@Param			body	body		authsdk.SetupRequest	true	"Owner details"
//	@Success		201		{object}	authsdk.UsersResponse
//	@Failure		400		{object}	httpx.ErrorBody	"ValidationError"
//	@Failure		403		{object}	httpx.ErrorBody	"AlreadyConfiguredError"
//	@Router			/authentication/setup [post].
func (h *SetupHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	d, ok := decodeSetup(w, r)
	if !ok {
		return
	}

	owner, sess, err := h.SetupService.CompleteSetup(r.Context(), d)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	h.Cookie.set(w, sess)
	httpx.WriteJSON(w, http.StatusCreated, usersResponse(owner))
}

// HandleUpdate godoc
//
//	@Summary		Update setup
//	@Description	Lets the Owner change their name, email, password and the site title. The session cookie is replaced.
//	@Tags			Setup
//	@Accept			json
//	@Produce		json
//	@Param			body	body		authsdk.SetupRequest	true	"Owner details"
//	@Success		200		{object}	authsdk.UsersResponse
//	@Failure		400		{object}	httpx.ErrorBody	"ValidationError or NotConfiguredError"
//	@Failure		401		{object}	httpx.ErrorBody
//	@Failure		403		{object}	httpx.ErrorBody	"NoPermissionError"
//	@Failure		422		{object}	httpx.ErrorBody	"ConflictError"
//	@Security		SessionCookie
//	@Router			/authentication/setup [put].
func (h *SetupHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	actor, ok := userFrom(r.Context())
	if !ok {
		writeServiceError(w, r, service.ErrUnauthorized)
		return
	}
	d, ok := decodeSetup(w, r)
	if !ok {
		return
	}

	owner, sess, err := h.SetupService.UpdateSetup(r.Context(), d, actor)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	h.Cookie.set(w, sess)
	httpx.WriteJSON(w, http.StatusOK, usersResponse(owner))
}

func decodeSetup(w http.ResponseWriter, r *http.Request) (domain.SetupData, bool) {
	var req authsdk.SetupRequest
	if err := httpx.DecodeJSON(w, r, &req); err != nil {
		writeBadRequest(w, err.Error())
		return domain.SetupData{}, false
	}
	if len(req.Setup) == 0 {
		writeBadRequest(w, "No setup data provided.")
		return domain.SetupData{}, false
	}

	in := req.Setup[0]
	return domain.SetupData{
		Name:     in.Name,
		Email:    in.Email,
		Password: in.Password,
		Title:    in.BlogTitle,
	}, true
}
