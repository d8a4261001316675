package authsdk

import (
	"context"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"
)

// Client talks to a siteauth server. The zero value is not usable; build
// one with NewClient.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client

	// BearerToken, when set, is sent as an internal-caller token.
	BearerToken string
}

// NewClient creates a client with its own cookie jar.
func NewClient(baseURL string) *Client {
	jar, _ := cookiejar.New(nil)
	return &Client{
		BaseURL: strings.TrimSuffix(baseURL, "/"),
		HTTPClient: &http.Client{
			Timeout: 10 * time.Second,
			Jar:     jar,
		},
	}
}

// Livez calls the liveness probe.
func (c *Client) Livez(ctx context.Context) (HealthResponse, error) {
	var out HealthResponse
	err := c.do(ctx, http.MethodGet, "/livez", nil, &out, http.StatusOK)
	return out, err
}

// Readyz calls the readiness probe.
func (c *Client) Readyz(ctx context.Context) (HealthResponse, error) {
	var out HealthResponse
	err := c.do(ctx, http.MethodGet, "/readyz", nil, &out, http.StatusOK)
	return out, err
}

// SetupStatus reports whether the site has an Owner.
func (c *Client) SetupStatus(ctx context.Context) (SetupStatus, error) {
	var out SetupStatusResponse
	if err := c.do(ctx, http.MethodGet, "/authentication/setup", nil, &out, http.StatusOK); err != nil {
		return SetupStatus{}, err
	}
	return first(out.Setup), nil
}

// Setup creates the Owner and signs the client in.
func (c *Client) Setup(ctx context.Context, d SetupData) (User, error) {
	var out UsersResponse
	err := c.do(ctx, http.MethodPost, "/authentication/setup", SetupRequest{Setup: []SetupData{d}}, &out, http.StatusCreated)
	return first(out.Users), err
}

// UpdateSetup changes the Owner's details. The session cookie is replaced.
func (c *Client) UpdateSetup(ctx context.Context, d SetupData) (User, error) {
	var out UsersResponse
	err := c.do(ctx, http.MethodPut, "/authentication/setup", SetupRequest{Setup: []SetupData{d}}, &out, http.StatusOK)
	return first(out.Users), err
}

// CheckInvitation reports whether email holds a redeemable invitation.
func (c *Client) CheckInvitation(ctx context.Context, email string) (bool, error) {
	var out InvitationCheckResponse
	path := "/authentication/invitation?email=" + url.QueryEscape(email)
	if err := c.do(ctx, http.MethodGet, path, nil, &out, http.StatusOK); err != nil {
		return false, err
	}
	return first(out.Invitation).Valid, nil
}

// AcceptInvitation redeems an invitation and signs the client in.
func (c *Client) AcceptInvitation(ctx context.Context, in InvitationAccept) (User, error) {
	var out InvitationAcceptResponse
	err := c.do(ctx, http.MethodPost, "/authentication/invitation",
		InvitationAcceptRequest{Invitation: []InvitationAccept{in}}, &out, http.StatusOK)
	return first(out.Users), err
}

// RequestPasswordReset asks for a reset link. The server answers the same
// way whether or not the address is known.
func (c *Client) RequestPasswordReset(ctx context.Context, email string) error {
	var out PasswordResetRequestResponse
	return c.do(ctx, http.MethodPost, "/authentication/passwordreset",
		PasswordResetRequest{PasswordReset: []PasswordReset{{Email: email}}}, &out, http.StatusOK)
}

// ConfirmPasswordReset redeems a reset token.
func (c *Client) ConfirmPasswordReset(ctx context.Context, token, password string) (User, error) {
	var out PasswordResetConfirmResponse
	body := PasswordResetRequest{PasswordReset: []PasswordReset{{
		Token:           token,
		NewPassword:     password,
		ConfirmPassword: password,
	}}}
	err := c.do(ctx, http.MethodPut, "/authentication/passwordreset", body, &out, http.StatusOK)
	return first(out.Users), err
}

// ResetAllPasswords locks every account and ends every session.
func (c *Client) ResetAllPasswords(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, "/authentication/reset_all_passwords", struct{}{}, nil, http.StatusOK)
}

// Login opens a session for email.
func (c *Client) Login(ctx context.Context, email, password string) (User, error) {
	var out UsersResponse
	err := c.do(ctx, http.MethodPost, "/session", LoginRequest{Username: email, Password: password}, &out, http.StatusCreated)
	return first(out.Users), err
}

// Logout ends the current session.
func (c *Client) Logout(ctx context.Context) error {
	return c.do(ctx, http.MethodDelete, "/session", nil, nil, http.StatusNoContent)
}

func first[T any](items []T) T {
	var zero T
	if len(items) == 0 {
		return zero
	}
	return items[0]
}
