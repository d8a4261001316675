package authsdk

import "time"

// SetupData is the body of POST and PUT /authentication/setup.
type SetupData struct {
	Name      string `json:"name"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	BlogTitle string `json:"blogTitle,omitempty"`
}

type SetupRequest struct {
	Setup []SetupData `json:"setup"`
}

// SetupStatus reports whether the Owner exists.
type SetupStatus struct {
	Status bool   `json:"status"`
	Title  string `json:"title,omitempty"`
}

type SetupStatusResponse struct {
	Setup []SetupStatus `json:"setup"`
}

// User is the public view of an account. Password material never leaves
// the server.
type User struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	Email     string     `json:"email"`
	Role      string     `json:"role"`
	Status    string     `json:"status"`
	LastSeen  *time.Time `json:"last_seen"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

type UsersResponse struct {
	Users []User `json:"users"`
}

// Message is a human-readable confirmation.
type Message struct {
	Message string `json:"message"`
}

type InvitationCheck struct {
	Valid     bool   `json:"valid"`
	InvitedBy string `json:"invitedBy,omitempty"`
}

type InvitationCheckResponse struct {
	Invitation []InvitationCheck `json:"invitation"`
}

// InvitationAccept redeems an invitation token.
type InvitationAccept struct {
	Token    string `json:"token"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

type InvitationAcceptRequest struct {
	Invitation []InvitationAccept `json:"invitation"`
}

type InvitationAcceptResponse struct {
	Invitation []Message `json:"invitation"`
	Users      []User    `json:"users"`
}

// PasswordReset is the body of both password reset endpoints. POST reads
// Email; PUT reads the token and the new password pair. Ne2Password is
// the legacy name of ConfirmPassword and is still accepted.
type PasswordReset struct {
	Email           string `json:"email,omitempty"`
	Token           string `json:"token,omitempty"`
	NewPassword     string `json:"newPassword,omitempty"`
	ConfirmPassword string `json:"confirmPassword,omitempty"`
	Ne2Password     string `json:"ne2Password,omitempty"`
}

type PasswordResetRequest struct {
	PasswordReset []PasswordReset `json:"passwordreset"`
}

type PasswordResetRequestResponse struct {
	PasswordReset []Message `json:"passwordreset"`
}

type PasswordResetConfirmResponse struct {
	Password []Message `json:"password"`
	Users    []User    `json:"users"`
}

// LoginRequest is the body of POST /session. Username is the email address.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// HealthResponse is returned by /livez and /readyz (readyz adds Checks).
type HealthResponse struct {
	Status  string        `json:"status"`
	Uptime  string        `json:"uptime,omitempty"`
	Version string        `json:"version,omitempty"`
	Checks  *HealthChecks `json:"checks,omitempty"`
}

// HealthChecks reports critical dependencies on /readyz.
type HealthChecks struct {
	Database string `json:"database"`
	Settings string `json:"settings"`
}
