package domain

import "time"

type UserStatus string

const (
	StatusActive   UserStatus = "active"
	StatusLocked   UserStatus = "locked" // must reset password before signing in
	StatusInactive UserStatus = "inactive"
)

type Role string

const (
	RoleOwner         Role = "Owner"
	RoleAdministrator Role = "Administrator"
	RoleEditor        Role = "Editor"
	RoleAuthor        Role = "Author"
	RoleContributor   Role = "Contributor"
)

// InvitableRoles are the roles an invitation may grant. Owner is only ever
// created by setup.
var InvitableRoles = []Role{RoleAdministrator, RoleEditor, RoleAuthor, RoleContributor}

// Privileged reports whether the role receives emergency reset mail.
func (r Role) Privileged() bool {
	return r == RoleOwner || r == RoleAdministrator
}

type User struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string // argon2id PHC string, doubles as the reset token verifier
	Status       UserStatus
	Role         Role
	LastSeen     *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
