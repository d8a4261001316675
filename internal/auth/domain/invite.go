package domain

import "time"

type Invite struct {
	ID         string
	TokenHash  string
	Email      string
	Role       Role
	InvitedBy  string // empty when minted by an operator
	ExpiresAt  time.Time
	Consumed   bool
	ConsumedBy string // empty until consumed
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Redeemable reports whether the invite can still be accepted at now.
func (i Invite) Redeemable(now time.Time) bool {
	return !i.Consumed && now.Before(i.ExpiresAt)
}
