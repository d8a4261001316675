package domain

import "time"

// Session is keyed by the fingerprint of the cookie value; the raw value is
// never stored.
type Session struct {
	ID        string
	UserID    string
	ExpiresAt time.Time
	CreatedAt time.Time
}
