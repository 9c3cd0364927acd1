package domain

import "time"

// Session is the persisted identity marker for the active gallery owner.
// There is at most one active session; re-login replaces it.
type Session struct {
	ID         string    `json:"id"`
	OwnerEmail string    `json:"owner_email"`
	LoggedInAt time.Time `json:"logged_in_at"`
}

// Activity names for user activity telemetry.
const (
	ActivityLogin  = "login"
	ActivityLogout = "logout"
	ActivitySync   = "sync"
)
