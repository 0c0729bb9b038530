package types

import "time"

// SessionStatus is the lifecycle state of an uploaded-profile session
type SessionStatus string

// Session status constants
const (
	SessionActive   SessionStatus = "active"
	SessionExpiring SessionStatus = "expiring"
	SessionDeleted  SessionStatus = "deleted"
)

// Session is the handle for an uploaded-profile context. The ContextRef is
// the backend resource actually owned by the session manager; it must be
// released exactly once, and always before the handle itself is dropped.
type Session struct {
	ID             string        `json:"id"`
	ContextRef     string        `json:"context_ref"`
	OwnerID        string        `json:"owner_id,omitempty"`
	ProfileHash    string        `json:"profile_hash"`
	Profile        *Profile      `json:"-"`
	CreatedAt      time.Time     `json:"created_at"`
	ExpiresAt      time.Time     `json:"expires_at"`
	LastAccessedAt time.Time     `json:"last_accessed_at"`
	RequestCount   int           `json:"request_count"`
	Status         SessionStatus `json:"status"`
}

// Expired reports whether the session is past its expiry at the given instant
func (s *Session) Expired(now time.Time) bool {
	return now.After(s.ExpiresAt)
}
