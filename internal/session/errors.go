package session

import "fmt"

// NotFoundError indicates the session ID is unknown to the store.
type NotFoundError struct {
	SessionID string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("session not found: %s", e.SessionID)
}

// ExpiredError indicates the session existed but its TTL had elapsed. The
// handle is removed on the access that discovers expiry.
type ExpiredError struct {
	SessionID string
}

func (e *ExpiredError) Error() string {
	return fmt.Sprintf("session expired: %s", e.SessionID)
}
