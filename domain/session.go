package domain

import "time"

// Session is a cached login stored in Redis. Role is copied from the user at login and
// travels in the bearer token.
type Session struct {
	ID        string            `json:"id"`
	UserID    string            `json:"user_id"`
	Role      string            `json:"role,omitempty"`
	ExpiresAt time.Time         `json:"expires_at"`
	CreatedAt time.Time         `json:"created_at"`
	Metadata  map[string]string `json:"metadata,omitempty"`
}

// IsExpired reports whether the session is no longer valid at reference.
func (s *Session) IsExpired(reference time.Time) bool {
	if s == nil {
		return true
	}
	return !s.ExpiresAt.After(reference)
}
