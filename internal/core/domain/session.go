package domain

import "time"

// User is the authenticated PocketBase users record.
type User struct {
	ID       string `json:"id"`
	Email    string `json:"email,omitempty"`
	Username string `json:"username,omitempty"`
	Name     string `json:"name,omitempty"`
	Verified bool   `json:"verified,omitempty"`
}

// AuthSession is the signed-in state exported by the backend's auth store.
type AuthSession struct {
	Token     string
	User      User
	ExpiresAt time.Time
	UpdatedAt time.Time
}

// Valid reports whether the session has a token that has not expired.
// A zero ExpiresAt is treated as non-expiring.
func (s *AuthSession) Valid(now time.Time) bool {
	if s == nil || s.Token == "" {
		return false
	}
	return s.ExpiresAt.IsZero() || now.Before(s.ExpiresAt)
}

// SearchHistoryEntry is one remembered search term.
type SearchHistoryEntry struct {
	ID        string
	Term      string
	CreatedAt time.Time
}

// MaxHistoryItems bounds the remembered search terms.
const MaxHistoryItems = 5
