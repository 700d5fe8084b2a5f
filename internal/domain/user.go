package domain

import "time"

type UserProfile struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Photo string `json:"photo,omitempty"`
}

type Session struct {
	Token     string `json:"token"`
	ExpiresAt int64  `json:"expiresAt"` // epoch ms
}

// ValidAt reports whether the session is unexpired at the given instant.
func (s Session) ValidAt(now time.Time) bool {
	return s.Token != "" && s.ExpiresAt > now.UnixMilli()
}
