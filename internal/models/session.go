package models

import "time"

// Session binds an opaque token to the user that logged in with it.
type Session struct {
	ID         string    `gorm:"primaryKey;type:varchar(64)" json:"id"`
	Username   string    `gorm:"index;not null" json:"username"`
	Role       string    `gorm:"not null" json:"role"`
	CreatedAt  time.Time `json:"created_at"`
	LastSeenAt time.Time `json:"last_seen_at"`
	ExpiresAt  time.Time `gorm:"index" json:"expires_at"`
}

func (Session) TableName() string {
	return "sessions"
}

// Expired reports whether the session is no longer usable at now.
func (s *Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}
