package models

import "time"

// Session is a server-side login session. The signed token handed to the
// client carries the session ID, so deleting the row revokes the token.
type Session struct {
	Base
	UserID    string    `gorm:"size:255;not null;index" json:"user_id"`
	ExpiresAt time.Time `gorm:"not null;index" json:"expires_at"`

	User *User `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
}

// Expired reports whether the session is no longer valid at now.
func (s *Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}
