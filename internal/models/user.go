package models

import "time"

// User is the identity anchor. Its ID is the normalized login email, so
// repeat logins upsert the same row.
type User struct {
	ID              string    `gorm:"size:255;primaryKey" json:"id"`
	Email           *string   `gorm:"size:255;uniqueIndex" json:"email,omitempty"`
	FirstName       *string   `gorm:"size:255" json:"first_name,omitempty"`
	LastName        *string   `gorm:"size:255" json:"last_name,omitempty"`
	ProfileImageURL *string   `gorm:"size:512" json:"profile_image_url,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}
