package models

import (
	"time"

	"gorm.io/gorm"
)

// User is an authenticated member of the sales team.
// Sellers are active users whose profile is the seller profile.
type User struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
	Email     string         `gorm:"uniqueIndex;size:255;not null" json:"email"`
	Name      string         `gorm:"size:255" json:"name,omitempty"`
	Phone     string         `gorm:"size:50" json:"phone,omitempty"`
	Password  string         `gorm:"size:255;not null" json:"-"` // bcrypt hash
	// IsActive false takes the user out of the seller rotation and blocks login.
	IsActive bool `gorm:"not null;index" json:"is_active"`
	// ProfileID links the user to an authorization profile.
	// A nil value means the user has no profile assigned (limited access).
	ProfileID *uint    `gorm:"index" json:"profile_id,omitempty"`
	Profile   *Profile `gorm:"foreignKey:ProfileID" json:"profile,omitempty"`
}

// DisplayName returns the name, or the email when no name is set.
func (u *User) DisplayName() string {
	if u.Name != "" {
		return u.Name
	}
	return u.Email
}
