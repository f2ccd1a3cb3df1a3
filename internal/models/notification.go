package models

import "time"

// Notification kinds.
const (
	NotificationDashboard = "dashboard"
)

// Notification is a message shown to a user on their dashboard.
type Notification struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	UserID    uint      `gorm:"index;not null" json:"user_id"` // recipient
	Type      string    `gorm:"size:20;not null" json:"type"`
	Title     string    `gorm:"size:255" json:"title"`
	Message   string    `gorm:"type:text" json:"message"`
	QuoteID   *uint     `json:"quote_id,omitempty"`
	Read      bool      `gorm:"not null" json:"read"`
	SentAt    time.Time `json:"sent_at"`
}
