package models

import "time"

// AssignmentTypeMerchBudget is the rotation used for web quote requests.
const AssignmentTypeMerchBudget = "merch_budget"

// SellerAssignment remembers the last seller handed out for one assignment type.
// Only the round-robin assignor writes it, always under a row lock.
type SellerAssignment struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
	AssignmentType string    `gorm:"size:50;uniqueIndex;not null" json:"assignment_type"`
	LastSellerID   *uint     `json:"last_seller_id,omitempty"`
}

// DocumentSequence is a locked counter, one row per key (e.g. "picking:2026").
type DocumentSequence struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Name      string    `gorm:"size:50;uniqueIndex;not null" json:"name"`
	Value     int       `gorm:"not null" json:"value"`
}
