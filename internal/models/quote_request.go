package models

import (
	"time"

	"gorm.io/datatypes"
)

// QuoteRequest records an inbound web request together with the quote it produced.
type QuoteRequest struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	Email     string         `gorm:"size:255;index" json:"email"`
	ClientID  uint           `gorm:"index" json:"client_id"`
	QuoteID   uint           `gorm:"index" json:"quote_id"`
	SellerID  uint           `gorm:"index" json:"seller_id"`
	Payload   datatypes.JSON `json:"payload"`
}
