package models

import (
	"strings"
	"time"

	"github.com/diewo77/go-budgets/internal/quoting"
	"gorm.io/gorm"
)

// Client is a customer quotes are addressed to. Clients are shared by the whole
// sales team and looked up by email when a quote request comes in.
type Client struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`

	Name    string `gorm:"size:255;not null" json:"name"`
	Email   string `gorm:"size:255;index" json:"email,omitempty"`
	Phone   string `gorm:"size:50" json:"phone,omitempty"`
	Company string `gorm:"size:255" json:"company,omitempty"`
	TaxID   string `gorm:"size:20" json:"tax_id,omitempty"`

	// Address
	Address    string `gorm:"size:500" json:"address,omitempty"`
	City       string `gorm:"size:100" json:"city,omitempty"`
	PostalCode string `gorm:"size:20" json:"postal_code,omitempty"`
	Country    string `gorm:"size:100" json:"country,omitempty"`
}

// NormalizeEmail is the form client emails are stored and searched in.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// HasContact reports whether a quote can be sent to this client.
func (c *Client) HasContact() bool {
	return c != nil && quoting.UsableContact(c.Email)
}

// FullAddress returns the address lines joined for documents.
func (c *Client) FullAddress() string {
	var lines []string
	if c.Address != "" {
		lines = append(lines, c.Address)
	}
	if city := strings.TrimSpace(c.PostalCode + " " + c.City); city != "" {
		lines = append(lines, city)
	}
	if c.Country != "" {
		lines = append(lines, c.Country)
	}
	return strings.Join(lines, "\n")
}
