package models

import (
	"strings"
	"time"

	"github.com/diewo77/go-budgets/internal/quoting"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Quote sources.
const (
	SourceInternal = "internal"
	SourceWeb      = "web"
)

// Quote is a merchandise quote ("presupuesto").
// Implements quoting.Quote and the Ownable interface used by the policy package.
type Quote struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`

	Title string `gorm:"size:255" json:"title"`

	// UserID is the seller that owns the quote.
	UserID uint  `gorm:"index;not null" json:"user_id"`
	User   *User `gorm:"foreignKey:UserID" json:"seller,omitempty"`

	ClientID uint    `gorm:"index;not null" json:"client_id"`
	Client   *Client `gorm:"foreignKey:ClientID" json:"client,omitempty"`

	IssueDate  time.Time      `gorm:"not null" json:"issue_date"`
	ExpiryDate time.Time      `gorm:"not null" json:"expiry_date"`
	Status     quoting.Status `gorm:"size:20;not null;index" json:"status"`

	FooterComments string `gorm:"type:text" json:"footer_comments,omitempty"`
	Source         string `gorm:"size:20;not null" json:"source"`
	// PublicToken identifies the quote in the client-facing approve/reject link.
	PublicToken string `gorm:"size:36;uniqueIndex" json:"public_token"`

	SentAt           *time.Time `json:"sent_at,omitempty"`
	RespondedAt      *time.Time `json:"responded_at,omitempty"`
	DuplicatedFromID *uint      `gorm:"index" json:"duplicated_from_id,omitempty"`

	// Stored by every recalculation.
	Subtotal  decimal.Decimal `gorm:"type:numeric(14,4);not null" json:"subtotal"`
	TaxAmount decimal.Decimal `gorm:"type:numeric(14,4);not null" json:"tax_amount"`
	Total     decimal.Decimal `gorm:"type:numeric(14,4);not null" json:"total"`

	Items []QuoteItem `gorm:"foreignKey:QuoteID" json:"items,omitempty"`
}

// BeforeCreate assigns the public token.
func (q *Quote) BeforeCreate(tx *gorm.DB) error {
	if q.PublicToken == "" {
		q.PublicToken = uuid.NewString()
	}
	return nil
}

func (q *Quote) GetStatus() quoting.Status { return q.Status }
func (q *Quote) GetValidUntil() time.Time { return q.ExpiryDate }
func (q *Quote) GetTotal() decimal.Decimal { return q.Total }
func (q *Quote) GetClientID() uint { return q.ClientID }
func (q *Quote) GetUserID() uint { return q.UserID }

// ApplyTotals stores a recalculation result on the header.
func (q *Quote) ApplyTotals(b quoting.MerchandiseBreakdown) {
	q.Subtotal = b.Subtotal
	q.TaxAmount = b.TaxAmount
	q.Total = b.Total
}

// MaxValidity is the longest allowed distance between issue and expiry dates.
const MaxValidity = 1 // years

// ValidDates reports whether issue <= expiry <= issue + 1 year.
func ValidDates(issue, expiry time.Time) bool {
	if expiry.Before(issue) {
		return false
	}
	return !expiry.After(issue.AddDate(MaxValidity, 0, 0))
}

// QuoteItem is one priced row of a merchandise quote.
type QuoteItem struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`

	QuoteID uint   `gorm:"index;not null" json:"quote_id"`
	Quote   *Quote `gorm:"foreignKey:QuoteID" json:"-"`

	// Product and variant are catalog references; names are copied so the quote
	// survives catalog changes.
	ProductID   uint   `gorm:"index" json:"product_id"`
	VariantID   *uint  `json:"variant_id,omitempty"`
	ProductName string `gorm:"size:255" json:"product_name"`
	VariantName string `gorm:"size:255" json:"variant_name,omitempty"`

	Quantity          int             `gorm:"not null" json:"quantity"`
	UnitPrice         decimal.Decimal `gorm:"type:numeric(14,4);not null" json:"unit_price"`
	ProductionTime    string          `gorm:"size:100" json:"production_time,omitempty"`
	CustomizationNote string          `gorm:"type:text" json:"customization_note,omitempty"`

	// VariantGroup is empty for regular items.
	VariantGroup string `gorm:"size:100;index" json:"variant_group,omitempty"`
	IsVariant    bool   `gorm:"not null" json:"is_variant"`
	IsSelected   bool   `gorm:"not null" json:"is_selected"`

	Total    decimal.Decimal `gorm:"column:line_total;type:numeric(14,4);not null" json:"line_total"`
	Position int             `gorm:"not null" json:"position"`
}

// Normalize trims the group key, derives IsVariant from it and refreshes the stored
// line total. Call it before every write.
func (item *QuoteItem) Normalize() {
	item.VariantGroup = strings.TrimSpace(item.VariantGroup)
	item.IsVariant = item.VariantGroup != ""
	if !item.IsVariant {
		item.IsSelected = false
	}
	item.Total = item.LineTotal()
}

// GroupKey implements quoting.Variant.
func (item QuoteItem) GroupKey() string { return item.VariantGroup }

// IsSelectedOption implements quoting.Variant.
func (item QuoteItem) IsSelectedOption() bool { return item.IsSelected }

// LineTotal is quantity × unit price.
func (item QuoteItem) LineTotal() decimal.Decimal {
	return item.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity)))
}

// Editable reports whether the quote accepts item changes at time now.
func (q *Quote) Editable(now time.Time) bool {
	return quoting.CheckEditable(q, now) == nil
}
