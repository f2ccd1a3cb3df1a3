package models

import (
	"fmt"
	"time"

	"github.com/diewo77/go-budgets/internal/money"
	"github.com/diewo77/go-budgets/internal/quoting"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// PickingQuote prices kitting work: services applied to every kit plus packaging boxes.
type PickingQuote struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`

	// Number has the form PK-YYYY-NNNN.
	Number string `gorm:"size:20;uniqueIndex;not null" json:"number"`

	// UserID is the vendor that owns the quote.
	UserID uint  `gorm:"index;not null" json:"user_id"`
	User   *User `gorm:"foreignKey:UserID" json:"vendor,omitempty"`

	ClientID uint    `gorm:"index;not null" json:"client_id"`
	Client   *Client `gorm:"foreignKey:ClientID" json:"client,omitempty"`

	TotalKits        int            `gorm:"not null" json:"total_kits"`
	ComponentsPerKit int            `gorm:"not null" json:"components_per_kit"`
	Status           quoting.Status `gorm:"size:20;not null;index" json:"status"`
	ValidUntil       time.Time      `gorm:"not null" json:"valid_until"`
	Notes            string         `gorm:"type:text" json:"notes,omitempty"`

	PaymentConditionID *uint             `gorm:"index" json:"payment_condition_id,omitempty"`
	PaymentCondition   *PaymentCondition `gorm:"foreignKey:PaymentConditionID" json:"payment_condition,omitempty"`

	PublicToken      string     `gorm:"size:36;uniqueIndex" json:"public_token"`
	SentAt           *time.Time `json:"sent_at,omitempty"`
	RespondedAt      *time.Time `json:"responded_at,omitempty"`
	DuplicatedFromID *uint      `gorm:"index" json:"duplicated_from_id,omitempty"`

	// Cascade results, stored by every recalculation.
	ServicesSubtotal         decimal.Decimal `gorm:"type:numeric(14,4);not null" json:"services_subtotal"`
	ComponentIncrementPct    decimal.Decimal `gorm:"column:component_increment_percentage;type:numeric(7,4);not null" json:"component_increment_percentage"`
	ComponentIncrementAmount decimal.Decimal `gorm:"type:numeric(14,4);not null" json:"component_increment_amount"`
	SubtotalWithIncrement    decimal.Decimal `gorm:"type:numeric(14,4);not null" json:"subtotal_with_increment"`
	BoxesTotal               decimal.Decimal `gorm:"type:numeric(14,4);not null" json:"boxes_total"`
	PrePaymentSubtotal       decimal.Decimal `gorm:"type:numeric(14,4);not null" json:"pre_payment_subtotal"`
	PaymentConditionPct      decimal.Decimal `gorm:"column:payment_condition_percentage;type:numeric(7,4);not null" json:"payment_condition_percentage"`
	PaymentConditionAmount   decimal.Decimal `gorm:"type:numeric(14,4);not null" json:"payment_condition_amount"`
	SubtotalWithPayment      decimal.Decimal `gorm:"type:numeric(14,4);not null" json:"subtotal_with_payment"`
	TaxAmount                decimal.Decimal `gorm:"type:numeric(14,4);not null" json:"tax_amount"`
	Total                    decimal.Decimal `gorm:"type:numeric(14,4);not null" json:"total"`
	UnitPricePerKit          decimal.Decimal `gorm:"type:numeric(14,2);not null" json:"unit_price_per_kit"`

	Services []PickingService `gorm:"foreignKey:PickingQuoteID" json:"services,omitempty"`
	Boxes    []PickingBox     `gorm:"foreignKey:PickingQuoteID" json:"boxes,omitempty"`
}

// BeforeCreate assigns the public token.
func (q *PickingQuote) BeforeCreate(tx *gorm.DB) error {
	if q.PublicToken == "" {
		q.PublicToken = uuid.NewString()
	}
	return nil
}

func (q *PickingQuote) GetStatus() quoting.Status { return q.Status }
func (q *PickingQuote) GetValidUntil() time.Time { return q.ValidUntil }
func (q *PickingQuote) GetTotal() decimal.Decimal { return q.Total }
func (q *PickingQuote) GetClientID() uint { return q.ClientID }
func (q *PickingQuote) GetUserID() uint { return q.UserID }

// ApplyBreakdown copies every cascade stage onto the header.
func (q *PickingQuote) ApplyBreakdown(b quoting.PickingBreakdown) {
	q.ServicesSubtotal = b.ServicesSubtotal
	q.ComponentIncrementPct = b.ComponentIncrementPct
	q.ComponentIncrementAmount = b.ComponentIncrementAmount
	q.SubtotalWithIncrement = b.SubtotalWithIncrement
	q.BoxesTotal = b.BoxesTotal
	q.PrePaymentSubtotal = b.PrePaymentSubtotal
	q.PaymentConditionPct = b.PaymentConditionPct
	q.PaymentConditionAmount = b.PaymentConditionAmount
	q.SubtotalWithPayment = b.SubtotalWithPayment
	q.TaxAmount = b.TaxAmount
	q.Total = b.Total
	q.UnitPricePerKit = b.UnitPricePerKit
}

// Breakdown returns the stored cascade.
func (q *PickingQuote) Breakdown() quoting.PickingBreakdown {
	return quoting.PickingBreakdown{
		ServicesSubtotal:         q.ServicesSubtotal,
		ComponentIncrementPct:    q.ComponentIncrementPct,
		ComponentIncrementAmount: q.ComponentIncrementAmount,
		SubtotalWithIncrement:    q.SubtotalWithIncrement,
		BoxesTotal:               q.BoxesTotal,
		PrePaymentSubtotal:       q.PrePaymentSubtotal,
		PaymentConditionPct:      q.PaymentConditionPct,
		PaymentConditionAmount:   q.PaymentConditionAmount,
		SubtotalWithPayment:      q.SubtotalWithPayment,
		TaxAmount:                q.TaxAmount,
		Total:                    q.Total,
		UnitPricePerKit:          q.UnitPricePerKit,
	}
}

// BreakdownColumns maps the stored cascade to column names for a single UPDATE.
func BreakdownColumns(b quoting.PickingBreakdown) map[string]any {
	return map[string]any{
		"services_subtotal":              b.ServicesSubtotal,
		"component_increment_percentage": b.ComponentIncrementPct,
		"component_increment_amount":     b.ComponentIncrementAmount,
		"subtotal_with_increment":        b.SubtotalWithIncrement,
		"boxes_total":                    b.BoxesTotal,
		"pre_payment_subtotal":           b.PrePaymentSubtotal,
		"payment_condition_percentage":   b.PaymentConditionPct,
		"payment_condition_amount":       b.PaymentConditionAmount,
		"subtotal_with_payment":          b.SubtotalWithPayment,
		"tax_amount":                     b.TaxAmount,
		"total":                          b.Total,
		"unit_price_per_kit":             b.UnitPricePerKit,
	}
}

// HasAssembly reports whether at least one assembly service is loaded.
func (q *PickingQuote) HasAssembly() bool {
	for _, s := range q.Services {
		if s.Category == quoting.CategoryAssembly {
			return true
		}
	}
	return false
}

// PickingService is one kitting service line.
type PickingService struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`

	PickingQuoteID uint                    `gorm:"index;not null" json:"picking_quote_id"`
	Category       quoting.ServiceCategory `gorm:"size:40;not null;index" json:"category"`
	Description    string                  `gorm:"size:500" json:"description,omitempty"`
	UnitCost       decimal.Decimal         `gorm:"type:numeric(14,4);not null" json:"unit_cost"`
	Quantity       int                     `gorm:"not null" json:"quantity"`
	Subtotal       decimal.Decimal         `gorm:"type:numeric(14,4);not null" json:"subtotal"`
}

// Normalize refreshes the stored subtotal.
func (s *PickingService) Normalize() {
	s.Subtotal = money.Times(s.UnitCost, s.Quantity)
}

// PickingBox is a packaging box line. Dimensions and cost are copied from the catalog box.
type PickingBox struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`

	PickingQuoteID uint          `gorm:"index;not null" json:"picking_quote_id"`
	PackagingBoxID uint          `gorm:"index;not null" json:"packaging_box_id"`
	PackagingBox   *PackagingBox `gorm:"foreignKey:PackagingBoxID" json:"-"`

	Name     string          `gorm:"size:255" json:"name"`
	LengthCM decimal.Decimal `gorm:"type:numeric(10,2);not null" json:"length_cm"`
	WidthCM  decimal.Decimal `gorm:"type:numeric(10,2);not null" json:"width_cm"`
	HeightCM decimal.Decimal `gorm:"type:numeric(10,2);not null" json:"height_cm"`
	UnitCost decimal.Decimal `gorm:"type:numeric(14,4);not null" json:"unit_cost"`
	Quantity int             `gorm:"not null" json:"quantity"`
	Subtotal decimal.Decimal `gorm:"type:numeric(14,4);not null" json:"subtotal"`
}

// Normalize refreshes the stored subtotal.
func (b *PickingBox) Normalize() {
	b.Subtotal = money.Times(b.UnitCost, b.Quantity)
}

// Dimensions renders "L x W x H cm".
func (b *PickingBox) Dimensions() string {
	return fmt.Sprintf("%s x %s x %s cm", b.LengthCM.String(), b.WidthCM.String(), b.HeightCM.String())
}

// SnapshotFrom copies the catalog box into the line.
func (b *PickingBox) SnapshotFrom(box *PackagingBox) {
	b.PackagingBoxID = box.ID
	b.Name = box.Name
	b.LengthCM = box.LengthCM
	b.WidthCM = box.WidthCM
	b.HeightCM = box.HeightCM
	b.UnitCost = box.UnitCost
}

// PickingNumber formats a picking quote number.
func PickingNumber(year, seq int) string {
	return fmt.Sprintf("PK-%d-%04d", year, seq)
}
