package models

import (
	"time"

	"github.com/diewo77/go-budgets/internal/quoting"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// PaymentCondition adjusts a picking quote by a percentage agreed with the client:
// negative for a discount, positive for a surcharge.
type PaymentCondition struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`

	Name        string          `gorm:"size:100;not null" json:"name"`
	Description string          `gorm:"size:500" json:"description,omitempty"`
	Percentage  decimal.Decimal `gorm:"type:numeric(7,4);not null" json:"percentage"`
	IsActive    bool            `gorm:"not null" json:"is_active"`
}

// PackagingBox is a catalog box that picking quotes can include.
type PackagingBox struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`

	Name     string          `gorm:"size:255;not null" json:"name"`
	LengthCM decimal.Decimal `gorm:"type:numeric(10,2);not null" json:"length_cm"`
	WidthCM  decimal.Decimal `gorm:"type:numeric(10,2);not null" json:"width_cm"`
	HeightCM decimal.Decimal `gorm:"type:numeric(10,2);not null" json:"height_cm"`
	UnitCost decimal.Decimal `gorm:"type:numeric(14,4);not null" json:"unit_cost"`
	IsActive bool            `gorm:"not null" json:"is_active"`
}

// ComponentIncrementRule adds a percentage to the services subtotal depending on
// how many components go into each kit.
type ComponentIncrementRule struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`

	QuantityFrom int             `gorm:"not null;index" json:"from"`
	QuantityTo   *int            `json:"to"`
	Percentage   decimal.Decimal `gorm:"type:numeric(7,4);not null" json:"percentage"`
	IsActive     bool            `gorm:"not null" json:"is_active"`
}

func (r ComponentIncrementRule) RangeFrom() int { return r.QuantityFrom }
func (r ComponentIncrementRule) RangeTo() *int { return r.QuantityTo }
func (r ComponentIncrementRule) Active() bool { return r.IsActive }

// CostScale holds the default unit cost of each service category for a range of kit counts.
type CostScale struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`

	QuantityFrom int  `gorm:"not null;index" json:"from"`
	QuantityTo   *int `json:"to"`
	IsActive     bool `gorm:"not null" json:"is_active"`

	AssemblyCost           decimal.Decimal `gorm:"type:numeric(14,4);not null" json:"assembly_cost"`
	PalletizingCost        decimal.Decimal `gorm:"type:numeric(14,4);not null" json:"palletizing_cost"`
	LabelingCost           decimal.Decimal `gorm:"type:numeric(14,4);not null" json:"labeling_cost"`
	DomeStickingCost       decimal.Decimal `gorm:"type:numeric(14,4);not null" json:"dome_sticking_cost"`
	AdditionalAssemblyCost decimal.Decimal `gorm:"type:numeric(14,4);not null" json:"additional_assembly_cost"`
	QualityControlCost     decimal.Decimal `gorm:"type:numeric(14,4);not null" json:"quality_control_cost"`
	ShavingsCost           decimal.Decimal `gorm:"type:numeric(14,4);not null" json:"shavings_cost"`
	BagCost                decimal.Decimal `gorm:"type:numeric(14,4);not null" json:"bag_cost"`
	BubbleWrapCost         decimal.Decimal `gorm:"type:numeric(14,4);not null" json:"bubble_wrap_cost"`
}

func (c CostScale) RangeFrom() int { return c.QuantityFrom }
func (c CostScale) RangeTo() *int { return c.QuantityTo }
func (c CostScale) Active() bool { return c.IsActive }

// CostFor returns the unit cost of a service category; unknown categories cost zero.
func (c CostScale) CostFor(cat quoting.ServiceCategory) decimal.Decimal {
	switch cat {
	case quoting.CategoryAssembly:
		return c.AssemblyCost
	case quoting.CategoryPalletizing:
		return c.PalletizingCost
	case quoting.CategoryLabeling:
		return c.LabelingCost
	case quoting.CategoryDomeSticking:
		return c.DomeStickingCost
	case quoting.CategoryAdditionalAssembly:
		return c.AdditionalAssemblyCost
	case quoting.CategoryQualityControl:
		return c.QualityControlCost
	case quoting.CategoryShavings:
		return c.ShavingsCost
	case quoting.CategoryBag:
		return c.BagCost
	case quoting.CategoryBubbleWrap:
		return c.BubbleWrapCost
	}
	return decimal.Zero
}
