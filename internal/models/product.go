package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Product is a catalog article offered on merchandise quotes.
// The catalog is kept in sync by an external process.
type Product struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`

	Code        string          `gorm:"size:50;not null;uniqueIndex" json:"code"`
	Name        string          `gorm:"size:255;not null" json:"name"`
	Description string          `gorm:"type:text" json:"description,omitempty"`
	Price       decimal.Decimal `gorm:"type:numeric(14,4);not null" json:"price"`
	// ProductionTime is the usual lead time, e.g. "15 días hábiles".
	ProductionTime string `gorm:"size:100" json:"production_time,omitempty"`
	IsActive       bool   `gorm:"not null" json:"is_active"`

	Variants []ProductVariant `gorm:"foreignKey:ProductID" json:"variants,omitempty"`
}

// ProductVariant is a color, size or print option of a product.
type ProductVariant struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`

	ProductID uint   `gorm:"index;not null" json:"product_id"`
	Name      string `gorm:"size:255;not null" json:"name"`
	// Price overrides the product price when set.
	Price decimal.NullDecimal `gorm:"type:numeric(14,4)" json:"price"`
}

// PriceFor returns the unit price of the product, or of the variant when it overrides it.
func (p *Product) PriceFor(v *ProductVariant) decimal.Decimal {
	if v != nil && v.Price.Valid {
		return v.Price.Decimal
	}
	return p.Price
}
