package quoting

import (
	"github.com/diewo77/go-budgets/internal/money"
	"github.com/shopspring/decimal"
)

// DefaultTaxRate is the VAT percentage used when configuration does not say otherwise.
var DefaultTaxRate = decimal.NewFromInt(21)

// TaxRule is the externally configured tax treatment.
type TaxRule struct {
	Rate    decimal.Decimal
	Enabled bool
}

// DefaultTax is 21% VAT, enabled.
func DefaultTax() TaxRule {
	return TaxRule{Rate: DefaultTaxRate, Enabled: true}
}

// Apply returns x with tax added when the rule is enabled.
func (t TaxRule) Apply(x decimal.Decimal) decimal.Decimal {
	return money.WithTax(x, t.Rate, t.Enabled)
}

// Label is the tax line shown on documents.
func (t TaxRule) Label() string {
	if !t.Enabled {
		return "Sin IVA"
	}
	return "IVA " + money.FormatPercent(t.Rate)
}

// Line is anything with a line total.
type Line interface {
	LineTotal() decimal.Decimal
}

// MerchandiseBreakdown is the stored result of a merchandise quote recalculation.
type MerchandiseBreakdown struct {
	Subtotal  decimal.Decimal `json:"subtotal"`
	TaxAmount decimal.Decimal `json:"tax_amount"`
	Total     decimal.Decimal `json:"total"`
}

// MerchandiseTotals sums the given contributing lines and applies tax.
func MerchandiseTotals[L Line](lines []L, tax TaxRule) MerchandiseBreakdown {
	subtotal := decimal.Zero
	for _, l := range lines {
		subtotal = subtotal.Add(l.LineTotal())
	}
	total := tax.Apply(subtotal)
	return MerchandiseBreakdown{
		Subtotal:  subtotal,
		TaxAmount: total.Sub(subtotal),
		Total:     total,
	}
}

// PricedItems resolves variant groups and prices the contributing items.
func PricedItems[T interface {
	Variant
	Line
}](items []T, tax TaxRule) (Grouped[T], MerchandiseBreakdown) {
	grouped := Resolve(items)
	return grouped, MerchandiseTotals(grouped.Contributing(), tax)
}

// PickingInput is everything the picking cascade reads.
type PickingInput struct {
	Services []decimal.Decimal // service subtotals
	Boxes    []decimal.Decimal // box subtotals
	// ComponentIncrementPct is the percentage resolved from the increment rules, zero when none matched.
	ComponentIncrementPct decimal.Decimal
	// PaymentConditionPct may be negative (discount); zero when no condition is set.
	PaymentConditionPct decimal.Decimal
	TotalKits           int
	Tax                 TaxRule
}

// PickingBreakdown holds every stage of the picking cascade.
type PickingBreakdown struct {
	ServicesSubtotal         decimal.Decimal `json:"services_subtotal"`
	ComponentIncrementPct    decimal.Decimal `json:"component_increment_percentage"`
	ComponentIncrementAmount decimal.Decimal `json:"component_increment_amount"`
	SubtotalWithIncrement    decimal.Decimal `json:"subtotal_with_increment"`
	BoxesTotal               decimal.Decimal `json:"boxes_total"`
	PrePaymentSubtotal       decimal.Decimal `json:"pre_payment_subtotal"`
	PaymentConditionPct      decimal.Decimal `json:"payment_condition_percentage"`
	PaymentConditionAmount   decimal.Decimal `json:"payment_condition_amount"`
	SubtotalWithPayment      decimal.Decimal `json:"subtotal_with_payment"`
	TaxAmount                decimal.Decimal `json:"tax_amount"`
	Total                    decimal.Decimal `json:"total"`
	UnitPricePerKit          decimal.Decimal `json:"unit_price_per_kit"`
}

// PickingCascade runs the stages in order. Each stage feeds the next and only the
// per-kit unit price is rounded.
func PickingCascade(in PickingInput) PickingBreakdown {
	var b PickingBreakdown
	b.ServicesSubtotal = money.Sum(in.Services...)
	b.ComponentIncrementPct = in.ComponentIncrementPct
	b.ComponentIncrementAmount = money.Percent(b.ServicesSubtotal, in.ComponentIncrementPct)
	b.SubtotalWithIncrement = b.ServicesSubtotal.Add(b.ComponentIncrementAmount)
	b.BoxesTotal = money.Sum(in.Boxes...)
	b.PrePaymentSubtotal = b.SubtotalWithIncrement.Add(b.BoxesTotal)
	b.PaymentConditionPct = in.PaymentConditionPct
	b.PaymentConditionAmount = money.Percent(b.PrePaymentSubtotal, in.PaymentConditionPct)
	b.SubtotalWithPayment = b.PrePaymentSubtotal.Add(b.PaymentConditionAmount)
	b.Total = in.Tax.Apply(b.SubtotalWithPayment)
	b.TaxAmount = b.Total.Sub(b.SubtotalWithPayment)
	b.UnitPricePerKit = money.Split(b.Total, in.TotalKits)
	return b
}
