package models

import (
	"testing"
	"time"

	"github.com/diewo77/go-budgets/internal/quoting"
	"github.com/shopspring/decimal"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestQuote_GetUserID(t *testing.T) {
	q := &Quote{UserID: 42, ClientID: 7}
	if got := q.GetUserID(); got != 42 {
		t.Errorf("GetUserID() = %d, want 42", got)
	}
	if got := q.GetClientID(); got != 7 {
		t.Errorf("GetClientID() = %d, want 7", got)
	}
	var _ quoting.Quote = q
	var _ quoting.Quote = &PickingQuote{}
}

func TestValidDates(t *testing.T) {
	issue := time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC)
	tests := []struct {
		name   string
		expiry time.Time
		want   bool
	}{
		{"same day", issue, true},
		{"one month", issue.AddDate(0, 1, 0), true},
		{"exactly one year", issue.AddDate(1, 0, 0), true},
		{"one year and a day", issue.AddDate(1, 0, 1), false},
		{"before issue", issue.AddDate(0, 0, -1), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ValidDates(issue, tt.expiry); got != tt.want {
				t.Errorf("ValidDates() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestQuoteItem_Normalize(t *testing.T) {
	tests := []struct {
		name        string
		item        QuoteItem
		wantTotal   string
		wantVariant bool
		wantSel     bool
	}{
		{"regular", QuoteItem{Quantity: 10, UnitPrice: dec("100")}, "1000", false, false},
		{"variant", QuoteItem{Quantity: 5, UnitPrice: dec("50"), VariantGroup: " A ", IsSelected: true}, "250", true, true},
		{"selected without group", QuoteItem{Quantity: 1, UnitPrice: dec("9.99"), IsSelected: true, IsVariant: true}, "9.99", false, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			it := tt.item
			it.Normalize()
			if !it.Total.Equal(dec(tt.wantTotal)) {
				t.Errorf("Total = %s, want %s", it.Total, tt.wantTotal)
			}
			if it.IsVariant != tt.wantVariant || it.IsSelected != tt.wantSel {
				t.Errorf("IsVariant=%v IsSelected=%v", it.IsVariant, it.IsSelected)
			}
			if it.IsVariant && it.VariantGroup != "A" {
				t.Errorf("group not trimmed: %q", it.VariantGroup)
			}
		})
	}
}

func TestProduct_PriceFor(t *testing.T) {
	p := &Product{Price: dec("12.50")}
	if got := p.PriceFor(nil); !got.Equal(dec("12.50")) {
		t.Errorf("PriceFor(nil) = %s", got)
	}
	plain := &ProductVariant{}
	if got := p.PriceFor(plain); !got.Equal(dec("12.50")) {
		t.Errorf("variant without price = %s", got)
	}
	override := &ProductVariant{Price: decimal.NewNullDecimal(dec("14"))}
	if got := p.PriceFor(override); !got.Equal(dec("14")) {
		t.Errorf("variant override = %s", got)
	}
}

func TestCostScale_CostFor(t *testing.T) {
	c := CostScale{AssemblyCost: dec("1.5"), BubbleWrapCost: dec("0.3")}
	if got := c.CostFor(quoting.CategoryAssembly); !got.Equal(dec("1.5")) {
		t.Errorf("assembly = %s", got)
	}
	if got := c.CostFor(quoting.CategoryBubbleWrap); !got.Equal(dec("0.3")) {
		t.Errorf("bubble wrap = %s", got)
	}
	if got := c.CostFor("unknown"); !got.IsZero() {
		t.Errorf("unknown = %s", got)
	}
}

func TestPickingNumber(t *testing.T) {
	if got := PickingNumber(2026, 7); got != "PK-2026-0007" {
		t.Errorf("PickingNumber = %s", got)
	}
	if got := PickingNumber(2026, 12345); got != "PK-2026-12345" {
		t.Errorf("PickingNumber overflow = %s", got)
	}
}

func TestPickingQuote_BreakdownRoundTrip(t *testing.T) {
	b := quoting.PickingBreakdown{
		ServicesSubtotal: dec("1000"),
		Total:            dec("1494.35"),
		UnitPricePerKit:  dec("14.94"),
	}
	var q PickingQuote
	q.ApplyBreakdown(b)
	got := q.Breakdown()
	if !got.Total.Equal(b.Total) || !got.UnitPricePerKit.Equal(b.UnitPricePerKit) || !got.ServicesSubtotal.Equal(b.ServicesSubtotal) {
		t.Errorf("breakdown mismatch: %+v", got)
	}
	if cols := BreakdownColumns(b); len(cols) != 12 {
		t.Errorf("expected 12 cascade columns, got %d", len(cols))
	}
}

func TestPickingQuote_HasAssembly(t *testing.T) {
	q := PickingQuote{Services: []PickingService{{Category: quoting.CategoryLabeling}}}
	if q.HasAssembly() {
		t.Errorf("expected no assembly")
	}
	q.Services = append(q.Services, PickingService{Category: quoting.CategoryAssembly})
	if !q.HasAssembly() {
		t.Errorf("expected assembly")
	}
}

func TestClient_FullAddress(t *testing.T) {
	c := &Client{Address: "Av. Corrientes 1234", PostalCode: "C1043", City: "CABA", Country: "Argentina"}
	want := "Av. Corrientes 1234\nC1043 CABA\nArgentina"
	if got := c.FullAddress(); got != want {
		t.Errorf("FullAddress() = %q, want %q", got, want)
	}
	if got := (&Client{City: "Rosario"}).FullAddress(); got != "Rosario" {
		t.Errorf("FullAddress() = %q", got)
	}
}

func TestClient_HasContact(t *testing.T) {
	if (&Client{}).HasContact() {
		t.Errorf("empty email should not be a contact")
	}
	if !(&Client{Email: "ana@example.com"}).HasContact() {
		t.Errorf("expected usable contact")
	}
	var nilClient *Client
	if nilClient.HasContact() {
		t.Errorf("nil client has no contact")
	}
	if NormalizeEmail("  Ana@Example.COM ") != "ana@example.com" {
		t.Errorf("NormalizeEmail failed")
	}
}

func TestSplitPermissionCode(t *testing.T) {
	res, act, ok := SplitPermissionCode("quote:override")
	if !ok || res != "quote" || act != "override" {
		t.Errorf("got %q %q %v", res, act, ok)
	}
	if _, _, ok := SplitPermissionCode("broken"); ok {
		t.Errorf("expected no split")
	}
}
