package services

import (
	"time"

	"github.com/diewo77/go-budgets/internal/models"
	"github.com/diewo77/go-budgets/internal/money"
	"github.com/diewo77/go-budgets/internal/quoting"
	"github.com/shopspring/decimal"
)

// PartySnapshot is the client or seller block of a document.
type PartySnapshot struct {
	ID      uint   `json:"id"`
	Name    string `json:"name"`
	Email   string `json:"email,omitempty"`
	Phone   string `json:"phone,omitempty"`
	Company string `json:"company,omitempty"`
	Address string `json:"address,omitempty"`
}

func clientParty(c *models.Client) PartySnapshot {
	if c == nil {
		return PartySnapshot{}
	}
	return PartySnapshot{ID: c.ID, Name: c.Name, Email: c.Email, Phone: c.Phone, Company: c.Company, Address: c.FullAddress()}
}

func userParty(u *models.User) PartySnapshot {
	if u == nil {
		return PartySnapshot{}
	}
	return PartySnapshot{ID: u.ID, Name: u.DisplayName(), Email: u.Email, Phone: u.Phone}
}

// ItemSnapshot is one resolved merchandise line.
type ItemSnapshot struct {
	ID                uint            `json:"id"`
	ProductName       string          `json:"product_name"`
	VariantName       string          `json:"variant_name,omitempty"`
	Quantity          int             `json:"quantity"`
	UnitPrice         decimal.Decimal `json:"unit_price"`
	LineTotal         decimal.Decimal `json:"line_total"`
	ProductionTime    string          `json:"production_time,omitempty"`
	CustomizationNote string          `json:"customization_note,omitempty"`
	Selected          bool            `json:"selected"`
}

func itemSnapshot(it models.QuoteItem, selected bool) ItemSnapshot {
	return ItemSnapshot{
		ID:                it.ID,
		ProductName:       it.ProductName,
		VariantName:       it.VariantName,
		Quantity:          it.Quantity,
		UnitPrice:         it.UnitPrice,
		LineTotal:         it.LineTotal(),
		ProductionTime:    it.ProductionTime,
		CustomizationNote: it.CustomizationNote,
		Selected:          selected,
	}
}

// GroupSnapshot lists the options of one variant group; exactly one is Selected.
type GroupSnapshot struct {
	Key      string         `json:"key"`
	Options  []ItemSnapshot `json:"options"`
	Explicit bool           `json:"explicit"`
}

// QuoteSnapshot is a fully resolved merchandise quote, enough to render a document
// or an email without running any business logic.
type QuoteSnapshot struct {
	ID                 uint             `json:"id"`
	Title              string           `json:"title"`
	Status             quoting.Status   `json:"status"`
	EffectiveStatus    quoting.Status   `json:"effective_status"`
	AllowedTransitions []quoting.Status `json:"allowed_transitions"`
	Editable           bool             `json:"editable"`
	IssueDate          time.Time        `json:"issue_date"`
	ExpiryDate         time.Time        `json:"expiry_date"`
	Source             string           `json:"source"`
	PublicToken        string           `json:"public_token"`
	FooterComments     string           `json:"footer_comments,omitempty"`
	Seller             PartySnapshot    `json:"seller"`
	Client             PartySnapshot    `json:"client"`
	Regular            []ItemSnapshot   `json:"regular_items"`
	Groups             []GroupSnapshot  `json:"variant_groups"`
	Subtotal           decimal.Decimal  `json:"subtotal"`
	TaxAmount          decimal.Decimal  `json:"tax_amount"`
	Total              decimal.Decimal  `json:"total"`
	TaxLabel           string           `json:"tax_label"`
	TotalText          string           `json:"total_text"`
}

// Snapshot resolves q as seen by actor at time now. q must have Client, User and Items loaded.
func (s *QuoteService) Snapshot(q *models.Quote, actor quoting.Actor) QuoteSnapshot {
	now := s.opts.Now()
	eff := quoting.EffectiveStatus(q, now)
	grouped := quoting.Resolve(q.Items)

	snap := QuoteSnapshot{
		ID:                 q.ID,
		Title:              q.Title,
		Status:             q.Status,
		EffectiveStatus:    eff,
		AllowedTransitions: quoting.AllowedTransitions(eff, actor),
		Editable:           quoting.CanEdit(eff),
		IssueDate:          q.IssueDate,
		ExpiryDate:         q.ExpiryDate,
		Source:             q.Source,
		PublicToken:        q.PublicToken,
		FooterComments:     q.FooterComments,
		Seller:             userParty(q.User),
		Client:             clientParty(q.Client),
		Regular:            make([]ItemSnapshot, 0, len(grouped.Regular)),
		Groups:             make([]GroupSnapshot, 0, len(grouped.Groups)),
		Subtotal:           q.Subtotal,
		TaxAmount:          q.TaxAmount,
		Total:              q.Total,
		TaxLabel:           s.opts.Tax.Label(),
		TotalText:          money.Format(q.Total),
	}
	for _, it := range grouped.Regular {
		snap.Regular = append(snap.Regular, itemSnapshot(it, true))
	}
	for _, g := range grouped.Groups {
		gs := GroupSnapshot{Key: g.Key, Explicit: g.Explicit()}
		for i, it := range g.Items {
			gs.Options = append(gs.Options, itemSnapshot(it, i == g.Selected))
		}
		snap.Groups = append(snap.Groups, gs)
	}
	return snap
}

// ServiceSnapshot is one picking service line with its category label.
type ServiceSnapshot struct {
	ID            uint                    `json:"id"`
	Category      quoting.ServiceCategory `json:"category"`
	CategoryLabel string                  `json:"category_label"`
	Description   string                  `json:"description,omitempty"`
	UnitCost      decimal.Decimal         `json:"unit_cost"`
	Quantity      int                     `json:"quantity"`
	Subtotal      decimal.Decimal         `json:"subtotal"`
}

// BoxSnapshot is one picking box line.
type BoxSnapshot struct {
	ID         uint            `json:"id"`
	Name       string          `json:"name"`
	Dimensions string          `json:"dimensions"`
	UnitCost   decimal.Decimal `json:"unit_cost"`
	Quantity   int             `json:"quantity"`
	Subtotal   decimal.Decimal `json:"subtotal"`
}

// PickingSnapshot is a fully resolved picking quote with every cascade stage.
type PickingSnapshot struct {
	ID                    uint                     `json:"id"`
	Number                string                   `json:"number"`
	Status                quoting.Status           `json:"status"`
	EffectiveStatus       quoting.Status           `json:"effective_status"`
	AllowedTransitions    []quoting.Status         `json:"allowed_transitions"`
	Editable              bool                     `json:"editable"`
	ValidUntil            time.Time                `json:"valid_until"`
	PublicToken           string                   `json:"public_token"`
	Notes                 string                   `json:"notes,omitempty"`
	TotalKits             int                      `json:"total_kits"`
	ComponentsPerKit      int                      `json:"components_per_kit"`
	Vendor                PartySnapshot            `json:"vendor"`
	Client                PartySnapshot            `json:"client"`
	Services              []ServiceSnapshot        `json:"services"`
	Boxes                 []BoxSnapshot            `json:"boxes"`
	Breakdown             quoting.PickingBreakdown `json:"breakdown"`
	PaymentConditionLabel string                   `json:"payment_condition_label,omitempty"`
	TaxLabel              string                   `json:"tax_label"`
	TotalText             string                   `json:"total_text"`
}

// Snapshot resolves q as seen by actor. q must be loaded with Get.
func (s *PickingQuoteService) Snapshot(q *models.PickingQuote, actor quoting.Actor) PickingSnapshot {
	eff := quoting.EffectiveStatus(q, s.opts.Now())
	snap := PickingSnapshot{
		ID:                 q.ID,
		Number:             q.Number,
		Status:             q.Status,
		EffectiveStatus:    eff,
		AllowedTransitions: quoting.AllowedTransitions(eff, actor),
		Editable:           quoting.CanEdit(eff),
		ValidUntil:         q.ValidUntil,
		PublicToken:        q.PublicToken,
		Notes:              q.Notes,
		TotalKits:          q.TotalKits,
		ComponentsPerKit:   q.ComponentsPerKit,
		Vendor:             userParty(q.User),
		Client:             clientParty(q.Client),
		Services:           make([]ServiceSnapshot, 0, len(q.Services)),
		Boxes:              make([]BoxSnapshot, 0, len(q.Boxes)),
		Breakdown:          q.Breakdown(),
		TaxLabel:           s.opts.Tax.Label(),
		TotalText:          money.Format(q.Total),
	}
	if pc := q.PaymentCondition; pc != nil {
		snap.PaymentConditionLabel = pc.Name + " (" + money.FormatPercent(pc.Percentage) + ")"
	}
	for _, svc := range q.Services {
		snap.Services = append(snap.Services, ServiceSnapshot{
			ID:            svc.ID,
			Category:      svc.Category,
			CategoryLabel: svc.Category.Label(),
			Description:   svc.Description,
			UnitCost:      svc.UnitCost,
			Quantity:      svc.Quantity,
			Subtotal:      svc.Subtotal,
		})
	}
	for _, b := range q.Boxes {
		snap.Boxes = append(snap.Boxes, BoxSnapshot{
			ID:         b.ID,
			Name:       b.Name,
			Dimensions: b.Dimensions(),
			UnitCost:   b.UnitCost,
			Quantity:   b.Quantity,
			Subtotal:   b.Subtotal,
		})
	}
	return snap
}

// QuoteSummary is one row of a quote listing.
type QuoteSummary struct {
	ID              uint            `json:"id"`
	Title           string          `json:"title"`
	ClientID        uint            `json:"client_id"`
	ClientName      string          `json:"client_name"`
	SellerID        uint            `json:"seller_id"`
	Status          quoting.Status  `json:"status"`
	EffectiveStatus quoting.Status  `json:"effective_status"`
	Source          string          `json:"source"`
	IssueDate       time.Time       `json:"issue_date"`
	ExpiryDate      time.Time       `json:"expiry_date"`
	Total           decimal.Decimal `json:"total"`
}

// Summaries turns List results into listing rows.
func (s *QuoteService) Summaries(quotes []models.Quote) []QuoteSummary {
	now := s.opts.Now()
	out := make([]QuoteSummary, 0, len(quotes))
	for i := range quotes {
		q := &quotes[i]
		out = append(out, QuoteSummary{
			ID:              q.ID,
			Title:           q.Title,
			ClientID:        q.ClientID,
			ClientName:      clientParty(q.Client).Name,
			SellerID:        q.UserID,
			Status:          q.Status,
			EffectiveStatus: quoting.EffectiveStatus(q, now),
			Source:          q.Source,
			IssueDate:       q.IssueDate,
			ExpiryDate:      q.ExpiryDate,
			Total:           q.Total,
		})
	}
	return out
}

// PickingSummary is one row of a picking quote listing.
type PickingSummary struct {
	ID              uint            `json:"id"`
	Number          string          `json:"number"`
	ClientID        uint            `json:"client_id"`
	ClientName      string          `json:"client_name"`
	VendorID        uint            `json:"vendor_id"`
	Status          quoting.Status  `json:"status"`
	EffectiveStatus quoting.Status  `json:"effective_status"`
	TotalKits       int             `json:"total_kits"`
	ValidUntil      time.Time       `json:"valid_until"`
	Total           decimal.Decimal `json:"total"`
	UnitPricePerKit decimal.Decimal `json:"unit_price_per_kit"`
}

// Summaries turns List results into listing rows.
func (s *PickingQuoteService) Summaries(quotes []models.PickingQuote) []PickingSummary {
	now := s.opts.Now()
	out := make([]PickingSummary, 0, len(quotes))
	for i := range quotes {
		q := &quotes[i]
		out = append(out, PickingSummary{
			ID:              q.ID,
			Number:          q.Number,
			ClientID:        q.ClientID,
			ClientName:      clientParty(q.Client).Name,
			VendorID:        q.UserID,
			Status:          q.Status,
			EffectiveStatus: quoting.EffectiveStatus(q, now),
			TotalKits:       q.TotalKits,
			ValidUntil:      q.ValidUntil,
			Total:           q.Total,
			UnitPricePerKit: q.UnitPricePerKit,
		})
	}
	return out
}
