package handlers

import (
	"net/http"

	"github.com/diewo77/go-budgets/httpx"
	"github.com/diewo77/go-budgets/internal/config"
	"github.com/shopspring/decimal"
)

// SettingsHandler exposes the pricing settings the quote forms need.
type SettingsHandler struct {
	pricing config.PricingConfig
}

func NewSettingsHandler(pricing config.PricingConfig) *SettingsHandler {
	return &SettingsHandler{pricing: pricing}
}

type settingsResponse struct {
	TaxRate         decimal.Decimal `json:"tax_rate"`
	TaxEnabled      bool            `json:"tax_enabled"`
	TaxLabel        string          `json:"tax_label"`
	ValidityDays    int             `json:"validity_days"`
	MaxActiveSlides int             `json:"max_active_slides"`
}

func (h *SettingsHandler) Show(w http.ResponseWriter, r *http.Request) {
	httpx.JSON(w, http.StatusOK, settingsResponse{
		TaxRate:         h.pricing.TaxRate,
		TaxEnabled:      h.pricing.TaxEnabled,
		TaxLabel:        h.pricing.Tax().Label(),
		ValidityDays:    h.pricing.ValidityDays,
		MaxActiveSlides: h.pricing.MaxActiveSlides,
	})
}
