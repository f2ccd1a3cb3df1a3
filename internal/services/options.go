// Package services implements the quote lifecycle on top of the pure engine in
// package quoting: every mutation runs in one transaction and ends with an explicit
// recalculation of the stored totals.
package services

import (
	"time"

	"github.com/diewo77/go-budgets/internal/config"
	"github.com/diewo77/go-budgets/internal/logger"
	"github.com/diewo77/go-budgets/internal/models"
	"github.com/diewo77/go-budgets/internal/quoting"
	"go.uber.org/zap"
)

// Options is the configuration shared by the services.
type Options struct {
	// Tax is used as given; the zero value means no tax.
	Tax          quoting.TaxRule
	ValidityDays int
	// SellerProfile names the profile of the users in the seller rotation.
	SellerProfile string
	Log           *zap.Logger
	Now           func() time.Time
}

// OptionsFromConfig builds Options from the loaded configuration.
func OptionsFromConfig(cfg *config.Config, log *zap.Logger) Options {
	return Options{
		Tax:           cfg.Pricing.Tax(),
		ValidityDays:  cfg.Pricing.ValidityDays,
		SellerProfile: cfg.App.SellerProfile,
		Log:           log,
	}
}

func (o Options) withDefaults() Options {
	if o.ValidityDays <= 0 {
		o.ValidityDays = 30
	}
	if o.ValidityDays > config.MaxValidityDays {
		o.ValidityDays = config.MaxValidityDays
	}
	if o.SellerProfile == "" {
		o.SellerProfile = models.ProfileSeller
	}
	o.Log = logger.OrNop(o.Log)
	if o.Now == nil {
		o.Now = time.Now
	}
	return o
}

// today is now truncated to its calendar date, in UTC.
func (o Options) today() time.Time {
	return dateOnly(o.Now())
}

func dateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
