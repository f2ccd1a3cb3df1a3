package db

import (
	"errors"
	"fmt"

	"github.com/diewo77/go-budgets/internal/gate"
	"github.com/diewo77/go-budgets/internal/models"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// SeedOptions carries the bootstrap admin account. Empty values skip it.
type SeedOptions struct {
	AdminEmail    string
	AdminPassword string
}

var crudActions = []gate.Action{gate.ActionList, gate.ActionView, gate.ActionCreate, gate.ActionUpdate, gate.ActionDelete}

var quoteActions = []gate.Action{gate.ActionSend, gate.ActionDuplicate, gate.ActionOverride}

// permissionSet returns every resource:action pair the application checks.
func permissionSet() []models.Permission {
	perms := []models.Permission{{ResourceType: "*", Action: "*", Description: "Full system access"}}
	for _, res := range models.Resources {
		perms = append(perms, models.Permission{ResourceType: res, Action: "*", Description: "All " + res + " actions"})
		actions := crudActions
		if res == models.ResourceQuote || res == models.ResourcePicking {
			actions = append(append([]gate.Action{}, crudActions...), quoteActions...)
		}
		for _, a := range actions {
			perms = append(perms, models.Permission{
				ResourceType: res,
				Action:       string(a),
				Description:  fmt.Sprintf("%s %s", a, res),
			})
		}
	}
	return perms
}

// SeedPermissions creates the permissions, keeping existing rows.
func SeedPermissions(db *gorm.DB) error {
	for _, p := range permissionSet() {
		perm := p
		err := db.Where("resource_type = ? AND action = ?", p.ResourceType, p.Action).
			FirstOrCreate(&perm).Error
		if err != nil {
			return err
		}
	}
	return nil
}

type profileSeed struct {
	Name        string
	Description string
	Permissions []string
}

var systemProfiles = []profileSeed{
	{
		Name:        models.ProfileAdmin,
		Description: "Full system administrator",
		Permissions: []string{"*:*"},
	},
	{
		Name:        models.ProfileManager,
		Description: "Sales manager: every quote, status overrides and reference data",
		Permissions: []string{
			"quote:*", "picking:*", "client:*", "reference:*", "notification:*",
			"user:list", "user:view",
		},
	},
	{
		Name:        models.ProfileSeller,
		Description: "Seller: own quotes only",
		Permissions: []string{
			"quote:list", "quote:view", "quote:create", "quote:update", "quote:send", "quote:duplicate",
			"picking:list", "picking:view", "picking:create", "picking:update", "picking:send", "picking:duplicate",
			"client:list", "client:view", "client:create", "client:update",
			"reference:list", "reference:view",
			"notification:list", "notification:update",
		},
	},
}

// SeedProfiles creates the system profiles and resets their permissions.
func SeedProfiles(db *gorm.DB) error {
	if err := SeedPermissions(db); err != nil {
		return err
	}
	for _, p := range systemProfiles {
		var profile models.Profile
		err := db.Where("name = ?", p.Name).First(&profile).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			profile = models.Profile{Name: p.Name, Description: p.Description, IsSystem: true}
			if err := db.Create(&profile).Error; err != nil {
				return err
			}
		case err != nil:
			return err
		}

		var perms []models.Permission
		for _, code := range p.Permissions {
			resource, action, ok := models.SplitPermissionCode(code)
			if !ok {
				return fmt.Errorf("bad permission code %q", code)
			}
			var perm models.Permission
			if err := db.Where("resource_type = ? AND action = ?", resource, action).First(&perm).Error; err != nil {
				return fmt.Errorf("permission %s: %w", code, err)
			}
			perms = append(perms, perm)
		}
		if err := db.Model(&profile).Association("Permissions").Replace(perms); err != nil {
			return err
		}
	}
	return nil
}

// SeedAdmin creates the admin account once. Existing accounts are not modified.
func SeedAdmin(db *gorm.DB, email, password string) error {
	email = models.NormalizeEmail(email)
	if email == "" || password == "" {
		return nil
	}
	var count int64
	if err := db.Model(&models.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}
	var profile models.Profile
	if err := db.Where("name = ?", models.ProfileAdmin).First(&profile).Error; err != nil {
		return fmt.Errorf("admin profile: %w", err)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	return db.Create(&models.User{
		Email:     email,
		Name:      "Administrator",
		Password:  string(hash),
		IsActive:  true,
		ProfileID: &profile.ID,
	}).Error
}

func intPtr(i int) *int { return &i }

// SeedReference fills empty reference tables with the usual defaults.
func SeedReference(db *gorm.DB) error {
	var n int64
	if err := db.Model(&models.PaymentCondition{}).Count(&n).Error; err != nil {
		return err
	}
	if n == 0 {
		conditions := []models.PaymentCondition{
			{Name: "Contado", Description: "Pago anticipado", Percentage: decimal.NewFromInt(-5), IsActive: true},
			{Name: "30 días", Percentage: decimal.Zero, IsActive: true},
			{Name: "60 días", Percentage: decimal.NewFromInt(5), IsActive: true},
		}
		if err := db.Create(&conditions).Error; err != nil {
			return err
		}
	}

	if err := db.Model(&models.ComponentIncrementRule{}).Count(&n).Error; err != nil {
		return err
	}
	if n == 0 {
		rules := []models.ComponentIncrementRule{
			{QuantityFrom: 1, QuantityTo: intPtr(5), Percentage: decimal.Zero, IsActive: true},
			{QuantityFrom: 6, QuantityTo: intPtr(10), Percentage: decimal.NewFromInt(10), IsActive: true},
			{QuantityFrom: 11, Percentage: decimal.NewFromInt(20), IsActive: true},
		}
		if err := db.Create(&rules).Error; err != nil {
			return err
		}
	}
	return nil
}
