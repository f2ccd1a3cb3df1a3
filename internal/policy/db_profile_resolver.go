package policy

import (
	"context"
	"errors"

	"github.com/diewo77/go-budgets/internal/gate"
	"github.com/diewo77/go-budgets/internal/models"
	"gorm.io/gorm"
)

// DBProfileResolver fetches user profiles from the database.
type DBProfileResolver struct {
	DB *gorm.DB
}

// NewDBProfileResolver creates a new database-backed profile resolver.
func NewDBProfileResolver(db *gorm.DB) *DBProfileResolver {
	return &DBProfileResolver{DB: db}
}

// Resolve loads the user's profile with its permissions. Unknown or inactive
// users and users without a profile resolve to nil.
func (r *DBProfileResolver) Resolve(ctx context.Context, userID uint) (gate.Profile, error) {
	var user models.User
	err := r.DB.WithContext(ctx).Preload("Profile.Permissions").First(&user, userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if !user.IsActive || user.Profile == nil {
		return nil, nil
	}
	return &dbProfileAdapter{profile: user.Profile}, nil
}

// dbProfileAdapter exposes a models.Profile as gate.Profile.
type dbProfileAdapter struct {
	profile *models.Profile
}

func (a *dbProfileAdapter) ID() uint     { return a.profile.ID }
func (a *dbProfileAdapter) Name() string { return a.profile.Name }

func (a *dbProfileAdapter) HasPermission(perm gate.Permission) bool {
	for _, p := range a.Permissions() {
		if p.Matches(perm) {
			return true
		}
	}
	return false
}

func (a *dbProfileAdapter) Permissions() []gate.Permission {
	result := make([]gate.Permission, len(a.profile.Permissions))
	for i, p := range a.profile.Permissions {
		result[i] = gate.Permission(p.Code())
	}
	return result
}
