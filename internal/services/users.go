package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/diewo77/go-budgets/internal/models"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// UserService covers login and seller administration.
type UserService struct {
	db *gorm.DB
}

func NewUserService(db *gorm.DB) *UserService {
	return &UserService{db: db}
}

// Authenticate returns the active user matching email and password.
// Unknown emails, wrong passwords and inactive accounts all yield ErrInvalidCredentials.
func (s *UserService) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	var u models.User
	err := s.db.WithContext(ctx).Where("email = ?", models.NormalizeEmail(email)).First(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}
	if bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password)) != nil || !u.IsActive {
		return nil, ErrInvalidCredentials
	}
	return &u, nil
}

// IsActive reports whether uid names an existing active user. It backs the session verifier.
func (s *UserService) IsActive(ctx context.Context, uid uint) bool {
	var n int64
	err := s.db.WithContext(ctx).Model(&models.User{}).
		Where("id = ? AND is_active = ?", uid, true).Count(&n).Error
	return err == nil && n > 0
}

// List returns every user with its profile, by email.
func (s *UserService) List(ctx context.Context) ([]models.User, error) {
	var users []models.User
	err := s.db.WithContext(ctx).Preload("Profile").Order("email").Find(&users).Error
	return users, err
}

// Get loads one user with its profile.
func (s *UserService) Get(ctx context.Context, id uint) (*models.User, error) {
	var u models.User
	if err := s.db.WithContext(ctx).Preload("Profile").First(&u, id).Error; err != nil {
		return nil, notFound(err, ErrNotFound, "user")
	}
	return &u, nil
}

// AssignProfile sets the user's profile; a nil profileID removes it.
func (s *UserService) AssignProfile(ctx context.Context, userID uint, profileID *uint) (*models.User, error) {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if profileID != nil {
			var p models.Profile
			if err := tx.First(&p, *profileID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return invalidField("profile_id", "required")
				}
				return fmt.Errorf("load profile: %w", err)
			}
		}
		res := tx.Model(&models.User{}).Where("id = ?", userID).Update("profile_id", profileID)
		if res.Error != nil {
			return fmt.Errorf("assign profile: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, userID)
}

// SetActive activates or deactivates a user. Inactive users leave the seller rotation.
func (s *UserService) SetActive(ctx context.Context, userID uint, active bool) (*models.User, error) {
	res := s.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", userID).Update("is_active", active)
	if res.Error != nil {
		return nil, fmt.Errorf("set active: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, ErrNotFound
	}
	return s.Get(ctx, userID)
}
