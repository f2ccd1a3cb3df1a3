package services

import (
	"context"
	"fmt"

	"github.com/diewo77/go-budgets/internal/metrics"
	"github.com/diewo77/go-budgets/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SellerAssignor hands out sellers in rotation, one ledger row per assignment type.
type SellerAssignor struct {
	profile string
}

// NewSellerAssignor rotates over the active users of the named profile, the
// seller profile when the name is empty.
func NewSellerAssignor(sellerProfile string) *SellerAssignor {
	if sellerProfile == "" {
		sellerProfile = models.ProfileSeller
	}
	return &SellerAssignor{profile: sellerProfile}
}

// ActiveSellers returns the sellers in creation order.
func (a *SellerAssignor) ActiveSellers(ctx context.Context, tx *gorm.DB) ([]models.User, error) {
	var sellers []models.User
	err := tx.WithContext(ctx).
		Joins("JOIN profiles ON profiles.id = users.profile_id AND profiles.deleted_at IS NULL").
		Where("profiles.name = ? AND users.is_active = ?", a.profile, true).
		Order("users.created_at, users.id").
		Find(&sellers).Error
	return sellers, err
}

// Next returns the seller after the one last assigned for assignmentType and
// records it. It must run inside the caller's transaction: the ledger row stays
// locked until that transaction ends and is rolled back with it. The assignment
// is counted once that transaction commits.
func (a *SellerAssignor) Next(ctx context.Context, tx *gorm.DB, assignmentType string) (*models.User, error) {
	sellers, err := a.ActiveSellers(ctx, tx)
	if err != nil {
		return nil, fmt.Errorf("load sellers: %w", err)
	}
	if len(sellers) == 0 {
		return nil, ErrNoSellerAvailable
	}

	ledger, err := lockLedger(ctx, tx, assignmentType)
	if err != nil {
		return nil, err
	}

	next := 0
	if ledger.LastSellerID != nil && len(sellers) > 1 {
		for i, s := range sellers {
			if s.ID == *ledger.LastSellerID {
				next = (i + 1) % len(sellers)
				break
			}
		}
	}
	seller := sellers[next]

	if err := tx.WithContext(ctx).Model(ledger).Update("last_seller_id", seller.ID).Error; err != nil {
		return nil, fmt.Errorf("update ledger: %w", err)
	}
	afterCommit(tx, metrics.SellerAssignments.WithLabelValues(assignmentType).Inc)
	return &seller, nil
}

// lockLedger loads or creates the ledger row and locks it for update.
func lockLedger(ctx context.Context, tx *gorm.DB, assignmentType string) (*models.SellerAssignment, error) {
	db := tx.WithContext(ctx)
	seed := models.SellerAssignment{AssignmentType: assignmentType}
	err := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "assignment_type"}},
		DoNothing: true,
	}).Create(&seed).Error
	if err != nil {
		return nil, fmt.Errorf("create ledger: %w", err)
	}
	var ledger models.SellerAssignment
	err = db.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("assignment_type = ?", assignmentType).
		First(&ledger).Error
	if err != nil {
		return nil, fmt.Errorf("lock ledger: %w", err)
	}
	return &ledger, nil
}
