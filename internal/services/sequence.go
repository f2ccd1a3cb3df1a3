package services

import (
	"context"
	"fmt"

	"github.com/diewo77/go-budgets/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// NextSequence increments and returns the counter called name. Like the seller
// ledger, the row stays locked until tx ends.
func NextSequence(ctx context.Context, tx *gorm.DB, name string) (int, error) {
	db := tx.WithContext(ctx)
	seed := models.DocumentSequence{Name: name}
	err := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}},
		DoNothing: true,
	}).Create(&seed).Error
	if err != nil {
		return 0, fmt.Errorf("create sequence %s: %w", name, err)
	}
	var seq models.DocumentSequence
	if err := db.Clauses(clause.Locking{Strength: "UPDATE"}).Where("name = ?", name).First(&seq).Error; err != nil {
		return 0, fmt.Errorf("lock sequence %s: %w", name, err)
	}
	seq.Value++
	if err := db.Model(&seq).Update("value", seq.Value).Error; err != nil {
		return 0, fmt.Errorf("bump sequence %s: %w", name, err)
	}
	return seq.Value, nil
}

func pickingSequenceName(year int) string {
	return fmt.Sprintf("picking:%d", year)
}
