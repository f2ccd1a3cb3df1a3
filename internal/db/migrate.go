package db

import (
	"embed"
	"errors"
	"fmt"

	"github.com/diewo77/go-budgets/internal/models"
	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"gorm.io/gorm"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

// Models lists every persisted model in dependency order.
func Models() []any {
	return []any{
		// Auth & Authorization
		&models.Profile{},
		&models.Permission{},
		&models.User{},
		// Catalog and reference data
		&models.Client{},
		&models.Product{},
		&models.ProductVariant{},
		&models.PaymentCondition{},
		&models.PackagingBox{},
		&models.ComponentIncrementRule{},
		&models.CostScale{},
		// Quotes
		&models.Quote{},
		&models.QuoteItem{},
		&models.PickingQuote{},
		&models.PickingService{},
		&models.PickingBox{},
		&models.QuoteRequest{},
		// Bookkeeping
		&models.SellerAssignment{},
		&models.DocumentSequence{},
		&models.Notification{},
	}
}

// Migrate runs AutoMigrate for all models.
func Migrate(db *gorm.DB) error {
	for _, m := range Models() {
		if err := db.AutoMigrate(m); err != nil {
			return fmt.Errorf("automigrate %T: %w", m, err)
		}
	}
	return nil
}

// RunSQLMigrations applies the embedded SQL migrations to the database at url.
func RunSQLMigrations(url string) error {
	src, err := iofs.New(migrationFiles, "migrations")
	if err != nil {
		return fmt.Errorf("migration source: %w", err)
	}
	m, err := migrate.NewWithSourceInstance("iofs", src, url)
	if err != nil {
		return fmt.Errorf("migrate init: %w", err)
	}
	defer m.Close()
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migrate up: %w", err)
	}
	return nil
}

// Seed initializes the database with required seed data.
// Should be called after Migrate.
func Seed(db *gorm.DB, opts SeedOptions) error {
	if err := SeedProfiles(db); err != nil {
		return fmt.Errorf("seed profiles: %w", err)
	}
	if err := SeedAdmin(db, opts.AdminEmail, opts.AdminPassword); err != nil {
		return fmt.Errorf("seed admin: %w", err)
	}
	if err := SeedReference(db); err != nil {
		return fmt.Errorf("seed reference data: %w", err)
	}
	return nil
}
