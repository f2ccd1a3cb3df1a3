// Package db opens the database, migrates the schema and seeds reference data.
package db

import (
	"fmt"
	"time"

	"github.com/diewo77/go-budgets/internal/config"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const (
	connectAttempts = 5
	connectDelay    = 2 * time.Second
)

// Connect opens PostgreSQL, retrying while the server starts up.
func Connect(cfg config.DatabaseConfig, log *zap.Logger) (*gorm.DB, error) {
	level := logger.Silent
	if cfg.Debug {
		level = logger.Info
	}
	gcfg := &gorm.Config{Logger: logger.Default.LogMode(level)}

	var (
		db  *gorm.DB
		err error
	)
	for i := 1; i <= connectAttempts; i++ {
		db, err = gorm.Open(postgres.Open(cfg.DSN()), gcfg)
		if err == nil {
			err = ping(db)
		}
		if err == nil {
			return db, nil
		}
		log.Warn("database not ready", zap.Int("attempt", i), zap.Int("max", connectAttempts), zap.Error(err))
		time.Sleep(connectDelay)
	}
	return nil, fmt.Errorf("connect database: %w", err)
}

func ping(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Ping()
}
