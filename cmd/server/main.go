package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/diewo77/go-budgets/auth"
	"github.com/diewo77/go-budgets/internal/config"
	"github.com/diewo77/go-budgets/internal/db"
	"github.com/diewo77/go-budgets/internal/logger"
	"github.com/diewo77/go-budgets/internal/policy"
	"github.com/diewo77/go-budgets/internal/services"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var (
	migrateOnlyFlag   = flag.Bool("migrate-only", false, "Run DB migrations and exit")
	seedOnlyFlag      = flag.Bool("seed-only", false, "Run DB seed and exit")
	expireOverdueFlag = flag.Bool("expire-overdue", false, "Persist the expired status of overdue quotes and exit")
)

func main() {
	flag.Parse()

	// Load environment variables from .env file
	_ = godotenv.Load()

	cfg := config.Load()

	zlog, err := logger.New(cfg.App.Dev)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer func() { _ = zlog.Sync() }()
	zap.ReplaceGlobals(zlog)

	zlog.Info("connecting to database",
		zap.String("host", cfg.Database.Host), zap.Int("port", cfg.Database.Port),
		zap.String("dbname", cfg.Database.DBName), zap.String("user", cfg.Database.User))
	dbConn, err := db.Connect(cfg.Database, zlog)
	if err != nil {
		zlog.Fatal("failed to connect to database", zap.Error(err))
	}

	if *migrateOnlyFlag {
		if err := migrate(cfg, dbConn); err != nil {
			zlog.Fatal("migration failed", zap.Error(err))
		}
		zlog.Info("migrations completed successfully")
		return
	}

	if *seedOnlyFlag {
		if err := seed(cfg, dbConn); err != nil {
			zlog.Fatal("seeding failed", zap.Error(err))
		}
		zlog.Info("seeding completed successfully")
		return
	}

	opts := services.OptionsFromConfig(cfg, zlog)

	if *expireOverdueFlag {
		res, err := services.NewExpiryService(dbConn, zlog).ExpireOverdue(context.Background(), time.Now())
		if err != nil {
			zlog.Fatal("expiry batch failed", zap.Error(err))
		}
		zlog.Info("expiry batch completed", zap.Int64("quotes", res.Quotes), zap.Int64("picking", res.Picking))
		return
	}

	if err := migrate(cfg, dbConn); err != nil {
		zlog.Fatal("migration failed", zap.Error(err))
	}
	if err := seed(cfg, dbConn); err != nil {
		zlog.Fatal("seeding failed", zap.Error(err))
	}

	auth.SetSecret(cfg.App.SessionSecret)

	routerCfg := policy.NewRouterConfig(dbConn, cfg, opts)

	// Sessions of deleted or deactivated users stop working
	auth.SetUserVerifier(routerCfg.Users.IsActive)

	appHandler := NewApp(routerCfg, zlog)

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      appHandler,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	go func() {
		zlog.Info("server starting", zap.String("port", cfg.Server.Port), zap.Bool("dev", cfg.App.Dev))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zlog.Fatal("server error", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	zlog.Info("shutdown signal received")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		zlog.Error("error during shutdown", zap.Error(err))
	}
	zlog.Info("server stopped gracefully")
}

// migrate runs the embedded SQL migrations when MIGRATIONS is set and AutoMigrate otherwise.
func migrate(cfg *config.Config, dbConn *gorm.DB) error {
	if cfg.App.Migrations {
		return db.RunSQLMigrations(cfg.Database.URL())
	}
	return db.Migrate(dbConn)
}

func seed(cfg *config.Config, dbConn *gorm.DB) error {
	return db.Seed(dbConn, db.SeedOptions{
		AdminEmail:    cfg.App.AdminEmail,
		AdminPassword: cfg.App.AdminPassword,
	})
}
