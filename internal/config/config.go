// Package config provides application configuration loaded from environment variables.
package config

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/diewo77/go-budgets/internal/quoting"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	App      AppConfig
	Pricing  PricingConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port         string
	ReadTimeout  int // seconds
	WriteTimeout int // seconds
	IdleTimeout  int // seconds
}

// DatabaseConfig holds PostgreSQL connection settings.
type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
	Debug    bool
}

// AppConfig holds application-level settings.
type AppConfig struct {
	Dev           bool
	Migrations    bool
	SessionSecret string
	AdminEmail    string
	AdminPassword string
	// SellerProfile names the profile whose active users take part in the seller rotation.
	SellerProfile string
}

// MaxValidityDays bounds QUOTE_VALIDITY_DAYS so that expiry stays within a year of issue.
const MaxValidityDays = 365

// PricingConfig is read-only input to the quote engine.
type PricingConfig struct {
	TaxRate         decimal.Decimal
	TaxEnabled      bool
	ValidityDays    int
	MaxActiveSlides int
}

// Tax returns the configured tax rule.
func (p PricingConfig) Tax() quoting.TaxRule {
	return quoting.TaxRule{Rate: p.TaxRate, Enabled: p.TaxEnabled}
}

// DSN returns the PostgreSQL connection string in key=value format.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.DBName, d.SSLMode,
	)
}

// URL returns the PostgreSQL connection string in URL format, as golang-migrate expects it.
func (d DatabaseConfig) URL() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.DBName, d.SSLMode,
	)
}

var defaults = map[string]any{
	"PORT":                 "8080",
	"SERVER_READ_TIMEOUT":  15,
	"SERVER_WRITE_TIMEOUT": 15,
	"SERVER_IDLE_TIMEOUT":  60,

	"DB_HOST":     "localhost",
	"DB_PORT":     5432,
	"DB_USER":     "budgets",
	"DB_PASSWORD": "budgets",
	"DB_NAME":     "budgets",
	"DB_SSLMODE":  "disable",
	"DB_DEBUG":    false,

	"DEV":            true,
	"MIGRATIONS":     false,
	"SESSION_SECRET": "devsessionsecret",
	"ADMIN_EMAIL":    "",
	"ADMIN_PASSWORD": "",
	"SELLER_PROFILE": "seller",

	"TAX_RATE":            "21",
	"TAX_ENABLED":         true,
	"QUOTE_VALIDITY_DAYS": 30,
	"MAX_ACTIVE_SLIDES":   5,
}

// Load reads configuration from environment variables.
// It uses sensible defaults for local development.
func Load() *Config {
	return FromViper(newViper())
}

func newViper() *viper.Viper {
	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.AutomaticEnv()
	return v
}

// FromViper builds the configuration from an already populated viper instance.
func FromViper(v *viper.Viper) *Config {
	return &Config{
		Server: ServerConfig{
			Port:         v.GetString("PORT"),
			ReadTimeout:  getInt(v, "SERVER_READ_TIMEOUT"),
			WriteTimeout: getInt(v, "SERVER_WRITE_TIMEOUT"),
			IdleTimeout:  getInt(v, "SERVER_IDLE_TIMEOUT"),
		},
		Database: DatabaseConfig{
			Host:     v.GetString("DB_HOST"),
			Port:     getInt(v, "DB_PORT"),
			User:     v.GetString("DB_USER"),
			Password: v.GetString("DB_PASSWORD"),
			DBName:   v.GetString("DB_NAME"),
			SSLMode:  v.GetString("DB_SSLMODE"),
			Debug:    getBool(v, "DB_DEBUG"),
		},
		App: AppConfig{
			Dev:           getBool(v, "DEV"),
			Migrations:    getBool(v, "MIGRATIONS"),
			SessionSecret: v.GetString("SESSION_SECRET"),
			AdminEmail:    v.GetString("ADMIN_EMAIL"),
			AdminPassword: v.GetString("ADMIN_PASSWORD"),
			SellerProfile: v.GetString("SELLER_PROFILE"),
		},
		Pricing: PricingConfig{
			TaxRate:         getDecimal(v, "TAX_RATE"),
			TaxEnabled:      getBool(v, "TAX_ENABLED"),
			ValidityDays:    getIntInRange(v, "QUOTE_VALIDITY_DAYS", 1, MaxValidityDays),
			MaxActiveSlides: getInt(v, "MAX_ACTIVE_SLIDES"),
		},
	}
}

// getInt returns the integer value of key, or its default when the value does not parse.
func getInt(v *viper.Viper, key string) int {
	i, err := strconv.Atoi(strings.TrimSpace(v.GetString(key)))
	if err != nil {
		return defaults[key].(int)
	}
	return i
}

// getIntInRange is getInt with values outside [lo, hi] replaced by the default.
func getIntInRange(v *viper.Viper, key string, lo, hi int) int {
	i := getInt(v, key)
	if i < lo || i > hi {
		return defaults[key].(int)
	}
	return i
}

// getBool accepts "1", "true", "yes" as true and "0", "false", "no" as false;
// anything else yields the default.
func getBool(v *viper.Viper, key string) bool {
	switch strings.ToLower(strings.TrimSpace(v.GetString(key))) {
	case "1", "true", "yes":
		return true
	case "0", "false", "no":
		return false
	}
	return defaults[key].(bool)
}

// getDecimal parses key as a decimal, falling back to the default.
func getDecimal(v *viper.Viper, key string) decimal.Decimal {
	d, err := decimal.NewFromString(strings.TrimSpace(v.GetString(key)))
	if err != nil {
		return decimal.RequireFromString(defaults[key].(string))
	}
	return d
}
