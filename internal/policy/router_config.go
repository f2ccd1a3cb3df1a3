package policy

import (
	"time"

	"github.com/diewo77/go-budgets/internal/config"
	"github.com/diewo77/go-budgets/internal/handlers"
	"github.com/diewo77/go-budgets/internal/services"
	"gorm.io/gorm"
)

// RouterConfig holds configured handlers and middleware for the application.
type RouterConfig struct {
	// AuthGate provides authorization checks and middleware
	AuthGate *AuthGate

	// Admin handlers
	AdminProfileHandler *handlers.AdminProfileHandler
	AdminUserHandler    *handlers.AdminUserHandler

	// Auth handler
	AuthHandler *handlers.AuthHandler

	// Business handlers
	QuoteHandler        *handlers.QuoteHandler
	PickingHandler      *handlers.PickingHandler
	PublicHandler       *handlers.PublicHandler
	ClientHandler       *handlers.ClientHandler
	ProductHandler      *handlers.ProductHandler
	ReferenceHandler    *handlers.ReferenceHandler
	NotificationHandler *handlers.NotificationHandler
	SettingsHandler     *handlers.SettingsHandler

	// Services
	Users  *services.UserService
	Expiry *services.ExpiryService
}

// NewRouterConfig wires the authorization gate, the services and the handlers.
//
// Example usage in your main.go or router setup:
//
//	cfg := policy.NewRouterConfig(db, appCfg, services.OptionsFromConfig(appCfg, log))
//
//	// Protected routes with ownership check inside the handler
//	mux.Handle("GET /api/quotes/{id}", cfg.AuthGate.RequirePermission("quote", gate.ActionView)(http.HandlerFunc(cfg.QuoteHandler.Get)))
//
//	// Admin-only routes
//	mux.Handle("GET /api/admin/profiles", cfg.AuthGate.RequireAdmin()(http.HandlerFunc(cfg.AdminProfileHandler.List)))
func NewRouterConfig(db *gorm.DB, cfg *config.Config, opts services.Options) *RouterConfig {
	// Create authorization gate with 5-minute cache
	authGate := NewAuthGate(db, 5*time.Minute)

	quotes := services.NewQuoteService(db, opts)
	picking := services.NewPickingQuoteService(db, opts)
	requests := services.NewQuoteRequestService(db, quotes,
		services.NewSellerAssignor(opts.SellerProfile),
		services.NewDBNotifier(db, opts.Log),
		opts)
	users := services.NewUserService(db)

	return &RouterConfig{
		AuthGate:            authGate,
		AdminProfileHandler: handlers.NewAdminProfileHandler(db, authGate),
		AdminUserHandler:    handlers.NewAdminUserHandler(users, authGate),
		AuthHandler:         handlers.NewAuthHandler(users),
		QuoteHandler:        handlers.NewQuoteHandler(quotes, authGate),
		PickingHandler:      handlers.NewPickingHandler(picking, authGate),
		PublicHandler:       handlers.NewPublicHandler(quotes, picking, requests),
		ClientHandler:       handlers.NewClientHandler(services.NewClientService(db)),
		ProductHandler:      handlers.NewProductHandler(db),
		ReferenceHandler:    handlers.NewReferenceHandler(services.NewReferenceService(db)),
		NotificationHandler: handlers.NewNotificationHandler(services.NewNotificationService(db)),
		SettingsHandler:     handlers.NewSettingsHandler(cfg.Pricing),
		Users:               users,
		Expiry:              services.NewExpiryService(db, opts.Log),
	}
}

var _ handlers.Authorizer = (*AuthGate)(nil)
