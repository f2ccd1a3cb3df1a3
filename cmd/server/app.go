package main

import (
	"net/http"

	"github.com/diewo77/go-budgets/auth"
	"github.com/diewo77/go-budgets/httpx"
	"github.com/diewo77/go-budgets/i18n"
	"github.com/diewo77/go-budgets/internal/gate"
	"github.com/diewo77/go-budgets/internal/logger"
	"github.com/diewo77/go-budgets/internal/metrics"
	"github.com/diewo77/go-budgets/internal/models"
	"github.com/diewo77/go-budgets/internal/policy"
	"go.uber.org/zap"
)

// App is the main application handler that sets up all routes.
type App struct {
	mux       *http.ServeMux
	routerCfg *policy.RouterConfig
	handler   http.Handler
}

// NewApp creates a new application with all routes configured.
func NewApp(routerCfg *policy.RouterConfig, log *zap.Logger) *App {
	app := &App{
		mux:       http.NewServeMux(),
		routerCfg: routerCfg,
	}
	app.setupRoutes()
	// Global middleware: request log, auth context, language
	app.handler = logger.Middleware(log, auth.Middleware(withLanguage(app.mux)))
	return app
}

// ServeHTTP implements http.Handler.
func (a *App) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	a.handler.ServeHTTP(w, r)
}

// setupRoutes configures all application routes.
func (a *App) setupRoutes() {
	// ─────────────────────────────────────────────────────────────────────────
	// Public routes (no auth required)
	// ─────────────────────────────────────────────────────────────────────────
	ah := a.routerCfg.AuthHandler
	pub := a.routerCfg.PublicHandler

	a.mux.HandleFunc("GET /healthz", healthz)
	a.mux.Handle("GET /metrics", metrics.Handler())
	a.mux.HandleFunc("POST /api/login", ah.Login)
	a.mux.HandleFunc("POST /api/logout", ah.Logout)
	a.mux.HandleFunc("POST /api/quote-requests", pub.SubmitRequest)
	a.mux.HandleFunc("GET /api/public/quotes/{token}", pub.Show)
	a.mux.HandleFunc("POST /api/public/quotes/{token}/approve", pub.Approve)
	a.mux.HandleFunc("POST /api/public/quotes/{token}/reject", pub.Reject)

	// ─────────────────────────────────────────────────────────────────────────
	// Authenticated routes (require logged-in user)
	// ─────────────────────────────────────────────────────────────────────────
	a.mux.Handle("GET /api/me", a.requireAuth(http.HandlerFunc(ah.Me)))
	a.mux.Handle("GET /api/settings", a.requireAuth(http.HandlerFunc(a.routerCfg.SettingsHandler.Show)))

	// ─────────────────────────────────────────────────────────────────────────
	// Protected resource routes (require auth + specific permissions)
	// ─────────────────────────────────────────────────────────────────────────
	qh := a.routerCfg.QuoteHandler
	q := models.ResourceQuote
	a.handle("GET /api/quotes", q, gate.ActionList, qh.List)
	a.handle("POST /api/quotes", q, gate.ActionCreate, qh.Create)
	a.handle("GET /api/quotes/{id}", q, gate.ActionView, qh.Get)
	a.handle("PUT /api/quotes/{id}", q, gate.ActionUpdate, qh.Update)
	a.handle("POST /api/quotes/{id}/items", q, gate.ActionUpdate, qh.AddItem)
	a.handle("PUT /api/quotes/{id}/items/{item_id}", q, gate.ActionUpdate, qh.UpdateItem)
	a.handle("DELETE /api/quotes/{id}/items/{item_id}", q, gate.ActionUpdate, qh.DeleteItem)
	a.handle("POST /api/quotes/{id}/variants", q, gate.ActionUpdate, qh.SelectVariant)
	a.handle("POST /api/quotes/{id}/transition", q, gate.ActionUpdate, qh.Transition)
	a.handle("POST /api/quotes/{id}/duplicate", q, gate.ActionDuplicate, qh.Duplicate)

	ph := a.routerCfg.PickingHandler
	p := models.ResourcePicking
	a.handle("GET /api/picking", p, gate.ActionList, ph.List)
	a.handle("POST /api/picking", p, gate.ActionCreate, ph.Create)
	a.handle("GET /api/picking/{id}", p, gate.ActionView, ph.Get)
	a.handle("PUT /api/picking/{id}", p, gate.ActionUpdate, ph.Update)
	a.handle("POST /api/picking/{id}/services", p, gate.ActionUpdate, ph.AddService)
	a.handle("PUT /api/picking/{id}/services/{line_id}", p, gate.ActionUpdate, ph.UpdateService)
	a.handle("DELETE /api/picking/{id}/services/{line_id}", p, gate.ActionUpdate, ph.DeleteService)
	a.handle("POST /api/picking/{id}/boxes", p, gate.ActionUpdate, ph.AddBox)
	a.handle("PUT /api/picking/{id}/boxes/{line_id}", p, gate.ActionUpdate, ph.UpdateBox)
	a.handle("DELETE /api/picking/{id}/boxes/{line_id}", p, gate.ActionUpdate, ph.DeleteBox)
	a.handle("POST /api/picking/{id}/transition", p, gate.ActionUpdate, ph.Transition)
	a.handle("POST /api/picking/{id}/duplicate", p, gate.ActionDuplicate, ph.Duplicate)

	ch := a.routerCfg.ClientHandler
	c := models.ResourceClient
	a.handle("GET /api/clients", c, gate.ActionList, ch.List)
	a.handle("POST /api/clients", c, gate.ActionCreate, ch.Create)
	a.handle("GET /api/clients/{id}", c, gate.ActionView, ch.View)
	a.handle("PUT /api/clients/{id}", c, gate.ActionUpdate, ch.Update)
	a.handle("DELETE /api/clients/{id}", c, gate.ActionDelete, ch.Delete)

	rh := a.routerCfg.ReferenceHandler
	prh := a.routerCfg.ProductHandler
	ref := models.ResourceReference
	a.handle("GET /api/products", ref, gate.ActionList, prh.List)
	a.handle("GET /api/products/{id}", ref, gate.ActionView, prh.Get)
	a.handle("GET /api/reference/payment-conditions", ref, gate.ActionList, rh.ListPaymentConditions)
	a.handle("POST /api/reference/payment-conditions", ref, gate.ActionCreate, rh.CreatePaymentCondition)
	a.handle("PUT /api/reference/payment-conditions/{id}", ref, gate.ActionUpdate, rh.UpdatePaymentCondition)
	a.handle("DELETE /api/reference/payment-conditions/{id}", ref, gate.ActionDelete, rh.DeletePaymentCondition)
	a.handle("GET /api/reference/boxes", ref, gate.ActionList, rh.ListBoxes)
	a.handle("POST /api/reference/boxes", ref, gate.ActionCreate, rh.CreateBox)
	a.handle("PUT /api/reference/boxes/{id}", ref, gate.ActionUpdate, rh.UpdateBox)
	a.handle("DELETE /api/reference/boxes/{id}", ref, gate.ActionDelete, rh.DeleteBox)
	a.handle("GET /api/reference/increment-rules", ref, gate.ActionList, rh.ListIncrementRules)
	a.handle("POST /api/reference/increment-rules", ref, gate.ActionCreate, rh.CreateIncrementRule)
	a.handle("PUT /api/reference/increment-rules/{id}", ref, gate.ActionUpdate, rh.UpdateIncrementRule)
	a.handle("DELETE /api/reference/increment-rules/{id}", ref, gate.ActionDelete, rh.DeleteIncrementRule)
	a.handle("GET /api/reference/cost-scales", ref, gate.ActionList, rh.ListCostScales)
	a.handle("POST /api/reference/cost-scales", ref, gate.ActionCreate, rh.CreateCostScale)
	a.handle("PUT /api/reference/cost-scales/{id}", ref, gate.ActionUpdate, rh.UpdateCostScale)
	a.handle("DELETE /api/reference/cost-scales/{id}", ref, gate.ActionDelete, rh.DeleteCostScale)

	nh := a.routerCfg.NotificationHandler
	a.handle("GET /api/notifications", models.ResourceNotification, gate.ActionList, nh.List)
	a.handle("POST /api/notifications/{id}/read", models.ResourceNotification, gate.ActionUpdate, nh.MarkRead)

	// ─────────────────────────────────────────────────────────────────────────
	// Admin routes
	// ─────────────────────────────────────────────────────────────────────────
	uh := a.routerCfg.AdminUserHandler
	a.handle("GET /api/admin/users", models.ResourceUser, gate.ActionList, uh.List)
	a.handle("POST /api/admin/users/{id}/profile", models.ResourceUser, gate.ActionUpdate, uh.AssignProfile)
	a.handle("POST /api/admin/users/{id}/active", models.ResourceUser, gate.ActionUpdate, uh.SetActive)

	aph := a.routerCfg.AdminProfileHandler
	a.mux.Handle("GET /api/admin/profiles", a.requireAdmin(http.HandlerFunc(aph.List)))
	a.mux.Handle("POST /api/admin/profiles", a.requireAdmin(http.HandlerFunc(aph.Create)))
	a.mux.Handle("PUT /api/admin/profiles/{id}", a.requireAdmin(http.HandlerFunc(aph.Update)))
	a.mux.Handle("DELETE /api/admin/profiles/{id}", a.requireAdmin(http.HandlerFunc(aph.Delete)))
	a.mux.Handle("PUT /api/admin/profiles/{id}/permissions", a.requireAdmin(http.HandlerFunc(aph.SavePermissions)))
	a.mux.Handle("GET /api/admin/permissions", a.requireAdmin(http.HandlerFunc(aph.ListPermissions)))
}

// ─────────────────────────────────────────────────────────────────────────────
// Middleware
// ─────────────────────────────────────────────────────────────────────────────

// handle registers a route that needs a session and the resource:action permission.
func (a *App) handle(pattern, resourceType string, action gate.Action, h http.HandlerFunc) {
	a.mux.Handle(pattern, a.requireAuth(a.requirePermission(resourceType, action)(h)))
}

// requireAuth wraps a handler to require authentication.
func (a *App) requireAuth(next http.Handler) http.Handler {
	return auth.RequireAuth(next)
}

// requireAdmin wraps a handler to require the *:* permission.
func (a *App) requireAdmin(next http.Handler) http.Handler {
	return a.requireAuth(a.routerCfg.AuthGate.RequireAdmin()(next))
}

// requirePermission wraps a handler to require specific resource permission.
func (a *App) requirePermission(resourceType string, action gate.Action) func(http.Handler) http.Handler {
	return a.routerCfg.AuthGate.RequirePermission(resourceType, action)
}

// withLanguage picks the response language from ?lang=, the lang cookie or
// Accept-Language, in that order.
func withLanguage(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		lang := i18n.DetectLanguage(r.Header.Get("Accept-Language"))
		if c, err := r.Cookie("lang"); err == nil && i18n.Supported(c.Value) {
			lang = c.Value
		}
		if q := r.URL.Query().Get("lang"); i18n.Supported(q) {
			lang = q
			http.SetCookie(w, &http.Cookie{
				Name:     "lang",
				Value:    lang,
				Path:     "/",
				MaxAge:   86400 * 365,
				HttpOnly: true,
			})
		}
		next.ServeHTTP(w, r.WithContext(i18n.WithLang(r.Context(), lang)))
	})
}

func healthz(w http.ResponseWriter, _ *http.Request) {
	httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
