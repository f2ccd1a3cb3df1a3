package policy

import (
	"context"
	"net/http"
	"time"

	"github.com/diewo77/go-budgets/auth"
	"github.com/diewo77/go-budgets/httpx"
	"github.com/diewo77/go-budgets/i18n"
	"github.com/diewo77/go-budgets/internal/gate"
	"github.com/diewo77/go-budgets/internal/models"
	"github.com/diewo77/go-budgets/internal/quoting"
	"gorm.io/gorm"
)

// AuthGate is the application's single authorization point: a HybridGate over a
// cached database profile resolver.
type AuthGate struct {
	Gate          *gate.HybridGate[uint]
	CacheResolver *gate.CachedResolver[uint]
}

// NewAuthGate creates the gate and registers the ownership policies of both quote kinds.
func NewAuthGate(db *gorm.DB, cacheTTL time.Duration) *AuthGate {
	cached := gate.NewCachedResolver[uint](NewDBProfileResolver(db), cacheTTL)
	ag := &AuthGate{
		Gate:          gate.NewHybridGate[uint](cached),
		CacheResolver: cached,
	}
	for _, res := range []string{models.ResourceQuote, models.ResourcePicking} {
		ag.RegisterPolicy(res, NewOverrideBypassPolicy(NewOwnershipPolicy(), ag.overrideChecker(res)))
	}
	return ag
}

// RegisterPolicy adds a resource policy for a resource type.
func (ag *AuthGate) RegisterPolicy(resourceType string, p gate.Policy[uint]) {
	ag.Gate.Register(resourceType, p)
}

func (ag *AuthGate) overrideChecker(resourceType string) func(ctx context.Context, userID uint) bool {
	return func(ctx context.Context, userID uint) bool {
		return ag.Gate.CanProfile(ctx, userID, gate.ActionOverride, resourceType)
	}
}

// Authorize checks if the current user can perform an action on a resource.
// Returns nil if authorized, gate.ErrUnauthorized otherwise.
func (ag *AuthGate) Authorize(ctx context.Context, action gate.Action, resourceType string, resource any) error {
	userID, ok := auth.UserIDFromContext(ctx)
	if !ok {
		return gate.ErrUnauthorized
	}
	return ag.Gate.Authorize(ctx, userID, action, resourceType, resource)
}

// Can is Authorize as a bool.
func (ag *AuthGate) Can(ctx context.Context, action gate.Action, resourceType string, resource any) bool {
	return ag.Authorize(ctx, action, resourceType, resource) == nil
}

// CanProfile checks only profile permissions (no ownership check).
func (ag *AuthGate) CanProfile(ctx context.Context, action gate.Action, resourceType string) bool {
	userID, ok := auth.UserIDFromContext(ctx)
	if !ok {
		return false
	}
	return ag.Gate.CanProfile(ctx, userID, action, resourceType)
}

// Actor describes the current user for the status machine. Elevated means the
// profile grants override on the resource type.
func (ag *AuthGate) Actor(ctx context.Context, resourceType string) quoting.Actor {
	userID, _ := auth.UserIDFromContext(ctx)
	return quoting.Actor{
		UserID:   userID,
		Elevated: ag.CanProfile(ctx, gate.ActionOverride, resourceType),
	}
}

// InvalidateUser clears the cache for a specific user.
// Call this when a user's profile or active flag changes.
func (ag *AuthGate) InvalidateUser(userID uint) {
	ag.CacheResolver.Invalidate(userID)
}

// InvalidateAll clears the entire profile cache.
func (ag *AuthGate) InvalidateAll() {
	ag.CacheResolver.InvalidateAll()
}

func forbidden(w http.ResponseWriter, r *http.Request) {
	lang := i18n.LangFromContext(r.Context())
	httpx.Error(w, http.StatusForbidden, "forbidden", i18n.T(lang, "forbidden"), nil)
}

// RequirePermission returns middleware that checks profile permission.
func (ag *AuthGate) RequirePermission(resourceType string, action gate.Action) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !ag.CanProfile(r.Context(), action, resourceType) {
				forbidden(w, r)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireAdmin only lets through users whose profile grants "*:*".
func (ag *AuthGate) RequireAdmin() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID, ok := auth.UserIDFromContext(r.Context())
			if !ok {
				httpx.JSONError(w, http.StatusUnauthorized, "unauthorized", nil)
				return
			}
			profile, err := ag.CacheResolver.Resolve(r.Context(), userID)
			if err != nil || profile == nil || !profile.HasPermission(gate.PermissionSuperAdmin) {
				forbidden(w, r)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
