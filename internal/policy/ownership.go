package policy

import (
	"context"

	"github.com/diewo77/go-budgets/internal/gate"
)

// Ownable is implemented by models that belong to one user.
type Ownable interface {
	GetUserID() uint
}

// OwnershipPolicy allows access to resources the user owns.
type OwnershipPolicy struct{}

// NewOwnershipPolicy creates a new ownership policy.
func NewOwnershipPolicy() *OwnershipPolicy {
	return &OwnershipPolicy{}
}

// Can reports whether userID owns resource. A nil resource (list, create) is
// allowed; resources that are not Ownable are denied.
func (p *OwnershipPolicy) Can(_ context.Context, userID uint, _ gate.Action, resource any) bool {
	if resource == nil {
		return true
	}
	ownable, ok := resource.(Ownable)
	if !ok {
		return false
	}
	return ownable.GetUserID() == userID
}

// OverrideBypassPolicy lets users with the override permission skip the inner policy.
type OverrideBypassPolicy struct {
	inner      gate.Policy[uint]
	isElevated func(ctx context.Context, userID uint) bool
}

// NewOverrideBypassPolicy wraps inner.
func NewOverrideBypassPolicy(inner gate.Policy[uint], isElevated func(ctx context.Context, userID uint) bool) *OverrideBypassPolicy {
	return &OverrideBypassPolicy{inner: inner, isElevated: isElevated}
}

func (p *OverrideBypassPolicy) Can(ctx context.Context, userID uint, action gate.Action, resource any) bool {
	if p.isElevated(ctx, userID) {
		return true
	}
	return p.inner.Can(ctx, userID, action, resource)
}
