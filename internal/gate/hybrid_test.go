package gate_test

import (
	"context"
	"testing"

	"github.com/diewo77/go-budgets/internal/gate"
)

type ownedQuote struct{ owner uint }

func ownerPolicy() gate.Policy[uint] {
	return gate.PolicyFunc[uint](func(_ context.Context, user uint, _ gate.Action, resource any) bool {
		q, ok := resource.(*ownedQuote)
		return ok && q.owner == user
	})
}

func newTestGate() *gate.HybridGate[uint] {
	resolver := gate.NewStaticResolver[uint]()
	resolver.Set(1, gate.NewStaticProfile(1, "admin", gate.PermissionSuperAdmin))
	resolver.Set(2, gate.NewStaticProfile(2, "seller", "quote:view", "quote:update", "quote:list"))
	g := gate.NewHybridGate[uint](resolver)
	g.Register("quote", ownerPolicy())
	return g
}

func TestHybridGate_ProfilePermission(t *testing.T) {
	g := newTestGate()
	ctx := context.Background()

	if !g.CanProfile(ctx, 2, gate.ActionList, "quote") {
		t.Errorf("seller should list quotes")
	}
	if g.CanProfile(ctx, 2, gate.ActionOverride, "quote") {
		t.Errorf("seller should not override")
	}
	if !g.CanProfile(ctx, 1, gate.ActionOverride, "quote") {
		t.Errorf("admin should override")
	}
}

func TestHybridGate_ResourcePolicy(t *testing.T) {
	g := newTestGate()
	ctx := context.Background()

	if !g.Can(ctx, 2, gate.ActionUpdate, "quote", &ownedQuote{owner: 2}) {
		t.Errorf("owner should update own quote")
	}
	if g.Can(ctx, 2, gate.ActionUpdate, "quote", &ownedQuote{owner: 9}) {
		t.Errorf("seller should not update someone else's quote")
	}
	if err := g.Authorize(ctx, 2, gate.ActionDelete, "quote", &ownedQuote{owner: 2}); err != gate.ErrUnauthorized {
		t.Errorf("missing profile permission: got %v", err)
	}
}

func TestHybridGate_UnknownUsers(t *testing.T) {
	g := newTestGate()
	ctx := context.Background()

	if g.Can(ctx, 0, gate.ActionView, "quote", nil) {
		t.Errorf("zero user must be rejected")
	}
	if g.Can(ctx, 42, gate.ActionView, "quote", nil) {
		t.Errorf("user without profile must be rejected")
	}
	if _, err := g.Profile(ctx, 42); err != gate.ErrNoProfile {
		t.Errorf("Profile() err = %v, want ErrNoProfile", err)
	}
}
