package gate

import "context"

// HybridGate checks the user's profile permission first and then the resource
// policy registered for the resource type, when a resource is given.
type HybridGate[U comparable] struct {
	resolver ProfileResolver[U]
	policies map[string]Policy[U]
}

// NewHybridGate creates a gate backed by resolver.
func NewHybridGate[U comparable](resolver ProfileResolver[U]) *HybridGate[U] {
	return &HybridGate[U]{resolver: resolver, policies: make(map[string]Policy[U])}
}

// Register sets the resource policy for a resource type.
func (g *HybridGate[U]) Register(resourceType string, p Policy[U]) {
	g.policies[resourceType] = p
}

// Profile resolves the user's profile; zero users and users without a profile fail.
func (g *HybridGate[U]) Profile(ctx context.Context, user U) (Profile, error) {
	var zero U
	if user == zero {
		return nil, ErrUnauthorized
	}
	profile, err := g.resolver.Resolve(ctx, user)
	if err != nil {
		return nil, err
	}
	if profile == nil {
		return nil, ErrNoProfile
	}
	return profile, nil
}

// Authorize returns nil when user may perform action on resource.
func (g *HybridGate[U]) Authorize(ctx context.Context, user U, action Action, resourceType string, resource any) error {
	profile, err := g.Profile(ctx, user)
	if err != nil {
		return ErrUnauthorized
	}
	if !profile.HasPermission(NewPermission(resourceType, action)) {
		return ErrUnauthorized
	}
	if resource == nil {
		return nil
	}
	if policy, ok := g.policies[resourceType]; ok && !policy.Can(ctx, user, action, resource) {
		return ErrUnauthorized
	}
	return nil
}

// Can is Authorize as a bool.
func (g *HybridGate[U]) Can(ctx context.Context, user U, action Action, resourceType string, resource any) bool {
	return g.Authorize(ctx, user, action, resourceType, resource) == nil
}

// CanProfile checks the profile permission only, without resource policies.
func (g *HybridGate[U]) CanProfile(ctx context.Context, user U, action Action, resourceType string) bool {
	profile, err := g.Profile(ctx, user)
	if err != nil {
		return false
	}
	return profile.HasPermission(NewPermission(resourceType, action))
}
