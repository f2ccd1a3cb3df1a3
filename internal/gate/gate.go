// Package gate is a small profile and policy authorization layer.
// A profile grants "resource:action" permissions (with "*" wildcards); a policy
// registered per resource type adds a per-record check such as ownership.
package gate

import (
	"context"
	"errors"
)

// Sentinel errors returned by Authorize.
var (
	ErrUnauthorized = errors.New("unauthorized")
	ErrNoProfile    = errors.New("no profile assigned")
)

// Action describes the kind of operation a user wants to perform.
type Action string

const (
	ActionView   Action = "view"
	ActionCreate Action = "create"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
	ActionList   Action = "list"

	// Quote lifecycle actions.
	ActionSend      Action = "send"
	ActionDuplicate Action = "duplicate"
	// ActionOverride unlocks manual status overrides and bypasses ownership.
	ActionOverride Action = "override"
)

// Policy decides whether user may perform action on one resource.
// U is the subject type (uint user ids in this application).
type Policy[U any] interface {
	Can(ctx context.Context, user U, action Action, resource any) bool
}

// PolicyFunc adapts a function to Policy.
type PolicyFunc[U any] func(ctx context.Context, user U, action Action, resource any) bool

// Can implements Policy.
func (f PolicyFunc[U]) Can(ctx context.Context, user U, action Action, resource any) bool {
	return f(ctx, user, action, resource)
}
