package gate

import "strings"

// Permission is "resource:action", e.g. "quote:override".
type Permission string

// Wildcards for super permissions.
const (
	WildcardAll                     = "*"
	PermissionSuperAdmin Permission = "*:*"
)

// NewPermission creates a permission from resource type and action.
func NewPermission(resourceType string, action Action) Permission {
	return Permission(resourceType + ":" + string(action))
}

// Parse splits a permission into resource type and action.
// Both are empty when p has no colon.
func (p Permission) Parse() (resourceType string, action Action) {
	res, act, ok := strings.Cut(string(p), ":")
	if !ok {
		return "", ""
	}
	return res, Action(act)
}

// Matches reports whether p grants requested. "*:*" grants everything,
// "quote:*" every action on quotes and "*:list" listing any resource.
func (p Permission) Matches(requested Permission) bool {
	if p == PermissionSuperAdmin || p == requested {
		return true
	}
	res, act := p.Parse()
	reqRes, reqAct := requested.Parse()
	if res == "" || reqRes == "" {
		return false
	}
	resOK := res == WildcardAll || res == reqRes
	actOK := string(act) == WildcardAll || act == reqAct
	return resOK && actOK
}
