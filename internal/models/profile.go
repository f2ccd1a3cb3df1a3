package models

import (
	"strings"
	"time"

	"gorm.io/gorm"
)

// System profile names created by the seed.
const (
	ProfileAdmin   = "admin"
	ProfileManager = "manager"
	ProfileSeller  = "seller"
)

// Resource types permissions are granted on.
const (
	ResourceQuote        = "quote"
	ResourcePicking      = "picking"
	ResourceClient       = "client"
	ResourceReference    = "reference"
	ResourceNotification = "notification"
	ResourceUser         = "user"
	ResourceProfile      = "profile"
)

// Resources lists every resource type in seed order.
var Resources = []string{
	ResourceQuote, ResourcePicking, ResourceClient, ResourceReference,
	ResourceNotification, ResourceUser, ResourceProfile,
}

// Profile groups permissions; every user has at most one.
type Profile struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
	Name        string         `gorm:"uniqueIndex;size:100;not null" json:"name"`
	Description string         `gorm:"size:500" json:"description,omitempty"`
	IsSystem    bool           `json:"is_system"`
	// Permissions via the profile_permissions join table.
	Permissions []Permission `gorm:"many2many:profile_permissions;" json:"permissions,omitempty"`
	Users       []User       `gorm:"foreignKey:ProfileID" json:"users,omitempty"`
}

// Permission is one action allowed on a resource type, e.g. "quote:override".
type Permission struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
	ResourceType string         `gorm:"size:50;not null;index:idx_perm_resource_action" json:"resource_type"`
	Action       string         `gorm:"size:50;not null;index:idx_perm_resource_action" json:"action"`
	Description  string         `gorm:"size:200" json:"description,omitempty"`
}

// Code returns the permission in "resource:action" format for matching.
func (p Permission) Code() string {
	return p.ResourceType + ":" + p.Action
}

// SplitPermissionCode splits "resource:action". ok is false when there is no colon.
func SplitPermissionCode(code string) (resource, action string, ok bool) {
	return strings.Cut(code, ":")
}
