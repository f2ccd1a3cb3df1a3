package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/diewo77/go-budgets/httpx"
	"github.com/diewo77/go-budgets/i18n"
	"github.com/diewo77/go-budgets/internal/models"
	"github.com/diewo77/go-budgets/internal/services"
	"gorm.io/gorm"
)

// AdminProfileHandler handles CRUD operations for profiles.
// It allows admins to create, edit, delete profiles and manage their permissions.
type AdminProfileHandler struct {
	DB    *gorm.DB
	Authz Authorizer // To invalidate cache on changes
}

// NewAdminProfileHandler creates a new admin profile handler.
func NewAdminProfileHandler(db *gorm.DB, authz Authorizer) *AdminProfileHandler {
	return &AdminProfileHandler{DB: db, Authz: authz}
}

type profileRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

func (h *AdminProfileHandler) invalidate() {
	if h.Authz != nil {
		h.Authz.InvalidateAll()
	}
}

func (h *AdminProfileHandler) fail(w http.ResponseWriter, r *http.Request, status int, code string) {
	httpx.Error(w, status, code, i18n.T(i18n.LangFromContext(r.Context()), code), nil)
}

func isUniqueViolation(err error) bool {
	msg := strings.ToLower(err.Error())
	return errors.Is(err, gorm.ErrDuplicatedKey) || strings.Contains(msg, "duplicate") || strings.Contains(msg, "unique")
}

// List returns all profiles with their permissions.
func (h *AdminProfileHandler) List(w http.ResponseWriter, r *http.Request) {
	var profiles []models.Profile
	if err := h.DB.WithContext(r.Context()).Preload("Permissions").Order("name").Find(&profiles).Error; err != nil {
		writeError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"profiles": profiles})
}

// Create adds a profile without permissions.
func (h *AdminProfileHandler) Create(w http.ResponseWriter, r *http.Request) {
	var body profileRequest
	if err := httpx.DecodeJSON(r, &body); err != nil {
		writeError(w, r, err)
		return
	}
	profile := models.Profile{
		Name:        strings.TrimSpace(body.Name),
		Description: strings.TrimSpace(body.Description),
	}
	if profile.Name == "" {
		writeError(w, r, &services.ValidationError{Violations: map[string]string{"name": "required"}})
		return
	}
	if err := h.DB.WithContext(r.Context()).Create(&profile).Error; err != nil {
		if isUniqueViolation(err) {
			h.fail(w, r, http.StatusConflict, "name_already_exists")
			return
		}
		writeError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, profile)
}

func (h *AdminProfileHandler) load(w http.ResponseWriter, r *http.Request, preload ...string) (*models.Profile, bool) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return nil, false
	}
	db := h.DB.WithContext(r.Context())
	for _, p := range preload {
		db = db.Preload(p)
	}
	var profile models.Profile
	if err := db.First(&profile, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			err = services.ErrNotFound
		}
		writeError(w, r, err)
		return nil, false
	}
	return &profile, true
}

// Update changes name and description. System profiles keep their name since
// the seller rotation and the seed look them up by it.
func (h *AdminProfileHandler) Update(w http.ResponseWriter, r *http.Request) {
	profile, ok := h.load(w, r)
	if !ok {
		return
	}
	var body profileRequest
	if err := httpx.DecodeJSON(r, &body); err != nil {
		writeError(w, r, err)
		return
	}
	name := strings.TrimSpace(body.Name)
	if name == "" {
		writeError(w, r, &services.ValidationError{Violations: map[string]string{"name": "required"}})
		return
	}
	if profile.IsSystem && name != profile.Name {
		h.fail(w, r, http.StatusForbidden, "cannot_rename_system_profile")
		return
	}
	profile.Name = name
	profile.Description = strings.TrimSpace(body.Description)
	if err := h.DB.WithContext(r.Context()).Save(profile).Error; err != nil {
		if isUniqueViolation(err) {
			h.fail(w, r, http.StatusConflict, "name_already_exists")
			return
		}
		writeError(w, r, err)
		return
	}

	// Invalidate all cache since profile may affect multiple users
	h.invalidate()
	httpx.JSON(w, http.StatusOK, profile)
}

// Delete removes a profile that is neither a system profile nor assigned to users.
func (h *AdminProfileHandler) Delete(w http.ResponseWriter, r *http.Request) {
	profile, ok := h.load(w, r, "Users")
	if !ok {
		return
	}

	// Cannot delete system profiles (admin, manager, seller)
	if profile.IsSystem {
		h.fail(w, r, http.StatusForbidden, "cannot_delete_system_profile")
		return
	}

	// Cannot delete if users are assigned to this profile
	if len(profile.Users) > 0 {
		h.fail(w, r, http.StatusConflict, "profile_has_users")
		return
	}

	if err := h.DB.WithContext(r.Context()).Delete(profile).Error; err != nil {
		writeError(w, r, err)
		return
	}
	noContent(w)
}

type permissionsRequest struct {
	PermissionIDs []uint `json:"permission_ids"`
}

// SavePermissions replaces the permissions of a profile.
func (h *AdminProfileHandler) SavePermissions(w http.ResponseWriter, r *http.Request) {
	profile, ok := h.load(w, r)
	if !ok {
		return
	}
	var body permissionsRequest
	if err := httpx.DecodeJSON(r, &body); err != nil {
		writeError(w, r, err)
		return
	}

	var permissions []models.Permission
	if len(body.PermissionIDs) > 0 {
		if err := h.DB.WithContext(r.Context()).Where("id IN ?", body.PermissionIDs).Find(&permissions).Error; err != nil {
			writeError(w, r, err)
			return
		}
	}

	// Replace the profile's permissions (GORM handles the many2many table)
	if err := h.DB.WithContext(r.Context()).Model(profile).Association("Permissions").Replace(permissions); err != nil {
		writeError(w, r, err)
		return
	}

	// Invalidate all cache since this profile may affect multiple users
	h.invalidate()
	profile.Permissions = permissions
	httpx.JSON(w, http.StatusOK, profile)
}

// ListPermissions returns all available permissions.
func (h *AdminProfileHandler) ListPermissions(w http.ResponseWriter, r *http.Request) {
	var permissions []models.Permission
	if err := h.DB.WithContext(r.Context()).Order("resource_type, action").Find(&permissions).Error; err != nil {
		writeError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"permissions": permissions})
}
