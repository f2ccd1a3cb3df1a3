package handlers

import (
	"net/http"

	"github.com/diewo77/go-budgets/httpx"
	"github.com/diewo77/go-budgets/internal/services"
)

// AdminUserHandler assigns profiles to users and takes sellers in and out of the rotation.
type AdminUserHandler struct {
	users *services.UserService
	authz Authorizer // To invalidate cache on changes
}

func NewAdminUserHandler(users *services.UserService, authz Authorizer) *AdminUserHandler {
	return &AdminUserHandler{users: users, authz: authz}
}

// List returns all users with their profile.
func (h *AdminUserHandler) List(w http.ResponseWriter, r *http.Request) {
	users, err := h.users.List(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"users": users})
}

type assignProfileRequest struct {
	// ProfileID null removes the profile.
	ProfileID *uint `json:"profile_id"`
}

func (h *AdminUserHandler) AssignProfile(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var body assignProfileRequest
	if err := httpx.DecodeJSON(r, &body); err != nil {
		writeError(w, r, err)
		return
	}
	user, err := h.users.AssignProfile(r.Context(), id, body.ProfileID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	h.authz.InvalidateUser(id)
	httpx.JSON(w, http.StatusOK, user)
}

type setActiveRequest struct {
	Active bool `json:"active"`
}

func (h *AdminUserHandler) SetActive(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var body setActiveRequest
	if err := httpx.DecodeJSON(r, &body); err != nil {
		writeError(w, r, err)
		return
	}
	user, err := h.users.SetActive(r.Context(), id, body.Active)
	if err != nil {
		writeError(w, r, err)
		return
	}
	h.authz.InvalidateUser(id)
	httpx.JSON(w, http.StatusOK, user)
}
