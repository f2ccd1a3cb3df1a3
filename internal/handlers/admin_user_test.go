package handlers_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/diewo77/go-budgets/auth"
	"github.com/diewo77/go-budgets/internal/gate"
	"github.com/diewo77/go-budgets/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAdminUserHandler_AssignProfile(t *testing.T) {
	e := newEnv(t)
	h := e.cfg.AdminUserHandler
	u := e.user(t, "ana@example.com", models.ProfileSeller)
	ctx := auth.WithUserID(context.Background(), u.ID)
	require.False(t, e.cfg.AuthGate.CanProfile(ctx, gate.ActionOverride, models.ResourceQuote))

	mgr := profileByName(t, e, models.ProfileManager)
	rec := serve(t, h.AssignProfile, call{method: http.MethodPost, path: map[string]string{"id": id(u.ID)},
		body: map[string]any{"profile_id": mgr.ID}})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	got := decode[models.User](t, rec)
	require.NotNil(t, got.Profile)
	assert.Equal(t, models.ProfileManager, got.Profile.Name)
	assert.True(t, e.cfg.AuthGate.CanProfile(ctx, gate.ActionOverride, models.ResourceQuote))

	rec = serve(t, h.AssignProfile, call{method: http.MethodPost, path: map[string]string{"id": id(u.ID)},
		body: map[string]any{"profile_id": 9999}})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = serve(t, h.AssignProfile, call{method: http.MethodPost, path: map[string]string{"id": "9999"},
		body: map[string]any{"profile_id": nil}})
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAdminUserHandler_SetActive(t *testing.T) {
	e := newEnv(t)
	h := e.cfg.AdminUserHandler
	u := e.user(t, "ana@example.com", models.ProfileSeller)

	rec := serve(t, h.SetActive, call{method: http.MethodPost, path: map[string]string{"id": id(u.ID)},
		body: map[string]any{"active": false}})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.False(t, decode[models.User](t, rec).IsActive)
	assert.False(t, e.cfg.Users.IsActive(context.Background(), u.ID))

	rec = serve(t, h.List, call{method: http.MethodGet})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), `"password"`)
	users := decode[struct {
		Users []models.User `json:"users"`
	}](t, rec).Users
	require.Len(t, users, 1)
	assert.Equal(t, "ana@example.com", users[0].Email)
}
