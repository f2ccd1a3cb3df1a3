package handlers_test

import (
	"net/http"
	"testing"

	"github.com/diewo77/go-budgets/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestAuthHandler_Login(t *testing.T) {
	e := newEnv(t)
	h := e.cfg.AuthHandler
	u := e.user(t, "ana@example.com", models.ProfileSeller)
	hash, err := bcrypt.GenerateFromPassword([]byte("secret"), bcrypt.MinCost)
	require.NoError(t, err)
	require.NoError(t, e.db.Model(u).Update("password", string(hash)).Error)

	rec := serve(t, h.Login, call{method: http.MethodPost, body: map[string]any{"email": "ANA@example.com", "password": "wrong"}})
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "invalid_credentials", decode[errorBody](t, rec).Error)
	assert.Empty(t, rec.Result().Cookies())

	rec = serve(t, h.Login, call{method: http.MethodPost, body: map[string]any{"email": "ANA@example.com", "password": "secret"}})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, u.ID, decode[models.User](t, rec).ID)
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, "session", cookies[0].Name)
	assert.True(t, cookies[0].HttpOnly)

	rec = serve(t, h.Me, call{method: http.MethodGet, uid: u.ID})
	require.Equal(t, http.StatusOK, rec.Code)
	me := decode[models.User](t, rec)
	require.NotNil(t, me.Profile)
	assert.Equal(t, models.ProfileSeller, me.Profile.Name)

	rec = serve(t, h.Me, call{method: http.MethodGet})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = serve(t, h.Logout, call{method: http.MethodPost})
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestClientHandler_CRUD(t *testing.T) {
	e := newEnv(t)
	h := e.cfg.ClientHandler
	ana := e.user(t, "ana@example.com", models.ProfileSeller)

	rec := serve(t, h.Create, call{method: http.MethodPost, uid: ana.ID,
		body: map[string]any{"name": "Eventos del Norte", "email": "Compras@Norte.mx", "company": "Norte SA"}})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	c := decode[models.Client](t, rec)
	assert.Equal(t, "compras@norte.mx", c.Email)
	path := map[string]string{"id": id(c.ID)}

	rec = serve(t, h.Create, call{method: http.MethodPost, uid: ana.ID, body: map[string]any{"name": "", "email": "nope"}})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = serve(t, h.List, call{method: http.MethodGet, target: "/api/clients?q=norte", uid: ana.ID})
	require.Equal(t, http.StatusOK, rec.Code)
	list := decode[struct {
		Clients []models.Client `json:"clients"`
		Total   int64           `json:"total"`
	}](t, rec)
	assert.EqualValues(t, 1, list.Total)

	rec = serve(t, h.Update, call{method: http.MethodPut, uid: ana.ID, path: path,
		body: map[string]any{"name": "Eventos del Norte", "phone": "555-0101"}})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "555-0101", decode[models.Client](t, rec).Phone)

	createQuote(t, e, ana, &c)
	rec = serve(t, h.Delete, call{method: http.MethodDelete, uid: ana.ID, path: path})
	require.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "reference_in_use", decode[errorBody](t, rec).Error)

	rec = serve(t, h.View, call{method: http.MethodGet, uid: ana.ID, path: map[string]string{"id": "4242"}})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSettingsHandler_Show(t *testing.T) {
	e := newEnv(t)
	rec := serve(t, e.cfg.SettingsHandler.Show, call{method: http.MethodGet})
	require.Equal(t, http.StatusOK, rec.Code)
	got := decode[map[string]any](t, rec)
	assert.Contains(t, got, "tax_rate")
	assert.Contains(t, got, "tax_label")
	assert.EqualValues(t, 30, got["validity_days"])
	assert.EqualValues(t, 5, got["max_active_slides"])
}
