package main

import (
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/diewo77/go-budgets/auth"
	"github.com/diewo77/go-budgets/internal/config"
	appdb "github.com/diewo77/go-budgets/internal/db"
	"github.com/diewo77/go-budgets/internal/models"
	"github.com/diewo77/go-budgets/internal/policy"
	"github.com/diewo77/go-budgets/internal/quoting"
	"github.com/diewo77/go-budgets/internal/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupApp(t *testing.T) (*App, *gorm.DB) {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	gdb, err := gorm.Open(sqlite.Open("file:app_"+name+"?mode=memory&cache=shared"),
		&gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	require.NoError(t, appdb.Migrate(gdb))
	require.NoError(t, appdb.Seed(gdb, appdb.SeedOptions{AdminEmail: "admin@example.com", AdminPassword: "admin-pass"}))

	opts := services.Options{
		Tax:          quoting.DefaultTax(),
		ValidityDays: 30,
		Now:          func() time.Time { return time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC) },
	}
	cfg := policy.NewRouterConfig(gdb, config.Load(), opts)
	auth.SetUserVerifier(cfg.Users.IsActive)
	t.Cleanup(func() { auth.SetUserVerifier(nil) })
	return NewApp(cfg, zap.NewNop()), gdb
}

func addUser(t *testing.T, gdb *gorm.DB, email, password, profile string) *models.User {
	t.Helper()
	var p models.Profile
	require.NoError(t, gdb.Where("name = ?", profile).First(&p).Error)
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	u := &models.User{Email: email, Name: "Ana", Password: string(hash), IsActive: true, ProfileID: &p.ID}
	require.NoError(t, gdb.Create(u).Error)
	return u
}

func do(app *App, method, target, body string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	app.ServeHTTP(rec, req)
	return rec
}

func login(t *testing.T, app *App, email, password string) *http.Cookie {
	t.Helper()
	rec := do(app, http.MethodPost, "/api/login", `{"email":"`+email+`","password":"`+password+`"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	for _, c := range rec.Result().Cookies() {
		if c.Name == "session" {
			return c
		}
	}
	t.Fatal("no session cookie")
	return nil
}

func TestApp_Healthz(t *testing.T) {
	app, _ := setupApp(t)
	rec := do(app, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())

	rec = do(app, http.MethodGet, "/metrics", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestApp_RequiresSession(t *testing.T) {
	app, _ := setupApp(t)
	for _, target := range []string{"/api/quotes", "/api/picking", "/api/me", "/api/admin/profiles"} {
		rec := do(app, http.MethodGet, target, "")
		assert.Equal(t, http.StatusUnauthorized, rec.Code, target)
	}
}

func TestApp_SellerPermissions(t *testing.T) {
	app, gdb := setupApp(t)
	addUser(t, gdb, "ana@example.com", "secret", models.ProfileSeller)
	session := login(t, app, "ana@example.com", "secret")

	rec := do(app, http.MethodGet, "/api/quotes", "", session)
	assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	rec = do(app, http.MethodGet, "/api/me", "", session)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "ana@example.com")

	rec = do(app, http.MethodPost, "/api/reference/payment-conditions", `{"name":"x","percentage":"1"}`, session)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	rec = do(app, http.MethodGet, "/api/admin/users", "", session)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	rec = do(app, http.MethodGet, "/api/admin/profiles", "", session)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestApp_AdminAndDeactivation(t *testing.T) {
	app, gdb := setupApp(t)
	admin := login(t, app, "admin@example.com", "admin-pass")
	u := addUser(t, gdb, "ana@example.com", "secret", models.ProfileSeller)
	seller := login(t, app, "ana@example.com", "secret")

	rec := do(app, http.MethodGet, "/api/admin/profiles", "", admin)
	assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = do(app, http.MethodPost, "/api/admin/users/"+strconv.FormatUint(uint64(u.ID), 10)+"/active", `{"active":false}`, admin)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = do(app, http.MethodGet, "/api/quotes", "", seller)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestApp_PublicRoutes(t *testing.T) {
	app, _ := setupApp(t)
	rec := do(app, http.MethodGet, "/api/public/quotes/unknown?lang=en", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid_token")

	var langCookie *http.Cookie
	for _, c := range rec.Result().Cookies() {
		if c.Name == "lang" {
			langCookie = c
		}
	}
	require.NotNil(t, langCookie)
	assert.Equal(t, "en", langCookie.Value)

	rec = do(app, http.MethodPost, "/api/quote-requests", `{"customer":{"name":"","email":""},"items":[]}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
