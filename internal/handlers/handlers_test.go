package handlers_test

import (
	"bytes"
	"encoding/json"
	"io"
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
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var fixedNow = time.Date(2026, 3, 10, 15, 30, 0, 0, time.UTC)

// testEnv is a fully wired router configuration over an in-memory database.
type testEnv struct {
	db  *gorm.DB
	cfg *policy.RouterConfig
}

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := "file:handlers_" + name + "?mode=memory&cache=shared"
	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	require.NoError(t, appdb.Migrate(gdb))
	require.NoError(t, appdb.SeedProfiles(gdb))
	return gdb
}

func newEnv(t *testing.T) *testEnv {
	t.Helper()
	gdb := openTestDB(t)
	opts := services.Options{
		Tax:          quoting.DefaultTax(),
		ValidityDays: 30,
		Now:          func() time.Time { return fixedNow },
	}
	return &testEnv{db: gdb, cfg: policy.NewRouterConfig(gdb, config.Load(), opts)}
}

func (e *testEnv) user(t *testing.T, email, profile string) *models.User {
	t.Helper()
	var p models.Profile
	require.NoError(t, e.db.Where("name = ?", profile).First(&p).Error)
	u := &models.User{Email: email, Name: strings.Split(email, "@")[0], Password: "x", IsActive: true, ProfileID: &p.ID}
	require.NoError(t, e.db.Create(u).Error)
	return u
}

func (e *testEnv) client(t *testing.T, email string) *models.Client {
	t.Helper()
	c := &models.Client{Name: "Acme", Email: email}
	require.NoError(t, e.db.Create(c).Error)
	return c
}

func (e *testEnv) product(t *testing.T, name, price string) *models.Product {
	t.Helper()
	p := &models.Product{Code: strings.ToUpper(name), Name: name, Price: decimal.RequireFromString(price), IsActive: true}
	require.NoError(t, e.db.Create(p).Error)
	return p
}

// call describes one request against a handler method.
type call struct {
	method string
	target string
	body   any
	uid    uint
	path   map[string]string
}

func serve(t *testing.T, h http.HandlerFunc, c call) *httptest.ResponseRecorder {
	t.Helper()
	var body io.Reader = http.NoBody
	switch b := c.body.(type) {
	case nil:
	case string:
		body = strings.NewReader(b)
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		body = bytes.NewReader(raw)
	}
	target := c.target
	if target == "" {
		target = "/"
	}
	req := httptest.NewRequest(c.method, target, body)
	if c.uid != 0 {
		req = req.WithContext(auth.WithUserID(req.Context(), c.uid))
	}
	for k, v := range c.path {
		req.SetPathValue(k, v)
	}
	rec := httptest.NewRecorder()
	h(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

type errorBody struct {
	Error   string         `json:"error"`
	Message string         `json:"message"`
	Details map[string]any `json:"details"`
}

// id renders a numeric path value.
func id(n uint) string {
	return strconv.FormatUint(uint64(n), 10)
}
