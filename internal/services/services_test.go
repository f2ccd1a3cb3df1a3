package services

import (
	"strings"
	"testing"
	"time"

	appdb "github.com/diewo77/go-budgets/internal/db"
	"github.com/diewo77/go-budgets/internal/models"
	"github.com/diewo77/go-budgets/internal/quoting"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var fixedNow = time.Date(2026, 3, 10, 15, 30, 0, 0, time.UTC)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func decp(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := "file:" + name + "?mode=memory&cache=shared"
	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	require.NoError(t, appdb.Migrate(gdb))
	require.NoError(t, appdb.SeedProfiles(gdb))
	return gdb
}

func testOptions() Options {
	return Options{
		Tax:          quoting.DefaultTax(),
		ValidityDays: 30,
		Now:          func() time.Time { return fixedNow },
	}
}

func newUser(t *testing.T, gdb *gorm.DB, email, profile string, active bool) *models.User {
	t.Helper()
	var p models.Profile
	require.NoError(t, gdb.Where("name = ?", profile).First(&p).Error)
	u := &models.User{Email: email, Name: strings.Split(email, "@")[0], Password: "x", IsActive: true, ProfileID: &p.ID}
	require.NoError(t, gdb.Create(u).Error)
	if !active {
		require.NoError(t, gdb.Model(u).Update("is_active", false).Error)
		u.IsActive = false
	}
	return u
}

func newSeller(t *testing.T, gdb *gorm.DB, email string) *models.User {
	return newUser(t, gdb, email, models.ProfileSeller, true)
}

func newClient(t *testing.T, gdb *gorm.DB, email string) *models.Client {
	t.Helper()
	c := &models.Client{Name: "Acme", Email: email}
	require.NoError(t, gdb.Create(c).Error)
	return c
}

func newProduct(t *testing.T, gdb *gorm.DB, name, price string) *models.Product {
	t.Helper()
	p := &models.Product{Code: strings.ToUpper(name), Name: name, Price: dec(price), IsActive: true}
	require.NoError(t, gdb.Create(p).Error)
	return p
}

func seller(id uint) quoting.Actor  { return quoting.Actor{UserID: id} }
func manager(id uint) quoting.Actor { return quoting.Actor{UserID: id, Elevated: true} }
