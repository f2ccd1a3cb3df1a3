package services

import (
	"context"
	"testing"

	appdb "github.com/diewo77/go-budgets/internal/db"
	"github.com/diewo77/go-budgets/internal/models"
	"github.com/diewo77/go-budgets/internal/quoting"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type pickingFixture struct {
	db      *gorm.DB
	svc     *PickingQuoteService
	owner   *models.User
	client  *models.Client
	box     *models.PackagingBox
	contado *models.PaymentCondition
}

func newPickingFixture(t *testing.T) pickingFixture {
	t.Helper()
	gdb := openTestDB(t)
	require.NoError(t, appdb.SeedReference(gdb))
	var contado models.PaymentCondition
	require.NoError(t, gdb.Where("name = ?", "Contado").First(&contado).Error)
	box := &models.PackagingBox{Name: "Caja chica", LengthCM: dec("30"), WidthCM: dec("20"), HeightCM: dec("10"), UnitCost: dec("2"), IsActive: true}
	require.NoError(t, gdb.Create(box).Error)
	return pickingFixture{
		db:      gdb,
		svc:     NewPickingQuoteService(gdb, testOptions()),
		owner:   newSeller(t, gdb, "vendor@example.com"),
		client:  newClient(t, gdb, "buyer@example.com"),
		box:     box,
		contado: &contado,
	}
}

func (f pickingFixture) create(t *testing.T) *models.PickingQuote {
	t.Helper()
	q, err := f.svc.Create(context.Background(), seller(f.owner.ID), PickingInput{
		ClientID:           f.client.ID,
		TotalKits:          100,
		ComponentsPerKit:   8,
		PaymentConditionID: &f.contado.ID,
	})
	require.NoError(t, err)
	return q
}

// fillScenario adds 600 of assembly, 400 of labeling and 200 of boxes.
func (f pickingFixture) fillScenario(t *testing.T, id uint) {
	t.Helper()
	ctx := context.Background()
	_, err := f.svc.AddService(ctx, id, ServiceInput{Category: quoting.CategoryAssembly, UnitCost: decp("6"), Quantity: 100})
	require.NoError(t, err)
	_, err = f.svc.AddService(ctx, id, ServiceInput{Category: quoting.CategoryLabeling, UnitCost: decp("4"), Quantity: 100})
	require.NoError(t, err)
	_, err = f.svc.AddBox(ctx, id, BoxInput{PackagingBoxID: f.box.ID, Quantity: 100})
	require.NoError(t, err)
}

func TestPickingQuoteService_Numbering(t *testing.T) {
	f := newPickingFixture(t)
	first := f.create(t)
	second := f.create(t)
	assert.Equal(t, "PK-2026-0001", first.Number)
	assert.Equal(t, "PK-2026-0002", second.Number)
	assert.Equal(t, quoting.StatusUnsent, first.Status)
	assert.Equal(t, "2026-04-09", first.ValidUntil.UTC().Format("2006-01-02"))
}

func TestPickingQuoteService_Scenario(t *testing.T) {
	f := newPickingFixture(t)
	q := f.create(t)
	f.fillScenario(t, q.ID)

	got, err := f.svc.Get(context.Background(), q.ID)
	require.NoError(t, err)
	b := got.Breakdown()
	for _, c := range []struct {
		field string
		got   decimal.Decimal
		want  string
	}{
		{"services_subtotal", b.ServicesSubtotal, "1000"},
		{"component_increment_percentage", b.ComponentIncrementPct, "10"},
		{"component_increment_amount", b.ComponentIncrementAmount, "100"},
		{"subtotal_with_increment", b.SubtotalWithIncrement, "1100"},
		{"boxes_total", b.BoxesTotal, "200"},
		{"pre_payment_subtotal", b.PrePaymentSubtotal, "1300"},
		{"payment_condition_percentage", b.PaymentConditionPct, "-5"},
		{"payment_condition_amount", b.PaymentConditionAmount, "-65"},
		{"subtotal_with_payment", b.SubtotalWithPayment, "1235"},
		{"tax_amount", b.TaxAmount, "259.35"},
		{"total", b.Total, "1494.35"},
		{"unit_price_per_kit", b.UnitPricePerKit, "14.94"},
	} {
		assert.True(t, c.got.Equal(dec(c.want)), "%s = %s, want %s", c.field, c.got, c.want)
	}
}

func TestPickingQuoteService_HeaderChangeRecalculates(t *testing.T) {
	f := newPickingFixture(t)
	ctx := context.Background()
	q := f.create(t)
	f.fillScenario(t, q.ID)

	// 3 components per kit falls in the 0% band and no payment condition applies.
	got, err := f.svc.UpdateHeader(ctx, q.ID, PickingInput{ClientID: f.client.ID, TotalKits: 100, ComponentsPerKit: 3})
	require.NoError(t, err)
	assert.True(t, got.ComponentIncrementAmount.IsZero())
	assert.True(t, got.PaymentConditionAmount.IsZero())
	assert.True(t, got.Total.Equal(dec("1452")), "total = %s", got.Total)
	assert.True(t, got.UnitPricePerKit.Equal(dec("14.52")), "unit = %s", got.UnitPricePerKit)
}

func TestPickingQuoteService_DeleteLines(t *testing.T) {
	f := newPickingFixture(t)
	ctx := context.Background()
	q := f.create(t)
	f.fillScenario(t, q.ID)
	got, err := f.svc.Get(ctx, q.ID)
	require.NoError(t, err)

	require.NoError(t, f.svc.DeleteBox(ctx, q.ID, got.Boxes[0].ID))
	require.NoError(t, f.svc.DeleteService(ctx, q.ID, got.Services[1].ID))
	got, err = f.svc.Get(ctx, q.ID)
	require.NoError(t, err)
	assert.Len(t, got.Services, 1)
	assert.Empty(t, got.Boxes)
	assert.True(t, got.ServicesSubtotal.Equal(dec("600")))
	assert.True(t, got.BoxesTotal.IsZero())

	assert.ErrorIs(t, f.svc.DeleteBox(ctx, q.ID, 9999), ErrItemNotFound)
}

func TestPickingQuoteService_CostScaleDefault(t *testing.T) {
	f := newPickingFixture(t)
	ctx := context.Background()
	require.NoError(t, f.db.Create(&models.CostScale{QuantityFrom: 1, QuantityTo: intp(50), AssemblyCost: dec("9"), IsActive: true}).Error)
	require.NoError(t, f.db.Create(&models.CostScale{QuantityFrom: 51, AssemblyCost: dec("7.5"), IsActive: true}).Error)
	q := f.create(t)

	svc, err := f.svc.AddService(ctx, q.ID, ServiceInput{Category: quoting.CategoryAssembly, Quantity: 100})
	require.NoError(t, err)
	assert.True(t, svc.UnitCost.Equal(dec("7.5")), "unit cost = %s", svc.UnitCost)
	assert.True(t, svc.Subtotal.Equal(dec("750")))

	none, err := f.svc.AddService(ctx, q.ID, ServiceInput{Category: quoting.CategoryBag, Quantity: 100})
	require.NoError(t, err)
	assert.True(t, none.UnitCost.IsZero())
}

func TestPickingQuoteService_BoxSnapshot(t *testing.T) {
	f := newPickingFixture(t)
	ctx := context.Background()
	q := f.create(t)
	line, err := f.svc.AddBox(ctx, q.ID, BoxInput{PackagingBoxID: f.box.ID, Quantity: 10})
	require.NoError(t, err)

	require.NoError(t, f.db.Model(f.box).Update("unit_cost", dec("5")).Error)
	line, err = f.svc.UpdateBox(ctx, q.ID, line.ID, BoxInput{PackagingBoxID: f.box.ID, Quantity: 20})
	require.NoError(t, err)
	assert.True(t, line.UnitCost.Equal(dec("2")), "snapshot kept: %s", line.UnitCost)
	assert.True(t, line.Subtotal.Equal(dec("40")))
	assert.Equal(t, "30 x 20 x 10 cm", line.Dimensions())

	_, err = f.svc.AddBox(ctx, q.ID, BoxInput{PackagingBoxID: 9999, Quantity: 1})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestPickingQuoteService_SendNeedsAssembly(t *testing.T) {
	f := newPickingFixture(t)
	ctx := context.Background()
	q := f.create(t)
	_, err := f.svc.AddService(ctx, q.ID, ServiceInput{Category: quoting.CategoryLabeling, UnitCost: decp("1"), Quantity: 10})
	require.NoError(t, err)

	_, err = f.svc.Transition(ctx, seller(f.owner.ID), q.ID, quoting.StatusSent)
	require.ErrorIs(t, err, quoting.ErrAssemblyMissing)

	_, err = f.svc.AddService(ctx, q.ID, ServiceInput{Category: quoting.CategoryAssembly, UnitCost: decp("1"), Quantity: 10})
	require.NoError(t, err)
	sent, err := f.svc.Transition(ctx, seller(f.owner.ID), q.ID, quoting.StatusSent)
	require.NoError(t, err)
	assert.Equal(t, quoting.StatusSent, sent.Status)

	_, err = f.svc.AddService(ctx, q.ID, ServiceInput{Category: quoting.CategoryBag, UnitCost: decp("1"), Quantity: 1})
	assert.ErrorIs(t, err, quoting.ErrNotEditable)
}

func TestPickingQuoteService_DuplicateAndRespond(t *testing.T) {
	f := newPickingFixture(t)
	ctx := context.Background()
	q := f.create(t)
	f.fillScenario(t, q.ID)
	_, err := f.svc.Transition(ctx, seller(f.owner.ID), q.ID, quoting.StatusSent)
	require.NoError(t, err)

	approved, err := f.svc.RespondByToken(ctx, q.PublicToken, true)
	require.NoError(t, err)
	assert.Equal(t, quoting.StatusApproved, approved.Status)
	_, err = f.svc.RespondByToken(ctx, q.PublicToken, false)
	assert.ErrorIs(t, err, quoting.ErrTransitionNotAllowed)

	dup, err := f.svc.Duplicate(ctx, seller(f.owner.ID), q.ID)
	require.NoError(t, err)
	assert.Equal(t, "PK-2026-0002", dup.Number)
	assert.Equal(t, quoting.StatusDraft, dup.Status)
	assert.Len(t, dup.Services, 2)
	assert.Len(t, dup.Boxes, 1)
	assert.True(t, dup.Total.Equal(dec("1494.35")), "total = %s", dup.Total)
}

func TestPickingQuoteService_Validation(t *testing.T) {
	f := newPickingFixture(t)
	_, err := f.svc.Create(context.Background(), seller(f.owner.ID), PickingInput{ClientID: f.client.ID})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "must_be_positive", verr.Violations["total_kits"])
	assert.Equal(t, "must_be_positive", verr.Violations["components_per_kit"])

	q := f.create(t)
	_, err = f.svc.AddService(context.Background(), q.ID, ServiceInput{Category: "gift_wrap", Quantity: 1})
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "out_of_range", verr.Violations["category"])
}

func intp(v int) *int { return &v }
