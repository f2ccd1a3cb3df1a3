package services

import (
	"context"
	"testing"

	"github.com/diewo77/go-budgets/internal/quoting"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQuoteService_Snapshot(t *testing.T) {
	f := newQuoteFixture(t)
	ctx := context.Background()
	_, optB := f.addScenarioItems(t)
	q, err := f.svc.Get(ctx, f.quote.ID)
	require.NoError(t, err)

	snap := f.svc.Snapshot(q, seller(f.owner.ID))
	assert.Equal(t, quoting.StatusUnsent, snap.EffectiveStatus)
	assert.True(t, snap.Editable)
	assert.NotContains(t, snap.AllowedTransitions, quoting.StatusApproved)
	assert.Contains(t, snap.AllowedTransitions, quoting.StatusSent)
	assert.Equal(t, "IVA 21%", snap.TaxLabel)
	assert.Equal(t, "1512.50", snap.TotalText)
	assert.Equal(t, "buyer@example.com", snap.Client.Email)
	assert.Equal(t, "seller", snap.Seller.Name)

	require.Len(t, snap.Regular, 1)
	require.Len(t, snap.Groups, 1)
	g := snap.Groups[0]
	assert.Equal(t, "A", g.Key)
	assert.True(t, g.Explicit)
	require.Len(t, g.Options, 2)
	assert.True(t, g.Options[0].Selected)
	assert.False(t, g.Options[1].Selected)
	assert.Equal(t, optB.ID, g.Options[1].ID)
	assert.True(t, g.Options[1].LineTotal.Equal(dec("300")))

	elevated := f.svc.Snapshot(q, manager(99))
	assert.Contains(t, elevated.AllowedTransitions, quoting.StatusApproved)
}

func TestPickingQuoteService_Snapshot(t *testing.T) {
	f := newPickingFixture(t)
	q := f.create(t)
	f.fillScenario(t, q.ID)
	got, err := f.svc.Get(context.Background(), q.ID)
	require.NoError(t, err)

	snap := f.svc.Snapshot(got, seller(f.owner.ID))
	assert.Equal(t, "PK-2026-0001", snap.Number)
	assert.Equal(t, "1494.35", snap.TotalText)
	assert.Equal(t, "Contado (-5%)", snap.PaymentConditionLabel)
	require.Len(t, snap.Services, 2)
	assert.Equal(t, quoting.CategoryAssembly.Label(), snap.Services[0].CategoryLabel)
	require.Len(t, snap.Boxes, 1)
	assert.Equal(t, "30 x 20 x 10 cm", snap.Boxes[0].Dimensions)
	assert.True(t, snap.Breakdown.UnitPricePerKit.Equal(dec("14.94")))
}
