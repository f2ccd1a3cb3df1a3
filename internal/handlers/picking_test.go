package handlers_test

import (
	"net/http"
	"testing"

	"github.com/diewo77/go-budgets/internal/models"
	"github.com/diewo77/go-budgets/internal/quoting"
	"github.com/diewo77/go-budgets/internal/services"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createPicking(t *testing.T, e *testEnv, owner *models.User, client *models.Client, extra map[string]any) services.PickingSnapshot {
	t.Helper()
	body := map[string]any{"client_id": client.ID, "total_kits": 100, "components_per_kit": 4}
	for k, v := range extra {
		body[k] = v
	}
	rec := serve(t, e.cfg.PickingHandler.Create, call{method: http.MethodPost, uid: owner.ID, body: body})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	return decode[services.PickingSnapshot](t, rec)
}

func TestPickingHandler_Lines(t *testing.T) {
	e := newEnv(t)
	h := e.cfg.PickingHandler
	ana := e.user(t, "ana@example.com", models.ProfileSeller)
	c := e.client(t, "buyer@example.com")
	box := &models.PackagingBox{Name: "Caja chica", LengthCM: decimal.NewFromInt(30), WidthCM: decimal.NewFromInt(20),
		HeightCM: decimal.NewFromInt(10), UnitCost: decimal.RequireFromString("12.5"), IsActive: true}
	require.NoError(t, e.db.Create(box).Error)

	snap := createPicking(t, e, ana, c, nil)
	assert.NotEmpty(t, snap.Number)
	assert.Equal(t, quoting.StatusUnsent, snap.Status)
	assert.Equal(t, "2026-04-09", snap.ValidUntil.Format("2006-01-02"))
	path := map[string]string{"id": id(snap.ID)}

	rec := serve(t, h.Transition, call{method: http.MethodPost, uid: ana.ID, path: path, body: map[string]any{"status": "sent"}})
	require.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "assembly_service_missing", decode[errorBody](t, rec).Error)

	rec = serve(t, h.AddService, call{method: http.MethodPost, uid: ana.ID, path: path,
		body: map[string]any{"category": "assembly", "unit_cost": "1.5", "quantity": 1}})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	snap = decode[services.PickingSnapshot](t, rec)
	require.Len(t, snap.Services, 1)
	assert.Equal(t, quoting.CategoryAssembly, snap.Services[0].Category)
	assert.True(t, snap.Breakdown.Total.IsPositive())

	rec = serve(t, h.AddService, call{method: http.MethodPost, uid: ana.ID, path: path,
		body: map[string]any{"category": "juggling", "unit_cost": "1", "quantity": 1}})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	fields, _ := decode[errorBody](t, rec).Details["fields"].(map[string]any)
	assert.Equal(t, "out_of_range", fields["category"])

	rec = serve(t, h.AddBox, call{method: http.MethodPost, uid: ana.ID, path: path,
		body: map[string]any{"packaging_box_id": box.ID, "quantity": 2}})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	snap = decode[services.PickingSnapshot](t, rec)
	require.Len(t, snap.Boxes, 1)
	assert.True(t, decimal.NewFromInt(25).Equal(snap.Breakdown.BoxesTotal), snap.Breakdown.BoxesTotal.String())

	line := map[string]string{"id": id(snap.ID), "line_id": id(snap.Boxes[0].ID)}
	rec = serve(t, h.UpdateBox, call{method: http.MethodPut, uid: ana.ID, path: line,
		body: map[string]any{"packaging_box_id": box.ID, "quantity": 4}})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	snap = decode[services.PickingSnapshot](t, rec)
	assert.True(t, decimal.NewFromInt(50).Equal(snap.Breakdown.BoxesTotal), snap.Breakdown.BoxesTotal.String())

	rec = serve(t, h.DeleteBox, call{method: http.MethodDelete, uid: ana.ID, path: line})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Empty(t, decode[services.PickingSnapshot](t, rec).Boxes)

	rec = serve(t, h.Transition, call{method: http.MethodPost, uid: ana.ID, path: path, body: map[string]any{"status": "sent"}})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, quoting.StatusSent, decode[services.PickingSnapshot](t, rec).Status)
}

func TestPickingHandler_Ownership(t *testing.T) {
	e := newEnv(t)
	h := e.cfg.PickingHandler
	ana := e.user(t, "ana@example.com", models.ProfileSeller)
	bob := e.user(t, "bob@example.com", models.ProfileSeller)
	snap := createPicking(t, e, ana, e.client(t, "buyer@example.com"), map[string]any{"valid_until": "2026-05-01"})
	assert.Equal(t, "2026-05-01", snap.ValidUntil.Format("2006-01-02"))
	path := map[string]string{"id": id(snap.ID)}

	rec := serve(t, h.Update, call{method: http.MethodPut, uid: bob.ID, path: path,
		body: map[string]any{"client_id": snap.Client.ID, "total_kits": 1, "components_per_kit": 1}})
	require.Equal(t, http.StatusForbidden, rec.Code)

	rec = serve(t, h.Update, call{method: http.MethodPut, uid: ana.ID, path: path,
		body: map[string]any{"client_id": snap.Client.ID, "total_kits": 0, "components_per_kit": 1}})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = serve(t, h.Duplicate, call{method: http.MethodPost, uid: ana.ID, path: path})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	dup := decode[services.PickingSnapshot](t, rec)
	assert.NotEqual(t, snap.Number, dup.Number)

	type list struct {
		Quotes []services.PickingSummary `json:"quotes"`
	}
	rec = serve(t, h.List, call{method: http.MethodGet, target: "/api/picking", uid: ana.ID})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[list](t, rec).Quotes, 2)
	rec = serve(t, h.List, call{method: http.MethodGet, target: "/api/picking", uid: bob.ID})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decode[list](t, rec).Quotes)
}
