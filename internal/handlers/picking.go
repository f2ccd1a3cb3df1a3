package handlers

import (
	"net/http"

	"github.com/diewo77/go-budgets/httpx"
	"github.com/diewo77/go-budgets/internal/gate"
	"github.com/diewo77/go-budgets/internal/models"
	"github.com/diewo77/go-budgets/internal/quoting"
	"github.com/diewo77/go-budgets/internal/services"
)

// PickingHandler serves the picking quote API under /api/picking.
type PickingHandler struct {
	picking *services.PickingQuoteService
	authz   Authorizer
}

func NewPickingHandler(picking *services.PickingQuoteService, authz Authorizer) *PickingHandler {
	return &PickingHandler{picking: picking, authz: authz}
}

type pickingHeader struct {
	ClientID           uint   `json:"client_id"`
	TotalKits          int    `json:"total_kits"`
	ComponentsPerKit   int    `json:"components_per_kit"`
	ValidUntil         Date   `json:"valid_until"`
	Notes              string `json:"notes"`
	PaymentConditionID *uint  `json:"payment_condition_id"`
}

func (h pickingHeader) input() services.PickingInput {
	return services.PickingInput{
		ClientID:           h.ClientID,
		TotalKits:          h.TotalKits,
		ComponentsPerKit:   h.ComponentsPerKit,
		ValidUntil:         h.ValidUntil.Time,
		Notes:              h.Notes,
		PaymentConditionID: h.PaymentConditionID,
	}
}

func (h *PickingHandler) actor(r *http.Request) quoting.Actor {
	return h.authz.Actor(r.Context(), models.ResourcePicking)
}

func (h *PickingHandler) List(w http.ResponseWriter, r *http.Request) {
	f, err := listFilter(r, h.actor(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	quotes, err := h.picking.List(r.Context(), f)
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"quotes": h.picking.Summaries(quotes)})
}

func (h *PickingHandler) Create(w http.ResponseWriter, r *http.Request) {
	var body pickingHeader
	if err := httpx.DecodeJSON(r, &body); err != nil {
		writeError(w, r, err)
		return
	}
	actor := h.actor(r)
	q, err := h.picking.Create(r.Context(), actor, body.input())
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, h.picking.Snapshot(q, actor))
}

func (h *PickingHandler) load(w http.ResponseWriter, r *http.Request, action gate.Action) (*models.PickingQuote, bool) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return nil, false
	}
	q, err := h.picking.Get(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return nil, false
	}
	if err := h.authz.Authorize(r.Context(), action, models.ResourcePicking, q); err != nil {
		writeError(w, r, err)
		return nil, false
	}
	return q, true
}

func (h *PickingHandler) reply(w http.ResponseWriter, r *http.Request, status int, id uint) {
	q, err := h.picking.Get(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.JSON(w, status, h.picking.Snapshot(q, h.actor(r)))
}

func (h *PickingHandler) Get(w http.ResponseWriter, r *http.Request) {
	q, ok := h.load(w, r, gate.ActionView)
	if !ok {
		return
	}
	httpx.JSON(w, http.StatusOK, h.picking.Snapshot(q, h.actor(r)))
}

func (h *PickingHandler) Update(w http.ResponseWriter, r *http.Request) {
	q, ok := h.load(w, r, gate.ActionUpdate)
	if !ok {
		return
	}
	var body pickingHeader
	if err := httpx.DecodeJSON(r, &body); err != nil {
		writeError(w, r, err)
		return
	}
	if _, err := h.picking.UpdateHeader(r.Context(), q.ID, body.input()); err != nil {
		writeError(w, r, err)
		return
	}
	h.reply(w, r, http.StatusOK, q.ID)
}

func (h *PickingHandler) AddService(w http.ResponseWriter, r *http.Request) {
	q, ok := h.load(w, r, gate.ActionUpdate)
	if !ok {
		return
	}
	var in services.ServiceInput
	if err := httpx.DecodeJSON(r, &in); err != nil {
		writeError(w, r, err)
		return
	}
	if _, err := h.picking.AddService(r.Context(), q.ID, in); err != nil {
		writeError(w, r, err)
		return
	}
	h.reply(w, r, http.StatusCreated, q.ID)
}

func (h *PickingHandler) UpdateService(w http.ResponseWriter, r *http.Request) {
	q, ok := h.load(w, r, gate.ActionUpdate)
	if !ok {
		return
	}
	lineID, err := pathID(r, "line_id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var in services.ServiceInput
	if err := httpx.DecodeJSON(r, &in); err != nil {
		writeError(w, r, err)
		return
	}
	if _, err := h.picking.UpdateService(r.Context(), q.ID, lineID, in); err != nil {
		writeError(w, r, err)
		return
	}
	h.reply(w, r, http.StatusOK, q.ID)
}

func (h *PickingHandler) DeleteService(w http.ResponseWriter, r *http.Request) {
	q, ok := h.load(w, r, gate.ActionUpdate)
	if !ok {
		return
	}
	lineID, err := pathID(r, "line_id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.picking.DeleteService(r.Context(), q.ID, lineID); err != nil {
		writeError(w, r, err)
		return
	}
	h.reply(w, r, http.StatusOK, q.ID)
}

func (h *PickingHandler) AddBox(w http.ResponseWriter, r *http.Request) {
	q, ok := h.load(w, r, gate.ActionUpdate)
	if !ok {
		return
	}
	var in services.BoxInput
	if err := httpx.DecodeJSON(r, &in); err != nil {
		writeError(w, r, err)
		return
	}
	if _, err := h.picking.AddBox(r.Context(), q.ID, in); err != nil {
		writeError(w, r, err)
		return
	}
	h.reply(w, r, http.StatusCreated, q.ID)
}

func (h *PickingHandler) UpdateBox(w http.ResponseWriter, r *http.Request) {
	q, ok := h.load(w, r, gate.ActionUpdate)
	if !ok {
		return
	}
	lineID, err := pathID(r, "line_id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var in services.BoxInput
	if err := httpx.DecodeJSON(r, &in); err != nil {
		writeError(w, r, err)
		return
	}
	if _, err := h.picking.UpdateBox(r.Context(), q.ID, lineID, in); err != nil {
		writeError(w, r, err)
		return
	}
	h.reply(w, r, http.StatusOK, q.ID)
}

func (h *PickingHandler) DeleteBox(w http.ResponseWriter, r *http.Request) {
	q, ok := h.load(w, r, gate.ActionUpdate)
	if !ok {
		return
	}
	lineID, err := pathID(r, "line_id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.picking.DeleteBox(r.Context(), q.ID, lineID); err != nil {
		writeError(w, r, err)
		return
	}
	h.reply(w, r, http.StatusOK, q.ID)
}

// Transition changes the picking quote status. Sending also needs the send permission.
func (h *PickingHandler) Transition(w http.ResponseWriter, r *http.Request) {
	q, ok := h.load(w, r, gate.ActionUpdate)
	if !ok {
		return
	}
	var body transitionRequest
	if err := httpx.DecodeJSON(r, &body); err != nil {
		writeError(w, r, err)
		return
	}
	to, err := quoting.ParseStatus(body.Status)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if to == quoting.StatusSent {
		if err := h.authz.Authorize(r.Context(), gate.ActionSend, models.ResourcePicking, q); err != nil {
			writeError(w, r, err)
			return
		}
	}
	actor := h.actor(r)
	updated, err := h.picking.Transition(r.Context(), actor, q.ID, to)
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, h.picking.Snapshot(updated, actor))
}

func (h *PickingHandler) Duplicate(w http.ResponseWriter, r *http.Request) {
	q, ok := h.load(w, r, gate.ActionDuplicate)
	if !ok {
		return
	}
	actor := h.actor(r)
	dup, err := h.picking.Duplicate(r.Context(), actor, q.ID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, h.picking.Snapshot(dup, actor))
}
