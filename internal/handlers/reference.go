package handlers

import (
	"context"
	"net/http"

	"github.com/diewo77/go-budgets/httpx"
	"github.com/diewo77/go-budgets/internal/services"
)

// ReferenceHandler manages the pricing reference tables under /api/reference.
// Listing accepts ?active=1 to hide inactive rows.
type ReferenceHandler struct {
	ref *services.ReferenceService
}

func NewReferenceHandler(ref *services.ReferenceService) *ReferenceHandler {
	return &ReferenceHandler{ref: ref}
}

func listRef[T any](w http.ResponseWriter, r *http.Request, list func(context.Context, bool) ([]T, error)) {
	rows, err := list(r.Context(), queryBool(r, "active"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"items": rows})
}

func createRef[In, T any](w http.ResponseWriter, r *http.Request, create func(context.Context, In) (*T, error)) {
	var in In
	if err := httpx.DecodeJSON(r, &in); err != nil {
		writeError(w, r, err)
		return
	}
	row, err := create(r.Context(), in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, row)
}

func updateRef[In, T any](w http.ResponseWriter, r *http.Request, update func(context.Context, uint, In) (*T, error)) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var in In
	if err := httpx.DecodeJSON(r, &in); err != nil {
		writeError(w, r, err)
		return
	}
	row, err := update(r.Context(), id, in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, row)
}

func deleteRef(w http.ResponseWriter, r *http.Request, del func(context.Context, uint) error) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := del(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	noContent(w)
}

func (h *ReferenceHandler) ListPaymentConditions(w http.ResponseWriter, r *http.Request) {
	listRef(w, r, h.ref.PaymentConditions)
}

func (h *ReferenceHandler) CreatePaymentCondition(w http.ResponseWriter, r *http.Request) {
	createRef(w, r, h.ref.CreatePaymentCondition)
}

func (h *ReferenceHandler) UpdatePaymentCondition(w http.ResponseWriter, r *http.Request) {
	updateRef(w, r, h.ref.UpdatePaymentCondition)
}

func (h *ReferenceHandler) DeletePaymentCondition(w http.ResponseWriter, r *http.Request) {
	deleteRef(w, r, h.ref.DeletePaymentCondition)
}

func (h *ReferenceHandler) ListBoxes(w http.ResponseWriter, r *http.Request) {
	listRef(w, r, h.ref.Boxes)
}

func (h *ReferenceHandler) CreateBox(w http.ResponseWriter, r *http.Request) {
	createRef(w, r, h.ref.CreateBox)
}

func (h *ReferenceHandler) UpdateBox(w http.ResponseWriter, r *http.Request) {
	updateRef(w, r, h.ref.UpdateBox)
}

func (h *ReferenceHandler) DeleteBox(w http.ResponseWriter, r *http.Request) {
	deleteRef(w, r, h.ref.DeleteBox)
}

func (h *ReferenceHandler) ListIncrementRules(w http.ResponseWriter, r *http.Request) {
	listRef(w, r, h.ref.IncrementRules)
}

func (h *ReferenceHandler) CreateIncrementRule(w http.ResponseWriter, r *http.Request) {
	createRef(w, r, h.ref.CreateIncrementRule)
}

func (h *ReferenceHandler) UpdateIncrementRule(w http.ResponseWriter, r *http.Request) {
	updateRef(w, r, h.ref.UpdateIncrementRule)
}

func (h *ReferenceHandler) DeleteIncrementRule(w http.ResponseWriter, r *http.Request) {
	deleteRef(w, r, h.ref.DeleteIncrementRule)
}

func (h *ReferenceHandler) ListCostScales(w http.ResponseWriter, r *http.Request) {
	listRef(w, r, h.ref.CostScales)
}

func (h *ReferenceHandler) CreateCostScale(w http.ResponseWriter, r *http.Request) {
	createRef(w, r, h.ref.CreateCostScale)
}

func (h *ReferenceHandler) UpdateCostScale(w http.ResponseWriter, r *http.Request) {
	updateRef(w, r, h.ref.UpdateCostScale)
}

func (h *ReferenceHandler) DeleteCostScale(w http.ResponseWriter, r *http.Request) {
	deleteRef(w, r, h.ref.DeleteCostScale)
}
