package handlers

import (
	"net/http"

	"github.com/diewo77/go-budgets/httpx"
	"github.com/diewo77/go-budgets/internal/gate"
	"github.com/diewo77/go-budgets/internal/models"
	"github.com/diewo77/go-budgets/internal/quoting"
	"github.com/diewo77/go-budgets/internal/services"
)

// QuoteHandler serves the merchandise quote API under /api/quotes.
type QuoteHandler struct {
	quotes *services.QuoteService
	authz  Authorizer
}

func NewQuoteHandler(quotes *services.QuoteService, authz Authorizer) *QuoteHandler {
	return &QuoteHandler{quotes: quotes, authz: authz}
}

type quoteHeader struct {
	Title          string `json:"title"`
	ClientID       uint   `json:"client_id"`
	IssueDate      Date   `json:"issue_date"`
	ExpiryDate     Date   `json:"expiry_date"`
	FooterComments string `json:"footer_comments"`
}

func (h quoteHeader) input() services.QuoteInput {
	return services.QuoteInput{
		Title:          h.Title,
		ClientID:       h.ClientID,
		IssueDate:      h.IssueDate.Time,
		ExpiryDate:     h.ExpiryDate.Time,
		FooterComments: h.FooterComments,
	}
}

// listFilter reads the common list query parameters. Actors without override
// only see their own quotes.
func listFilter(r *http.Request, actor quoting.Actor) (services.ListFilter, error) {
	f := services.ListFilter{
		ClientID: uint(queryInt(r, "client_id")),
		Limit:    queryInt(r, "limit"),
		Offset:   queryInt(r, "offset"),
	}
	if s := r.URL.Query().Get("status"); s != "" {
		st, err := quoting.ParseStatus(s)
		if err != nil {
			return f, err
		}
		f.Status = st
	}
	if !actor.Elevated {
		uid := actor.UserID
		f.OwnerID = &uid
	}
	return f, nil
}

func (h *QuoteHandler) List(w http.ResponseWriter, r *http.Request) {
	actor := h.authz.Actor(r.Context(), models.ResourceQuote)
	f, err := listFilter(r, actor)
	if err != nil {
		writeError(w, r, err)
		return
	}
	quotes, err := h.quotes.List(r.Context(), f)
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"quotes": h.quotes.Summaries(quotes)})
}

func (h *QuoteHandler) Create(w http.ResponseWriter, r *http.Request) {
	var body quoteHeader
	if err := httpx.DecodeJSON(r, &body); err != nil {
		writeError(w, r, err)
		return
	}
	actor := h.authz.Actor(r.Context(), models.ResourceQuote)
	q, err := h.quotes.Create(r.Context(), actor, body.input())
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, h.quotes.Snapshot(q, actor))
}

// load fetches the quote named by the path and checks action on it.
func (h *QuoteHandler) load(w http.ResponseWriter, r *http.Request, action gate.Action) (*models.Quote, bool) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return nil, false
	}
	q, err := h.quotes.Get(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return nil, false
	}
	if err := h.authz.Authorize(r.Context(), action, models.ResourceQuote, q); err != nil {
		writeError(w, r, err)
		return nil, false
	}
	return q, true
}

// reply writes the fresh snapshot of quote id.
func (h *QuoteHandler) reply(w http.ResponseWriter, r *http.Request, status int, id uint) {
	q, err := h.quotes.Get(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.JSON(w, status, h.quotes.Snapshot(q, h.authz.Actor(r.Context(), models.ResourceQuote)))
}

func (h *QuoteHandler) Get(w http.ResponseWriter, r *http.Request) {
	q, ok := h.load(w, r, gate.ActionView)
	if !ok {
		return
	}
	httpx.JSON(w, http.StatusOK, h.quotes.Snapshot(q, h.authz.Actor(r.Context(), models.ResourceQuote)))
}

func (h *QuoteHandler) Update(w http.ResponseWriter, r *http.Request) {
	q, ok := h.load(w, r, gate.ActionUpdate)
	if !ok {
		return
	}
	var body quoteHeader
	if err := httpx.DecodeJSON(r, &body); err != nil {
		writeError(w, r, err)
		return
	}
	if _, err := h.quotes.UpdateHeader(r.Context(), q.ID, body.input()); err != nil {
		writeError(w, r, err)
		return
	}
	h.reply(w, r, http.StatusOK, q.ID)
}

func (h *QuoteHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	q, ok := h.load(w, r, gate.ActionUpdate)
	if !ok {
		return
	}
	var in services.ItemInput
	if err := httpx.DecodeJSON(r, &in); err != nil {
		writeError(w, r, err)
		return
	}
	if _, err := h.quotes.AddItem(r.Context(), q.ID, in); err != nil {
		writeError(w, r, err)
		return
	}
	h.reply(w, r, http.StatusCreated, q.ID)
}

func (h *QuoteHandler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	q, ok := h.load(w, r, gate.ActionUpdate)
	if !ok {
		return
	}
	itemID, err := pathID(r, "item_id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var in services.ItemInput
	if err := httpx.DecodeJSON(r, &in); err != nil {
		writeError(w, r, err)
		return
	}
	if _, err := h.quotes.UpdateItem(r.Context(), q.ID, itemID, in); err != nil {
		writeError(w, r, err)
		return
	}
	h.reply(w, r, http.StatusOK, q.ID)
}

func (h *QuoteHandler) DeleteItem(w http.ResponseWriter, r *http.Request) {
	q, ok := h.load(w, r, gate.ActionUpdate)
	if !ok {
		return
	}
	itemID, err := pathID(r, "item_id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.quotes.DeleteItem(r.Context(), q.ID, itemID); err != nil {
		writeError(w, r, err)
		return
	}
	h.reply(w, r, http.StatusOK, q.ID)
}

type variantSelection struct {
	Group  string `json:"group"`
	ItemID uint   `json:"item_id"`
}

// SelectVariant makes one option the selected item of its variant group.
func (h *QuoteHandler) SelectVariant(w http.ResponseWriter, r *http.Request) {
	q, ok := h.load(w, r, gate.ActionUpdate)
	if !ok {
		return
	}
	var body variantSelection
	if err := httpx.DecodeJSON(r, &body); err != nil {
		writeError(w, r, err)
		return
	}
	if _, err := h.quotes.SelectVariant(r.Context(), q.ID, body.Group, body.ItemID); err != nil {
		writeError(w, r, err)
		return
	}
	h.reply(w, r, http.StatusOK, q.ID)
}

type transitionRequest struct {
	Status string `json:"status"`
}

// Transition changes the quote status. Sending also needs the send permission.
func (h *QuoteHandler) Transition(w http.ResponseWriter, r *http.Request) {
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
		if err := h.authz.Authorize(r.Context(), gate.ActionSend, models.ResourceQuote, q); err != nil {
			writeError(w, r, err)
			return
		}
	}
	actor := h.authz.Actor(r.Context(), models.ResourceQuote)
	updated, err := h.quotes.Transition(r.Context(), actor, q.ID, to)
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, h.quotes.Snapshot(updated, actor))
}

func (h *QuoteHandler) Duplicate(w http.ResponseWriter, r *http.Request) {
	q, ok := h.load(w, r, gate.ActionDuplicate)
	if !ok {
		return
	}
	actor := h.authz.Actor(r.Context(), models.ResourceQuote)
	dup, err := h.quotes.Duplicate(r.Context(), actor, q.ID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, h.quotes.Snapshot(dup, actor))
}
