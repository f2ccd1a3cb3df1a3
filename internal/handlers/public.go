package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/diewo77/go-budgets/httpx"
	"github.com/diewo77/go-budgets/internal/metrics"
	"github.com/diewo77/go-budgets/internal/quoting"
	"github.com/diewo77/go-budgets/internal/services"
)

// PublicHandler serves the client-facing quote link and the web quote request form.
// None of its routes need a session.
type PublicHandler struct {
	quotes   *services.QuoteService
	picking  *services.PickingQuoteService
	requests *services.QuoteRequestService
}

func NewPublicHandler(quotes *services.QuoteService, picking *services.PickingQuoteService, requests *services.QuoteRequestService) *PublicHandler {
	return &PublicHandler{quotes: quotes, picking: picking, requests: requests}
}

type publicQuote struct {
	Kind  string `json:"kind"`
	Quote any    `json:"quote"`
}

// find resolves token against merchandise quotes first, then picking quotes.
func (h *PublicHandler) find(ctx context.Context, token string) (publicQuote, error) {
	q, err := h.quotes.GetByToken(ctx, token)
	if err == nil {
		snap := h.quotes.Snapshot(q, quoting.Actor{})
		snap.AllowedTransitions = nil
		return publicQuote{Kind: metrics.KindMerchandise, Quote: snap}, nil
	}
	if !errors.Is(err, services.ErrInvalidToken) {
		return publicQuote{}, err
	}
	pq, err := h.picking.GetByToken(ctx, token)
	if err != nil {
		return publicQuote{}, err
	}
	snap := h.picking.Snapshot(pq, quoting.Actor{})
	snap.AllowedTransitions = nil
	return publicQuote{Kind: metrics.KindPicking, Quote: snap}, nil
}

func (h *PublicHandler) Show(w http.ResponseWriter, r *http.Request) {
	pq, err := h.find(r.Context(), r.PathValue("token"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, pq)
}

func (h *PublicHandler) Approve(w http.ResponseWriter, r *http.Request) {
	h.respond(w, r, true)
}

func (h *PublicHandler) Reject(w http.ResponseWriter, r *http.Request) {
	h.respond(w, r, false)
}

func (h *PublicHandler) respond(w http.ResponseWriter, r *http.Request, approve bool) {
	ctx := r.Context()
	token := r.PathValue("token")
	pq, err := h.find(ctx, token)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if pq.Kind == metrics.KindMerchandise {
		_, err = h.quotes.RespondByToken(ctx, token, approve)
	} else {
		_, err = h.picking.RespondByToken(ctx, token, approve)
	}
	if err != nil {
		writeError(w, r, err)
		return
	}
	pq, err = h.find(ctx, token)
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, pq)
}

// SubmitRequest turns the public quote request form into a quote assigned to the next seller.
func (h *PublicHandler) SubmitRequest(w http.ResponseWriter, r *http.Request) {
	var in services.QuoteRequestInput
	if err := httpx.DecodeJSON(r, &in); err != nil {
		writeError(w, r, err)
		return
	}
	res, err := h.requests.Submit(r.Context(), in)
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, map[string]any{
		"quote_id":       res.Quote.ID,
		"total":          res.Quote.Total,
		"seller":         res.Seller.DisplayName(),
		"client_created": res.ClientCreated,
		"warnings":       res.Warnings,
	})
}
