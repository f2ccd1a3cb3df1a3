package handlers

import (
	"net/http"

	"github.com/diewo77/go-budgets/auth"
	"github.com/diewo77/go-budgets/httpx"
	"github.com/diewo77/go-budgets/internal/services"
)

// NotificationHandler serves the signed-in user's dashboard notifications.
type NotificationHandler struct {
	notes *services.NotificationService
}

func NewNotificationHandler(notes *services.NotificationService) *NotificationHandler {
	return &NotificationHandler{notes: notes}
}

// List accepts ?unread=1.
func (h *NotificationHandler) List(w http.ResponseWriter, r *http.Request) {
	uid, _ := auth.UserIDFromContext(r.Context())
	notes, err := h.notes.List(r.Context(), uid, queryBool(r, "unread"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"notifications": notes})
}

func (h *NotificationHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	uid, _ := auth.UserIDFromContext(r.Context())
	if err := h.notes.MarkRead(r.Context(), uid, id); err != nil {
		writeError(w, r, err)
		return
	}
	noContent(w)
}
