// Package handlers exposes the quote engine as a JSON HTTP API.
package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/diewo77/go-budgets/httpx"
	"github.com/diewo77/go-budgets/i18n"
	"github.com/diewo77/go-budgets/internal/gate"
	"github.com/diewo77/go-budgets/internal/quoting"
	"github.com/diewo77/go-budgets/internal/services"
	"go.uber.org/zap"
)

// Authorizer is the part of policy.AuthGate the handlers use.
type Authorizer interface {
	Authorize(ctx context.Context, action gate.Action, resourceType string, resource any) error
	CanProfile(ctx context.Context, action gate.Action, resourceType string) bool
	Actor(ctx context.Context, resourceType string) quoting.Actor
	InvalidateUser(userID uint)
	InvalidateAll()
}

var errInvalidID = errors.New("invalid_id")

// errorStatus maps error codes to HTTP statuses; the first match wins.
var errorStatus = []struct {
	err    error
	status int
}{
	{httpx.ErrBadJSON, http.StatusBadRequest},
	{errInvalidID, http.StatusBadRequest},
	{quoting.ErrUnknownStatus, http.StatusBadRequest},
	{services.ErrInvalidCredentials, http.StatusUnauthorized},
	{gate.ErrUnauthorized, http.StatusForbidden},
	{quoting.ErrElevatedRequired, http.StatusForbidden},
	{services.ErrQuoteNotFound, http.StatusNotFound},
	{services.ErrItemNotFound, http.StatusNotFound},
	{services.ErrNotFound, http.StatusNotFound},
	{services.ErrInvalidToken, http.StatusNotFound},
	{quoting.ErrNotEditable, http.StatusConflict},
	{quoting.ErrDuplicateOnly, http.StatusConflict},
	{quoting.ErrTransitionNotAllowed, http.StatusConflict},
	{quoting.ErrClientContactMissing, http.StatusConflict},
	{quoting.ErrAssemblyMissing, http.StatusConflict},
	{services.ErrStatusChanged, http.StatusConflict},
	{services.ErrReferenceInUse, http.StatusConflict},
	{services.ErrInvalidVariantSelection, http.StatusConflict},
	{services.ErrNoSellerAvailable, http.StatusServiceUnavailable},
}

// writeError translates err into the JSON error body.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	lang := i18n.LangFromContext(r.Context())

	var ve *services.ValidationError
	if errors.As(err, &ve) {
		httpx.Error(w, http.StatusBadRequest, "validation_failed", i18n.T(lang, "validation_failed"), map[string]any{
			"fields":   ve.Violations,
			"messages": i18n.TranslateAll(lang, ve.Violations),
		})
		return
	}

	for _, e := range errorStatus {
		if !errors.Is(err, e.err) {
			continue
		}
		code := e.err.Error()
		if e.err == gate.ErrUnauthorized {
			code = "forbidden"
		}
		var details any
		var te *quoting.TransitionError
		if errors.As(err, &te) {
			details = map[string]quoting.Status{"from": te.From, "to": te.To}
		}
		httpx.Error(w, e.status, code, i18n.T(lang, code), details)
		return
	}

	zap.L().Error("request failed",
		zap.String("method", r.Method), zap.String("path", r.URL.Path), zap.Error(err))
	httpx.Error(w, http.StatusInternalServerError, "db_error", i18n.T(lang, "db_error"), nil)
}

// pathID parses a positive numeric path value.
func pathID(r *http.Request, name string) (uint, error) {
	id, err := strconv.ParseUint(r.PathValue(name), 10, 64)
	if err != nil || id == 0 {
		return 0, errInvalidID
	}
	return uint(id), nil
}

// queryInt returns the integer query parameter name, or 0.
func queryInt(r *http.Request, name string) int {
	n, err := strconv.Atoi(r.URL.Query().Get(name))
	if err != nil || n < 0 {
		return 0
	}
	return n
}

// queryBool accepts "1" and "true".
func queryBool(r *http.Request, name string) bool {
	switch strings.ToLower(r.URL.Query().Get(name)) {
	case "1", "true":
		return true
	}
	return false
}

const dateLayout = "2006-01-02"

// Date is a calendar day encoded as "2006-01-02". An empty string or null
// decodes to the zero value.
type Date struct {
	time.Time
}

func (d *Date) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "" || s == "null" {
		d.Time = time.Time{}
		return nil
	}
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return err
	}
	d.Time = t
	return nil
}

func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte(`""`), nil
	}
	return []byte(`"` + d.Format(dateLayout) + `"`), nil
}

func noContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}
