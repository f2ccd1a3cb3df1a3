package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestCountersAreExposed(t *testing.T) {
	before := testutil.ToFloat64(QuotesCreated.WithLabelValues(KindPicking, "internal"))
	QuotesCreated.WithLabelValues(KindPicking, "internal").Inc()
	if got := testutil.ToFloat64(QuotesCreated.WithLabelValues(KindPicking, "internal")); got != before+1 {
		t.Fatalf("expected counter to grow by one, got %v", got)
	}

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if !strings.Contains(rec.Body.String(), "budgets_quotes_created_total") {
		t.Fatalf("metrics output missing quotes counter")
	}
}
