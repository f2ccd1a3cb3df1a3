// Package metrics declares the prometheus collectors of the quote engine.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	QuotesCreated = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "budgets_quotes_created_total",
		Help: "Quotes created, by kind and source.",
	}, []string{"kind", "source"})

	Transitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "budgets_transitions_total",
		Help: "Applied status transitions, by kind and target status.",
	}, []string{"kind", "to"})

	SellerAssignments = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "budgets_seller_assignments_total",
		Help: "Sellers handed out by the round-robin assignor.",
	}, []string{"assignment_type"})

	NotificationFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "budgets_notification_failures_total",
		Help: "Best-effort notifications that could not be delivered.",
	})

	Recalculations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "budgets_recalculations_total",
		Help: "Pricing cascade runs, by quote kind.",
	}, []string{"kind"})
)

// Quote kinds used as label values.
const (
	KindMerchandise = "merchandise"
	KindPicking     = "picking"
)

// Handler serves the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
