// Package metrics defines and registers all custom Prometheus metrics for the
// storefront. It is the single source of truth for metric names, labels, and
// help strings. Metrics register with the default registry on import.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "storefront"

// ── Backend metrics ───────────────────────────────────────────────────────────

// BackendRequestDuration measures backend round trips.
// Labels:
//   - route: the templated backend route (e.g. "GET /cart", "PUT /cart/update/:id")
//   - outcome: "ok", "client_error", "server_error" or "unreachable"
var BackendRequestDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "backend_request_duration_seconds",
		Help:      "Duration of calls to the storefront backend API.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"route", "outcome"},
)

// BackendUnauthorizedTotal counts 401 answers that forced a logout.
var BackendUnauthorizedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "backend_unauthorized_total",
		Help:      "Total number of backend 401 responses that cleared the session.",
	},
)

// ── Session metrics ───────────────────────────────────────────────────────────

// SessionBootsTotal counts boot outcomes.
// Label:
//   - result: "restored", "no_session", "expired", "corrupt", "rejected" or "superseded"
var SessionBootsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "session_boots_total",
		Help:      "Total number of session boots, by outcome.",
	},
	[]string{"result"},
)

// ── Cart metrics ──────────────────────────────────────────────────────────────

// CartMutationsTotal counts cart mutations.
// Labels:
//   - mode: "local" or "server"
//   - op: "add", "update", "remove" or "clear"
//   - result: "ok" or "error"
var CartMutationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "cart_mutations_total",
		Help:      "Total number of cart mutations, by mode, operation and result.",
	},
	[]string{"mode", "op", "result"},
)

// ── Catalog metrics ───────────────────────────────────────────────────────────

// CatalogProducts tracks the number of products currently in the catalog.
var CatalogProducts = promauto.NewGauge(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "catalog_products",
		Help:      "Current number of products in the catalog.",
	},
)

// ── Event metrics ─────────────────────────────────────────────────────────────

// EventsDroppedTotal counts notifications dropped because a subscriber lagged.
// Label:
//   - topic: the event topic (e.g. "cart.changed")
var EventsDroppedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "events_dropped_total",
		Help:      "Total number of change notifications dropped for slow subscribers.",
	},
	[]string{"topic"},
)
