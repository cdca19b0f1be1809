// Package metrics exposes the prometheus collectors of the node.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "zknft"

// Mint results.
const (
	ResultOK          = "ok"
	ResultInvalid     = "invalid_proof"
	ResultDuplicate   = "duplicate_solution"
	ResultRejected    = "rejected"
	ResultStoreFailed = "store_error"
)

var (
	SolutionsAdded = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "registry",
		Name:      "solutions_added_total",
		Help:      "Total number of solutions recorded",
	})

	DuplicateSolutions = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "registry",
		Name:      "duplicate_solutions_total",
		Help:      "Total number of solutions rejected as already used",
	})

	Mints = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "token",
		Name:      "mint_requests_total",
		Help:      "Total number of mint requests by result",
	}, []string{"result"})

	Transfers = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "token",
		Name:      "transfers_total",
		Help:      "Total number of token transfers",
	})

	ProofVerifySeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "verifier",
		Name:      "verify_duration_seconds",
		Help:      "Proof verification duration in seconds",
		Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
	})

	APIRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "api",
		Name:      "requests_total",
		Help:      "Total number of API requests",
	}, []string{"method", "route", "status"})

	APIRequestSeconds = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "api",
		Name:      "request_duration_seconds",
		Help:      "API request duration in seconds",
		Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 2, 5},
	}, []string{"method", "route"})
)

// Handler serves the default registry in the prometheus text format.
func Handler() http.Handler {
	return promhttp.Handler()
}
