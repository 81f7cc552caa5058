package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "stayfront",
			Name:      "http_requests_total",
			Help:      "HTTP requests by endpoint and status.",
		},
		[]string{"endpoint", "status"},
	)

	backendRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "stayfront",
			Name:      "backend_requests_total",
			Help:      "Booking backend requests by endpoint and outcome.",
		},
		[]string{"endpoint", "outcome"},
	)

	bookingActions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "stayfront",
			Name:      "booking_actions_total",
			Help:      "Owner confirm/cancel actions by outcome.",
		},
		[]string{"action", "outcome"},
	)

	exports = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "stayfront",
			Name:      "exports_total",
			Help:      "Booking exports by format.",
		},
		[]string{"format"},
	)
)

// Register registers Prometheus metrics. Safe to call multiple times.
func Register() {
	once.Do(func() {
		prometheus.MustRegister(httpRequests, backendRequests, bookingActions, exports)
	})
}

// IncHTTP increments the request counter for an endpoint/status pair.
func IncHTTP(endpoint, status string) {
	httpRequests.WithLabelValues(endpoint, status).Inc()
}

// IncBackend increments the backend request counter.
func IncBackend(endpoint, outcome string) {
	backendRequests.WithLabelValues(endpoint, outcome).Inc()
}

// IncAction increments the confirm/cancel action counter.
func IncAction(action, outcome string) {
	bookingActions.WithLabelValues(action, outcome).Inc()
}

// IncExport increments the export counter for a format label.
func IncExport(format string) {
	exports.WithLabelValues(format).Inc()
}
