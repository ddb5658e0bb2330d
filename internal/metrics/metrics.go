package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "roombooker",
			Name:      "http_requests_total",
			Help:      "HTTP requests by endpoint.",
		},
		[]string{"endpoint"},
	)

	syncAttempts = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "roombooker",
			Name:      "sync_attempts_total",
			Help:      "Remote sync attempts by operation type.",
		},
		[]string{"op"},
	)

	syncOutcomes = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "roombooker",
			Name:      "sync_outcomes_total",
			Help:      "Terminal sync outcomes by operation type and result.",
		},
		[]string{"op", "result"},
	)

	pendingOps = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "roombooker",
			Name:      "sync_pending_operations",
			Help:      "Operations currently waiting in the sync queue.",
		},
	)
)

// Register registers Prometheus metrics. Safe to call multiple times.
func Register() {
	once.Do(func() {
		prometheus.MustRegister(httpRequests, syncAttempts, syncOutcomes, pendingOps)
	})
}

// IncHTTP increments the counter for an endpoint label.
func IncHTTP(endpoint string) {
	httpRequests.WithLabelValues(endpoint).Inc()
}

// IncSyncAttempt counts one remote attempt for an operation type.
func IncSyncAttempt(op string) {
	syncAttempts.WithLabelValues(op).Inc()
}

// IncSyncOutcome counts a terminal outcome ("succeeded" or "failed").
func IncSyncOutcome(op, result string) {
	syncOutcomes.WithLabelValues(op, result).Inc()
}

// SetPendingOps records the current queue depth.
func SetPendingOps(n int) {
	pendingOps.Set(float64(n))
}
