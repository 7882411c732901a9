// Package metrics holds the Prometheus collectors shared by the Extility
// client, the compute layer, and the CPU probe exporter.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Outcome label values.
const (
	OutcomeSuccess = "success"
	OutcomeFault   = "fault"
	OutcomeError   = "error"
)

var (
	remoteCallsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "flexctl_remote_calls_total",
			Help: "Total number of Extility API calls by operation and outcome",
		},
		[]string{"operation", "outcome"},
	)

	remoteCallDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "flexctl_remote_call_duration_seconds",
			Help:    "Latency of Extility API calls by operation",
			Buckets: prometheus.ExponentialBuckets(0.01, 2, 16), // 10ms to ~5min
		},
		[]string{"operation"},
	)

	jobsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "flexctl_jobs_total",
			Help: "Total number of awaited provider jobs by command and outcome",
		},
		[]string{"command", "outcome"},
	)
)

// ObserveRemoteCall records one Extility API call.
func ObserveRemoteCall(operation, outcome string, d time.Duration) {
	remoteCallsTotal.WithLabelValues(operation, outcome).Inc()
	remoteCallDuration.WithLabelValues(operation).Observe(d.Seconds())
}

// ObserveJob records the outcome of one awaited job.
func ObserveJob(command, outcome string) {
	jobsTotal.WithLabelValues(command, outcome).Inc()
}

// RemoteCalls returns the call counter for the given labels. Intended for tests.
func RemoteCalls(operation, outcome string) prometheus.Counter {
	return remoteCallsTotal.WithLabelValues(operation, outcome)
}

// Jobs returns the job counter for the given labels. Intended for tests.
func Jobs(command, outcome string) prometheus.Counter {
	return jobsTotal.WithLabelValues(command, outcome)
}
