package probe

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Handler serves the CPU probe alongside the process-wide flexctl metrics
// (remote calls, jobs, Go runtime) in the Prometheus text format.
func Handler(p *CPU) http.Handler {
	reg := prometheus.NewRegistry()
	reg.MustRegister(p)
	gatherers := prometheus.Gatherers{reg, prometheus.DefaultGatherer}
	return promhttp.HandlerFor(gatherers, promhttp.HandlerOpts{})
}
