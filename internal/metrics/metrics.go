// Package metrics exposes Prometheus collectors for routing, reports and the HTTP API.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Routing
	routingDecisionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "erp_routing_decisions_total",
			Help: "Total number of routed requests by domain",
		},
		[]string{"domain"},
	)

	routingConfidence = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "erp_routing_confidence",
			Help:    "Keyword matches of the winning domain",
			Buckets: []float64{0, 1, 2, 3, 5, 8},
		},
		[]string{"domain"},
	)

	// Reports
	reportBuildsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "erp_report_builds_total",
			Help: "Total number of report builds by kind and outcome",
		},
		[]string{"kind", "outcome"},
	)

	reportBuildDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "erp_report_build_duration_seconds",
			Help:    "Report build duration in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5, 10},
		},
		[]string{"kind"},
	)

	// HTTP
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "erp_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "erp_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)
)

// OutcomeOK labels a successful report build. Failures use the error kind.
const OutcomeOK = "ok"

// RecordRouting records one routing decision.
func RecordRouting(domain string, confidence int) {
	routingDecisionsTotal.WithLabelValues(domain).Inc()
	routingConfidence.WithLabelValues(domain).Observe(float64(confidence))
}

// RecordReportBuild records one report build.
func RecordReportBuild(kind, outcome string, duration time.Duration) {
	reportBuildsTotal.WithLabelValues(kind, outcome).Inc()
	reportBuildDuration.WithLabelValues(kind).Observe(duration.Seconds())
}

// RecordHTTPRequest records an HTTP request. Status is reduced to its class.
func RecordHTTPRequest(method, route string, status int, duration time.Duration) {
	httpRequestsTotal.WithLabelValues(method, route, statusClass(status)).Inc()
	httpRequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

func statusClass(status int) string {
	if status < 100 || status > 599 {
		return "unknown"
	}
	return strconv.Itoa(status/100) + "xx"
}

// Handler serves the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
