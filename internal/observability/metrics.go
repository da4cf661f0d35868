// Package observability exposes Prometheus metrics for the bot core.
package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// ReferencesIssued counts successfully committed allocations per bill type.
	ReferencesIssued = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "vcbot_references_issued_total",
		Help: "Reference numbers issued and durably committed.",
	}, []string{"bill_type"})

	// ReferenceFailures counts failed allocation attempts per bill type and reason.
	ReferenceFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "vcbot_reference_failures_total",
		Help: "Allocation attempts that failed without issuing a number.",
	}, []string{"bill_type", "reason"})

	// ReferenceOverrides counts administrative counter overrides per bill type.
	ReferenceOverrides = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "vcbot_reference_overrides_total",
		Help: "Administrative reference counter overrides.",
	}, []string{"bill_type"})

	// AssistantRequests counts assistant exchanges by outcome.
	AssistantRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "vcbot_assistant_requests_total",
		Help: "Assistant exchanges by outcome.",
	}, []string{"outcome"})
)

// MetricsHandler returns the HTTP handler serving the Prometheus registry.
func MetricsHandler() http.Handler {
	return promhttp.Handler()
}
