// Package metrics holds the Prometheus collectors shared across learnmesh.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// BackendAttemptsTotal tracks generation attempts per backend and outcome
	BackendAttemptsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "learnmesh_backend_attempts_total",
			Help: "Total number of image backend attempts",
		},
		[]string{"backend", "outcome"},
	)

	// BackendLatency tracks backend call latency
	BackendLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "learnmesh_backend_latency_seconds",
			Help:    "Image backend call latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"backend"},
	)

	// FallbacksTotal counts primary failures that were routed to the secondary backend
	FallbacksTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "learnmesh_fallbacks_total",
			Help: "Total number of fallbacks to the secondary backend",
		},
		[]string{"reason"},
	)

	// RetriesTotal counts retried calls per backend and status code
	RetriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "learnmesh_retries_total",
			Help: "Total number of retried backend calls",
		},
		[]string{"backend", "status"},
	)

	// ArtifactsSavedTotal counts artifacts persisted per producing backend
	ArtifactsSavedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "learnmesh_artifacts_saved_total",
			Help: "Total number of artifacts saved",
		},
		[]string{"backend"},
	)

	// ScoresRecorded tracks the distribution of submitted quiz percentages
	ScoresRecorded = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "learnmesh_scores_recorded_percent",
			Help:    "Distribution of recorded quiz percentages",
			Buckets: prometheus.LinearBuckets(10, 10, 10),
		},
	)

	// ToolCallsTotal tracks tool invocations per tool and result status
	ToolCallsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "learnmesh_tool_calls_total",
			Help: "Total number of tool calls",
		},
		[]string{"tool", "status"},
	)
)

// Handler serves the default registry in the Prometheus exposition format.
func Handler() http.Handler {
	return promhttp.Handler()
}
