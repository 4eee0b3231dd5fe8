// Package metrics provides Prometheus metrics for itinerary planning.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "travelbook"

var (
	// GenerationsTotal counts finished generations by plan source and status
	GenerationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "itinerary",
			Name:      "generations_total",
			Help:      "Total number of itinerary generations by source and status",
		},
		[]string{"source", "status"},
	)

	// GenerationDuration tracks end-to-end generation time in seconds
	GenerationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "itinerary",
			Name:      "generation_duration_seconds",
			Help:      "Duration of itinerary generation in seconds",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 20, 30},
		},
		[]string{"source"},
	)

	// UnscheduledPOIsTotal counts candidates the allocator could not place
	UnscheduledPOIsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "planner",
			Name:      "unscheduled_pois_total",
			Help:      "Total number of candidate POIs that fit no day",
		},
	)

	// PoolFallbacksTotal counts budget bands that came back empty
	PoolFallbacksTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "planner",
			Name:      "pool_fallbacks_total",
			Help:      "Total number of candidate pool fallbacks by kind",
		},
		[]string{"kind"},
	)

	// AIPlanFailuresTotal counts external plan failures by reason
	AIPlanFailuresTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "aiplan",
			Name:      "failures_total",
			Help:      "Total number of external plan failures by reason",
		},
		[]string{"reason"},
	)

	// CustomizationsTotal counts customization edits by outcome
	CustomizationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "itinerary",
			Name:      "customizations_total",
			Help:      "Total number of customization requests by outcome",
		},
		[]string{"outcome"},
	)

	// OrphansSweptTotal counts day records removed by the startup sweep
	OrphansSweptTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "itinerary",
			Name:      "orphan_days_swept_total",
			Help:      "Total number of orphaned day records removed",
		},
	)

	// HTTPRequestsTotal tracks inbound requests
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of inbound HTTP requests",
		},
		[]string{"method", "status_code"},
	)
)
