package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Compilation metrics
	CompilationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "filterdeck_compilations_total",
			Help: "Total number of filter compilations",
		},
		[]string{"representation"},
	)

	// Session metrics
	SessionsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "filterdeck_sessions_active",
			Help: "Number of active editing sessions",
		},
	)

	FilterEditsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "filterdeck_filter_edits_total",
			Help: "Total number of structural filter edits",
		},
		[]string{"operation"},
	)

	// Search execution metrics
	SearchDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "filterdeck_search_duration_seconds",
			Help:    "Duration of compiled query executions in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	SearchErrors = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "filterdeck_search_errors_total",
			Help: "Total number of failed query executions",
		},
	)

	// Suggestion metrics
	SuggestionLookupsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "filterdeck_suggestion_lookups_total",
			Help: "Total number of field value suggestion lookups",
		},
		[]string{"status"},
	)
)
