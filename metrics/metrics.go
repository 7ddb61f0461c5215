package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Lookup outcomes used as the "outcome" label.
const (
	OutcomeMatched   = "matched"
	OutcomeNotFound  = "not_found"
	OutcomeMissing   = "missing_input"
	OutcomeMalformed = "malformed_website"
	OutcomeProvider  = "provider_unavailable"
	OutcomeError     = "error"
)

var (
	LookupsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rankcheck_lookups_total",
			Help: "Total number of rank lookups by outcome",
		},
		[]string{"outcome"},
	)

	ProviderDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "rankcheck_provider_duration_seconds",
			Help:    "Duration of search-results provider requests in seconds",
			Buckets: []float64{0.25, 0.5, 1, 2, 5, 10, 30},
		},
	)

	MatchedPosition = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "rankcheck_matched_position",
			Help:    "Rank of the target website when it was found",
			Buckets: []float64{1, 3, 5, 10, 20, 50, 100},
		},
	)

	StaleLookups = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "rankcheck_stale_lookups_total",
			Help: "Completed lookups discarded because a newer lookup was submitted",
		},
	)

	ThrottledLookups = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "rankcheck_throttled_lookups_total",
			Help: "Lookup requests refused before reaching the provider because the client was over quota",
		},
	)

	LocationsLoaded = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "rankcheck_locations_loaded",
			Help: "Number of locations held by the directory",
		},
	)
)

// RecordLookup updates the lookup metrics for one finished lookup.
// position is nil when the lookup failed or the website was not found.
func RecordLookup(outcome string, position *int) {
	LookupsTotal.WithLabelValues(outcome).Inc()
	if position != nil {
		MatchedPosition.Observe(float64(*position))
	}
}
