// Package metrics exposes prometheus counters for the trail API.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// WeatherFetches counts provider fetches by result ("ok", "error", "timeout")
	WeatherFetches = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "trailhead_weather_fetch_total",
		Help: "Weather provider fetches by result",
	}, []string{"result"})

	// WeatherRetries counts retried provider requests
	WeatherRetries = promauto.NewCounter(prometheus.CounterOpts{
		Name: "trailhead_weather_retry_total",
		Help: "Weather provider requests that were retried",
	})

	// WeatherFetchDuration tracks provider latency
	WeatherFetchDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "trailhead_weather_fetch_duration_seconds",
		Help:    "Weather provider fetch duration in seconds",
		Buckets: prometheus.ExponentialBuckets(0.05, 2, 10), // 50ms to ~25s
	})

	// StaleResponses counts async responses discarded because a newer
	// request superseded them
	StaleResponses = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "trailhead_stale_response_total",
		Help: "Async responses discarded as superseded",
	}, []string{"source"})

	// CacheLookups counts forecast cache lookups by outcome ("hit", "miss", "stale")
	CacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "trailhead_cache_lookup_total",
		Help: "Forecast cache lookups by outcome",
	}, []string{"outcome"})

	// CacheEntries is the in-memory forecast cache size by state ("fresh", "stale")
	CacheEntries = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "trailhead_cache_entries",
		Help: "In-memory forecast cache entries by state",
	}, []string{"state"})

	// CacheOldestEntryAge is the age of the oldest in-memory cache entry
	CacheOldestEntryAge = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "trailhead_cache_oldest_entry_age_seconds",
		Help: "Age of the oldest in-memory forecast cache entry",
	})

	// PlansGenerated counts itinerary requests by direction
	PlansGenerated = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "trailhead_plans_generated_total",
		Help: "Itineraries generated by direction",
	}, []string{"direction"})

	// PlanDays tracks the number of days per generated plan
	PlanDays = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "trailhead_plan_days",
		Help:    "Days per generated itinerary",
		Buckets: []float64{1, 2, 3, 5, 7, 10, 14, 30, 60, 120, 200},
	})

	// LocateFailures counts position failures by kind
	LocateFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "trailhead_locate_failure_total",
		Help: "Position acquisition failures by kind",
	}, []string{"kind"})
)

// Handler serves the default registry
func Handler() http.Handler {
	return promhttp.Handler()
}
