package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	RecommendationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recommendations_total",
			Help: "Recommendation requests served, by strategy",
		},
		[]string{"method"},
	)

	ExplorationItemsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "exploration_items_total",
			Help: "Random exploration items appended to responses",
		},
	)

	EngineBuildDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "engine_build_duration_seconds",
			Help:    "Time spent building an engine's similarity matrices",
			Buckets: prometheus.ExponentialBuckets(0.01, 2, 12),
		},
		[]string{"engine"},
	)

	EngineAvailable = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "engine_available",
			Help: "1 when the engine was built from non-empty data",
		},
		[]string{"engine"},
	)

	CacheRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recommendation_cache_requests_total",
			Help: "Strategy output cache lookups",
		},
		[]string{"result"}, // "hit", "miss", "error"
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route", "status"},
	)
)

// RecordEngineBuild records how long a build took and whether it produced a
// usable engine.
func RecordEngineBuild(engine string, took time.Duration, available bool) {
	EngineBuildDuration.WithLabelValues(engine).Observe(took.Seconds())
	v := 0.0
	if available {
		v = 1
	}
	EngineAvailable.WithLabelValues(engine).Set(v)
}

func RecordHTTPRequest(method, route string, status int, took time.Duration) {
	HTTPRequestDuration.WithLabelValues(method, route, strconv.Itoa(status)).Observe(took.Seconds())
}
