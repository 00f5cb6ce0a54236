package metrics

import "github.com/prometheus/client_golang/prometheus"

// Scoring Prometheus metrics.
var (
	ComparisonsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "simengine",
			Name:      "comparisons_total",
			Help:      "Total number of pair comparisons scored",
		},
	)

	ComparisonDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "simengine",
			Name:      "comparison_duration_seconds",
			Help:      "Pair comparison duration in seconds",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
	)

	AlertsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "simengine",
			Name:      "alerts_total",
			Help:      "Total number of above-threshold scan alerts",
		},
	)

	BackendRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "simengine",
			Name:      "backend_requests_total",
			Help:      "Total number of embedding backend requests",
		},
		[]string{"provider", "op", "status"},
	)

	BackendRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "simengine",
			Name:      "backend_request_duration_seconds",
			Help:      "Embedding backend request duration in seconds",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"provider", "op"},
	)

	BackendFallbacksTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "simengine",
			Name:      "backend_fallbacks_total",
			Help:      "Total number of degraded-to-fallback backend calls",
		},
		[]string{"provider", "op"},
	)

	EmbeddingCacheTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "simengine",
			Name:      "embedding_cache_total",
			Help:      "Embedding cache hits and misses",
		},
		[]string{"result"}, // "hit" / "miss"
	)
)

var scoringRegistered bool

// RegisterScoringMetrics registers the scoring collectors. Must be called
// once from main.
func RegisterScoringMetrics() {
	if scoringRegistered {
		return
	}
	prometheus.MustRegister(ComparisonsTotal)
	prometheus.MustRegister(ComparisonDuration)
	prometheus.MustRegister(AlertsTotal)
	prometheus.MustRegister(BackendRequestsTotal)
	prometheus.MustRegister(BackendRequestDuration)
	prometheus.MustRegister(BackendFallbacksTotal)
	prometheus.MustRegister(EmbeddingCacheTotal)
	scoringRegistered = true
}
