package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Trading-Agents Metrics
var (
	// Request counters
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "trading",
			Subsystem: "agents",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	// Request duration histogram
	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "trading",
			Subsystem: "agents",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 2},
		},
		[]string{"method", "endpoint"},
	)

	// Cache operations by result (ok, miss, error)
	CacheOperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "trading",
			Subsystem: "cache",
			Name:      "operations_total",
			Help:      "Total cache operations by outcome",
		},
		[]string{"op", "result"},
	)

	// Cache hits
	CacheHitsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "trading",
			Subsystem: "cache",
			Name:      "hits_total",
			Help:      "Total cache hits",
		},
		[]string{"cache_type"},
	)

	// Cache misses
	CacheMissesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "trading",
			Subsystem: "cache",
			Name:      "misses_total",
			Help:      "Total cache misses",
		},
		[]string{"cache_type"},
	)

	// Keys removed by pattern invalidation
	CacheClearedKeysTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "trading",
			Subsystem: "cache",
			Name:      "cleared_keys_total",
			Help:      "Total keys removed by pattern invalidation",
		},
	)

	// Cache backend reachability (1 up, 0 down)
	CacheBackendUp = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "trading",
			Subsystem: "cache",
			Name:      "backend_up",
			Help:      "Whether the cache backend answered the last ping",
		},
	)

	// Registered models
	RegisteredModels = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "trading",
			Subsystem: "models",
			Name:      "registered",
			Help:      "Number of models currently registered",
		},
	)

	// Role routing decisions
	RoleRoutingTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "trading",
			Subsystem: "models",
			Name:      "role_routing_total",
			Help:      "Total role to model resolutions",
		},
		[]string{"role", "model"},
	)
)

// Handler returns the Prometheus metrics handler
func Handler() http.Handler {
	return promhttp.Handler()
}

// RecordRequest records an HTTP request
func RecordRequest(method, endpoint, status string, durationSec float64) {
	RequestsTotal.WithLabelValues(method, endpoint, status).Inc()
	RequestDuration.WithLabelValues(method, endpoint).Observe(durationSec)
}

// RecordCacheOperation records the outcome of a cache operation
func RecordCacheOperation(op, result string) {
	CacheOperationsTotal.WithLabelValues(op, result).Inc()
}

// RecordCacheHit records a cache hit
func RecordCacheHit(cacheType string) {
	CacheHitsTotal.WithLabelValues(cacheType).Inc()
}

// RecordCacheMiss records a cache miss
func RecordCacheMiss(cacheType string) {
	CacheMissesTotal.WithLabelValues(cacheType).Inc()
}

// RecordClearedKeys records keys removed by a pattern clear
func RecordClearedKeys(count int64) {
	CacheClearedKeysTotal.Add(float64(count))
}

// SetRegisteredModels updates the registered model gauge
func SetRegisteredModels(count int) {
	RegisteredModels.Set(float64(count))
}

// RecordRoleRouting records a role resolution
func RecordRoleRouting(role, model string) {
	RoleRoutingTotal.WithLabelValues(role, model).Inc()
}

// SetCacheBackendUp records the result of the latest backend ping
func SetCacheBackendUp(up bool) {
	if up {
		CacheBackendUp.Set(1)
		return
	}
	CacheBackendUp.Set(0)
}
