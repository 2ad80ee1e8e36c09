package cache

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
)

// Cache is a keyed store whose entries expire after a fixed TTL.
// Implementations are safe for concurrent use.
type Cache[V any] interface {
	// Get returns the value for key if it was set less than TTL ago.
	Get(ctx context.Context, key string) (V, bool)
	// Set stores value under key, resetting its age.
	Set(ctx context.Context, key string, value V)
	// Delete removes key. Missing keys are ignored.
	Delete(ctx context.Context, key string)
	// Clear removes every entry.
	Clear(ctx context.Context)
}

var (
	cacheHitsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wishlist_service_cache_hits_total",
			Help: "Total number of cache hits",
		},
		[]string{"cache"},
	)

	cacheMissesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wishlist_service_cache_misses_total",
			Help: "Total number of cache misses, expired entries included",
		},
		[]string{"cache"},
	)

	cacheEvictionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wishlist_service_cache_evictions_total",
			Help: "Total number of entries evicted by the size bound",
		},
		[]string{"cache"},
	)

	cacheErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wishlist_service_cache_errors_total",
			Help: "Total number of cache backend errors",
		},
		[]string{"cache", "operation"},
	)
)

func init() {
	prometheus.MustRegister(cacheHitsTotal)
	prometheus.MustRegister(cacheMissesTotal)
	prometheus.MustRegister(cacheEvictionsTotal)
	prometheus.MustRegister(cacheErrorsTotal)
}

func recordLookup(name string, hit bool) {
	if hit {
		cacheHitsTotal.WithLabelValues(name).Inc()
		return
	}
	cacheMissesTotal.WithLabelValues(name).Inc()
}
