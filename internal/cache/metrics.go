package cache

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	requestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storefront_cache_requests_total",
			Help: "Cache lookups by key class and result (hit, miss)",
		},
		[]string{"class", "result"},
	)

	invalidationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storefront_cache_invalidations_total",
			Help: "Keys invalidated by key class",
		},
		[]string{"class"},
	)

	storeErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storefront_cache_store_errors_total",
			Help: "Cache store failures by operation",
		},
		[]string{"op"},
	)

	loadDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "storefront_cache_load_duration_seconds",
			Help:    "Time spent loading a missed key from the backend",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"class"},
	)
)
