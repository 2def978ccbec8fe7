// Package metrics exposes Prometheus instrumentation for the search pipeline.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Registry struct {
	reg            *prometheus.Registry
	CacheHits      prometheus.Counter
	CacheMisses    prometheus.Counter
	Fallbacks      *prometheus.CounterVec
	StorageErrors  *prometheus.CounterVec
	SearchDuration prometheus.Histogram
}

func NewRegistry() *Registry {
	r := prometheus.NewRegistry()
	hits := prometheus.NewCounter(prometheus.CounterOpts{Name: "scanner_cache_hits_total"})
	misses := prometheus.NewCounter(prometheus.CounterOpts{Name: "scanner_cache_misses_total"})
	fallbacks := prometheus.NewCounterVec(prometheus.CounterOpts{Name: "scanner_fallbacks_total"}, []string{"reason"})
	storageErrors := prometheus.NewCounterVec(prometheus.CounterOpts{Name: "scanner_storage_errors_total"}, []string{"op"})
	duration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "scanner_search_duration_seconds",
		Buckets: prometheus.DefBuckets,
	})

	r.MustRegister(hits, misses, fallbacks, storageErrors, duration)
	return &Registry{
		reg:            r,
		CacheHits:      hits,
		CacheMisses:    misses,
		Fallbacks:      fallbacks,
		StorageErrors:  storageErrors,
		SearchDuration: duration,
	}
}

func (r *Registry) Handler() http.Handler { return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{}) }

// The helpers below accept a nil receiver so callers can run uninstrumented.

func (r *Registry) Hit() {
	if r != nil {
		r.CacheHits.Inc()
	}
}

func (r *Registry) Miss() {
	if r != nil {
		r.CacheMisses.Inc()
	}
}

func (r *Registry) Fallback(reason string) {
	if r != nil {
		r.Fallbacks.WithLabelValues(reason).Inc()
	}
}

func (r *Registry) StorageError(op string) {
	if r != nil {
		r.StorageErrors.WithLabelValues(op).Inc()
	}
}

func (r *Registry) ObserveSearch(seconds float64) {
	if r != nil {
		r.SearchDuration.Observe(seconds)
	}
}
