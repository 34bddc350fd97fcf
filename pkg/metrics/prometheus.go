package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements domain.repository.Metrics using Prometheus.
type Recorder struct {
	cacheHits     *prometheus.CounterVec
	cacheMisses   *prometheus.CounterVec
	coalesced     *prometheus.CounterVec
	evictions     *prometheus.CounterVec
	invalidations *prometheus.CounterVec
	fetchErrors   *prometheus.CounterVec
	fetchLatency  *prometheus.HistogramVec
}

// New creates a new Prometheus metrics recorder.
func New() *Recorder {
	return &Recorder{
		cacheHits: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "capitolpulse_cache_hits_total",
				Help: "Subscriptions served from the query cache",
			},
			[]string{"dataset", "stale"},
		),
		cacheMisses: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "capitolpulse_cache_misses_total",
				Help: "Subscriptions that required a cold fetch",
			},
			[]string{"dataset"},
		),
		coalesced: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "capitolpulse_fetches_coalesced_total",
				Help: "Subscriptions attached to an already in-flight fetch",
			},
			[]string{"dataset"},
		),
		evictions: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "capitolpulse_cache_evictions_total",
				Help: "Cache entries evicted after the grace period",
			},
			[]string{"dataset"},
		),
		invalidations: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "capitolpulse_cache_invalidations_total",
				Help: "Cache entries marked stale by invalidation",
			},
			[]string{"dataset"},
		),
		fetchErrors: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "capitolpulse_fetch_errors_total",
				Help: "Aggregator fetch failures by kind",
			},
			[]string{"dataset", "kind"},
		),
		fetchLatency: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "capitolpulse_fetch_duration_seconds",
				Help:    "Aggregator fetch duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"dataset"},
		),
	}
}

// RecordCacheHit records a subscription served from cache.
func (r *Recorder) RecordCacheHit(dataset string, stale bool) {
	r.cacheHits.WithLabelValues(dataset, strconv.FormatBool(stale)).Inc()
}

// RecordCacheMiss records a cold subscription.
func (r *Recorder) RecordCacheMiss(dataset string) {
	r.cacheMisses.WithLabelValues(dataset).Inc()
}

// RecordCoalesced records a subscription joining an in-flight fetch.
func (r *Recorder) RecordCoalesced(dataset string) {
	r.coalesced.WithLabelValues(dataset).Inc()
}

// RecordEviction records a cache entry eviction.
func (r *Recorder) RecordEviction(dataset string) {
	r.evictions.WithLabelValues(dataset).Inc()
}

// RecordInvalidation records an entry marked stale.
func (r *Recorder) RecordInvalidation(dataset string) {
	r.invalidations.WithLabelValues(dataset).Inc()
}

// RecordFetchError records a classified fetch failure.
func (r *Recorder) RecordFetchError(dataset, kind string) {
	r.fetchErrors.WithLabelValues(dataset, kind).Inc()
}

// RecordFetchLatency records fetch duration in seconds.
func (r *Recorder) RecordFetchLatency(dataset string, seconds float64) {
	r.fetchLatency.WithLabelValues(dataset).Observe(seconds)
}
