package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// DispatchMetrics tracks rule set resolution and memoizer cache
// performance. It implements the dispatch.Metrics interface.
//
// Metrics:
//   - callisto_dispatch_evaluations_total: Total resolutions by rule set and outcome
//   - callisto_dispatch_evaluation_duration_seconds: Resolution duration
//   - callisto_dispatch_cache_hits_total: Total memoizer cache hits by rule set
//   - callisto_dispatch_cache_misses_total: Total memoizer cache misses by rule set
//   - callisto_dispatch_cache_evictions_total: Total memoizer cache evictions by rule set
//   - callisto_dispatch_cache_entries: Current number of cached results by rule set
type DispatchMetrics struct {
	// Total resolutions by rule set and outcome
	evaluationsTotal *prometheus.CounterVec

	// Resolution duration histogram
	evaluationDuration *prometheus.HistogramVec

	// Cache hit counter
	cacheHitsTotal *prometheus.CounterVec

	// Cache miss counter
	cacheMissesTotal *prometheus.CounterVec

	// Cache evictions counter
	cacheEvictionsTotal *prometheus.CounterVec

	// Current cached results per rule set
	cacheEntries *prometheus.GaugeVec

	registry *prometheus.Registry
}

// New creates and registers dispatch metrics with the provided
// registry. A nil cfg uses DefaultConfig; a nil registry creates a
// fresh one, available via Registry.
func New(cfg *Config, registry *prometheus.Registry) *DispatchMetrics {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if registry == nil {
		registry = prometheus.NewRegistry()
	}

	// Fill in naming defaults if not specified
	if cfg.Namespace == "" {
		cfg.Namespace = "callisto"
	}
	if cfg.Subsystem == "" {
		cfg.Subsystem = "dispatch"
	}

	dm := &DispatchMetrics{
		registry: registry,

		evaluationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "evaluations_total",
				Help:      "Total number of rule set resolutions",
			},
			[]string{"set", "outcome"},
		),

		evaluationDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "evaluation_duration_seconds",
				Help:      "Duration of rule set resolution in seconds",
				// Predicate scans should be fast (< 10ms)
				Buckets: prometheus.ExponentialBuckets(0.000001, 2, 15), // 1µs to 16ms
			},
			[]string{"set"},
		),

		cacheHitsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "cache_hits_total",
				Help:      "Total number of memoizer cache hits",
			},
			[]string{"set"},
		),

		cacheMissesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "cache_misses_total",
				Help:      "Total number of memoizer cache misses",
			},
			[]string{"set"},
		),

		cacheEvictionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "cache_evictions_total",
				Help:      "Total number of memoizer cache evictions",
			},
			[]string{"set"},
		),

		cacheEntries: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "cache_entries",
				Help:      "Current number of cached results",
			},
			[]string{"set"},
		),
	}

	// Register all metrics
	registry.MustRegister(
		dm.evaluationsTotal,
		dm.evaluationDuration,
		dm.cacheHitsTotal,
		dm.cacheMissesTotal,
		dm.cacheEvictionsTotal,
		dm.cacheEntries,
	)

	return dm
}

// RecordEvaluation records one rule set resolution.
//
// Parameters:
//   - set: Rule set label (name if set, otherwise ID)
//   - outcome: Resolution outcome ("resolved", "no_match", "error")
//   - duration: Time taken to resolve
func (dm *DispatchMetrics) RecordEvaluation(set, outcome string, duration time.Duration) {
	dm.evaluationsTotal.WithLabelValues(set, outcome).Inc()
	dm.evaluationDuration.WithLabelValues(set).Observe(duration.Seconds())
}

// RecordCacheHit records a memoizer cache hit.
func (dm *DispatchMetrics) RecordCacheHit(set string) {
	dm.cacheHitsTotal.WithLabelValues(set).Inc()
}

// RecordCacheMiss records a memoizer cache miss.
func (dm *DispatchMetrics) RecordCacheMiss(set string) {
	dm.cacheMissesTotal.WithLabelValues(set).Inc()
}

// RecordCacheEviction records n entries leaving the memoizer cache,
// whether by expiry, capacity reset, or explicit removal.
func (dm *DispatchMetrics) RecordCacheEviction(set string, n int) {
	dm.cacheEvictionsTotal.WithLabelValues(set).Add(float64(n))
}

// SetCacheEntries updates the current number of cached results for a
// rule set.
func (dm *DispatchMetrics) SetCacheEntries(set string, n int) {
	dm.cacheEntries.WithLabelValues(set).Set(float64(n))
}

// Registry returns the Prometheus registry holding these metrics.
// This can be used to create an HTTP handler for the /metrics endpoint:
//
//	http.Handle("/metrics", promhttp.HandlerFor(
//		dm.Registry(),
//		promhttp.HandlerOpts{},
//	))
func (dm *DispatchMetrics) Registry() *prometheus.Registry {
	return dm.registry
}
