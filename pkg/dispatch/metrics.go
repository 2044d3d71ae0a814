package dispatch

import "time"

// Resolution outcomes reported to Metrics.
const (
	// OutcomeResolved means a value was returned, from a matching rule or
	// from the default.
	OutcomeResolved = "resolved"

	// OutcomeNoMatch means no rule matched and the set has no default.
	OutcomeNoMatch = "no_match"

	// OutcomeError means resolution failed before a value could be
	// produced (invalid rule set, cache key derivation failure).
	OutcomeError = "error"
)

// Metrics receives instrumentation events from a Memoizer.
// Implementations must be safe for concurrent use. The prometheus-backed
// implementation lives in pkg/telemetry/metrics; configuring no Metrics
// disables instrumentation.
type Metrics interface {
	// RecordEvaluation records one resolution with its outcome and total
	// duration, cache lookups included.
	RecordEvaluation(set string, outcome string, d time.Duration)

	// RecordCacheHit records a cache hit for the given set.
	RecordCacheHit(set string)

	// RecordCacheMiss records a cache miss for the given set.
	RecordCacheMiss(set string)

	// RecordCacheEviction records n entries dropped from the given set's
	// cache.
	RecordCacheEviction(set string, n int)

	// SetCacheEntries reports the current entry count of the given set's
	// cache.
	SetCacheEntries(set string, n int)
}

// nopMetrics backs the un-instrumented path.
type nopMetrics struct{}

func (nopMetrics) RecordEvaluation(string, string, time.Duration) {}
func (nopMetrics) RecordCacheHit(string)                          {}
func (nopMetrics) RecordCacheMiss(string)                         {}
func (nopMetrics) RecordCacheEviction(string, int)                {}
func (nopMetrics) SetCacheEntries(string, int)                    {}
