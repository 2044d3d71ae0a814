package dispatch

import (
	"errors"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"
)

// cacheEntry is one memoized result.
type cacheEntry[V any] struct {
	value    V
	storedAt time.Time
}

// setCache holds the memoized results of a single rule set.
type setCache[V any] struct {
	// label is the set's metrics/log label, captured at first store.
	label string

	// entries maps serialized inputs to results.
	entries map[string]cacheEntry[V]
}

// Memoizer caches resolution results per rule set and per input.
//
// The cache has two levels: rule sets are distinguished by their ID and
// inputs by their serialized form (see CacheKeyError for the failure
// mode). A hit returns the stored value without calling any predicate.
// Concurrent misses for the same (set, input) pair are collapsed into a
// single computation; distinct pairs proceed in parallel. Failed
// resolutions are never stored, so a later identical call re-evaluates.
//
// The memoizer holds rule-set IDs, never the sets themselves, so caching
// a set does not keep it alive. Entries for a set that has gone away
// linger until TTL expiry, a capacity reset, Forget or Purge removes
// them.
//
// A Memoizer is safe for concurrent use.
type Memoizer[C, V any] struct {
	// name labels this memoizer in log output
	name string

	// ttl bounds cached-result lifetime; zero disables expiry
	ttl time.Duration

	// maxPerSet caps entries per rule set; zero means unbounded
	maxPerSet int

	// logger for structured logging
	logger *slog.Logger

	// metrics receives instrumentation events
	metrics Metrics

	// mu protects sets and their entries
	mu sync.RWMutex

	// sets maps rule-set IDs to their caches
	sets map[string]*setCache[V]

	// flight collapses concurrent misses for the same (set, input) pair
	flight singleflight.Group

	// hits, misses and evictions count cache activity
	hits      atomic.Int64
	misses    atomic.Int64
	evictions atomic.Int64

	// now is the clock; replaced in tests
	now func() time.Time
}

// NewMemoizer creates a memoizer for rule sets over inputs of type C and
// values of type V.
func NewMemoizer[C, V any](config *MemoizerConfig) (*Memoizer[C, V], error) {
	if config == nil {
		config = DefaultMemoizerConfig()
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	logger := config.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	metrics := config.Metrics
	if metrics == nil {
		metrics = nopMetrics{}
	}

	return &Memoizer[C, V]{
		name:      config.Name,
		ttl:       config.TTL,
		maxPerSet: config.MaxEntriesPerSet,
		logger:    logger,
		metrics:   metrics,
		sets:      make(map[string]*setCache[V]),
		now:       time.Now,
	}, nil
}

// Memoize wraps a resolver function with a dedicated Memoizer. The
// returned function is interchangeable with the one it wraps; repeated
// calls with an equivalent input and the same rule set return the cached
// value without re-running any predicate. A nil fn wraps the
// package-level Resolve function.
func Memoize[C, V any](fn ResolverFunc[C, V], config *MemoizerConfig) (ResolverFunc[C, V], error) {
	m, err := NewMemoizer[C, V](config)
	if err != nil {
		return nil, err
	}

	if fn == nil {
		fn = Resolve[C, V]
	}

	return func(input C, rs *RuleSet[C, V]) (V, error) {
		return m.resolve(fn, input, rs)
	}, nil
}

// Resolve returns the memoized result for (rs, input), computing it with
// the package-level Resolve function on a miss.
func (m *Memoizer[C, V]) Resolve(input C, rs *RuleSet[C, V]) (V, error) {
	return m.resolve(Resolve[C, V], input, rs)
}

// resolve implements the memoized path around an arbitrary resolver
// function.
func (m *Memoizer[C, V]) resolve(fn ResolverFunc[C, V], input C, rs *RuleSet[C, V]) (V, error) {
	var zero V

	if rs == nil {
		return zero, ErrNilRuleSet
	}

	start := m.now()
	label := setLabel(rs)

	key, err := contextKey(input)
	if err != nil {
		m.metrics.RecordEvaluation(label, OutcomeError, m.now().Sub(start))
		return zero, &CacheKeyError{SetID: rs.id, SetName: rs.name, Cause: err}
	}

	if value, ok := m.lookup(rs.id, key); ok {
		m.hits.Add(1)
		m.metrics.RecordCacheHit(label)
		m.metrics.RecordEvaluation(label, OutcomeResolved, m.now().Sub(start))
		m.logger.Debug("cache hit", "memoizer", m.name, "set", label)
		return value, nil
	}

	m.misses.Add(1)
	m.metrics.RecordCacheMiss(label)
	m.logger.Debug("cache miss", "memoizer", m.name, "set", label)

	// The flight key joins set ID and input key on a byte that cannot
	// appear in either.
	flightKey := rs.id + "\x00" + key
	result, err, _ := m.flight.Do(flightKey, func() (interface{}, error) {
		// Another caller may have stored the result while this one was
		// waiting on the flight.
		if value, ok := m.lookup(rs.id, key); ok {
			return value, nil
		}

		value, err := fn(input, rs)
		if err != nil {
			// Failed resolutions are never cached.
			return nil, err
		}

		m.store(rs, key, value)
		return value, nil
	})
	if err != nil {
		m.metrics.RecordEvaluation(label, outcomeForError(err), m.now().Sub(start))
		return zero, err
	}

	m.metrics.RecordEvaluation(label, OutcomeResolved, m.now().Sub(start))
	return result.(V), nil
}

// lookup returns the cached value for (setID, key) when present and not
// expired.
func (m *Memoizer[C, V]) lookup(setID, key string) (V, bool) {
	var zero V

	m.mu.RLock()
	sc, ok := m.sets[setID]
	if !ok {
		m.mu.RUnlock()
		return zero, false
	}
	entry, ok := sc.entries[key]
	m.mu.RUnlock()

	if !ok {
		return zero, false
	}

	if m.ttl > 0 && m.now().Sub(entry.storedAt) > m.ttl {
		m.expire(setID, key, entry.storedAt)
		return zero, false
	}

	return entry.value, true
}

// expire drops one expired entry unless it was replaced after the
// expired read.
func (m *Memoizer[C, V]) expire(setID, key string, storedAt time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()

	sc, ok := m.sets[setID]
	if !ok {
		return
	}
	entry, ok := sc.entries[key]
	if !ok || !entry.storedAt.Equal(storedAt) {
		return
	}

	delete(sc.entries, key)
	m.evictions.Add(1)
	m.metrics.RecordCacheEviction(sc.label, 1)
	m.metrics.SetCacheEntries(sc.label, len(sc.entries))
	m.logger.Debug("cache entry expired", "memoizer", m.name, "set", sc.label)
}

// store records a successful resolution.
func (m *Memoizer[C, V]) store(rs *RuleSet[C, V], key string, value V) {
	label := setLabel(rs)

	m.mu.Lock()
	sc, ok := m.sets[rs.id]
	if !ok {
		sc = &setCache[V]{
			label:   label,
			entries: make(map[string]cacheEntry[V]),
		}
		m.sets[rs.id] = sc
	}

	// At capacity, reset the set's cache instead of evicting selectively.
	if m.maxPerSet > 0 && len(sc.entries) >= m.maxPerSet {
		if _, exists := sc.entries[key]; !exists {
			dropped := len(sc.entries)
			sc.entries = make(map[string]cacheEntry[V], m.maxPerSet)
			m.evictions.Add(int64(dropped))
			m.metrics.RecordCacheEviction(label, dropped)
			m.logger.Debug("cache reset at capacity", "memoizer", m.name, "set", label, "dropped", dropped)
		}
	}

	sc.entries[key] = cacheEntry[V]{value: value, storedAt: m.now()}
	entries := len(sc.entries)
	m.mu.Unlock()

	m.metrics.SetCacheEntries(label, entries)
}

// Forget drops all cached results for the given rule set. Forgetting a
// set that was never cached is a no-op.
func (m *Memoizer[C, V]) Forget(rs *RuleSet[C, V]) {
	if rs == nil {
		return
	}

	m.mu.Lock()
	sc, ok := m.sets[rs.id]
	if ok {
		delete(m.sets, rs.id)
	}
	m.mu.Unlock()

	if !ok {
		return
	}

	dropped := len(sc.entries)
	m.evictions.Add(int64(dropped))
	m.metrics.RecordCacheEviction(sc.label, dropped)
	m.metrics.SetCacheEntries(sc.label, 0)
	m.logger.Debug("cache forgotten", "memoizer", m.name, "set", sc.label, "dropped", dropped)
}

// Purge drops every cached result for every rule set.
func (m *Memoizer[C, V]) Purge() {
	m.mu.Lock()
	sets := m.sets
	m.sets = make(map[string]*setCache[V])
	m.mu.Unlock()

	for _, sc := range sets {
		if dropped := len(sc.entries); dropped > 0 {
			m.evictions.Add(int64(dropped))
			m.metrics.RecordCacheEviction(sc.label, dropped)
		}
		m.metrics.SetCacheEntries(sc.label, 0)
	}
	m.logger.Debug("cache purged", "memoizer", m.name, "sets", len(sets))
}

// Len returns the total number of cached results across all rule sets.
func (m *Memoizer[C, V]) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	total := 0
	for _, sc := range m.sets {
		total += len(sc.entries)
	}
	return total
}

// CacheStats is a point-in-time snapshot of memoizer activity.
type CacheStats struct {
	// Hits counts lookups answered from the cache.
	Hits int64

	// Misses counts lookups that required a resolution.
	Misses int64

	// Evictions counts entries dropped by expiry, capacity resets,
	// Forget and Purge.
	Evictions int64

	// Entries is the current number of cached results.
	Entries int
}

// Stats returns a snapshot of the memoizer's counters.
func (m *Memoizer[C, V]) Stats() CacheStats {
	return CacheStats{
		Hits:      m.hits.Load(),
		Misses:    m.misses.Load(),
		Evictions: m.evictions.Load(),
		Entries:   m.Len(),
	}
}

// setLabel is the metrics/log label for a rule set: its name when one
// was given, otherwise its ID.
func setLabel[C, V any](rs *RuleSet[C, V]) string {
	if rs.name != "" {
		return rs.name
	}
	return rs.id
}

// outcomeForError classifies a resolution error for metrics.
func outcomeForError(err error) string {
	var noMatch *NoMatchError
	if errors.As(err, &noMatch) {
		return OutcomeNoMatch
	}
	return OutcomeError
}
