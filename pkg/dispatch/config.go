package dispatch

import (
	"fmt"
	"log/slog"
	"time"
)

// MemoizerConfig contains configuration for a Memoizer.
type MemoizerConfig struct {
	// Name labels this memoizer in log output.
	// Default: "" (unnamed).
	Name string

	// TTL bounds how long a cached result stays valid. Expired entries
	// are dropped lazily when next looked up.
	// Zero disables expiry. Default: 0.
	TTL time.Duration

	// MaxEntriesPerSet caps the number of cached results held per rule
	// set. When a store would exceed the cap, the set's cache is reset.
	// Zero means unbounded. Default: 0.
	MaxEntriesPerSet int

	// Logger receives debug-level cache events (hits, misses, stores,
	// evictions). A nil logger disables logging.
	// Default: nil.
	Logger *slog.Logger

	// Metrics receives instrumentation events. A nil Metrics disables
	// instrumentation.
	// Default: nil.
	Metrics Metrics
}

// DefaultMemoizerConfig returns the default memoizer configuration:
// unbounded cache, no expiry, no logging, no metrics.
func DefaultMemoizerConfig() *MemoizerConfig {
	return &MemoizerConfig{}
}

// Validate validates the memoizer configuration.
func (c *MemoizerConfig) Validate() error {
	if c.TTL < 0 {
		return fmt.Errorf("%w: TTL cannot be negative", ErrInvalidConfig)
	}
	if c.MaxEntriesPerSet < 0 {
		return fmt.Errorf("%w: max entries per set cannot be negative", ErrInvalidConfig)
	}
	return nil
}

// WithName sets the memoizer's log label.
func (c *MemoizerConfig) WithName(name string) *MemoizerConfig {
	c.Name = name
	return c
}

// WithTTL sets the cached-result lifetime.
func (c *MemoizerConfig) WithTTL(ttl time.Duration) *MemoizerConfig {
	c.TTL = ttl
	return c
}

// WithMaxEntriesPerSet sets the per-set cache capacity.
func (c *MemoizerConfig) WithMaxEntriesPerSet(max int) *MemoizerConfig {
	c.MaxEntriesPerSet = max
	return c
}

// WithLogger sets the logger for cache events.
func (c *MemoizerConfig) WithLogger(logger *slog.Logger) *MemoizerConfig {
	c.Logger = logger
	return c
}

// WithMetrics sets the instrumentation sink.
func (c *MemoizerConfig) WithMetrics(metrics Metrics) *MemoizerConfig {
	c.Metrics = metrics
	return c
}
