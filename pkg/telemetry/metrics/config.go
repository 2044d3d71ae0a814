package metrics

// Config holds the naming settings shared by all dispatch metric
// vectors.
type Config struct {
	// Namespace is the metric name prefix (default "callisto")
	Namespace string

	// Subsystem groups the metrics under the namespace (default
	// "dispatch")
	Subsystem string
}

// DefaultConfig returns the default metrics configuration.
func DefaultConfig() *Config {
	return &Config{
		Namespace: "callisto",
		Subsystem: "dispatch",
	}
}
