// Package metrics provides Prometheus metrics collection for expensedb.
package metrics

// Config holds configuration for the metrics module.
type Config struct {
	// Namespace is the prefix for all metrics (default: "expensedb")
	Namespace string

	// DefaultLabels are applied to all metrics as constant labels
	DefaultLabels map[string]string

	// EnableProcessMetrics enables Go process metrics (CPU, memory, goroutines)
	EnableProcessMetrics bool

	// EnableRuntimeMetrics enables Go runtime metrics
	EnableRuntimeMetrics bool

	// DBDurationBuckets are the histogram buckets for query duration in seconds
	DBDurationBuckets []float64
}

// DefaultConfig returns the default metrics configuration.
func DefaultConfig() Config {
	return Config{
		Namespace: "expensedb",
		DefaultLabels: map[string]string{
			"version":     "unknown",
			"environment": "development",
		},
		EnableProcessMetrics: true,
		EnableRuntimeMetrics: true,
		DBDurationBuckets:    DefaultDBDurationBuckets(),
	}
}

// DefaultDBDurationBuckets returns the default query duration buckets.
func DefaultDBDurationBuckets() []float64 {
	return []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5}
}

// WithVersion sets the version label.
func (c Config) WithVersion(version string) Config {
	c.DefaultLabels = c.labels()
	c.DefaultLabels["version"] = version
	return c
}

// WithEnvironment sets the environment label.
func (c Config) WithEnvironment(env string) Config {
	c.DefaultLabels = c.labels()
	c.DefaultLabels["environment"] = env
	return c
}

// labels returns a copy of DefaultLabels so With* never mutate a shared map.
func (c Config) labels() map[string]string {
	out := make(map[string]string, len(c.DefaultLabels)+1)
	for k, v := range c.DefaultLabels {
		out[k] = v
	}
	return out
}
