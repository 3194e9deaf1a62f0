package metrics

import (
	"fmt"
	"io"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/common/expfmt"
)

// Registry manages all Prometheus metrics for expensedb.
type Registry struct {
	config   Config
	registry *prometheus.Registry

	dbQueriesTotal    *prometheus.CounterVec
	dbQueryDuration   *prometheus.HistogramVec
	dbQueryErrors     *prometheus.CounterVec
	dbRowsTotal       *prometheus.CounterVec
	dbConnectionsOpen *prometheus.GaugeVec
}

// Global registry instance
var (
	globalRegistry *Registry
	once           sync.Once
)

// NewRegistry creates a new metrics registry with the given configuration.
func NewRegistry(config Config) *Registry {
	if len(config.DBDurationBuckets) == 0 {
		config.DBDurationBuckets = DefaultDBDurationBuckets()
	}

	reg := prometheus.NewRegistry()

	r := &Registry{
		config:   config,
		registry: reg,
	}

	r.registerDatabaseMetrics()

	if config.EnableProcessMetrics {
		reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	}
	if config.EnableRuntimeMetrics {
		reg.MustRegister(collectors.NewGoCollector())
	}

	return r
}

// Global returns the global registry instance, initializing it with default config if needed.
func Global() *Registry {
	once.Do(func() {
		if globalRegistry == nil {
			globalRegistry = NewRegistry(DefaultConfig())
		}
	})
	return globalRegistry
}

// SetGlobal sets the global registry instance.
func SetGlobal(r *Registry) {
	globalRegistry = r
}

// PrometheusRegistry returns the underlying Prometheus registry.
func (r *Registry) PrometheusRegistry() *prometheus.Registry {
	return r.registry
}

// Config returns the registry configuration.
func (r *Registry) Config() Config {
	return r.config
}

// WriteText writes every gathered metric family in the Prometheus text format.
func (r *Registry) WriteText(w io.Writer) error {
	families, err := r.registry.Gather()
	if err != nil {
		return fmt.Errorf("gathering metrics: %w", err)
	}
	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return fmt.Errorf("writing metrics: %w", err)
		}
	}
	return nil
}

func (r *Registry) registerDatabaseMetrics() {
	ns := r.config.Namespace
	constLabels := prometheus.Labels(r.config.DefaultLabels)

	r.dbQueriesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace:   ns,
			Subsystem:   "db",
			Name:        "queries_total",
			Help:        "Total number of database queries executed",
			ConstLabels: constLabels,
		},
		[]string{"operation", "table", "status"},
	)

	r.dbQueryDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace:   ns,
			Subsystem:   "db",
			Name:        "query_duration_seconds",
			Help:        "Database query duration in seconds",
			Buckets:     r.config.DBDurationBuckets,
			ConstLabels: constLabels,
		},
		[]string{"operation", "table"},
	)

	r.dbQueryErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace:   ns,
			Subsystem:   "db",
			Name:        "query_errors_total",
			Help:        "Total number of database query errors",
			ConstLabels: constLabels,
		},
		[]string{"operation", "table", "error_type"},
	)

	r.dbRowsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace:   ns,
			Subsystem:   "db",
			Name:        "rows_total",
			Help:        "Total number of rows returned or affected by database queries",
			ConstLabels: constLabels,
		},
		[]string{"operation", "table"},
	)

	r.dbConnectionsOpen = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace:   ns,
			Subsystem:   "db",
			Name:        "connections_open",
			Help:        "Number of repository connections currently open",
			ConstLabels: constLabels,
		},
		[]string{"table"},
	)

	r.registry.MustRegister(
		r.dbQueriesTotal,
		r.dbQueryDuration,
		r.dbQueryErrors,
		r.dbRowsTotal,
		r.dbConnectionsOpen,
	)
}
