package repository

import (
	"time"

	"github.com/bargom/expensedb/pkg/logging"
	"github.com/bargom/expensedb/pkg/metrics"
)

// Option configures a repository.
type Option func(*options)

type options struct {
	logger        *logging.Logger
	metrics       *metrics.DBMetrics
	slowThreshold time.Duration
	slowSet       bool
}

func newOptions(opts []Option) options {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = logging.Nop()
	}
	if !o.slowSet {
		o.slowThreshold = o.logger.Config().SlowQueryThreshold
	}
	return o
}

// WithLogger sets the logger statements are reported to.
// Its SlowQueryThreshold applies unless WithSlowQueryThreshold overrides it.
func WithLogger(l *logging.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

// WithMetrics records query counts, durations and open connections.
func WithMetrics(m *metrics.DBMetrics) Option {
	return func(o *options) {
		o.metrics = m
	}
}

// WithSlowQueryThreshold logs statements slower than d at warn level. Zero disables it.
func WithSlowQueryThreshold(d time.Duration) Option {
	return func(o *options) {
		o.slowThreshold = d
		o.slowSet = true
	}
}
