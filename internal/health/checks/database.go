// Package checks provides the store health checkers.
package checks

import (
	"context"
	"fmt"
	"time"

	"github.com/bargom/expensedb/internal/database"
	"github.com/bargom/expensedb/internal/health"
)

// Pinger is implemented by *database.Conn.
type Pinger interface {
	Ping(ctx context.Context) error
	Dialect() database.Dialect
}

// DatabaseChecker checks database connectivity.
type DatabaseChecker struct {
	db       Pinger
	timeout  time.Duration
	severity health.Severity
}

// DatabaseOption is a functional option for DatabaseChecker.
type DatabaseOption func(*DatabaseChecker)

// WithDatabaseTimeout sets the ping timeout.
func WithDatabaseTimeout(d time.Duration) DatabaseOption {
	return func(c *DatabaseChecker) {
		c.timeout = d
	}
}

// WithDatabaseSeverity sets the severity level.
func WithDatabaseSeverity(s health.Severity) DatabaseOption {
	return func(c *DatabaseChecker) {
		c.severity = s
	}
}

// NewDatabaseChecker creates a new database health checker.
func NewDatabaseChecker(db Pinger, opts ...DatabaseOption) *DatabaseChecker {
	c := &DatabaseChecker{
		db:       db,
		timeout:  2 * time.Second,
		severity: health.SeverityCritical,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Name returns the name of this health check.
func (c *DatabaseChecker) Name() string {
	return "database"
}

// Severity returns the severity level of this check.
func (c *DatabaseChecker) Severity() health.Severity {
	return c.severity
}

// Check performs the database health check.
func (c *DatabaseChecker) Check(ctx context.Context) health.CheckResult {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	details := map[string]any{
		"driver": c.db.Dialect().Driver().String(),
	}

	if err := c.db.Ping(ctx); err != nil {
		return health.CheckResult{
			Status:  health.StatusUnhealthy,
			Message: fmt.Sprintf("database ping failed: %v", err),
			Details: details,
		}
	}

	return health.CheckResult{
		Status:  health.StatusHealthy,
		Details: details,
	}
}
