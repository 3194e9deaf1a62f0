package checks

import (
	"context"
	"fmt"

	"github.com/bargom/expensedb/internal/database"
	"github.com/bargom/expensedb/internal/health"
)

// MigrationLister is implemented by *database.Migrator.
type MigrationLister interface {
	Status(ctx context.Context) ([]database.Migration, error)
}

// SchemaChecker reports pending schema migrations.
// Pending migrations degrade the report; an unreadable migration table fails it.
type SchemaChecker struct {
	migrations MigrationLister
	severity   health.Severity
}

// NewSchemaChecker creates a schema checker with warning severity.
func NewSchemaChecker(migrations MigrationLister) *SchemaChecker {
	return &SchemaChecker{
		migrations: migrations,
		severity:   health.SeverityWarning,
	}
}

// Name returns the name of this health check.
func (c *SchemaChecker) Name() string {
	return "schema"
}

// Severity returns the severity level of this check.
func (c *SchemaChecker) Severity() health.Severity {
	return c.severity
}

// Check compares the applied migrations with the embedded ones.
func (c *SchemaChecker) Check(ctx context.Context) health.CheckResult {
	status, err := c.migrations.Status(ctx)
	if err != nil {
		return health.CheckResult{
			Status:  health.StatusUnhealthy,
			Message: fmt.Sprintf("reading migrations failed: %v", err),
		}
	}

	var applied, pending int
	var current string
	for _, m := range status {
		if m.AppliedAt == nil {
			pending++
			continue
		}
		applied++
		current = m.Version
	}

	details := map[string]any{
		"applied": applied,
		"pending": pending,
		"current": current,
	}

	if pending > 0 {
		return health.CheckResult{
			Status:  health.StatusDegraded,
			Message: fmt.Sprintf("%d pending migration(s)", pending),
			Details: details,
		}
	}

	return health.CheckResult{
		Status:  health.StatusHealthy,
		Details: details,
	}
}
