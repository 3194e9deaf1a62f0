package checks

import (
	"context"
	"testing"
	"time"

	"github.com/bargom/expensedb/internal/database"
	dbtest "github.com/bargom/expensedb/internal/database/testing"
	"github.com/bargom/expensedb/internal/health"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openMemory(t *testing.T) *database.Conn {
	t.Helper()

	conn, err := database.Open(context.Background(), database.Config{Driver: database.DriverSQLite})
	require.NoError(t, err)
	return conn
}

func TestDatabaseChecker(t *testing.T) {
	t.Run("healthy database", func(t *testing.T) {
		conn := openMemory(t)
		defer conn.Close()

		result := NewDatabaseChecker(conn).Check(context.Background())

		assert.Equal(t, health.StatusHealthy, result.Status)
		assert.Empty(t, result.Message)
		assert.Equal(t, "sqlite", result.Details["driver"])
	})

	t.Run("closed database returns unhealthy", func(t *testing.T) {
		conn := openMemory(t)
		require.NoError(t, conn.Close())

		result := NewDatabaseChecker(conn).Check(context.Background())

		assert.Equal(t, health.StatusUnhealthy, result.Status)
		assert.Contains(t, result.Message, "database ping failed")
	})

	t.Run("name returns database", func(t *testing.T) {
		conn := openMemory(t)
		defer conn.Close()

		assert.Equal(t, "database", NewDatabaseChecker(conn).Name())
	})

	t.Run("default severity is critical", func(t *testing.T) {
		conn := openMemory(t)
		defer conn.Close()

		assert.Equal(t, health.SeverityCritical, NewDatabaseChecker(conn).Severity())
	})

	t.Run("custom options", func(t *testing.T) {
		conn := openMemory(t)
		defer conn.Close()

		checker := NewDatabaseChecker(conn,
			WithDatabaseTimeout(5*time.Second),
			WithDatabaseSeverity(health.SeverityWarning),
		)
		assert.Equal(t, 5*time.Second, checker.timeout)
		assert.Equal(t, health.SeverityWarning, checker.Severity())
	})

	t.Run("context cancellation", func(t *testing.T) {
		conn := openMemory(t)
		defer conn.Close()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		result := NewDatabaseChecker(conn).Check(ctx)
		assert.Equal(t, health.StatusUnhealthy, result.Status)
	})
}

func TestSchemaChecker(t *testing.T) {
	t.Run("current schema is healthy", func(t *testing.T) {
		conn := dbtest.SetupTestDB(t)
		defer dbtest.TeardownTestDB(t, conn)

		result := NewSchemaChecker(database.NewMigrator(conn, conn.Dialect())).Check(context.Background())

		assert.Equal(t, health.StatusHealthy, result.Status)
		assert.Equal(t, 4, result.Details["applied"])
		assert.Equal(t, 0, result.Details["pending"])
		assert.Equal(t, "000004", result.Details["current"])
	})

	t.Run("pending migrations degrade", func(t *testing.T) {
		conn := openMemory(t)
		defer conn.Close()

		result := NewSchemaChecker(database.NewMigrator(conn, conn.Dialect())).Check(context.Background())

		assert.Equal(t, health.StatusDegraded, result.Status)
		assert.Equal(t, "4 pending migration(s)", result.Message)
		assert.Equal(t, "", result.Details["current"])
	})

	t.Run("unreadable migrations are unhealthy", func(t *testing.T) {
		conn := openMemory(t)
		require.NoError(t, conn.Close())

		result := NewSchemaChecker(database.NewMigrator(conn, conn.Dialect())).Check(context.Background())

		assert.Equal(t, health.StatusUnhealthy, result.Status)
		assert.Contains(t, result.Message, "reading migrations failed")
	})

	t.Run("metadata", func(t *testing.T) {
		checker := NewSchemaChecker(nil)
		assert.Equal(t, "schema", checker.Name())
		assert.Equal(t, health.SeverityWarning, checker.Severity())
	})
}
