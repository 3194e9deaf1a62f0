package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/bargom/expensedb/internal/database"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, "mysql", cfg.Database.Driver)
	assert.Equal(t, "localhost", cfg.Database.Host)
	assert.Equal(t, 3306, cfg.Database.Port)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, "stderr", cfg.Log.Output)
	assert.Equal(t, 100*time.Millisecond, cfg.Log.SlowQueryThreshold)
	assert.False(t, cfg.Metrics.Enabled)
	assert.Equal(t, "expensedb", cfg.Metrics.Namespace)
}

func TestFromEnv(t *testing.T) {
	t.Run("sqlite needs no server settings", func(t *testing.T) {
		t.Setenv("EXPENSEDB_DATABASE__DRIVER", "sqlite3")
		t.Setenv("EXPENSEDB_DATABASE__PATH", "/tmp/expenses.db")

		cfg, err := FromEnv()
		require.NoError(t, err)
		assert.Equal(t, "sqlite", cfg.Database.Driver)
		assert.Equal(t, "/tmp/expenses.db", cfg.Database.Path)
		assert.Zero(t, cfg.Database.Port)
	})

	t.Run("sqlite requires a file path", func(t *testing.T) {
		t.Setenv("EXPENSEDB_DATABASE__DRIVER", "sqlite")

		_, err := FromEnv()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "Path")
	})

	t.Run("postgres gets its default port", func(t *testing.T) {
		t.Setenv("EXPENSEDB_DATABASE__DRIVER", "postgresql")
		t.Setenv("EXPENSEDB_DATABASE__HOST", "db.internal")
		t.Setenv("EXPENSEDB_DATABASE__NAME", "expenses")
		t.Setenv("EXPENSEDB_DATABASE__USER", "app")
		t.Setenv("EXPENSEDB_DATABASE__PASSWORD", "s3cret")

		cfg, err := FromEnv()
		require.NoError(t, err)
		assert.Equal(t, "postgres", cfg.Database.Driver)
		assert.Equal(t, "db.internal", cfg.Database.Host)
		assert.Equal(t, 5432, cfg.Database.Port)
		assert.Equal(t, "expenses", cfg.Database.Name)
		assert.Equal(t, "app", cfg.Database.User)
		assert.Equal(t, "s3cret", cfg.Database.Password)
	})

	t.Run("explicit port wins", func(t *testing.T) {
		t.Setenv("EXPENSEDB_DATABASE__DRIVER", "postgres")
		t.Setenv("EXPENSEDB_DATABASE__PORT", "6543")
		t.Setenv("EXPENSEDB_DATABASE__NAME", "expenses")
		t.Setenv("EXPENSEDB_DATABASE__USER", "app")

		cfg, err := FromEnv()
		require.NoError(t, err)
		assert.Equal(t, 6543, cfg.Database.Port)
	})

	t.Run("mysql requires name and user", func(t *testing.T) {
		t.Setenv("EXPENSEDB_DATABASE__DRIVER", "mysql")

		_, err := FromEnv()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid configuration")
		assert.Contains(t, err.Error(), "Name")
		assert.Contains(t, err.Error(), "User")
	})

	t.Run("unknown driver", func(t *testing.T) {
		t.Setenv("EXPENSEDB_DATABASE__DRIVER", "oracle")
		t.Setenv("EXPENSEDB_DATABASE__NAME", "expenses")
		t.Setenv("EXPENSEDB_DATABASE__USER", "app")

		_, err := FromEnv()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "Driver")
	})

	t.Run("port out of range", func(t *testing.T) {
		t.Setenv("EXPENSEDB_DATABASE__DRIVER", "mysql")
		t.Setenv("EXPENSEDB_DATABASE__PORT", "70000")
		t.Setenv("EXPENSEDB_DATABASE__NAME", "expenses")
		t.Setenv("EXPENSEDB_DATABASE__USER", "app")

		_, err := FromEnv()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "Port")
	})

	t.Run("log settings", func(t *testing.T) {
		t.Setenv("EXPENSEDB_DATABASE__DRIVER", "sqlite")
		t.Setenv("EXPENSEDB_DATABASE__PATH", "expenses.db")
		t.Setenv("EXPENSEDB_LOG__LEVEL", "debug")
		t.Setenv("EXPENSEDB_LOG__FORMAT", "text")
		t.Setenv("EXPENSEDB_LOG__ADD_SOURCE", "true")
		t.Setenv("EXPENSEDB_LOG__SLOW_QUERY_THRESHOLD", "250ms")
		t.Setenv("EXPENSEDB_LOG__REDACT_FIELDS", "card_number, iban")

		cfg, err := FromEnv()
		require.NoError(t, err)
		assert.Equal(t, "debug", cfg.Log.Level)
		assert.Equal(t, "text", cfg.Log.Format)
		assert.True(t, cfg.Log.AddSource)
		assert.Equal(t, 250*time.Millisecond, cfg.Log.SlowQueryThreshold)
		assert.Equal(t, []string{"card_number", "iban"}, cfg.Log.RedactFields)
	})

	t.Run("invalid log format", func(t *testing.T) {
		t.Setenv("EXPENSEDB_DATABASE__DRIVER", "sqlite")
		t.Setenv("EXPENSEDB_DATABASE__PATH", "expenses.db")
		t.Setenv("EXPENSEDB_LOG__FORMAT", "xml")

		_, err := FromEnv()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "Format")
	})

	t.Run("metrics enabled", func(t *testing.T) {
		t.Setenv("EXPENSEDB_DATABASE__DRIVER", "sqlite")
		t.Setenv("EXPENSEDB_DATABASE__PATH", "expenses.db")
		t.Setenv("EXPENSEDB_METRICS__ENABLED", "true")
		t.Setenv("EXPENSEDB_METRICS__ENVIRONMENT", "staging")

		cfg, err := FromEnv()
		require.NoError(t, err)
		assert.True(t, cfg.Metrics.Enabled)
		assert.Equal(t, "staging", cfg.Metrics.Environment)
	})
}

func TestLoad(t *testing.T) {
	t.Run("reads env file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "test.env")
		content := "EXPENSEDB_DATABASE__DRIVER=sqlite\nEXPENSEDB_DATABASE__PATH=from-file.db\n"
		require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
		t.Cleanup(func() {
			os.Unsetenv("EXPENSEDB_DATABASE__DRIVER")
			os.Unsetenv("EXPENSEDB_DATABASE__PATH")
		})

		cfg, err := Load(path)
		require.NoError(t, err)
		assert.Equal(t, "sqlite", cfg.Database.Driver)
		assert.Equal(t, "from-file.db", cfg.Database.Path)
	})

	t.Run("environment wins over env file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "test.env")
		content := "EXPENSEDB_DATABASE__DRIVER=sqlite\nEXPENSEDB_DATABASE__PATH=from-file.db\n"
		require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
		t.Setenv("EXPENSEDB_DATABASE__PATH", "from-env.db")
		t.Cleanup(func() {
			os.Unsetenv("EXPENSEDB_DATABASE__DRIVER")
		})

		cfg, err := Load(path)
		require.NoError(t, err)
		assert.Equal(t, "from-env.db", cfg.Database.Path)
	})

	t.Run("missing env file is ignored", func(t *testing.T) {
		t.Setenv("EXPENSEDB_DATABASE__DRIVER", "sqlite")
		t.Setenv("EXPENSEDB_DATABASE__PATH", "expenses.db")

		cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
		require.NoError(t, err)
		assert.Equal(t, "sqlite", cfg.Database.Driver)
	})

	t.Run("malformed env file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "bad.env")
		require.NoError(t, os.WriteFile(path, []byte("EXPENSEDB_X='unterminated\n"), 0o600))

		_, err := Load(path)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "loading")
	})
}

func TestConversions(t *testing.T) {
	cfg := Default()
	cfg.Database = DatabaseConfig{
		Driver:   "postgres",
		Host:     "db",
		Port:     5433,
		Name:     "expenses",
		User:     "app",
		Password: "pw",
		SSLMode:  "require",
	}
	cfg.Log.RedactFields = []string{"iban"}
	cfg.Metrics.Version = "1.2.3"
	cfg.Metrics.Environment = "production"

	t.Run("database", func(t *testing.T) {
		db := cfg.ToDatabase()
		assert.Equal(t, database.Config{
			Driver:   database.DriverPostgres,
			Host:     "db",
			Port:     5433,
			Database: "expenses",
			User:     "app",
			Password: "pw",
			SSLMode:  "require",
		}, db)
	})

	t.Run("logging", func(t *testing.T) {
		lc := cfg.ToLogging()
		assert.Equal(t, "info", lc.Level)
		assert.Equal(t, 100*time.Millisecond, lc.SlowQueryThreshold)
		assert.Equal(t, []string{"iban"}, lc.RedactFields)
	})

	t.Run("metrics", func(t *testing.T) {
		mc := cfg.ToMetrics()
		assert.Equal(t, "expensedb", mc.Namespace)
		assert.Equal(t, "1.2.3", mc.DefaultLabels["version"])
		assert.Equal(t, "production", mc.DefaultLabels["environment"])
	})
}
