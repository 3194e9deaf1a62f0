package cmd

import (
	"encoding/json"
	"strings"
	"testing"

	clitest "github.com/bargom/expensedb/cmd/expensedb/testing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrateCommands(t *testing.T) {
	clitest.UseEmptySQLite(t)

	t.Run("status before migrating", func(t *testing.T) {
		rootCmd := NewRootCmd()
		output, err := clitest.ExecuteCommand(rootCmd, "migrate", "status")

		require.NoError(t, err)
		assert.Equal(t, 4, strings.Count(output, "pending"))
		assert.Contains(t, output, "000001_create_users")
		assert.Contains(t, output, "000004_create_chats")
	})

	t.Run("up applies everything", func(t *testing.T) {
		rootCmd := NewRootCmd()
		output, err := clitest.ExecuteCommand(rootCmd, "migrate", "up", "--verbose")

		require.NoError(t, err)
		assert.Contains(t, output, "Applied 4 migration(s)")
		assert.Contains(t, output, "Applied 000002_create_expense_categories")
	})

	t.Run("up again is a no-op", func(t *testing.T) {
		rootCmd := NewRootCmd()
		output, err := clitest.ExecuteCommand(rootCmd, "migrate", "up")

		require.NoError(t, err)
		assert.Contains(t, output, "Schema is up to date")
	})

	t.Run("status as json", func(t *testing.T) {
		rootCmd := NewRootCmd()
		stdout, _, err := clitest.ExecuteCommandWithErr(rootCmd, "migrate", "status", "-o", "json")
		require.NoError(t, err)

		var rows []migrationStatus
		require.NoError(t, json.Unmarshal([]byte(stdout), &rows))
		require.Len(t, rows, 4)
		for _, r := range rows {
			assert.NotNil(t, r.AppliedAt, "migration %s", r.Version)
		}
	})

	t.Run("status as table", func(t *testing.T) {
		rootCmd := NewRootCmd()
		output, err := clitest.ExecuteCommand(rootCmd, "migrate", "status", "-o", "table")

		require.NoError(t, err)
		assert.Contains(t, output, "VERSION")
		assert.Contains(t, output, "APPLIED AT")
		assert.NotContains(t, output, "pending")
	})

	t.Run("down rolls back the last migration", func(t *testing.T) {
		rootCmd := NewRootCmd()
		output, err := clitest.ExecuteCommand(rootCmd, "migrate", "down")

		require.NoError(t, err)
		assert.Contains(t, output, "Rolled back 000004_create_chats")

		rootCmd = NewRootCmd()
		output, err = clitest.ExecuteCommand(rootCmd, "migrate", "status")
		require.NoError(t, err)
		assert.Equal(t, 1, strings.Count(output, "pending"))
	})

	t.Run("reset asks for confirmation", func(t *testing.T) {
		rootCmd := NewRootCmd()
		output, err := clitest.ExecuteCommand(rootCmd, "migrate", "reset")

		require.NoError(t, err)
		assert.Contains(t, output, "--force")
	})

	t.Run("reset with force", func(t *testing.T) {
		rootCmd := NewRootCmd()
		output, err := clitest.ExecuteCommand(rootCmd, "migrate", "reset", "--force")

		require.NoError(t, err)
		assert.Contains(t, output, "Schema reset")

		rootCmd = NewRootCmd()
		output, err = clitest.ExecuteCommand(rootCmd, "migrate", "status")
		require.NoError(t, err)
		assert.NotContains(t, output, "pending")
	})
}

func TestMigrateDownOnEmptySchema(t *testing.T) {
	clitest.UseEmptySQLite(t)

	rootCmd := NewRootCmd()
	output, err := clitest.ExecuteCommand(rootCmd, "migrate", "down")

	require.NoError(t, err)
	assert.Contains(t, output, "No migrations to roll back")
}

func TestMigrateConnectionFailure(t *testing.T) {
	t.Setenv("EXPENSEDB_DATABASE__DRIVER", "postgres")
	t.Setenv("EXPENSEDB_DATABASE__HOST", "127.0.0.1")
	t.Setenv("EXPENSEDB_DATABASE__PORT", "1")
	t.Setenv("EXPENSEDB_DATABASE__NAME", "expenses")
	t.Setenv("EXPENSEDB_DATABASE__USER", "app")

	rootCmd := NewRootCmd()
	_, err := clitest.ExecuteCommand(rootCmd, "migrate", "up")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "database connection failed")
}
