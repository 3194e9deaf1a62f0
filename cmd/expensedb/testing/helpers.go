// Package testing provides test utilities for CLI commands.
package testing

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/bargom/expensedb/internal/database"
	dbtest "github.com/bargom/expensedb/internal/database/testing"
)

// ExecuteCommand runs a cobra command with the given arguments and returns the output.
func ExecuteCommand(root *cobra.Command, args ...string) (string, error) {
	buf := new(bytes.Buffer)
	root.SetOut(buf)
	root.SetErr(buf)
	root.SetArgs(args)

	err := root.Execute()
	return buf.String(), err
}

// ExecuteCommandWithErr runs a cobra command and captures stdout and stderr separately.
func ExecuteCommandWithErr(root *cobra.Command, args ...string) (stdout string, stderr string, err error) {
	stdoutBuf := new(bytes.Buffer)
	stderrBuf := new(bytes.Buffer)
	root.SetOut(stdoutBuf)
	root.SetErr(stderrBuf)
	root.SetArgs(args)

	err = root.Execute()
	return stdoutBuf.String(), stderrBuf.String(), err
}

// UseSQLite points the CLI configuration at a migrated SQLite file for the test.
// It returns the store configuration so the test can seed data.
func UseSQLite(t *testing.T) database.Config {
	t.Helper()

	cfg := dbtest.SetupTestFile(t)
	t.Setenv("EXPENSEDB_DATABASE__DRIVER", "sqlite")
	t.Setenv("EXPENSEDB_DATABASE__PATH", cfg.Path)
	return cfg
}

// UseEmptySQLite points the CLI configuration at a fresh SQLite file with no schema.
func UseEmptySQLite(t *testing.T) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "expenses.db")
	t.Setenv("EXPENSEDB_DATABASE__DRIVER", "sqlite")
	t.Setenv("EXPENSEDB_DATABASE__PATH", path)
	return path
}

// CreateEnvFile writes an env file with the given content and returns its path.
func CreateEnvFile(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "test.env")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("failed to write env file: %v", err)
	}
	return path
}

// ResetCommand resets a cobra command for reuse in tests.
func ResetCommand(cmd *cobra.Command) {
	cmd.SetArgs([]string{})
	cmd.SetOut(nil)
	cmd.SetErr(nil)

	// Reset flags to defaults
	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		f.Value.Set(f.DefValue)
	})
}
