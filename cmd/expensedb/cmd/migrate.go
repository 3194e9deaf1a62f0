package cmd

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/bargom/expensedb/internal/database"
	"github.com/bargom/expensedb/internal/database/setup"
)

// migrateForce skips the reset confirmation
var migrateForce bool

// newMigrateCmd creates the migrate command with subcommands.
func newMigrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the database schema",
		Long: `Apply, roll back, or inspect the schema migrations.

Each driver has its own migration set; the one matching the
configured driver is used.`,
	}

	cmd.AddCommand(newMigrateUpCmd())
	cmd.AddCommand(newMigrateDownCmd())
	cmd.AddCommand(newMigrateStatusCmd())
	cmd.AddCommand(newMigrateResetCmd())

	return cmd
}

func newMigrateUpCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "up",
		Short:   "Apply all pending migrations",
		Args:    cobra.NoArgs,
		Example: `  expensedb migrate up`,
		RunE:    runMigrateUp,
	}
}

func newMigrateDownCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "down",
		Short:   "Roll back the last applied migration",
		Args:    cobra.NoArgs,
		Example: `  expensedb migrate down`,
		RunE:    runMigrateDown,
	}
}

func newMigrateStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show applied and pending migrations",
		Args:  cobra.NoArgs,
		Example: `  expensedb migrate status
  expensedb migrate status --output json`,
		RunE: runMigrateStatus,
	}
}

func newMigrateResetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Roll back every migration and apply them again",
		Long: `Roll back every migration and apply them again.

All data is lost. Use --force to skip confirmation.`,
		Args:    cobra.NoArgs,
		Example: `  expensedb migrate reset --force`,
		RunE:    runMigrateReset,
	}

	cmd.Flags().BoolVarP(&migrateForce, "force", "f", false, "skip confirmation")

	return cmd
}

// withMigrator loads configuration and runs fn with a migrator on a dedicated connection.
func withMigrator(cmd *cobra.Command, fn func(a *app, conn *database.Conn, m *database.Migrator) error) error {
	a, err := loadApp(cmd)
	if err != nil {
		return err
	}

	m, conn, err := setup.NewMigrator(cmd.Context(), a.dbConfig())
	if err != nil {
		return fmt.Errorf("database connection failed: %w", err)
	}
	defer conn.Close()

	return fn(a, conn, m)
}

func runMigrateUp(cmd *cobra.Command, args []string) error {
	return withMigrator(cmd, func(a *app, _ *database.Conn, m *database.Migrator) error {
		before, err := m.Status(cmd.Context())
		if err != nil {
			return err
		}

		if err := m.MigrateUp(cmd.Context()); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}

		applied := 0
		for _, mig := range before {
			if mig.AppliedAt == nil {
				applied++
				printVerbose(cmd, "Applied %s_%s\n", mig.Version, mig.Name)
			}
		}
		a.logger.InfoContext(cmd.Context(), "migrations applied", "count", applied)

		if applied == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "Schema is up to date")
			return nil
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Applied %d migration(s)\n", applied)
		return nil
	})
}

func runMigrateDown(cmd *cobra.Command, args []string) error {
	return withMigrator(cmd, func(a *app, _ *database.Conn, m *database.Migrator) error {
		status, err := m.Status(cmd.Context())
		if err != nil {
			return err
		}

		var last *database.Migration
		for i := range status {
			if status[i].AppliedAt != nil {
				last = &status[i]
			}
		}
		if last == nil {
			fmt.Fprintln(cmd.OutOrStdout(), "No migrations to roll back")
			return nil
		}

		if err := m.MigrateDown(cmd.Context()); err != nil {
			return fmt.Errorf("rollback failed: %w", err)
		}

		a.logger.InfoContext(cmd.Context(), "migration rolled back", "version", last.Version)
		fmt.Fprintf(cmd.OutOrStdout(), "Rolled back %s_%s\n", last.Version, last.Name)
		return nil
	})
}

func runMigrateReset(cmd *cobra.Command, args []string) error {
	if !migrateForce {
		fmt.Fprintln(cmd.OutOrStdout(), "Are you sure you want to reset the schema? All data is lost. Use --force to skip this prompt.")
		return nil
	}

	return withMigrator(cmd, func(a *app, _ *database.Conn, m *database.Migrator) error {
		if err := m.MigrateReset(cmd.Context()); err != nil {
			return fmt.Errorf("reset failed: %w", err)
		}
		a.logger.InfoContext(cmd.Context(), "schema reset")
		fmt.Fprintln(cmd.OutOrStdout(), "Schema reset")
		return nil
	})
}

// migrationStatus is the JSON form of one migration.
type migrationStatus struct {
	Version   string     `json:"version"`
	Name      string     `json:"name"`
	AppliedAt *time.Time `json:"appliedAt,omitempty"`
}

func runMigrateStatus(cmd *cobra.Command, args []string) error {
	return withMigrator(cmd, func(a *app, _ *database.Conn, m *database.Migrator) error {
		status, err := m.Status(cmd.Context())
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		switch outputFormat {
		case "json":
			rows := make([]migrationStatus, len(status))
			for i, mig := range status {
				rows[i] = migrationStatus{Version: mig.Version, Name: mig.Name, AppliedAt: mig.AppliedAt}
			}
			encoder := json.NewEncoder(out)
			encoder.SetIndent("", "  ")
			return encoder.Encode(rows)

		case "table":
			tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "VERSION\tNAME\tAPPLIED AT")
			for _, mig := range status {
				fmt.Fprintf(tw, "%s\t%s\t%s\n", mig.Version, mig.Name, appliedAt(mig))
			}
			return tw.Flush()

		default:
			for _, mig := range status {
				fmt.Fprintf(out, "%s_%s  %s\n", mig.Version, mig.Name, appliedAt(mig))
			}
			return nil
		}
	})
}

func appliedAt(m database.Migration) string {
	if m.AppliedAt == nil {
		return "pending"
	}
	return m.AppliedAt.UTC().Format(time.RFC3339)
}
