package cmd

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/bargom/expensedb/internal/database"
	"github.com/bargom/expensedb/internal/health"
	"github.com/bargom/expensedb/internal/health/checks"
)

// newHealthCmd creates the health command.
func newHealthCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "health",
		Short: "Check the data store",
		Long: `Check that the data store is reachable and its schema is current.

Exits with an error when the store is unreachable. Pending
migrations are reported as degraded.`,
		Args: cobra.NoArgs,
		Example: `  expensedb health
  expensedb health --output json`,
		RunE: runHealth,
	}

	return cmd
}

func runHealth(cmd *cobra.Command, args []string) error {
	return withMigrator(cmd, func(a *app, conn *database.Conn, m *database.Migrator) error {
		registry := health.NewRegistry(Version)
		registry.Register(checks.NewDatabaseChecker(conn))
		registry.Register(checks.NewSchemaChecker(m))

		report := registry.Run(cmd.Context())
		a.logger.DebugContext(cmd.Context(), "health checked", "status", string(report.Status))

		if outputFormat == "json" {
			if err := outputJSON(cmd.OutOrStdout(), report); err != nil {
				return err
			}
		} else {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Status: %s\n", report.Status)

			names := make([]string, 0, len(report.Checks))
			for name := range report.Checks {
				names = append(names, name)
			}
			sort.Strings(names)
			for _, name := range names {
				r := report.Checks[name]
				line := fmt.Sprintf("  %s: %s", name, r.Status)
				if r.Message != "" {
					line += " (" + r.Message + ")"
				}
				fmt.Fprintln(out, line)
			}
		}

		if report.Status == health.StatusUnhealthy {
			return fmt.Errorf("store is %s", report.Status)
		}
		return nil
	})
}
