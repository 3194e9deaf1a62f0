package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/bargom/expensedb/internal/database/setup"
)

// deleteForce skips the delete confirmation
var deleteForce bool

// newListCmd creates the list command.
func newListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list <table> [field=value ...]",
		Short: "List records of a table",
		Long: `List the records of a table, ordered by id.

Filters are field=value pairs that must all match. Integers are
compared as numbers, status and role names (active, assistant, ...)
as their codes, and null matches missing values.

Tables: expenses, expense_categories, users, chats.`,
		Args: cobra.MinimumNArgs(1),
		Example: `  expensedb list users
  expensedb list expenses user_id=1 month_year=2024-03
  expensedb list chats user_id=1 role_id=assistant --output json`,
		ValidArgsFunction: completeTables,
		RunE:              runList,
	}

	return cmd
}

// newGetCmd creates the get command.
func newGetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "get <table> <id>",
		Short: "Show one record",
		Args:  cobra.ExactArgs(2),
		Example: `  expensedb get expenses 42
  expensedb get users 1 --output json`,
		ValidArgsFunction: completeTables,
		RunE:              runGet,
	}

	return cmd
}

// newDeleteCmd creates the delete command.
func newDeleteCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:               "delete <table> <id>",
		Short:             "Delete one record",
		Long:              `Delete a record by id. Use --force to skip confirmation.`,
		Args:              cobra.ExactArgs(2),
		Example:           `  expensedb delete chats 17 --force`,
		ValidArgsFunction: completeTables,
		RunE:              runDelete,
	}

	cmd.Flags().BoolVarP(&deleteForce, "force", "f", false, "skip confirmation")

	return cmd
}

// withResource loads configuration, opens the repositories and runs fn on the named table.
func withResource(cmd *cobra.Command, name string, fn func(res resource, table string) error) error {
	a, err := loadApp(cmd)
	if err != nil {
		return err
	}

	conn, err := setup.NewConnection(cmd.Context(), a.dbConfig(), a.repoOptions()...)
	if err != nil {
		return fmt.Errorf("database connection failed: %w", err)
	}
	defer conn.Close()

	res, table, err := resolveResource(conn.Repositories(), name)
	if err != nil {
		return err
	}
	return fn(res, table)
}

func runList(cmd *cobra.Command, args []string) error {
	criteria, err := parseCriteria(args[1:])
	if err != nil {
		return err
	}

	return withResource(cmd, args[0], func(res resource, table string) error {
		printVerbose(cmd, "Listing %s\n", table)

		records, err := res.list(cmd.Context(), criteria)
		if err != nil {
			return fmt.Errorf("listing %s: %w", table, err)
		}
		return writeRecords(cmd.OutOrStdout(), records)
	})
}

func runGet(cmd *cobra.Command, args []string) error {
	id, err := parseID(args[1])
	if err != nil {
		return err
	}

	return withResource(cmd, args[0], func(res resource, table string) error {
		r, err := res.get(cmd.Context(), id)
		if err != nil {
			return fmt.Errorf("getting %s %d: %w", table, id, err)
		}
		if r == nil {
			return fmt.Errorf("%s %d not found", table, id)
		}
		return writeRecord(cmd.OutOrStdout(), r)
	})
}

func runDelete(cmd *cobra.Command, args []string) error {
	id, err := parseID(args[1])
	if err != nil {
		return err
	}

	if !deleteForce {
		fmt.Fprintf(cmd.OutOrStdout(), "Are you sure you want to delete %s %d? Use --force to skip this prompt.\n", args[0], id)
		return nil
	}

	return withResource(cmd, args[0], func(res resource, table string) error {
		deleted, err := res.delete(cmd.Context(), id)
		if err != nil {
			return fmt.Errorf("deleting %s %d: %w", table, id, err)
		}
		if !deleted {
			return fmt.Errorf("%s %d not found", table, id)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s %d\n", table, id)
		return nil
	})
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", s)
	}
	return id, nil
}

// completeTables suggests table names for the first argument.
func completeTables(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if len(args) > 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	return tableNames(), cobra.ShellCompDirectiveNoFileComp
}
