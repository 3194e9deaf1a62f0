// Package cmd provides the CLI commands for expensedb.
package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bargom/expensedb/internal/config"
	"github.com/bargom/expensedb/internal/database"
	"github.com/bargom/expensedb/internal/database/repository"
	"github.com/bargom/expensedb/pkg/logging"
	"github.com/bargom/expensedb/pkg/metrics"
)

var (
	// cfgFile holds the path to the env file
	cfgFile string
	// verbose enables verbose output and debug logging
	verbose bool
	// outputFormat specifies the output format (json, table, plain)
	outputFormat string
	// dumpMetrics writes the collected query metrics to stderr after the command
	dumpMetrics bool

	// current holds the state loaded by the running command
	current *app
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = NewRootCmd()

// app is the configuration, logger and metrics shared by the commands that touch the store.
type app struct {
	cfg      *config.Config
	logger   *logging.Logger
	registry *metrics.Registry
}

// dbConfig returns the store configuration.
func (a *app) dbConfig() database.Config {
	return a.cfg.ToDatabase()
}

// repoOptions returns the options every repository is opened with.
func (a *app) repoOptions() []repository.Option {
	opts := []repository.Option{repository.WithLogger(a.logger)}
	if a.registry != nil {
		opts = append(opts, repository.WithMetrics(a.registry.DB()))
	}
	return opts
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// ExecuteContext runs the root command with ctx, which is cancelled on interrupt by main.main().
func ExecuteContext(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

// GetRootCmd returns the root command for testing purposes.
func GetRootCmd() *cobra.Command {
	return rootCmd
}

// NewRootCmd creates a new root command.
// Tests use it to get a fresh command tree.
func NewRootCmd() *cobra.Command {
	current = nil

	cmd := &cobra.Command{
		Use:   "expensedb",
		Short: "Expense assistant data store tool",
		Long: `expensedb manages the data store behind the expense assistant.

It applies the schema migrations and inspects expenses, expense
categories, users and chat history through the same repositories
the assistant uses.

Configuration is read from EXPENSEDB_* environment variables,
optionally seeded from an env file.`,
		SilenceUsage:       true,
		PersistentPostRunE: writeMetrics,
	}

	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "env file to load (default is .env)")
	cmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
	cmd.PersistentFlags().StringVarP(&outputFormat, "output", "o", "plain", "output format (json|table|plain)")
	cmd.PersistentFlags().BoolVar(&dumpMetrics, "metrics", false, "print query metrics to stderr when done")

	cmd.AddCommand(newVersionCmd())
	cmd.AddCommand(newMigrateCmd())
	cmd.AddCommand(newListCmd())
	cmd.AddCommand(newGetCmd())
	cmd.AddCommand(newDeleteCmd())
	cmd.AddCommand(newHealthCmd())

	return cmd
}

// loadApp loads configuration and builds the logger and metrics registry.
// The command context gets a fresh run id.
func loadApp(cmd *cobra.Command) (*app, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, err
	}

	lc := cfg.ToLogging()
	if verbose {
		lc.Level = "debug"
	}

	var logger *logging.Logger
	if lc.Output == "" || lc.Output == "stderr" {
		logger = logging.NewWithWriter(lc, cmd.ErrOrStderr())
	} else {
		logger = logging.New(lc)
	}

	a := &app{cfg: cfg, logger: logger}
	if cfg.Metrics.Enabled || dumpMetrics {
		a.registry = metrics.NewRegistry(cfg.ToMetrics())
	}

	cmd.SetContext(logging.WithRunID(cmd.Context(), logging.NewRunID()))
	current = a

	a.logger.DebugContext(cmd.Context(), "configuration loaded",
		"driver", cfg.Database.Driver,
		"command", cmd.CommandPath(),
	)
	return a, nil
}

// writeMetrics prints the metrics gathered during the command.
func writeMetrics(cmd *cobra.Command, args []string) error {
	if !dumpMetrics || current == nil || current.registry == nil {
		return nil
	}
	return current.registry.WriteText(cmd.ErrOrStderr())
}

// printVerbose prints message only if verbose mode is enabled.
func printVerbose(cmd *cobra.Command, format string, args ...interface{}) {
	if verbose {
		fmt.Fprintf(cmd.OutOrStdout(), format, args...)
	}
}
