package cmd

import (
	"fmt"
	"os"
	"strconv"

	"github.com/huangsam/benchtrack/core"
	"github.com/huangsam/benchtrack/internal/contract"
	"github.com/huangsam/benchtrack/internal/iocache"
	"github.com/huangsam/benchtrack/internal/outwriter"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// historySetup loads minimal configuration needed for history management.
// This is used by commands that need the store without full shared setup,
// so a broken tests section does not block status or export.
func historySetup(cmd *cobra.Command, args []string) error {
	if err := historyBackendSetup(cmd, args); err != nil {
		return err
	}
	cfg.OutputFile = viper.GetString("output-file")

	if err := iocache.InitHistory(cfg.HistoryBackend, cfg.HistoryConnect); err != nil {
		return fmt.Errorf("failed to initialize history: %w", err)
	}
	return nil
}

// parseIndex parses a history index argument.
func parseIndex(arg string) (int, error) {
	i, err := strconv.Atoi(arg)
	if err != nil {
		return 0, fmt.Errorf("invalid history index %q: must be an integer", arg)
	}
	return i, nil
}

// historyCmd focused on history log management.
//
// Note: status, export, clear and migrate use minimal initialization instead
// of the full sharedSetup. They never look at the configured tests.
var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Inspect, compare and manage recorded benchmark runs",
	Long: `Manage the history log that every run appends to.

Each entry stores the timestamp of the run and the raw per-repetition samples
of every test, so any two runs can be compared again later.

Supported backends: YAML file (default), SQLite, MySQL, PostgreSQL, or None (disabled)

Subcommands:
  status  - Show history statistics
  show    - Print one run compared with the run before it
  compare - Compare any two runs
  chart   - Render an HTML chart of every test across runs
  export  - Export data to Parquet for analytics
  clear   - Remove all recorded runs
  migrate - Run database schema migrations

Indexes start at 0 for the oldest run. Negative indexes count from the end,
so -1 is the latest run.

Examples:
  # Check history status
  benchtrack history status

  # Compare the first run with the latest one
  benchtrack history compare 0 -- -1`,
}

// historyStatusCmd shows history status.
var historyStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Display history statistics and connection details",
	Long: `Show information about the history store.

Displays:
- Backend type and location
- Total number of recorded runs
- Last and oldest run timestamps
- Names of the recorded tests

Examples:
  # Check the default YAML log
  benchtrack history status

  # Check a SQLite history
  benchtrack history status --history-backend sqlite`,
	Args:    cobra.NoArgs,
	PreRunE: historySetup,
	Run: func(_ *cobra.Command, _ []string) {
		status, err := iocache.Manager.GetHistoryStore().Status()
		if err != nil {
			contract.LogFatal("Failed to get history status", err)
		}
		outwriter.WriteHistoryStatus(os.Stdout, status)
	},
}

// historyShowCmd prints one recorded run.
var historyShowCmd = &cobra.Command{
	Use:   "show [index]",
	Short: "Print a recorded run compared with the run before it",
	Long: `Print the report of a recorded run, compared with the run recorded just before it.
The oldest run has no baseline and is printed on its own.

Examples:
  # Show the latest run (default)
  benchtrack history show

  # Show the third run as a table
  benchtrack history show 2 --output table`,
	Args:    cobra.MaximumNArgs(1),
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, args []string) {
		index := -1
		if len(args) == 1 {
			i, err := parseIndex(args[0])
			if err != nil {
				contract.LogFatal("Invalid argument", err)
			}
			index = i
		}
		if err := core.ExecuteHistoryShow(rootCtx, cfg, iocache.Manager.GetHistoryStore(), index); err != nil {
			contract.LogFatal("Failed to show history entry", err)
		}
	},
}

// historyCompareCmd compares two recorded runs.
var historyCompareCmd = &cobra.Command{
	Use:   "compare <base-index> <target-index>",
	Short: "Compare two recorded runs with the signed-rank test",
	Long: `Compare any two recorded runs the same way 'run' compares the new run with the last one.

Examples:
  # Compare the oldest run with the latest one
  benchtrack history compare 0 -- -1

  # Compare the last two runs as CSV
  benchtrack history compare -- -2 -1 --output csv`,
	Args:    cobra.ExactArgs(2),
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, args []string) {
		base, err := parseIndex(args[0])
		if err != nil {
			contract.LogFatal("Invalid base index", err)
		}
		target, err := parseIndex(args[1])
		if err != nil {
			contract.LogFatal("Invalid target index", err)
		}
		if err := core.ExecuteHistoryCompare(rootCtx, cfg, iocache.Manager.GetHistoryStore(), base, target); err != nil {
			contract.LogFatal("Failed to compare history entries", err)
		}
	},
}

// historyChartCmd renders an HTML chart of the history.
var historyChartCmd = &cobra.Command{
	Use:   "chart",
	Short: "Render an HTML line chart of every test across runs",
	Long: `Render one line chart per test with the mean cpu and wall-clock time of every run.

Examples:
  # Write the chart to a file and open it in a browser
  benchtrack history chart --output-file history.html`,
	Args:    cobra.NoArgs,
	PreRunE: sharedSetupWrapper,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteHistoryChart(rootCtx, cfg, iocache.Manager.GetHistoryStore()); err != nil {
			contract.LogFatal("Failed to chart history", err)
		}
	},
}

// historyExportCmd exports history data to Parquet files.
var historyExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export recorded runs to Parquet files for external analytics",
	Long: `Export every recorded run to Parquet files.

The --output-file value is used as a prefix for three files:
- <prefix>.runs.parquet       - one row per run
- <prefix>.samples.parquet    - one row per sample
- <prefix>.statistics.parquet - one row per test and metric

Examples:
  # Export for analysis in pandas/DuckDB
  benchtrack history export --output-file bench`,
	Args:    cobra.NoArgs,
	PreRunE: historySetup,
	Run: func(_ *cobra.Command, _ []string) {
		if err := iocache.ExecuteHistoryExport(rootCtx, iocache.Manager.GetHistoryStore(), cfg.OutputFile); err != nil {
			contract.LogFatal("Failed to export history", err)
		}
	},
}

// historyClearCmd clears the history.
var historyClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove all recorded runs",
	Long: `Delete every recorded run from the history store.

WARNING: This action cannot be undone. Consider exporting data first.
The next run will have no baseline to compare against.

Examples:
  # Export before clearing
  benchtrack history export --output-file backup
  benchtrack history clear`,
	Args:    cobra.NoArgs,
	PreRunE: historyBackendSetup,
	Run: func(_ *cobra.Command, _ []string) {
		if err := iocache.ClearHistory(rootCtx, cfg.HistoryBackend, cfg.HistoryConnect); err != nil {
			contract.LogFatal("Failed to clear history", err)
		}
		fmt.Println("History cleared successfully.")
	},
}

// historyMigrateCmd runs database migrations for the SQL backends.
var historyMigrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run database schema migrations (upgrades/downgrades)",
	Long: `Apply or roll back the schema migrations of a SQL history store.
Stores are migrated to the latest version automatically when opened, so this is
mostly needed for rollbacks or for preparing a shared database ahead of time.

Examples:
  # Migrate to the latest version
  benchtrack history migrate --history-backend sqlite

  # Roll back everything
  benchtrack history migrate --history-backend sqlite --target-version 0`,
	Args:    cobra.NoArgs,
	PreRunE: historyBackendSetup,
	Run: func(_ *cobra.Command, _ []string) {
		targetVersion := viper.GetInt("target-version")
		if err := iocache.MigrateHistory(cfg.HistoryBackend, cfg.HistoryConnect, targetVersion); err != nil {
			contract.LogFatal("Migration failed", err)
		}
	},
}
