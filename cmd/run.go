package cmd

import (
	"github.com/huangsam/benchtrack/core"
	"github.com/huangsam/benchtrack/internal/contract"
	"github.com/huangsam/benchtrack/internal/iocache"
	"github.com/spf13/cobra"
)

// runCmd times the configured tests and compares them with the last recorded run.
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Time the configured tests and compare with the previous run",
	Long: `Run every test from the config file for a number of repetitions, record the
samples in the history log and print a comparison against the previous run.

Each metric is compared with a Wilcoxon signed-rank test over the paired samples,
so the report only stars a change when it is unlikely to be noise.

Tests are declared in .benchtrack.yml:

  tests:
    - name: startup
      command: ["./bin/search", "--version"]
      times: 3
    - name: typing
      command: ["./bin/search", "--index"]
      paths: ["data/index"]
      queries: ["needle", "haystack"]
      incremental: true

Paths are passed after the command and each query comes last. With incremental
set, every prefix of a query is run in turn.

Examples:
  # Run the suite with the default 10 repetitions
  benchtrack run

  # Quick run without warm-up, written as JSON
  benchtrack run -n 3 --warmup=false --output json --output-file run.json

  # Record into SQLite instead of the YAML log
  benchtrack run --history-backend sqlite`,
	Args: cobra.NoArgs,
	Run: func(_ *cobra.Command, _ []string) {
		if err := core.ExecuteRun(rootCtx, cfg, iocache.Manager.GetHistoryStore()); err != nil {
			contract.LogFatal("Benchmark run failed", err)
		}
	},
}
