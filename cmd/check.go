package cmd

import (
	"errors"
	"os"

	"github.com/huangsam/benchtrack/core"
	"github.com/huangsam/benchtrack/internal/contract"
	"github.com/huangsam/benchtrack/internal/iocache"
	"github.com/huangsam/benchtrack/schema"
	"github.com/spf13/cobra"
)

// checkCmd focused on CI/CD regression gating.
var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Run the suite and fail on significant slowdowns (for CI/CD pipelines)",
	Long: `Run the configured tests exactly like 'run', then exit with a non-zero code when
any metric became significantly slower than the previous run.

A metric fails the check only when both hold:
- the signed-rank test marks the change as significant
- the slowdown is larger than --max-regression percent

The first run has no baseline and always passes.

Examples:
  # Fail on any significant slowdown
  benchtrack check

  # Tolerate up to 5% slowdown in noisy CI runners
  benchtrack check --max-regression 5

  # Gate against a shared PostgreSQL history
  benchtrack check --history-backend postgresql --history-connect "host=db user=ci dbname=bench"`,
	Args: cobra.NoArgs,
	Run: func(_ *cobra.Command, _ []string) {
		err := core.ExecuteCheck(rootCtx, cfg, iocache.Manager.GetHistoryStore())
		if errors.Is(err, schema.ErrRegression) {
			// The summary was already printed by the check itself
			iocache.CloseHistory()
			os.Exit(1)
		}
		if err != nil {
			contract.LogFatal("Regression check failed", err)
		}
	},
}
