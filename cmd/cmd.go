// Package cmd defines the command-line interface for benchtrack.
package cmd

import (
	"github.com/huangsam/benchtrack/internal/contract"
	"github.com/huangsam/benchtrack/schema"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func init() {
	// Call initConfig on Cobra's initialization
	cobra.OnInitialize(initConfig)

	// Add primary subcommands to the root command
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(mcpCmd)
	rootCmd.AddCommand(versionCmd)

	// Add the history subcommands to the parent history command
	historyCmd.AddCommand(historyStatusCmd)
	historyCmd.AddCommand(historyShowCmd)
	historyCmd.AddCommand(historyCompareCmd)
	historyCmd.AddCommand(historyChartCmd)
	historyCmd.AddCommand(historyExportCmd)
	historyCmd.AddCommand(historyClearCmd)
	historyCmd.AddCommand(historyMigrateCmd)

	// Bind all persistent flags of rootCmd to Viper
	rootCmd.PersistentFlags().String("output", string(schema.TextOut), "Output format: text or table or csv or json")
	rootCmd.PersistentFlags().String("output-file", "", "Optional path to write output to")
	rootCmd.PersistentFlags().Int("precision", contract.DefaultPrecision, "Decimal precision for numeric columns")
	rootCmd.PersistentFlags().String("color", "auto", "Color the change column (auto/yes/no/true/false/1/0)")
	rootCmd.PersistentFlags().String("history-backend", string(schema.YAMLBackend), "History backend: yaml or sqlite or mysql or postgresql or none")
	rootCmd.PersistentFlags().String("history-connect", "", "History file path, or database connection string for mysql/postgresql")
	rootCmd.PersistentFlags().String("profile", "", "Enable profiling and write profiles to files with this prefix")
	rootCmd.PersistentFlags().String("config", "", "Path to config file")
	if err := viper.BindPFlags(rootCmd.PersistentFlags()); err != nil {
		contract.LogFatal("Error binding root flags", err)
	}

	// run and check share the suite flags, so both bind to the same keys
	for _, c := range []*cobra.Command{runCmd, checkCmd} {
		c.Flags().IntP("repetitions", "n", schema.DefaultRepetitions, "Number of times the whole suite is repeated")
		c.Flags().Bool("warmup", true, "Run each workload once before timing it")
		c.Flags().Bool("recurse", true, "Pass the recursive hint to workloads")
		c.Flags().Int("threads", contract.DefaultThreads, "Thread hint passed to workloads")
	}
	checkCmd.Flags().Float64("max-regression", 0, "Percent slowdown tolerated before a significant change fails the check")
	runCmd.PreRunE = bindSuiteFlags(runCmd)
	checkCmd.PreRunE = bindSuiteFlags(checkCmd)

	// Bind all flags of historyMigrateCmd to Viper
	historyMigrateCmd.Flags().Int("target-version", -1, "Target migration version (-1 means latest, 0 means rollback to initial state)")
	if err := viper.BindPFlags(historyMigrateCmd.Flags()); err != nil {
		contract.LogFatal("Error binding history migrate flags", err)
	}
}

// bindSuiteFlags binds the flags of the command being executed before the shared setup.
// Binding at run time keeps run and check from overwriting each other's bindings.
func bindSuiteFlags(c *cobra.Command) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		if err := viper.BindPFlags(c.Flags()); err != nil {
			return err
		}
		return sharedSetupWrapper(cmd, args)
	}
}
