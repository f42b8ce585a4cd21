package cmd

import (
	"runtime"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// versionCmd shows the verbose version for diagnostic purposes.
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of benchtrack.",
	Long: `Display version information including build details.

Shows:
- Release version
- Git commit hash
- Build timestamp
- Go runtime version
- Config file in use, if any

Useful for:
- Debugging compatibility issues
- Verifying correct binary installation
- Reporting bugs with version details`,
	PreRunE: func(_ *cobra.Command, _ []string) error {
		return readConfigFile()
	},
	Run: func(cmd *cobra.Command, _ []string) {
		cmd.Printf("benchtrack CLI\n")
		cmd.Printf("  Version: %s\n", version)
		cmd.Printf("  Commit:  %s\n", commit)
		cmd.Printf("  Built:   %s\n", date)
		cmd.Printf("  Runtime: %s\n", runtime.Version())
		if used := viper.ConfigFileUsed(); used != "" {
			cmd.Printf("  Config:  %s\n", used)
		}
	},
}
