package cmd

import (
	"github.com/huangsam/benchtrack/internal/iocache"
	"github.com/huangsam/benchtrack/internal/mcp"
	"github.com/spf13/cobra"
)

// mcpCmd represents the mcp command.
var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start the Benchtrack MCP server",
	Long:  `Launch an MCP server over stdio that lets AI agents inspect the history and run signed-rank tests.`,
	Args:  cobra.NoArgs,
	PreRunE: func(cmd *cobra.Command, args []string) error {
		return sharedSetup(rootCtx, cmd, args)
	},
	RunE: func(_ *cobra.Command, _ []string) error {
		return mcp.StartMCPServer(rootCtx, cfg, iocache.Manager.GetHistoryStore())
	},
}
