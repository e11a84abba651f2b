package cmd

import (
	"github.com/huangsam/contacts/internal/mcp"
	"github.com/spf13/cobra"
)

// mcpCmd represents the mcp command.
var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start the contacts MCP server",
	Long:  `Launch an MCP server on stdio that lets AI agents list, read and edit contacts via standard tools.`,
	PreRunE: func(cmd *cobra.Command, args []string) error {
		// Output must stay off stdout, which carries the protocol
		return sharedSetup(rootCtx, cmd, args)
	},
	RunE: func(_ *cobra.Command, _ []string) error {
		return mcp.StartMCPServer(rootCtx, store, version)
	},
}
