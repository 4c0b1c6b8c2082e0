package cli

import (
	"github.com/spf13/cobra"

	"github.com/mlvtools/mlvtools/internal/mcpserver"
)

func newMCPCommand(version string) *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Serve mlvtools as MCP tools on stdio",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return mcpserver.Serve(version)
		},
	}
}
