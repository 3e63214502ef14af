package main

import (
	"github.com/spf13/cobra"

	"github.com/njchilds90/mathlink/internal/mcpserver"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Run the Model Context Protocol (MCP) server on stdio",
	Long: `Starts one kernel and exposes it to AI agents as MCP tools over
standard input/output. Logs go to stderr so they never corrupt the JSON-RPC
stream.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, _, err := openRuntime(cmd, nil)
		if err != nil {
			return err
		}
		defer rt.Close()

		rt.Logger.Info("starting mathlink MCP server (stdio)")
		return mcpserver.NewServer(rt.Client).ServeStdio()
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}
