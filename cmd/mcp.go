package cmd

import (
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/joescharf/prscore/internal/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start MCP stdio server for Claude Code integration",
	Long: `Start an MCP (Model Context Protocol) server on stdio.

This lets an MCP client review pull requests and compute scores.
Configure it with:

  {
    "mcpServers": {
      "prscore": { "command": "prscore", "args": ["mcp"] }
    }
  }

Available tools: prscore_analyze, prscore_score`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), shutdownSignals()...)
		defer stop()

		// stdout carries the protocol.
		ui.Out = os.Stderr

		srv := mcp.NewServer(newAnalyzer(), newScorer(), buildVersion)
		return srv.ServeStdio(ctx)
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}
