package main

import (
	"context"

	"github.com/spf13/cobra"

	"sprintlens/internal/logging"
	mcpserver "sprintlens/internal/mcp"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the MCP server over stdio",
	Long: `Starts a Model Context Protocol server over stdin/stdout exposing the
summarize_reports, search_reports, sprint_trend and classify_error tools.

The server exits when its parent process goes away.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, _ []string) error {
	srv := mcpserver.NewServer(version, app.cfg, app.classifier)

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	mcpserver.WatchParent(ctx, cancel)

	logging.New("mcp").Info("starting sprintlens MCP server over stdio", "version", version)
	return srv.Run(ctx)
}
