package cli

import (
	"fmt"

	"github.com/google/gops/agent"
	"github.com/spf13/cobra"

	"github.com/custodia-labs/paperchat/internal/adapters/driving/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "MCP server commands",
	Long:  `Commands for the Model Context Protocol (MCP) server integration.`,
}

var mcpServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the MCP server",
	Long: `Start the Model Context Protocol server so AI assistants can ask
questions about the indexed papers.

By default, the server communicates over stdio using JSON-RPC. The whole
session shares one conversation; the reset tool clears it.

Use --http to serve over HTTP instead, which also exposes Prometheus
metrics on /metrics.

Examples:
  # Stdio mode (default, for desktop assistants)
  paperchat mcp serve

  # HTTP mode
  paperchat mcp serve --http localhost:8080

Assistant configuration:
  {
    "mcpServers": {
      "paperchat": {
        "command": "/path/to/paperchat",
        "args": ["mcp", "serve"]
      }
    }
  }`,
	Args: cobra.NoArgs,
	RunE: runMCPServe,
}

func init() {
	mcpServeCmd.Flags().String("http", "", "serve over HTTP on this address instead of stdio")
	mcpServeCmd.Flags().Bool("gops", false, "start a gops diagnostics agent")
	mcpCmd.AddCommand(mcpServeCmd)
	rootCmd.AddCommand(mcpCmd)
}

func runMCPServe(cmd *cobra.Command, _ []string) error {
	addr, err := cmd.Flags().GetString("http")
	if err != nil {
		return fmt.Errorf("getting http flag: %w", err)
	}
	withGops, err := cmd.Flags().GetBool("gops")
	if err != nil {
		return fmt.Errorf("getting gops flag: %w", err)
	}

	if withGops {
		if err := agent.Listen(agent.Options{ShutdownCleanup: true}); err != nil {
			return fmt.Errorf("starting gops agent: %w", err)
		}
		defer agent.Close()
	}

	session, _, err := openSession(cmd.Context(), 0)
	if err != nil {
		return err
	}
	defer session.Close()

	ports := &mcp.Ports{
		Pipeline: session,
		Metrics:  services.Metrics,
	}

	server, err := mcp.NewServer(ports)
	if err != nil {
		return err
	}

	if addr != "" {
		fmt.Fprintf(cmd.ErrOrStderr(), "MCP server listening on http://%s\n", addr)
		return server.RunHTTP(cmd.Context(), addr)
	}

	return server.Run(cmd.Context())
}
