package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/caseflow-cli/internal/adapters/driving/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "MCP server commands",
	Long:  `Commands for the Model Context Protocol (MCP) server integration.`,
}

var mcpServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the MCP server",
	Long: `Start a Model Context Protocol server that exposes the case workflow
as tools: extract, index_evidence, underwrite, fetch_trace, replay and
session_status. The current session and verification history are
available as resources.

By default the server communicates over stdio using JSON-RPC. Use --port
to serve streamable HTTP on /mcp instead, with a /healthz endpoint.

Examples:
  # Stdio mode
  caseflow mcp serve

  # HTTP mode
  caseflow mcp serve --port 8080

Client configuration:
  {
    "mcpServers": {
      "caseflow": {
        "command": "/path/to/caseflow",
        "args": ["mcp", "serve"]
      }
    }
  }`,
	RunE: runMCPServe,
}

func init() {
	mcpServeCmd.Flags().IntP("port", "p", 0, "HTTP port (0 = use stdio)")
	mcpCmd.AddCommand(mcpServeCmd)
	rootCmd.AddCommand(mcpCmd)
}

func runMCPServe(cmd *cobra.Command, _ []string) error {
	port, err := cmd.Flags().GetInt("port")
	if err != nil {
		return fmt.Errorf("getting port flag: %w", err)
	}

	ports := &mcp.Ports{
		Workflow: workflowService,
		History:  historyService,
		Settings: settingsService,
	}

	server, err := mcp.NewServer(ports)
	if err != nil {
		return err
	}

	if port > 0 {
		addr := fmt.Sprintf(":%d", port)
		fmt.Fprintf(cmd.OutOrStdout(), "MCP server listening on http://localhost%s\n", addr)
		return server.RunHTTP(cmd.Context(), addr)
	}

	return server.Run(cmd.Context())
}
