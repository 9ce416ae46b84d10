package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/crossframe-dev/reroute/internal/config"
	"github.com/crossframe-dev/reroute/internal/mcp"
)

// mcpCmd represents the mcp command
var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start the MCP server for editor-driven conversion",
	Long: `Start the Model Context Protocol (MCP) server that lets coding
assistants transform and analyze Next.js modules in place.

The MCP server:
- Exposes reroute_transform for single-module conversion
- Exposes reroute_analyze for fact-sheet inspection
- Communicates via stdio (standard MCP transport)

Example:
  reroute mcp`,
	RunE: runMCP,
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}

func runMCP(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	fmt.Fprintf(os.Stderr, "Reroute MCP Server\n")
	fmt.Fprintf(os.Stderr, "Conversion: %s -> %s\n\n", cfg.Conversion.Source, cfg.Conversion.Target)

	server, err := mcp.NewServer(cfg.Options())
	if err != nil {
		return fmt.Errorf("failed to create MCP server: %w", err)
	}
	defer server.Close()

	if err := server.Serve(ctx); err != nil {
		return fmt.Errorf("MCP server error: %w", err)
	}
	return nil
}
