package mcp

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/mark3labs/mcp-go/server"

	"github.com/crossframe-dev/reroute/internal/config"
	"github.com/crossframe-dev/reroute/internal/parser"
)

// Server manages the MCP server lifecycle. It exposes the conversion
// engine as tools so editor agents can transform and inspect files
// without shelling out to the CLI.
type Server struct {
	opts   config.ConversionOptions
	parser *parser.Parser
	mcp    *server.MCPServer
}

// NewServer creates an MCP server with the transform and analyze tools
// registered.
func NewServer(opts config.ConversionOptions) (*Server, error) {
	mcpServer := server.NewMCPServer(
		"reroute-mcp",
		"1.0.0",
		server.WithToolCapabilities(true),
	)

	p, err := parser.New()
	if err != nil {
		return nil, err
	}
	AddTransformTool(mcpServer, p, opts)
	AddAnalyzeTool(mcpServer, p)

	return &Server{
		opts:   opts,
		parser: p,
		mcp:    mcpServer,
	}, nil
}

// Serve starts the MCP server on stdio and blocks until shutdown.
func (s *Server) Serve(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	errCh := make(chan error, 1)
	go func() {
		log.Printf("Starting MCP server on stdio...")
		errCh <- server.ServeStdio(s.mcp)
	}()

	select {
	case <-sigCh:
		log.Printf("Received shutdown signal, stopping gracefully...")
		return nil
	case err := <-errCh:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close releases parser resources.
func (s *Server) Close() {
	s.parser.Close()
}
