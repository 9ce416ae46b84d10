package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/crossframe-dev/reroute/internal/analyzer"
	"github.com/crossframe-dev/reroute/internal/config"
	"github.com/crossframe-dev/reroute/internal/parser"
	"github.com/crossframe-dev/reroute/internal/rewrite"
)

// TransformResponse is the JSON payload returned by reroute_transform.
type TransformResponse struct {
	Code     string   `json:"code"`
	Modified bool     `json:"modified"`
	Changes  []string `json:"changes"`
	Warnings []string `json:"warnings"`
}

// AddTransformTool registers the reroute_transform tool with an MCP server.
// This function is composable - it can be combined with other tool registrations.
func AddTransformTool(s *server.MCPServer, p *parser.Parser, opts config.ConversionOptions) {
	tool := mcp.NewTool(
		"reroute_transform",
		mcp.WithDescription("Transform one Next.js module into its React equivalent. Returns the rewritten source plus a list of applied changes and warnings."),
		mcp.WithString("source",
			mcp.Required(),
			mcp.Description("Full source text of the module to transform")),
		mcp.WithString("filename",
			mcp.Description("File name used to pick the dialect (.ts, .tsx, .js, .jsx). Defaults to module.tsx")),
	)

	s.AddTool(tool, createTransformHandler(p, opts))
}

// AddAnalyzeTool registers the reroute_analyze tool with an MCP server.
func AddAnalyzeTool(s *server.MCPServer, p *parser.Parser) {
	tool := mcp.NewTool(
		"reroute_analyze",
		mcp.WithDescription("Parse one module and return its fact sheet: imports, exports, components, hooks, and whether Next.js features are in use."),
		mcp.WithString("source",
			mcp.Required(),
			mcp.Description("Full source text of the module to analyze")),
		mcp.WithString("filename",
			mcp.Description("File name used to pick the dialect (.ts, .tsx, .js, .jsx). Defaults to module.tsx")),
	)

	s.AddTool(tool, createAnalyzeHandler(p))
}

// createTransformHandler creates the handler function for reroute_transform.
func createTransformHandler(p *parser.Parser, opts config.ConversionOptions) func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		source, filename, errResult := sourceArgs(request)
		if errResult != nil {
			return errResult, nil
		}

		tree, err := p.Parse([]byte(source), filename, parser.OptionsForFile(filename))
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("parse failed: %v", err)), nil
		}

		facts := analyzer.Analyze(tree)
		result := rewrite.TransformParsed(tree, facts, opts)

		response := &TransformResponse{
			Code:     result.Code,
			Modified: result.Modified(),
			Changes:  result.Changes,
			Warnings: result.Warnings,
		}
		jsonData, err := json.Marshal(response)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal response: %w", err)
		}
		return mcp.NewToolResultText(string(jsonData)), nil
	}
}

// createAnalyzeHandler creates the handler function for reroute_analyze.
func createAnalyzeHandler(p *parser.Parser) func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		source, filename, errResult := sourceArgs(request)
		if errResult != nil {
			return errResult, nil
		}

		tree, err := p.Parse([]byte(source), filename, parser.OptionsForFile(filename))
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("parse failed: %v", err)), nil
		}

		facts := analyzer.Analyze(tree)
		jsonData, err := json.Marshal(facts)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal fact sheet: %w", err)
		}
		return mcp.NewToolResultText(string(jsonData)), nil
	}
}

// sourceArgs extracts the shared source/filename arguments from a tool call.
func sourceArgs(request mcp.CallToolRequest) (string, string, *mcp.CallToolResult) {
	argsMap, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return "", "", mcp.NewToolResultError("invalid arguments format")
	}

	source, ok := argsMap["source"].(string)
	if !ok || source == "" {
		return "", "", mcp.NewToolResultError("source parameter is required")
	}

	filename := "module.tsx"
	if name, ok := argsMap["filename"].(string); ok && name != "" {
		filename = name
	}
	return source, filename, nil
}
