package mcp

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crossframe-dev/reroute/internal/config"
	"github.com/crossframe-dev/reroute/internal/parser"
)

// Test Plan for the MCP tools:
// - reroute_transform converts a module and reports changes as JSON
// - reroute_analyze returns the fact sheet as JSON
// - Missing source argument yields a tool error, not a Go error
// - Malformed source yields a tool error

func toolRequest(args map[string]interface{}) mcp.CallToolRequest {
	var request mcp.CallToolRequest
	request.Params.Arguments = args
	return request
}

func textPayload(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	require.NotEmpty(t, result.Content)
	text, ok := result.Content[0].(mcp.TextContent)
	require.True(t, ok, "expected text content")
	return text.Text
}

func TestTransformHandler(t *testing.T) {
	t.Parallel()

	p, err := parser.New()
	require.NoError(t, err)
	defer p.Close()
	handler := createTransformHandler(p, config.DefaultOptions())

	source := `import Link from "next/link";

export default function Nav() {
  return <Link href="/">Home</Link>;
}
`
	result, err := handler(context.Background(), toolRequest(map[string]interface{}{
		"source":   source,
		"filename": "nav.tsx",
	}))
	require.NoError(t, err)
	require.False(t, result.IsError)

	var response TransformResponse
	require.NoError(t, json.Unmarshal([]byte(textPayload(t, result)), &response))
	assert.True(t, response.Modified)
	assert.Contains(t, response.Code, "react-router-dom")
	assert.NotEmpty(t, response.Changes)
}

func TestAnalyzeHandler(t *testing.T) {
	t.Parallel()

	p, err := parser.New()
	require.NoError(t, err)
	defer p.Close()
	handler := createAnalyzeHandler(p)

	result, err := handler(context.Background(), toolRequest(map[string]interface{}{
		"source": `import Head from "next/head";` + "\n",
	}))
	require.NoError(t, err)
	require.False(t, result.IsError)

	var facts struct {
		HasNextImports bool `json:"hasNextImports"`
	}
	require.NoError(t, json.Unmarshal([]byte(textPayload(t, result)), &facts))
	assert.True(t, facts.HasNextImports)
}

func TestHandlers_MissingSource(t *testing.T) {
	t.Parallel()

	p, err := parser.New()
	require.NoError(t, err)
	defer p.Close()
	handler := createTransformHandler(p, config.DefaultOptions())

	result, err := handler(context.Background(), toolRequest(map[string]interface{}{}))
	require.NoError(t, err)
	assert.True(t, result.IsError)
}

func TestTransformHandler_ParseFailure(t *testing.T) {
	t.Parallel()

	p, err := parser.New()
	require.NoError(t, err)
	defer p.Close()
	handler := createTransformHandler(p, config.DefaultOptions())

	result, err := handler(context.Background(), toolRequest(map[string]interface{}{
		"source": "const = {\n",
	}))
	require.NoError(t, err)
	assert.True(t, result.IsError)
}
