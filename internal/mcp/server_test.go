package mcp

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alexmacapple/DSFR-MCP-sub000/internal/cache"
	"github.com/Alexmacapple/DSFR-MCP-sub000/internal/indexer"
	"github.com/Alexmacapple/DSFR-MCP-sub000/internal/repository"
	"github.com/Alexmacapple/DSFR-MCP-sub000/internal/retrieval"
	"github.com/Alexmacapple/DSFR-MCP-sub000/internal/searchindex"
	"github.com/Alexmacapple/DSFR-MCP-sub000/pkg/types"
)

const boutonDoc = "Title: Bouton\nURL: https://www.systeme-de-design.gouv.fr/elements-d-interface/component/bouton\nMarkdown:\n# Bouton\n\nLe bouton déclenche une action.\n"

func writeSource(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	files := map[string]string{
		"src/component/button/button.scss": ".fr-btn { color: blue; }",
		"src/doc/bouton.md":                boutonDoc,
	}
	for rel, content := range files {
		full := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
		require.NoError(t, os.WriteFile(full, []byte(content), 0o644))
	}
	return root
}

func setupTestServer(t *testing.T, root string) *Server {
	t.Helper()
	c, err := cache.New(cache.DefaultConfig(), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })

	repo := repository.New()
	repo.PutDocument("src/doc/alerte.md", &types.Document{ID: "alerte", Title: "Alerte", Category: types.DocComponent})
	svc := retrieval.New(c, retrieval.NewSnapshot(repo, searchindex.DefaultOptions()))

	server, err := NewServer(svc, indexer.New(), Options{SourceRoot: root, Search: searchindex.DefaultOptions()})
	require.NoError(t, err)
	return server
}

func callRequest(name string, args map[string]interface{}) mcp.CallToolRequest {
	var request mcp.CallToolRequest
	request.Params.Name = name
	if args != nil {
		request.Params.Arguments = args
	}
	return request
}

func resultText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	require.NotNil(t, result)
	require.NotEmpty(t, result.Content)
	text, ok := result.Content[0].(mcp.TextContent)
	require.True(t, ok, "expected text content")
	return text.Text
}

func requireMCPError(t *testing.T, err error, code int) {
	t.Helper()
	require.Error(t, err)
	mcpErr, ok := err.(*MCPError)
	require.True(t, ok, "expected *MCPError, got %T", err)
	assert.Equal(t, code, mcpErr.Code)
}

func TestNewServer(t *testing.T) {
	_, err := NewServer(nil, nil, Options{})
	assert.Error(t, err)

	server := setupTestServer(t, "")
	assert.NotNil(t, server.mcp)
	assert.NotNil(t, server.retrieval)
	assert.NotNil(t, server.indexer)
	assert.NotNil(t, server.logger)
}

func TestToolDefinitions(t *testing.T) {
	tools := []mcp.Tool{
		searchComponentsTool(), getComponentDetailsTool(), listCategoriesTool(), searchPatternsTool(),
		getIconsTool(), getColorsTool(), reindexTool(), cacheStatsTool(),
	}
	names := make([]string, 0, len(tools))
	for _, tool := range tools {
		names = append(names, tool.Name)
		assert.Equal(t, "object", tool.InputSchema.Type)
		assert.NotEmpty(t, tool.Description)
	}
	assert.Equal(t, []string{
		ToolSearchComponents, ToolGetComponentDetails, ToolListCategories, ToolSearchPatterns,
		ToolGetIcons, ToolGetColors, ToolReindex, ToolCacheStats,
	}, names)
	assert.Equal(t, []string{"name"}, getComponentDetailsTool().InputSchema.Required)
}

func TestHandleSearchComponents(t *testing.T) {
	server := setupTestServer(t, "")
	ctx := context.Background()

	result, err := server.handleSearchComponents(ctx, callRequest(ToolSearchComponents, map[string]interface{}{
		"query": "alerte",
		"limit": float64(5),
	}))
	require.NoError(t, err)
	assert.False(t, result.IsError)
	assert.Contains(t, resultText(t, result), "## 1. Alerte")

	_, err = server.handleSearchComponents(ctx, callRequest(ToolSearchComponents, map[string]interface{}{
		"query": "alerte",
		"limit": float64(500),
	}))
	requireMCPError(t, err, ErrorCodeInvalidParams)

	// A bad category is a tool-level error, not a protocol error
	result, err = server.handleSearchComponents(ctx, callRequest(ToolSearchComponents, map[string]interface{}{
		"category": "widgets",
	}))
	require.NoError(t, err)
	assert.True(t, result.IsError)
}

func TestHandleGetComponentDetails(t *testing.T) {
	server := setupTestServer(t, "")
	ctx := context.Background()

	_, err := server.handleGetComponentDetails(ctx, callRequest(ToolGetComponentDetails, nil))
	requireMCPError(t, err, ErrorCodeInvalidParams)

	result, err := server.handleGetComponentDetails(ctx, callRequest(ToolGetComponentDetails, map[string]interface{}{
		"name": "alerte",
	}))
	require.NoError(t, err)
	assert.Contains(t, resultText(t, result), "# Alerte")

	result, err = server.handleGetComponentDetails(ctx, callRequest(ToolGetComponentDetails, map[string]interface{}{
		"name": "carrousel",
	}))
	require.NoError(t, err)
	assert.False(t, result.IsError, "not found is a normal result")
	assert.Contains(t, resultText(t, result), "not found")
}

func TestHandleInvalidArguments(t *testing.T) {
	server := setupTestServer(t, "")
	request := callRequest(ToolGetIcons, nil)
	request.Params.Arguments = "not an object"

	_, err := server.handleGetIcons(context.Background(), request)
	requireMCPError(t, err, ErrorCodeInvalidParams)
}

func TestHandleReindex(t *testing.T) {
	root := writeSource(t)
	server := setupTestServer(t, root)
	ctx := context.Background()

	result, err := server.handleReindex(ctx, callRequest(ToolReindex, nil))
	require.NoError(t, err)

	var response map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(resultText(t, result)), &response))
	assert.Equal(t, true, response["indexed"])
	assert.EqualValues(t, 2, response["files_discovered"])
	assert.EqualValues(t, 1, response["documents"])

	// The served snapshot now reflects the source tree
	result, err = server.handleGetComponentDetails(ctx, callRequest(ToolGetComponentDetails, map[string]interface{}{
		"name": "button",
	}))
	require.NoError(t, err)
	assert.Contains(t, resultText(t, result), "button.scss")

	result, err = server.handleSearchComponents(ctx, callRequest(ToolSearchComponents, map[string]interface{}{
		"query": "alerte",
	}))
	require.NoError(t, err)
	assert.Contains(t, resultText(t, result), "No component matches")
}

func TestHandleReindex_SourceErrors(t *testing.T) {
	ctx := context.Background()

	_, err := setupTestServer(t, "").handleReindex(ctx, callRequest(ToolReindex, nil))
	requireMCPError(t, err, ErrorCodeSourceNotFound)

	missing := filepath.Join(t.TempDir(), "missing")
	_, err = setupTestServer(t, missing).handleReindex(ctx, callRequest(ToolReindex, nil))
	requireMCPError(t, err, ErrorCodeSourceNotFound)
}

func TestHandleCacheStats(t *testing.T) {
	server := setupTestServer(t, "")
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		_, err := server.handleListCategories(ctx, callRequest(ToolListCategories, nil))
		require.NoError(t, err)
	}

	result, err := server.handleCacheStats(ctx, callRequest(ToolCacheStats, nil))
	require.NoError(t, err)

	var response struct {
		Cache     cache.Stats `json:"cache"`
		HitRate   string      `json:"hit_rate"`
		Documents int         `json:"documents"`
		Indexing  bool        `json:"indexing"`
	}
	require.NoError(t, json.Unmarshal([]byte(resultText(t, result)), &response))
	assert.Equal(t, int64(1), response.Cache.Hits)
	assert.Equal(t, int64(1), response.Cache.Misses)
	assert.Equal(t, "0.50", response.HitRate)
	assert.Equal(t, 1, response.Documents)
	assert.False(t, response.Indexing)
}

func TestGetDefaults(t *testing.T) {
	args := map[string]interface{}{"b": true, "f": float64(3), "i": 4, "s": "x"}
	assert.True(t, getBoolDefault(args, "b", false))
	assert.True(t, getBoolDefault(args, "missing", true))
	assert.Equal(t, 3, getIntDefault(args, "f", 0))
	assert.Equal(t, 4, getIntDefault(args, "i", 0))
	assert.Equal(t, 7, getIntDefault(args, "s", 7))
	assert.Equal(t, "x", getStringDefault(args, "s", ""))
	assert.Equal(t, "d", getStringDefault(args, "b", "d"))
}
