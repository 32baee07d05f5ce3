package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/Alexmacapple/DSFR-MCP-sub000/internal/indexer"
	"github.com/Alexmacapple/DSFR-MCP-sub000/internal/retrieval"
	"github.com/Alexmacapple/DSFR-MCP-sub000/internal/searchindex"
)

// MCP error codes
const (
	ErrorCodeInvalidParams      = -32602 // Invalid method parameters
	ErrorCodeInternalError      = -32603 // Internal JSON-RPC error
	ErrorCodeSourceNotFound     = -32001 // Source root is not configured or missing
	ErrorCodeIndexingInProgress = -32002 // Another ingestion is already running
)

var (
	ErrSourceRootRequired = errors.New("source root is not configured")
	ErrSourceNotFound     = errors.New("source root does not exist")
)

// toolArguments extracts the argument map; a call without arguments yields an empty map
func toolArguments(request mcp.CallToolRequest) (map[string]interface{}, error) {
	if request.Params.Arguments == nil {
		return map[string]interface{}{}, nil
	}
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}
	return args, nil
}

// toolResult converts a retrieval result into an MCP result
func toolResult(res *retrieval.Result) *mcp.CallToolResult {
	if res.IsError {
		return mcp.NewToolResultError(res.Text)
	}
	return mcp.NewToolResultText(res.Text)
}

// handleSearchComponents handles the search_components tool invocation
func (s *Server) handleSearchComponents(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, err := toolArguments(request)
	if err != nil {
		return nil, err
	}

	limit := getIntDefault(args, "limit", searchindex.DefaultLimit)
	if limit < 1 || limit > searchindex.MaxLimit {
		return nil, newMCPError(ErrorCodeInvalidParams, "limit must be between 1 and 100", map[string]interface{}{
			"param": "limit",
			"value": limit,
		})
	}

	query := getStringDefault(args, "query", "")
	category := getStringDefault(args, "category", "")
	return toolResult(s.retrieval.SearchComponents(ctx, query, category, limit)), nil
}

// handleGetComponentDetails handles the get_component_details tool invocation
func (s *Server) handleGetComponentDetails(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, err := toolArguments(request)
	if err != nil {
		return nil, err
	}

	name, ok := args["name"].(string)
	if !ok || name == "" {
		return nil, newMCPError(ErrorCodeInvalidParams, "name parameter is required", map[string]interface{}{
			"param":  "name",
			"reason": "missing or empty",
		})
	}

	includeExamples := getBoolDefault(args, "include_examples", true)
	includeAccessibility := getBoolDefault(args, "include_accessibility", false)
	return toolResult(s.retrieval.GetComponentDetails(ctx, name, includeExamples, includeAccessibility)), nil
}

// handleListCategories handles the list_categories tool invocation
func (s *Server) handleListCategories(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return toolResult(s.retrieval.ListCategories(ctx)), nil
}

// handleSearchPatterns handles the search_patterns tool invocation
func (s *Server) handleSearchPatterns(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, err := toolArguments(request)
	if err != nil {
		return nil, err
	}
	query := getStringDefault(args, "query", "")
	patternType := getStringDefault(args, "pattern_type", "")
	return toolResult(s.retrieval.SearchPatterns(ctx, query, patternType)), nil
}

// handleGetIcons handles the get_icons tool invocation
func (s *Server) handleGetIcons(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, err := toolArguments(request)
	if err != nil {
		return nil, err
	}
	category := getStringDefault(args, "category", "")
	search := getStringDefault(args, "search", "")
	return toolResult(s.retrieval.GetIcons(ctx, category, search)), nil
}

// handleGetColors handles the get_colors tool invocation
func (s *Server) handleGetColors(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, err := toolArguments(request)
	if err != nil {
		return nil, err
	}
	format := getStringDefault(args, "format", retrieval.FormatHex)
	includeUtilities := getBoolDefault(args, "include_utilities", false)
	return toolResult(s.retrieval.GetColors(ctx, format, includeUtilities)), nil
}

// handleReindex handles the reindex tool invocation
func (s *Server) handleReindex(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	stats, err := s.Reindex(ctx)
	switch {
	case errors.Is(err, indexer.ErrIndexingInProgress):
		return nil, newMCPError(ErrorCodeIndexingInProgress, "an ingestion is already running", nil)
	case errors.Is(err, ErrSourceRootRequired), errors.Is(err, ErrSourceNotFound):
		return nil, newMCPError(ErrorCodeSourceNotFound, err.Error(), map[string]interface{}{
			"source_root": s.opts.SourceRoot,
		})
	case err != nil:
		s.logger.Error("reindex failed", "error", err)
		return nil, newMCPError(ErrorCodeInternalError, "reindex failed", map[string]interface{}{
			"error": err.Error(),
		})
	}

	// Format response
	response := map[string]interface{}{
		"indexed":          true,
		"files_discovered": stats.FilesDiscovered,
		"files_indexed":    stats.FilesIndexed,
		"files_unchanged":  stats.FilesUnchanged,
		"files_discarded":  stats.FilesDiscarded,
		"files_failed":     stats.FilesFailed,
		"documents":        stats.DocumentsBuilt,
		"duration_ms":      stats.Duration.Milliseconds(),
	}
	if stats.PersistError != "" {
		response["persist_error"] = stats.PersistError
	}

	if len(stats.ErrorMessages) > 0 {
		// Include first few errors
		errorCount := len(stats.ErrorMessages)
		if errorCount > 5 {
			response["errors"] = stats.ErrorMessages[:5]
			response["error_count"] = errorCount
		} else {
			response["errors"] = stats.ErrorMessages
		}
	}

	return mcp.NewToolResultText(formatJSON(response)), nil
}

// handleCacheStats handles the cache_stats tool invocation
func (s *Server) handleCacheStats(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	stats := s.retrieval.CacheStats()
	snap := s.retrieval.Snapshot()

	response := map[string]interface{}{
		"cache":     stats,
		"hit_rate":  fmt.Sprintf("%.2f", stats.HitRate()),
		"documents": snap.Index.Len(),
		"indexing":  s.indexer.Busy(),
	}
	return mcp.NewToolResultText(formatJSON(response)), nil
}

// Helper functions

// newMCPError creates a properly formatted MCP error
func newMCPError(code int, message string, data interface{}) error {
	// MCP errors are returned as regular errors, the framework handles encoding
	return &MCPError{
		Code:    code,
		Message: message,
		Data:    data,
	}
}

// MCPError represents an MCP protocol error
type MCPError struct {
	Code    int
	Message string
	Data    interface{}
}

func (e *MCPError) Error() string {
	return fmt.Sprintf("MCP error %d: %s", e.Code, e.Message)
}

// formatJSON formats a map as indented JSON
func formatJSON(data map[string]interface{}) string {
	bytes, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Sprintf("%v", data)
	}
	return string(bytes)
}

// getBoolDefault extracts a boolean parameter with a default value
func getBoolDefault(args map[string]interface{}, key string, defaultValue bool) bool {
	if val, ok := args[key].(bool); ok {
		return val
	}
	return defaultValue
}

// getIntDefault extracts an integer parameter with a default value
func getIntDefault(args map[string]interface{}, key string, defaultValue int) int {
	if val, ok := args[key].(float64); ok {
		return int(val)
	}
	if val, ok := args[key].(int); ok {
		return val
	}
	return defaultValue
}

// getStringDefault extracts a string parameter with a default value
func getStringDefault(args map[string]interface{}, key string, defaultValue string) string {
	if val, ok := args[key].(string); ok {
		return val
	}
	return defaultValue
}
