package mcp

import (
	"github.com/mark3labs/mcp-go/mcp"

	"github.com/Alexmacapple/DSFR-MCP-sub000/internal/retrieval"
	"github.com/Alexmacapple/DSFR-MCP-sub000/internal/searchindex"
)

// Tool names
const (
	ToolSearchComponents    = "search_components"
	ToolGetComponentDetails = "get_component_details"
	ToolListCategories      = "list_categories"
	ToolSearchPatterns      = "search_patterns"
	ToolGetIcons            = "get_icons"
	ToolGetColors           = "get_colors"
	ToolReindex             = "reindex"
	ToolCacheStats          = "cache_stats"
)

var (
	documentCategories = []string{"component", "core", "analytics", "pattern", "template"}
	patternTypes       = []string{"form", "navigation", "feedback", "content", "layout", "utility"}
	colorFormats       = []string{retrieval.FormatHex, retrieval.FormatRGB, retrieval.FormatCSS, retrieval.FormatSCSS}
)

func noArguments() mcp.ToolInputSchema {
	return mcp.ToolInputSchema{
		Type:       "object",
		Properties: map[string]interface{}{},
	}
}

// searchComponentsTool returns the tool definition for search_components
func searchComponentsTool() mcp.Tool {
	return mcp.Tool{
		Name:        ToolSearchComponents,
		Description: "Fuzzy search over the DSFR documentation: components, core, analytics, patterns and templates",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"query": map[string]interface{}{
					"type":        "string",
					"description": "Search terms, accents and case are ignored. Empty lists the category.",
				},
				"category": map[string]interface{}{
					"type":        "string",
					"description": "Restrict results to one documentation category",
					"enum":        documentCategories,
				},
				"limit": map[string]interface{}{
					"type":        "integer",
					"description": "Maximum number of results to return (1-100)",
					"default":     searchindex.DefaultLimit,
					"minimum":     1,
					"maximum":     searchindex.MaxLimit,
				},
			},
		},
	}
}

// getComponentDetailsTool returns the tool definition for get_component_details
func getComponentDetailsTool() mcp.Tool {
	return mcp.Tool{
		Name:        ToolGetComponentDetails,
		Description: "Describe one component: documentation, source files, style and script variants, examples",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"name": map[string]interface{}{
					"type":        "string",
					"description": "Component name (e.g. 'button') or documentation title (e.g. 'Bouton')",
				},
				"include_examples": map[string]interface{}{
					"type":        "boolean",
					"description": "Include code examples",
					"default":     true,
				},
				"include_accessibility": map[string]interface{}{
					"type":        "boolean",
					"description": "Include accessibility guidance and ARIA attributes",
					"default":     false,
				},
			},
			Required: []string{"name"},
		},
	}
}

// listCategoriesTool returns the tool definition for list_categories
func listCategoriesTool() mcp.Tool {
	return mcp.Tool{
		Name:        ToolListCategories,
		Description: "Count documentation pages per category and ingested entities per kind",
		InputSchema: noArguments(),
	}
}

// searchPatternsTool returns the tool definition for search_patterns
func searchPatternsTool() mcp.Tool {
	return mcp.Tool{
		Name:        ToolSearchPatterns,
		Description: "Search design patterns (forms, navigation, error pages...)",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"query": map[string]interface{}{
					"type":        "string",
					"description": "Search terms. Empty lists every pattern.",
				},
				"pattern_type": map[string]interface{}{
					"type":        "string",
					"description": "Restrict to one component type",
					"enum":        patternTypes,
				},
			},
		},
	}
}

// getIconsTool returns the tool definition for get_icons
func getIconsTool() mcp.Tool {
	return mcp.Tool{
		Name:        ToolGetIcons,
		Description: "List icons with their fr-icon-* class names",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"category": map[string]interface{}{
					"type":        "string",
					"description": "Icon category (directory name, e.g. 'system')",
				},
				"search": map[string]interface{}{
					"type":        "string",
					"description": "Fragment of the icon name",
				},
			},
		},
	}
}

// getColorsTool returns the tool definition for get_colors
func getColorsTool() mcp.Tool {
	return mcp.Tool{
		Name:        ToolGetColors,
		Description: "List colour tokens declared in the DSFR stylesheets",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"format": map[string]interface{}{
					"type":        "string",
					"description": "Output format",
					"enum":        colorFormats,
					"default":     retrieval.FormatHex,
				},
				"include_utilities": map[string]interface{}{
					"type":        "boolean",
					"description": "Also list tokens declared in utility stylesheets",
					"default":     false,
				},
			},
		},
	}
}

// reindexTool returns the tool definition for reindex
func reindexTool() mcp.Tool {
	return mcp.Tool{
		Name:        ToolReindex,
		Description: "Re-ingest the source tree, rebuild the search index and clear the cache",
		InputSchema: noArguments(),
	}
}

// cacheStatsTool returns the tool definition for cache_stats
func cacheStatsTool() mcp.Tool {
	return mcp.Tool{
		Name:        ToolCacheStats,
		Description: "Report cache hits, misses, memory usage and evictions",
		InputSchema: noArguments(),
	}
}
