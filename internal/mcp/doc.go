// Package mcp exposes the DSFR knowledge base over the Model Context Protocol.
//
// The server registers eight tools. Six of them are thin adapters over
// retrieval.Service and return its Markdown text unchanged:
//   - search_components: fuzzy search over documentation pages
//   - get_component_details: one component with sources, examples and accessibility notes
//   - list_categories: document counts per category
//   - search_patterns: pattern pages filtered by component type
//   - get_icons: icon class names filtered by category or name
//   - get_colors: colour tokens as hex, rgb, css or scss
//
// Two are operational:
//   - reindex: re-ingest the source root, rebuild the index and clear the cache
//   - cache_stats: cache counters as JSON
//
// # Errors
//
// Invalid parameters are rejected with an *MCPError carrying a JSON-RPC code
// (-32602). A failing lookup is not a protocol error: the tool result is
// marked IsError and its text explains the failure. "Not found" is a normal
// result.
//
// # Transport
//
// Serve speaks JSON-RPC 2.0 over stdio, so nothing else may write to stdout
// while it runs; logs go to stderr.
//
//	Request:
//	{
//	  "name": "search_components",
//	  "arguments": {"query": "bouton", "limit": 5}
//	}
//
//	Response (text content):
//	# Search results for "bouton"
//
//	2 result(s)
//
//	## 1. Bouton
//	- Category: component
//	- Type: form
//	- Score: 0.00
package mcp
