package mcp

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/mark3labs/mcp-go/server"

	"github.com/Alexmacapple/DSFR-MCP-sub000/internal/indexer"
	"github.com/Alexmacapple/DSFR-MCP-sub000/internal/retrieval"
	"github.com/Alexmacapple/DSFR-MCP-sub000/internal/searchindex"
)

const (
	// ServerName is the MCP server name
	ServerName = "dsfr-mcp"
	// ServerVersion is the current server version
	ServerVersion = "1.0.0"
)

// Options configures the ingestion the reindex tool runs
type Options struct {
	SourceRoot string
	Index      *indexer.Config
	Search     searchindex.Options
	Logger     *slog.Logger
}

// Server wraps the MCP server with application dependencies
type Server struct {
	mcp       *server.MCPServer
	retrieval *retrieval.Service
	indexer   *indexer.Indexer
	opts      Options
	logger    *slog.Logger
}

// NewServer creates a new MCP server instance
func NewServer(svc *retrieval.Service, idx *indexer.Indexer, opts Options) (*Server, error) {
	if svc == nil {
		return nil, fmt.Errorf("retrieval service is required")
	}
	if idx == nil {
		idx = indexer.New()
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	mcpServer := server.NewMCPServer(
		ServerName,
		ServerVersion,
		server.WithToolCapabilities(false),
		server.WithRecovery(),
	)

	s := &Server{
		mcp:       mcpServer,
		retrieval: svc,
		indexer:   idx,
		opts:      opts,
		logger:    logger,
	}

	// Register tools
	s.registerTools()

	return s, nil
}

// Serve starts the MCP server on stdio and blocks until shutdown
func (s *Server) Serve(ctx context.Context) error {
	stdio := server.NewStdioServer(s.mcp)
	return stdio.Listen(ctx, os.Stdin, os.Stdout)
}

// Reindex ingests the source root and swaps the served snapshot
func (s *Server) Reindex(ctx context.Context) (*indexer.Statistics, error) {
	if s.opts.SourceRoot == "" {
		return nil, ErrSourceRootRequired
	}
	if _, err := os.Stat(s.opts.SourceRoot); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSourceNotFound, err)
	}

	repo, stats, err := s.indexer.IndexTree(ctx, s.opts.SourceRoot, s.opts.Index)
	if err != nil {
		return nil, err
	}
	s.retrieval.Reload(retrieval.NewSnapshot(repo, s.opts.Search))
	return stats, nil
}

// registerTools registers all MCP tools
func (s *Server) registerTools() {
	s.mcp.AddTool(searchComponentsTool(), s.handleSearchComponents)
	s.mcp.AddTool(getComponentDetailsTool(), s.handleGetComponentDetails)
	s.mcp.AddTool(listCategoriesTool(), s.handleListCategories)
	s.mcp.AddTool(searchPatternsTool(), s.handleSearchPatterns)
	s.mcp.AddTool(getIconsTool(), s.handleGetIcons)
	s.mcp.AddTool(getColorsTool(), s.handleGetColors)
	s.mcp.AddTool(reindexTool(), s.handleReindex)
	s.mcp.AddTool(cacheStatsTool(), s.handleCacheStats)
}
