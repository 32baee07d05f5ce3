package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/Alexmacapple/DSFR-MCP-sub000/internal/indexer"
	"github.com/Alexmacapple/DSFR-MCP-sub000/internal/mcp"
	"github.com/Alexmacapple/DSFR-MCP-sub000/internal/repository"
	"github.com/Alexmacapple/DSFR-MCP-sub000/internal/retrieval"
	"github.com/Alexmacapple/DSFR-MCP-sub000/internal/storage"
)

var watchFlag bool

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve DSFR lookups over MCP on stdio",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.Close()

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		logger.Info("dsfr-mcp starting",
			"version", version,
			"source", cfg.SourceRoot,
			"build_mode", storage.BuildMode,
			"driver", storage.DriverName,
		)

		ingested := a.start(ctx)

		server, err := mcp.NewServer(a.retrieval, a.indexer, mcp.Options{
			SourceRoot: cfg.SourceRoot,
			Index:      cfg.IndexerConfig(),
			Search:     cfg.SearchOptions(),
			Logger:     logger,
		})
		if err != nil {
			return err
		}

		if watchFlag || cfg.Watch {
			go func() {
				err := a.indexer.Watch(ctx, cfg.SourceRoot, cfg.IndexerConfig(), func(repo *repository.Repository, stats *indexer.Statistics) {
					a.retrieval.Reload(retrieval.NewSnapshot(repo, cfg.SearchOptions()))
					logStats(stats)
				})
				if err != nil {
					logger.Error("watcher stopped", "error", err)
				}
			}()
		}

		logger.Info("MCP server ready, listening on stdio")
		err = server.Serve(ctx)
		stop()
		<-ingested
		if ctx.Err() != nil {
			logger.Info("server stopped")
			return nil
		}
		return err
	},
}

func logStats(stats *indexer.Statistics) {
	logger.Info("ingestion complete",
		"discovered", stats.FilesDiscovered,
		"indexed", stats.FilesIndexed,
		"unchanged", stats.FilesUnchanged,
		"failed", stats.FilesFailed,
		"documents", stats.DocumentsBuilt,
		"duration", stats.Duration,
	)
	for _, msg := range stats.ErrorMessages {
		logger.Warn("file skipped", "error", msg)
	}
}

func init() {
	serveCmd.Flags().BoolVarP(&watchFlag, "watch", "w", false, "Re-ingest when the source tree changes")
	rootCmd.AddCommand(serveCmd)
}
