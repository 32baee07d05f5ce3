package main

import (
	"context"
	"fmt"

	"github.com/Alexmacapple/DSFR-MCP-sub000/internal/cache"
	"github.com/Alexmacapple/DSFR-MCP-sub000/internal/indexer"
	"github.com/Alexmacapple/DSFR-MCP-sub000/internal/repository"
	"github.com/Alexmacapple/DSFR-MCP-sub000/internal/retrieval"
	"github.com/Alexmacapple/DSFR-MCP-sub000/internal/storage"
)

// app holds the components shared by every command
type app struct {
	cache     *cache.Cache
	store     storage.Storage
	indexer   *indexer.Indexer
	retrieval *retrieval.Service

	// ingest runs the first ingestion started by start
	ingest func(context.Context) (*indexer.Statistics, error)
}

func newApp() (*app, error) {
	c, err := cache.New(cfg.CacheConfig(), logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create cache: %w", err)
	}

	a := &app{cache: c}
	opts := []indexer.Option{indexer.WithLogger(logger)}
	if cfg.DBPath != "" {
		store, err := storage.NewSQLiteStorage(cfg.DBPath)
		if err != nil {
			_ = c.Close()
			return nil, fmt.Errorf("failed to open snapshot database: %w", err)
		}
		a.store = store
		opts = append(opts, indexer.WithStorage(store))
	}

	a.indexer = indexer.New(opts...)
	a.retrieval = retrieval.New(c, nil,
		retrieval.WithLogger(logger),
		retrieval.WithTTLs(cfg.TTLs()),
	)
	a.ingest = a.index
	return a, nil
}

// start serves the persisted snapshot right away and runs the first
// ingestion in the background. The returned channel is closed once it ends.
func (a *app) start(ctx context.Context) <-chan struct{} {
	a.warmUp(ctx)

	done := make(chan struct{})
	go func() {
		defer close(done)
		stats, err := a.ingest(ctx)
		if err != nil {
			// The warm snapshot stays in place, reindex can retry
			logger.Error("initial ingestion failed", "error", err)
			return
		}
		logStats(stats)
	}()
	return done
}

// warmUp serves the documents persisted by a previous run until the first
// ingestion completes.
func (a *app) warmUp(ctx context.Context) {
	docs, err := a.indexer.LoadSnapshot(ctx, cfg.SourceRoot)
	if err != nil {
		logger.Warn("snapshot not loaded", "error", err)
		return
	}
	if len(docs) == 0 {
		return
	}
	repo := repository.New()
	for _, doc := range docs {
		repo.PutDocument(doc.Filename, doc)
	}
	a.retrieval.Reload(retrieval.NewSnapshot(repo, cfg.SearchOptions()))
	logger.Info("snapshot loaded", "documents", len(docs), "db", cfg.DBPath)
}

// index ingests the source root and swaps the served snapshot
func (a *app) index(ctx context.Context) (*indexer.Statistics, error) {
	repo, stats, err := a.indexer.IndexTree(ctx, cfg.SourceRoot, cfg.IndexerConfig())
	if err != nil {
		return nil, err
	}
	a.retrieval.Reload(retrieval.NewSnapshot(repo, cfg.SearchOptions()))
	return stats, nil
}

func (a *app) Close() error {
	var firstErr error
	if a.store != nil {
		firstErr = a.store.Close()
	}
	if err := a.cache.Close(); err != nil && firstErr == nil {
		firstErr = err
	}
	return firstErr
}
