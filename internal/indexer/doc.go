// Package indexer ingests a component-library source tree into a
// repository.Repository.
//
// A run walks the root, applies include and exclude globs, reads optional
// sidecar metadata (<file>.meta.yml with an originalPath key) and then
// processes files in batches. Each batch runs concurrently and is awaited
// before the next one starts, so cancellation is observed between batches
// and between files.
//
// Every file is categorised from its logical path, extracted and merged into
// the repository. Documentation files are additionally turned into
// types.Document values. A failing file is logged and counted in Statistics;
// it never aborts the run.
//
// Content fingerprints (xxhash64) are kept in an LRU so a re-run reuses the
// previous extraction of unchanged files. When a storage.Storage is
// configured, documents and file fingerprints are written to it in one
// transaction after the run, and LoadSnapshot reads them back at startup.
//
// Watch re-runs ingestion after filesystem changes settle.
//
// Example:
//
//	idx := indexer.New(indexer.WithLogger(logger))
//	repo, stats, err := idx.IndexTree(ctx, "/data/dsfr", &indexer.Config{Workers: 4})
//	if err != nil {
//	    return err
//	}
//	fmt.Printf("indexed %d of %d files\n", stats.FilesIndexed, stats.FilesDiscovered)
package indexer
