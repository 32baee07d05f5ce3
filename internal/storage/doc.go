// Package storage persists an optional SQLite snapshot of an ingested tree.
//
// Nothing in the server requires it: the repository, index and cache are
// rebuilt from the source files on every start. When a database path is
// configured the snapshot lets the search index answer queries before the
// first ingestion finishes, and keeps file fingerprints across restarts.
//
// # Database Schema
//
// Tables:
//   - sources: one row per ingested root, with run totals
//   - files: path, category and xxhash64 fingerprint of every ingested file
//   - documents: documentation pages, tags and code examples as JSON
//   - schema_version: applied migrations (semantic versions)
//
// # Basic Usage
//
//	db, err := storage.NewSQLiteStorage("/var/lib/dsfr-mcp/snapshot.db")
//	if err != nil {
//	    return err
//	}
//	defer db.Close()
//
//	source, err := db.GetSource(ctx, root)
//	docs, err := db.ListDocuments(ctx, source.ID)
//
// # Transactions
//
// Every Storage method is also available on a Tx:
//
//	tx, err := db.BeginTx(ctx)
//	if err != nil {
//	    return err
//	}
//	defer func() { _ = tx.Rollback() }()
//
//	if _, err := tx.DeleteDocuments(ctx, source.ID); err != nil {
//	    return err
//	}
//	for _, doc := range docs {
//	    if err := tx.UpsertDocument(ctx, source.ID, doc); err != nil {
//	        return err
//	    }
//	}
//	return tx.Commit()
//
// # Drivers
//
// The default build uses modernc.org/sqlite (pure Go). Building with the
// sqlite_cgo tag switches to github.com/mattn/go-sqlite3.
package storage
