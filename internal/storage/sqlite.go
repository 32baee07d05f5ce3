package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Alexmacapple/DSFR-MCP-sub000/pkg/types"
)

var (
	// ErrNotFound is returned when a requested entity doesn't exist
	ErrNotFound = fmt.Errorf("storage: %w", types.ErrNotFound)
	// ErrAlreadyExists is returned when trying to create a duplicate entity
	ErrAlreadyExists = errors.New("already exists")
)

// SQLiteStorage implements the Storage interface using SQLite
type SQLiteStorage struct {
	db *sql.DB
}

var _ Storage = (*SQLiteStorage)(nil)

// openDatabase opens a SQLite database with appropriate settings
func openDatabase(dbPath string) (*sql.DB, error) {
	db, err := sql.Open(DriverName, dbPath)
	if err != nil {
		return nil, err
	}

	// Single writer; WAL lets the startup warm-up read while ingestion writes
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	return db, nil
}

// NewSQLiteStorage opens (or creates) the snapshot database at dbPath
func NewSQLiteStorage(dbPath string) (*SQLiteStorage, error) {
	db, err := openDatabase(dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := ApplyMigrations(context.Background(), db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to apply migrations: %w", err)
	}

	return &SQLiteStorage{db: db}, nil
}

// Close closes the database connection
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}

// BeginTx starts a new transaction
func (s *SQLiteStorage) BeginTx(ctx context.Context) (Tx, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	return &sqliteTx{tx: tx, storage: s}, nil
}

// querier is an interface that both *sql.DB and *sql.Tx implement
type querier interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

// Source operations

func (s *SQLiteStorage) createSourceWithQuerier(ctx context.Context, q querier, source *Source) error {
	if source.IndexVersion == "" {
		source.IndexVersion = CurrentSchemaVersion
	}
	query := `
		INSERT INTO sources (root_path, index_version, created_at, updated_at)
		VALUES (?, ?, ?, ?)
	`
	now := time.Now()
	result, err := q.ExecContext(ctx, query, source.RootPath, source.IndexVersion, now, now)
	if err != nil {
		return fmt.Errorf("failed to create source: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	source.ID = id
	source.CreatedAt = now
	source.UpdatedAt = now
	return nil
}

func (s *SQLiteStorage) CreateSource(ctx context.Context, source *Source) error {
	return s.createSourceWithQuerier(ctx, s.db, source)
}

const sourceColumns = `id, root_path, total_files, total_documents, failed_files,
	index_version, last_indexed_at, created_at, updated_at`

func scanSource(row *sql.Row) (*Source, error) {
	var source Source
	var lastIndexedAt sql.NullTime
	err := row.Scan(
		&source.ID, &source.RootPath, &source.TotalFiles, &source.TotalDocuments,
		&source.FailedFiles, &source.IndexVersion, &lastIndexedAt,
		&source.CreatedAt, &source.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if lastIndexedAt.Valid {
		source.LastIndexedAt = lastIndexedAt.Time
	}
	return &source, nil
}

func (s *SQLiteStorage) getSourceWithQuerier(ctx context.Context, q querier, rootPath string) (*Source, error) {
	return scanSource(q.QueryRowContext(ctx, "SELECT "+sourceColumns+" FROM sources WHERE root_path = ?", rootPath))
}

func (s *SQLiteStorage) GetSource(ctx context.Context, rootPath string) (*Source, error) {
	return s.getSourceWithQuerier(ctx, s.db, rootPath)
}

func (s *SQLiteStorage) getSourceByID(ctx context.Context, q querier, sourceID int64) (*Source, error) {
	return scanSource(q.QueryRowContext(ctx, "SELECT "+sourceColumns+" FROM sources WHERE id = ?", sourceID))
}

func (s *SQLiteStorage) updateSourceWithQuerier(ctx context.Context, q querier, source *Source) error {
	query := `
		UPDATE sources
		SET total_files = ?, total_documents = ?, failed_files = ?,
		    last_indexed_at = ?, updated_at = ?
		WHERE id = ?
	`
	now := time.Now()
	result, err := q.ExecContext(ctx, query,
		source.TotalFiles, source.TotalDocuments, source.FailedFiles,
		source.LastIndexedAt, now, source.ID)
	if err != nil {
		return fmt.Errorf("failed to update source: %w", err)
	}
	if n, err := result.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	source.UpdatedAt = now
	return nil
}

func (s *SQLiteStorage) UpdateSource(ctx context.Context, source *Source) error {
	return s.updateSourceWithQuerier(ctx, s.db, source)
}

// File operations

func (s *SQLiteStorage) upsertFileWithQuerier(ctx context.Context, q querier, file *File) error {
	if file.LogicalPath == "" {
		file.LogicalPath = file.FilePath
	}
	query := `
		INSERT INTO files (source_id, file_path, logical_path, category, content_hash, mod_time, size_bytes, parse_error, last_indexed_at, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(source_id, file_path) DO UPDATE SET
			logical_path = excluded.logical_path,
			category = excluded.category,
			content_hash = excluded.content_hash,
			mod_time = excluded.mod_time,
			size_bytes = excluded.size_bytes,
			parse_error = excluded.parse_error,
			last_indexed_at = excluded.last_indexed_at,
			updated_at = excluded.updated_at
		RETURNING id
	`
	now := time.Now()
	err := q.QueryRowContext(ctx, query,
		file.SourceID, file.FilePath, file.LogicalPath, string(file.Category),
		int64(file.ContentHash), file.ModTime, file.SizeBytes, file.ParseError,
		now, now, now).Scan(&file.ID)
	if err != nil {
		return fmt.Errorf("failed to upsert file: %w", err)
	}

	file.LastIndexedAt = now
	file.UpdatedAt = now
	return nil
}

func (s *SQLiteStorage) UpsertFile(ctx context.Context, file *File) error {
	return s.upsertFileWithQuerier(ctx, s.db, file)
}

const fileColumns = `id, source_id, file_path, logical_path, category, content_hash, mod_time,
	size_bytes, parse_error, last_indexed_at, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanFile(row rowScanner) (*File, error) {
	var file File
	var category string
	var hash int64
	var parseError sql.NullString
	err := row.Scan(
		&file.ID, &file.SourceID, &file.FilePath, &file.LogicalPath, &category,
		&hash, &file.ModTime, &file.SizeBytes, &parseError,
		&file.LastIndexedAt, &file.CreatedAt, &file.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	file.Category = types.Category(category)
	file.ContentHash = uint64(hash)
	if parseError.Valid {
		file.ParseError = &parseError.String
	}
	return &file, nil
}

func (s *SQLiteStorage) getFileWithQuerier(ctx context.Context, q querier, sourceID int64, filePath string) (*File, error) {
	row := q.QueryRowContext(ctx, "SELECT "+fileColumns+" FROM files WHERE source_id = ? AND file_path = ?", sourceID, filePath)
	file, err := scanFile(row)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	return file, err
}

func (s *SQLiteStorage) GetFile(ctx context.Context, sourceID int64, filePath string) (*File, error) {
	return s.getFileWithQuerier(ctx, s.db, sourceID, filePath)
}

func (s *SQLiteStorage) listFilesWithQuerier(ctx context.Context, q querier, sourceID int64) ([]*File, error) {
	rows, err := q.QueryContext(ctx, "SELECT "+fileColumns+" FROM files WHERE source_id = ? ORDER BY file_path", sourceID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	files := make([]*File, 0)
	for rows.Next() {
		file, err := scanFile(rows)
		if err != nil {
			return nil, err
		}
		files = append(files, file)
	}
	return files, rows.Err()
}

func (s *SQLiteStorage) ListFiles(ctx context.Context, sourceID int64) ([]*File, error) {
	return s.listFilesWithQuerier(ctx, s.db, sourceID)
}

func (s *SQLiteStorage) deleteFileWithQuerier(ctx context.Context, q querier, fileID int64) error {
	_, err := q.ExecContext(ctx, "DELETE FROM files WHERE id = ?", fileID)
	return err
}

func (s *SQLiteStorage) DeleteFile(ctx context.Context, fileID int64) error {
	return s.deleteFileWithQuerier(ctx, s.db, fileID)
}

// Document operations

func (s *SQLiteStorage) upsertDocumentWithQuerier(ctx context.Context, q querier, sourceID int64, doc *types.Document) error {
	if err := doc.Validate(); err != nil {
		return fmt.Errorf("invalid document %q: %w", doc.ID, err)
	}

	tags, err := json.Marshal(doc.Tags.Sorted())
	if err != nil {
		return fmt.Errorf("failed to encode tags: %w", err)
	}
	examples := doc.CodeExamples
	if examples == nil {
		examples = []types.CodeExample{}
	}
	codeExamples, err := json.Marshal(examples)
	if err != nil {
		return fmt.Errorf("failed to encode code examples: %w", err)
	}

	query := `
		INSERT INTO documents (source_id, id, filename, source_url, title, category, component_type,
		                       content, tags, code_examples, word_count, last_indexed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(source_id, id) DO UPDATE SET
			filename = excluded.filename,
			source_url = excluded.source_url,
			title = excluded.title,
			category = excluded.category,
			component_type = excluded.component_type,
			content = excluded.content,
			tags = excluded.tags,
			code_examples = excluded.code_examples,
			word_count = excluded.word_count,
			last_indexed_at = excluded.last_indexed_at
	`
	_, err = q.ExecContext(ctx, query,
		sourceID, doc.ID, doc.Filename, doc.SourceURL, doc.Title, string(doc.Category),
		string(doc.ComponentType), doc.Content, string(tags), string(codeExamples),
		doc.WordCount, doc.LastIndexed)
	if err != nil {
		return fmt.Errorf("failed to upsert document: %w", err)
	}
	return nil
}

func (s *SQLiteStorage) UpsertDocument(ctx context.Context, sourceID int64, doc *types.Document) error {
	return s.upsertDocumentWithQuerier(ctx, s.db, sourceID, doc)
}

const documentColumns = `id, filename, source_url, title, category, component_type,
	content, tags, code_examples, word_count, last_indexed_at`

func scanDocument(row rowScanner) (*types.Document, error) {
	var (
		doc           types.Document
		sourceURL     sql.NullString
		category      string
		componentType string
		tags          string
		codeExamples  string
		lastIndexed   sql.NullTime
	)
	err := row.Scan(
		&doc.ID, &doc.Filename, &sourceURL, &doc.Title, &category, &componentType,
		&doc.Content, &tags, &codeExamples, &doc.WordCount, &lastIndexed,
	)
	if err != nil {
		return nil, err
	}
	doc.SourceURL = sourceURL.String
	doc.Category = types.DocumentCategory(category)
	doc.ComponentType = types.ComponentType(componentType)
	if lastIndexed.Valid {
		doc.LastIndexed = lastIndexed.Time
	}

	var tagList []string
	if err := json.Unmarshal([]byte(tags), &tagList); err != nil {
		return nil, fmt.Errorf("corrupt tags for document %s: %w", doc.ID, err)
	}
	doc.Tags = types.NewTagSet(tagList...)
	if err := json.Unmarshal([]byte(codeExamples), &doc.CodeExamples); err != nil {
		return nil, fmt.Errorf("corrupt code examples for document %s: %w", doc.ID, err)
	}
	return &doc, nil
}

func (s *SQLiteStorage) getDocumentWithQuerier(ctx context.Context, q querier, sourceID int64, id string) (*types.Document, error) {
	row := q.QueryRowContext(ctx, "SELECT "+documentColumns+" FROM documents WHERE source_id = ? AND id = ?", sourceID, id)
	doc, err := scanDocument(row)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	return doc, err
}

func (s *SQLiteStorage) GetDocument(ctx context.Context, sourceID int64, id string) (*types.Document, error) {
	return s.getDocumentWithQuerier(ctx, s.db, sourceID, id)
}

func (s *SQLiteStorage) listDocumentsWithQuerier(ctx context.Context, q querier, sourceID int64) ([]*types.Document, error) {
	rows, err := q.QueryContext(ctx, "SELECT "+documentColumns+" FROM documents WHERE source_id = ? ORDER BY id", sourceID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	docs := make([]*types.Document, 0)
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	return docs, rows.Err()
}

func (s *SQLiteStorage) ListDocuments(ctx context.Context, sourceID int64) ([]*types.Document, error) {
	return s.listDocumentsWithQuerier(ctx, s.db, sourceID)
}

func (s *SQLiteStorage) deleteDocumentsWithQuerier(ctx context.Context, q querier, sourceID int64) (int, error) {
	result, err := q.ExecContext(ctx, "DELETE FROM documents WHERE source_id = ?", sourceID)
	if err != nil {
		return 0, fmt.Errorf("failed to delete documents: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, err
	}
	return int(n), nil
}

func (s *SQLiteStorage) DeleteDocuments(ctx context.Context, sourceID int64) (int, error) {
	return s.deleteDocumentsWithQuerier(ctx, s.db, sourceID)
}

// Status operations

func (s *SQLiteStorage) getStatusWithQuerier(ctx context.Context, q querier, sourceID int64) (*SourceStatus, error) {
	source, err := s.getSourceByID(ctx, q, sourceID)
	if err != nil {
		return nil, err
	}

	status := &SourceStatus{
		Source:        source,
		LastIndexedAt: source.LastIndexedAt,
		Categories:    make(map[types.Category]int),
	}

	rows, err := q.QueryContext(ctx, "SELECT category, COUNT(*) FROM files WHERE source_id = ? GROUP BY category", sourceID)
	if err != nil {
		return nil, err
	}
	for rows.Next() {
		var category string
		var count int
		if err := rows.Scan(&category, &count); err != nil {
			_ = rows.Close()
			return nil, err
		}
		status.Categories[types.Category(category)] = count
		status.FilesCount += count
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}

	err = q.QueryRowContext(ctx, "SELECT COUNT(*) FROM documents WHERE source_id = ?", sourceID).Scan(&status.DocumentsCount)
	if err != nil {
		return nil, err
	}

	var pageCount, pageSize int
	if err := q.QueryRowContext(ctx, "PRAGMA page_count").Scan(&pageCount); err == nil {
		_ = q.QueryRowContext(ctx, "PRAGMA page_size").Scan(&pageSize)
		status.IndexSizeMB = float64(pageCount*pageSize) / (1024 * 1024)
	}

	return status, nil
}

func (s *SQLiteStorage) GetStatus(ctx context.Context, sourceID int64) (*SourceStatus, error) {
	return s.getStatusWithQuerier(ctx, s.db, sourceID)
}

// sqliteTx wraps a SQL transaction; every operation runs on the transaction
type sqliteTx struct {
	tx      *sql.Tx
	storage *SQLiteStorage
}

var _ Tx = (*sqliteTx)(nil)

func (t *sqliteTx) Commit() error   { return t.tx.Commit() }
func (t *sqliteTx) Rollback() error { return t.tx.Rollback() }

func (t *sqliteTx) CreateSource(ctx context.Context, source *Source) error {
	return t.storage.createSourceWithQuerier(ctx, t.tx, source)
}

func (t *sqliteTx) GetSource(ctx context.Context, rootPath string) (*Source, error) {
	return t.storage.getSourceWithQuerier(ctx, t.tx, rootPath)
}

func (t *sqliteTx) UpdateSource(ctx context.Context, source *Source) error {
	return t.storage.updateSourceWithQuerier(ctx, t.tx, source)
}

func (t *sqliteTx) UpsertFile(ctx context.Context, file *File) error {
	return t.storage.upsertFileWithQuerier(ctx, t.tx, file)
}

func (t *sqliteTx) GetFile(ctx context.Context, sourceID int64, filePath string) (*File, error) {
	return t.storage.getFileWithQuerier(ctx, t.tx, sourceID, filePath)
}

func (t *sqliteTx) ListFiles(ctx context.Context, sourceID int64) ([]*File, error) {
	return t.storage.listFilesWithQuerier(ctx, t.tx, sourceID)
}

func (t *sqliteTx) DeleteFile(ctx context.Context, fileID int64) error {
	return t.storage.deleteFileWithQuerier(ctx, t.tx, fileID)
}

func (t *sqliteTx) UpsertDocument(ctx context.Context, sourceID int64, doc *types.Document) error {
	return t.storage.upsertDocumentWithQuerier(ctx, t.tx, sourceID, doc)
}

func (t *sqliteTx) GetDocument(ctx context.Context, sourceID int64, id string) (*types.Document, error) {
	return t.storage.getDocumentWithQuerier(ctx, t.tx, sourceID, id)
}

func (t *sqliteTx) ListDocuments(ctx context.Context, sourceID int64) ([]*types.Document, error) {
	return t.storage.listDocumentsWithQuerier(ctx, t.tx, sourceID)
}

func (t *sqliteTx) DeleteDocuments(ctx context.Context, sourceID int64) (int, error) {
	return t.storage.deleteDocumentsWithQuerier(ctx, t.tx, sourceID)
}

func (t *sqliteTx) GetStatus(ctx context.Context, sourceID int64) (*SourceStatus, error) {
	return t.storage.getStatusWithQuerier(ctx, t.tx, sourceID)
}

func (t *sqliteTx) Close() error {
	return errors.New("cannot close a transaction, use Commit or Rollback")
}

func (t *sqliteTx) BeginTx(ctx context.Context) (Tx, error) {
	return nil, errors.New("nested transactions are not supported")
}
