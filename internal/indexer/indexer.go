package indexer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/cespare/xxhash/v2"
	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/errgroup"

	"github.com/Alexmacapple/DSFR-MCP-sub000/internal/categorizer"
	"github.com/Alexmacapple/DSFR-MCP-sub000/internal/docmodel"
	"github.com/Alexmacapple/DSFR-MCP-sub000/internal/extractor"
	"github.com/Alexmacapple/DSFR-MCP-sub000/internal/repository"
	"github.com/Alexmacapple/DSFR-MCP-sub000/internal/storage"
	"github.com/Alexmacapple/DSFR-MCP-sub000/pkg/types"
)

const (
	DefaultBatchSize        = 50
	DefaultFingerprintCache = 4096
)

// ErrIndexingInProgress is returned when a second ingestion is requested
// while one is still running
var ErrIndexingInProgress = errors.New("indexing already in progress")

// DefaultExclude lists paths never ingested
var DefaultExclude = []string{"**/node_modules/**", "**/.git/**"}

// Indexer coordinates the ingestion pipeline: discover -> categorize -> extract -> merge
type Indexer struct {
	builder *docmodel.Builder
	storage storage.Storage // nil disables the snapshot
	logger  *slog.Logger

	// fingerprints maps a relative path to the last processed content
	fingerprints *lru.Cache[string, *fingerprint]
	lock         IndexLock
}

// Config contains configuration for one ingestion run
type Config struct {
	Workers   int           // Concurrent files per batch (default: runtime.NumCPU())
	BatchSize int           // Files per batch (default: 50)
	Include   []string      // doublestar patterns over slash paths relative to the root; empty includes all
	Exclude   []string      // doublestar patterns excluded after Include (default: DefaultExclude)
	Debounce  time.Duration // Watch quiet period (default: DefaultDebounce)
}

// Statistics contains statistics about an ingestion run
type Statistics struct {
	FilesDiscovered int
	FilesIndexed    int // contributed to at least one entity or document
	FilesDiscarded  int // categorised but carrying nothing to keep
	FilesUnchanged  int // content identical to the previous run, extraction reused
	FilesFailed     int
	DocumentsBuilt  int
	Categories      map[types.Category]int
	Duration        time.Duration
	ErrorMessages   []string
	PersistError    string
}

// fingerprint caches what was learned from one file
type fingerprint struct {
	hash    uint64
	logical string
	ext     *extractor.Extraction
	doc     *types.Document
}

// fileRecord is what the snapshot keeps per file
type fileRecord struct {
	rel      string
	logical  string
	category types.Category
	hash     uint64
	modTime  time.Time
	size     int64
	failure  string
}

// Option configures an Indexer
type Option func(*Indexer)

// WithStorage persists every run to store
func WithStorage(store storage.Storage) Option {
	return func(idx *Indexer) { idx.storage = store }
}

// WithLogger sets the structured logger
func WithLogger(logger *slog.Logger) Option {
	return func(idx *Indexer) {
		if logger != nil {
			idx.logger = logger
		}
	}
}

// WithBuilder replaces the documentation model builder
func WithBuilder(b *docmodel.Builder) Option {
	return func(idx *Indexer) {
		if b != nil {
			idx.builder = b
		}
	}
}

// New creates a new Indexer instance
func New(opts ...Option) *Indexer {
	cache, err := lru.New[string, *fingerprint](DefaultFingerprintCache)
	if err != nil {
		// This should never happen with valid size parameter
		panic(fmt.Sprintf("failed to create fingerprint cache: %v", err))
	}

	idx := &Indexer{
		builder:      docmodel.New(),
		logger:       slog.New(slog.NewTextHandler(io.Discard, nil)),
		fingerprints: cache,
	}
	for _, opt := range opts {
		opt(idx)
	}
	return idx
}

// Busy reports whether an ingestion run is in progress
func (idx *Indexer) Busy() bool { return idx.lock.Held() }

// IndexTree ingests every file under root into a fresh repository. Per-file
// failures are counted and never abort the run; cancellation stops it
// between files.
func (idx *Indexer) IndexTree(ctx context.Context, root string, config *Config) (*repository.Repository, *Statistics, error) {
	if !idx.lock.TryAcquire() {
		return nil, nil, ErrIndexingInProgress
	}
	defer idx.lock.Release()

	cfg := withDefaults(config)
	startTime := time.Now()
	stats := &Statistics{
		Categories:    make(map[types.Category]int),
		ErrorMessages: make([]string, 0),
	}

	files, unreadable, err := discoverFiles(os.DirFS(root), cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to discover files: %w", err)
	}
	stats.FilesDiscovered = len(files)
	for _, msg := range unreadable {
		idx.logger.Warn("skipping unreadable path", "root", root, "error", msg)
		stats.FilesFailed++
		stats.ErrorMessages = append(stats.ErrorMessages, msg)
	}

	repo := repository.New()
	records, err := idx.indexFiles(ctx, root, files, repo, cfg, stats)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to index files: %w", err)
	}

	if idx.storage != nil {
		if err := idx.persist(ctx, root, repo, records, stats); err != nil {
			stats.PersistError = err.Error()
			idx.logger.Error("snapshot persist failed", "root", root, "error", err)
		}
	}

	stats.Duration = time.Since(startTime)
	idx.logger.Info("ingestion complete",
		"root", root,
		"discovered", stats.FilesDiscovered,
		"indexed", stats.FilesIndexed,
		"unchanged", stats.FilesUnchanged,
		"failed", stats.FilesFailed,
		"documents", stats.DocumentsBuilt,
		"duration", stats.Duration,
	)
	return repo, stats, nil
}

func withDefaults(config *Config) Config {
	var cfg Config
	if config != nil {
		cfg = *config
	}
	if cfg.Workers <= 0 {
		cfg.Workers = runtime.NumCPU()
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = DefaultBatchSize
	}
	if cfg.Exclude == nil {
		cfg.Exclude = DefaultExclude
	}
	return cfg
}

// discoverFiles lists ingestible files as slash paths relative to the root of
// fsys, sorted. Entries that cannot be read are skipped and reported in
// unreadable; only a failure on the root itself is returned as an error.
func discoverFiles(fsys fs.FS, cfg Config) (files, unreadable []string, err error) {
	err = fs.WalkDir(fsys, ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			if p == "." {
				return err
			}
			unreadable = append(unreadable, fmt.Sprintf("%s: %v", p, err))
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}

		if d.IsDir() {
			// Skip hidden directories
			if p != "." && strings.HasPrefix(d.Name(), ".") {
				return fs.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() || isSidecar(d.Name()) {
			return nil
		}
		if matchAny(cfg.Include, p, true) && !matchAny(cfg.Exclude, p, false) {
			files = append(files, p)
		}
		return nil
	})

	sort.Strings(files)
	return files, unreadable, err
}

// matchAny reports whether rel matches one of patterns; empty patterns yield ifEmpty
func matchAny(patterns []string, rel string, ifEmpty bool) bool {
	if len(patterns) == 0 {
		return ifEmpty
	}
	for _, pattern := range patterns {
		if ok, _ := doublestar.Match(pattern, rel); ok {
			return true
		}
	}
	return false
}

// indexFiles processes files in batches; each batch runs concurrently and is
// awaited before the next one starts
func (idx *Indexer) indexFiles(ctx context.Context, root string, files []string, repo *repository.Repository,
	cfg Config, stats *Statistics) ([]fileRecord, error) {

	var (
		indexed   int32
		discarded int32
		unchanged int32
		failed    int32
		documents int32
	)
	var mu sync.Mutex // Protects stats.ErrorMessages, stats.Categories and records
	records := make([]fileRecord, 0, len(files))

	for i := 0; i < len(files); i += cfg.BatchSize {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		end := i + cfg.BatchSize
		if end > len(files) {
			end = len(files)
		}
		batch := files[i:end]

		var g errgroup.Group
		g.SetLimit(cfg.Workers)
		for _, rel := range batch {
			g.Go(func() error {
				if ctx.Err() != nil {
					return nil
				}

				rec, res, err := idx.indexFile(root, rel, repo)

				mu.Lock()
				defer mu.Unlock()
				records = append(records, rec)
				if err != nil {
					atomic.AddInt32(&failed, 1)
					stats.ErrorMessages = append(stats.ErrorMessages, fmt.Sprintf("%s: %v", rel, err))
					idx.logger.Warn("skipping file", "path", rel, "error", err)
					return nil // Continue with other files
				}

				stats.Categories[rec.category]++
				if res.retained {
					atomic.AddInt32(&indexed, 1)
				} else {
					atomic.AddInt32(&discarded, 1)
				}
				if res.reused {
					atomic.AddInt32(&unchanged, 1)
				}
				if res.document {
					atomic.AddInt32(&documents, 1)
				}
				return nil
			})
		}
		_ = g.Wait()
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	sort.Strings(stats.ErrorMessages)
	sort.Slice(records, func(i, j int) bool { return records[i].rel < records[j].rel })

	stats.FilesIndexed = int(indexed)
	stats.FilesDiscarded = int(discarded)
	stats.FilesUnchanged = int(unchanged)
	stats.FilesFailed = int(failed)
	stats.DocumentsBuilt = int(documents)
	return records, nil
}

type outcome struct {
	retained bool
	reused   bool
	document bool
}

// indexFile reads, categorises and extracts one file into repo
func (idx *Indexer) indexFile(root, rel string, repo *repository.Repository) (fileRecord, outcome, error) {
	rec := fileRecord{rel: rel, logical: rel}
	var out outcome

	full := filepath.Join(root, filepath.FromSlash(rel))
	info, err := os.Stat(full)
	if err != nil {
		rec.failure = err.Error()
		return rec, out, err
	}
	rec.modTime = info.ModTime()
	rec.size = info.Size()

	content, err := os.ReadFile(full)
	if err != nil {
		rec.failure = err.Error()
		return rec, out, err
	}
	rec.hash = xxhash.Sum64(content)

	if logical, err := readSidecar(full); err != nil {
		idx.logger.Warn("ignoring unreadable sidecar", "path", rel, "error", err)
	} else if logical != "" {
		rec.logical = logical
	}
	rec.category = categorizer.Categorize(rec.logical)

	fp, ok := idx.fingerprints.Get(rel)
	if ok && fp.hash == rec.hash && fp.logical == rec.logical {
		out.reused = true
	} else {
		fp = &fingerprint{
			hash:    rec.hash,
			logical: rec.logical,
			ext:     extractor.Extract(rec.category, rec.logical, string(content)),
		}
		if rec.category == types.CategoryDocumentation {
			fp.doc = idx.builder.Build(path.Base(rec.logical), string(content))
		}
		idx.fingerprints.Add(rel, fp)
	}

	repo.Apply(fp.ext)
	if doc := fp.doc; doc != nil {
		if out.reused {
			doc = idx.builder.Touch(doc)
		}
		repo.PutDocument(rec.logical, doc)
		out.document = true
	}
	out.retained = fp.ext.Retained() || fp.doc != nil
	return rec, out, nil
}

// persist replaces the snapshot of root with this run's documents and files
func (idx *Indexer) persist(ctx context.Context, root string, repo *repository.Repository, records []fileRecord, stats *Statistics) error {
	tx, err := idx.storage.BeginTx(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	source, err := getOrCreateSource(ctx, tx, root)
	if err != nil {
		return err
	}

	if _, err := tx.DeleteDocuments(ctx, source.ID); err != nil {
		return err
	}
	docs := repo.Documents()
	for _, doc := range docs {
		if err := tx.UpsertDocument(ctx, source.ID, doc); err != nil {
			return err
		}
	}

	existing, err := tx.ListFiles(ctx, source.ID)
	if err != nil {
		return err
	}
	seen := make(map[string]struct{}, len(records))
	for _, rec := range records {
		seen[rec.rel] = struct{}{}
		file := &storage.File{
			SourceID:    source.ID,
			FilePath:    rec.rel,
			LogicalPath: rec.logical,
			Category:    rec.category,
			ContentHash: rec.hash,
			ModTime:     rec.modTime,
			SizeBytes:   rec.size,
		}
		if rec.category == "" {
			file.Category = types.CategoryOther
		}
		if rec.failure != "" {
			failure := rec.failure
			file.ParseError = &failure
		}
		if err := tx.UpsertFile(ctx, file); err != nil {
			return err
		}
	}
	for _, f := range existing {
		if _, ok := seen[f.FilePath]; !ok {
			if err := tx.DeleteFile(ctx, f.ID); err != nil {
				return err
			}
		}
	}

	source.TotalFiles = len(records)
	source.TotalDocuments = len(docs)
	source.FailedFiles = stats.FilesFailed
	source.LastIndexedAt = time.Now()
	if err := tx.UpdateSource(ctx, source); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// getOrCreateSource retrieves an existing source or creates a new one
func getOrCreateSource(ctx context.Context, store storage.Storage, root string) (*storage.Source, error) {
	source, err := store.GetSource(ctx, root)
	if err == nil {
		return source, nil
	}
	if !errors.Is(err, storage.ErrNotFound) {
		return nil, err
	}

	source = &storage.Source{RootPath: root, IndexVersion: storage.CurrentSchemaVersion}
	if err := store.CreateSource(ctx, source); err != nil {
		return nil, err
	}
	return source, nil
}

// LoadSnapshot returns the documents persisted by the last run over root.
// It returns no documents and no error when nothing was persisted yet.
func (idx *Indexer) LoadSnapshot(ctx context.Context, root string) ([]*types.Document, error) {
	if idx.storage == nil {
		return nil, nil
	}
	source, err := idx.storage.GetSource(ctx, root)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load snapshot source: %w", err)
	}
	docs, err := idx.storage.ListDocuments(ctx, source.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load snapshot documents: %w", err)
	}
	return docs, nil
}
