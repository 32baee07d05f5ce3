package storage

import (
	"context"
	"time"

	"github.com/Alexmacapple/DSFR-MCP-sub000/pkg/types"
)

// Storage defines the interface for persisting an ingested source tree
type Storage interface {
	// Source operations
	CreateSource(ctx context.Context, source *Source) error
	GetSource(ctx context.Context, rootPath string) (*Source, error)
	UpdateSource(ctx context.Context, source *Source) error

	// File operations
	UpsertFile(ctx context.Context, file *File) error
	GetFile(ctx context.Context, sourceID int64, filePath string) (*File, error)
	ListFiles(ctx context.Context, sourceID int64) ([]*File, error)
	DeleteFile(ctx context.Context, fileID int64) error

	// Document operations
	UpsertDocument(ctx context.Context, sourceID int64, doc *types.Document) error
	GetDocument(ctx context.Context, sourceID int64, id string) (*types.Document, error)
	ListDocuments(ctx context.Context, sourceID int64) ([]*types.Document, error)
	DeleteDocuments(ctx context.Context, sourceID int64) (int, error)

	// Status operations
	GetStatus(ctx context.Context, sourceID int64) (*SourceStatus, error)

	// Database operations
	Close() error
	BeginTx(ctx context.Context) (Tx, error)
}

// Tx represents a database transaction
type Tx interface {
	Commit() error
	Rollback() error
	Storage // Embed Storage interface for transaction operations
}

// Source represents one ingested source tree
type Source struct {
	ID             int64
	RootPath       string
	TotalFiles     int
	TotalDocuments int
	FailedFiles    int
	IndexVersion   string
	LastIndexedAt  time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// File records the fingerprint of one ingested file
type File struct {
	ID            int64
	SourceID      int64
	FilePath      string // Relative to the source root
	LogicalPath   string // Path used for categorisation (sidecar originalPath or FilePath)
	Category      types.Category
	ContentHash   uint64 // xxhash64 of the content
	ModTime       time.Time
	SizeBytes     int64
	ParseError    *string // Nullable
	LastIndexedAt time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// SourceStatus contains statistics about a persisted source tree
type SourceStatus struct {
	Source         *Source
	FilesCount     int
	DocumentsCount int
	Categories     map[types.Category]int
	IndexSizeMB    float64
	LastIndexedAt  time.Time
}
