package retrieval

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/Alexmacapple/DSFR-MCP-sub000/internal/cache"
	"github.com/Alexmacapple/DSFR-MCP-sub000/internal/repository"
	"github.com/Alexmacapple/DSFR-MCP-sub000/internal/searchindex"
)

// Operation names, also used as cache key prefixes
const (
	OpSearchComponents    = "search_components"
	OpGetComponentDetails = "get_component_details"
	OpListCategories      = "list_categories"
	OpSearchPatterns      = "search_patterns"
	OpGetIcons            = "get_icons"
	OpGetColors           = "get_colors"
)

// TTLs holds the cache lifetime of every operation
type TTLs struct {
	Search     time.Duration
	Details    time.Duration
	Categories time.Duration
	Patterns   time.Duration
	Icons      time.Duration
	Colors     time.Duration
}

// DefaultTTLs keeps free-text searches briefly and near-static data for long
func DefaultTTLs() TTLs {
	return TTLs{
		Search:     5 * time.Minute,
		Details:    30 * time.Minute,
		Categories: time.Hour,
		Patterns:   10 * time.Minute,
		Icons:      time.Hour,
		Colors:     24 * time.Hour,
	}
}

// Result is the caller-facing outcome of an operation
type Result struct {
	Text     string         `json:"text"`
	Metadata map[string]any `json:"metadata,omitempty"`
	IsError  bool           `json:"is_error,omitempty"`
	CacheHit bool           `json:"-"`
}

// Snapshot is the immutable data set queries run against
type Snapshot struct {
	Repo  *repository.Repository
	Index *searchindex.Index
}

// NewSnapshot indexes the documents held by repo
func NewSnapshot(repo *repository.Repository, opts searchindex.Options) *Snapshot {
	if repo == nil {
		repo = repository.New()
	}
	return &Snapshot{Repo: repo, Index: searchindex.Build(repo.Documents(), opts)}
}

// Service answers lookups cache-first
type Service struct {
	cache  *cache.Cache
	logger *slog.Logger
	ttls   TTLs

	mu   sync.RWMutex
	snap *Snapshot
	gen  uint64 // bumped by every Reload
}

// Option configures a Service
type Option func(*Service)

// WithLogger sets the structured logger
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithTTLs overrides the per-operation cache lifetimes
func WithTTLs(ttls TTLs) Option {
	return func(s *Service) { s.ttls = ttls }
}

// New creates a Service serving snap through c
func New(c *cache.Cache, snap *Snapshot, opts ...Option) *Service {
	if snap == nil {
		snap = NewSnapshot(nil, searchindex.DefaultOptions())
	}
	s := &Service{
		cache:  c,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		ttls:   DefaultTTLs(),
		snap:   snap,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Reload swaps the served snapshot and drops every cached result. Results of
// queries still running against the previous snapshot are not cached.
func (s *Service) Reload(snap *Snapshot) {
	if snap == nil {
		return
	}
	s.mu.Lock()
	s.snap = snap
	s.gen++
	n, _ := s.cache.Clear("")
	s.mu.Unlock()

	s.logger.Info("snapshot reloaded",
		"documents", snap.Index.Len(),
		"components", snap.Repo.Counts().Components,
		"cache_cleared", n,
	)
}

// Snapshot returns the data set currently served
func (s *Service) Snapshot() *Snapshot {
	snap, _ := s.current()
	return snap
}

func (s *Service) current() (*Snapshot, uint64) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snap, s.gen
}

// store caches data unless a Reload happened since gen was read. The read
// lock is held across the check and the write so Reload cannot clear in between.
func (s *Service) store(op, key string, data []byte, ttl time.Duration, gen uint64) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.gen != gen {
		s.logger.Debug("result not cached, snapshot reloaded", "op", op)
		return
	}
	if err := s.cache.Set(key, data, ttl); err != nil {
		s.logger.Warn("result not cached", "op", op, "key", key, "error", err)
	}
}

// CacheStats reports the cache counters
func (s *Service) CacheStats() cache.Stats {
	return s.cache.Stats()
}

// queryFunc computes a fresh result for an operation
type queryFunc func(snap *Snapshot) (*Result, error)

// run serves op from the cache or computes, stores and returns it. Failures
// and panics in query are turned into an error payload and never cached.
func (s *Service) run(ctx context.Context, op string, args map[string]string, ttl time.Duration, query queryFunc) (res *Result) {
	key := cacheKey(op, args)
	if cached, ok := cache.GetJSON[Result](s.cache, key); ok {
		cached.CacheHit = true
		return &cached
	}

	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("query panicked", "op", op, "args", args, "panic", r)
			res = errorResult(op, fmt.Errorf("internal error: %v", r))
		}
	}()

	if err := ctx.Err(); err != nil {
		return errorResult(op, err)
	}

	snap, gen := s.current()
	result, err := query(snap)
	if err != nil {
		s.logger.Error("query failed", "op", op, "args", args, "error", err)
		return errorResult(op, err)
	}
	if result.IsError {
		return result
	}

	// Results go through their JSON form so a miss and a later hit are identical
	data, err := json.Marshal(result)
	if err != nil {
		s.logger.Error("failed to encode result", "op", op, "error", err)
		return errorResult(op, err)
	}
	s.store(op, key, data, ttl, gen)

	var out Result
	if err := json.Unmarshal(data, &out); err != nil {
		return errorResult(op, err)
	}
	return &out
}

// cacheKey is op followed by a digest of the normalised, sorted arguments
func cacheKey(op string, args map[string]string) string {
	names := make([]string, 0, len(args))
	for name := range args {
		names = append(names, name)
	}
	sort.Strings(names)

	var data strings.Builder
	for _, name := range names {
		data.WriteString(name)
		data.WriteString("=")
		data.WriteString(normalizeArg(args[name]))
		data.WriteString("|")
	}
	sum := sha256.Sum256([]byte(data.String()))
	return op + ":" + hex.EncodeToString(sum[:])
}

func normalizeArg(v string) string {
	return strings.ToLower(strings.TrimSpace(v))
}

func errorResult(op string, err error) *Result {
	return &Result{
		Text:     fmt.Sprintf("Error in %s: %v", op, err),
		Metadata: map[string]any{"error": err.Error()},
		IsError:  true,
	}
}

func boolArg(b bool) string {
	if b {
		return "true"
	}
	return "false"
}
