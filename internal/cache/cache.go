// Package cache is a byte-oriented TTL cache with a memory budget.
//
// Entries expire at a fixed instant. When an insert would push the stored
// bytes over MaxMemory, expired entries are purged first and then live
// entries are evicted in order of expiry, soonest first. Values larger than
// CompressThreshold are stored zstd-compressed; callers always see the
// original bytes.
package cache

import (
	"container/heap"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/klauspost/compress/zstd"

	"github.com/Alexmacapple/DSFR-MCP-sub000/pkg/types"
)

const (
	DefaultMaxMemory         = 50 << 20
	DefaultCompressThreshold = 1024
	DefaultSweepInterval     = time.Minute
)

// Config controls the cache budget and background sweep
type Config struct {
	MaxMemory         int64         // total stored bytes (keys included)
	CompressThreshold int           // values above this size are compressed; <= 0 disables
	SweepInterval     time.Duration // <= 0 disables the background sweep
}

// DefaultConfig returns a 50 MiB cache compressing values above 1 KiB
func DefaultConfig() Config {
	return Config{
		MaxMemory:         DefaultMaxMemory,
		CompressThreshold: DefaultCompressThreshold,
		SweepInterval:     DefaultSweepInterval,
	}
}

// Stats is a point-in-time snapshot of cache counters
type Stats struct {
	Hits        int64 `json:"hits"`
	Misses      int64 `json:"misses"`
	Sets        int64 `json:"sets"`
	Entries     int64 `json:"entries"`
	MemoryUsage int64 `json:"memoryUsage"`
	MaxMemory   int64 `json:"maxMemory"`
	Evictions   int64 `json:"evictions"`
	Expired     int64 `json:"expired"`
	Rejected    int64 `json:"rejected"`
	Compressed  int64 `json:"compressed"`
}

// HitRate returns hits / (hits + misses), or 0 before any lookup
func (s Stats) HitRate() float64 {
	total := s.Hits + s.Misses
	if total == 0 {
		return 0
	}
	return float64(s.Hits) / float64(total)
}

// Cache is safe for concurrent use
type Cache struct {
	cfg    Config
	logger *slog.Logger

	mu      sync.Mutex
	entries map[string]*item
	expiry  expiryHeap
	usage   int64
	stats   Stats

	encoder *zstd.Encoder
	decoder *zstd.Decoder
	now     func() time.Time

	stop      chan struct{}
	done      chan struct{}
	closeOnce sync.Once
}

// New creates a cache and starts its sweep goroutine
func New(cfg Config, logger *slog.Logger) (*Cache, error) {
	if cfg.MaxMemory <= 0 {
		cfg.MaxMemory = DefaultMaxMemory
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	encoder, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedFastest))
	if err != nil {
		return nil, fmt.Errorf("failed to create zstd encoder: %w", err)
	}
	decoder, err := zstd.NewReader(nil)
	if err != nil {
		_ = encoder.Close()
		return nil, fmt.Errorf("failed to create zstd decoder: %w", err)
	}

	c := &Cache{
		cfg:     cfg,
		logger:  logger,
		entries: make(map[string]*item),
		encoder: encoder,
		decoder: decoder,
		now:     time.Now,
		stop:    make(chan struct{}),
		done:    make(chan struct{}),
	}
	c.stats.MaxMemory = cfg.MaxMemory

	if cfg.SweepInterval > 0 {
		go c.sweepLoop(cfg.SweepInterval)
	} else {
		close(c.done)
	}
	return c, nil
}

// Get returns a copy of the value stored under key. Missing and expired keys
// count as misses.
func (c *Cache) Get(key string) ([]byte, bool) {
	c.mu.Lock()
	it, ok := c.entries[key]
	if ok && !c.now().Before(it.expiresAt) {
		c.removeLocked(it)
		c.stats.Expired++
		ok = false
	}
	if !ok {
		c.stats.Misses++
		c.mu.Unlock()
		return nil, false
	}
	c.stats.Hits++
	stored, compressed := it.value, it.compressed
	c.mu.Unlock()

	// stored slices are never mutated after insert
	if !compressed {
		return append([]byte(nil), stored...), true
	}
	value, err := c.decoder.DecodeAll(stored, nil)
	if err != nil {
		c.logger.Error("cache entry failed to decompress", "key", key, "error", err)
		c.Delete(key)
		return nil, false
	}
	return value, true
}

// Set stores value until now+ttl. A ttl <= 0 stores nothing and drops any
// previous value under key. Entries larger than the whole budget are refused
// with ErrOversizedEntry.
func (c *Cache) Set(key string, value []byte, ttl time.Duration) error {
	if ttl <= 0 {
		c.Delete(key)
		return nil
	}

	stored := append([]byte(nil), value...)
	compressed := false
	if c.cfg.CompressThreshold > 0 && len(value) > c.cfg.CompressThreshold {
		if packed := c.encoder.EncodeAll(value, nil); len(packed) < len(value) {
			stored, compressed = packed, true
		}
	}

	size := int64(len(key) + len(stored))
	if size > c.cfg.MaxMemory {
		c.mu.Lock()
		c.stats.Rejected++
		c.mu.Unlock()
		c.logger.Warn("cache entry exceeds memory budget", "key", key, "size", size, "max_memory", c.cfg.MaxMemory)
		return fmt.Errorf("%w: %s needs %d bytes, budget is %d", types.ErrOversizedEntry, key, size, c.cfg.MaxMemory)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	if old, ok := c.entries[key]; ok {
		c.removeLocked(old)
	}
	if c.usage+size > c.cfg.MaxMemory {
		c.purgeExpiredLocked(now)
	}
	for c.usage+size > c.cfg.MaxMemory && c.expiry.Len() > 0 {
		victim := heap.Pop(&c.expiry).(*item)
		delete(c.entries, victim.key)
		c.usage -= victim.size
		c.stats.Evictions++
	}

	it := &item{
		key:        key,
		value:      stored,
		compressed: compressed,
		size:       size,
		expiresAt:  now.Add(ttl),
	}
	c.entries[key] = it
	heap.Push(&c.expiry, it)
	c.usage += size
	c.stats.Sets++
	if compressed {
		c.stats.Compressed++
	}
	return nil
}

// Delete removes key and reports whether it was present
func (c *Cache) Delete(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	it, ok := c.entries[key]
	if ok {
		c.removeLocked(it)
	}
	return ok
}

// Clear removes every key matching the doublestar pattern, or all keys when
// pattern is empty. It returns the number of removed entries.
func (c *Cache) Clear(pattern string) (int, error) {
	if pattern != "" && !doublestar.ValidatePattern(pattern) {
		return 0, fmt.Errorf("invalid cache key pattern %q: %w", pattern, doublestar.ErrBadPattern)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if pattern == "" {
		n := len(c.entries)
		c.entries = make(map[string]*item)
		c.expiry = nil
		c.usage = 0
		return n, nil
	}

	removed := 0
	for key, it := range c.entries {
		if ok, _ := doublestar.Match(pattern, key); ok {
			c.removeLocked(it)
			removed++
		}
	}
	return removed, nil
}

// Stats returns a snapshot of the counters
func (c *Cache) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	s := c.stats
	s.Entries = int64(len(c.entries))
	s.MemoryUsage = c.usage
	return s
}

// Close stops the sweep goroutine and releases the codecs
func (c *Cache) Close() error {
	var err error
	c.closeOnce.Do(func() {
		close(c.stop)
		<-c.done
		c.decoder.Close()
		err = c.encoder.Close()
	})
	return err
}

// Sweep purges expired entries and returns how many were removed
func (c *Cache) Sweep() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.purgeExpiredLocked(c.now())
}

func (c *Cache) sweepLoop(interval time.Duration) {
	defer close(c.done)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if n := c.Sweep(); n > 0 {
				c.logger.Debug("cache sweep", "expired", n)
			}
		case <-c.stop:
			return
		}
	}
}

// purgeExpiredLocked pops entries off the heap while they are expired
func (c *Cache) purgeExpiredLocked(now time.Time) int {
	n := 0
	for c.expiry.Len() > 0 && !now.Before(c.expiry[0].expiresAt) {
		it := heap.Pop(&c.expiry).(*item)
		delete(c.entries, it.key)
		c.usage -= it.size
		c.stats.Expired++
		n++
	}
	return n
}

func (c *Cache) removeLocked(it *item) {
	delete(c.entries, it.key)
	if it.index >= 0 && it.index < c.expiry.Len() && c.expiry[it.index] == it {
		heap.Remove(&c.expiry, it.index)
	}
	c.usage -= it.size
}
