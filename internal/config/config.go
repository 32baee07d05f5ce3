// Package config resolves runtime settings from defaults, an optional TOML
// file and DSFR_* environment variables, in that order of precedence.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/pelletier/go-toml/v2"

	"github.com/Alexmacapple/DSFR-MCP-sub000/internal/cache"
	"github.com/Alexmacapple/DSFR-MCP-sub000/internal/indexer"
	"github.com/Alexmacapple/DSFR-MCP-sub000/internal/retrieval"
	"github.com/Alexmacapple/DSFR-MCP-sub000/internal/searchindex"
)

// Environment variables
const (
	EnvConfigFile = "DSFR_CONFIG"
	EnvSourceRoot = "DSFR_SOURCE_ROOT"
	EnvDBPath     = "DSFR_DB_PATH"
	EnvLogLevel   = "DSFR_LOG_LEVEL"
	EnvWatch      = "DSFR_WATCH"
	EnvWorkers    = "DSFR_WORKERS"
	EnvCacheMB    = "DSFR_CACHE_MAX_MB"
)

// ErrInvalidConfig wraps every validation failure
var ErrInvalidConfig = errors.New("invalid configuration")

// Duration is a time.Duration written as "250ms" or "5m" in TOML
type Duration struct {
	time.Duration
}

// UnmarshalText parses a Go duration string
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// MarshalText formats the duration as a Go duration string
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// Config is the complete runtime configuration
type Config struct {
	SourceRoot string       `toml:"source_root"`
	DBPath     string       `toml:"db_path"` // empty disables the snapshot
	LogLevel   string       `toml:"log_level"`
	Watch      bool         `toml:"watch"`
	Index      IndexConfig  `toml:"index"`
	Cache      CacheConfig  `toml:"cache"`
	Search     SearchConfig `toml:"search"`
	TTL        TTLConfig    `toml:"ttl"`
}

type IndexConfig struct {
	Workers   int      `toml:"workers"` // 0 uses the CPU count
	BatchSize int      `toml:"batch_size"`
	Include   []string `toml:"include"`
	Exclude   []string `toml:"exclude"`
	Debounce  Duration `toml:"debounce"`
}

type CacheConfig struct {
	MaxMemoryMB       int64    `toml:"max_memory_mb"`
	CompressThreshold int      `toml:"compress_threshold"`
	SweepInterval     Duration `toml:"sweep_interval"`
}

type SearchConfig struct {
	TitleWeight   float64 `toml:"title_weight"`
	ContentWeight float64 `toml:"content_weight"`
	TagsWeight    float64 `toml:"tags_weight"`
	Threshold     float64 `toml:"threshold"`
}

type TTLConfig struct {
	Search     Duration `toml:"search"`
	Details    Duration `toml:"details"`
	Categories Duration `toml:"categories"`
	Patterns   Duration `toml:"patterns"`
	Icons      Duration `toml:"icons"`
	Colors     Duration `toml:"colors"`
}

// Default returns the built-in configuration
func Default() *Config {
	cacheCfg := cache.DefaultConfig()
	search := searchindex.DefaultOptions()
	ttls := retrieval.DefaultTTLs()

	return &Config{
		SourceRoot: "data",
		LogLevel:   "info",
		Index: IndexConfig{
			BatchSize: indexer.DefaultBatchSize,
			Exclude:   append([]string(nil), indexer.DefaultExclude...),
			Debounce:  Duration{indexer.DefaultDebounce},
		},
		Cache: CacheConfig{
			MaxMemoryMB:       cacheCfg.MaxMemory >> 20,
			CompressThreshold: cacheCfg.CompressThreshold,
			SweepInterval:     Duration{cacheCfg.SweepInterval},
		},
		Search: SearchConfig{
			TitleWeight:   search.TitleWeight,
			ContentWeight: search.ContentWeight,
			TagsWeight:    search.TagsWeight,
			Threshold:     search.Threshold,
		},
		TTL: TTLConfig{
			Search:     Duration{ttls.Search},
			Details:    Duration{ttls.Details},
			Categories: Duration{ttls.Categories},
			Patterns:   Duration{ttls.Patterns},
			Icons:      Duration{ttls.Icons},
			Colors:     Duration{ttls.Colors},
		},
	}
}

// Load returns the defaults overlaid with the TOML file at path. An empty
// path returns the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return cfg, nil
}

// FromEnv loads the file named by DSFR_CONFIG, applies the environment and validates
func FromEnv() (*Config, error) {
	cfg, err := Load(os.Getenv(EnvConfigFile))
	if err != nil {
		return nil, err
	}
	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ApplyEnv overrides fields from the variables lookup reports as set
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	if v, ok := lookup(EnvSourceRoot); ok {
		c.SourceRoot = v
	}
	if v, ok := lookup(EnvDBPath); ok {
		c.DBPath = v
	}
	if v, ok := lookup(EnvLogLevel); ok {
		c.LogLevel = v
	}
	if v, ok := lookup(EnvWatch); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%w: %s: %v", ErrInvalidConfig, EnvWatch, err)
		}
		c.Watch = b
	}
	if v, ok := lookup(EnvWorkers); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%w: %s: %v", ErrInvalidConfig, EnvWorkers, err)
		}
		c.Index.Workers = n
	}
	if v, ok := lookup(EnvCacheMB); ok {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("%w: %s: %v", ErrInvalidConfig, EnvCacheMB, err)
		}
		c.Cache.MaxMemoryMB = n
	}
	return nil
}

// Validate reports the first invalid setting
func (c *Config) Validate() error {
	if strings.TrimSpace(c.SourceRoot) == "" {
		return fmt.Errorf("%w: source_root is required", ErrInvalidConfig)
	}
	if _, ok := logLevels[strings.ToLower(c.LogLevel)]; !ok {
		return fmt.Errorf("%w: unknown log_level %q", ErrInvalidConfig, c.LogLevel)
	}
	if c.Index.Workers < 0 || c.Index.BatchSize < 0 {
		return fmt.Errorf("%w: index workers and batch_size must not be negative", ErrInvalidConfig)
	}
	for _, pattern := range append(append([]string(nil), c.Index.Include...), c.Index.Exclude...) {
		if !doublestar.ValidatePattern(pattern) {
			return fmt.Errorf("%w: bad glob pattern %q", ErrInvalidConfig, pattern)
		}
	}
	if c.Cache.MaxMemoryMB <= 0 {
		return fmt.Errorf("%w: cache max_memory_mb must be positive", ErrInvalidConfig)
	}
	if c.Search.TitleWeight <= 0 || c.Search.ContentWeight <= 0 || c.Search.TagsWeight <= 0 {
		return fmt.Errorf("%w: search weights must be positive", ErrInvalidConfig)
	}
	if c.Search.Threshold < 0 || c.Search.Threshold > 1 {
		return fmt.Errorf("%w: search threshold must be between 0 and 1", ErrInvalidConfig)
	}
	ttls := []Duration{c.TTL.Search, c.TTL.Details, c.TTL.Categories, c.TTL.Patterns, c.TTL.Icons, c.TTL.Colors}
	for _, ttl := range ttls {
		if ttl.Duration <= 0 {
			return fmt.Errorf("%w: ttl values must be positive", ErrInvalidConfig)
		}
	}
	return nil
}

var logLevels = map[string]slog.Level{
	"debug": slog.LevelDebug,
	"info":  slog.LevelInfo,
	"warn":  slog.LevelWarn,
	"error": slog.LevelError,
}

// SlogLevel maps LogLevel to a slog level, defaulting to info
func (c *Config) SlogLevel() slog.Level {
	if level, ok := logLevels[strings.ToLower(c.LogLevel)]; ok {
		return level
	}
	return slog.LevelInfo
}

// IndexerConfig converts the ingestion settings
func (c *Config) IndexerConfig() *indexer.Config {
	return &indexer.Config{
		Workers:   c.Index.Workers,
		BatchSize: c.Index.BatchSize,
		Include:   c.Index.Include,
		Exclude:   c.Index.Exclude,
		Debounce:  c.Index.Debounce.Duration,
	}
}

// CacheConfig converts the cache settings
func (c *Config) CacheConfig() cache.Config {
	return cache.Config{
		MaxMemory:         c.Cache.MaxMemoryMB << 20,
		CompressThreshold: c.Cache.CompressThreshold,
		SweepInterval:     c.Cache.SweepInterval.Duration,
	}
}

// SearchOptions converts the search settings
func (c *Config) SearchOptions() searchindex.Options {
	return searchindex.Options{
		TitleWeight:   c.Search.TitleWeight,
		ContentWeight: c.Search.ContentWeight,
		TagsWeight:    c.Search.TagsWeight,
		Threshold:     c.Search.Threshold,
	}
}

// TTLs converts the per-operation cache lifetimes
func (c *Config) TTLs() retrieval.TTLs {
	return retrieval.TTLs{
		Search:     c.TTL.Search.Duration,
		Details:    c.TTL.Details.Duration,
		Categories: c.TTL.Categories.Duration,
		Patterns:   c.TTL.Patterns.Duration,
		Icons:      c.TTL.Icons.Duration,
		Colors:     c.TTL.Colors.Duration,
	}
}
