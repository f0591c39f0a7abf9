// Package config loads flywheel configuration from TOML files. All
// settings have working defaults; a config file only needs to state what
// it changes.
package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/perivale/flywheel/pkg/errors"
	"github.com/perivale/flywheel/pkg/reduce"
)

// Config is the root configuration.
type Config struct {
	Reduce ReduceConfig `toml:"reduce"`
	Cache  CacheConfig  `toml:"cache"`
	Render RenderConfig `toml:"render"`
}

// ReduceConfig tunes the reduction engine.
type ReduceConfig struct {
	// ResweepThreshold is the revisit-to-visit ratio that triggers a full
	// re-traversal. Zero or negative disables resweeps.
	ResweepThreshold float64 `toml:"resweep_threshold"`

	// LazyAliasing defers user rewiring through placeholders while a
	// resweep is pending.
	LazyAliasing bool `toml:"lazy_aliasing"`
}

// CacheConfig selects and tunes the cache backend.
type CacheConfig struct {
	// Backend is one of "file", "memory", "redis" or "none".
	Backend string `toml:"backend"`

	// Dir is the root directory of the file backend.
	Dir string `toml:"dir"`

	// RedisAddr is the host:port of the redis backend.
	RedisAddr string `toml:"redis_addr"`

	// RedisDB is the redis database number.
	RedisDB int `toml:"redis_db"`

	// TTL is how long cached entries stay valid, e.g. "24h".
	TTL Duration `toml:"ttl"`
}

// RenderConfig sets export defaults.
type RenderConfig struct {
	// Formats are the artifact formats produced by default ("json",
	// "dot", "svg").
	Formats []string `toml:"formats"`

	// Detailed includes node IDs and arities in rendered labels.
	Detailed bool `toml:"detailed"`
}

// Duration wraps time.Duration so TOML files can use strings like "24h".
type Duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler for TOML decoding.
func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = parsed
	return nil
}

// Default returns the built-in configuration: file-backed caching under
// the user cache directory, a 24h TTL, the default resweep threshold, and
// SVG output.
func Default() Config {
	dir, err := os.UserCacheDir()
	if err != nil {
		dir = os.TempDir()
	}
	return Config{
		Reduce: ReduceConfig{
			ResweepThreshold: reduce.DefaultResweepThreshold,
		},
		Cache: CacheConfig{
			Backend: "file",
			Dir:     filepath.Join(dir, "flywheel"),
			TTL:     Duration{24 * time.Hour},
		},
		Render: RenderConfig{
			Formats: []string{"svg"},
		},
	}
}

// Load reads a TOML config file at path, applied on top of [Default].
// A missing file is not an error when path is empty; an explicit path
// that does not exist is.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, errors.Wrap(errors.ErrCodeFileNotFound, err, "read config %s", path)
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, errors.Wrap(errors.ErrCodeInvalidFormat, err, "parse config %s", path)
	}
	return cfg, nil
}
