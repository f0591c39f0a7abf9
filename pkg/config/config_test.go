package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/perivale/flywheel/pkg/errors"
	"github.com/perivale/flywheel/pkg/reduce"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	if cfg.Reduce.ResweepThreshold != reduce.DefaultResweepThreshold {
		t.Errorf("resweep threshold = %v, want %v", cfg.Reduce.ResweepThreshold, reduce.DefaultResweepThreshold)
	}
	if cfg.Cache.Backend != "file" {
		t.Errorf("cache backend = %q, want file", cfg.Cache.Backend)
	}
	if cfg.Cache.TTL.Duration != 24*time.Hour {
		t.Errorf("cache ttl = %v, want 24h", cfg.Cache.TTL.Duration)
	}
	if len(cfg.Render.Formats) != 1 || cfg.Render.Formats[0] != "svg" {
		t.Errorf("render formats = %v, want [svg]", cfg.Render.Formats)
	}
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "flywheel.toml")
	content := `
[reduce]
resweep_threshold = 2.5
lazy_aliasing = true

[cache]
backend = "redis"
redis_addr = "localhost:6379"
ttl = "1h"

[render]
formats = ["json", "dot"]
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Reduce.ResweepThreshold != 2.5 {
		t.Errorf("resweep threshold = %v, want 2.5", cfg.Reduce.ResweepThreshold)
	}
	if !cfg.Reduce.LazyAliasing {
		t.Error("lazy aliasing should be enabled")
	}
	if cfg.Cache.Backend != "redis" || cfg.Cache.RedisAddr != "localhost:6379" {
		t.Errorf("cache = %+v, want redis at localhost:6379", cfg.Cache)
	}
	if cfg.Cache.TTL.Duration != time.Hour {
		t.Errorf("ttl = %v, want 1h", cfg.Cache.TTL.Duration)
	}
	if len(cfg.Render.Formats) != 2 {
		t.Errorf("formats = %v, want [json dot]", cfg.Render.Formats)
	}
}

func TestLoadEmptyPathUsesDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Cache.Backend != "file" {
		t.Errorf("backend = %q, want the default", cfg.Cache.Backend)
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load("does/not/exist.toml")
	if !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("error code = %s, want FILE_NOT_FOUND", errors.GetCode(err))
	}
}

func TestLoadMalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.toml")
	if err := os.WriteFile(path, []byte("[reduce\n"), 0644); err != nil {
		t.Fatal(err)
	}
	_, err := Load(path)
	if !errors.Is(err, errors.ErrCodeInvalidFormat) {
		t.Errorf("error code = %s, want INVALID_FORMAT", errors.GetCode(err))
	}
}
