package pipeline

import (
	"bytes"
	"context"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/perivale/flywheel/pkg/cache"
	"github.com/perivale/flywheel/pkg/dot"
	"github.com/perivale/flywheel/pkg/errors"
	"github.com/perivale/flywheel/pkg/graphio"
	"github.com/perivale/flywheel/pkg/ir"
	"github.com/perivale/flywheel/pkg/ir/verify"
	"github.com/perivale/flywheel/pkg/observability"
	"github.com/perivale/flywheel/pkg/reduce"
)

// Runner executes pipelines with caching. It is stateless apart from the
// cache and logger; multiple goroutines can share one Runner with
// different options.
type Runner struct {
	Cache  cache.Cache
	Logger *log.Logger
}

// NewRunner creates a runner. A nil cache disables caching; a nil logger
// uses the default.
func NewRunner(c cache.Cache, logger *log.Logger) *Runner {
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{Cache: c, Logger: logger}
}

// Execute runs the complete load → reduce → export pipeline.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	logger := r.logger(opts)

	result := &Result{
		RunID:     uuid.NewString(),
		Artifacts: make(map[string][]byte),
	}

	g, err := r.Load(opts.Input)
	if err != nil {
		return nil, err
	}
	result.GraphHash = graphHash(g)
	result.Stats.NodesBefore = len(g.Reachable())
	logger.Info("loaded graph",
		"run", result.RunID,
		"nodes", result.Stats.NodesBefore,
		"hash", result.GraphHash[:12])

	reduceKey := cache.ReductionKey(result.GraphHash, opts.Rules, opts.ResweepThreshold, opts.LazyAliasing)
	if !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, reduceKey); err == nil && hit {
			if cached, err := graphio.Read(bytes.NewReader(data)); err == nil {
				observability.Cache().OnCacheHit(ctx, "reduction")
				g = cached
				result.CacheHit = true
			}
		}
	}
	if !result.CacheHit {
		observability.Cache().OnCacheMiss(ctx, "reduction")
		stats, err := r.Reduce(ctx, g, opts)
		if err != nil {
			return nil, err
		}
		result.Stats.Engine = stats.Engine
		result.Stats.Duration = stats.Duration

		var buf bytes.Buffer
		if err := graphio.Write(g, &buf); err == nil {
			_ = r.Cache.Set(ctx, reduceKey, buf.Bytes(), opts.TTL)
			observability.Cache().OnCacheSet(ctx, "reduction", buf.Len())
		}
	}
	result.Graph = g
	result.Stats.NodesAfter = len(g.Reachable())
	logger.Info("reduced graph",
		"nodes", result.Stats.NodesAfter,
		"replacements", result.Stats.Engine.Replacements,
		"resweeps", result.Stats.Engine.Resweeps,
		"cached", result.CacheHit,
		"duration", result.Stats.Duration)

	artifacts, err := r.Export(ctx, g, opts)
	if err != nil {
		return nil, err
	}
	result.Artifacts = artifacts
	logger.Info("exported artifacts", "formats", opts.Formats)

	return result, nil
}

// Load reads a JSON graph from path.
func (r *Runner) Load(path string) (*ir.Graph, error) {
	return graphio.Import(path)
}

// Reduce runs the configured rule set over g to a fixed point, in place.
// It returns the engine statistics for the run.
func (r *Runner) Reduce(ctx context.Context, g *ir.Graph, opts Options) (Stats, error) {
	if err := opts.setDefaults(); err != nil {
		return Stats{}, err
	}

	threshold := opts.ResweepThreshold
	if threshold < 0 {
		threshold = 0
	}
	engine := reduce.NewGraphReducer(g, reduce.Options{
		ResweepThreshold: threshold,
		LazyAliasing:     opts.LazyAliasing,
	})
	engine.Add(buildReducers(engine, g, opts.Rules)...)

	start := time.Now()
	engine.ReduceGraph()
	stats := Stats{
		Engine:   engine.Stats(),
		Duration: time.Since(start),
	}

	if opts.Verify {
		if err := verify.Graph(g); err != nil {
			return stats, errors.Wrap(errors.ErrCodeInvalidGraph, err, "reduced graph failed verification")
		}
	}
	return stats, nil
}

// Export renders g in every requested format, using the artifact cache.
func (r *Runner) Export(ctx context.Context, g *ir.Graph, opts Options) (map[string][]byte, error) {
	if err := opts.setDefaults(); err != nil {
		return nil, err
	}

	hash := graphHash(g)
	artifacts := make(map[string][]byte, len(opts.Formats))
	for _, format := range opts.Formats {
		key := cache.ArtifactKey(hash, artifactVariant(format, opts.Detailed))
		if !opts.Refresh {
			if data, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
				observability.Cache().OnCacheHit(ctx, "artifact")
				artifacts[format] = data
				continue
			}
		}
		observability.Cache().OnCacheMiss(ctx, "artifact")

		data, err := renderFormat(g, format, opts)
		if err != nil {
			return nil, err
		}
		artifacts[format] = data
		_ = r.Cache.Set(ctx, key, data, opts.TTL)
		observability.Cache().OnCacheSet(ctx, "artifact", len(data))
	}
	return artifacts, nil
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

func (r *Runner) logger(opts Options) *log.Logger {
	if opts.Logger != nil {
		return opts.Logger
	}
	return r.Logger
}

// graphHash computes the content hash of a graph's serialized form.
func graphHash(g *ir.Graph) string {
	var buf bytes.Buffer
	if err := graphio.Write(g, &buf); err != nil {
		return ""
	}
	return cache.Hash(buf.Bytes())
}

// artifactVariant distinguishes detailed renderings in the cache key.
func artifactVariant(format string, detailed bool) string {
	if detailed && format != FormatJSON {
		return format + ":detailed"
	}
	return format
}

func renderFormat(g *ir.Graph, format string, opts Options) ([]byte, error) {
	switch format {
	case FormatJSON:
		var buf bytes.Buffer
		if err := graphio.Write(g, &buf); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	case FormatDOT:
		return []byte(dot.ToDOT(g, dot.Options{Detailed: opts.Detailed})), nil
	case FormatSVG:
		return dot.RenderSVG(dot.ToDOT(g, dot.Options{Detailed: opts.Detailed}))
	}
	return nil, errors.New(errors.ErrCodeInvalidFormat, "invalid format %q", format)
}
