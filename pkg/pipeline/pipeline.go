// Package pipeline provides the load → reduce → export pipeline for
// flywheel.
//
// This package implements the complete pipeline used by the CLI and the
// explore server: load a graph from JSON, reduce it to a fixed point
// under a rule set, and export the result in one or more formats. Both
// the reduced graph and rendered artifacts are cached by content hash, so
// re-running the same pipeline is cheap.
//
// # Usage
//
// Create a Runner and execute the pipeline:
//
//	runner := pipeline.NewRunner(cache, logger)
//	opts := pipeline.Options{
//	    Input:   "graph.json",
//	    Formats: []string{"svg"},
//	}
//	result, err := runner.Execute(ctx, opts)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	svg := result.Artifacts["svg"]
//
// Stages can also run independently:
//
//	g, err := runner.Load(opts.Input)
//	stats, err := runner.Reduce(ctx, g, opts)
//	artifacts, err := runner.Export(ctx, g, opts)
package pipeline

import (
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/perivale/flywheel/pkg/errors"
	"github.com/perivale/flywheel/pkg/ir"
	"github.com/perivale/flywheel/pkg/reduce"
	"github.com/perivale/flywheel/pkg/reduce/rules"
)

// Rule names accepted in Options.Rules.
const (
	RuleFold     = "fold"
	RuleStrength = "strength"
	RulePhi      = "phi"
	RuleBranch   = "branch"
	RuleSweep    = "sweep"
)

// DefaultRules is the full rule set, in dispatch order.
var DefaultRules = []string{RuleFold, RuleStrength, RulePhi, RuleBranch, RuleSweep}

// Format constants for output formats.
const (
	FormatJSON = "json"
	FormatDOT  = "dot"
	FormatSVG  = "svg"
)

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatJSON: true,
	FormatDOT:  true,
	FormatSVG:  true,
}

// Options contains all configuration for a pipeline run.
type Options struct {
	// Input is the path of the JSON graph file to load.
	Input string `json:"input"`

	// Rules names the reduction rules to apply, in dispatch order.
	// Empty means all of them.
	Rules []string `json:"rules,omitempty"`

	// ResweepThreshold tunes the engine's full-retraversal heuristic.
	// Zero means the engine default; negative disables resweeps.
	ResweepThreshold float64 `json:"resweep_threshold,omitempty"`

	// LazyAliasing enables the engine's placeholder replacement protocol.
	LazyAliasing bool `json:"lazy_aliasing,omitempty"`

	// Formats are the artifact formats to produce. Empty means none.
	Formats []string `json:"formats,omitempty"`

	// Detailed includes node IDs and arities in rendered labels.
	Detailed bool `json:"detailed,omitempty"`

	// Verify runs the structural verifier on the reduced graph.
	Verify bool `json:"verify,omitempty"`

	// Refresh bypasses the cache and recomputes everything.
	Refresh bool `json:"refresh,omitempty"`

	// TTL is how long results stay cached. Zero caches without expiry.
	TTL time.Duration `json:"-"`

	// Logger receives progress output. Defaults to a silent logger.
	Logger *log.Logger `json:"-"`
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// RunID uniquely identifies this pipeline execution.
	RunID string

	// Graph is the reduced graph.
	Graph *ir.Graph

	// GraphHash is the content hash of the input graph.
	GraphHash string

	// Artifacts contains exported outputs keyed by format.
	Artifacts map[string][]byte

	// Stats contains size and timing information.
	Stats Stats

	// CacheHit reports whether the reduced graph came from the cache.
	CacheHit bool
}

// Stats contains pipeline execution statistics.
type Stats struct {
	NodesBefore int           // live nodes before reduction
	NodesAfter  int           // live nodes after reduction
	Engine      reduce.Stats  // zero when the reduction came from cache
	Duration    time.Duration // reduce stage only
}

// ValidateAndSetDefaults checks required fields and applies defaults.
func (o *Options) ValidateAndSetDefaults() error {
	if o.Input == "" {
		return errors.New(errors.ErrCodeInvalidInput, "input graph path is required")
	}
	return o.setDefaults()
}

// setDefaults validates and defaults everything except the input path, so
// the reduce and export stages can run on an already-loaded graph.
func (o *Options) setDefaults() error {
	if len(o.Rules) == 0 {
		o.Rules = DefaultRules
	}
	for _, name := range o.Rules {
		if !validRule(name) {
			return errors.New(errors.ErrCodeInvalidRule, "unknown rule %q", name)
		}
	}
	for _, f := range o.Formats {
		if !ValidFormats[f] {
			return errors.New(errors.ErrCodeInvalidFormat,
				"invalid format %q (must be one of: json, dot, svg)", f)
		}
	}
	if o.ResweepThreshold == 0 {
		o.ResweepThreshold = reduce.DefaultResweepThreshold
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return nil
}

func validRule(name string) bool {
	switch name {
	case RuleFold, RuleStrength, RulePhi, RuleBranch, RuleSweep:
		return true
	}
	return false
}

// buildReducers instantiates the named rules against a graph and engine.
func buildReducers(engine *reduce.GraphReducer, g *ir.Graph, names []string) []reduce.Reducer {
	reducers := make([]reduce.Reducer, 0, len(names))
	for _, name := range names {
		switch name {
		case RuleFold:
			reducers = append(reducers, rules.NewConstantFolding(g))
		case RuleStrength:
			reducers = append(reducers, rules.NewStrengthReduction(g))
		case RulePhi:
			reducers = append(reducers, rules.NewPhiSimplification())
		case RuleBranch:
			reducers = append(reducers, rules.NewDeadBranchElimination(engine, engine.Dead()))
		case RuleSweep:
			reducers = append(reducers, rules.NewDeadCodeSweep(engine))
		}
	}
	return reducers
}
