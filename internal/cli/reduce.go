package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/perivale/flywheel/pkg/pipeline"
)

// reduceOpts holds the command-line flags for the reduce command.
type reduceOpts struct {
	output    string   // output base path (defaults to the input path)
	rules     []string // rule names in dispatch order
	formats   []string // output formats: "json", "dot", "svg"
	threshold float64  // resweep heuristic threshold
	lazy      bool     // enable lazy placeholder replacement
	detailed  bool     // detailed node labels in renderings
	verify    bool     // verify the reduced graph
	refresh   bool     // bypass the cache
	noCache   bool     // disable caching entirely
	stats     bool     // print engine statistics
}

// newReduceCmd creates the reduce command: load a graph, drive the rule
// set to a fixed point, and write the requested artifacts.
func newReduceCmd() *cobra.Command {
	var rulesStr, formatsStr string
	opts := reduceOpts{verify: true, stats: true}

	cmd := &cobra.Command{
		Use:   "reduce [file]",
		Short: "Reduce a graph to a fixed point and export the result",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.rules = splitList(rulesStr)
			opts.formats = splitList(formatsStr)
			if len(opts.formats) == 0 {
				opts.formats = nil // fall back to the configured defaults
			}
			return runReduce(cmd, args[0], &opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output base path (defaults next to the input)")
	cmd.Flags().StringVarP(&rulesStr, "rules", "r", "", "rules to apply: fold, strength, phi, branch, sweep (comma-separated, default all)")
	cmd.Flags().StringVarP(&formatsStr, "format", "f", "", "output format(s): json, dot, svg (comma-separated)")
	cmd.Flags().Float64Var(&opts.threshold, "resweep-threshold", 0, "revisit ratio that triggers a full re-traversal (0 = config default)")
	cmd.Flags().BoolVar(&opts.lazy, "lazy", false, "use lazy placeholder replacement")
	cmd.Flags().BoolVar(&opts.detailed, "detailed", false, "show node IDs and arities in renderings")
	cmd.Flags().BoolVar(&opts.verify, "verify", opts.verify, "verify the reduced graph")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "recompute even if a cached result exists")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable the result cache")
	cmd.Flags().BoolVar(&opts.stats, "stats", opts.stats, "print engine statistics")

	return cmd
}

// splitList parses a comma-separated flag value, dropping empty entries.
func splitList(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func runReduce(cmd *cobra.Command, input string, opts *reduceOpts) error {
	ctx := cmd.Context()
	logger := loggerFromContext(ctx)

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	cacheCfg := cfg.Cache
	if opts.noCache {
		cacheCfg.Backend = "none"
	}
	c, err := openCache(ctx, cacheCfg)
	if err != nil {
		return err
	}
	runner := pipeline.NewRunner(c, logger)
	defer runner.Close()

	threshold := opts.threshold
	if threshold == 0 {
		threshold = cfg.Reduce.ResweepThreshold
	}
	formats := opts.formats
	if formats == nil {
		formats = cfg.Render.Formats
	}
	pipeOpts := pipeline.Options{
		Input:            input,
		Rules:            opts.rules,
		ResweepThreshold: threshold,
		LazyAliasing:     opts.lazy || cfg.Reduce.LazyAliasing,
		Formats:          formats,
		Detailed:         opts.detailed || cfg.Render.Detailed,
		Verify:           opts.verify,
		Refresh:          opts.refresh,
		TTL:              cfg.Cache.TTL.Duration,
		Logger:           logger,
	}

	spinner := newSpinnerWithContext(ctx, "Reducing graph...")
	spinner.Start()
	result, err := runner.Execute(ctx, pipeOpts)
	if err != nil {
		spinner.StopWithError(fmt.Sprintf("Reduction failed: %v", err))
		return err
	}
	spinner.StopWithSuccess(fmt.Sprintf("Reduced %s", input))

	printStats(result.Stats.NodesBefore, result.Stats.NodesAfter, result.CacheHit)
	if opts.stats && !result.CacheHit {
		printDetail("visited %d nodes, %d replacements, %d in-place changes, %d resweeps (%s)",
			result.Stats.Engine.NodesVisited,
			result.Stats.Engine.Replacements,
			result.Stats.Engine.InPlaceChanges,
			result.Stats.Engine.Resweeps,
			result.Stats.Duration.Round(0))
	}

	base := basePath(opts.output, input)
	for _, format := range formats {
		path := fmt.Sprintf("%s_reduced.%s", base, format)
		if err := os.WriteFile(path, result.Artifacts[format], 0644); err != nil {
			return err
		}
		printFile(path)
	}

	printNewline()
	printNextStep("Explore the result", fmt.Sprintf("flywheel explore %s", input))
	return nil
}

// basePath derives the base output path from the output and input paths.
// If output is empty, the input path without its extension is used; a
// known format extension on output is stripped.
func basePath(output, input string) string {
	if output == "" {
		return strings.TrimSuffix(input, filepath.Ext(input))
	}
	ext := filepath.Ext(output)
	if pipeline.ValidFormats[strings.TrimPrefix(ext, ".")] {
		return strings.TrimSuffix(output, ext)
	}
	return output
}
