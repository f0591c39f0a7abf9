package pipeline_test

import (
	"context"
	"io"
	"path/filepath"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/perivale/flywheel/pkg/cache"
	"github.com/perivale/flywheel/pkg/errors"
	"github.com/perivale/flywheel/pkg/graphio"
	"github.com/perivale/flywheel/pkg/ir"
	"github.com/perivale/flywheel/pkg/pipeline"
)

func silentLogger() *log.Logger {
	return log.NewWithOptions(io.Discard, log.Options{})
}

// writeArithGraph exports a "return 2+3" graph to a temp file.
func writeArithGraph(t *testing.T) string {
	t.Helper()
	g := ir.New()
	start := g.NewNode(ir.Start())
	g.SetStart(start)
	sum := g.NewNode(ir.Add(), g.NewNode(ir.Int64Constant(2)), g.NewNode(ir.Int64Constant(3)))
	ret := g.NewNode(ir.Return(), sum, start, start)
	g.SetEnd(g.NewNode(ir.End(1), ret))

	path := filepath.Join(t.TempDir(), "arith.json")
	if err := graphio.Export(g, path); err != nil {
		t.Fatalf("Export: %v", err)
	}
	return path
}

func TestExecuteReducesAndExports(t *testing.T) {
	runner := pipeline.NewRunner(cache.NewMemoryCache(), silentLogger())
	defer runner.Close()

	result, err := runner.Execute(context.Background(), pipeline.Options{
		Input:   writeArithGraph(t),
		Formats: []string{pipeline.FormatJSON, pipeline.FormatDOT},
		Verify:  true,
	})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}

	if result.RunID == "" {
		t.Error("run ID should be set")
	}
	if result.CacheHit {
		t.Error("first run should not hit the cache")
	}
	if result.Stats.NodesAfter >= result.Stats.NodesBefore {
		t.Errorf("nodes after = %d, want fewer than %d", result.Stats.NodesAfter, result.Stats.NodesBefore)
	}
	if len(result.Artifacts[pipeline.FormatJSON]) == 0 {
		t.Error("json artifact should not be empty")
	}
	if len(result.Artifacts[pipeline.FormatDOT]) == 0 {
		t.Error("dot artifact should not be empty")
	}

	value := ir.ValueInput(result.Graph.End().InputAt(0), 0)
	if value.Op().Opcode != ir.OpInt64Constant || value.Op().Value != 5 {
		t.Errorf("returned value = %s, want Int64Constant[5]", value.Op())
	}
}

func TestExecuteSecondRunHitsCache(t *testing.T) {
	runner := pipeline.NewRunner(cache.NewMemoryCache(), silentLogger())
	defer runner.Close()

	opts := pipeline.Options{Input: writeArithGraph(t)}
	first, err := runner.Execute(context.Background(), opts)
	if err != nil {
		t.Fatalf("first Execute: %v", err)
	}
	second, err := runner.Execute(context.Background(), opts)
	if err != nil {
		t.Fatalf("second Execute: %v", err)
	}

	if first.CacheHit {
		t.Error("first run should be a miss")
	}
	if !second.CacheHit {
		t.Error("second run should hit the cache")
	}
	if second.Stats.Engine.NodesVisited != 0 {
		t.Error("cached run should not visit any nodes")
	}
	if second.Stats.NodesAfter != first.Stats.NodesAfter {
		t.Errorf("cached result has %d nodes, want %d", second.Stats.NodesAfter, first.Stats.NodesAfter)
	}
	if first.RunID == second.RunID {
		t.Error("runs should have distinct IDs")
	}
}

func TestExecuteRefreshBypassesCache(t *testing.T) {
	runner := pipeline.NewRunner(cache.NewMemoryCache(), silentLogger())
	defer runner.Close()

	opts := pipeline.Options{Input: writeArithGraph(t)}
	if _, err := runner.Execute(context.Background(), opts); err != nil {
		t.Fatalf("first Execute: %v", err)
	}
	opts.Refresh = true
	result, err := runner.Execute(context.Background(), opts)
	if err != nil {
		t.Fatalf("refresh Execute: %v", err)
	}
	if result.CacheHit {
		t.Error("refresh run should not hit the cache")
	}
	if result.Stats.Engine.NodesVisited == 0 {
		t.Error("refresh run should actually reduce")
	}
}

func TestExecuteWithoutCache(t *testing.T) {
	runner := pipeline.NewRunner(nil, silentLogger())
	defer runner.Close()

	result, err := runner.Execute(context.Background(), pipeline.Options{Input: writeArithGraph(t)})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if result.CacheHit {
		t.Error("null cache should never hit")
	}
}

func TestExecuteSelectedRules(t *testing.T) {
	runner := pipeline.NewRunner(nil, silentLogger())
	defer runner.Close()

	// Strength reduction alone cannot fold 2+3.
	result, err := runner.Execute(context.Background(), pipeline.Options{
		Input: writeArithGraph(t),
		Rules: []string{pipeline.RuleStrength},
	})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	value := ir.ValueInput(result.Graph.End().InputAt(0), 0)
	if value.Op().Opcode != ir.OpAdd {
		t.Errorf("returned value = %s, want the Add to survive", value.Op())
	}
}

func TestOptionsValidation(t *testing.T) {
	tests := []struct {
		name string
		opts pipeline.Options
		code errors.Code
	}{
		{"missing input", pipeline.Options{}, errors.ErrCodeInvalidInput},
		{"unknown rule", pipeline.Options{Input: "g.json", Rules: []string{"frobnicate"}}, errors.ErrCodeInvalidRule},
		{"bad format", pipeline.Options{Input: "g.json", Formats: []string{"png"}}, errors.ErrCodeInvalidFormat},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.opts.ValidateAndSetDefaults()
			if !errors.Is(err, tt.code) {
				t.Errorf("error code = %s, want %s", errors.GetCode(err), tt.code)
			}
		})
	}
}

func TestValidateAppliesDefaults(t *testing.T) {
	opts := pipeline.Options{Input: "g.json"}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		t.Fatalf("ValidateAndSetDefaults: %v", err)
	}
	if len(opts.Rules) != len(pipeline.DefaultRules) {
		t.Errorf("rules = %v, want the full default set", opts.Rules)
	}
	if opts.ResweepThreshold == 0 {
		t.Error("resweep threshold default not applied")
	}
	if opts.Logger == nil {
		t.Error("logger default not applied")
	}
}
