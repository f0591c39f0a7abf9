package graphio

import (
	"encoding/json"
	"io"
	"os"

	"github.com/perivale/flywheel/pkg/errors"
	"github.com/perivale/flywheel/pkg/ir"
)

// Write encodes the live part of a graph as JSON and writes it to w. Only
// nodes reachable from the end marker are emitted, in ascending ID order.
// The output can be re-imported with [Read] for round-trip processing.
func Write(g *ir.Graph, w io.Writer) error {
	if g.End() == nil {
		return errors.New(errors.ErrCodeInvalidGraph, "graph has no end node")
	}

	live := g.Reachable()
	out := graphJSON{Nodes: make([]nodeJSON, len(live))}
	for i, n := range live {
		nd := nodeJSON{ID: uint32(n.ID()), Op: n.Op().Opcode.String()}
		switch n.Op().Opcode {
		case ir.OpInt64Constant, ir.OpParameter:
			value := n.Op().Value
			nd.Value = &value
		}
		if count := n.InputCount(); count > 0 {
			nd.Inputs = make([]uint32, count)
			for j, input := range n.Inputs() {
				nd.Inputs[j] = uint32(input.ID())
			}
		}
		out.Nodes[i] = nd
	}
	end := uint32(g.End().ID())
	out.End = &end
	if g.Start() != nil {
		start := uint32(g.Start().ID())
		out.Start = &start
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "encode graph")
	}
	return nil
}

// Export writes a graph to a JSON file at path. This is a convenience
// wrapper around [Write] for file-based output.
func Export(g *ir.Graph, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "create %s", path)
	}
	defer f.Close()
	return Write(g, f)
}
