// Package dot renders IR graphs to Graphviz DOT and SVG. Edge styling
// encodes the edge kind: value edges are solid, effect edges dashed, and
// control edges bold, so the three overlaid dependency structures stay
// readable in one drawing.
package dot

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/perivale/flywheel/pkg/errors"
	"github.com/perivale/flywheel/pkg/ir"
)

// Options configures DOT output.
type Options struct {
	// Detailed includes node IDs and input/output arities in labels.
	// When false, only the operator is shown.
	Detailed bool
}

var edgeStyles = map[ir.Kind]string{
	ir.KindValue:   "solid",
	ir.KindEffect:  "dashed",
	ir.KindControl: "bold",
}

// ToDOT converts the live part of a graph to Graphviz DOT format. Only
// nodes reachable from the end marker are drawn. Edges point from
// producer to consumer, matching the direction data flows. The resulting
// DOT string can be rendered with [RenderSVG].
func ToDOT(g *ir.Graph, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("digraph IR {\n")
	buf.WriteString("  rankdir=TB;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=14, margin=\"0.15,0.08\"];\n")
	buf.WriteString("  ranksep=0.5;\n")
	buf.WriteString("  nodesep=0.3;\n")
	buf.WriteString("\n")

	live := g.Reachable()
	for _, n := range live {
		attrs := fmtAttrs(n, opts.Detailed)
		fmt.Fprintf(&buf, "  n%d [%s];\n", n.ID(), strings.Join(attrs, ", "))
	}

	buf.WriteString("\n")
	for _, n := range live {
		for i := 0; i < n.InputCount(); i++ {
			kind := inputKind(n, i)
			fmt.Fprintf(&buf, "  n%d -> n%d [style=%s];\n", n.InputAt(i).ID(), n.ID(), edgeStyles[kind])
		}
	}

	buf.WriteString("}\n")
	return buf.String()
}

func fmtAttrs(n *ir.Node, detailed bool) []string {
	label := n.Op().String()
	if detailed {
		op := n.Op()
		label = fmt.Sprintf("%s\nin: %dv %de %dc  out: %dv %de %dc",
			n, op.ValueIn, op.EffectIn, op.ControlIn,
			op.ValueOut, op.EffectOut, op.ControlOut)
	}
	attrs := []string{fmt.Sprintf("label=%q", label)}
	switch n.Op().Opcode {
	case ir.OpDead, ir.OpPlaceholder:
		attrs = append(attrs, "style=\"rounded,filled,dashed\"", "fillcolor=lightgrey")
	case ir.OpStart, ir.OpEnd:
		attrs = append(attrs, "shape=doubleoctagon")
	}
	return attrs
}

// inputKind classifies input position i of n by the operator's declared
// arities, mirroring how [ir.Edge.Kind] classifies use edges.
func inputKind(n *ir.Node, i int) ir.Kind {
	op := n.Op()
	switch {
	case i < op.ValueIn:
		return ir.KindValue
	case i < op.ValueIn+op.EffectIn:
		return ir.KindEffect
	default:
		return ir.KindControl
	}
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
func RenderSVG(dot string) ([]byte, error) {
	ctx := context.Background()
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "init graphviz")
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "parse DOT")
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "render")
	}
	return buf.Bytes(), nil
}
