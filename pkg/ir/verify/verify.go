// Package verify checks structural invariants of IR graphs.
//
// Two surfaces with two failure modes:
//
//   - [EdgeReplacement] guards individual edge rewrites inside the
//     reduction engine. A violation means a reduction rule proposed an
//     impossible rewrite - an authoring bug, not a runtime condition -
//     so it panics rather than returning an error.
//   - [Graph] is a whole-graph diagnostic for pipelines and tests. It
//     returns coded errors so callers can report what is wrong without
//     crashing.
package verify

import (
	"fmt"

	"github.com/perivale/flywheel/pkg/errors"
	"github.com/perivale/flywheel/pkg/ir"
)

// EdgeReplacement checks that redirecting e to repl is legal: repl must
// be live and its operator must produce an output of the edge's kind.
// It panics on violation; continuing would silently corrupt the graph.
func EdgeReplacement(e ir.Edge, repl *ir.Node) {
	if repl.IsDead() {
		panic(fmt.Sprintf("verify: redirecting %s input %d of %s to dead node %s",
			e.Kind(), e.Index(), e.From(), repl))
	}
	op := repl.Op()
	ok := false
	switch e.Kind() {
	case ir.KindValue:
		ok = op.ValueOut > 0
	case ir.KindEffect:
		ok = op.EffectOut > 0
	case ir.KindControl:
		ok = op.ControlOut > 0
	}
	if !ok {
		panic(fmt.Sprintf("verify: %s cannot produce the %s required by input %d of %s",
			repl, e.Kind(), e.Index(), e.From()))
	}
}

// Graph checks the structural invariants of every live node reachable
// from the end marker:
//
//   - no input edge points at a dead node
//   - the input count matches the operator's declared arity
//   - every input's use list contains the corresponding reverse edge
//
// The first violation is returned as a coded error; nil means the graph
// is structurally sound.
func Graph(g *ir.Graph) error {
	if g.End() == nil {
		return errors.New(errors.ErrCodeInvalidGraph, "graph has no end marker")
	}
	for _, n := range g.Reachable() {
		if got, want := n.InputCount(), n.Op().InputCount(); got != want {
			return errors.New(errors.ErrCodeInvalidNode,
				"node %s has %d inputs, operator declares %d", n, got, want)
		}
		for i := 0; i < n.InputCount(); i++ {
			input := n.InputAt(i)
			if input == nil {
				return errors.New(errors.ErrCodeInvalidNode, "node %s input %d is nil", n, i)
			}
			if input.IsDead() {
				return errors.New(errors.ErrCodeInvalidGraph,
					"node %s input %d points at dead node %s", n, i, input)
			}
			if !hasUse(input, n, i) {
				return errors.New(errors.ErrCodeInvalidGraph,
					"use list of %s is missing input %d of %s", input, i, n)
			}
		}
	}
	return nil
}

func hasUse(producer, user *ir.Node, index int) bool {
	for _, e := range producer.UseEdges() {
		if e.From() == user && e.Index() == index {
			return true
		}
	}
	return false
}
