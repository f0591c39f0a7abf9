package rules

import (
	"github.com/perivale/flywheel/pkg/ir"
	"github.com/perivale/flywheel/pkg/reduce"
)

// DeadCodeSweep retires pure nodes that end a run without users. Killing
// during the traversal would invalidate edges other rules may still be
// walking, so candidates are only recorded during Reduce and the actual
// kills happen in Finalize. Each kill revisits the victim's former
// inputs, which queues another finalize round and lets whole chains of
// dead arithmetic unravel.
type DeadCodeSweep struct {
	editor  reduce.Editor
	pending []*ir.Node
	seen    map[ir.NodeID]bool
}

// NewDeadCodeSweep creates the rule.
func NewDeadCodeSweep(editor reduce.Editor) *DeadCodeSweep {
	return &DeadCodeSweep{editor: editor, seen: make(map[ir.NodeID]bool)}
}

// Reduce implements reduce.Reducer. It never rewrites anything; it only
// records sweep candidates.
func (r *DeadCodeSweep) Reduce(n *ir.Node) reduce.Reduction {
	if isPure(n.Op()) && !r.seen[n.ID()] {
		r.seen[n.ID()] = true
		r.pending = append(r.pending, n)
	}
	return reduce.NoChange()
}

// Finalize implements reduce.Finalizer.
func (r *DeadCodeSweep) Finalize() {
	remaining := r.pending[:0]
	for _, n := range r.pending {
		if n.IsDead() {
			continue
		}
		if n.UseCount() > 0 {
			remaining = append(remaining, n)
			continue
		}
		inputs := n.Inputs()
		n.Kill()
		for _, in := range inputs {
			r.editor.Revisit(in)
		}
	}
	r.pending = remaining
}

// isPure reports whether the operator computes a value with no effect or
// control behavior, making it removable once unused.
func isPure(op *ir.Operator) bool {
	return op.ValueOut > 0 &&
		op.EffectIn == 0 && op.EffectOut == 0 &&
		op.ControlIn == 0 && op.ControlOut == 0
}
