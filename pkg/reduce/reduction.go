package reduce

import "github.com/perivale/flywheel/pkg/ir"

// Reduction is the tagged result of applying one rule to one node. The
// zero value means no change; a reduction carrying the node itself means
// the node was mutated in place; a reduction carrying a different node
// means the node should be replaced by it.
type Reduction struct {
	replacement *ir.Node
}

// NoChange reports that the rule found nothing to do.
func NoChange() Reduction { return Reduction{} }

// Changed reports an in-place mutation of node.
func Changed(node *ir.Node) Reduction { return Reduction{replacement: node} }

// Replace reports that the reduced node should be replaced by replacement.
func Replace(replacement *ir.Node) Reduction { return Reduction{replacement: replacement} }

// Changed reports whether the reduction changed anything.
func (r Reduction) Changed() bool { return r.replacement != nil }

// Replacement returns the substitute node, the node itself for in-place
// changes, or nil for no change.
func (r Reduction) Replacement() *ir.Node { return r.replacement }

// Reducer is a pluggable transformation rule. Reduce is called once per
// visit of a node and reports what, if anything, it changed. Reducers
// must not retain graph references across calls in ways that outlive a
// node's death.
type Reducer interface {
	Reduce(node *ir.Node) Reduction
}

// Finalizer is implemented by reducers that batch deferred work. Finalize
// is invoked once after the traversal converges; it may request revisits
// through an [Editor], in which case the engine loops until the revisit
// queue stays empty.
type Finalizer interface {
	Finalize()
}

// Editor gives reducers controlled access to the engine's replacement and
// revisit machinery, for rules whose effect reaches beyond the node being
// reduced (retiring branch projections, splicing a node out of its effect
// chain). Reducers never touch the revisit queue directly otherwise.
type Editor interface {
	// Replace rewires every user of node to replacement and kills node.
	Replace(node, replacement *ir.Node)

	// ReplaceWithValue routes node's users to per-kind replacements:
	// value users to value, effect users to effect, control users to
	// control. A nil effect or control defaults to node's own effect or
	// control input, splicing node out of that chain. IfSuccess users
	// are replaced wholesale by control; IfException users are
	// redirected to the dead sentinel. node itself is left alive for
	// the caller to kill or replace.
	ReplaceWithValue(node, value, effect, control *ir.Node)

	// Revisit queues node for re-examination if it has already been
	// visited. Safe to call speculatively.
	Revisit(node *ir.Node)
}
