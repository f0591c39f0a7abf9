package rules

import (
	"github.com/perivale/flywheel/pkg/ir"
	"github.com/perivale/flywheel/pkg/reduce"
)

// PhiSimplification retires redundant merge values. A Phi (or EffectPhi)
// whose operands are all the same node, ignoring references to the phi
// itself, carries no information and is replaced by that operand. Loop
// phis that genuinely vary across iterations keep at least two distinct
// operands and are left alone.
type PhiSimplification struct{}

// NewPhiSimplification creates the rule.
func NewPhiSimplification() *PhiSimplification {
	return &PhiSimplification{}
}

// Reduce implements reduce.Reducer.
func (r *PhiSimplification) Reduce(n *ir.Node) reduce.Reduction {
	var operands int
	switch n.Op().Opcode {
	case ir.OpPhi:
		operands = n.Op().ValueIn
	case ir.OpEffectPhi:
		operands = n.Op().EffectIn
	default:
		return reduce.NoChange()
	}

	// Operands precede the trailing control input.
	var repl *ir.Node
	for i := 0; i < operands; i++ {
		in := n.InputAt(i)
		if in == n {
			continue
		}
		if repl == nil {
			repl = in
			continue
		}
		if in != repl {
			return reduce.NoChange()
		}
	}
	if repl == nil {
		// Degenerate self-loop; nothing sensible to replace it with.
		return reduce.NoChange()
	}
	return reduce.Replace(repl)
}
