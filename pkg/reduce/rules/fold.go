package rules

import (
	"github.com/perivale/flywheel/pkg/ir"
	"github.com/perivale/flywheel/pkg/reduce"
)

// ConstantFolding replaces integer arithmetic over constant operands with
// the computed constant. Division and remainder by zero are left alone;
// they are the program's business, not the optimizer's.
type ConstantFolding struct {
	graph *ir.Graph
}

// NewConstantFolding creates the rule. New constants are allocated on g.
func NewConstantFolding(g *ir.Graph) *ConstantFolding {
	return &ConstantFolding{graph: g}
}

// Reduce implements reduce.Reducer.
func (r *ConstantFolding) Reduce(n *ir.Node) reduce.Reduction {
	switch n.Op().Opcode {
	case ir.OpAdd, ir.OpSub, ir.OpMul, ir.OpDiv, ir.OpMod, ir.OpShl, ir.OpShr:
	default:
		return reduce.NoChange()
	}

	lhs, rhs := n.InputAt(0), n.InputAt(1)
	if lhs.Op().Opcode != ir.OpInt64Constant || rhs.Op().Opcode != ir.OpInt64Constant {
		return reduce.NoChange()
	}
	a, b := lhs.Op().Value, rhs.Op().Value

	var result int64
	switch n.Op().Opcode {
	case ir.OpAdd:
		result = a + b
	case ir.OpSub:
		result = a - b
	case ir.OpMul:
		result = a * b
	case ir.OpDiv:
		if b == 0 {
			return reduce.NoChange()
		}
		result = a / b
	case ir.OpMod:
		if b == 0 {
			return reduce.NoChange()
		}
		result = a % b
	case ir.OpShl:
		if b < 0 || b > 63 {
			return reduce.NoChange()
		}
		result = a << uint(b)
	case ir.OpShr:
		if b < 0 || b > 63 {
			return reduce.NoChange()
		}
		result = int64(uint64(a) >> uint(b))
	}

	return reduce.Replace(r.graph.NewNode(ir.Int64Constant(result)))
}
