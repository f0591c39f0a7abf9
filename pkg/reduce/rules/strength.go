package rules

import (
	"github.com/perivale/flywheel/pkg/ir"
	"github.com/perivale/flywheel/pkg/reduce"
)

// StrengthReduction rewrites arithmetic into cheaper equivalents:
// identities (x+0, x-0, x*1, x/1, x<<0, x>>0) collapse to x, x*0
// collapses to 0, multiplication by a power of two becomes a shift, and
// commutative operations are canonicalized to keep the constant on the
// right. The shift and canonicalization rewrites mutate the node in
// place, which lets the other rules take another look at it.
type StrengthReduction struct {
	graph *ir.Graph
}

// NewStrengthReduction creates the rule. Shift amounts are allocated on g.
func NewStrengthReduction(g *ir.Graph) *StrengthReduction {
	return &StrengthReduction{graph: g}
}

// Reduce implements reduce.Reducer.
func (r *StrengthReduction) Reduce(n *ir.Node) reduce.Reduction {
	switch n.Op().Opcode {
	case ir.OpAdd, ir.OpSub, ir.OpMul, ir.OpDiv, ir.OpShl, ir.OpShr:
	default:
		return reduce.NoChange()
	}

	switch n.Op().Opcode {
	case ir.OpAdd, ir.OpMul:
		// Canonicalize: constant operand on the right.
		if isConstant(n.InputAt(0)) && !isConstant(n.InputAt(1)) {
			lhs := n.InputAt(0)
			n.ReplaceInput(0, n.InputAt(1))
			n.ReplaceInput(1, lhs)
			return reduce.Changed(n)
		}
	}

	rhs := n.InputAt(1)
	switch n.Op().Opcode {
	case ir.OpAdd, ir.OpSub:
		if constantValue(rhs, 0) {
			return reduce.Replace(n.InputAt(0))
		}
	case ir.OpMul:
		switch {
		case constantValue(rhs, 1):
			return reduce.Replace(n.InputAt(0))
		case constantValue(rhs, 0):
			return reduce.Replace(r.graph.NewNode(ir.Int64Constant(0)))
		case isConstant(rhs) && isPowerOfTwo(rhs.Op().Value):
			n.SetOp(ir.Shl())
			n.ReplaceInput(1, r.graph.NewNode(ir.Int64Constant(log2(rhs.Op().Value))))
			return reduce.Changed(n)
		}
	case ir.OpDiv:
		if constantValue(rhs, 1) {
			return reduce.Replace(n.InputAt(0))
		}
	case ir.OpShl, ir.OpShr:
		if constantValue(rhs, 0) {
			return reduce.Replace(n.InputAt(0))
		}
	}
	return reduce.NoChange()
}

func isConstant(n *ir.Node) bool {
	return n.Op().Opcode == ir.OpInt64Constant
}

func constantValue(n *ir.Node, v int64) bool {
	return isConstant(n) && n.Op().Value == v
}

func isPowerOfTwo(v int64) bool {
	return v > 1 && v&(v-1) == 0
}

func log2(v int64) int64 {
	var k int64
	for v > 1 {
		v >>= 1
		k++
	}
	return k
}
