package rules

import (
	"github.com/perivale/flywheel/pkg/ir"
	"github.com/perivale/flywheel/pkg/reduce"
)

// DeadBranchElimination folds branches whose condition is a constant.
// The taken projection is wired straight to the branch's incoming
// control, the untaken projection is routed to the dead sentinel, and
// the branch itself is retired. Retiring the projections goes through
// the engine's editor so their users get revisited.
type DeadBranchElimination struct {
	editor reduce.Editor
	dead   *ir.Node
}

// NewDeadBranchElimination creates the rule. dead is the sentinel that
// untaken projections are routed to, normally the engine's own.
func NewDeadBranchElimination(editor reduce.Editor, dead *ir.Node) *DeadBranchElimination {
	return &DeadBranchElimination{editor: editor, dead: dead}
}

// Reduce implements reduce.Reducer.
func (r *DeadBranchElimination) Reduce(n *ir.Node) reduce.Reduction {
	if n.Op().Opcode != ir.OpBranch {
		return reduce.NoChange()
	}
	cond := n.InputAt(0)
	if cond.Op().Opcode != ir.OpInt64Constant {
		return reduce.NoChange()
	}
	taken := ir.OpIfTrue
	if cond.Op().Value == 0 {
		taken = ir.OpIfFalse
	}
	control := n.InputAt(1)

	for _, e := range n.UseEdges() {
		user := e.From()
		switch user.Op().Opcode {
		case ir.OpIfTrue, ir.OpIfFalse:
			if user.Op().Opcode == taken {
				r.editor.Replace(user, control)
			} else {
				r.editor.Replace(user, r.dead)
			}
		}
	}
	return reduce.Replace(r.dead)
}
