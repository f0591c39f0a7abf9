package ir

import (
	"fmt"
	"slices"
)

// NodeID is a stable node identifier ordered by creation time: a node
// created later always has a strictly greater ID.
type NodeID uint32

// Kind classifies an edge as carrying a data value, an effect-ordering
// dependency, or control flow.
type Kind uint8

const (
	KindValue Kind = iota
	KindEffect
	KindControl
)

// String returns "value", "effect", or "control".
func (k Kind) String() string {
	switch k {
	case KindValue:
		return "value"
	case KindEffect:
		return "effect"
	case KindControl:
		return "control"
	}
	return fmt.Sprintf("Kind(%d)", uint8(k))
}

// Node is a vertex in the IR graph: an operator, an ordered input list,
// and a reverse list of edges that use this node. Create nodes with
// [Graph.NewNode]; the zero value is not usable.
type Node struct {
	id     NodeID
	op     *Operator
	inputs []*Node
	uses   []Edge
	dead   bool
}

// ID returns the node's stable identifier.
func (n *Node) ID() NodeID { return n.id }

// Op returns the node's operator.
func (n *Node) Op() *Operator { return n.op }

// SetOp replaces the node's operator in place. Input edges are
// reclassified against the new operator's arities; the caller is
// responsible for keeping the input list consistent.
func (n *Node) SetOp(op *Operator) { n.op = op }

// IsDead reports whether the node has been killed.
func (n *Node) IsDead() bool { return n.dead }

// InputCount returns the number of inputs currently attached.
func (n *Node) InputCount() int { return len(n.inputs) }

// InputAt returns the input at position i. It panics if i is out of range.
func (n *Node) InputAt(i int) *Node { return n.inputs[i] }

// Inputs returns a copy of the input list.
func (n *Node) Inputs() []*Node { return slices.Clone(n.inputs) }

// ReplaceInput redirects the input at position i to target, maintaining
// both use lists. Replacing an input with itself is a no-op.
func (n *Node) ReplaceInput(i int, target *Node) {
	old := n.inputs[i]
	if old == target {
		return
	}
	old.removeUse(n, i)
	n.inputs[i] = target
	target.addUse(n, i)
}

// AppendInput attaches target as a new last input.
func (n *Node) AppendInput(target *Node) {
	n.inputs = append(n.inputs, target)
	target.addUse(n, len(n.inputs)-1)
}

// TrimInputs drops all inputs at position count and beyond, detaching the
// node from the corresponding producers' use lists.
func (n *Node) TrimInputs(count int) {
	for i := count; i < len(n.inputs); i++ {
		n.inputs[i].removeUse(n, i)
	}
	n.inputs = n.inputs[:count]
}

// Kill clears all inputs, detaches the node from every producer's use
// list, and marks it dead. Killing an already-dead node is a no-op.
// Edges pointing at the node are left for the caller to rewire first.
func (n *Node) Kill() {
	if n.dead {
		return
	}
	n.TrimInputs(0)
	n.dead = true
}

// UseCount returns the number of edges currently pointing at the node.
func (n *Node) UseCount() int { return len(n.uses) }

// Uses returns the nodes that currently use this node, one entry per
// edge. The returned slice is a snapshot safe to iterate while rewiring.
func (n *Node) Uses() []*Node {
	users := make([]*Node, len(n.uses))
	for i, e := range n.uses {
		users[i] = e.user
	}
	return users
}

// UseEdges returns a snapshot of the edges pointing at the node. Each
// edge stays valid while its user keeps an input at that position, even
// if the edge is redirected during iteration.
func (n *Node) UseEdges() []Edge { return slices.Clone(n.uses) }

// String returns a short "id: Op" description.
func (n *Node) String() string { return fmt.Sprintf("%d: %s", n.id, n.op) }

func (n *Node) addUse(user *Node, index int) {
	n.uses = append(n.uses, Edge{user: user, index: index})
}

func (n *Node) removeUse(user *Node, index int) {
	for i, e := range n.uses {
		if e.user == user && e.index == index {
			n.uses[i] = n.uses[len(n.uses)-1]
			n.uses = n.uses[:len(n.uses)-1]
			return
		}
	}
}

// Edge is a directed reference from a using node to a producing node at a
// fixed input position. Edge is a value type: it identifies the slot, not
// the current target, so a snapshot from [Node.UseEdges] can be iterated
// while targets are being redirected.
type Edge struct {
	user  *Node
	index int
}

// From returns the node owning the input slot.
func (e Edge) From() *Node { return e.user }

// To returns the current target of the edge.
func (e Edge) To() *Node { return e.user.inputs[e.index] }

// Index returns the input position within the owning node.
func (e Edge) Index() int { return e.index }

// Kind classifies the edge by its position against the owning node's
// operator: value inputs first, then effect inputs, then control inputs.
func (e Edge) Kind() Kind {
	op := e.user.op
	switch {
	case e.index < op.ValueIn:
		return KindValue
	case e.index < op.ValueIn+op.EffectIn:
		return KindEffect
	default:
		return KindControl
	}
}

// UpdateTo redirects the edge to target, fixing both use lists.
func (e Edge) UpdateTo(target *Node) {
	e.user.ReplaceInput(e.index, target)
}
