package ir

import "slices"

// Graph is an arena of IR nodes with designated start and end markers.
// Node IDs are assigned sequentially, so the arena doubles as an ID
// high-water mark. The zero value is not usable - use New.
type Graph struct {
	nodes []*Node
	start *Node
	end   *Node
}

// New creates an empty graph.
func New() *Graph {
	return &Graph{}
}

// NewNode allocates a node with the given operator and initial inputs.
// The node's ID is strictly greater than every previously allocated ID.
func (g *Graph) NewNode(op *Operator, inputs ...*Node) *Node {
	n := &Node{id: NodeID(len(g.nodes)), op: op}
	g.nodes = append(g.nodes, n)
	for _, input := range inputs {
		n.AppendInput(input)
	}
	return n
}

// NodeCount returns the number of nodes ever allocated, including dead
// ones. NodeCount-1 is the current ID high-water mark.
func (g *Graph) NodeCount() int { return len(g.nodes) }

// Node returns the node with the given ID, or nil if it was never
// allocated. Dead nodes are still returned.
func (g *Graph) Node(id NodeID) *Node {
	if int(id) >= len(g.nodes) {
		return nil
	}
	return g.nodes[id]
}

// Start returns the designated entry node.
func (g *Graph) Start() *Node { return g.start }

// End returns the designated exit node. Reduction runs are rooted here.
func (g *Graph) End() *Node { return g.end }

// SetStart designates the entry node.
func (g *Graph) SetStart(n *Node) { g.start = n }

// SetEnd designates the exit node.
func (g *Graph) SetEnd(n *Node) { g.end = n }

// Reachable returns the live nodes reachable from the end node through
// input edges, in ascending ID order. Returns nil if no end is set.
func (g *Graph) Reachable() []*Node {
	if g.end == nil {
		return nil
	}
	seen := make(map[NodeID]bool, len(g.nodes))
	queue := []*Node{g.end}
	seen[g.end.id] = true
	var live []*Node
	for len(queue) > 0 {
		n := queue[0]
		queue = queue[1:]
		if n.IsDead() {
			continue
		}
		live = append(live, n)
		for _, input := range n.Inputs() {
			if !seen[input.id] {
				seen[input.id] = true
				queue = append(queue, input)
			}
		}
	}
	slices.SortFunc(live, func(a, b *Node) int { return int(a.id) - int(b.id) })
	return live
}
