package reduce

import (
	"math"
	"time"

	"github.com/perivale/flywheel/pkg/ir"
	"github.com/perivale/flywheel/pkg/ir/verify"
	"github.com/perivale/flywheel/pkg/observability"
)

// DefaultResweepThreshold is the revisit-to-visit ratio above which the
// engine abandons surgical revisiting and re-traverses the whole graph.
// The value is a tuning heuristic: correctness only requires termination,
// which any positive threshold (or none) provides.
const DefaultResweepThreshold = 4.0

// visitState tracks how far the traversal has taken a node. The order
// matters: states up to pendingRevisit are eligible for (re-)pushing.
type visitState uint8

const (
	stateUnvisited visitState = iota
	statePendingRevisit
	stateOnStack
	stateVisited
)

// maxNodeID is the watermark used when a replacement is unbounded.
const maxNodeID = ir.NodeID(math.MaxUint32)

// frame is one entry of the resumable traversal stack: a node and the
// input position at which its scan resumes.
type frame struct {
	node   *ir.Node
	cursor int
}

// Options configures a GraphReducer.
type Options struct {
	// ResweepThreshold is the traversed-uses to visited-nodes ratio
	// that triggers a full re-traversal. Zero or negative disables
	// resweeps. See DefaultResweepThreshold.
	ResweepThreshold float64

	// LazyAliasing defers the rewiring of a replaced node's users by
	// dissolving the node into a placeholder, but only while a resweep
	// is already pending (the sweep collapses placeholders anyway, so
	// eager rewiring would do the work twice).
	LazyAliasing bool

	// Dead is the sentinel node exceptional edges are parked on when
	// their producer disappears. Allocated on the graph when nil.
	Dead *ir.Node
}

// Stats describes the work one reduction run performed.
type Stats struct {
	NodesVisited   int // stack frames retired, counting re-visits
	UsesTraversed  int // visited-to-pending transitions
	InPlaceChanges int
	Replacements   int
	Resweeps       int
}

// GraphReducer drives a set of reducers over a graph to a fixed point.
// It owns only traversal bookkeeping; nodes and edges belong to the
// graph. Not safe for concurrent use, and a single run assumes exclusive
// access to the graph. GraphReducer implements [Editor].
type GraphReducer struct {
	graph    *ir.Graph
	dead     *ir.Node
	reducers []Reducer

	threshold float64
	lazy      bool

	state   []visitState
	stack   []frame
	revisit nodeQueue

	// Heuristic counters, reset at the start of each sweep.
	visitedNodes  int
	traversedUses int
	resweep       bool

	stats Stats
}

// NewGraphReducer creates an engine for the given graph. If opts.Dead is
// nil a dead sentinel node is allocated on the graph.
func NewGraphReducer(g *ir.Graph, opts Options) *GraphReducer {
	dead := opts.Dead
	if dead == nil {
		dead = g.NewNode(ir.Dead())
	}
	return &GraphReducer{
		graph:     g,
		dead:      dead,
		threshold: opts.ResweepThreshold,
		lazy:      opts.LazyAliasing,
		state:     make([]visitState, g.NodeCount()),
	}
}

// Add registers reducers. Registration order is dispatch order, and the
// order finalizers run in.
func (r *GraphReducer) Add(reducers ...Reducer) {
	r.reducers = append(r.reducers, reducers...)
}

// Dead returns the sentinel node for unreachable control.
func (r *GraphReducer) Dead() *ir.Node { return r.dead }

// Stats returns what the engine has done since construction.
func (r *GraphReducer) Stats() Stats { return r.stats }

// ReduceGraph reduces every node reachable from the graph's end marker to
// a fixed point under all registered reducers, then runs every finalizer.
// Finalizers may queue more work; the run only terminates once the
// revisit queue stays empty.
func (r *GraphReducer) ReduceGraph() {
	start := time.Now()
	observability.Reduce().OnRunStart(r.graph.NodeCount())

	r.resweep = false
	r.visitedNodes = 0
	r.traversedUses = 0
	clear(r.state)
	r.run(r.graph.End())

	observability.Reduce().OnRunFinish(r.stats.NodesVisited, time.Since(start))
}

// run is the driver loop: process the top stack frame while there is
// one, otherwise drain the revisit queue, otherwise resweep if the
// heuristic fired, otherwise finalize and stop.
func (r *GraphReducer) run(root *ir.Node) {
	r.push(root)
	for {
		switch {
		case len(r.stack) > 0:
			r.reduceTop()

		case r.revisit.len() > 0:
			node := r.revisit.pop()
			// State can change while queued; stale entries are dropped.
			if r.stateOf(node) == statePendingRevisit {
				r.push(node)
			}

		case r.resweepDue():
			r.stats.Resweeps++
			observability.Reduce().OnResweep(r.stats.Resweeps)
			r.resweep = false
			r.visitedNodes = 0
			r.traversedUses = 0
			clear(r.state)
			r.push(r.graph.End())

		default:
			for _, reducer := range r.reducers {
				if f, ok := reducer.(Finalizer); ok {
					f.Finalize()
				}
			}
			if r.revisit.len() == 0 {
				return
			}
		}
	}
}

// reduceTop processes the node on top of the stack, pushing an input,
// popping the node, or both.
func (r *GraphReducer) reduceTop() {
	top := len(r.stack) - 1
	node := r.stack[top].node

	if node.IsDead() {
		r.pop() // killed while on stack
		return
	}

	// Scan inputs from the saved cursor, wrapping around so every input
	// is checked exactly once per visit of this frame.
	count := node.InputCount()
	start := 0
	if r.stack[top].cursor < count {
		start = r.stack[top].cursor
	}
	for i := start; i < count; i++ {
		if r.scanInput(top, node, i) {
			return
		}
	}
	for i := 0; i < start; i++ {
		if r.scanInput(top, node, i) {
			return
		}
	}

	// Placeholders are never reduced, only dissolved by their readers.
	if node.Op().Opcode == ir.OpPlaceholder {
		r.pop()
		return
	}

	// Remember the ID high-water mark before the reduction runs, so the
	// replacement protocol can tell pre-existing users from users the
	// reduction itself created.
	watermark := ir.NodeID(r.graph.NodeCount() - 1)

	reduction := r.ReduceNode(node)
	if !reduction.Changed() {
		r.pop()
		return
	}

	replacement := reduction.Replacement()
	observability.Reduce().OnNodeChanged(uint32(node.ID()), node.Op().String(), replacement == node)

	if replacement == node {
		// In-place update: the inputs may have changed, extend the DFS
		// over any that are now unvisited before popping.
		for i := 0; i < node.InputCount(); i++ {
			input := node.InputAt(i)
			if input != node && r.stateOf(input) <= statePendingRevisit {
				r.stack[top].cursor = i + 1
				r.push(input)
				return
			}
		}
	}

	r.pop()

	if replacement != node {
		r.replace(node, replacement, watermark)
	} else {
		r.stats.InPlaceChanges++
		// If the resweep heuristic just fired the imminent full sweep
		// covers propagation; otherwise revisit all current users.
		if !r.resweepDue() {
			for _, user := range node.Uses() {
				if user != node {
					r.Revisit(user)
				}
			}
		}
	}
}

// scanInput examines one input of the frame at stack position top. It
// collapses placeholder chains in place and suspends the frame when the
// input needs to be traversed first, returning true in that case.
func (r *GraphReducer) scanInput(top int, node *ir.Node, i int) bool {
	input := node.InputAt(i)
	if input.Op().Opcode == ir.OpPlaceholder {
		// Chase the chain to the real producer and rewrite the edge,
		// bounding the length any later reader can encounter.
		for input.Op().Opcode == ir.OpPlaceholder {
			input = input.InputAt(0)
		}
		node.ReplaceInput(i, input)
	}
	if input != node && r.stateOf(input) <= statePendingRevisit {
		// Save the cursor before pushing: the push may grow the stack.
		r.stack[top].cursor = i + 1
		r.push(input)
		return true
	}
	return false
}

// ReduceNode applies every registered reducer to node once and returns
// the aggregate result. An in-place change restarts the iteration from
// the first reducer but permanently skips the reducer that just fired;
// a replacement wins immediately. This is also the standalone entry
// point for applying the rule set without a graph traversal.
func (r *GraphReducer) ReduceNode(node *ir.Node) Reduction {
	skip := -1
	for i := 0; i < len(r.reducers); {
		if i != skip {
			reduction := r.reducers[i].Reduce(node)
			switch {
			case !reduction.Changed():
				// No change from this reducer.
			case reduction.Replacement() == node:
				// In-place update: other rules may now apply, but the
				// one that just fired must not immediately re-claim
				// progress on its own output.
				skip = i
				i = 0
				continue
			default:
				return reduction
			}
		}
		i++
	}
	if skip == -1 {
		return NoChange()
	}
	// At least one reducer changed the node in place.
	return Changed(node)
}

// Replace rewires every user of node to replacement and kills node.
// Part of the [Editor] surface for reducers.
func (r *GraphReducer) Replace(node, replacement *ir.Node) {
	r.replace(node, replacement, maxNodeID)
}

// replace commits a replacement. Users at or below the watermark existed
// before the reduction step and are rewired; newer users keep their
// references. An unbounded watermark additionally kills node and chooses
// between the eager and lazy protocols.
func (r *GraphReducer) replace(node, replacement *ir.Node, watermark ir.NodeID) {
	if node == r.graph.Start() {
		r.graph.SetStart(replacement)
	}
	if node == r.graph.End() {
		r.graph.SetEnd(replacement)
	}
	r.stats.Replacements++
	observability.Reduce().OnReplace(uint32(node.ID()), uint32(replacement.ID()))

	if replacement.ID() <= watermark {
		if r.lazy && r.resweepDue() {
			r.replaceLazily(node, replacement)
			return
		}
		for _, edge := range node.UseEdges() {
			user := edge.From()
			verify.EdgeReplacement(edge, replacement)
			edge.UpdateTo(replacement)
			if user != node {
				r.Revisit(user)
			}
		}
		node.Kill()
		return
	}

	// The replacement was created by the reduction itself. Rewire only
	// pre-existing users; nodes created during the step may reference
	// the old node deliberately.
	for _, edge := range node.UseEdges() {
		user := edge.From()
		if user.ID() <= watermark {
			edge.UpdateTo(replacement)
			if user != node {
				r.Revisit(user)
			}
		}
	}
	if node.UseCount() == 0 {
		node.Kill()
	}
	// The replacement may itself be reducible.
	r.recurse(replacement)
}

// replaceLazily dissolves node into a placeholder aliasing replacement
// instead of rewiring its users, deferring that work to the readers and
// the imminent full sweep.
func (r *GraphReducer) replaceLazily(node, replacement *ir.Node) {
	op := replacement.Op()
	hasValue := op.ValueOut > 0
	hasEffect := op.EffectOut > 0
	hasControl := op.ControlOut > 0
	total := 0
	for _, has := range []bool{hasValue, hasEffect, hasControl} {
		if has {
			total++
		}
	}
	if total == 0 || node.UseCount() == 0 {
		// Nothing to alias.
		node.Kill()
		return
	}

	target := replacement
	for target.Op().Opcode == ir.OpPlaceholder {
		target = target.InputAt(0)
	}

	node.TrimInputs(0)
	for i := 0; i < total; i++ {
		node.AppendInput(target)
	}
	node.SetOp(ir.Placeholder(hasValue, hasEffect, hasControl))
}

// ReplaceWithValue routes node's users to per-kind replacements; see
// [Editor]. Control-flow projections get special topology handling: an
// IfSuccess marker is replaced wholesale by the control replacement, and
// an IfException marker is redirected to the dead sentinel because the
// exceptional edge can no longer be taken.
func (r *GraphReducer) ReplaceWithValue(node, value, effect, control *ir.Node) {
	if effect == nil && node.Op().EffectIn > 0 {
		effect = ir.EffectInput(node)
	}
	if control == nil && node.Op().ControlIn > 0 {
		control = ir.ControlInput(node)
	}

	for _, edge := range node.UseEdges() {
		user := edge.From()
		switch edge.Kind() {
		case ir.KindControl:
			switch user.Op().Opcode {
			case ir.OpIfSuccess:
				r.Replace(user, control)
			case ir.OpIfException:
				edge.UpdateTo(r.dead)
				r.Revisit(user)
			default:
				edge.UpdateTo(control)
				r.Revisit(user)
			}
		case ir.KindEffect:
			edge.UpdateTo(effect)
			r.Revisit(user)
		default:
			edge.UpdateTo(value)
			r.Revisit(user)
		}
	}
}

// Revisit queues node for re-examination. Only nodes that have finished a
// visit transition to the pending state; anything else is a no-op, which
// makes speculative calls and duplicate queue entries harmless.
func (r *GraphReducer) Revisit(node *ir.Node) {
	if r.stateOf(node) == stateVisited {
		r.traversedUses++
		r.stats.UsesTraversed++
		observability.Reduce().OnRevisit(uint32(node.ID()))
		r.setState(node, statePendingRevisit)
		r.revisit.push(node)
	}
}

// resweepDue reports whether a full re-traversal is pending. Once the
// traversed-uses to visited-nodes ratio crosses the threshold the
// decision is sticky until the sweep starts.
func (r *GraphReducer) resweepDue() bool {
	if r.resweep {
		return true
	}
	if r.threshold <= 0 {
		return false
	}
	if r.visitedNodes > 0 && float64(r.traversedUses)/float64(r.visitedNodes) > r.threshold {
		r.resweep = true
	}
	return r.resweep
}

// recurse pushes node unless it is already on the stack or visited.
func (r *GraphReducer) recurse(node *ir.Node) bool {
	if r.stateOf(node) > statePendingRevisit {
		return false
	}
	r.push(node)
	return true
}

func (r *GraphReducer) push(node *ir.Node) {
	r.setState(node, stateOnStack)
	r.stack = append(r.stack, frame{node: node})
}

func (r *GraphReducer) pop() {
	node := r.stack[len(r.stack)-1].node
	r.setState(node, stateVisited)
	r.visitedNodes++
	r.stats.NodesVisited++
	r.stack = r.stack[:len(r.stack)-1]
}

func (r *GraphReducer) stateOf(node *ir.Node) visitState {
	id := int(node.ID())
	if id >= len(r.state) {
		return stateUnvisited
	}
	return r.state[id]
}

func (r *GraphReducer) setState(node *ir.Node, s visitState) {
	id := int(node.ID())
	if id >= len(r.state) {
		grown := make([]visitState, id+1)
		copy(grown, r.state)
		r.state = grown
	}
	r.state[id] = s
}

// nodeQueue is a FIFO of nodes awaiting re-examination.
type nodeQueue struct {
	items []*ir.Node
	head  int
}

func (q *nodeQueue) len() int { return len(q.items) - q.head }

func (q *nodeQueue) push(n *ir.Node) { q.items = append(q.items, n) }

func (q *nodeQueue) pop() *ir.Node {
	n := q.items[q.head]
	q.items[q.head] = nil
	q.head++
	if q.head == len(q.items) {
		q.items = q.items[:0]
		q.head = 0
	}
	return n
}
