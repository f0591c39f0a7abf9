// Package reduce implements a fixed-point graph-rewriting engine over the
// IR defined in [github.com/perivale/flywheel/pkg/ir].
//
// The engine drives an arbitrary set of pluggable transformation rules
// ([Reducer] implementations) to a fixed point over a mutable graph: it
// decides when each node is examined, in what order, and how a proposed
// change is committed to shared graph state. What to rewrite is entirely
// the rules' business.
//
// # Traversal
//
// [GraphReducer.ReduceGraph] walks every node reachable from the graph's
// end marker with an explicit-stack depth-first traversal. The stack is
// resumable: each frame carries a scan cursor over the node's inputs, so
// a frame can suspend when it pushes an unvisited input and pick up where
// it left off. Inputs already on the stack are treated as in progress,
// which makes cycles terminate. Nodes whose users may be affected by a
// change are queued for revisit; when the ratio of queued revisits to
// visited nodes exceeds a configurable threshold the engine gives up on
// surgical revisiting and re-traverses the whole graph instead, which
// bounds the cost of pathological revisit cascades.
//
// # Replacement
//
// A replaced node's users are normally rewired eagerly, each rewrite
// checked by the verifier. When a full resweep is already pending the
// engine can instead dissolve the node into a transparent placeholder
// that forwards readers to the replacement; the imminent sweep collapses
// placeholders as it encounters them, so the rewiring work is never done
// twice. Replacements produced mid-reduction are committed with a node-ID
// watermark so that nodes created by the reduction itself keep any
// deliberate references to the old node.
//
// The engine is single-threaded and assumes exclusive access to the graph
// for the duration of a run.
package reduce
