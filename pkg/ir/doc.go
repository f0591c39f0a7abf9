// Package ir implements the sea-of-nodes intermediate representation that
// the reduction engine operates on.
//
// The graph is an arena of nodes addressed by stable integer identifiers.
// Identifiers are assigned in creation order, so a newer node always has a
// strictly greater ID than an older one - the reduction engine relies on
// this to distinguish pre-existing users from users created mid-reduction.
//
// # Edges
//
// Each node holds an ordered list of input nodes. Input positions are
// classified into three kinds by the node's operator: value inputs come
// first, then effect inputs, then control inputs. An [Edge] is a (user,
// position) pair; its kind is derived from the position, never stored.
// Every node also maintains a reverse use list mirroring the inputs that
// point at it, so redirecting an edge fixes both sides.
//
// # Mutation
//
// Nodes are mutable in place: inputs can be replaced, appended, and
// trimmed, and the operator itself can be swapped (the reduction engine
// uses this to turn a replaced node into a transparent placeholder).
// Killing a node clears its inputs, detaches it from all producers' use
// lists, and marks it dead; killing an already-dead node is a no-op.
//
// The graph is not safe for concurrent use.
package ir
