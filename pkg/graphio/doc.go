// Package graphio provides JSON import and export for IR graphs.
//
// # JSON Format
//
// A graph is a JSON object with a "nodes" array and "start"/"end" node
// references:
//
//	{
//	  "nodes": [
//	    {"id": 0, "op": "Start"},
//	    {"id": 1, "op": "Int64Constant", "value": 2},
//	    {"id": 2, "op": "Int64Constant", "value": 3},
//	    {"id": 3, "op": "Add", "inputs": [1, 2]},
//	    {"id": 4, "op": "Return", "inputs": [3, 0, 0]},
//	    {"id": 5, "op": "End", "inputs": [4]}
//	  ],
//	  "start": 0,
//	  "end": 5
//	}
//
// Node IDs are only references within the file; on import nodes are
// re-numbered in file order. Inputs are listed value-first, then effect,
// then control, matching the in-memory input order. Operators with a
// parametric arity (End, Merge, Loop, Phi, EffectPhi, Call) derive it
// from the length of the "inputs" array; "value" carries the payload of
// Int64Constant and Parameter nodes.
//
// Graphs may contain cycles (loops), so import wires inputs in a second
// pass after all nodes exist. Import rejects duplicate IDs, unknown
// operator names, references to undeclared nodes, and arity mismatches
// with coded errors from [github.com/perivale/flywheel/pkg/errors].
//
// Export writes the live nodes reachable from the end marker, so dead
// nodes left behind by a reduction never appear in the output. A graph
// survives an export/import round trip structurally intact.
package graphio
