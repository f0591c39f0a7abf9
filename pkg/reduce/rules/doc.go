// Package rules provides the standard reduction rules shipped with the
// flywheel pipeline: constant folding, strength reduction, phi
// simplification, dead-branch elimination, and a finalizing dead-code
// sweep.
//
// Each rule is an independent [reduce.Reducer]; the engine decides when
// and in what order nodes are examined, the rules only decide what to
// rewrite. Rules that retire nodes beyond the one being reduced (branch
// projections, batched sweeps) do so through the engine's
// [reduce.Editor].
package rules
