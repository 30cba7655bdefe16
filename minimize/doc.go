// Package minimize shrinks a failing round to a smaller round that still
// fails.
//
// All minimizors work on the set of live tasks (those not marked removed)
// and preserve non-linearizability: a candidate removal is committed only
// after the reduced round has been re-verified to fail, and rolled back
// otherwise. A minimizor never reports failure; if nothing can be shrunk it
// leaves its input unchanged.
//
// [SameInterleaving] and [StrategyExploration] are greedy: they try each
// task, then each pair of tasks (pairs catch matched add/remove semantics),
// differing in how a candidate is re-verified. [Smart] is a genetic search
// over survival masks, scoring candidates by how few tasks and threads
// survive.
package minimize
