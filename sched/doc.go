// Package sched drives rounds to completion and hands what happened to the
// checker.
//
// [StrategyScheduler] generates interleavings through a
// [strategy.Strategy]: RunRound grows and records one interleaving,
// ExploreRound replays the current round under fresh scheduling decisions,
// and ReplayRound re-executes one exact ordering of task ids. Run is the
// top loop: it tries rounds until one is non-linearizable, shrinks the
// counterexample through the configured minimizor pipeline, and returns the
// witness histories.
//
// [TLA] is the enumerative alternative: it explores every execution within
// a preemption bound by depth-first expansion, replaying the prefix from
// scratch after each backtrack since a resumed task cannot be un-resumed.
package sched
