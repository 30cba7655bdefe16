// Package strategy decides which task advances next.
//
// A [Strategy] owns the round's thread slots: per slot, an ordered sequence
// of tasks of which at most one is active. [Strategy.Next] grows the round
// as it schedules, building a new task whenever the picked slot is empty or
// finished; [Strategy.NextSchedule] drives the same round again without
// creating anything, which is what exploration and minimization rely on.
//
// Three policies are provided: [RoundRobin], [Random] (weighted), and [PCT]
// (priority-based probabilistic concurrency testing with a configurable bug
// depth schedule).
package strategy
