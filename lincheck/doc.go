// Package lincheck decides whether an observed concurrent history can be
// linearized against a sequential specification.
//
// The workhorse is [Checker], an iterative Wing-Gong-Lowe search with a
// cache of (linearized-set, specification-state) pairs that prunes
// equivalent subproblems. [CheckerRecursive] is the plain backtracking
// formulation of the same search, kept as a reference implementation: the
// two must agree on every input, and the tests hold them to that.
//
// The specification is a [MethodMap] of pure functions over a copyable
// [State]. The checker stores states by value (via Clone), never by
// reference, and compares return values with the comparator carried inside
// each value wrapper.
package lincheck
