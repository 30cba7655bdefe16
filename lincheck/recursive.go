package lincheck

import (
	"github.com/dmitrii-artuhov/ltest/history"
)

// CheckerRecursive is the plain backtracking formulation of the WGL search,
// without the state cache. It is slow but small, and exists to stress-test
// the iterative implementation: both must return the same verdict on every
// input.
type CheckerRecursive struct {
	methods MethodMap
	initial State
}

// NewCheckerRecursive builds the reference checker.
func NewCheckerRecursive(methods MethodMap, initial State) *CheckerRecursive {
	return &CheckerRecursive{methods: methods, initial: initial}
}

// Check reports whether h is linearizable.
func (c *CheckerRecursive) Check(h history.Sequential) bool {
	if len(h) == 0 {
		return true
	}
	invRes := h.InvResMapping()
	linearized := make([]bool, len(h))
	return c.step(h, invRes, linearized, len(h), c.initial.Clone())
}

// step tries every not-yet-linearized minimal invoke in turn, recursing on
// each match. remaining counts events still to linearize.
func (c *CheckerRecursive) step(h history.Sequential, invRes map[int]int, linearized []bool, remaining int, state State) bool {
	if remaining == 0 {
		return true
	}

	for i, ev := range h {
		if linearized[i] {
			continue
		}
		// The first pending response bounds the minimal operations: nothing
		// past it may linearize before it does.
		if ev.Kind == history.Response {
			break
		}

		candidate := state.Clone()
		res := apply(c.methods, candidate, ev)

		resIdx, hasResponse := invRes[i]
		if !hasResponse {
			linearized[i] = true
			if c.step(h, invRes, linearized, remaining-1, candidate) {
				return true
			}
			linearized[i] = false
			continue
		}

		if res.Equal(h[resIdx].Result) {
			linearized[i] = true
			linearized[resIdx] = true
			if c.step(h, invRes, linearized, remaining-2, candidate) {
				return true
			}
			linearized[i] = false
			linearized[resIdx] = false
		}
	}

	return false
}
