package lincheck

import (
	"fmt"

	"github.com/dmitrii-artuhov/ltest/coro"
	"github.com/dmitrii-artuhov/ltest/history"
)

type (
	// State is a copy-assignable value implementing the sequential
	// reference semantics of the target. Clone must produce an independent
	// copy; Hash and Equal decide state identity for the checker's cache.
	State interface {
		Clone() State
		Hash() uint64
		Equal(other State) bool
	}

	// Method applies one operation to a specification state, mutating it in
	// place and returning the operation's value. Methods always receive a
	// clone, never the checker's working state.
	Method func(s State, args []coro.Value) coro.Value

	// MethodMap maps method names to their sequential semantics.
	MethodMap map[string]Method

	// Checker is the iterative WGL linearizability checker.
	Checker struct {
		methods MethodMap
		initial State
	}
)

// NewChecker builds a checker over the given specification, starting every
// search from initial.
func NewChecker(methods MethodMap, initial State) *Checker {
	return &Checker{methods: methods, initial: initial}
}

// Check reports whether h is linearizable: whether some permutation of the
// events preserves the real-time order between responses and later invokes,
// keeps each task's invoke before its response, and replays against the
// specification producing every recorded return value. Invokes without a
// response may linearize at any point after their invoke, or not at all.
func (c *Checker) Check(h history.Sequential) bool {
	n := len(h)
	if n == 0 {
		return true
	}

	state := c.initial.Clone()
	invRes := h.InvResMapping()
	linearized := make([]bool, n)
	count := 0
	// Invoke indexes of the currently open sections, with the state saved
	// before each was applied.
	var openSections []int
	var states []State
	cache := newStateCache()
	cursor := 0

	for count != n {
		if linearized[cursor] {
			cursor++
			continue
		}

		ev := h[cursor]
		if ev.Kind == history.Invoke {
			candidate := state.Clone()
			res := apply(c.methods, candidate, ev)

			resIdx, hasResponse := invRes[cursor]
			matches := !hasResponse || res.Equal(h[resIdx].Result)
			seen := false
			if matches {
				linearized[cursor] = true
				count++
				if hasResponse {
					linearized[resIdx] = true
					count++
				}
				seen = cache.putIfAbsent(linearized, candidate)
				if seen {
					// Equal subproblem already explored; undo the marks.
					linearized[cursor] = false
					count--
					if hasResponse {
						linearized[resIdx] = false
						count--
					}
				}
			}

			if matches && !seen {
				openSections = append(openSections, cursor)
				states = append(states, state)
				state = candidate
				cursor = 0
			} else {
				cursor++
			}
			continue
		}

		// A response: given the prior choices this one cannot start a
		// minimal operation, so backtrack the innermost open section.
		if len(openSections) == 0 {
			return false
		}
		state = states[len(states)-1]
		states = states[:len(states)-1]
		lastInv := openSections[len(openSections)-1]
		openSections = openSections[:len(openSections)-1]

		linearized[lastInv] = false
		count--
		if resIdx, ok := invRes[lastInv]; ok {
			linearized[resIdx] = false
			count--
		}
		cursor = lastInv + 1
	}

	return true
}

func apply(methods MethodMap, s State, ev history.Event) coro.Value {
	method, ok := methods[ev.Method]
	if !ok {
		panic(fmt.Sprintf(`lincheck: method %q is not in the specification`, ev.Method))
	}
	return method(s, ev.Args)
}
