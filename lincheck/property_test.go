package lincheck

import (
	"testing"

	"pgregory.net/rapid"

	"github.com/dmitrii-artuhov/ltest/coro"
	"github.com/dmitrii-artuhov/ltest/history"
)

// genHistory draws a small well-formed register history: every response has
// a prior invoke of the same task, some invokes stay pending, and recorded
// results are drawn loosely so both verdicts occur.
func genHistory(t *rapid.T) history.Sequential {
	tasks := rapid.IntRange(1, 5).Draw(t, `tasks`)

	type pending struct {
		id     int
		method string
	}
	var h history.Sequential
	var open []pending
	nextID := 0

	steps := rapid.IntRange(tasks, 2*tasks).Draw(t, `steps`)
	for i := 0; i < steps; i++ {
		if len(open) == 0 && nextID == tasks {
			break
		}
		invokeMore := nextID < tasks && (len(open) == 0 || rapid.Boolean().Draw(t, `invoke`))
		if invokeMore {
			method := `add`
			if rapid.Boolean().Draw(t, `isGet`) {
				method = `get`
			}
			h = append(h, inv(nextID, nextID, method))
			open = append(open, pending{id: nextID, method: method})
			nextID++
			continue
		}

		k := rapid.IntRange(0, len(open)-1).Draw(t, `respond`)
		p := open[k]
		open = append(open[:k], open[k+1:]...)
		result := coro.Void
		if p.method == `get` {
			result = coro.NewValue(rapid.IntRange(0, tasks).Draw(t, `result`))
		}
		h = append(h, res(p.id, p.id, p.method, result))
	}
	return h
}

// P4: the iterative and recursive checkers agree on every input.
func TestCheckersCrossConsistency(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		h := genHistory(t)
		iterative := NewChecker(registerMethods, &registerState{}).Check(h)
		recursive := NewCheckerRecursive(registerMethods, &registerState{}).Check(h)
		if iterative != recursive {
			t.Fatalf(`iterative=%v recursive=%v on %v`, iterative, recursive, h)
		}
	})
}

// P1: an accepted history stays accepted after swapping adjacent events
// that do not share a task and do not move a response ahead of the invoke
// just before it (swapping a response past a later invoke only drops a
// precedence constraint, so it is kept).
func TestAcceptedHistoryStableUnderLegalSwaps(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		h := genHistory(t)
		c := NewChecker(registerMethods, &registerState{})
		if !c.Check(h) {
			t.Skip(`only accepted histories constrain P1`)
		}
		if len(h) < 2 {
			t.Skip(`nothing to swap`)
		}

		i := rapid.IntRange(0, len(h)-2).Draw(t, `swap`)
		a, b := h[i], h[i+1]
		if a.TaskID == b.TaskID {
			t.Skip(`events share a task`)
		}
		if a.Kind == history.Invoke && b.Kind == history.Response {
			// Moving the response first would order task b before task a,
			// a constraint the original history does not have.
			t.Skip(`swap would introduce a precedence constraint`)
		}

		swapped := append(history.Sequential(nil), h...)
		swapped[i], swapped[i+1] = swapped[i+1], swapped[i]
		if !c.Check(swapped) {
			t.Fatalf(`legal swap at %d flipped the verdict: %v`, i, swapped)
		}
	})
}

// Verdicts are reproducible: the checker keeps no state between calls.
func TestCheckIsPure(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		h := genHistory(t)
		c := NewChecker(registerMethods, &registerState{})
		first := c.Check(h)
		for i := 0; i < 3; i++ {
			if c.Check(h) != first {
				t.Fatal(`verdict changed on re-check`)
			}
		}
	})
}
