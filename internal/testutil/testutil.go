// Package testutil carries the fixtures the engine's test suites share: a
// racy register target with its sequential specification, and a scripted
// strategy that replays a predetermined schedule so driver and minimizor
// behavior can be asserted deterministically.
package testutil

import (
	"github.com/dmitrii-artuhov/ltest/coro"
	"github.com/dmitrii-artuhov/ltest/lincheck"
)

// Register is a racy register: Add splits the increment across a yield, so
// concurrent adds can lose updates.
type Register struct {
	x int
}

func (r *Register) Reset() { r.x = 0 }

// RegisterState is the sequential reference for Register.
type RegisterState struct {
	X int
}

func (s *RegisterState) Clone() lincheck.State { cp := *s; return &cp }

func (s *RegisterState) Hash() uint64 { return uint64(s.X) }

func (s *RegisterState) Equal(other lincheck.State) bool {
	o, ok := other.(*RegisterState)
	return ok && s.X == o.X
}

// RegisterMethods is the specification map for Register.
var RegisterMethods = lincheck.MethodMap{
	`add`: func(s lincheck.State, args []coro.Value) coro.Value {
		s.(*RegisterState).X++
		return coro.Void
	},
	`get`: func(s lincheck.State, args []coro.Value) coro.Value {
		return coro.NewValue(s.(*RegisterState).X)
	},
}

// AddBuilder builds racy add tasks: load, yield, store.
var AddBuilder = coro.NewBuilder(`add`, func(target any, threadID, taskID int) *coro.Task {
	return coro.NewTask(taskID, `add`, target, nil, func(p *coro.Proc, target any, args []coro.Value) coro.Value {
		r := target.(*Register)
		tmp := r.x
		p.Yield()
		r.x = tmp + 1
		return coro.Void
	})
})

// GetBuilder builds single-step get tasks.
var GetBuilder = coro.NewBuilder(`get`, func(target any, threadID, taskID int) *coro.Task {
	return coro.NewTask(taskID, `get`, target, nil, func(p *coro.Proc, target any, args []coro.Value) coro.Value {
		return coro.NewValue(target.(*Register).x)
	})
})
