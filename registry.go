package ltest

import (
	"github.com/dmitrii-artuhov/ltest/coro"
)

type (
	// Generator produces the argument tuple for a fresh task on the given
	// thread slot.
	Generator func(threadID int) []coro.Value

	// Apply invokes the registered method against the target. It runs as
	// the body of a task and must yield through p at every instrumented
	// point.
	Apply func(p *coro.Proc, target any, args []coro.Value) coro.Value
)

// taskBuilders is the process-wide builder registry, populated during
// initialization and immutable afterwards.
var taskBuilders []coro.Builder

// RegisterMethod registers a target method under name. Tasks built from it
// draw their arguments from gen; a token argument, if generated, is
// attached to the task so parking works.
func RegisterMethod(name string, gen Generator, apply Apply) {
	Register(coro.NewBuilder(name, func(target any, threadID, taskID int) *coro.Task {
		args := gen(threadID)
		t := coro.NewTask(taskID, name, target, args, coro.Func(apply))
		for _, arg := range args {
			if tk, ok := coro.AsToken(arg); ok {
				t.SetToken(tk)
				break
			}
		}
		return t
	}))
}

// Register adds a prebuilt task builder to the registry.
func Register(b coro.Builder) {
	taskBuilders = append(taskBuilders, b)
}

// Builders returns the registered builders.
func Builders() []coro.Builder {
	return taskBuilders
}
