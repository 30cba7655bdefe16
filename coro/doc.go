// Package coro implements the cooperative task runtime underpinning the
// verification engine.
//
// A [Task] is a single execution of one method on the system under test,
// backed by a goroutine that is suspended at every yield point. Control is
// transferred by strict handoff: [Task.Resume] runs the task up to its next
// yield (or return) and does not come back before the task has parked itself
// again, so exactly one of the scheduler and the running task holds control
// at any moment. There is no preemption; ordering between tasks is entirely
// decided by whoever calls Resume.
//
// Tasks are created by a [Builder], mutated only between Resume calls, and
// destroyed at round teardown, after they have returned (forcibly drained by
// [Task.Terminate] if necessary).
package coro
