// Package futex maps the blocking primitives a target would hand to the
// kernel onto the cooperative runtime.
//
// The interception itself happens outside the engine (a shim over
// sched_yield and the futex syscall); what lives here is the cooperative
// meaning of each call. A wait records the (address, value) pair on the
// running task and yields: the task stays blocked while *addr still holds
// the value, re-checked at scheduling time. A wake is just a yield, since
// the woken waiter notices the changed word on its own.
//
// This models the single-writer, single-waiter pattern. Multi-waiter futex
// semantics (wake N, requeue) are not modeled.
package futex
