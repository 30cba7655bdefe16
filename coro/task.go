package coro

import "fmt"

// terminateSpinLimit bounds how many resumes Terminate will issue before
// concluding the task is stuck in a mis-instrumented loop.
const terminateSpinLimit = 10_000_000

type (
	// Func is the suspendable body of a task. It runs on the task's
	// goroutine and must call [Proc.Yield] at every instrumented point.
	// Its return value is published on the task when it finishes.
	Func func(p *Proc, target any, args []Value) Value

	// Task is a single execution of one method on the target. It is owned
	// by its thread slot within the strategy; everything else refers to it
	// by id for at most the lifetime of the round.
	Task struct {
		id      int
		name    string
		target  any
		args    []Value
		body    Func
		ret     Value
		token   *Token
		futex   futexState
		started bool
		// returned is only written by the task goroutine, and only read
		// between Resume calls.
		returned bool
		// removed is a logical overlay set by minimizors; it excludes the
		// task from scheduling and history extraction without destroying it.
		removed bool
		resume  chan struct{}
		yield   chan struct{}
	}

	// Proc is the capability handed to a running task body: the only legal
	// way for target code to suspend itself.
	Proc struct {
		task *Task
	}

	futexState struct {
		addr  *int32
		value int32
	}
)

// NewTask assembles a task around a suspendable body. The body does not run
// until the first Resume.
func NewTask(id int, name string, target any, args []Value, body Func) *Task {
	return &Task{
		id:     id,
		name:   name,
		target: target,
		args:   args,
		body:   body,
		resume: make(chan struct{}),
		yield:  make(chan struct{}),
	}
}

// Restart rebuilds the task from the beginning against target, keeping the
// same id, name and argument tuple. The token, if any, moves to the new task
// and is unparked. The receiver must have returned: it is the scheduler's
// job, not the task's, to decide in which order unfinished tasks are drained.
func (t *Task) Restart(target any) *Task {
	if !t.returned {
		panic(fmt.Sprintf(`coro: restart of unfinished task %d (%s)`, t.id, t.name))
	}
	nt := NewTask(t.id, t.name, target, t.args, t.body)
	if t.token != nil {
		nt.token = t.token
		nt.token.parked = false
		t.token = nil
	}
	return nt
}

// Resume transfers control to the task until it yields or returns. On
// return, either the task stopped at an instrumented suspension point, or it
// has returned and RetVal is valid.
func (t *Task) Resume() {
	if t.returned {
		panic(fmt.Sprintf(`coro: resume of returned task %d (%s)`, t.id, t.name))
	}
	if !t.started {
		t.started = true
		go t.main()
	} else {
		t.resume <- struct{}{}
	}
	<-t.yield
}

func (t *Task) main() {
	t.ret = t.body(&Proc{task: t}, t.target, t.args)
	t.returned = true
	t.yield <- struct{}{}
}

// Terminate drives the task to completion by repeated resumes. Exceeding the
// spin limit indicates a task that cannot finish without cooperation that
// will never come (for example a mis-instrumented loop) and is fatal.
func (t *Task) Terminate() {
	for spins := 0; !t.returned; spins++ {
		if spins >= terminateSpinLimit {
			panic(fmt.Sprintf(`coro: task %d (%s) is spinning too long, possible wrong terminating order`, t.id, t.name))
		}
		t.Resume()
	}
}

// ID returns the round-unique task id.
func (t *Task) ID() int { return t.id }

// Name returns the method name the task executes.
func (t *Task) Name() string { return t.name }

// Args returns the argument tuple. It is shared with history events for
// pretty printing and outlives the task within the round.
func (t *Task) Args() []Value { return t.args }

// StrArgs renders the argument tuple for the pretty printer.
func (t *Task) StrArgs() []string {
	out := make([]string, len(t.args))
	for i, a := range t.args {
		out[i] = a.String()
	}
	return out
}

// Returned reports whether the body has finished.
func (t *Task) Returned() bool { return t.returned }

// RetVal returns the published return value. Asking before the task has
// returned is a bug.
func (t *Task) RetVal() Value {
	if !t.returned {
		panic(fmt.Sprintf(`coro: return value of unfinished task %d (%s)`, t.id, t.name))
	}
	return t.ret
}

// SetRemoved marks or unmarks the task as removed from the round.
func (t *Task) SetRemoved(removed bool) { t.removed = removed }

// Removed reports whether a minimizor has excluded the task.
func (t *Task) Removed() bool { return t.removed }

// SetToken attaches a blocking token to the task.
func (t *Task) SetToken(tk *Token) { t.token = tk }

// Token returns the attached token, or nil.
func (t *Task) Token() *Token { return t.token }

// Parked reports whether the task owns a parked token, which excludes it
// from scheduling until the token is unparked.
func (t *Task) Parked() bool { return t.token != nil && t.token.parked }

// SetBlocked records a futex-like wait: the task counts as blocked while
// *addr == value. This models the single-writer, single-waiter pattern; a
// task woken for any other reason is simply rechecked at scheduling time.
func (t *Task) SetBlocked(addr *int32, value int32) {
	t.futex = futexState{addr: addr, value: value}
}

// Blocked reports whether the recorded futex wait still holds, clearing the
// record once the value has moved on.
func (t *Task) Blocked() bool {
	blocked := t.futex.addr != nil && *t.futex.addr == t.futex.value
	if !blocked {
		t.futex = futexState{}
	}
	return blocked
}

// Yield suspends the running task and returns control to the Resume caller.
func (p *Proc) Yield() {
	t := p.task
	t.yield <- struct{}{}
	<-t.resume
}

// Task returns the task the proc belongs to.
func (p *Proc) Task() *Task { return p.task }
