package strategy

import (
	"math/rand"
	"time"

	"github.com/dmitrii-artuhov/ltest/coro"
)

// base carries the thread-slot bookkeeping shared by all strategies: the
// per-slot task sequences, the builder set, the replay schedule cursor and
// the task id counter.
type base struct {
	target   Target
	threads  [][]*coro.Task
	builders []coro.Builder
	// roundSchedule[thread] is the index of the task last scheduled in the
	// thread during replay, or -1 before the first pick.
	roundSchedule []int
	newTaskID     int
	rng           *rand.Rand
}

func newBase(target Target, threads int, builders []coro.Builder, seed int64) base {
	if threads <= 0 {
		panic(`strategy: threads must be positive`)
	}
	if len(builders) == 0 {
		panic(`strategy: no task builders registered`)
	}
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	b := base{
		target:        target,
		threads:       make([][]*coro.Task, threads),
		builders:      builders,
		roundSchedule: make([]int, threads),
		rng:           rand.New(rand.NewSource(seed)),
	}
	for i := range b.roundSchedule {
		b.roundSchedule[i] = -1
	}
	return b
}

// last returns the slot's current task, or nil if the slot is empty.
func (b *base) last(thread int) *coro.Task {
	slot := b.threads[thread]
	if len(slot) == 0 {
		return nil
	}
	return slot[len(slot)-1]
}

// waiting reports whether the slot's current task cannot be resumed right
// now. An empty slot is never waiting: a new task can always start there.
func (b *base) waiting(thread int) bool {
	t := b.last(thread)
	return t != nil && !t.Returned() && (t.Parked() || t.Blocked())
}

// nextGen serves Next for a picked slot, appending a new task when the slot
// is empty or its current task has returned.
func (b *base) nextGen(thread int) Next {
	if t := b.last(thread); t != nil && !t.Returned() {
		return Next{Task: t, ThreadID: thread}
	}
	builder := b.builders[b.rng.Intn(len(b.builders))]
	return b.build(builder, thread)
}

func (b *base) build(builder coro.Builder, thread int) Next {
	t := builder.Build(b.target, thread, b.newTaskID)
	b.newTaskID++
	b.threads[thread] = append(b.threads[thread], t)
	return Next{Task: t, IsNew: true, ThreadID: thread}
}

// nextSched serves NextSchedule for a picked slot, advancing the schedule
// cursor past returned and removed tasks. IsNew is set when the cursor moved
// onto a task for the first time this replay.
func (b *base) nextSched(thread int) Next {
	idx := b.nextTaskInThread(thread)
	isNew := b.roundSchedule[thread] != idx
	b.roundSchedule[thread] = idx
	return Next{Task: b.threads[thread][idx], IsNew: isNew, ThreadID: thread}
}

// nextTaskInThread returns the first task index in the thread at or after
// the schedule cursor that is neither returned nor removed, or len(slot) if
// the thread is exhausted.
func (b *base) nextTaskInThread(thread int) int {
	slot := b.threads[thread]
	idx := b.roundSchedule[thread]
	for idx < len(slot) && (idx == -1 || slot[idx].Returned() || slot[idx].Removed()) {
		idx++
	}
	return idx
}

// schedWaiting reports whether the thread has no resumable task during
// replay: exhausted, or its next task is parked or blocked.
func (b *base) schedWaiting(thread int) bool {
	idx := b.nextTaskInThread(thread)
	if idx == len(b.threads[thread]) {
		return true
	}
	t := b.threads[thread][idx]
	return t.Parked() || t.Blocked()
}

// terminateTasks drains every unfinished task. The order is arbitrary, which
// assumes the target is obstruction-free under termination.
func (b *base) terminateTasks() {
	for i := range b.roundSchedule {
		b.roundSchedule[i] = -1
	}
	for _, slot := range b.threads {
		for _, t := range slot {
			if !t.Returned() {
				t.Terminate()
			}
		}
	}
}

func (b *base) startNextRound() {
	b.newTaskID = 0
	b.terminateTasks()
	for i := range b.threads {
		b.threads[i] = nil
	}
	b.target.Reset()
}

func (b *base) resetCurrentRound() {
	b.terminateTasks()
	b.target.Reset()
	for _, slot := range b.threads {
		for i, t := range slot {
			if !t.Removed() {
				slot[i] = t.Restart(b.target)
			}
		}
	}
}

func (b *base) getTask(id int) (*coro.Task, int, bool) {
	for threadID, slot := range b.threads {
		for _, t := range slot {
			if t.ID() == id {
				return t, threadID, true
			}
		}
	}
	return nil, 0, false
}

func (b *base) tasks() [][]*coro.Task { return b.threads }

func (b *base) validTasksCount() int {
	n := 0
	for _, slot := range b.threads {
		for _, t := range slot {
			if !t.Removed() {
				n++
			}
		}
	}
	return n
}

func (b *base) totalTasksCount() int {
	n := 0
	for _, slot := range b.threads {
		n += len(slot)
	}
	return n
}

func (b *base) threadsCount() int { return len(b.threads) }
