package strategy

import (
	"errors"

	"github.com/dmitrii-artuhov/ltest/coro"
)

// ErrDeadlock is returned when every slot with work left is parked or
// blocked: no task can be resumed, so the round cannot make progress.
var ErrDeadlock = errors.New(`strategy: deadlock: every pending task is parked or blocked`)

type (
	// Target is the system under test. Reset restores it to its initial
	// state between rounds and replays.
	Target interface {
		Reset()
	}

	// Next is one scheduling decision: the task to resume, whether this is
	// its first resume (which drives invoke-event emission), and its slot.
	Next struct {
		Task     *coro.Task
		IsNew    bool
		ThreadID int
	}

	// Strategy picks the next ready task. Implementations own all tasks of
	// the round; everything else holds them only by id or for the duration
	// of the round.
	Strategy interface {
		// Next picks a runnable slot, building and appending a new task if
		// the slot is empty or its current task has returned.
		Next() (Next, error)

		// NextSchedule schedules over the existing tasks of the round and
		// never creates new ones.
		NextSchedule() (Next, error)

		// StartNextRound terminates unfinished tasks, resets the target and
		// clears every slot.
		StartNextRound()

		// ResetCurrentRound terminates unfinished tasks and resets the
		// target, but keeps the task sequences: every non-removed task is
		// rebuilt with its original arguments and id.
		ResetCurrentRound()

		// GetTask locates a task by id, returning it with its thread id.
		GetTask(id int) (*coro.Task, int, bool)

		// Tasks exposes the per-slot task sequences. Callers must not
		// mutate the slices.
		Tasks() [][]*coro.Task

		// ValidTasksCount counts the tasks not marked removed.
		ValidTasksCount() int

		// TotalTasksCount counts all tasks, removed included.
		TotalTasksCount() int

		// ThreadsCount returns the number of thread slots.
		ThreadsCount() int
	}
)
