package history

import (
	"fmt"

	"github.com/dmitrii-artuhov/ltest/coro"
)

type (
	// Kind tags an event as an invoke or a response.
	Kind uint8

	// Event is one entry of a sequential history. Invoke events carry the
	// method and argument tuple; response events carry the result.
	Event struct {
		Kind     Kind
		TaskID   int
		ThreadID int
		Method   string
		Args     []coro.Value
		Result   coro.Value
	}

	// Sequential is the ordered invoke/response record of a round.
	Sequential []Event

	// Entry is one resume step of the full history.
	Entry struct {
		TaskID   int
		ThreadID int
	}

	// Full is the ordered record of resume steps.
	Full []Entry
)

const (
	Invoke Kind = iota
	Response
)

// NewInvoke records the start of a task on a thread slot.
func NewInvoke(t *coro.Task, threadID int) Event {
	return Event{
		Kind:     Invoke,
		TaskID:   t.ID(),
		ThreadID: threadID,
		Method:   t.Name(),
		Args:     t.Args(),
	}
}

// NewResponse records a task's return on a thread slot.
func NewResponse(t *coro.Task, result coro.Value, threadID int) Event {
	return Event{
		Kind:     Response,
		TaskID:   t.ID(),
		ThreadID: threadID,
		Method:   t.Name(),
		Result:   result,
	}
}

// InvResMapping returns, for each invoke index, the index of the matching
// response. Invokes without a response (the task had not returned when the
// round ended) are absent from the map. A response with no prior invoke for
// the same task means the recording layer is broken and is fatal.
func (h Sequential) InvResMapping() map[int]int {
	invRes := make(map[int]int)
	invIdx := make(map[int]int, len(h)/2)
	for i, ev := range h {
		switch ev.Kind {
		case Invoke:
			invIdx[ev.TaskID] = i
		case Response:
			j, ok := invIdx[ev.TaskID]
			if !ok {
				panic(fmt.Sprintf(`history: response for task %d without a prior invoke`, ev.TaskID))
			}
			invRes[j] = i
		}
	}
	return invRes
}

// TasksOrdering projects the full history onto task ids, dropping the ids in
// exclude. The result is the ordering ReplayRound consumes.
func TasksOrdering(full Full, exclude map[int]struct{}) []int {
	ordering := make([]int, 0, len(full))
	for _, e := range full {
		if _, ok := exclude[e.TaskID]; ok {
			continue
		}
		ordering = append(ordering, e.TaskID)
	}
	return ordering
}
