package lincheck

import (
	"github.com/dmitrii-artuhov/ltest/coro"
	"github.com/dmitrii-artuhov/ltest/history"
)

// registerSpec: an int register with add (increment) and get.
type registerState struct {
	x int
}

func (s *registerState) Clone() State { cp := *s; return &cp }

func (s *registerState) Hash() uint64 { return uint64(s.x) }

func (s *registerState) Equal(other State) bool {
	o, ok := other.(*registerState)
	return ok && s.x == o.x
}

var registerMethods = MethodMap{
	`add`: func(s State, args []coro.Value) coro.Value {
		s.(*registerState).x++
		return coro.Void
	},
	`get`: func(s State, args []coro.Value) coro.Value {
		return coro.NewValue(s.(*registerState).x)
	},
}

// queueSpec: FIFO ints, Pop of an empty queue returns 0.
type queueState struct {
	items []int
}

func (s *queueState) Clone() State {
	return &queueState{items: append([]int(nil), s.items...)}
}

func (s *queueState) Hash() uint64 {
	var h uint64
	for _, v := range s.items {
		h = h*31 + uint64(v)
	}
	return h
}

func (s *queueState) Equal(other State) bool {
	o, ok := other.(*queueState)
	if !ok || len(s.items) != len(o.items) {
		return false
	}
	for i := range s.items {
		if s.items[i] != o.items[i] {
			return false
		}
	}
	return true
}

var queueMethods = MethodMap{
	`Push`: func(s State, args []coro.Value) coro.Value {
		q := s.(*queueState)
		q.items = append(q.items, coro.Get[int](args[0]))
		return coro.Void
	},
	`Pop`: func(s State, args []coro.Value) coro.Value {
		q := s.(*queueState)
		if len(q.items) == 0 {
			return coro.NewValue(0)
		}
		v := q.items[0]
		q.items = q.items[1:]
		return coro.NewValue(v)
	},
}

// ev builders for hand-crafted histories.

func inv(taskID, threadID int, method string, args ...coro.Value) history.Event {
	return history.Event{Kind: history.Invoke, TaskID: taskID, ThreadID: threadID, Method: method, Args: args}
}

func res(taskID, threadID int, method string, result coro.Value) history.Event {
	return history.Event{Kind: history.Response, TaskID: taskID, ThreadID: threadID, Method: method, Result: result}
}
