package testutil

import (
	"github.com/dmitrii-artuhov/ltest/coro"
	"github.com/dmitrii-artuhov/ltest/strategy"
)

// Scripted is a strategy that follows a fixed plan: per thread, the exact
// sequence of builders to instantiate, and a cyclic order of thread picks.
// It makes driver runs reproducible down to the resume step.
type Scripted struct {
	target  strategy.Target
	plan    [][]coro.Builder
	order   []int
	threads [][]*coro.Task
	planPos []int
	// schedule[thread] is the replay cursor, -1 before the first pick.
	schedule []int
	pos      int
	nextID   int
}

// NewScripted builds the scripted strategy. plan[i] lists the tasks thread
// i will run, in order; order is the cyclic thread pick sequence shared by
// Next and NextSchedule.
func NewScripted(target strategy.Target, plan [][]coro.Builder, order []int) *Scripted {
	s := &Scripted{
		target:   target,
		plan:     plan,
		order:    order,
		threads:  make([][]*coro.Task, len(plan)),
		planPos:  make([]int, len(plan)),
		schedule: make([]int, len(plan)),
	}
	for i := range s.schedule {
		s.schedule[i] = -1
	}
	return s
}

func (s *Scripted) Next() (strategy.Next, error) {
	for tries := 0; tries < len(s.order); tries++ {
		thread := s.order[s.pos%len(s.order)]
		s.pos++

		slot := s.threads[thread]
		if len(slot) > 0 && !slot[len(slot)-1].Returned() {
			t := slot[len(slot)-1]
			if t.Parked() || t.Blocked() {
				continue
			}
			return strategy.Next{Task: t, ThreadID: thread}, nil
		}
		if s.planPos[thread] == len(s.plan[thread]) {
			continue
		}

		builder := s.plan[thread][s.planPos[thread]]
		s.planPos[thread]++
		t := builder.Build(s.target, thread, s.nextID)
		s.nextID++
		s.threads[thread] = append(s.threads[thread], t)
		return strategy.Next{Task: t, IsNew: true, ThreadID: thread}, nil
	}
	return strategy.Next{}, strategy.ErrDeadlock
}

func (s *Scripted) NextSchedule() (strategy.Next, error) {
	for tries := 0; tries < len(s.order); tries++ {
		thread := s.order[s.pos%len(s.order)]
		s.pos++

		idx := s.nextTaskInThread(thread)
		if idx == len(s.threads[thread]) {
			continue
		}
		t := s.threads[thread][idx]
		if t.Parked() || t.Blocked() {
			continue
		}
		isNew := s.schedule[thread] != idx
		s.schedule[thread] = idx
		return strategy.Next{Task: t, IsNew: isNew, ThreadID: thread}, nil
	}
	return strategy.Next{}, strategy.ErrDeadlock
}

func (s *Scripted) nextTaskInThread(thread int) int {
	slot := s.threads[thread]
	idx := s.schedule[thread]
	for idx < len(slot) && (idx == -1 || slot[idx].Returned() || slot[idx].Removed()) {
		idx++
	}
	return idx
}

func (s *Scripted) StartNextRound() {
	s.terminate()
	for i := range s.threads {
		s.threads[i] = nil
		s.planPos[i] = 0
	}
	s.nextID = 0
	s.pos = 0
	s.target.Reset()
}

func (s *Scripted) ResetCurrentRound() {
	s.terminate()
	s.pos = 0
	s.target.Reset()
	for _, slot := range s.threads {
		for i, t := range slot {
			if !t.Removed() {
				slot[i] = t.Restart(s.target)
			}
		}
	}
}

func (s *Scripted) terminate() {
	for i := range s.schedule {
		s.schedule[i] = -1
	}
	for _, slot := range s.threads {
		for _, t := range slot {
			if !t.Returned() {
				t.Terminate()
			}
		}
	}
}

func (s *Scripted) GetTask(id int) (*coro.Task, int, bool) {
	for threadID, slot := range s.threads {
		for _, t := range slot {
			if t.ID() == id {
				return t, threadID, true
			}
		}
	}
	return nil, 0, false
}

func (s *Scripted) Tasks() [][]*coro.Task { return s.threads }

func (s *Scripted) ValidTasksCount() int {
	n := 0
	for _, slot := range s.threads {
		for _, t := range slot {
			if !t.Removed() {
				n++
			}
		}
	}
	return n
}

func (s *Scripted) TotalTasksCount() int {
	n := 0
	for _, slot := range s.threads {
		n += len(slot)
	}
	return n
}

func (s *Scripted) ThreadsCount() int { return len(s.threads) }
