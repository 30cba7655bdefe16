package strategy

import "github.com/dmitrii-artuhov/ltest/coro"

// RoundRobin cyclically scans the thread slots; the first slot that is not
// parked or blocked wins.
type RoundRobin struct {
	base
	next int
}

// NewRoundRobin builds the round-robin strategy. A zero seed draws one from
// the clock; the seed only affects which builder serves a fresh slot.
func NewRoundRobin(target Target, threads int, builders []coro.Builder, seed int64) *RoundRobin {
	return &RoundRobin{base: newBase(target, threads, builders, seed)}
}

func (s *RoundRobin) Next() (Next, error) {
	thread, err := s.pick(s.waiting)
	if err != nil {
		return Next{}, err
	}
	return s.nextGen(thread), nil
}

func (s *RoundRobin) NextSchedule() (Next, error) {
	thread, err := s.pick(s.schedWaiting)
	if err != nil {
		return Next{}, err
	}
	return s.nextSched(thread), nil
}

func (s *RoundRobin) pick(waiting func(int) bool) (int, error) {
	for attempt := 0; attempt < len(s.threads); attempt++ {
		cur := s.next % len(s.threads)
		s.next++
		if waiting(cur) {
			continue
		}
		return cur, nil
	}
	return 0, ErrDeadlock
}

func (s *RoundRobin) StartNextRound()    { s.startNextRound() }
func (s *RoundRobin) ResetCurrentRound() { s.resetCurrentRound() }

func (s *RoundRobin) GetTask(id int) (*coro.Task, int, bool) { return s.getTask(id) }
func (s *RoundRobin) Tasks() [][]*coro.Task                  { return s.tasks() }
func (s *RoundRobin) ValidTasksCount() int                   { return s.validTasksCount() }
func (s *RoundRobin) TotalTasksCount() int                   { return s.totalTasksCount() }
func (s *RoundRobin) ThreadsCount() int                      { return s.threadsCount() }
