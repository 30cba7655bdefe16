package strategy

import (
	"fmt"

	"github.com/dmitrii-artuhov/ltest/coro"
)

// Random draws the next thread slot from a discrete distribution weighted
// per slot, ignoring parked and blocked slots.
type Random struct {
	base
	weights []int
}

// NewRandom builds the weighted-random strategy. weights may be nil or empty
// for a uniform distribution; otherwise it must carry one positive weight per
// thread slot.
func NewRandom(target Target, threads int, builders []coro.Builder, weights []int, seed int64) (*Random, error) {
	if len(weights) == 0 {
		weights = make([]int, threads)
		for i := range weights {
			weights[i] = 1
		}
	}
	if len(weights) != threads {
		return nil, fmt.Errorf(`strategy: %d weights for %d threads`, len(weights), threads)
	}
	for i, w := range weights {
		if w <= 0 {
			return nil, fmt.Errorf(`strategy: weight %d of thread %d must be positive`, w, i)
		}
	}
	return &Random{base: newBase(target, threads, builders, seed), weights: weights}, nil
}

func (s *Random) Next() (Next, error) {
	thread, err := s.pick(s.waiting)
	if err != nil {
		return Next{}, err
	}
	return s.nextGen(thread), nil
}

func (s *Random) NextSchedule() (Next, error) {
	thread, err := s.pick(s.schedWaiting)
	if err != nil {
		return Next{}, err
	}
	return s.nextSched(thread), nil
}

func (s *Random) pick(waiting func(int) bool) (int, error) {
	total := 0
	for i := range s.threads {
		if !waiting(i) {
			total += s.weights[i]
		}
	}
	if total == 0 {
		return 0, ErrDeadlock
	}
	n := s.rng.Intn(total)
	for i := range s.threads {
		if waiting(i) {
			continue
		}
		if n < s.weights[i] {
			return i, nil
		}
		n -= s.weights[i]
	}
	panic(`strategy: weighted pick fell off the distribution`)
}

func (s *Random) StartNextRound()    { s.startNextRound() }
func (s *Random) ResetCurrentRound() { s.resetCurrentRound() }

func (s *Random) GetTask(id int) (*coro.Task, int, bool) { return s.getTask(id) }
func (s *Random) Tasks() [][]*coro.Task                  { return s.tasks() }
func (s *Random) ValidTasksCount() int                   { return s.validTasksCount() }
func (s *Random) TotalTasksCount() int                   { return s.totalTasksCount() }
func (s *Random) ThreadsCount() int                      { return s.threadsCount() }
