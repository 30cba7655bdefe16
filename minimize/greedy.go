package minimize

import (
	"github.com/dmitrii-artuhov/ltest/history"
	"github.com/dmitrii-artuhov/ltest/sched"
)

// onRemovedFunc re-verifies the round with the given task ids removed,
// returning the new failing histories, or nil if the reduced round is
// linearizable (or cannot be driven at all) and the removal must be rolled
// back.
type onRemovedFunc func(s *sched.StrategyScheduler, nonlinear *sched.Histories, ids map[int]struct{}) *sched.Histories

// greedy iterates over the live tasks of the failing history and tries to
// remove them one by one, then over ordered pairs, committing whatever
// keeps the round failing.
type greedy struct {
	onRemoved onRemovedFunc
}

func (g greedy) minimize(s *sched.StrategyScheduler, nonlinear *sched.Histories) {
	var ids []int
	for _, ev := range nonlinear.Seq {
		if ev.Kind == history.Invoke {
			ids = append(ids, ev.TaskID)
		}
	}

	for _, id := range ids {
		if g.removed(s, id) {
			continue
		}
		if nh := g.onRemoved(s, nonlinear, set(id)); nh != nil {
			*nonlinear = *nh
			g.mark(s, true, id)
		}
	}

	// Pairs: operations with matched add/remove semantics only become
	// removable together.
	for i := 0; i < len(ids); i++ {
		if g.removed(s, ids[i]) {
			continue
		}
		for j := i + 1; j < len(ids); j++ {
			if g.removed(s, ids[j]) {
				continue
			}
			if nh := g.onRemoved(s, nonlinear, set(ids[i], ids[j])); nh != nil {
				*nonlinear = *nh
				g.mark(s, true, ids[i], ids[j])
				break
			}
		}
	}
}

// removed reports the current removal state of a task id. Tasks are
// re-looked-up by id every time: round resets replace the task objects.
func (greedy) removed(s *sched.StrategyScheduler, id int) bool {
	t, _, ok := s.Strategy().GetTask(id)
	return !ok || t.Removed()
}

func (greedy) mark(s *sched.StrategyScheduler, removed bool, ids ...int) {
	for _, id := range ids {
		if t, _, ok := s.Strategy().GetTask(id); ok {
			t.SetRemoved(removed)
		}
	}
}

func set(ids ...int) map[int]struct{} {
	m := make(map[int]struct{}, len(ids))
	for _, id := range ids {
		m[id] = struct{}{}
	}
	return m
}

// SameInterleaving removes tasks while keeping the rest of the failing
// interleaving exactly as observed: the full history is projected onto the
// surviving ids and replayed.
type SameInterleaving struct{ greedy }

// NewSameInterleaving builds the projection-replay minimizor.
func NewSameInterleaving() *SameInterleaving {
	m := &SameInterleaving{}
	m.onRemoved = func(s *sched.StrategyScheduler, nonlinear *sched.Histories, ids map[int]struct{}) *sched.Histories {
		ordering := history.TasksOrdering(nonlinear.Full, ids)
		nh, err := s.ReplayRound(ordering)
		if err != nil {
			return nil
		}
		return nh
	}
	return m
}

func (m *SameInterleaving) Name() string { return `same-interleaving` }

// Minimize implements sched.Minimizor.
func (m *SameInterleaving) Minimize(s *sched.StrategyScheduler, nonlinear *sched.Histories) {
	m.minimize(s, nonlinear)
}

// StrategyExploration removes tasks and lets the strategy look for any
// failing interleaving of the reduced round within a run budget.
type StrategyExploration struct {
	greedy
	runs int
}

// NewStrategyExploration builds the exploration minimizor with the given
// per-candidate run budget.
func NewStrategyExploration(runs int) *StrategyExploration {
	m := &StrategyExploration{runs: runs}
	m.onRemoved = func(s *sched.StrategyScheduler, nonlinear *sched.Histories, ids map[int]struct{}) *sched.Histories {
		marked := make([]int, 0, len(ids))
		for id := range ids {
			marked = append(marked, id)
		}
		m.mark(s, true, marked...)

		nh, err := s.ExploreRound(m.runs)
		if err != nil || nh == nil {
			m.mark(s, false, marked...)
			return nil
		}
		return nh
	}
	return m
}

func (m *StrategyExploration) Name() string { return `strategy-exploration` }

// Minimize implements sched.Minimizor.
func (m *StrategyExploration) Minimize(s *sched.StrategyScheduler, nonlinear *sched.Histories) {
	m.minimize(s, nonlinear)
}
