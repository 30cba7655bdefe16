package strategy

import (
	"github.com/dmitrii-artuhov/ltest/coro"
)

// DefaultMaxDepth caps the PCT bug depth. The cap is pragmatic: deeper
// schedules buy little once the depth exceeds the bugs worth finding.
const DefaultMaxDepth = 50

type (
	// PCTConfig tunes probabilistic concurrency testing.
	PCTConfig struct {
		// ForbidAllSame re-picks a builder whenever every other busy slot
		// is running the same method, so a round never consists of one
		// method only.
		ForbidAllSame bool

		// MaxDepth caps the bug depth the strategy grows toward.
		// **Defaults to DefaultMaxDepth, if 0.**
		MaxDepth int

		// Seed seeds the strategy's randomness. **A zero seed draws one
		// from the clock.**
		Seed int64
	}

	// PCT is the Burckhardt-style depth-d prioritized strategy: every slot
	// holds a priority, the highest non-waiting slot runs, and at the i-th
	// of d-1 pre-drawn schedule positions the running slot's priority drops
	// to d-i, no higher than any initial one. The depth grows round by round
	// up to MaxDepth.
	PCT struct {
		base
		cfg          PCTConfig
		depth        int
		schedLen     int
		priorities   []int
		changePoints []int
		schedLengths []int
	}
)

// NewPCT builds the PCT strategy.
func NewPCT(target Target, threads int, builders []coro.Builder, cfg PCTConfig) *PCT {
	if cfg.MaxDepth <= 0 {
		cfg.MaxDepth = DefaultMaxDepth
	}
	s := &PCT{
		base:  newBase(target, threads, builders, cfg.Seed),
		cfg:   cfg,
		depth: 1,
	}
	s.prepareForDepth(s.depth, 1)
	return s
}

func (s *PCT) Next() (Next, error) {
	thread, err := s.pickByPriority(s.waiting)
	if err != nil {
		return Next{}, err
	}
	if t := s.last(thread); t != nil && !t.Returned() {
		return Next{Task: t, ThreadID: thread}, nil
	}
	builder := s.builders[s.rng.Intn(len(s.builders))]
	if s.cfg.ForbidAllSame {
		builder = s.avoidAllSame(builder, thread)
	}
	return s.build(builder, thread), nil
}

func (s *PCT) NextSchedule() (Next, error) {
	thread, err := s.pickByPriority(s.schedWaiting)
	if err != nil {
		return Next{}, err
	}
	return s.nextSched(thread), nil
}

// pickByPriority scans every slot, skipping waiting ones, and takes the one
// with the highest priority. It then advances the schedule position and
// applies any priority change point that position hits.
func (s *PCT) pickByPriority(waiting func(int) bool) (int, error) {
	best, found := 0, false
	for i := range s.threads {
		if waiting(i) {
			continue
		}
		if !found || s.priorities[i] >= s.priorities[best] {
			best, found = i, true
		}
	}
	if !found {
		return 0, ErrDeadlock
	}

	s.schedLen++
	for i, cp := range s.changePoints {
		if s.schedLen == cp {
			s.priorities[best] = s.depth - i
		}
	}
	return best, nil
}

// avoidAllSame re-draws the builder until the set of method names across
// the busy slots and the candidate stops being a singleton.
func (s *PCT) avoidAllSame(builder coro.Builder, except int) coro.Builder {
	if len(s.builders) < 2 {
		return builder
	}
	names := make(map[string]struct{})
	for i, slot := range s.threads {
		if i == except || len(slot) == 0 {
			continue
		}
		names[slot[len(slot)-1].Name()] = struct{}{}
	}
	for {
		names[builder.Name()] = struct{}{}
		if len(names) != 1 {
			return builder
		}
		builder = s.builders[s.rng.Intn(len(s.builders))]
	}
}

func (s *PCT) StartNextRound() {
	s.startNextRound()
	s.updateStatistics()
}

func (s *PCT) ResetCurrentRound() {
	s.resetCurrentRound()
	s.updateStatistics()
}

// updateStatistics grows the depth (capped), folds the finished round's
// schedule length into the running average k, and re-draws priorities and
// change points for the new depth.
func (s *PCT) updateStatistics() {
	s.depth++
	if s.depth > s.cfg.MaxDepth {
		s.depth = s.cfg.MaxDepth
	}
	s.schedLengths = append(s.schedLengths, s.schedLen)
	s.schedLen = 0

	sum := 0
	for _, l := range s.schedLengths {
		sum += l
	}
	k := sum / len(s.schedLengths)
	s.prepareForDepth(s.depth, k)
}

// prepareForDepth draws fresh slot priorities depth+0..depth+n-1 (shuffled)
// and depth-1 change points uniform in [1, k].
func (s *PCT) prepareForDepth(depth, k int) {
	if k < 1 {
		k = 1
	}
	s.priorities = make([]int, len(s.threads))
	for i := range s.priorities {
		s.priorities[i] = depth + i
	}
	s.rng.Shuffle(len(s.priorities), func(i, j int) {
		s.priorities[i], s.priorities[j] = s.priorities[j], s.priorities[i]
	})

	s.changePoints = make([]int, depth-1)
	for i := range s.changePoints {
		s.changePoints[i] = 1 + s.rng.Intn(k)
	}
}

func (s *PCT) GetTask(id int) (*coro.Task, int, bool) { return s.getTask(id) }
func (s *PCT) Tasks() [][]*coro.Task                  { return s.tasks() }
func (s *PCT) ValidTasksCount() int                   { return s.validTasksCount() }
func (s *PCT) TotalTasksCount() int                   { return s.totalTasksCount() }
func (s *PCT) ThreadsCount() int                      { return s.threadsCount() }
