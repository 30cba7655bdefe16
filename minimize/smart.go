package minimize

import (
	"math/rand"
	"time"

	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"

	"github.com/dmitrii-artuhov/ltest/history"
	"github.com/dmitrii-artuhov/ltest/sched"
	"github.com/dmitrii-artuhov/ltest/strategy"
)

const (
	// fitnessEps keeps the thread factor of the fitness strictly positive,
	// so dropping tasks still pays off when every thread survives.
	fitnessEps = 0.0001

	maxPopulationSize = 2
)

type (
	// SmartConfig tunes the genetic minimizor.
	SmartConfig struct {
		// Runs is the number of generations. **Defaults to 10, if 0.**
		Runs int

		// ExplorationRuns is the per-offspring budget for finding a failing
		// interleaving of the candidate round. **Defaults to Runs, if 0.**
		ExplorationRuns int

		// MaxOffsprings caps offsprings per generation.
		// **Defaults to 5, if 0.**
		MaxOffsprings int

		// GenerationAttempts caps the tries to produce each offspring with
		// a failing history. **Defaults to 10, if 0.**
		GenerationAttempts int

		// InitialMutations is the starting mutation count, annealed down
		// while offsprings keep failing to generate.
		// **Defaults to 10, if 0.**
		InitialMutations int

		// Seed seeds the minimizor's randomness. **A zero seed draws one
		// from the clock.**
		Seed int64
	}

	// Smart is the genetic minimizor: it breeds survival masks from the two
	// best solutions seen, mutates them by dropping random tasks, keeps the
	// offsprings whose rounds still fail, and finally replays the best
	// mask's interleaving to rebuild definitive histories.
	Smart struct {
		cfg SmartConfig
		rng *rand.Rand
	}

	// solution is one population member: the per-thread surviving task ids
	// and the failing histories observed under that mask.
	solution struct {
		threads    map[int]map[int]struct{}
		histories  sched.Histories
		fitness    float64
		validTasks int
	}
)

// NewSmart builds the genetic minimizor.
func NewSmart(cfg SmartConfig) *Smart {
	if cfg.Runs <= 0 {
		cfg.Runs = 10
	}
	if cfg.ExplorationRuns <= 0 {
		cfg.ExplorationRuns = cfg.Runs
	}
	if cfg.MaxOffsprings <= 0 {
		cfg.MaxOffsprings = 5
	}
	if cfg.GenerationAttempts <= 0 {
		cfg.GenerationAttempts = 10
	}
	if cfg.InitialMutations <= 0 {
		cfg.InitialMutations = 10
	}
	if cfg.Seed == 0 {
		cfg.Seed = time.Now().UnixNano()
	}
	return &Smart{cfg: cfg, rng: rand.New(rand.NewSource(cfg.Seed))}
}

func (m *Smart) Name() string { return `smart` }

// Minimize implements sched.Minimizor.
func (m *Smart) Minimize(s *sched.StrategyScheduler, nonlinear *sched.Histories) {
	strat := s.Strategy()
	totalTasks := strat.TotalTasksCount()
	totalThreads := strat.ThreadsCount()
	mutations := m.cfg.InitialMutations

	population := []solution{newSolution(strat, *nonlinear, totalTasks, totalThreads)}

	for r := 0; r < m.cfg.Runs; r++ {
		p1 := population[0]
		p2 := p1
		if len(population) > 1 {
			p2 = population[1]
		}

		offsprings := m.generateOffsprings(s, p1, p2, &mutations, totalTasks, totalThreads)
		population = append(population, offsprings...)
		slices.SortStableFunc(population, func(a, b solution) int {
			switch {
			case a.fitness > b.fitness:
				return -1
			case a.fitness < b.fitness:
				return 1
			}
			return 0
		})
		if len(population) > maxPopulationSize {
			population = population[:maxPopulationSize]
		}
	}

	best := population[0]
	m.applyMask(strat, best.threads)

	// Replay the best interleaving to leave the round in its reduced state
	// and rebuild both histories from a single execution.
	if replayed, err := s.ReplayRound(history.TasksOrdering(best.histories.Full, nil)); err == nil && replayed != nil {
		*nonlinear = *replayed
	} else {
		*nonlinear = best.histories
	}
}

// generateOffsprings crosses and mutates the parents until it has bred up
// to MaxOffsprings failing candidates, annealing the mutation count down
// when more than half the attempts come up dry.
func (m *Smart) generateOffsprings(s *sched.StrategyScheduler, p1, p2 solution, mutations *int, totalTasks, totalThreads int) []solution {
	strat := s.Strategy()
	var offsprings []solution

	for offspring := 0; offspring < m.cfg.MaxOffsprings; offspring++ {
		for attempt := 0; attempt < m.cfg.GenerationAttempts; attempt++ {
			candidate := m.crossProduct(p1, p2)

			for i := 0; i < *mutations; i++ {
				// With a single permitted mutation, occasionally skip it,
				// so some offsprings only remix the parents' threads.
				if *mutations > 1 || m.rng.Float64() < 0.95 {
					m.dropRandomTask(candidate)
				}
			}

			m.applyMask(strat, candidate)
			histories, err := s.ExploreRound(m.cfg.ExplorationRuns)
			if err == nil && histories != nil {
				offsprings = append(offsprings, newSolution(strat, *histories, totalTasks, totalThreads))
				break
			}
		}
	}

	if len(offsprings)*2 < m.cfg.MaxOffsprings && *mutations > 1 {
		*mutations--
	}
	return offsprings
}

// crossProduct mixes the parents thread-wise: each thread of the smaller
// parent inherits its surviving set from either parent with equal
// probability.
func (m *Smart) crossProduct(p1, p2 solution) map[int]map[int]struct{} {
	if len(p1.threads) >= len(p2.threads) {
		p1, p2 = p2, p1
	}

	mixed := make(map[int]map[int]struct{}, len(p1.threads))
	for _, threadID := range sortedKeys(p1.threads) {
		src := p1.threads[threadID]
		if other, ok := p2.threads[threadID]; ok && m.rng.Float64() >= 0.5 {
			src = other
		}
		cp := make(map[int]struct{}, len(src))
		maps.Copy(cp, src)
		mixed[threadID] = cp
	}
	return mixed
}

// dropRandomTask removes one random task from one random thread, refusing
// mutations that would leave the candidate without tasks or effectively
// single-threaded.
func (m *Smart) dropRandomTask(threads map[int]map[int]struct{}) {
	if len(threads) == 0 {
		return
	}
	keys := sortedKeys(threads)
	tasks := threads[keys[m.rng.Intn(len(keys))]]
	nonEmpty := 0
	for _, ts := range threads {
		if len(ts) > 0 {
			nonEmpty++
		}
	}
	if len(tasks) == 0 || (len(tasks) == 1 && nonEmpty <= 2) {
		return
	}

	ids := maps.Keys(tasks)
	slices.Sort(ids)
	delete(tasks, ids[m.rng.Intn(len(ids))])
}

// applyMask marks every task removed unless the mask lists it as surviving.
func (m *Smart) applyMask(strat strategy.Strategy, mask map[int]map[int]struct{}) {
	for threadID, slot := range strat.Tasks() {
		surviving := mask[threadID]
		for _, t := range slot {
			_, keep := surviving[t.ID()]
			t.SetRemoved(!keep)
		}
	}
}

// newSolution snapshots the strategy's current survival mask together with
// the failing histories observed under it, and caches its fitness: the
// product of the dropped-task share and the (eps-shifted) dropped-thread
// share, in [0, 1], bigger is better.
func newSolution(strat strategy.Strategy, histories sched.Histories, totalTasks, totalThreads int) solution {
	sol := solution{
		threads:   make(map[int]map[int]struct{}),
		histories: histories,
	}
	for threadID, slot := range strat.Tasks() {
		for _, t := range slot {
			if t.Removed() {
				continue
			}
			sol.validTasks++
			if sol.threads[threadID] == nil {
				sol.threads[threadID] = make(map[int]struct{})
			}
			sol.threads[threadID][t.ID()] = struct{}{}
		}
	}

	tasksFitness := 1 - float64(sol.validTasks)/float64(totalTasks)
	threadsFitness := fitnessEps + 1 - float64(len(sol.threads))/float64(totalThreads)
	sol.fitness = tasksFitness * threadsFitness
	return sol
}

func sortedKeys(m map[int]map[int]struct{}) []int {
	keys := maps.Keys(m)
	slices.Sort(keys)
	return keys
}
