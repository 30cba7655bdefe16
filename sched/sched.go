package sched

import (
	"errors"
	"fmt"
	"strings"

	"github.com/joeycumines/logiface"

	"github.com/dmitrii-artuhov/ltest/history"
	"github.com/dmitrii-artuhov/ltest/strategy"
)

// ErrUnknownTask is returned by ReplayRound for an ordering that names a
// task id the round does not contain.
var ErrUnknownTask = errors.New(`sched: ordering names a task id not present in the round`)

type (
	// Histories is a non-linearizable witness: the full resume-step record
	// and the sequential invoke/response record of the same execution.
	Histories struct {
		Full history.Full
		Seq  history.Sequential
	}

	// Checker decides whether a sequential history satisfies the
	// consistency model under test.
	Checker interface {
		Check(h history.Sequential) bool
	}

	// Scheduler runs a verification campaign. A nil Histories result means
	// no counterexample was found within the budget.
	Scheduler interface {
		Run() (*Histories, error)
	}

	// Minimizor shrinks a failing round in place: it may mark tasks removed
	// through the scheduler's strategy and must rewrite nonlinear to the
	// reduced witness. It never fails; if nothing can be shrunk the input
	// is left unchanged.
	Minimizor interface {
		Name() string
		Minimize(s *StrategyScheduler, nonlinear *Histories)
	}

	// Config carries the driver knobs.
	Config struct {
		// MaxTasks is the number of finished tasks that completes a round.
		// **Defaults to 15, if 0.**
		MaxTasks int

		// MaxRounds bounds how many rounds Run attempts.
		// **Defaults to 5, if 0.**
		MaxRounds int

		// Minimizors is the shrinking pipeline applied to the first failing
		// round, in order. May be empty.
		Minimizors []Minimizor

		// Logger receives per-round and per-minimization progress. May be
		// nil.
		Logger *logiface.Logger[logiface.Event]
	}

	// StrategyScheduler drives a strategy, records histories and checks
	// them.
	StrategyScheduler struct {
		strat      strategy.Strategy
		checker    Checker
		printer    *history.Printer
		maxTasks   int
		maxRounds  int
		minimizors []Minimizor
		log        *logiface.Logger[logiface.Event]
	}
)

// NewStrategyScheduler wires a driver around a strategy and a checker.
func NewStrategyScheduler(strat strategy.Strategy, checker Checker, cfg Config) *StrategyScheduler {
	if cfg.MaxTasks <= 0 {
		cfg.MaxTasks = 15
	}
	if cfg.MaxRounds <= 0 {
		cfg.MaxRounds = 5
	}
	return &StrategyScheduler{
		strat:      strat,
		checker:    checker,
		printer:    history.NewPrinter(strat.ThreadsCount()),
		maxTasks:   cfg.MaxTasks,
		maxRounds:  cfg.MaxRounds,
		minimizors: cfg.Minimizors,
		log:        cfg.Logger,
	}
}

// Strategy exposes the driven strategy to minimizors.
func (s *StrategyScheduler) Strategy() strategy.Strategy { return s.strat }

// Checker exposes the checker to minimizors.
func (s *StrategyScheduler) Checker() Checker { return s.checker }

// RunRound generates one interleaving, recording both histories, and checks
// it. A nil result means the round was linearizable.
func (s *StrategyScheduler) RunRound() (*Histories, error) {
	var seq history.Sequential
	var full history.Full

	for finished := 0; finished < s.maxTasks; {
		next, err := s.strat.Next()
		if err != nil {
			return nil, err
		}
		if next.IsNew {
			seq = append(seq, history.NewInvoke(next.Task, next.ThreadID))
		}
		full = append(full, history.Entry{TaskID: next.Task.ID(), ThreadID: next.ThreadID})

		next.Task.Resume()
		if next.Task.Returned() {
			finished++
			seq = append(seq, history.NewResponse(next.Task, next.Task.RetVal(), next.ThreadID))
		}
	}

	s.logHistory(`round finished`, seq)
	if !s.checker.Check(seq) {
		return &Histories{Full: full, Seq: seq}, nil
	}
	return nil, nil
}

// ExploreRound replays the current round up to runs times under fresh
// scheduling decisions, returning the first non-linearizable pair of
// histories found, or nil.
func (s *StrategyScheduler) ExploreRound(runs int) (*Histories, error) {
	for i := 0; i < runs; i++ {
		s.strat.ResetCurrentRound()
		var seq history.Sequential
		var full history.Full

		for tasksToRun := s.strat.ValidTasksCount(); tasksToRun > 0; {
			next, err := s.strat.NextSchedule()
			if err != nil {
				return nil, err
			}
			if next.IsNew {
				seq = append(seq, history.NewInvoke(next.Task, next.ThreadID))
			}
			full = append(full, history.Entry{TaskID: next.Task.ID(), ThreadID: next.ThreadID})

			next.Task.Resume()
			if next.Task.Returned() {
				tasksToRun--
				seq = append(seq, history.NewResponse(next.Task, next.Task.RetVal(), next.ThreadID))
			}
		}

		if !s.checker.Check(seq) {
			return &Histories{Full: full, Seq: seq}, nil
		}
	}
	return nil, nil
}

// ReplayRound deterministically re-executes exactly the given ordering of
// task ids. A task's last appearance in the ordering terminates it; earlier
// appearances resume it once. The result is non-nil iff the replayed
// sequential history is non-linearizable.
func (s *StrategyScheduler) ReplayRound(ordering []int) (*Histories, error) {
	s.strat.ResetCurrentRound()

	var seq history.Sequential
	var full history.Full
	started := make(map[int]struct{})
	remaining := make(map[int]int)
	for _, id := range ordering {
		remaining[id]++
	}

	for _, id := range ordering {
		task, threadID, ok := s.strat.GetTask(id)
		if !ok {
			return nil, fmt.Errorf(`%w: %d`, ErrUnknownTask, id)
		}

		if _, seen := started[id]; !seen {
			started[id] = struct{}{}
			seq = append(seq, history.NewInvoke(task, threadID))
		}
		full = append(full, history.Entry{TaskID: id, ThreadID: threadID})

		if task.Returned() {
			continue
		}
		remaining[id]--
		if remaining[id] == 0 {
			task.Terminate()
		} else {
			task.Resume()
		}
		if task.Returned() {
			seq = append(seq, history.NewResponse(task, task.RetVal(), threadID))
		}
	}

	if !s.checker.Check(seq) {
		return &Histories{Full: full, Seq: seq}, nil
	}
	return nil, nil
}

// Run tries rounds until one fails, shrinks the failure through the
// minimizor pipeline, and returns the witness. A nil result means every
// round within the budget was linearizable.
func (s *StrategyScheduler) Run() (*Histories, error) {
	for round := 0; round < s.maxRounds; round++ {
		s.log.Debug().Int(`round`, round).Log(`run round`)
		nonlinear, err := s.RunRound()
		if err != nil {
			return nil, err
		}
		if nonlinear == nil {
			s.strat.StartNextRound()
			continue
		}

		s.logHistory(`full nonlinear scenario`, nonlinear.Seq)
		for _, m := range s.minimizors {
			stage := startTimer()
			s.log.Info().Str(`minimizor`, m.Name()).Log(`minimizing`)
			m.Minimize(s, nonlinear)
			s.log.Info().
				Str(`minimizor`, m.Name()).
				Dur(`elapsed`, stage.elapsed()).
				Int(`surviving_tasks`, s.strat.ValidTasksCount()).
				Int(`total_tasks`, s.strat.TotalTasksCount()).
				Log(`minimization stage done`)
			s.logHistory(`reduced scenario`, nonlinear.Seq)
		}
		return nonlinear, nil
	}
	return nil, nil
}

func (s *StrategyScheduler) logHistory(msg string, seq history.Sequential) {
	if b := s.log.Debug(); b.Enabled() {
		var sb strings.Builder
		sb.WriteByte('\n')
		s.printer.Print(&sb, seq)
		b.Str(`history`, sb.String()).Log(msg)
	}
}
