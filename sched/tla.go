package sched

import (
	"strings"

	"github.com/joeycumines/logiface"

	"github.com/dmitrii-artuhov/ltest/coro"
	"github.com/dmitrii-artuhov/ltest/history"
	"github.com/dmitrii-artuhov/ltest/strategy"
)

type (
	// TLAConfig tunes the enumerative scheduler.
	TLAConfig struct {
		// MaxTasks is the number of finished tasks that completes an
		// execution. **Defaults to 15, if 0.**
		MaxTasks int

		// MaxRounds bounds how many complete executions are enumerated.
		// **Defaults to 5, if 0.**
		MaxRounds int

		// Threads is the number of thread slots. **Defaults to 2, if 0.**
		Threads int

		// MaxSwitches bounds preemptions per execution: resuming an
		// existing task on a different slot than the previous step counts
		// as one. **Defaults to no practical bound, if 0.**
		MaxSwitches int

		// Logger receives per-round progress. May be nil.
		Logger *logiface.Logger[logiface.Event]
	}

	// TLA enumerates all executions within the preemption and task bounds
	// by depth-first expansion: at each step it picks a slot and either
	// resumes its current task or tries every builder in turn. Since a
	// resume cannot be undone, backtracking replays the whole prefix from
	// a reset target.
	TLA struct {
		target   strategy.Target
		builders []coro.Builder
		checker  Checker
		printer  *history.Printer
		cfg      TLAConfig
		log      *logiface.Logger[logiface.Event]

		threads        [][]*coro.Task
		frames         []tlaFrame
		seq            history.Sequential
		full           history.Full
		threadIDHist   []int
		finishedTasks  int
		finishedRounds int
		nextTaskID     int
	}

	// tlaFrame is one row of the execution table: which slot moved at this
	// step, which task in it, and whether the step created the task.
	tlaFrame struct {
		thread int
		index  int
		isNew  bool
	}
)

// NewTLA builds the enumerative scheduler.
func NewTLA(target strategy.Target, builders []coro.Builder, checker Checker, cfg TLAConfig) *TLA {
	if cfg.MaxTasks <= 0 {
		cfg.MaxTasks = 15
	}
	if cfg.MaxRounds <= 0 {
		cfg.MaxRounds = 5
	}
	if cfg.Threads <= 0 {
		cfg.Threads = 2
	}
	if cfg.MaxSwitches <= 0 {
		cfg.MaxSwitches = 100000000
	}
	return &TLA{
		target:   target,
		builders: builders,
		checker:  checker,
		printer:  history.NewPrinter(cfg.Threads),
		cfg:      cfg,
		log:      cfg.Logger,
		threads:  make([][]*coro.Task, cfg.Threads),
	}
}

// Run explores executions until a non-linearizable one is found or the
// round budget is spent.
func (s *TLA) Run() (*Histories, error) {
	defer s.terminateTasks()
	_, res, err := s.runStep(0, 0)
	return res, err
}

func (s *TLA) runStep(step, switches int) (over bool, res *Histories, err error) {
	s.frames = append(s.frames, tlaFrame{})
	defer func() { s.frames = s.frames[:len(s.frames)-1] }()

	allParked := true
	for i := range s.threads {
		slot := s.threads[i]
		if len(slot) > 0 && !slot[len(slot)-1].Returned() {
			t := slot[len(slot)-1]
			if t.Parked() || t.Blocked() {
				continue
			}
			allParked = false
			over, res, err = s.resumeTask(step, switches, i, false)
			if over || res != nil || err != nil {
				return over, res, err
			}
			// A resume cannot be taken back; rebuild the prefix.
			s.replay(step)
			continue
		}

		allParked = false
		for _, builder := range s.builders {
			t := builder.Build(s.target, i, s.nextTaskID)
			s.nextTaskID++
			s.threads[i] = append(s.threads[i], t)

			over, res, err = s.resumeTask(step, switches, i, true)
			if over || res != nil || err != nil {
				return over, res, err
			}

			slot := s.threads[i]
			slot[len(slot)-1].Terminate()
			s.threads[i] = slot[:len(slot)-1]
			s.nextTaskID--
			s.replay(step)
		}
	}

	if allParked {
		return false, nil, strategy.ErrDeadlock
	}
	return false, nil, nil
}

// resumeTask resumes the picked slot's newest task, recurses, and undoes the
// history bookkeeping on the way back.
func (s *TLA) resumeTask(step, switches, thread int, isNew bool) (bool, *Histories, error) {
	if !isNew {
		prevThread := -1
		if len(s.threadIDHist) > 0 {
			prevThread = s.threadIDHist[len(s.threadIDHist)-1]
		}
		if thread != prevThread {
			switches++
		}
		if switches > s.cfg.MaxSwitches {
			// The switch budget is spent; do not resume down this branch.
			return false, nil, nil
		}
	}

	slot := s.threads[thread]
	t := slot[len(slot)-1]
	s.frames[step] = tlaFrame{thread: thread, index: len(slot) - 1, isNew: isNew}

	s.full = append(s.full, history.Entry{TaskID: t.ID(), ThreadID: thread})
	s.threadIDHist = append(s.threadIDHist, thread)
	if isNew {
		s.seq = append(s.seq, history.NewInvoke(t, thread))
	}

	t.Resume()
	finished := t.Returned()
	if finished {
		s.finishedTasks++
		s.seq = append(s.seq, history.NewResponse(t, t.RetVal(), thread))
	}

	if s.finishedTasks < s.cfg.MaxTasks {
		over, res, err := s.runStep(step+1, switches)
		if over || res != nil || err != nil {
			return over, res, err
		}
	} else {
		s.logRound()
		s.finishedRounds++
		if !s.checker.Check(s.seq) {
			full := append(history.Full(nil), s.full...)
			seq := append(history.Sequential(nil), s.seq...)
			return false, &Histories{Full: full, Seq: seq}, nil
		}
		if s.finishedRounds == s.cfg.MaxRounds {
			return true, nil, nil
		}
	}

	s.threadIDHist = s.threadIDHist[:len(s.threadIDHist)-1]
	s.full = s.full[:len(s.full)-1]
	if finished {
		s.finishedTasks--
		s.seq = s.seq[:len(s.seq)-1]
	}
	if isNew {
		s.seq = s.seq[:len(s.seq)-1]
	}
	return false, nil, nil
}

// replay re-executes frames 0..stepEnd against a reset target. Histories
// hold ids, not pointers, so they survive the restart untouched.
func (s *TLA) replay(stepEnd int) {
	s.terminateTasks()
	s.target.Reset()
	for step := 0; step < stepEnd; step++ {
		f := s.frames[step]
		t := s.threads[f.thread][f.index]
		if f.isNew {
			t = t.Restart(s.target)
			s.threads[f.thread][f.index] = t
		}
		t.Resume()
	}
}

func (s *TLA) terminateTasks() {
	for _, slot := range s.threads {
		for _, t := range slot {
			if !t.Returned() {
				t.Terminate()
			}
		}
	}
}

func (s *TLA) logRound() {
	if b := s.log.Debug(); b.Enabled() {
		var sb strings.Builder
		sb.WriteByte('\n')
		s.printer.Print(&sb, s.seq)
		b.Int(`round`, s.finishedRounds).Str(`history`, sb.String()).Log(`tla round finished`)
	}
}
