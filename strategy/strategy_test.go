package strategy

import (
	"errors"
	"testing"

	"github.com/dmitrii-artuhov/ltest/coro"
)

type fakeTarget struct {
	resets int
}

func (f *fakeTarget) Reset() { f.resets++ }

// yieldingBuilder makes tasks that yield the given number of times and then
// return their own id.
func yieldingBuilder(name string, yields int) coro.Builder {
	return coro.NewBuilder(name, func(target any, threadID, taskID int) *coro.Task {
		return coro.NewTask(taskID, name, target, nil, func(p *coro.Proc, target any, args []coro.Value) coro.Value {
			for i := 0; i < yields; i++ {
				p.Yield()
			}
			return coro.NewValue(taskID)
		})
	})
}

// parkingBuilder makes tasks that park their token forever.
func parkingBuilder(name string) coro.Builder {
	return coro.NewBuilder(name, func(target any, threadID, taskID int) *coro.Task {
		tk := new(coro.Token)
		t := coro.NewTask(taskID, name, target, []coro.Value{coro.TokenValue(tk)}, func(p *coro.Proc, target any, args []coro.Value) coro.Value {
			tk.Park(p)
			return coro.Void
		})
		t.SetToken(tk)
		return t
	})
}

func drain(s Strategy) {
	s.StartNextRound()
}

func TestRoundRobinCyclesThreads(t *testing.T) {
	s := NewRoundRobin(&fakeTarget{}, 2, []coro.Builder{yieldingBuilder(`op`, 1)}, 1)
	defer drain(s)

	wantThreads := []int{0, 1, 0, 1}
	wantNew := []bool{true, true, false, false}
	for i := range wantThreads {
		next, err := s.Next()
		if err != nil {
			t.Fatalf(`step %d: %v`, i, err)
		}
		if next.ThreadID != wantThreads[i] || next.IsNew != wantNew[i] {
			t.Fatalf(`step %d: thread=%d new=%v, want %d/%v`, i, next.ThreadID, next.IsNew, wantThreads[i], wantNew[i])
		}
		next.Task.Resume()
	}

	// Both tasks returned; the next picks must start fresh tasks.
	next, err := s.Next()
	if err != nil {
		t.Fatal(err)
	}
	if !next.IsNew {
		t.Fatal(`slot with a returned task must get a new one`)
	}
	next.Task.Resume()

	if got := s.TotalTasksCount(); got != 3 {
		t.Errorf(`total tasks = %d`, got)
	}
	if got := s.ThreadsCount(); got != 2 {
		t.Errorf(`threads = %d`, got)
	}
}

func TestRoundRobinDeadlock(t *testing.T) {
	s := NewRoundRobin(&fakeTarget{}, 2, []coro.Builder{parkingBuilder(`Lock`)}, 1)

	for i := 0; i < 2; i++ {
		next, err := s.Next()
		if err != nil {
			t.Fatalf(`step %d: %v`, i, err)
		}
		next.Task.Resume()
	}

	if _, err := s.Next(); !errors.Is(err, ErrDeadlock) {
		t.Fatalf(`err = %v, want ErrDeadlock`, err)
	}

	// Unparking makes the round schedulable again.
	for _, slot := range s.Tasks() {
		slot[len(slot)-1].Token().Unpark()
	}
	if _, err := s.Next(); err != nil {
		t.Fatalf(`after unpark: %v`, err)
	}
	for _, slot := range s.Tasks() {
		for _, task := range slot {
			task.Token().Unpark()
			if !task.Returned() {
				task.Terminate()
			}
		}
	}
}

func TestResetCurrentRoundRestartsTasks(t *testing.T) {
	target := &fakeTarget{}
	s := NewRoundRobin(target, 2, []coro.Builder{yieldingBuilder(`op`, 2)}, 1)
	defer drain(s)

	var ids []int
	for i := 0; i < 4; i++ {
		next, err := s.Next()
		if err != nil {
			t.Fatal(err)
		}
		if next.IsNew {
			ids = append(ids, next.Task.ID())
		}
		next.Task.Resume()
	}

	s.ResetCurrentRound()
	if target.resets == 0 {
		t.Fatal(`target not reset`)
	}

	var after []int
	for _, slot := range s.Tasks() {
		for _, task := range slot {
			after = append(after, task.ID())
			if task.Returned() {
				t.Errorf(`task %d still returned after reset`, task.ID())
			}
		}
	}
	if len(after) != len(ids) {
		t.Fatalf(`task count changed across reset: %v -> %v`, ids, after)
	}
}

func TestStartNextRoundClearsTasks(t *testing.T) {
	s := NewRoundRobin(&fakeTarget{}, 2, []coro.Builder{yieldingBuilder(`op`, 0)}, 1)

	for i := 0; i < 3; i++ {
		next, err := s.Next()
		if err != nil {
			t.Fatal(err)
		}
		next.Task.Resume()
	}
	s.StartNextRound()

	if got := s.TotalTasksCount(); got != 0 {
		t.Fatalf(`tasks after StartNextRound = %d`, got)
	}
	next, err := s.Next()
	if err != nil {
		t.Fatal(err)
	}
	if next.Task.ID() != 0 {
		t.Errorf(`task ids must restart from 0, got %d`, next.Task.ID())
	}
	next.Task.Resume()
}

func TestValidTasksCountExcludesRemoved(t *testing.T) {
	s := NewRoundRobin(&fakeTarget{}, 2, []coro.Builder{yieldingBuilder(`op`, 0)}, 1)
	defer drain(s)

	for i := 0; i < 4; i++ {
		next, err := s.Next()
		if err != nil {
			t.Fatal(err)
		}
		next.Task.Resume()
	}

	task, threadID, ok := s.GetTask(2)
	if !ok {
		t.Fatal(`task 2 not found`)
	}
	if task.ID() != 2 || threadID != 0 {
		t.Fatalf(`GetTask(2) = id %d thread %d`, task.ID(), threadID)
	}

	task.SetRemoved(true)
	if got, want := s.ValidTasksCount(), s.TotalTasksCount()-1; got != want {
		t.Errorf(`valid = %d, want %d`, got, want)
	}
}

func TestRandomWeightValidation(t *testing.T) {
	builders := []coro.Builder{yieldingBuilder(`op`, 0)}
	for _, tc := range [...]struct {
		name    string
		weights []int
		wantErr bool
	}{
		{`nil weights`, nil, false},
		{`matching weights`, []int{1, 3}, false},
		{`too few`, []int{1}, true},
		{`nonpositive`, []int{1, 0}, true},
	} {
		t.Run(tc.name, func(t *testing.T) {
			s, err := NewRandom(&fakeTarget{}, 2, builders, tc.weights, 1)
			if (err != nil) != tc.wantErr {
				t.Fatalf(`err = %v, wantErr %v`, err, tc.wantErr)
			}
			if s != nil {
				drain(s)
			}
		})
	}
}

func TestRandomSchedulesAllThreads(t *testing.T) {
	s, err := NewRandom(&fakeTarget{}, 3, []coro.Builder{yieldingBuilder(`op`, 1)}, nil, 7)
	if err != nil {
		t.Fatal(err)
	}
	defer drain(s)

	seen := make(map[int]int)
	for i := 0; i < 60; i++ {
		next, err := s.Next()
		if err != nil {
			t.Fatal(err)
		}
		seen[next.ThreadID]++
		next.Task.Resume()
	}
	for thread := 0; thread < 3; thread++ {
		if seen[thread] == 0 {
			t.Errorf(`thread %d never scheduled`, thread)
		}
	}
}

func TestPCTDeterministicUnderSeed(t *testing.T) {
	run := func() []int {
		s := NewPCT(&fakeTarget{}, 2, []coro.Builder{yieldingBuilder(`a`, 1), yieldingBuilder(`b`, 2)}, PCTConfig{Seed: 42})
		defer drain(s)
		var picks []int
		for i := 0; i < 30; i++ {
			next, err := s.Next()
			if err != nil {
				t.Fatal(err)
			}
			picks = append(picks, next.ThreadID)
			next.Task.Resume()
		}
		return picks
	}

	first, second := run(), run()
	for i := range first {
		if first[i] != second[i] {
			t.Fatalf(`seeded runs diverge at step %d: %v vs %v`, i, first, second)
		}
	}
}

func TestPCTForbidAllSame(t *testing.T) {
	s := NewPCT(&fakeTarget{}, 2, []coro.Builder{yieldingBuilder(`a`, 3), yieldingBuilder(`b`, 3)}, PCTConfig{Seed: 5, ForbidAllSame: true})
	defer drain(s)

	for i := 0; i < 20; i++ {
		next, err := s.Next()
		if err != nil {
			t.Fatal(err)
		}
		next.Task.Resume()

		names := make(map[string]struct{})
		busy := 0
		for _, slot := range s.Tasks() {
			if len(slot) == 0 {
				continue
			}
			busy++
			names[slot[len(slot)-1].Name()] = struct{}{}
		}
		if busy == s.ThreadsCount() && len(names) == 1 {
			t.Fatal(`all threads run the same method`)
		}
	}
}
