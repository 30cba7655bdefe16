package coro

import (
	"testing"
)

// yieldNTimes builds a body that yields n times before returning v.
func yieldNTimes(n, v int) Func {
	return func(p *Proc, target any, args []Value) Value {
		for i := 0; i < n; i++ {
			p.Yield()
		}
		return NewValue(v)
	}
}

func TestTaskResumeUntilReturn(t *testing.T) {
	task := NewTask(7, `work`, nil, nil, yieldNTimes(2, 42))
	if task.Returned() {
		t.Fatal(`task returned before first resume`)
	}

	task.Resume()
	if task.Returned() {
		t.Fatal(`returned after first resume, expected a yield`)
	}
	task.Resume()
	if task.Returned() {
		t.Fatal(`returned after second resume, expected a yield`)
	}
	task.Resume()
	if !task.Returned() {
		t.Fatal(`not returned after final resume`)
	}

	if got := task.RetVal(); !got.Equal(NewValue(42)) {
		t.Errorf(`ret val = %s`, got)
	}
	if task.ID() != 7 || task.Name() != `work` {
		t.Errorf(`id/name = %d/%s`, task.ID(), task.Name())
	}
}

func TestTaskResumePublishesExactlyOnce(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal(`resume of a returned task should panic`)
		}
	}()
	task := NewTask(0, `noop`, nil, nil, yieldNTimes(0, 1))
	task.Resume()
	task.Resume()
}

func TestTaskRetValBeforeReturnPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal(`RetVal before return should panic`)
		}
	}()
	task := NewTask(0, `noop`, nil, nil, yieldNTimes(3, 1))
	task.Resume()
	task.RetVal()
}

func TestTaskTerminate(t *testing.T) {
	task := NewTask(1, `loop`, nil, nil, yieldNTimes(5, 9))
	task.Resume()
	task.Terminate()
	if !task.Returned() {
		t.Fatal(`terminate left the task unfinished`)
	}
	if got := task.RetVal(); !got.Equal(NewValue(9)) {
		t.Errorf(`ret val = %s`, got)
	}
}

func TestTaskRestart(t *testing.T) {
	var runs int
	body := func(p *Proc, target any, args []Value) Value {
		runs++
		p.Yield()
		return NewValue(runs)
	}
	task := NewTask(3, `counted`, nil, []Value{NewValue(10)}, body)
	tk := new(Token)
	task.SetToken(tk)
	tk.parked = true

	task.Terminate()
	restarted := task.Restart(nil)

	if restarted.ID() != 3 || restarted.Name() != `counted` {
		t.Errorf(`restart changed identity: %d/%s`, restarted.ID(), restarted.Name())
	}
	if len(restarted.Args()) != 1 || !restarted.Args()[0].Equal(NewValue(10)) {
		t.Error(`restart changed the argument tuple`)
	}
	if restarted.Token() != tk {
		t.Error(`token did not move to the restarted task`)
	}
	if restarted.Parked() {
		t.Error(`restarted task must start unparked`)
	}
	if task.Token() != nil {
		t.Error(`token left behind on the old task`)
	}

	restarted.Terminate()
	if got := restarted.RetVal(); !got.Equal(NewValue(2)) {
		t.Errorf(`restarted run = %s, want 2`, got)
	}
}

func TestTaskRestartUnfinishedPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal(`restart of an unfinished task should panic`)
		}
	}()
	task := NewTask(0, `x`, nil, nil, yieldNTimes(2, 0))
	task.Resume()
	task.Restart(nil)
}

func TestTokenParkExcludes(t *testing.T) {
	tk := new(Token)
	body := func(p *Proc, target any, args []Value) Value {
		tk.Park(p)
		return Void
	}
	task := NewTask(0, `parker`, nil, nil, body)
	task.SetToken(tk)

	task.Resume()
	if !task.Parked() {
		t.Fatal(`task should be parked after Park`)
	}
	tk.Unpark()
	if task.Parked() {
		t.Fatal(`task should be schedulable after Unpark`)
	}
	task.Terminate()
}

func TestBlockedFollowsFutexWord(t *testing.T) {
	var word int32 = 1
	body := func(p *Proc, target any, args []Value) Value {
		p.Task().SetBlocked(&word, 1)
		p.Yield()
		return Void
	}
	task := NewTask(0, `waiter`, nil, nil, body)
	task.Resume()

	if !task.Blocked() {
		t.Fatal(`task should block while the word holds the value`)
	}
	word = 2
	if task.Blocked() {
		t.Fatal(`task should unblock once the word changes`)
	}
	// The wait record is cleared on the unblocking check.
	word = 1
	if task.Blocked() {
		t.Fatal(`a cleared wait must not re-arm`)
	}
	task.Terminate()
}

func TestBuilder(t *testing.T) {
	b := NewBuilder(`push`, func(target any, threadID, taskID int) *Task {
		return NewTask(taskID, `push`, target, []Value{NewValue(threadID)}, yieldNTimes(0, threadID))
	})
	if b.Name() != `push` {
		t.Fatalf(`name = %s`, b.Name())
	}
	task := b.Build(nil, 4, 11)
	if task.ID() != 11 {
		t.Errorf(`task id = %d`, task.ID())
	}
	task.Terminate()
	if got := task.RetVal(); !got.Equal(NewValue(4)) {
		t.Errorf(`ret val = %s`, got)
	}
}
