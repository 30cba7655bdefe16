package futex

import (
	"testing"

	"github.com/dmitrii-artuhov/ltest/coro"
)

func TestWaitBlocksUntilWordChanges(t *testing.T) {
	var word int32
	task := coro.NewTask(0, `waiter`, nil, nil, func(p *coro.Proc, target any, args []coro.Value) coro.Value {
		Wait(p, &word, 0)
		return coro.NewValue(int(word))
	})

	task.Resume()
	if !task.Blocked() {
		t.Fatal(`task not blocked after Wait`)
	}

	word = 7
	if task.Blocked() {
		t.Fatal(`task still blocked after the word changed`)
	}
	task.Resume()
	if !task.Returned() {
		t.Fatal(`task did not finish`)
	}
	if got := task.RetVal(); !got.Equal(coro.NewValue(7)) {
		t.Errorf(`ret = %s`, got)
	}
}

func TestWaitOnChangedWordDoesNotBlock(t *testing.T) {
	var word int32 = 3
	task := coro.NewTask(0, `waiter`, nil, nil, func(p *coro.Proc, target any, args []coro.Value) coro.Value {
		Wait(p, &word, 0)
		return coro.Void
	})

	task.Resume()
	// The wait was recorded against value 0, but the word holds 3.
	if task.Blocked() {
		t.Fatal(`task blocked although the word never matched`)
	}
	task.Terminate()
}

func TestSchedYieldAndWakeSuspend(t *testing.T) {
	steps := 0
	task := coro.NewTask(0, `yielder`, nil, nil, func(p *coro.Proc, target any, args []coro.Value) coro.Value {
		steps++
		SchedYield(p)
		steps++
		Wake(p)
		steps++
		return coro.Void
	})

	task.Resume()
	if steps != 1 {
		t.Fatalf(`steps after first resume = %d`, steps)
	}
	task.Resume()
	if steps != 2 {
		t.Fatalf(`steps after second resume = %d`, steps)
	}
	task.Resume()
	if steps != 3 || !task.Returned() {
		t.Fatalf(`steps = %d returned = %v`, steps, task.Returned())
	}
}
