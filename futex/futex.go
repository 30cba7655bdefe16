package futex

import "github.com/dmitrii-artuhov/ltest/coro"

// SchedYield is the cooperative meaning of sched_yield: give the scheduler
// a chance to run someone else.
func SchedYield(p *coro.Proc) {
	p.Yield()
}

// Wait blocks the running task while *addr == val. The blocked state is
// re-evaluated by strategies at every scheduling decision.
func Wait(p *coro.Proc, addr *int32, val int32) {
	p.Task().SetBlocked(addr, val)
	p.Yield()
}

// Wake yields; the waiter unblocks by itself once the word has changed.
func Wake(p *coro.Proc) {
	p.Yield()
}
