package futex

import (
	"golang.org/x/sys/unix"

	"github.com/dmitrii-artuhov/ltest/coro"
)

// Op dispatches an intercepted futex opcode onto the cooperative runtime.
// Unknown operations degrade to a plain yield, which is always safe: the
// task simply becomes schedulable again.
func Op(p *coro.Proc, op int, addr *int32, val int32) {
	switch op &^ unix.FUTEX_PRIVATE_FLAG {
	case unix.FUTEX_WAIT:
		Wait(p, addr, val)
	case unix.FUTEX_WAKE:
		Wake(p)
	default:
		p.Yield()
	}
}
