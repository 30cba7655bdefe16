package coro

// Token models a cooperative blocking primitive. A task owning a parked
// token is excluded from scheduling until the token is unparked by some
// other task. Target code that blocks (a mutex, a condition wait) takes a
// token through its argument tuple and parks it instead of blocking the OS
// thread.
type Token struct {
	parked bool
}

// Park parks the token and yields. The owning task will not be scheduled
// again until Unpark.
func (tk *Token) Park(p *Proc) {
	tk.parked = true
	p.Yield()
}

// Unpark releases the task parked on the token.
func (tk *Token) Unpark() {
	tk.parked = false
}

// Parked reports the token's state.
func (tk *Token) Parked() bool { return tk.parked }

// TokenValue wraps a token for use in an argument tuple.
func TokenValue(tk *Token) Value {
	return NewValueWith(tk, func(a, b *Token) bool { return a == b }, func(*Token) string { return `token` })
}
