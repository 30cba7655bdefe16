package ltest

import "github.com/dmitrii-artuhov/ltest/coro"

// GenEmpty generates an empty argument tuple.
func GenEmpty(int) []coro.Value { return nil }

// GenToken generates a tuple holding a fresh blocking token.
func GenToken(int) []coro.Value {
	return []coro.Value{coro.TokenValue(new(coro.Token))}
}

// GenThreadID generates a tuple holding the thread id as an int argument.
func GenThreadID(threadID int) []coro.Value {
	return []coro.Value{coro.NewValue(threadID)}
}
