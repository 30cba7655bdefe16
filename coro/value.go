package coro

import "fmt"

type (
	// Value wraps a return value (or an argument) together with the
	// comparator and printer that give it meaning. The comparator and
	// printer never carry state of their own.
	Value struct {
		v   any
		eq  func(a, b any) bool
		str func(v any) string
	}
)

// Void is the return value of methods that return nothing. It compares equal
// to anything: a void method's response carries no data to disagree on.
var Void = Value{
	v:   struct{}{},
	eq:  func(a, b any) bool { return true },
	str: func(any) string { return `void` },
}

// NewValue wraps a comparable value with equality by == and printing via fmt.
func NewValue[T comparable](v T) Value {
	return Value{
		v: v,
		eq: func(a, b any) bool {
			x, ok := a.(T)
			if !ok {
				return false
			}
			y, ok := b.(T)
			if !ok {
				return false
			}
			return x == y
		},
		str: func(v any) string { return fmt.Sprint(v.(T)) },
	}
}

// NewValueWith wraps a value with a custom comparator and printer.
func NewValueWith[T any](v T, eq func(a, b T) bool, str func(T) string) Value {
	return Value{
		v: v,
		eq: func(a, b any) bool {
			x, ok := a.(T)
			if !ok {
				return false
			}
			y, ok := b.(T)
			if !ok {
				return false
			}
			return eq(x, y)
		},
		str: func(v any) string { return str(v.(T)) },
	}
}

// HasValue reports whether the wrapper holds a value. The zero Value does not.
func (v Value) HasValue() bool { return v.v != nil }

// Equal compares two wrapped values using the receiver's comparator.
func (v Value) Equal(o Value) bool {
	if v.HasValue() != o.HasValue() {
		return false
	}
	if !v.HasValue() {
		return true
	}
	return v.eq(v.v, o.v)
}

// String renders the wrapped value for the pretty printer.
func (v Value) String() string {
	if !v.HasValue() {
		return `<none>`
	}
	return v.str(v.v)
}

// AsToken extracts a token argument, if the value wraps one.
func AsToken(v Value) (*Token, bool) {
	tk, ok := v.v.(*Token)
	return tk, ok
}

// Get extracts the underlying value. It panics if the wrapper holds a
// different type, which indicates a mismatched specification method.
func Get[T any](v Value) T {
	return v.v.(T)
}
