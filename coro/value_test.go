package coro

import "testing"

func TestValueEqual(t *testing.T) {
	for _, tc := range [...]struct {
		name string
		a, b Value
		want bool
	}{
		{`equal ints`, NewValue(5), NewValue(5), true},
		{`unequal ints`, NewValue(5), NewValue(6), false},
		{`int vs string`, NewValue(5), NewValue(`5`), false},
		{`void vs void`, Void, Void, true},
		{`void vs int`, Void, NewValue(0), true},
		{`zero vs zero`, Value{}, Value{}, true},
		{`zero vs int`, Value{}, NewValue(0), false},
		{`custom comparator`, NewValueWith(3, func(a, b int) bool { return a%2 == b%2 }, func(int) string { return `odd` }), NewValue(5), true},
	} {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.a.Equal(tc.b); got != tc.want {
				t.Errorf(`Equal(%s, %s) = %v, want %v`, tc.a, tc.b, got, tc.want)
			}
		})
	}
}

func TestValueString(t *testing.T) {
	if got := NewValue(17).String(); got != `17` {
		t.Errorf(`String() = %q`, got)
	}
	if got := Void.String(); got != `void` {
		t.Errorf(`Void.String() = %q`, got)
	}
	if got := (Value{}).String(); got != `<none>` {
		t.Errorf(`zero String() = %q`, got)
	}
	if got := TokenValue(new(Token)).String(); got != `token` {
		t.Errorf(`token String() = %q`, got)
	}
}

func TestValueGet(t *testing.T) {
	if got := Get[int](NewValue(12)); got != 12 {
		t.Errorf(`Get = %d`, got)
	}
	tk := new(Token)
	if got, ok := AsToken(TokenValue(tk)); !ok || got != tk {
		t.Error(`AsToken lost the token`)
	}
	if _, ok := AsToken(NewValue(1)); ok {
		t.Error(`AsToken on an int`)
	}
}
