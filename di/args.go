package di

import (
	"fmt"
	"reflect"
)

// Args holds the resolved dependencies of a bean, in declaration order.
type Args struct {
	deps   []Dependency
	values []argValue
}

type argValue struct {
	value   any
	many    []any
	present bool
}

// Len returns the number of declared dependencies.
func (a Args) Len() int { return len(a.values) }

// NewArgs builds Args from plain values, one per position. It is meant for
// calling constructors directly in tests.
func NewArgs(values ...any) Args {
	args := Args{values: make([]argValue, len(values))}
	for i, v := range values {
		if many, ok := v.([]any); ok {
			args.values[i] = argValue{many: many, present: true}
			continue
		}
		args.values[i] = argValue{value: v, present: v != nil}
	}
	return args
}

func (a Args) at(i int) argValue {
	if i < 0 || i >= len(a.values) {
		panic(fmt.Sprintf("di: argument %d out of range (%d dependencies)", i, len(a.values)))
	}
	return a.values[i]
}

func (a Args) describe(i int) string {
	if i < len(a.deps) {
		return a.deps[i].String()
	}
	return fmt.Sprintf("argument %d", i)
}

// Arg returns dependency i as T. It panics when the value is absent or has
// another type; the container reports such panics as ConstructionFailed.
func Arg[T any](a Args, i int) T {
	v := a.at(i)
	if !v.present {
		panic(fmt.Sprintf("di: %s is absent", a.describe(i)))
	}
	t, ok := v.value.(T)
	if !ok {
		panic(fmt.Sprintf("di: %s is %T, expected %s", a.describe(i), v.value, reflect.TypeFor[T]()))
	}
	return t
}

// OptionalArg returns dependency i, which may be absent.
func OptionalArg[T any](a Args, i int) Maybe[T] {
	v := a.at(i)
	if !v.present {
		return None[T]()
	}
	return Some(Arg[T](a, i))
}

// ManyArg returns every bean collected for a Many dependency.
func ManyArg[T any](a Args, i int) []T {
	v := a.at(i)
	out := make([]T, 0, len(v.many))
	for _, item := range v.many {
		t, ok := item.(T)
		if !ok {
			panic(fmt.Sprintf("di: element of %s is %T, expected %s", a.describe(i), item, reflect.TypeFor[T]()))
		}
		out = append(out, t)
	}
	return out
}

// Maybe is a value that may be absent.
type Maybe[T any] struct {
	value T
	ok    bool
}

// Some wraps a present value.
func Some[T any](v T) Maybe[T] { return Maybe[T]{value: v, ok: true} }

// None returns an absent value.
func None[T any]() Maybe[T] { return Maybe[T]{} }

// Get returns the value and whether it is present.
func (m Maybe[T]) Get() (T, bool) { return m.value, m.ok }

// Present reports whether the value is present.
func (m Maybe[T]) Present() bool { return m.ok }

// OrElse returns the value, or fallback when absent.
func (m Maybe[T]) OrElse(fallback T) T {
	if m.ok {
		return m.value
	}
	return fallback
}
