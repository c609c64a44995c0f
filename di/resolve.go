package di

import (
	"context"
	"fmt"
	"reflect"
)

// Resolve resolves a bean by id with type safety.
//
// Example:
//
//	svc, err := di.Resolve[*member.Service](ctx, c, "memberService")
func Resolve[T any](ctx context.Context, r Resolver, id string) (T, error) {
	var zero T
	instance, err := r.Resolve(ctx, id)
	if err != nil {
		return zero, err
	}
	result, ok := instance.(T)
	if !ok {
		return zero, errTypeMismatch(id, instance, reflect.TypeFor[T]().String())
	}
	return result, nil
}

// MustResolve resolves a bean by id and panics on failure. Use it in wiring
// code where a missing bean is a programming error.
func MustResolve[T any](ctx context.Context, r Resolver, id string) T {
	result, err := Resolve[T](ctx, r, id)
	if err != nil {
		panic(fmt.Sprintf("di: failed to resolve %s: %v", id, err))
	}
	return result
}

// TryResolve resolves a bean by id, returning false on any failure.
//
//	if metrics, ok := di.TryResolve[MetricsClient](ctx, c, "metrics"); ok {
//	    metrics.RecordEvent(...)
//	}
func TryResolve[T any](ctx context.Context, r Resolver, id string) (T, bool) {
	result, err := Resolve[T](ctx, r, id)
	if err != nil {
		var zero T
		return zero, false
	}
	return result, true
}

// ResolveOf resolves the single bean assignable to T. An optional tag
// narrows the candidates.
//
//	policy, err := di.ResolveOf[discount.Policy](ctx, c, "main")
func ResolveOf[T any](ctx context.Context, r Resolver, tag ...string) (T, error) {
	var zero T
	var q string
	if len(tag) > 0 {
		q = tag[0]
	}
	instance, err := r.ResolveType(ctx, reflect.TypeFor[T](), q)
	if err != nil {
		return zero, err
	}
	result, ok := instance.(T)
	if !ok {
		return zero, errTypeMismatch(Dep[T](Tagged(q)).String(), instance, reflect.TypeFor[T]().String())
	}
	return result, nil
}

// ResolveAll resolves every bean assignable to T, keyed by id.
func ResolveAll[T any](ctx context.Context, r Resolver) (map[string]T, error) {
	beans, err := r.ResolveAll(ctx, reflect.TypeFor[T]())
	if err != nil {
		return nil, err
	}
	out := make(map[string]T, len(beans))
	for id, instance := range beans {
		result, ok := instance.(T)
		if !ok {
			return nil, errTypeMismatch(id, instance, reflect.TypeFor[T]().String())
		}
		out[id] = result
	}
	return out, nil
}
