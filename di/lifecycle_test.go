package di

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"testing"
)

type tracked struct {
	name        string
	events      *[]string
	initialized bool
	failDestroy error
	closed      bool
}

func (t *tracked) Init(context.Context) error {
	t.initialized = true
	*t.events = append(*t.events, "init "+t.name)
	return nil
}

func (t *tracked) Destroy(context.Context) error {
	*t.events = append(*t.events, "destroy "+t.name)
	return t.failDestroy
}

func (t *tracked) Close() error {
	t.closed = true
	return nil
}

func trackedDef(id string, events *[]string, opts ...DefinitionOption) *Definition {
	return Define(id, func(context.Context, Args) (*tracked, error) {
		return &tracked{name: id, events: events}, nil
	}, opts...)
}

func TestPostConstruct(t *testing.T) {
	var events []string
	c := newTestContainer(t)
	c.MustRegister(
		trackedDef("interface", &events),
		trackedDef("hook", &events, OnPostConstruct(func(_ context.Context, b *tracked) error {
			*b.events = append(*b.events, "hook "+b.name)
			return nil
		})),
	)

	ctx := context.Background()
	viaInterface := MustResolve[*tracked](ctx, c, "interface")
	viaHook := MustResolve[*tracked](ctx, c, "hook")
	MustResolve[*tracked](ctx, c, "interface")

	if !viaInterface.initialized {
		t.Error("expected Init to run")
	}
	if viaHook.initialized {
		t.Error("expected the hook to replace Init")
	}
	if got := strings.Join(events, ","); got != "init interface,hook hook" {
		t.Errorf("expected each post-construct step once, got %q", got)
	}
}

func TestPostConstructTypeMismatch(t *testing.T) {
	c := newTestContainer(t)
	c.MustRegister(Define("english", newEnglish("a"), OnPostConstruct(func(context.Context, *french) error { return nil })))

	_, err := c.Resolve(context.Background(), "english")
	if !errors.Is(err, ErrConstructionFailed) || !errors.Is(err, ErrTypeMismatch) {
		t.Errorf("expected ConstructionFailed caused by TypeMismatch, got %v", err)
	}
}

func TestShutdownReverseOrder(t *testing.T) {
	var events []string
	c := newTestContainer(t)
	c.MustRegister(
		trackedDef("db", &events),
		Define("repo", func(_ context.Context, args Args) (*tracked, error) {
			Arg[*tracked](args, 0)
			return &tracked{name: "repo", events: &events}, nil
		}, DependsOn(Dep[*tracked](Tagged("db"))), NoAutowire()),
		trackedDef("unused", &events, Lazy()),
	)

	ctx := context.Background()
	if err := c.Start(ctx); err != nil {
		t.Fatal(err)
	}
	events = nil
	if err := c.Shutdown(ctx); err != nil {
		t.Fatal(err)
	}
	if got := strings.Join(events, ","); got != "destroy repo,destroy db" {
		t.Errorf("expected dependents destroyed first, got %q", got)
	}
}

func TestShutdownContinuesAfterFailure(t *testing.T) {
	var events []string
	c := newTestContainer(t)
	c.MustRegister(
		trackedDef("a", &events),
		trackedDef("b", &events, OnPreDestroy(func(_ context.Context, b *tracked) error {
			*b.events = append(*b.events, "destroy b")
			return fmt.Errorf("disk full")
		})),
		trackedDef("c", &events, OnPreDestroy(func(context.Context, *tracked) error {
			panic("broken")
		})),
	)

	ctx := context.Background()
	if err := c.Start(ctx); err != nil {
		t.Fatal(err)
	}
	events = nil

	err := c.Shutdown(ctx)
	if !errors.Is(err, ErrDestroyFailed) {
		t.Fatalf("expected DestroyFailed, got %v", err)
	}
	for _, want := range []string{"disk full", "broken"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("expected %q in %q", want, err.Error())
		}
	}
	if got := strings.Join(events, ","); got != "destroy b,destroy a" {
		t.Errorf("expected every singleton attempted, got %q", got)
	}

	if err := c.Shutdown(ctx); err != nil {
		t.Errorf("expected second Shutdown to return nil, got %v", err)
	}
	if _, err := c.Resolve(ctx, "a"); !errors.Is(err, ErrContainerClosed) {
		t.Errorf("expected ContainerClosed, got %v", err)
	}
	if err := c.Register(trackedDef("d", &events)); !errors.Is(err, ErrContainerClosed) {
		t.Errorf("expected ContainerClosed on register, got %v", err)
	}
	if _, err := c.StartScope(ctx, ScopeRequest); !errors.Is(err, ErrContainerClosed) {
		t.Errorf("expected ContainerClosed on StartScope, got %v", err)
	}
}

func TestShutdownEndsOpenScopesFirst(t *testing.T) {
	var events []string
	c := newTestContainer(t)
	c.MustRegister(
		trackedDef("singleton", &events),
		trackedDef("request", &events, RequestScoped()),
	)

	ctx := context.Background()
	if err := c.Start(ctx); err != nil {
		t.Fatal(err)
	}
	sctx, err := c.StartScope(ctx, ScopeRequest)
	if err != nil {
		t.Fatal(err)
	}
	MustResolve[*tracked](sctx, c, "request")
	events = nil

	if err := c.Shutdown(ctx); err != nil {
		t.Fatal(err)
	}
	if got := strings.Join(events, ","); got != "destroy request,destroy singleton" {
		t.Errorf("expected request bean destroyed before singleton, got %q", got)
	}
}

func TestDestroyPrecedence(t *testing.T) {
	var events []string
	c := newTestContainer(t)
	external := &tracked{name: "external", events: &events}
	closer := &requestLog{}
	c.MustRegister(
		trackedDef("destroyer", &events),
		Instance("external", external, NoAutowire()),
		Instance("externalHooked", &requestLog{}, OnPreDestroy(func(_ context.Context, r *requestLog) error {
			events = append(events, "destroy externalHooked")
			return nil
		})),
		Define("closer", func(context.Context, Args) (*requestLog, error) { return closer, nil }, NoAutowire()),
	)

	ctx := context.Background()
	if err := c.Start(ctx); err != nil {
		t.Fatal(err)
	}
	destroyer := MustResolve[*tracked](ctx, c, "destroyer")
	if err := c.Shutdown(ctx); err != nil {
		t.Fatal(err)
	}

	if destroyer.closed {
		t.Error("expected Destroy to take precedence over Close")
	}
	if closer.closes.Load() == 0 {
		t.Error("expected Close to be inferred")
	}
	if external.closed || external.initialized || slices.Contains(events, "destroy external") {
		t.Error("expected no inferred teardown for external instances")
	}
	if !slices.Contains(events, "destroy externalHooked") {
		t.Error("expected an explicit hook to run for an external instance")
	}
}

func TestRelease(t *testing.T) {
	var events []string
	c := newTestContainer(t)
	c.MustRegister(
		trackedDef("proto", &events, Prototype()),
		trackedDef("single", &events),
	)
	ctx := context.Background()

	p := MustResolve[*tracked](ctx, c, "proto")
	if err := c.Release(ctx, "proto", p); err != nil {
		t.Fatal(err)
	}
	if got := strings.Join(events, ","); got != "init proto,destroy proto" {
		t.Errorf("expected prototype destroyed on release, got %q", got)
	}

	s := MustResolve[*tracked](ctx, c, "single")
	if err := c.Release(ctx, "single", s); err == nil {
		t.Error("expected release of a singleton to fail")
	}
	if err := c.Release(ctx, "missing", s); !errors.Is(err, ErrNoSuchBean) {
		t.Errorf("expected NoSuchBean, got %v", err)
	}
}

func TestGuard(t *testing.T) {
	tests := []struct {
		name string
		fn   func() error
		want string
	}{
		{name: "ok", fn: func() error { return nil }},
		{name: "error", fn: func() error { return fmt.Errorf("failed") }, want: "failed"},
		{name: "panic value", fn: func() error { panic("boom") }, want: "panic: boom"},
		{name: "panic error", fn: func() error { panic(fmt.Errorf("bad")) }, want: "panic: bad"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := guard(tt.fn)
			if tt.want == "" {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || err.Error() != tt.want {
				t.Errorf("expected %q, got %v", tt.want, err)
			}
		})
	}
}
