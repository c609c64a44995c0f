package di

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	apperrors "github.com/kbukum/beankit/errors"
)

type counter struct{ n atomic.Int32 }

func (c *counter) ctor() func(context.Context, Args) (*english, error) {
	return func(context.Context, Args) (*english, error) {
		n := c.n.Add(1)
		return &english{name: fmt.Sprint(n)}, nil
	}
}

func TestSingletonResolvedOnce(t *testing.T) {
	c := newTestContainer(t)
	var built counter
	c.MustRegister(Define("english", built.ctor()))

	ctx := context.Background()
	first, err := Resolve[*english](ctx, c, "english")
	if err != nil {
		t.Fatal(err)
	}
	second, err := ResolveOf[greeter](ctx, c)
	if err != nil {
		t.Fatal(err)
	}
	if first != second {
		t.Error("expected the same singleton by id and by type")
	}
	if built.n.Load() != 1 {
		t.Errorf("expected one construction, got %d", built.n.Load())
	}
}

func TestSingletonConcurrentResolve(t *testing.T) {
	c := newTestContainer(t)
	var built counter
	c.MustRegister(Define("english", built.ctor()))

	const workers = 32
	results := make([]*english, workers)
	var wg sync.WaitGroup
	for i := range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i], _ = Resolve[*english](context.Background(), c, "english")
		}()
	}
	wg.Wait()

	if built.n.Load() != 1 {
		t.Fatalf("expected one construction, got %d", built.n.Load())
	}
	for i, r := range results {
		if r == nil || r != results[0] {
			t.Fatalf("worker %d got a different instance", i)
		}
	}
}

func TestPrototypeDistinct(t *testing.T) {
	c := newTestContainer(t)
	var built counter
	c.MustRegister(Define("english", built.ctor(), Prototype()))

	ctx := context.Background()
	a := MustResolve[*english](ctx, c, "english")
	b := MustResolve[*english](ctx, c, "english")
	if a == b {
		t.Error("expected distinct prototype instances")
	}
	if built.n.Load() != 2 {
		t.Errorf("expected two constructions, got %d", built.n.Load())
	}
}

type service struct {
	greeter greeter
	extra   Maybe[*french]
	all     []greeter
}

func TestDependencyInjection(t *testing.T) {
	c := newTestContainer(t)
	c.MustRegister(
		Define("english", newEnglish("a"), Primary()),
		Define("french", func(context.Context, Args) (*french, error) { return &french{}, nil }),
		Define("service", func(_ context.Context, args Args) (*service, error) {
			return &service{
				greeter: Arg[greeter](args, 0),
				extra:   OptionalArg[*french](args, 1),
				all:     ManyArg[greeter](args, 2),
			}, nil
		}, DependsOn(Dep[greeter](), Dep[*french](Optional()), Dep[greeter](Many()))),
	)

	svc, err := Resolve[*service](context.Background(), c, "service")
	if err != nil {
		t.Fatal(err)
	}
	if svc.greeter.Greet() != "hello a" {
		t.Errorf("expected primary greeter, got %q", svc.greeter.Greet())
	}
	if !svc.extra.Present() {
		t.Error("expected optional dependency to be present")
	}
	if len(svc.all) != 2 || svc.all[0].Greet() != "hello a" || svc.all[1].Greet() != "bonjour" {
		t.Errorf("expected both greeters in registration order, got %v", svc.all)
	}
}

func TestOptionalAbsent(t *testing.T) {
	c := newTestContainer(t)
	c.MustRegister(Define("service", func(_ context.Context, args Args) (*service, error) {
		return &service{extra: OptionalArg[*french](args, 0), all: ManyArg[greeter](args, 1)}, nil
	}, DependsOn(Dep[*french](Optional()), Dep[greeter](Many(), Optional()))))

	svc, err := Resolve[*service](context.Background(), c, "service")
	if err != nil {
		t.Fatal(err)
	}
	if svc.extra.Present() {
		t.Error("expected optional dependency to be absent")
	}
	if f := svc.extra.OrElse(nil); f != nil {
		t.Error("expected OrElse fallback")
	}
	if len(svc.all) != 0 {
		t.Errorf("expected empty collection, got %v", svc.all)
	}
}

func TestResolveSelection(t *testing.T) {
	tests := []struct {
		name    string
		defs    []*Definition
		tag     string
		want    string
		wantErr error
	}{
		{
			name:    "no candidate",
			wantErr: ErrNoSuchBean,
		},
		{
			name: "single candidate",
			defs: []*Definition{Define("english", newEnglish("a"))},
			want: "hello a",
		},
		{
			name:    "ambiguous",
			defs:    []*Definition{Define("a", newEnglish("a")), Define("b", newEnglish("b"))},
			wantErr: ErrAmbiguousDependency,
		},
		{
			name: "primary wins",
			defs: []*Definition{Define("a", newEnglish("a")), Define("b", newEnglish("b"), Primary())},
			want: "hello b",
		},
		{
			name:    "two primaries",
			defs:    []*Definition{Define("a", newEnglish("a"), Primary()), Define("b", newEnglish("b"), Primary())},
			wantErr: ErrAmbiguousDependency,
		},
		{
			name: "tag beats primary",
			defs: []*Definition{Define("a", newEnglish("a"), Primary()), Define("b", newEnglish("b"), WithTag("main"))},
			tag:  "main",
			want: "hello b",
		},
		{
			name: "tag falls back to id",
			defs: []*Definition{Define("a", newEnglish("a"), Primary()), Define("b", newEnglish("b"))},
			tag:  "b",
			want: "hello b",
		},
		{
			name:    "unknown tag",
			defs:    []*Definition{Define("a", newEnglish("a"))},
			tag:     "missing",
			wantErr: ErrNoSuchBean,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestContainer(t)
			c.MustRegister(tt.defs...)
			g, err := ResolveOf[greeter](context.Background(), c, tt.tag)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected %v, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if g.Greet() != tt.want {
				t.Errorf("expected %q, got %q", tt.want, g.Greet())
			}
		})
	}
}

func TestAmbiguousDetails(t *testing.T) {
	c := newTestContainer(t)
	c.MustRegister(Define("a", newEnglish("a")), Define("b", newEnglish("b")))

	_, err := ResolveOf[greeter](context.Background(), c)
	appErr, ok := apperrors.AsAppError(err)
	if !ok {
		t.Fatalf("expected AppError, got %v", err)
	}
	ids, _ := appErr.Details["candidates"].([]string)
	if len(ids) != 2 || ids[0] != "a" || ids[1] != "b" {
		t.Errorf("expected candidates [a b], got %v", appErr.Details["candidates"])
	}
}

type node struct{ next any }

func nodeDef(id, next string, opts ...DefinitionOption) *Definition {
	return Define(id, func(_ context.Context, args Args) (*node, error) {
		return &node{next: Arg[any](args, 0)}, nil
	}, append([]DefinitionOption{DependsOn(Dep[any](Tagged(next)))}, opts...)...)
}

func TestCircularDependency(t *testing.T) {
	c := newTestContainer(t)
	c.MustRegister(Define("a", func(_ context.Context, args Args) (*node, error) {
		return &node{next: Arg[*english](args, 0)}, nil
	}, DependsOn(Dep[*english]())))
	c.MustRegister(Define("b", func(_ context.Context, args Args) (*english, error) {
		Arg[*node](args, 0)
		return &english{}, nil
	}, DependsOn(Dep[*node]())))

	_, err := c.Resolve(context.Background(), "a")
	if !errors.Is(err, ErrCircularDependency) {
		t.Fatalf("expected CircularDependency, got %v", err)
	}
	if !strings.Contains(err.Error(), "a -> b -> a") {
		t.Errorf("expected cycle path in %q", err.Error())
	}
	appErr, _ := apperrors.AsAppError(err)
	path, _ := appErr.Details["path"].([]string)
	if len(path) != 3 || path[0] != "a" || path[2] != "a" {
		t.Errorf("expected path detail [a b a], got %v", appErr.Details["path"])
	}
}

func TestCircularThroughNestedResolve(t *testing.T) {
	c := newTestContainer(t)
	c.MustRegister(Define("self", func(ctx context.Context, args Args) (*node, error) {
		r := Arg[Resolver](args, 0)
		next, err := r.Resolve(ctx, "self")
		if err != nil {
			return nil, err
		}
		return &node{next: next}, nil
	}, DependsOn(Dep[Resolver]())))

	_, err := c.Resolve(context.Background(), "self")
	if !errors.Is(err, ErrCircularDependency) {
		t.Fatalf("expected CircularDependency, got %v", err)
	}
	if !strings.Contains(err.Error(), "self -> self") {
		t.Errorf("expected self cycle in %q", err.Error())
	}
}

// crossDef builds id by resolving other from inside its constructor. The
// first construction of each bean waits on arrived, so both construction
// locks are held before either nested resolve starts.
func crossDef(id, other string, arrived *sync.WaitGroup) *Definition {
	var once sync.Once
	return Define(id, func(ctx context.Context, args Args) (*node, error) {
		once.Do(func() {
			arrived.Done()
			arrived.Wait()
		})
		next, err := Arg[Resolver](args, 0).Resolve(ctx, other)
		if err != nil {
			return nil, err
		}
		return &node{next: next}, nil
	}, DependsOn(Dep[Resolver]()))
}

func TestConcurrentCrossResolveReportsCycle(t *testing.T) {
	var arrived sync.WaitGroup
	arrived.Add(2)
	c := newTestContainer(t)
	c.MustRegister(crossDef("a", "b", &arrived), crossDef("b", "a", &arrived))

	errs := make([]error, 2)
	var wg sync.WaitGroup
	for i, id := range []string{"a", "b"} {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, errs[i] = c.Resolve(context.Background(), id)
		}()
	}
	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("concurrent resolve of an a <-> b cycle never returned")
	}
	for i, err := range errs {
		if !errors.Is(err, ErrCircularDependency) {
			t.Errorf("resolve %d: expected CircularDependency, got %v", i, err)
		}
	}

	shutdown := make(chan error, 1)
	go func() { shutdown <- c.Shutdown(context.Background()) }()
	select {
	case err := <-shutdown:
		if err != nil {
			t.Errorf("expected a clean shutdown, got %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("shutdown waited on a stuck resolve")
	}
}

func TestConcurrentResolveWaitsForSingletonUnderConstruction(t *testing.T) {
	c := newTestContainer(t)
	release := make(chan struct{})
	started := make(chan struct{})
	c.MustRegister(
		Define("slow", func(context.Context, Args) (*english, error) {
			close(started)
			<-release
			return &english{name: "slow"}, nil
		}),
		Define("user", func(_ context.Context, args Args) (*node, error) {
			return &node{next: Arg[*english](args, 0)}, nil
		}, DependsOn(Dep[*english]())),
	)

	results := make(chan error, 2)
	go func() {
		_, err := c.Resolve(context.Background(), "user")
		results <- err
	}()
	<-started
	go func() {
		_, err := c.Resolve(context.Background(), "slow")
		results <- err
	}()
	close(release)

	for range 2 {
		select {
		case err := <-results:
			if err != nil {
				t.Fatal(err)
			}
		case <-time.After(5 * time.Second):
			t.Fatal("resolve did not return")
		}
	}
	user := MustResolve[*node](context.Background(), c, "user")
	if user.next != MustResolve[*english](context.Background(), c, "slow") {
		t.Error("expected one slow singleton shared by both resolves")
	}
}

func TestConstructionFailures(t *testing.T) {
	boom := fmt.Errorf("boom")
	tests := []struct {
		name  string
		def   *Definition
		cause string
	}{
		{
			name: "constructor error",
			def: Define("x", func(context.Context, Args) (*english, error) {
				return nil, boom
			}),
			cause: "boom",
		},
		{
			name: "constructor panic",
			def: Define("x", func(context.Context, Args) (*english, error) {
				panic("kaput")
			}),
			cause: "kaput",
		},
		{
			name: "nil instance",
			def: Define("x", func(context.Context, Args) (*english, error) {
				return nil, nil
			}),
			cause: "nil",
		},
		{
			name: "wrong argument type",
			def: Define("x", func(_ context.Context, args Args) (*english, error) {
				return &english{name: Arg[string](args, 0)}, nil
			}, DependsOn(Dep[Resolver]())),
			cause: "expected string",
		},
		{
			name:  "post-construct error",
			def:   Define("x", newEnglish("a"), OnPostConstruct(func(context.Context, *english) error { return boom })),
			cause: "boom",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestContainer(t)
			c.MustRegister(tt.def)
			_, err := c.Resolve(context.Background(), "x")
			if !errors.Is(err, ErrConstructionFailed) {
				t.Fatalf("expected ConstructionFailed, got %v", err)
			}
			if !strings.Contains(err.Error(), tt.cause) {
				t.Errorf("expected %q in %q", tt.cause, err.Error())
			}
		})
	}
}

func TestFailedSingletonRetried(t *testing.T) {
	c := newTestContainer(t)
	var attempts atomic.Int32
	c.MustRegister(Define("flaky", func(context.Context, Args) (*english, error) {
		if attempts.Add(1) == 1 {
			return nil, fmt.Errorf("not yet")
		}
		return &english{}, nil
	}))

	ctx := context.Background()
	if _, err := c.Resolve(ctx, "flaky"); err == nil {
		t.Fatal("expected first resolve to fail")
	}
	if _, err := c.Resolve(ctx, "flaky"); err != nil {
		t.Fatalf("expected second resolve to succeed, got %v", err)
	}
}

func TestResolveTypeMismatch(t *testing.T) {
	c := newTestContainer(t)
	c.MustRegister(Define("english", newEnglish("a")))

	_, err := Resolve[*french](context.Background(), c, "english")
	if !errors.Is(err, ErrTypeMismatch) {
		t.Errorf("expected TypeMismatch, got %v", err)
	}
	if _, ok := TryResolve[*french](context.Background(), c, "english"); ok {
		t.Error("expected TryResolve to fail")
	}
}

func TestResolveAll(t *testing.T) {
	c := newTestContainer(t)
	c.MustRegister(
		Define("english", newEnglish("a")),
		Define("french", func(context.Context, Args) (*french, error) { return &french{}, nil }),
	)

	all, err := ResolveAll[greeter](context.Background(), c)
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 2 || all["french"].Greet() != "bonjour" {
		t.Errorf("expected both greeters keyed by id, got %v", all)
	}
}

func TestValidateGraph(t *testing.T) {
	tests := []struct {
		name string
		defs []*Definition
		want error
	}{
		{
			name: "missing dependency",
			defs: []*Definition{Define("x", newEnglish("a"), DependsOn(Dep[*french]()))},
			want: ErrNoSuchBean,
		},
		{
			name: "ambiguous dependency",
			defs: []*Definition{
				Define("a", newEnglish("a")),
				Define("b", newEnglish("b")),
				Define("x", func(context.Context, Args) (*french, error) { return &french{}, nil }, DependsOn(Dep[greeter]())),
			},
			want: ErrAmbiguousDependency,
		},
		{
			name: "cycle",
			defs: []*Definition{nodeDef("a", "b"), nodeDef("b", "c"), nodeDef("c", "a")},
			want: ErrCircularDependency,
		},
		{
			name: "optional missing is fine",
			defs: []*Definition{Define("x", newEnglish("a"), DependsOn(Dep[*french](Optional())))},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestContainer(t)
			c.MustRegister(tt.defs...)
			err := c.Start(context.Background())
			if tt.want == nil {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestValidateGraphReportsRequiredBy(t *testing.T) {
	c := newTestContainer(t)
	c.MustRegister(Define("x", newEnglish("a"), DependsOn(Dep[*french]())))

	appErr, ok := apperrors.AsAppError(c.Start(context.Background()))
	if !ok {
		t.Fatal("expected AppError")
	}
	if appErr.Details["required_by"] != "x" {
		t.Errorf("expected required_by x, got %v", appErr.Details["required_by"])
	}
}
