package di

import (
	"context"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

// BuildFunc resolves the dependencies of the definition being obtained and
// returns the step that constructs it. Only the returned step runs under the
// bean's construction lock.
type BuildFunc func(ctx context.Context) (ConstructFunc, error)

// ConstructFunc runs the constructor and the post-construct hook.
type ConstructFunc func() (any, error)

// Strategy decides whether an obtain returns a cached instance or builds a
// new one, and where the result is recorded.
type Strategy interface {
	Kind() ScopeKind
	Obtain(ctx context.Context, def *Definition, build BuildFunc) (any, error)
}

// Record is one live bean owned by a scope.
type Record struct {
	ID        string
	Scope     ScopeKind
	Instance  any
	CreatedAt time.Time

	def       *Definition
	destroyed atomic.Bool
}

// Destroyed reports whether the record's pre-destroy step has run.
func (r *Record) Destroyed() bool { return r.destroyed.Load() }

// store caches instances by bean id for one scope and remembers creation
// order. Each id has its own construction lock so unrelated beans build in
// parallel. Dependencies are resolved before the lock is taken.
type store struct {
	kind    ScopeKind
	lc      *lifecycle
	waits   *waitGraph
	closed  func() error
	mu      sync.Mutex
	entries map[string]*entry
	records []*Record
	ended   bool
}

type entry struct {
	id       string
	mu       sync.Mutex
	done     atomic.Bool
	instance any

	// guarded by waitGraph.mu
	owner *buildPath
}

func newStore(kind ScopeKind, lc *lifecycle, waits *waitGraph, closed func() error) *store {
	return &store{
		kind:    kind,
		lc:      lc,
		waits:   waits,
		closed:  closed,
		entries: make(map[string]*entry),
	}
}

func (s *store) entryFor(id string) (*entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ended {
		return nil, s.closed()
	}
	e, ok := s.entries[id]
	if !ok {
		e = &entry{id: id}
		s.entries[id] = e
	}
	return e, nil
}

func (s *store) obtain(ctx context.Context, def *Definition, build BuildFunc) (any, error) {
	e, err := s.entryFor(def.ID)
	if err != nil {
		return nil, err
	}
	if e.done.Load() {
		return e.instance, nil
	}

	construct, err := build(ctx)
	if err != nil {
		return nil, err
	}

	path := pathFrom(ctx)
	if err := s.waits.acquire(ctx, path, e); err != nil {
		return nil, err
	}
	defer s.waits.release(e)

	// Another caller may have finished while we resolved or waited.
	if e.done.Load() {
		return e.instance, nil
	}

	instance, err := construct()
	if err != nil {
		return nil, err
	}

	rec := &Record{ID: def.ID, Scope: s.kind, Instance: instance, CreatedAt: time.Now(), def: def}

	s.mu.Lock()
	if s.ended {
		s.mu.Unlock()
		// The scope ended while we were building; nobody else will
		// destroy this instance.
		_ = s.lc.beforeDestroy(ctx, rec)
		return nil, s.closed()
	}
	s.records = append(s.records, rec)
	s.mu.Unlock()

	e.instance = instance
	e.done.Store(true)
	return instance, nil
}

// initialized reports whether id has a cached instance.
func (s *store) initialized(id string) bool {
	s.mu.Lock()
	e, ok := s.entries[id]
	s.mu.Unlock()
	return ok && e.done.Load()
}

// end marks the store ended and hands back its records in creation order.
// Only the first call returns records.
func (s *store) end() ([]*Record, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ended {
		return nil, false
	}
	s.ended = true
	records := s.records
	s.records = nil
	s.entries = nil
	return records, true
}

func (s *store) isEnded() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ended
}

// buildPath identifies one top-level resolve and every nested resolve made
// on its behalf, including those a constructor makes with the context it
// was given.
type buildPath struct {
	// guarded by waitGraph.mu
	waitingOn *entry
}

type pathKey struct{}

func pathFrom(ctx context.Context) *buildPath {
	if p, ok := ctx.Value(pathKey{}).(*buildPath); ok {
		return p
	}
	return &buildPath{}
}

func withBuildPath(ctx context.Context) context.Context {
	if _, ok := ctx.Value(pathKey{}).(*buildPath); ok {
		return ctx
	}
	return context.WithValue(ctx, pathKey{}, &buildPath{})
}

// waitGraph tracks which build path holds each construction lock and which
// lock each path waits for. A wait that would close a loop back to the
// waiting path fails with CircularDependency instead of blocking forever.
type waitGraph struct {
	mu sync.Mutex
}

func (g *waitGraph) acquire(ctx context.Context, path *buildPath, e *entry) error {
	g.mu.Lock()
	if cycle := g.loop(path, e); cycle != nil {
		g.mu.Unlock()
		return errCircular(append(slices.Clone(constructionStack(ctx)), cycle...))
	}
	path.waitingOn = e
	g.mu.Unlock()

	e.mu.Lock()

	g.mu.Lock()
	path.waitingOn = nil
	e.owner = path
	g.mu.Unlock()
	return nil
}

func (g *waitGraph) release(e *entry) {
	g.mu.Lock()
	e.owner = nil
	g.mu.Unlock()
	e.mu.Unlock()
}

// loop follows owner and waiting-on links from e and returns the ids of the
// locks on the way when they lead back to path.
func (g *waitGraph) loop(path *buildPath, e *entry) []string {
	var ids []string
	for e != nil {
		ids = append(ids, e.id)
		owner := e.owner
		if owner == nil {
			return nil
		}
		if owner == path {
			return ids
		}
		e = owner.waitingOn
	}
	return nil
}

type singletonStrategy struct {
	store *store
}

func (s *singletonStrategy) Kind() ScopeKind { return ScopeSingleton }

// Obtain builds singletons with context-bound scopes hidden, so a singleton
// can never capture a request bean by being first resolved inside a request.
func (s *singletonStrategy) Obtain(ctx context.Context, def *Definition, build BuildFunc) (any, error) {
	return s.store.obtain(detachScopes(ctx), def, build)
}

type prototypeStrategy struct{}

func (prototypeStrategy) Kind() ScopeKind { return ScopePrototype }

func (prototypeStrategy) Obtain(ctx context.Context, _ *Definition, build BuildFunc) (any, error) {
	construct, err := build(ctx)
	if err != nil {
		return nil, err
	}
	return construct()
}

// contextStrategy serves scope kinds whose instances live in a scope carried
// by the context, such as request.
type contextStrategy struct {
	kind ScopeKind
}

func (s *contextStrategy) Kind() ScopeKind { return s.kind }

func (s *contextStrategy) Obtain(ctx context.Context, def *Definition, build BuildFunc) (any, error) {
	sc, ok := activeScope(ctx, s.kind)
	if !ok {
		return nil, errNoActiveScope(s.kind)
	}
	return sc.store.obtain(ctx, def, build)
}

// scopeContext is one open scope of a context-bound kind.
type scopeContext struct {
	id        string
	kind      ScopeKind
	startedAt time.Time
	store     *store
}

type scopeKey struct {
	kind ScopeKind
}

func newScopeContext(kind ScopeKind, lc *lifecycle, waits *waitGraph) *scopeContext {
	return &scopeContext{
		id:        uuid.NewString(),
		kind:      kind,
		startedAt: time.Now(),
		store:     newStore(kind, lc, waits, func() error { return errNoActiveScope(kind) }),
	}
}

// scopelessContext hides every scope carried by its parent.
type scopelessContext struct {
	context.Context
}

func (c scopelessContext) Value(key any) any {
	if _, ok := key.(scopeKey); ok {
		return nil
	}
	return c.Context.Value(key)
}

func detachScopes(ctx context.Context) context.Context {
	return scopelessContext{ctx}
}

func withScope(ctx context.Context, sc *scopeContext) context.Context {
	return context.WithValue(ctx, scopeKey{kind: sc.kind}, sc)
}

func scopeFrom(ctx context.Context, kind ScopeKind) (*scopeContext, bool) {
	if ctx == nil {
		return nil, false
	}
	sc, ok := ctx.Value(scopeKey{kind: kind}).(*scopeContext)
	return sc, ok
}

// activeScope returns the open scope of kind carried by ctx.
func activeScope(ctx context.Context, kind ScopeKind) (*scopeContext, bool) {
	sc, ok := scopeFrom(ctx, kind)
	if !ok || sc.store.isEnded() {
		return nil, false
	}
	return sc, true
}

// ScopeID returns the id of the open scope of kind carried by ctx.
func ScopeID(ctx context.Context, kind ScopeKind) (string, bool) {
	sc, ok := activeScope(ctx, kind)
	if !ok {
		return "", false
	}
	return sc.id, true
}

// InScopeContext reports whether ctx carries an open scope of kind.
func InScopeContext(ctx context.Context, kind ScopeKind) bool {
	_, ok := activeScope(ctx, kind)
	return ok
}
