package di

import (
	"context"
	stderrors "errors"
	"fmt"
	"reflect"
	"sort"
	"sync"
	"sync/atomic"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/kbukum/beankit/component"
	"github.com/kbukum/beankit/errors"
	"github.com/kbukum/beankit/logger"
	"github.com/kbukum/beankit/observability"
)

// ContainerID is the id under which every container registers itself as a
// Resolver.
const ContainerID = "container"

const instrumentationName = "github.com/kbukum/beankit/di"

// Option configures a Container.
type Option func(*options)

type options struct {
	name   string
	cfg    Config
	log    *logger.Logger
	meter  metric.Meter
	tracer trace.Tracer
	scopes []ScopeKind
}

// WithConfig sets the container configuration.
func WithConfig(cfg Config) Option {
	return func(o *options) { o.cfg = cfg }
}

// WithLogger sets the logger; the default is the global logger tagged
// component=container.
func WithLogger(l *logger.Logger) Option {
	return func(o *options) { o.log = l }
}

// WithMeter sets the meter for container metrics.
func WithMeter(m metric.Meter) Option {
	return func(o *options) { o.meter = m }
}

// WithTracer sets the tracer used when trace_resolution is on.
func WithTracer(t trace.Tracer) Option {
	return func(o *options) { o.tracer = t }
}

// WithContextScope enables an extra context-bound scope kind.
func WithContextScope(kind ScopeKind) Option {
	return func(o *options) { o.scopes = append(o.scopes, kind) }
}

// WithName sets the component name reported by Name.
func WithName(name string) Option {
	return func(o *options) { o.name = name }
}

// Container registers bean definitions, resolves them with their
// dependencies, and owns the singletons and scopes it creates.
type Container struct {
	name     string
	cfg      Config
	registry *Registry
	resolver *resolver
	lc       *lifecycle
	single   *store
	waits    *waitGraph
	ctxKinds map[ScopeKind]bool
	log      *logger.Logger
	metrics  *observability.Metrics
	tracer   trace.Tracer

	freezeOnce sync.Once
	started    atomic.Bool

	mu       sync.RWMutex
	closed   bool
	inflight sync.WaitGroup
	scopes   map[string]*scopeContext
}

// New creates a container. It registers itself under ContainerID.
func New(opts ...Option) *Container {
	o := options{name: ContainerID, cfg: DefaultConfig()}
	for _, opt := range opts {
		opt(&o)
	}
	if o.log == nil {
		o.log = logger.GetGlobalLogger().WithComponent("container")
	}
	if o.meter == nil {
		o.meter = otel.Meter(instrumentationName)
	}
	if o.tracer == nil {
		o.tracer = otel.Tracer(instrumentationName)
	}

	metrics, err := observability.NewMetrics(o.meter)
	if err != nil {
		o.log.Warn("container metrics disabled", logger.ErrorFields("create_metrics", err))
	}

	c := &Container{
		name:     o.name,
		cfg:      o.cfg,
		log:      o.log,
		metrics:  metrics,
		tracer:   o.tracer,
		ctxKinds: map[ScopeKind]bool{ScopeRequest: true},
		scopes:   make(map[string]*scopeContext),
		waits:    &waitGraph{},
	}
	c.lc = &lifecycle{log: c.log, metrics: metrics}
	c.single = newStore(ScopeSingleton, c.lc, c.waits, func() error { return errContainerClosed() })

	for _, kind := range append(o.cfg.scopeKinds(), o.scopes...) {
		if kind == ScopeSingleton || kind == ScopePrototype || kind == "" {
			c.log.Warn("ignoring context scope", logger.Fields(logger.FieldScope, string(kind)))
			continue
		}
		c.ctxKinds[kind] = true
	}

	strategies := map[ScopeKind]Strategy{
		ScopeSingleton: &singletonStrategy{store: c.single},
		ScopePrototype: prototypeStrategy{},
	}
	kinds := []ScopeKind{ScopeSingleton, ScopePrototype}
	for kind := range c.ctxKinds {
		strategies[kind] = &contextStrategy{kind: kind}
		kinds = append(kinds, kind)
	}

	c.registry = NewRegistry(kinds...)
	c.resolver = &resolver{
		registry:   c.registry,
		strategies: strategies,
		lc:         c.lc,
		log:        c.log,
		metrics:    metrics,
	}

	if err := c.registry.Register(Instance[Resolver](ContainerID, c)); err != nil {
		panic(fmt.Sprintf("di: self registration failed: %v", err))
	}
	return c
}

// Register adds a bean definition. It fails once the container has started
// or resolved anything.
func (c *Container) Register(def *Definition) error {
	if err := c.registry.Register(def); err != nil {
		return err
	}
	c.log.Debug("bean registered", logger.Fields(
		logger.FieldBean, def.ID,
		logger.FieldScope, string(def.Scope),
		"type", def.Type.String(),
	))
	return nil
}

// MustRegister registers every definition and panics on the first error.
func (c *Container) MustRegister(defs ...*Definition) {
	for _, def := range defs {
		if err := c.Register(def); err != nil {
			panic(err)
		}
	}
}

func (c *Container) freeze() {
	c.freezeOnce.Do(c.registry.Freeze)
}

// enter admits one top-level operation unless the container is closed.
func (c *Container) enter() error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return errContainerClosed()
	}
	c.inflight.Add(1)
	return nil
}

// Start freezes the registry, validates the graph and builds eager
// singletons, depending on the configuration.
func (c *Container) Start(ctx context.Context) error {
	c.freeze()
	if c.isClosed() {
		return errContainerClosed()
	}
	if c.cfg.ValidateOnStart {
		if err := c.resolver.validateGraph(); err != nil {
			c.log.Error("dependency graph invalid", logger.ErrorFields("validate", err))
			return err
		}
	}
	if c.cfg.EagerSingletons {
		for _, def := range c.registry.Definitions() {
			if def.Scope != ScopeSingleton || def.Lazy {
				continue
			}
			if _, err := c.Resolve(ctx, def.ID); err != nil {
				return err
			}
		}
	}
	c.started.Store(true)
	c.log.Info("container started", logger.Fields("beans", c.registry.Len()))
	return nil
}

// Resolve returns the bean registered under id.
func (c *Container) Resolve(ctx context.Context, id string) (any, error) {
	if err := c.enter(); err != nil {
		return nil, err
	}
	defer c.inflight.Done()
	c.freeze()

	ctx, span := c.startSpan(ctx, id)
	def, ok := c.registry.Get(id)
	if !ok {
		return nil, c.finish(ctx, span, errNoSuchBean(fmt.Sprintf("id %q", id)))
	}
	if span != nil {
		span.SetAttributes(attribute.String(observability.AttrBeanType, def.Type.String()))
	}
	instance, err := c.resolver.resolve(ctx, def)
	return instance, c.finish(ctx, span, err)
}

// ResolveType returns the single bean assignable to t. A tag narrows the
// candidates before the primary marker is consulted.
func (c *Container) ResolveType(ctx context.Context, t reflect.Type, tag string) (any, error) {
	if err := c.enter(); err != nil {
		return nil, err
	}
	defer c.inflight.Done()
	c.freeze()

	q := Dependency{Type: t, Tag: tag}
	ctx, span := c.startSpan(ctx, q.String())
	def, err := selectCandidate(q.String(), c.registry.Lookup(t, tag))
	if err != nil {
		return nil, c.finish(ctx, span, err)
	}
	if span != nil {
		span.SetAttributes(attribute.String(observability.AttrBeanID, def.ID))
	}
	instance, err := c.resolver.resolve(ctx, def)
	return instance, c.finish(ctx, span, err)
}

// ResolveAll returns every bean assignable to t, keyed by id.
func (c *Container) ResolveAll(ctx context.Context, t reflect.Type) (map[string]any, error) {
	if err := c.enter(); err != nil {
		return nil, err
	}
	defer c.inflight.Done()
	c.freeze()

	out := make(map[string]any)
	for _, def := range c.registry.Lookup(t, "") {
		instance, err := c.resolver.resolve(ctx, def)
		if err != nil {
			return nil, c.finish(ctx, nil, err)
		}
		out[def.ID] = instance
	}
	return out, nil
}

func (c *Container) startSpan(ctx context.Context, what string) (context.Context, trace.Span) {
	if !c.cfg.TraceResolution {
		return ctx, nil
	}
	return c.tracer.Start(ctx, observability.SpanResolve,
		trace.WithAttributes(attribute.String(observability.AttrBeanID, what)))
}

// finish ends the span and counts the error, returning err unchanged.
func (c *Container) finish(ctx context.Context, span trace.Span, err error) error {
	if err != nil {
		code := string(errors.ErrCodeInternal)
		if appErr, ok := errors.AsAppError(err); ok {
			code = string(appErr.Code)
		}
		c.metrics.RecordResolveError(ctx, code)
		if span != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, code)
			span.SetAttributes(attribute.String(observability.AttrErrorCode, code))
		}
	}
	if span != nil {
		span.End()
	}
	return err
}

// StartScope opens a scope of kind and returns a context carrying it.
func (c *Container) StartScope(ctx context.Context, kind ScopeKind) (context.Context, error) {
	if c.isClosed() {
		return ctx, errContainerClosed()
	}
	if !c.ctxKinds[kind] {
		return ctx, errUnknownScope(kind)
	}
	if _, ok := activeScope(ctx, kind); ok {
		return ctx, errScopeAlreadyActive(kind)
	}

	sc := newScopeContext(kind, c.lc, c.waits)
	c.mu.Lock()
	c.scopes[sc.id] = sc
	c.mu.Unlock()

	ctx = logger.ContextWithScopeID(withScope(ctx, sc), sc.id)
	observability.SetSpanAttribute(ctx, observability.AttrScopeKind, string(kind))
	observability.SetSpanAttribute(ctx, observability.AttrScopeID, sc.id)
	c.metrics.ScopeStarted(ctx, string(kind))
	c.log.Debug("scope started", logger.Fields(logger.FieldScope, string(kind), logger.FieldScopeID, sc.id))
	return ctx, nil
}

// EndScope destroys the beans of the open scope of kind in ctx, newest
// first. Later obtains through ctx fail with NoActiveScope.
func (c *Container) EndScope(ctx context.Context, kind ScopeKind) error {
	sc, ok := scopeFrom(ctx, kind)
	if !ok {
		return errNoActiveScope(kind)
	}
	return c.endScope(ctx, sc)
}

func (c *Container) endScope(ctx context.Context, sc *scopeContext) error {
	records, first := sc.store.end()
	if !first {
		if c.isClosed() {
			// Shutdown already destroyed this scope's beans.
			return nil
		}
		return errNoActiveScope(sc.kind)
	}
	c.mu.Lock()
	delete(c.scopes, sc.id)
	c.mu.Unlock()

	c.metrics.ScopeEnded(ctx, string(sc.kind))
	err := c.lc.destroyAll(ctx, records)
	c.log.Debug("scope ended", logger.Fields(
		logger.FieldScope, string(sc.kind),
		logger.FieldScopeID, sc.id,
		"beans", len(records),
	))
	return err
}

// WithinScope runs fn inside a fresh scope of kind and always ends it, even
// when fn panics. A teardown failure is joined to fn's error.
func (c *Container) WithinScope(ctx context.Context, kind ScopeKind, fn func(ctx context.Context) error) (err error) {
	sctx, err := c.StartScope(ctx, kind)
	if err != nil {
		return err
	}
	defer func() {
		if endErr := c.EndScope(context.WithoutCancel(sctx), kind); endErr != nil {
			err = stderrors.Join(err, endErr)
		}
	}()
	return fn(sctx)
}

// Release runs the pre-destroy step for a prototype instance the caller
// owns. The container does not track prototypes otherwise.
func (c *Container) Release(ctx context.Context, id string, instance any) error {
	def, ok := c.registry.Get(id)
	if !ok {
		return errNoSuchBean(fmt.Sprintf("id %q", id))
	}
	if def.Scope != ScopePrototype {
		return errors.InvalidInput("id", fmt.Sprintf("bean %q is %s scoped; only prototypes can be released", id, def.Scope))
	}
	rec := &Record{ID: id, Scope: def.Scope, Instance: instance, def: def}
	if err := c.lc.beforeDestroy(ctx, rec); err != nil {
		return errDestroyFailed([]error{err})
	}
	return nil
}

// Shutdown stops new resolves, waits for in-flight ones, ends any scope
// still open, then destroys singletons newest first. Later calls return nil.
func (c *Container) Shutdown(ctx context.Context) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	c.mu.Unlock()

	c.inflight.Wait()

	var failures []error
	for _, sc := range c.openScopes() {
		records, first := sc.store.end()
		if !first {
			continue
		}
		c.metrics.ScopeEnded(ctx, string(sc.kind))
		c.log.Warn("ending abandoned scope", logger.Fields(logger.FieldScope, string(sc.kind), logger.FieldScopeID, sc.id))
		failures = append(failures, c.lc.destroyEach(ctx, records)...)
	}

	records, _ := c.single.end()
	failures = append(failures, c.lc.destroyEach(ctx, records)...)
	c.registry.close()

	c.log.Info("container shut down", logger.Fields("singletons", len(records), "failures", len(failures)))
	if len(failures) > 0 {
		return errDestroyFailed(failures)
	}
	return nil
}

// openScopes returns scopes still open, newest first.
func (c *Container) openScopes() []*scopeContext {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]*scopeContext, 0, len(c.scopes))
	for _, sc := range c.scopes {
		out = append(out, sc)
	}
	c.scopes = make(map[string]*scopeContext)
	sort.Slice(out, func(i, j int) bool { return out[i].startedAt.After(out[j].startedAt) })
	return out
}

func (c *Container) isClosed() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.closed
}

// Definitions describes every registered bean in registration order.
func (c *Container) Definitions() []DefinitionInfo {
	defs := c.registry.Definitions()
	out := make([]DefinitionInfo, 0, len(defs))
	for _, def := range defs {
		deps := make([]string, len(def.Dependencies))
		for i, d := range def.Dependencies {
			deps[i] = d.String()
		}
		out = append(out, DefinitionInfo{
			ID:           def.ID,
			Type:         def.Type.String(),
			Scope:        def.Scope,
			Tag:          def.Tag,
			Primary:      def.Primary,
			Lazy:         def.Lazy,
			Autowire:     def.Autowire,
			Dependencies: deps,
			Initialized:  def.Scope == ScopeSingleton && c.single.initialized(def.ID),
		})
	}
	return out
}

// Name implements component.Component.
func (c *Container) Name() string { return c.name }

// Stop implements component.Component by shutting the container down.
func (c *Container) Stop(ctx context.Context) error { return c.Shutdown(ctx) }

// Health implements component.Component.
func (c *Container) Health(context.Context) component.Health {
	switch {
	case c.isClosed():
		return component.Unhealthy(c.name, "closed")
	case !c.started.Load():
		return component.Degraded(c.name, "not started")
	}
	return component.Healthy(c.name, fmt.Sprintf("%d beans", c.registry.Len()))
}

var (
	_ Resolver            = (*Container)(nil)
	_ component.Component = (*Container)(nil)
)
