package di

import (
	"context"
	"fmt"
	"reflect"
	"slices"
	"time"

	"github.com/kbukum/beankit/errors"
	"github.com/kbukum/beankit/logger"
	"github.com/kbukum/beankit/observability"
)

// Resolver looks beans up. *Container implements it and registers itself
// under ContainerID, so beans that need late lookups can depend on it.
type Resolver interface {
	// Resolve returns the bean registered under id.
	Resolve(ctx context.Context, id string) (any, error)
	// ResolveType returns the single candidate for t, honouring tag and the
	// primary marker.
	ResolveType(ctx context.Context, t reflect.Type, tag string) (any, error)
	// ResolveAll returns every candidate for t keyed by bean id.
	ResolveAll(ctx context.Context, t reflect.Type) (map[string]any, error)
}

type stackKey struct{}

// constructionStack returns the ids currently being built on this call path.
func constructionStack(ctx context.Context) []string {
	stack, _ := ctx.Value(stackKey{}).([]string)
	return stack
}

func withConstructionStack(ctx context.Context, stack []string) context.Context {
	return context.WithValue(ctx, stackKey{}, stack)
}

// resolver builds beans and their dependency graphs.
type resolver struct {
	registry   *Registry
	strategies map[ScopeKind]Strategy
	lc         *lifecycle
	log        *logger.Logger
	metrics    *observability.Metrics
}

// resolve obtains def through its scope strategy, building it if needed.
func (r *resolver) resolve(ctx context.Context, def *Definition) (any, error) {
	stack := constructionStack(ctx)
	if i := slices.Index(stack, def.ID); i >= 0 {
		path := append(slices.Clone(stack[i:]), def.ID)
		return nil, errCircular(path)
	}

	strategy, ok := r.strategies[def.Scope]
	if !ok {
		return nil, errUnknownScope(def.Scope)
	}

	next := append(slices.Clip(stack), def.ID)
	return strategy.Obtain(withBuildPath(ctx), def, func(ctx context.Context) (ConstructFunc, error) {
		return r.prepare(withConstructionStack(ctx, next), def)
	})
}

// prepare resolves def's dependencies and returns its construction step.
func (r *resolver) prepare(ctx context.Context, def *Definition) (ConstructFunc, error) {
	start := time.Now()
	args, err := r.resolveArgs(ctx, def)
	if err != nil {
		return nil, err
	}
	return func() (any, error) {
		return r.construct(ctx, def, args, start)
	}, nil
}

func (r *resolver) construct(ctx context.Context, def *Definition, args Args, start time.Time) (any, error) {
	var instance any
	err := guard(func() error {
		var cerr error
		instance, cerr = def.Construct(ctx, args)
		return cerr
	})
	if err != nil {
		return nil, errConstruction(def.ID, "construct", err)
	}
	if isNil(instance) {
		return nil, errConstruction(def.ID, "construct", fmt.Errorf("constructor returned nil"))
	}

	if err := r.lc.afterConstruct(ctx, def, instance); err != nil {
		return nil, err
	}

	elapsed := time.Since(start)
	r.metrics.RecordConstruction(ctx, def.ID, string(def.Scope), elapsed)
	r.log.Debug("bean created", logger.Fields(
		logger.FieldBean, def.ID,
		logger.FieldScope, string(def.Scope),
		logger.FieldDuration, elapsed.Milliseconds(),
	))
	return instance, nil
}

func (r *resolver) resolveArgs(ctx context.Context, def *Definition) (Args, error) {
	args := Args{deps: def.Dependencies, values: make([]argValue, len(def.Dependencies))}
	for i, dep := range def.Dependencies {
		v, err := r.resolveDependency(ctx, dep)
		if err != nil {
			return Args{}, err
		}
		args.values[i] = v
	}
	return args, nil
}

func (r *resolver) resolveDependency(ctx context.Context, dep Dependency) (argValue, error) {
	candidates := r.registry.Lookup(dep.Type, dep.Tag)

	if dep.Many {
		if len(candidates) == 0 && !dep.Optional {
			return argValue{}, errNoSuchBean(dep.String())
		}
		many := make([]any, 0, len(candidates))
		for _, c := range candidates {
			v, err := r.resolve(ctx, c)
			if err != nil {
				return argValue{}, err
			}
			many = append(many, v)
		}
		return argValue{many: many, present: true}, nil
	}

	if len(candidates) == 0 && dep.Optional {
		return argValue{}, nil
	}
	def, err := selectCandidate(dep.String(), candidates)
	if err != nil {
		return argValue{}, err
	}
	v, err := r.resolve(ctx, def)
	if err != nil {
		return argValue{}, err
	}
	return argValue{value: v, present: true}, nil
}

// selectCandidate picks the one candidate for a single-valued query: the
// only match, or the only primary among several.
func selectCandidate(what string, candidates []*Definition) (*Definition, error) {
	switch len(candidates) {
	case 0:
		return nil, errNoSuchBean(what)
	case 1:
		return candidates[0], nil
	}
	var primary *Definition
	for _, c := range candidates {
		if !c.Primary {
			continue
		}
		if primary != nil {
			return nil, errAmbiguous(what, candidates)
		}
		primary = c
	}
	if primary == nil {
		return nil, errAmbiguous(what, candidates)
	}
	return primary, nil
}

// validateGraph checks every definition's dependencies without building
// anything: each required dependency has a candidate, single-valued ones are
// unambiguous, and no bean reaches itself.
func (r *resolver) validateGraph() error {
	defs := r.registry.Definitions()
	edges := make(map[string][]string, len(defs))

	for _, def := range defs {
		if _, ok := r.strategies[def.Scope]; !ok {
			return errUnknownScope(def.Scope)
		}
		for _, dep := range def.Dependencies {
			candidates := r.registry.Lookup(dep.Type, dep.Tag)
			if len(candidates) == 0 {
				if dep.Optional {
					continue
				}
				return errNoSuchBean(dep.String()).WithDetail("required_by", def.ID)
			}
			if dep.Many {
				for _, c := range candidates {
					edges[def.ID] = append(edges[def.ID], c.ID)
				}
				continue
			}
			c, err := selectCandidate(dep.String(), candidates)
			if err != nil {
				if appErr, ok := errors.AsAppError(err); ok {
					appErr.WithDetail("required_by", def.ID)
				}
				return err
			}
			edges[def.ID] = append(edges[def.ID], c.ID)
		}
	}

	const (
		unvisited = iota
		visiting
		visited
	)
	state := make(map[string]int, len(defs))
	var path []string
	var visit func(id string) error
	visit = func(id string) error {
		switch state[id] {
		case visiting:
			i := slices.Index(path, id)
			return errCircular(append(slices.Clone(path[i:]), id))
		case visited:
			return nil
		}
		state[id] = visiting
		path = append(path, id)
		for _, next := range edges[id] {
			if err := visit(next); err != nil {
				return err
			}
		}
		path = path[:len(path)-1]
		state[id] = visited
		return nil
	}
	for _, def := range defs {
		if err := visit(def.ID); err != nil {
			return err
		}
	}
	return nil
}

func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Ptr, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan, reflect.Interface:
		return rv.IsNil()
	}
	return false
}
