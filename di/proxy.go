package di

import (
	"context"
	stderrors "errors"
)

// Proxy is a stable handle to a scoped bean. Each call looks the target up
// in the scope carried by the caller's context, so a singleton can hold a
// Proxy to a request bean.
type Proxy[T any] struct {
	resolver Resolver
	id       string
}

// NewProxy creates a proxy for the bean registered under id.
func NewProxy[T any](r Resolver, id string) *Proxy[T] {
	return &Proxy[T]{resolver: r, id: id}
}

// ID returns the target bean id.
func (p *Proxy[T]) ID() string { return p.id }

// Get returns the live target for the scope active in ctx. It fails with
// NoActiveScope when ctx carries no scope of the target's kind.
func (p *Proxy[T]) Get(ctx context.Context) (T, error) {
	return Resolve[T](ctx, p.resolver, p.id)
}

// Invoke forwards one call to the live target.
func (p *Proxy[T]) Invoke(ctx context.Context, fn func(T) error) error {
	target, err := p.Get(ctx)
	if err != nil {
		return err
	}
	return fn(target)
}

// ProxyDefinition defines a singleton bean of type T that delegates to the
// bean targetID. wrap adapts the Proxy to T, usually a small type whose
// methods call Proxy.Invoke. Register the target with NoAutowire so that
// by-type lookups of T find only the proxy.
//
//	di.ProxyDefinition("requestLogger", "myLogger",
//	    func(p *di.Proxy[RequestLogger]) RequestLogger { return loggerProxy{p} })
func ProxyDefinition[T any](id, targetID string, wrap func(*Proxy[T]) T, opts ...DefinitionOption) *Definition {
	ctor := func(_ context.Context, args Args) (T, error) {
		return wrap(NewProxy[T](Arg[Resolver](args, 0), targetID)), nil
	}
	opts = append([]DefinitionOption{DependsOn(Dep[Resolver]())}, opts...)
	return Define(id, ctor, opts...)
}

// Provider resolves T by type on every call. A singleton that needs a fresh
// prototype per use, or a bean that may be absent, depends on a Provider.
type Provider[T any] struct {
	resolver Resolver
	tag      string
}

// NewProvider creates a provider for T, optionally narrowed by tag.
func NewProvider[T any](r Resolver, tag ...string) *Provider[T] {
	p := &Provider[T]{resolver: r}
	if len(tag) > 0 {
		p.tag = tag[0]
	}
	return p
}

// Get resolves T.
func (p *Provider[T]) Get(ctx context.Context) (T, error) {
	return ResolveOf[T](ctx, p.resolver, p.tag)
}

// IfAvailable resolves T, returning None when no bean matches. Other
// failures are returned as errors.
func (p *Provider[T]) IfAvailable(ctx context.Context) (Maybe[T], error) {
	v, err := p.Get(ctx)
	if err != nil {
		if stderrors.Is(err, ErrNoSuchBean) {
			return None[T](), nil
		}
		return None[T](), err
	}
	return Some(v), nil
}

// ProviderDefinition defines a singleton Provider[T] bean.
func ProviderDefinition[T any](id string, tag ...string) *Definition {
	return Define(id, func(_ context.Context, args Args) (*Provider[T], error) {
		return NewProvider[T](Arg[Resolver](args, 0), tag...), nil
	}, DependsOn(Dep[Resolver]()))
}
