package di

import (
	"context"
	"fmt"
	"reflect"
)

// ScopeKind names the lifetime policy of a bean.
type ScopeKind string

const (
	// ScopeSingleton beans are created once per container.
	ScopeSingleton ScopeKind = "singleton"
	// ScopePrototype beans are created on every resolve and never tracked.
	ScopePrototype ScopeKind = "prototype"
	// ScopeRequest beans are created once per active request scope.
	ScopeRequest ScopeKind = "request"
)

// Constructor builds a bean from its resolved dependencies.
type Constructor func(ctx context.Context, args Args) (any, error)

// Hook is a post-construct or pre-destroy callback.
type Hook func(ctx context.Context, instance any) error

// Dependency describes one constructor input: the type it needs, an
// optional qualifier tag, and whether it may be absent or is a collection.
type Dependency struct {
	Type     reflect.Type
	Tag      string
	Optional bool
	Many     bool
}

func (d Dependency) String() string {
	s := "<nil>"
	if d.Type != nil {
		s = d.Type.String()
	}
	if d.Many {
		s = "[]" + s
	}
	if d.Tag != "" {
		s += "[" + d.Tag + "]"
	}
	return s
}

// DependencyOption configures a Dependency.
type DependencyOption func(*Dependency)

// Tagged restricts candidates to beans carrying tag, or named tag when no
// bean carries it.
func Tagged(tag string) DependencyOption {
	return func(d *Dependency) { d.Tag = tag }
}

// Optional lets the dependency be absent instead of failing with NoSuchBean.
func Optional() DependencyOption {
	return func(d *Dependency) { d.Optional = true }
}

// Many collects every candidate in registration order. An empty result is
// allowed only together with Optional.
func Many() DependencyOption {
	return func(d *Dependency) { d.Many = true }
}

// Dep declares a dependency on T.
func Dep[T any](opts ...DependencyOption) Dependency {
	d := Dependency{Type: reflect.TypeFor[T]()}
	for _, opt := range opts {
		opt(&d)
	}
	return d
}

// Definition is the recipe for one bean. Definitions are copied on
// registration; the registered copy must not be modified.
type Definition struct {
	ID           string
	Type         reflect.Type
	Scope        ScopeKind
	Dependencies []Dependency
	// Tag qualifies the bean for Tagged dependencies.
	Tag string
	// Primary wins when several candidates match an untagged dependency.
	Primary bool
	// Lazy singletons are skipped by eager instantiation in Start.
	Lazy bool
	// Autowire makes the bean a candidate for by-type lookup.
	Autowire bool

	Construct     Constructor
	PostConstruct Hook
	PreDestroy    Hook

	// external beans were built outside the container; only an explicit
	// PreDestroy hook runs for them.
	external bool
}

// DefinitionOption configures a Definition.
type DefinitionOption func(*Definition)

// Define creates a singleton, autowired definition producing T.
func Define[T any](id string, ctor func(ctx context.Context, args Args) (T, error), opts ...DefinitionOption) *Definition {
	def := &Definition{
		ID:       id,
		Type:     reflect.TypeFor[T](),
		Scope:    ScopeSingleton,
		Autowire: true,
	}
	if ctor != nil {
		def.Construct = func(ctx context.Context, args Args) (any, error) {
			v, err := ctor(ctx, args)
			if err != nil {
				return nil, err
			}
			return v, nil
		}
	}
	for _, opt := range opts {
		opt(def)
	}
	return def
}

// Instance wraps an already built value as a singleton definition.
func Instance[T any](id string, value T, opts ...DefinitionOption) *Definition {
	def := Define(id, func(context.Context, Args) (T, error) { return value, nil }, opts...)
	def.Scope = ScopeSingleton
	def.external = true
	return def
}

// Singleton sets the singleton scope.
func Singleton() DefinitionOption { return InScope(ScopeSingleton) }

// Prototype sets the prototype scope.
func Prototype() DefinitionOption { return InScope(ScopePrototype) }

// RequestScoped sets the request scope.
func RequestScoped() DefinitionOption { return InScope(ScopeRequest) }

// InScope sets any scope kind, including custom context-bound kinds.
func InScope(kind ScopeKind) DefinitionOption {
	return func(d *Definition) { d.Scope = kind }
}

// DependsOn appends constructor dependencies in argument order.
func DependsOn(deps ...Dependency) DefinitionOption {
	return func(d *Definition) { d.Dependencies = append(d.Dependencies, deps...) }
}

// WithTag sets the qualifier tag.
func WithTag(tag string) DefinitionOption {
	return func(d *Definition) { d.Tag = tag }
}

// Primary marks the bean as the default among several candidates.
func Primary() DefinitionOption {
	return func(d *Definition) { d.Primary = true }
}

// Lazy defers singleton creation to the first resolve.
func Lazy() DefinitionOption {
	return func(d *Definition) { d.Lazy = true }
}

// NoAutowire hides the bean from by-type lookup; it stays resolvable by id.
func NoAutowire() DefinitionOption {
	return func(d *Definition) { d.Autowire = false }
}

// OnPostConstruct runs fn once after the bean is built and before it is cached.
func OnPostConstruct[T any](fn func(ctx context.Context, bean T) error) DefinitionOption {
	return func(d *Definition) { d.PostConstruct = typedHook(d.ID, fn) }
}

// OnPreDestroy runs fn once when the bean's scope ends.
func OnPreDestroy[T any](fn func(ctx context.Context, bean T) error) DefinitionOption {
	return func(d *Definition) { d.PreDestroy = typedHook(d.ID, fn) }
}

func typedHook[T any](id string, fn func(context.Context, T) error) Hook {
	return func(ctx context.Context, instance any) error {
		bean, ok := instance.(T)
		if !ok {
			return errTypeMismatch(id, instance, reflect.TypeFor[T]().String())
		}
		return fn(ctx, bean)
	}
}

// clone returns a copy that does not share the dependency slice.
func (d *Definition) clone() *Definition {
	cp := *d
	cp.Dependencies = append([]Dependency(nil), d.Dependencies...)
	return &cp
}

func (d *Definition) String() string {
	return fmt.Sprintf("%s(%s, %s)", d.ID, d.Type, d.Scope)
}

// DefinitionInfo describes a registered bean for introspection.
type DefinitionInfo struct {
	ID           string    `json:"id"`
	Type         string    `json:"type"`
	Scope        ScopeKind `json:"scope"`
	Tag          string    `json:"tag,omitempty"`
	Primary      bool      `json:"primary,omitempty"`
	Lazy         bool      `json:"lazy,omitempty"`
	Autowire     bool      `json:"autowire"`
	Dependencies []string  `json:"dependencies,omitempty"`
	Initialized  bool      `json:"initialized"`
}
