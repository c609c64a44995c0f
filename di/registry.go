package di

import (
	"fmt"
	"reflect"
	"sync"

	"github.com/kbukum/beankit/validation"
)

// Registry stores bean definitions by id. It accepts registrations until it
// is frozen and is safe for concurrent reads.
type Registry struct {
	mu     sync.RWMutex
	defs   map[string]*Definition
	order  []string
	scopes map[ScopeKind]bool
	frozen bool
	closed bool
}

// NewRegistry creates a registry that accepts the given scope kinds.
func NewRegistry(kinds ...ScopeKind) *Registry {
	r := &Registry{
		defs:   make(map[string]*Definition),
		scopes: make(map[ScopeKind]bool, len(kinds)),
	}
	for _, k := range kinds {
		r.scopes[k] = true
	}
	return r
}

// Register validates def and stores a copy of it.
func (r *Registry) Register(def *Definition) error {
	if def == nil {
		return errInvalidDefinition("", fmt.Errorf("definition is nil"))
	}
	if err := validateDefinition(def); err != nil {
		return errInvalidDefinition(def.ID, err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return errContainerClosed()
	}
	if r.frozen {
		return errRegistryFrozen(def.ID)
	}
	if !r.scopes[def.Scope] {
		return errUnknownScope(def.Scope)
	}
	if _, exists := r.defs[def.ID]; exists {
		return errDuplicateDefinition(def.ID)
	}

	r.defs[def.ID] = def.clone()
	r.order = append(r.order, def.ID)
	return nil
}

func validateDefinition(def *Definition) error {
	v := validation.New().
		Required("id", def.ID).
		NotNil("type", def.Type).
		NotNil("construct", def.Construct).
		Required("scope", string(def.Scope))
	for i, dep := range def.Dependencies {
		v.Custom(dep.Type != nil, fmt.Sprintf("dependencies[%d].type", i), "is required")
	}
	return v.Err()
}

// Get returns the definition registered under id.
func (r *Registry) Get(id string) (*Definition, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	def, ok := r.defs[id]
	return def, ok
}

// Lookup returns the autowire candidates assignable to t, in registration
// order. A non-empty tag keeps the candidates carrying that tag; when none
// carries it, the candidate whose id equals tag is used instead.
func (r *Registry) Lookup(t reflect.Type, tag string) []*Definition {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var matches []*Definition
	for _, id := range r.order {
		def := r.defs[id]
		if def.Autowire && def.Type.AssignableTo(t) {
			matches = append(matches, def)
		}
	}
	if tag == "" {
		return matches
	}

	var tagged, named []*Definition
	for _, def := range matches {
		if def.Tag == tag {
			tagged = append(tagged, def)
		}
		if def.ID == tag {
			named = append(named, def)
		}
	}
	if len(tagged) > 0 {
		return tagged
	}
	return named
}

// Definitions returns all definitions in registration order.
func (r *Registry) Definitions() []*Definition {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Definition, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.defs[id])
	}
	return out
}

// Len returns the number of registered definitions.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.order)
}

// Freeze stops further registration.
func (r *Registry) Freeze() {
	r.mu.Lock()
	r.frozen = true
	r.mu.Unlock()
}

// Frozen reports whether the registry has been frozen.
func (r *Registry) Frozen() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.frozen
}

// close freezes the registry permanently; registration then fails with
// ContainerClosed.
func (r *Registry) close() {
	r.mu.Lock()
	r.frozen = true
	r.closed = true
	r.mu.Unlock()
}
