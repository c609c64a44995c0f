package di

import (
	"fmt"
	"slices"
	"strings"
	"unicode"

	"github.com/kbukum/beankit/validation"
)

// Config is the `container:` section of an application config.
//
// Boolean fields default to true; start from DefaultConfig before
// unmarshalling so absent keys keep their defaults.
type Config struct {
	// EagerSingletons builds every non-lazy singleton during Start.
	EagerSingletons bool `yaml:"eager_singletons" mapstructure:"eager_singletons"`
	// ValidateOnStart checks the dependency graph during Start.
	ValidateOnStart bool `yaml:"validate_on_start" mapstructure:"validate_on_start"`
	// ContextScopes enables context-bound scope kinds besides request.
	ContextScopes []string `yaml:"context_scopes" mapstructure:"context_scopes" validate:"dive,required"`
	// TraceResolution opens a span around every top-level resolve.
	TraceResolution bool `yaml:"trace_resolution" mapstructure:"trace_resolution"`
}

// DefaultConfig returns the container defaults.
func DefaultConfig() Config {
	return Config{
		EagerSingletons: true,
		ValidateOnStart: true,
	}
}

// ApplyDefaults normalises the scope list.
func (c *Config) ApplyDefaults() {
	var scopes []string
	for _, s := range c.ContextScopes {
		if s != "" && !slices.Contains(scopes, s) {
			scopes = append(scopes, s)
		}
	}
	c.ContextScopes = scopes
}

// Validate checks the section.
func (c *Config) Validate() error {
	if err := validation.Validate(c); err != nil {
		return err
	}
	v := validation.New()
	for i, s := range c.ContextScopes {
		field := fmt.Sprintf("context_scopes[%d]", i)
		kind := ScopeKind(s)
		v.Custom(kind != ScopeSingleton && kind != ScopePrototype, field, "must not name a built-in scope")
		v.Custom(!strings.ContainsFunc(s, unicode.IsSpace), field, "must not contain whitespace")
	}
	return v.Err()
}

func (c *Config) scopeKinds() []ScopeKind {
	kinds := make([]ScopeKind, 0, len(c.ContextScopes))
	for _, s := range c.ContextScopes {
		kinds = append(kinds, ScopeKind(s))
	}
	return kinds
}
