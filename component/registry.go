package component

import (
	"context"
	stderrors "errors"
	"fmt"
	"sync"
	"time"

	"github.com/kbukum/beankit/logger"
)

// DefaultStopTimeout bounds each component's Stop call.
const DefaultStopTimeout = 10 * time.Second

type slot struct {
	Component
	started bool
}

// Registry owns the application's components. They start in registration
// order and stop in reverse, so register dependencies first.
type Registry struct {
	mu          sync.RWMutex
	slots       []*slot
	byName      map[string]*slot
	stopTimeout time.Duration
}

func NewRegistry() *Registry {
	return &Registry{
		byName:      make(map[string]*slot),
		stopTimeout: DefaultStopTimeout,
	}
}

// SetStopTimeout changes the per-component stop timeout. Non-positive
// values are ignored.
func (r *Registry) SetStopTimeout(d time.Duration) {
	if d <= 0 {
		return
	}
	r.mu.Lock()
	r.stopTimeout = d
	r.mu.Unlock()
}

func (r *Registry) Register(c Component) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	name := c.Name()
	if _, dup := r.byName[name]; dup {
		return fmt.Errorf("component %s already registered", name)
	}
	s := &slot{Component: c}
	r.slots = append(r.slots, s)
	r.byName[name] = s
	log().Debug("component registered", logger.Fields(logger.FieldComponent, name))
	return nil
}

// StartAll starts every component not yet started and returns at the first
// failure. Whatever started before the failure stays up until StopAll.
func (r *Registry) StartAll(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, s := range r.slots {
		if s.started {
			continue
		}
		name := s.Name()
		if err := s.Start(ctx); err != nil {
			log().Error("component start failed", logger.ErrorFields(name, err))
			return fmt.Errorf("failed to start %s: %w", name, err)
		}
		s.started = true

		fields := logger.Fields(logger.FieldComponent, name)
		if d, ok := s.Component.(Describable); ok {
			fields["details"] = d.Describe()
		}
		log().Info("component started", fields)
	}
	return nil
}

// StopAll stops the started components in reverse order. A failing Stop
// does not prevent the rest from stopping; the failures are joined.
func (r *Registry) StopAll(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	var errs []error
	for i := len(r.slots) - 1; i >= 0; i-- {
		s := r.slots[i]
		if !s.started {
			continue
		}
		if err := r.stop(ctx, s); err != nil {
			errs = append(errs, err)
		}
		s.started = false
	}
	return stderrors.Join(errs...)
}

func (r *Registry) stop(ctx context.Context, s *slot) error {
	name := s.Name()
	ctx, cancel := context.WithTimeout(ctx, r.stopTimeout)
	defer cancel()

	if err := s.Stop(ctx); err != nil {
		log().Error("component stop failed", logger.ErrorFields(name, err))
		return fmt.Errorf("failed to stop %s: %w", name, err)
	}
	log().Info("component stopped", logger.Fields(logger.FieldComponent, name))
	return nil
}

// HealthAll asks every component for its health, in registration order.
func (r *Registry) HealthAll(ctx context.Context) []Health {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Health, len(r.slots))
	for i, s := range r.slots {
		out[i] = s.Health(ctx)
	}
	return out
}

// Get returns the named component, or nil.
func (r *Registry) Get(name string) Component {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if s, ok := r.byName[name]; ok {
		return s.Component
	}
	return nil
}

func (r *Registry) All() []Component {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Component, len(r.slots))
	for i, s := range r.slots {
		out[i] = s.Component
	}
	return out
}

func log() *logger.Logger { return logger.Get("components") }
