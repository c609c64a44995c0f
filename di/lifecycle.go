package di

import (
	"context"
	"fmt"

	"github.com/kbukum/beankit/logger"
	"github.com/kbukum/beankit/observability"
)

// Initializer is implemented by beans that need setup after construction.
// It runs only when the definition declares no PostConstruct hook and the
// bean was not registered with Instance.
type Initializer interface {
	Init(ctx context.Context) error
}

// Destroyer is implemented by beans that need teardown. Like Initializer it
// is skipped when the definition declares a hook or came from Instance.
type Destroyer interface {
	Destroy(ctx context.Context) error
}

// closer is the inferred destroy method.
type closer interface {
	Close() error
}

type lifecycle struct {
	log     *logger.Logger
	metrics *observability.Metrics
}

// afterConstruct runs the post-construct step once for a fresh instance.
func (l *lifecycle) afterConstruct(ctx context.Context, def *Definition, instance any) error {
	var hook func() error
	switch {
	case def.PostConstruct != nil:
		hook = func() error { return def.PostConstruct(ctx, instance) }
	case def.external:
	default:
		if init, ok := instance.(Initializer); ok {
			hook = func() error { return init.Init(ctx) }
		}
	}
	if hook == nil {
		return nil
	}
	if err := guard(hook); err != nil {
		l.log.Error("post-construct failed", logger.Fields(
			logger.FieldBean, def.ID,
			logger.FieldScope, string(def.Scope),
			logger.FieldError, err.Error(),
		))
		return errConstruction(def.ID, "post-construct", err)
	}
	return nil
}

// beforeDestroy runs the pre-destroy step for rec at most once.
func (l *lifecycle) beforeDestroy(ctx context.Context, rec *Record) error {
	if !rec.destroyed.CompareAndSwap(false, true) {
		return nil
	}
	err := l.destroyInstance(ctx, rec.def, rec.Instance)

	status := "ok"
	if err != nil {
		status = "error"
		l.log.Error("pre-destroy failed", logger.Fields(
			logger.FieldBean, rec.ID,
			logger.FieldScope, string(rec.Scope),
			logger.FieldError, err.Error(),
		))
	} else {
		l.log.Debug("bean destroyed", logger.Fields(logger.FieldBean, rec.ID, logger.FieldScope, string(rec.Scope)))
	}
	l.metrics.RecordDestruction(ctx, rec.ID, string(rec.Scope), status)
	return err
}

func (l *lifecycle) destroyInstance(ctx context.Context, def *Definition, instance any) error {
	var hook func() error
	switch {
	case def.PreDestroy != nil:
		hook = func() error { return def.PreDestroy(ctx, instance) }
	case def.external:
	default:
		if d, ok := instance.(Destroyer); ok {
			hook = func() error { return d.Destroy(ctx) }
		} else if c, ok := instance.(closer); ok {
			hook = c.Close
		}
	}
	if hook == nil {
		return nil
	}
	if err := guard(hook); err != nil {
		return fmt.Errorf("destroy %s: %w", def.ID, err)
	}
	return nil
}

// destroyAll tears down records newest first. Every record is attempted;
// failures are joined into one DestroyFailed error.
func (l *lifecycle) destroyAll(ctx context.Context, records []*Record) error {
	if failures := l.destroyEach(ctx, records); len(failures) > 0 {
		return errDestroyFailed(failures)
	}
	return nil
}

// destroyEach tears down records newest first and returns every failure.
func (l *lifecycle) destroyEach(ctx context.Context, records []*Record) []error {
	var failures []error
	for i := len(records) - 1; i >= 0; i-- {
		if err := l.beforeDestroy(ctx, records[i]); err != nil {
			failures = append(failures, err)
		}
	}
	return failures
}

// guard runs fn and turns a panic into an error.
func guard(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			if e, ok := r.(error); ok {
				err = fmt.Errorf("panic: %w", e)
				return
			}
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return fn()
}
