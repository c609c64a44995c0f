package bootstrap

import (
	"time"

	"github.com/kbukum/beankit/di"
	"github.com/kbukum/beankit/logger"
)

// Option configures the App during creation.
type Option func(*appOptions)

type appOptions struct {
	logger          *logger.Logger
	containerOpts   []di.Option
	gracefulTimeout *time.Duration
}

func resolveOptions(opts []Option) *appOptions {
	o := &appOptions{}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// WithLogger sets the application logger. Without it the logger is built
// from the config's logging section.
func WithLogger(l *logger.Logger) Option {
	return func(o *appOptions) {
		o.logger = l
	}
}

// WithGracefulTimeout sets the maximum duration for graceful shutdown.
func WithGracefulTimeout(d time.Duration) Option {
	return func(o *appOptions) {
		o.gracefulTimeout = &d
	}
}

// WithContainerOptions passes options to the bean container.
func WithContainerOptions(opts ...di.Option) Option {
	return func(o *appOptions) {
		o.containerOpts = append(o.containerOpts, opts...)
	}
}
