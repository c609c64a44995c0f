package bootstrap

import (
	"context"
	stderrors "errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kbukum/beankit/component"
	"github.com/kbukum/beankit/di"
	"github.com/kbukum/beankit/logger"
	"github.com/kbukum/beankit/version"
)

// App is an application with one bean container and a component registry.
// C is the typed config.
type App[C Config] struct {
	Name       string
	Version    string
	Cfg        C
	Container  *di.Container
	Components *component.Registry
	Logger     *logger.Logger

	gracefulTimeout time.Duration
	onConfigure     []func(ctx context.Context, app *App[C]) error

	onStart []Hook
	onReady []Hook
	onStop  []Hook
}

// NewApp applies defaults to cfg, validates it, initializes the logger and
// creates the container. The container is the first registered component,
// so it starts first and stops last.
func NewApp[C Config](cfg C, opts ...Option) (*App[C], error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}
	base := cfg.GetBaseConfig()

	o := resolveOptions(opts)
	app := &App[C]{
		Name:            base.Name,
		Version:         base.Version,
		Cfg:             cfg,
		Components:      component.NewRegistry(),
		gracefulTimeout: 15 * time.Second,
	}
	if app.Version == "" {
		app.Version = version.GetShortVersion()
	}
	if o.gracefulTimeout != nil {
		app.gracefulTimeout = *o.gracefulTimeout
	}
	if o.logger != nil {
		app.Logger = o.logger
	} else {
		logger.Init(&base.Logging)
		app.Logger = logger.GetGlobalLogger()
	}

	containerLog := app.Logger.WithComponent("container")
	containerOpts := append([]di.Option{di.WithLogger(containerLog)}, o.containerOpts...)
	app.Container = di.New(containerOpts...)
	logger.Register(app.Container.Name(), containerLog)
	if err := app.Components.Register(app.Container); err != nil {
		return nil, err
	}
	return app, nil
}

// RegisterComponent adds a component after the container.
func (a *App[C]) RegisterComponent(c component.Component) error {
	return a.Components.Register(c)
}

// OnConfigure registers a callback for the configure phase. Callbacks run
// before any component starts; register beans and components there.
func (a *App[C]) OnConfigure(fn func(ctx context.Context, app *App[C]) error) {
	a.onConfigure = append(a.onConfigure, fn)
}

// ReadyCheck reports every component that is not healthy.
func (a *App[C]) ReadyCheck(ctx context.Context) error {
	var unhealthy []string
	for _, h := range a.Components.HealthAll(ctx) {
		if h.Status == component.StatusHealthy {
			continue
		}
		detail := h.Name + "=" + string(h.Status)
		if h.Message != "" {
			detail += "(" + h.Message + ")"
		}
		unhealthy = append(unhealthy, detail)
	}
	if len(unhealthy) > 0 {
		return fmt.Errorf("unhealthy components: %v", unhealthy)
	}
	return nil
}

// Run starts the application, blocks until SIGINT/SIGTERM or ctx is done,
// then shuts down.
func (a *App[C]) Run(ctx context.Context) error {
	if err := a.startup(ctx); err != nil {
		_ = a.stop()
		return err
	}
	a.WaitForSignal(ctx)
	return a.stop()
}

// RunTask starts the application, runs task and shuts down when it
// returns. A signal cancels the task's context.
func (a *App[C]) RunTask(ctx context.Context, task func(ctx context.Context) error) error {
	if err := a.startup(ctx); err != nil {
		_ = a.stop()
		return err
	}

	taskCtx, cancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	taskErr := task(taskCtx)
	if stopErr := a.stop(); stopErr != nil && taskErr == nil {
		return stopErr
	}
	return taskErr
}

func (a *App[C]) startup(ctx context.Context) error {
	start := time.Now()
	a.Logger.Info("Starting application", map[string]interface{}{
		"name":    a.Name,
		"version": a.Version,
	})

	for _, fn := range a.onConfigure {
		if err := fn(ctx, a); err != nil {
			return fmt.Errorf("configuration failed: %w", err)
		}
	}
	if err := a.Components.StartAll(ctx); err != nil {
		return fmt.Errorf("initialization failed: %w", err)
	}
	if err := runHooks(ctx, a.onStart); err != nil {
		return fmt.Errorf("onStart hook failed: %w", err)
	}
	if err := a.ReadyCheck(ctx); err != nil {
		a.Logger.Warn("Ready check reported issues", logger.ErrorFields("ready_check", err))
	}
	if err := runHooks(ctx, a.onReady); err != nil {
		return fmt.Errorf("onReady hook failed: %w", err)
	}

	a.Logger.Info("Application ready", map[string]interface{}{
		"components":         len(a.Components.All()),
		"beans":              len(a.Container.Definitions()),
		logger.FieldDuration: time.Since(start).Milliseconds(),
	})
	return nil
}

// WaitForSignal blocks until SIGINT/SIGTERM or ctx is done.
func (a *App[C]) WaitForSignal(ctx context.Context) os.Signal {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	select {
	case sig := <-sigCh:
		a.Logger.Info("Received shutdown signal", map[string]interface{}{
			"signal": sig.String(),
		})
		return sig
	case <-ctx.Done():
		a.Logger.Info("Context canceled, shutting down")
		return nil
	}
}

// Shutdown stops the application. Use it when driving the lifecycle by hand.
func (a *App[C]) Shutdown(ctx context.Context) error {
	return a.stop()
}

// stop runs the stop hooks, then stops every started component in reverse
// order within the graceful timeout. The container goes last.
func (a *App[C]) stop() error {
	a.Logger.Info("Shutting down application", map[string]interface{}{
		"timeout": a.gracefulTimeout.String(),
	})
	ctx, cancel := context.WithTimeout(context.Background(), a.gracefulTimeout)
	defer cancel()

	var errs []error
	if err := runHooks(ctx, a.onStop); err != nil {
		a.Logger.Error("OnStop hook error", logger.ErrorFields("on_stop", err))
		errs = append(errs, err)
	}
	if err := a.Components.StopAll(ctx); err != nil {
		errs = append(errs, err)
	}
	// No-op when StopAll already shut the container down; covers a
	// container whose Start failed.
	if err := a.Container.Shutdown(ctx); err != nil {
		errs = append(errs, err)
	}

	a.Logger.Info("Application shutdown complete")
	return stderrors.Join(errs...)
}
