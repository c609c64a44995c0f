// Command hello runs the hello shop application: a bean container with
// member, order and discount beans served over HTTP.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/kbukum/beankit/bootstrap"
	"github.com/kbukum/beankit/config"
	"github.com/kbukum/beankit/di"
	"github.com/kbukum/beankit/hello"
	"github.com/kbukum/beankit/hello/web"
	"github.com/kbukum/beankit/logger"
	"github.com/kbukum/beankit/observability"
	"github.com/kbukum/beankit/server"
)

const serviceName = "hello"

func main() {
	if err := run(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "hello: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	cfg := newAppConfig()
	if err := config.Load(serviceName, cfg); err != nil {
		return err
	}

	app, err := bootstrap.NewApp(cfg, bootstrap.WithContainerOptions(di.WithConfig(cfg.Container)))
	if err != nil {
		return err
	}
	metrics, err := setupObservability(ctx, app)
	if err != nil {
		return err
	}

	app.OnConfigure(func(ctx context.Context, a *bootstrap.App[*AppConfig]) error {
		if err := hello.Configure(a.Container, a.Cfg.Hello, a.Logger); err != nil {
			return err
		}

		srv := server.New(a.Cfg.Server, a.Logger.WithComponent("http"))
		srv.ApplyMiddleware(server.StackOptions{
			Service: a.Name,
			Metrics: metrics,
			Scopes:  a.Container,
		})
		srv.RegisterDefaultEndpoints(a.Name, a.Components.HealthAll, a.Container)

		// Resolving freezes the registry; every bean is registered by now.
		handler, err := di.Resolve[*web.Handler](ctx, a.Container, hello.WebHandlerID)
		if err != nil {
			return err
		}
		handler.Register(srv.Engine())

		return a.RegisterComponent(server.NewComponent(srv))
	})

	return app.Run(ctx)
}

// setupObservability starts the OTLP exporters the config enables and
// returns the HTTP metrics instruments.
func setupObservability(ctx context.Context, app *bootstrap.App[*AppConfig]) (*observability.Metrics, error) {
	obs := app.Cfg.Observability
	env := app.Cfg.Environment

	if obs.Tracing {
		tp, err := observability.InitTracer(ctx, obs.TracerConfig(app.Name, app.Version, env))
		if err != nil {
			return nil, fmt.Errorf("init tracer: %w", err)
		}
		app.OnStop(tp.Shutdown)
	}
	if obs.Metrics {
		mp, err := observability.InitMeter(ctx, obs.MeterConfig(app.Name, app.Version, env))
		if err != nil {
			return nil, fmt.Errorf("init meter: %w", err)
		}
		app.OnStop(mp.Shutdown)
	}

	metrics, err := observability.NewMetrics(observability.Meter(serviceName))
	if err != nil {
		app.Logger.Warn("http metrics disabled", logger.ErrorFields("create_metrics", err))
		return nil, nil
	}
	return metrics, nil
}
