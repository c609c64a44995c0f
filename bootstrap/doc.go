// Package bootstrap runs a beankit application: it owns the bean container
// and the component registry, and drives them through one lifecycle.
//
//	app, err := bootstrap.NewApp(&cfg, bootstrap.WithContainerOptions(di.WithConfig(cfg.Container)))
//	app.OnConfigure(func(ctx context.Context, a *bootstrap.App[*HelloConfig]) error {
//	    return hello.Configure(a.Container)
//	})
//	err = app.Run(ctx)
//
// Run performs Configure, starts the components in registration order (the
// container first), runs the start hooks, checks readiness, runs the ready
// hooks, waits for SIGINT/SIGTERM and shuts down in reverse order.
package bootstrap
