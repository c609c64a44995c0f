// Package observability provides OpenTelemetry tracing and metrics for the
// container and the HTTP server.
//
// Exporters are configured from the `observability:` config section:
//
//	tp, err := observability.InitTracer(ctx, cfg.TracerConfig("hello", version.GetShortVersion(), env))
//	defer tp.Shutdown(ctx)
//
//	mp, err := observability.InitMeter(ctx, cfg.MeterConfig("hello", version.GetShortVersion(), env))
//	defer mp.Shutdown(ctx)
//
// Metrics wraps the instruments recorded by the container (bean
// constructions, destructions, resolve errors, open scopes) and by the
// server (request count, duration, active requests). A nil *Metrics records
// nothing.
//
// Health:
//
//	health := observability.NewServiceHealth("hello", version.GetShortVersion())
//	for _, h := range components.HealthAll(ctx) {
//	    health.AddComponent(h)
//	}
package observability
