// Package server provides the HTTP server of a beankit application: Gin
// mounted on a root mux, wrapped in net/http middleware and served with h2c.
//
// A typical setup opens one request scope of the bean container per request
// and exposes the container's definitions next to the health probes:
//
//	srv := server.New(cfg.Server, log)
//	srv.ApplyMiddleware(server.StackOptions{Service: "hello", Metrics: m, Scopes: container})
//	srv.RegisterDefaultEndpoints("hello", components.HealthAll, container)
//	components.Register(server.NewComponent(srv))
//
// Middleware lives in server/middleware, the built-in handlers in
// server/endpoint:
//
//   - /health: aggregated component health
//   - /live, /ready: liveness and readiness probes
//   - /version: build information
//   - /beans: registered bean definitions
package server
