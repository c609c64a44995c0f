package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/kbukum/beankit/logger"
	"github.com/kbukum/beankit/observability"
	"github.com/kbukum/beankit/server/endpoint"
	"github.com/kbukum/beankit/server/middleware"
)

// Server is an HTTP server backed by Gin. Gin is mounted at "/" on a root
// mux so plain http.Handlers can share the port, and the middleware stack
// wraps the mux so it covers both.
type Server struct {
	httpServer  *http.Server
	engine      *gin.Engine
	mux         *http.ServeMux
	middlewares []middleware.Middleware
	config      Config
	log         *logger.Logger

	mu       sync.Mutex
	listener net.Listener
}

// New creates a Server. No middleware is applied yet.
func New(cfg Config, log *logger.Logger) *Server {
	if log.Level() <= zerolog.DebugLevel {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	engine.Use(routeTemplate)
	mux := http.NewServeMux()
	mux.Handle("/", engine)

	s := &Server{
		engine: engine,
		mux:    mux,
		config: cfg,
		log:    log.WithComponent("server"),
	}
	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		ReadTimeout:  seconds(cfg.ReadTimeout),
		WriteTimeout: seconds(cfg.WriteTimeout),
		IdleTimeout:  seconds(cfg.IdleTimeout),
	}
	return s
}

// Engine returns the Gin engine for route registration.
func (s *Server) Engine() *gin.Engine {
	return s.engine
}

// Handler returns the root handler: the middleware stack around the mux,
// with h2c on the outside.
func (s *Server) Handler() http.Handler {
	h2s := &http2.Server{
		MaxConcurrentStreams: 250,
		IdleTimeout:          120 * time.Second,
	}
	return h2c.NewHandler(middleware.Chain(s.middlewares...)(s.mux), h2s)
}

// routeTemplate labels the request's metrics with the gin route it matched.
func routeTemplate(c *gin.Context) {
	if p := c.FullPath(); p != "" {
		middleware.RouteTemplate(c.Request, p)
	}
	c.Next()
}

// Use appends middleware to the stack. It must be called before Start.
func (s *Server) Use(mws ...middleware.Middleware) {
	s.middlewares = append(s.middlewares, mws...)
}

// Handle mounts an http.Handler at the given pattern on the root mux.
func (s *Server) Handle(pattern string, handler http.Handler) {
	s.mux.Handle(pattern, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		middleware.RouteTemplate(r, pattern)
		handler.ServeHTTP(w, r)
	}))
	s.log.Debug("Handler mounted", map[string]interface{}{
		"pattern": pattern,
	})
}

// Start binds the port and begins serving. It returns once the listener is
// bound; serving continues in a goroutine.
func (s *Server) Start(ctx context.Context) error {
	listener, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return fmt.Errorf("server failed to bind %s: %w", s.httpServer.Addr, err)
	}
	// The middleware stack is fixed from here on.
	s.httpServer.Handler = s.Handler()

	s.mu.Lock()
	s.listener = listener
	s.mu.Unlock()

	go func() {
		if err := s.httpServer.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.log.Error("Server error", map[string]interface{}{
				"error": err.Error(),
			})
		}
	}()

	s.log.Info("HTTP server started", map[string]interface{}{
		"addr": listener.Addr().String(),
	})
	return nil
}

// Stop gracefully shuts down the server, waiting at most the configured
// stop timeout for in-flight requests. Stopping a server that is not
// listening is a no-op.
func (s *Server) Stop(ctx context.Context) error {
	if !s.listening() {
		return nil
	}
	timeout := seconds(s.config.StopTimeout)
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	shutdownCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	defer func() {
		s.mu.Lock()
		s.listener = nil
		s.mu.Unlock()
	}()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown error: %w", err)
	}
	s.log.Info("HTTP server shut down")
	return nil
}

// Addr returns the bound address while the server runs, the configured
// address otherwise.
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return s.httpServer.Addr
}

func (s *Server) listening() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.listener != nil
}

// StackOptions selects the collaborators of the standard middleware stack.
// Nil fields drop the matching middleware.
type StackOptions struct {
	Service string
	Metrics *observability.Metrics
	Scopes  middleware.Scoper
}

// ApplyMiddleware installs the standard stack: recovery, request id,
// observation, request logging, CORS, body-size limit and, when a Scoper is
// given, one request scope per request.
func (s *Server) ApplyMiddleware(opts StackOptions) {
	s.Use(
		middleware.Recovery(s.log),
		middleware.RequestID(),
		middleware.Observe(opts.Service, opts.Metrics),
		middleware.RequestLogger(s.log),
		middleware.CORS(&s.config.CORS),
	)
	if s.config.MaxBodySize != "" {
		s.Use(middleware.BodySizeLimit(s.config.MaxBodySize))
	}
	if opts.Scopes != nil {
		s.Use(middleware.RequestScope(opts.Scopes, s.log))
	}
}

// RegisterDefaultEndpoints registers /health, /live, /ready and /version,
// and /beans when a lister is given.
func (s *Server) RegisterDefaultEndpoints(serviceName string, checker endpoint.HealthChecker, beans endpoint.BeanLister) {
	s.engine.GET("/health", endpoint.Health(serviceName, checker))
	s.engine.GET("/live", endpoint.Liveness(serviceName))
	s.engine.GET("/ready", endpoint.Readiness(serviceName, checker))
	s.engine.GET("/version", endpoint.Version())
	if beans != nil {
		s.engine.GET("/beans", endpoint.Beans(beans))
	}
}
