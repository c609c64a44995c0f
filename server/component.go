package server

import (
	"context"

	"github.com/kbukum/beankit/component"
)

const componentName = "http-server"

var (
	_ component.Component   = (*Component)(nil)
	_ component.Describable = (*Component)(nil)
)

// Component adapts a Server to component.Component.
type Component struct {
	server *Server
}

// NewComponent returns a component backed by the given Server.
func NewComponent(s *Server) *Component {
	return &Component{server: s}
}

// Name returns the component name used for registration.
func (c *Component) Name() string { return componentName }

// Start starts the underlying HTTP server.
func (c *Component) Start(ctx context.Context) error {
	return c.server.Start(ctx)
}

// Stop gracefully shuts down the underlying HTTP server.
func (c *Component) Stop(ctx context.Context) error {
	return c.server.Stop(ctx)
}

// Health reports healthy while the server is listening.
func (c *Component) Health(ctx context.Context) component.Health {
	if c.server.listening() {
		return component.Healthy(componentName, c.server.Addr())
	}
	return component.Unhealthy(componentName, "not listening")
}

// Describe returns the listen address.
func (c *Component) Describe() string {
	return c.server.Addr()
}
