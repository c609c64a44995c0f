// Package network holds a client with explicit connect and disconnect
// steps, wired to the container's post-construct and pre-destroy hooks.
package network

import (
	"context"
	"sync"

	"github.com/kbukum/beankit/logger"
)

// Client is a fake network client.
type Client struct {
	url string
	log *logger.Logger

	mu        sync.Mutex
	connected bool
	calls     []string
}

// NewClient creates a disconnected client for url.
func NewClient(url string, log *logger.Logger) *Client {
	log.Debug("network client created", logger.Fields("url", url))
	return &Client{url: url, log: log}
}

// Connect opens the connection.
func (c *Client) Connect(ctx context.Context) error {
	c.mu.Lock()
	c.connected = true
	c.mu.Unlock()
	c.log.Info("connect", logger.Fields("url", c.url))
	return c.Call(ctx, "initial connection message")
}

// Call sends message over the connection.
func (c *Client) Call(_ context.Context, message string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.connected {
		return errNotConnected(c.url)
	}
	c.calls = append(c.calls, message)
	c.log.Info("call", logger.Fields("url", c.url, "message", message))
	return nil
}

// Disconnect closes the connection.
func (c *Client) Disconnect(context.Context) error {
	c.mu.Lock()
	c.connected = false
	c.mu.Unlock()
	c.log.Info("close", logger.Fields("url", c.url))
	return nil
}

// Connected reports whether the connection is open.
func (c *Client) Connected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.connected
}

// Calls returns the messages sent so far.
func (c *Client) Calls() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.calls...)
}

// URL returns the target url.
func (c *Client) URL() string { return c.url }
