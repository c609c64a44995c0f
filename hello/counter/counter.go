// Package counter shows a singleton using a prototype bean through a
// provider: every call works on a fresh Counter.
package counter

import (
	"context"
	"sync/atomic"

	"github.com/kbukum/beankit/di"
)

// Counter is a prototype bean.
type Counter struct {
	count atomic.Int64
}

// Add increments the count and returns the new value.
func (c *Counter) Add() int64 {
	return c.count.Add(1)
}

// Client is a singleton that asks its provider for a new Counter on every
// Logic call.
type Client struct {
	counters *di.Provider[*Counter]
}

// NewClient creates a Client.
func NewClient(counters *di.Provider[*Counter]) *Client {
	return &Client{counters: counters}
}

// Logic increments a fresh counter, so the result is always 1.
func (c *Client) Logic(ctx context.Context) (int64, error) {
	counter, err := c.counters.Get(ctx)
	if err != nil {
		return 0, err
	}
	return counter.Add(), nil
}
