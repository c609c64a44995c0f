// Package web exposes the hello beans over HTTP.
package web

import (
	"context"

	"github.com/kbukum/beankit/hello/common"
)

// LogDemoService is a singleton that logs through the request logger proxy.
type LogDemoService struct {
	log common.RequestLogger
}

// NewLogDemoService creates a LogDemoService.
func NewLogDemoService(log common.RequestLogger) *LogDemoService {
	return &LogDemoService{log: log}
}

// Logic logs one line for id in the current request.
func (s *LogDemoService) Logic(ctx context.Context, id string) error {
	return s.log.Log(ctx, "service id = "+id)
}
