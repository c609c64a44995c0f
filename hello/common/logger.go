// Package common holds the request-scoped logger of the hello application
// and the proxy that lets singletons use it.
package common

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/kbukum/beankit/di"
	"github.com/kbukum/beankit/logger"
)

// RequestLogger writes log lines tagged with the current request.
type RequestLogger interface {
	ID(ctx context.Context) (string, error)
	SetRequestURL(ctx context.Context, url string) error
	Log(ctx context.Context, message string) error
}

// MyLogger is the request-scoped RequestLogger. The container builds one per
// request; Init gives it a fresh id and Close runs when the request ends.
type MyLogger struct {
	log *logger.Logger

	mu         sync.Mutex
	id         string
	requestURL string
}

// NewMyLogger creates a MyLogger writing to log.
func NewMyLogger(log *logger.Logger) *MyLogger {
	return &MyLogger{log: log}
}

// Init assigns the logger id.
func (l *MyLogger) Init(ctx context.Context) error {
	l.mu.Lock()
	l.id = uuid.NewString()
	l.mu.Unlock()
	l.log.WithContext(ctx).Info("request scope bean create", logger.Fields("uuid", l.id))
	return nil
}

// Close logs the end of the bean's request.
func (l *MyLogger) Close() error {
	l.log.Info("request scope bean close", logger.Fields("uuid", l.currentID()))
	return nil
}

// ID returns the id assigned by Init.
func (l *MyLogger) ID(context.Context) (string, error) {
	return l.currentID(), nil
}

// SetRequestURL records the URL of the request this logger belongs to.
func (l *MyLogger) SetRequestURL(_ context.Context, url string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.requestURL = url
	return nil
}

// Log writes message tagged with the logger id and request URL.
func (l *MyLogger) Log(ctx context.Context, message string) error {
	l.mu.Lock()
	fields := logger.Fields("uuid", l.id, "request_url", l.requestURL)
	l.mu.Unlock()
	l.log.WithContext(ctx).Info(message, fields)
	return nil
}

func (l *MyLogger) currentID() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.id
}

// loggerProxy forwards every call to the MyLogger of the caller's request.
type loggerProxy struct {
	target *di.Proxy[RequestLogger]
}

// NewLoggerProxy adapts p to RequestLogger.
func NewLoggerProxy(p *di.Proxy[RequestLogger]) RequestLogger {
	return loggerProxy{target: p}
}

func (p loggerProxy) ID(ctx context.Context) (string, error) {
	var id string
	err := p.target.Invoke(ctx, func(l RequestLogger) (err error) {
		id, err = l.ID(ctx)
		return err
	})
	return id, err
}

func (p loggerProxy) SetRequestURL(ctx context.Context, url string) error {
	return p.target.Invoke(ctx, func(l RequestLogger) error { return l.SetRequestURL(ctx, url) })
}

func (p loggerProxy) Log(ctx context.Context, message string) error {
	return p.target.Invoke(ctx, func(l RequestLogger) error { return l.Log(ctx, message) })
}
