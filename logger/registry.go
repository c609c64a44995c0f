package logger

import (
	"sort"
	"sync"
)

// registry holds named loggers shared by the container and its collaborators.
var registry = &loggerRegistry{
	loggers: make(map[string]*Logger),
}

type loggerRegistry struct {
	mu      sync.RWMutex
	loggers map[string]*Logger
}

// Register stores a named logger in the registry, replacing any previous one.
func Register(name string, l *Logger) {
	registry.mu.Lock()
	defer registry.mu.Unlock()
	registry.loggers[name] = l
}

// Get retrieves a named logger. Unknown names fall back to the global logger
// tagged with the requested component name.
func Get(name string) *Logger {
	registry.mu.RLock()
	l, ok := registry.loggers[name]
	registry.mu.RUnlock()
	if ok {
		return l
	}
	return GetGlobalLogger().WithComponent(name)
}

// Names returns the registered logger names in sorted order.
func Names() []string {
	registry.mu.RLock()
	defer registry.mu.RUnlock()
	names := make([]string, 0, len(registry.loggers))
	for name := range registry.loggers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
