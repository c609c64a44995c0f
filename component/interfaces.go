package component

import "context"

// HealthStatus is a component's health. Statuses are ordered: healthy is
// better than degraded, which is better than unhealthy.
type HealthStatus string

const (
	StatusHealthy   HealthStatus = "healthy"
	StatusDegraded  HealthStatus = "degraded"
	StatusUnhealthy HealthStatus = "unhealthy"
)

func (s HealthStatus) String() string { return string(s) }

func (s HealthStatus) rank() int {
	switch s {
	case StatusHealthy:
		return 0
	case StatusDegraded:
		return 1
	}
	return 2
}

// Worse returns the worse of s and other. Unknown statuses count as
// unhealthy.
func (s HealthStatus) Worse(other HealthStatus) HealthStatus {
	if other.rank() > s.rank() {
		return other
	}
	return s
}

// Health is one component's health report.
type Health struct {
	Name    string       `json:"name"`
	Status  HealthStatus `json:"status"`
	Message string       `json:"message,omitempty"`
}

// Healthy, Degraded and Unhealthy build reports for name.
func Healthy(name, message string) Health {
	return Health{Name: name, Status: StatusHealthy, Message: message}
}

func Degraded(name, message string) Health {
	return Health{Name: name, Status: StatusDegraded, Message: message}
}

func Unhealthy(name, message string) Health {
	return Health{Name: name, Status: StatusUnhealthy, Message: message}
}

// Component is a long-lived part of an application, such as the bean
// container or the HTTP server. The registry starts components in
// registration order and stops them in reverse.
type Component interface {
	Name() string
	Start(ctx context.Context) error
	// Stop releases the component's resources. It must be safe to call on
	// a component whose Start failed.
	Stop(ctx context.Context) error
	Health(ctx context.Context) Health
}

// Describable components add Describe's result to the startup log line,
// e.g. a listen address.
type Describable interface {
	Describe() string
}
