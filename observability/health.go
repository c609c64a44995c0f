package observability

import (
	"net/http"

	"github.com/kbukum/beankit/component"
)

// ServiceHealth is the overall health of a service, built from the health of
// its components.
type ServiceHealth struct {
	Service    string                 `json:"service"`
	Status     component.HealthStatus `json:"status"`
	Version    string                 `json:"version,omitempty"`
	Components []component.Health     `json:"components,omitempty"`
}

// NewServiceHealth creates a healthy ServiceHealth.
func NewServiceHealth(service, version string) *ServiceHealth {
	return &ServiceHealth{
		Service: service,
		Status:  component.StatusHealthy,
		Version: version,
	}
}

// AddComponent records one component and lowers the overall status to the
// worst seen so far.
func (sh *ServiceHealth) AddComponent(h component.Health) {
	sh.Components = append(sh.Components, h)
	sh.Status = sh.Status.Worse(h.Status)
}

// HTTPStatus maps the overall status to a response code. A degraded service
// still serves traffic.
func (sh *ServiceHealth) HTTPStatus() int {
	if sh.Status == component.StatusUnhealthy {
		return http.StatusServiceUnavailable
	}
	return http.StatusOK
}
