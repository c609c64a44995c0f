package endpoint

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kbukum/beankit/component"
	"github.com/kbukum/beankit/observability"
	"github.com/kbukum/beankit/version"
)

// HealthChecker returns health status for registered components.
type HealthChecker func(ctx context.Context) []component.Health

// Health returns a handler that reports service health including component
// statuses. An unhealthy component turns the response into a 503.
func Health(serviceName string, checker HealthChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		health := check(c.Request.Context(), serviceName, checker)
		c.JSON(health.HTTPStatus(), gin.H{
			"service":    health.Service,
			"status":     health.Status,
			"version":    health.Version,
			"timestamp":  time.Now().UTC().Format(time.RFC3339),
			"components": health.Components,
		})
	}
}

func check(ctx context.Context, serviceName string, checker HealthChecker) *observability.ServiceHealth {
	health := observability.NewServiceHealth(serviceName, version.GetShortVersion())
	if checker != nil {
		for _, h := range checker(ctx) {
			health.AddComponent(h)
		}
	}
	return health
}

// statusCode is used by probes that only need the aggregate result.
func statusCode(ctx context.Context, serviceName string, checker HealthChecker) int {
	return check(ctx, serviceName, checker).HTTPStatus()
}
