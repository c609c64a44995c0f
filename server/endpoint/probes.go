package endpoint

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// Liveness answers as long as the process can serve HTTP.
func Liveness(serviceName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, probe(serviceName, "alive"))
	}
}

// Readiness reports not_ready with a 503 while any component is unhealthy.
// Degraded components keep the service ready.
func Readiness(serviceName string, checker HealthChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		code := statusCode(c.Request.Context(), serviceName, checker)
		state := "ready"
		if code != http.StatusOK {
			state = "not_ready"
		}
		c.JSON(code, probe(serviceName, state))
	}
}

func probe(serviceName, state string) gin.H {
	return gin.H{
		"status":    state,
		"service":   serviceName,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	}
}
