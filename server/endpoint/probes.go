// Package endpoint provides the operational handlers every service binary
// mounts: probes, health aggregation, build info and runtime metrics.
package endpoint

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/skillsenselab/speechkit/observability"
)

// HealthChecker reports the health of each registered component.
type HealthChecker func(ctx context.Context) []observability.Health

func timestamp() string {
	return time.Now().UTC().Format(time.RFC3339)
}

// aggregate folds component health into a single service status string.
// Down wins over degraded, degraded over healthy.
func aggregate(components []observability.Health) string {
	status := "healthy"
	for _, comp := range components {
		switch comp.Status {
		case observability.HealthStatusDown:
			return "unhealthy"
		case observability.HealthStatusDegraded:
			status = "degraded"
		}
	}
	return status
}

// Liveness answers liveness probes. Reaching the handler at all proves the
// process serves HTTP, so it always returns 200.
func Liveness(serviceName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "alive",
			"service":   serviceName,
			"timestamp": timestamp(),
		})
	}
}

// Readiness answers readiness probes. Any component reporting down takes the
// service out of rotation with a 503; degraded components still admit traffic.
func Readiness(serviceName string, checker HealthChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		status, httpStatus := "ready", http.StatusOK
		if checker != nil && aggregate(checker(c.Request.Context())) == "unhealthy" {
			status, httpStatus = "not_ready", http.StatusServiceUnavailable
		}
		c.JSON(httpStatus, gin.H{
			"status":    status,
			"service":   serviceName,
			"timestamp": timestamp(),
		})
	}
}

// Health reports the aggregated service status along with the per-component
// detail, so an operator can see which dependency dragged the service down.
func Health(serviceName string, checker HealthChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		var components []observability.Health
		if checker != nil {
			components = checker(c.Request.Context())
		}

		status := aggregate(components)
		httpStatus := http.StatusOK
		if status == "unhealthy" {
			httpStatus = http.StatusServiceUnavailable
		}

		c.JSON(httpStatus, gin.H{
			"status":     status,
			"service":    serviceName,
			"timestamp":  timestamp(),
			"components": components,
		})
	}
}
