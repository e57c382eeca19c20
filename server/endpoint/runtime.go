package endpoint

import (
	"net/http"
	"runtime"

	"github.com/gin-gonic/gin"
)

const mb = 1024 * 1024

// Metrics reports process-level runtime stats. It is a fallback surface for
// deployments without an OTLP collector.
func Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		var m runtime.MemStats
		runtime.ReadMemStats(&m)

		c.JSON(http.StatusOK, gin.H{
			"timestamp":  timestamp(),
			"goroutines": runtime.NumGoroutine(),
			"memory": gin.H{
				"alloc_mb":       m.Alloc / mb,
				"total_alloc_mb": m.TotalAlloc / mb,
				"sys_mb":         m.Sys / mb,
				"gc_runs":        m.NumGC,
			},
		})
	}
}
