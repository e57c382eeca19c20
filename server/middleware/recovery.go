package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"

	"github.com/skillsenselab/speechkit/logger"
)

// Recovery returns middleware that recovers from panics, logs the stack, and
// sends a generic 500 response. A nil log falls back to the global logger.
func Recovery(log *logger.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					fields := map[string]interface{}{
						"error":  fmt.Sprintf("%v", err),
						"stack":  string(debug.Stack()),
						"path":   r.URL.Path,
						"method": r.Method,
					}
					if log != nil {
						log.Error("Panic recovered", fields)
					} else {
						logger.Error("Panic recovered", fields)
					}

					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					_, _ = w.Write([]byte(`{"error":"Internal server error"}`))
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// GinRecovery returns a Gin middleware for panic recovery.
func GinRecovery(log *logger.Logger) gin.HandlerFunc {
	return GinWrap(Recovery(log))
}
