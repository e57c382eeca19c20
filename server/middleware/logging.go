package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/skillsenselab/speechkit/logger"
)

// slowThreshold marks requests worth flagging; transcription calls routinely
// run long, so the access log carries an explicit slow marker.
const slowThreshold = 500 * time.Millisecond

// statusWriter records the response status for the access log. The first
// WriteHeader wins; Flush and Unwrap pass through so streaming keeps working.
type statusWriter struct {
	http.ResponseWriter
	status int
	wrote  bool
}

func newStatusWriter(w http.ResponseWriter) *statusWriter {
	return &statusWriter{ResponseWriter: w, status: http.StatusOK}
}

func (sw *statusWriter) WriteHeader(code int) {
	if !sw.wrote {
		sw.status, sw.wrote = code, true
	}
	sw.ResponseWriter.WriteHeader(code)
}

func (sw *statusWriter) Write(b []byte) (int, error) {
	sw.wrote = true
	return sw.ResponseWriter.Write(b)
}

func (sw *statusWriter) Flush() {
	if f, ok := sw.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

// Unwrap exposes the underlying writer to http.ResponseController.
func (sw *statusWriter) Unwrap() http.ResponseWriter {
	return sw.ResponseWriter
}

// RequestLogger logs each request with its method, path, status, and
// duration. Probe endpoints are skipped to keep the log signal useful.
func RequestLogger(log *logger.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if isHealthEndpoint(r.URL.Path) {
				next.ServeHTTP(w, r)
				return
			}

			sw := newStatusWriter(w)
			start := time.Now()
			next.ServeHTTP(sw, r)

			fields := accessFields(r.Method, r.URL.Path, sw.status, time.Since(start))
			if id := r.Header.Get(RequestIDHeader); id != "" {
				fields["request_id"] = id
			}
			logByStatus(log, fields, sw.status)
		})
	}
}

// GinRequestLogger logs requests on the Gin engine, adding query strings,
// client IPs, and a slow-request marker.
func GinRequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		if isHealthEndpoint(c.Request.URL.Path) {
			c.Next()
			return
		}

		start := time.Now()
		c.Next()
		latency := time.Since(start)
		status := c.Writer.Status()

		path := c.Request.URL.Path
		if q := c.Request.URL.RawQuery; q != "" {
			path += "?" + q
		}

		fields := accessFields(c.Request.Method, path, status, latency)
		fields["client"] = c.ClientIP()
		if status >= http.StatusInternalServerError {
			fields["size"] = c.Writer.Size()
		}
		logByStatus(nil, fields, status)
	}
}

func accessFields(method, path string, status int, latency time.Duration) map[string]interface{} {
	fields := map[string]interface{}{
		"method":      method,
		"path":        path,
		"status":      status,
		"duration_ms": latency.Milliseconds(),
	}
	if latency > slowThreshold {
		fields["slow"] = true
	}
	return fields
}

// isHealthEndpoint reports whether path is a probe or metrics endpoint,
// at the root or under an /api prefix.
func isHealthEndpoint(path string) bool {
	for _, probe := range []string{"/health", "/alive", "/ready", "/metrics"} {
		if path == probe {
			return true
		}
		if strings.HasPrefix(path, "/api") && strings.HasSuffix(path, probe) {
			return true
		}
	}
	return false
}

// logByStatus picks the log level from the response status: server errors
// log as errors, client errors as warnings, the rest at debug. A nil log
// falls back to the global logger.
func logByStatus(log *logger.Logger, fields map[string]interface{}, status int) {
	if log == nil {
		log = logger.GetGlobalLogger()
	}
	switch {
	case status >= http.StatusInternalServerError:
		log.Error("Request completed", fields)
	case status >= http.StatusBadRequest:
		log.Warn("Request completed", fields)
	default:
		log.Debug("Request completed", fields)
	}
}
