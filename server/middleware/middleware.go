package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/skillsenselab/speechkit/util"
)

// Middleware wraps an http.Handler with additional behavior. It is the
// single middleware type for the entire server and applies to every
// handler mounted on the ServeMux, Gin routes included.
type Middleware func(http.Handler) http.Handler

// Chain composes multiple middleware. The first in the list is the outermost
// (runs first on a request, last on a response).
func Chain(middlewares ...Middleware) Middleware {
	return func(final http.Handler) http.Handler {
		for i := len(middlewares) - 1; i >= 0; i-- {
			final = middlewares[i](final)
		}
		return final
	}
}

// GinWrap adapts a Middleware for use in a Gin middleware chain.
//
// Middleware that wraps http.ResponseWriter (RequestLogger for instance)
// may not fully integrate with gin.Context.Writer; prefer applying such
// middleware at the server handler level.
func GinWrap(mw Middleware) gin.HandlerFunc {
	return func(c *gin.Context) {
		next := http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
			// Propagate request modifications (added headers etc.) back to Gin.
			c.Request = r
			c.Next()
		})
		mw(next).ServeHTTP(c.Writer, c.Request)
	}
}

const defaultMaxBodySize = 10 * 1024 * 1024 // 10MB

// BodySizeLimit caps the request body at the given size ("25MB", "512KB").
// An audio upload past the cap fails with a 413 from MaxBytesReader.
func BodySizeLimit(maxSize string) Middleware {
	limit := util.ParseSize(maxSize, defaultMaxBodySize)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			r.Body = http.MaxBytesReader(w, r.Body, limit)
			next.ServeHTTP(w, r)
		})
	}
}

// GinBodySizeLimit applies the body cap on the Gin engine directly.
func GinBodySizeLimit(maxSize string) gin.HandlerFunc {
	return GinWrap(BodySizeLimit(maxSize))
}
