package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// AuthConfig configures bearer-token authentication. The validator is
// injected; this package does not mint or parse tokens itself.
type AuthConfig struct {
	// TokenValidator checks a bearer token and returns its claims.
	TokenValidator func(token string) (map[string]interface{}, error)
	// SkipPaths lists URL path prefixes exempt from authentication.
	SkipPaths []string
}

func (cfg AuthConfig) exempt(path string) bool {
	for _, prefix := range cfg.SkipPaths {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}

// Auth returns a Gin middleware enforcing Bearer authentication via the
// configured validator. Claims from a valid token land in the Gin context.
func Auth(cfg AuthConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		if cfg.exempt(c.Request.URL.Path) {
			c.Next()
			return
		}

		token, errMsg := bearerToken(c.GetHeader("Authorization"))
		if errMsg == "" {
			claims, err := cfg.TokenValidator(token)
			if err == nil {
				for key, value := range claims {
					c.Set(key, value)
				}
				c.Next()
				return
			}
			errMsg = "Invalid token"
		}
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": errMsg})
	}
}

// bearerToken extracts the token from an Authorization header value. The
// second return is a client-facing message, empty on success.
func bearerToken(header string) (string, string) {
	if header == "" {
		return "", "Authorization header required"
	}
	scheme, token, found := strings.Cut(header, " ")
	if !found || scheme != "Bearer" {
		return "", "Invalid authorization header format"
	}
	return token, ""
}
