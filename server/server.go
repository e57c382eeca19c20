package server

import (
	"context"
	"crypto/subtle"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/skillsenselab/speechkit/logger"
	"github.com/skillsenselab/speechkit/server/endpoint"
	"github.com/skillsenselab/speechkit/server/middleware"
)

// Server wraps a Gin engine in an http.Server that also speaks HTTP/2
// cleartext, so reverse proxies can multiplex long audio uploads over
// h2c. Extra http.Handlers can share the port via Handle.
type Server struct {
	httpServer *http.Server
	engine     *gin.Engine
	mux        *http.ServeMux
	config     Config
	log        *logger.Logger
}

// New builds the server without any middleware or routes. Call
// ApplyDefaults afterwards for the standard stack.
func New(cfg Config, log *logger.Logger) *Server {
	if zerolog.GlobalLevel() <= zerolog.DebugLevel {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()

	// Gin handles everything not claimed by an explicit Handle mount.
	mux := http.NewServeMux()
	mux.Handle("/", engine)

	handler := h2c.NewHandler(mux, &http2.Server{
		MaxConcurrentStreams: 250,
		IdleTimeout:          120 * time.Second,
	})

	return &Server{
		httpServer: &http.Server{
			Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
			Handler:      handler,
			ReadTimeout:  time.Duration(cfg.ReadTimeout) * time.Second,
			WriteTimeout: time.Duration(cfg.WriteTimeout) * time.Second,
			IdleTimeout:  time.Duration(cfg.IdleTimeout) * time.Second,
		},
		engine: engine,
		mux:    mux,
		config: cfg,
		log:    log.WithComponent("server"),
	}
}

// GinEngine exposes the engine for route registration.
func (s *Server) GinEngine() *gin.Engine {
	return s.engine
}

// Handle mounts a plain http.Handler next to Gin on the shared port.
// Subtree mounts need a trailing slash in the pattern.
func (s *Server) Handle(pattern string, handler http.Handler) {
	s.mux.Handle(pattern, handler)
	s.log.Debug("Handler mounted", map[string]interface{}{
		"pattern": pattern,
	})
}

// Start binds the listener and serves in the background. It returns
// once the port is bound, so callers know the address is live.
func (s *Server) Start(ctx context.Context) error {
	s.log.Info("Starting HTTP server", map[string]interface{}{
		"addr": s.httpServer.Addr,
	})

	listener, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return fmt.Errorf("server failed to bind %s: %w", s.httpServer.Addr, err)
	}

	go func() {
		if err := s.httpServer.Serve(listener); err != nil && err != http.ErrServerClosed {
			s.log.Error("Server error", map[string]interface{}{
				"error": err.Error(),
			})
		}
	}()

	s.log.Info("HTTP server started", map[string]interface{}{
		"addr": s.httpServer.Addr,
	})
	return nil
}

// Stop drains in-flight requests, giving up after five seconds. A
// transcription in progress past that point is abandoned.
func (s *Server) Stop(ctx context.Context) error {
	s.log.Info("Shutting down HTTP server")

	shutdownCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		s.log.Error("Server shutdown error", map[string]interface{}{
			"error": err.Error(),
		})
		return fmt.Errorf("server shutdown error: %w", err)
	}

	s.log.Info("HTTP server shut down successfully")
	return nil
}

// Addr returns the configured listen address.
func (s *Server) Addr() string {
	return s.httpServer.Addr
}

// ApplyMiddleware installs recovery, request IDs, CORS, the body-size
// cap for uploads, optional rate limiting and request logging.
func (s *Server) ApplyMiddleware() {
	s.engine.Use(middleware.GinRecovery(s.log))
	s.engine.Use(middleware.GinRequestID())
	s.engine.Use(middleware.GinCORS(&s.config.CORS))
	if s.config.MaxBodySize != "" {
		s.engine.Use(middleware.GinBodySizeLimit(s.config.MaxBodySize))
	}
	if s.config.RateLimitPerMinute > 0 {
		s.engine.Use(middleware.RateLimit(middleware.RateLimitConfig{
			RequestsPerMinute: s.config.RateLimitPerMinute,
		}))
	}
	if len(s.config.APIKeys) > 0 {
		s.engine.Use(middleware.Auth(middleware.AuthConfig{
			TokenValidator: staticKeyValidator(s.config.APIKeys),
			SkipPaths:      []string{"/health", "/alive", "/ready", "/metrics", "/info", "/version"},
		}))
	}
	s.engine.Use(middleware.GinRequestLogger())
}

// staticKeyValidator accepts any of the configured API keys as a
// Bearer token. Comparison is constant-time per key.
func staticKeyValidator(keys []string) func(string) (map[string]interface{}, error) {
	return func(token string) (map[string]interface{}, error) {
		for _, k := range keys {
			if subtle.ConstantTimeCompare([]byte(token), []byte(k)) == 1 {
				return map[string]interface{}{"auth": "api_key"}, nil
			}
		}
		return nil, fmt.Errorf("unknown API key")
	}
}

// RegisterDefaultEndpoints mounts the health, liveness, readiness,
// info, version and metrics probes.
func (s *Server) RegisterDefaultEndpoints(serviceName string, checker endpoint.HealthChecker) {
	s.engine.GET("/health", endpoint.Health(serviceName, checker))
	s.engine.GET("/alive", endpoint.Liveness(serviceName))
	s.engine.GET("/ready", endpoint.Readiness(serviceName, checker))
	s.engine.GET("/info", endpoint.Info(serviceName))
	s.engine.GET("/version", endpoint.Version())
	s.engine.GET("/metrics", endpoint.Metrics())
}

// ApplyDefaults is ApplyMiddleware plus RegisterDefaultEndpoints.
func (s *Server) ApplyDefaults(serviceName string, checker endpoint.HealthChecker) {
	s.ApplyMiddleware()
	s.RegisterDefaultEndpoints(serviceName, checker)
}
