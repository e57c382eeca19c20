package server

import (
	"fmt"

	"github.com/skillsenselab/speechkit/server/middleware"
)

// Config holds the HTTP listener settings. Timeouts are in seconds
// because they come straight from YAML.
type Config struct {
	Host         string                `yaml:"host" mapstructure:"host"`
	Port         int                   `yaml:"port" mapstructure:"port"`
	ReadTimeout  int                   `yaml:"read_timeout" mapstructure:"read_timeout"`
	WriteTimeout int                   `yaml:"write_timeout" mapstructure:"write_timeout"`
	IdleTimeout  int                   `yaml:"idle_timeout" mapstructure:"idle_timeout"`
	// MaxBodySize caps upload size, e.g. "25MB".
	MaxBodySize string                `yaml:"max_body_size" mapstructure:"max_body_size"`
	CORS        middleware.CORSConfig `yaml:"cors" mapstructure:"cors"`
	// RateLimitPerMinute caps requests per client IP. Zero disables limiting.
	RateLimitPerMinute int `yaml:"rate_limit_per_minute" mapstructure:"rate_limit_per_minute"`
	// APIKeys, when non-empty, requires a matching Bearer token on API
	// routes. Probe endpoints stay open.
	APIKeys []string `yaml:"api_keys" mapstructure:"api_keys"`
	Enabled bool     `yaml:"enabled" mapstructure:"enabled"`
}

// ApplyDefaults fills unset fields with values suited to an upload
// service sitting behind a proxy.
func (c *Config) ApplyDefaults() {
	if c.Port == 0 {
		c.Port = 8080
	}
	if c.ReadTimeout == 0 {
		c.ReadTimeout = 15
	}
	if c.WriteTimeout == 0 {
		c.WriteTimeout = 15
	}
	if c.IdleTimeout == 0 {
		c.IdleTimeout = 60
	}
	if c.MaxBodySize == "" {
		c.MaxBodySize = "10MB"
	}
	if len(c.CORS.AllowedOrigins) == 0 {
		c.CORS.AllowedOrigins = []string{"*"}
	}
	if len(c.CORS.AllowedMethods) == 0 {
		c.CORS.AllowedMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	}
	if len(c.CORS.AllowedHeaders) == 0 {
		c.CORS.AllowedHeaders = []string{"Origin", "Content-Type", "Accept", "Authorization"}
	}
}

// Validate rejects impossible ports and negative timeouts.
func (c *Config) Validate() error {
	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("server.port must be between 0 and 65535 (got: %d)", c.Port)
	}
	for name, v := range map[string]int{
		"server.read_timeout":  c.ReadTimeout,
		"server.write_timeout": c.WriteTimeout,
		"server.idle_timeout":  c.IdleTimeout,
	} {
		if v < 0 {
			return fmt.Errorf("%s must be non-negative (got: %d)", name, v)
		}
	}
	return nil
}
