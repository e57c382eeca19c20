package transcription

import "github.com/skillsenselab/speechkit/provider"

// NewRegistry creates a provider registry for transcription backends.
func NewRegistry() *provider.Registry[Backend] {
	return provider.NewRegistry[Backend]()
}

// ManagerOption configures the transcription backend manager.
type ManagerOption func(*managerConfig)

type managerConfig struct {
	selector provider.Selector[Backend]
}

// WithSelector sets the backend selection strategy for the manager.
func WithSelector(s provider.Selector[Backend]) ManagerOption {
	return func(c *managerConfig) {
		c.selector = s
	}
}

// NewManager creates a provider manager for transcription backends.
func NewManager(opts ...ManagerOption) *provider.Manager[Backend] {
	cfg := &managerConfig{
		selector: &provider.HealthCheckSelector[Backend]{},
	}
	for _, o := range opts {
		o(cfg)
	}
	return provider.NewManager(NewRegistry(), cfg.selector)
}
