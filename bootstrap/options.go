package bootstrap

import (
	"time"

	"github.com/skillsenselab/speechkit/logger"
)

// Option tweaks App construction. Options stay non-generic so one set works
// for every config type.
type Option func(*settings)

// settings collects option values before they are folded into the App.
// Zero values mean "keep the App default".
type settings struct {
	log             *logger.Logger
	shutdownTimeout time.Duration
}

func applyOptions(opts []Option) settings {
	var s settings
	for _, opt := range opts {
		opt(&s)
	}
	return s
}

// WithLogger supplies a pre-built logger instead of the one auto-initialized
// from the config's Logging section.
func WithLogger(l *logger.Logger) Option {
	return func(s *settings) { s.log = l }
}

// WithGracefulTimeout bounds how long shutdown waits for components to stop.
func WithGracefulTimeout(d time.Duration) Option {
	return func(s *settings) { s.shutdownTimeout = d }
}
