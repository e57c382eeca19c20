package provider

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"sync"

	"github.com/skillsenselab/speechkit/logger"
)

// Manager is the front door for working with pluggable backends. It pairs
// a Registry (which knows how to build them) with a Selector (which picks
// one at request time).
type Manager[T Provider] struct {
	mu          sync.RWMutex
	registry    *Registry[T]
	selector    Selector[T]
	instances   map[string]T
	defaultName string
	log         *logger.Logger
}

// NewManager creates a Manager backed by the given registry and selector.
func NewManager[T Provider](registry *Registry[T], selector Selector[T]) *Manager[T] {
	return &Manager[T]{
		registry:  registry,
		selector:  selector,
		instances: make(map[string]T),
		log:       logger.Get("provider"),
	}
}

// Register adds a factory to the underlying registry.
func (m *Manager[T]) Register(name string, factory Factory[T]) {
	m.registry.RegisterFactory(name, factory)
	m.log.Info("factory registered", map[string]interface{}{"provider": name})
}

// Initialize builds a provider from its factory and makes it selectable.
func (m *Manager[T]) Initialize(name string, cfg map[string]any) error {
	instance, err := m.registry.Create(name, cfg)
	if err != nil {
		return fmt.Errorf("initialize provider %q: %w", name, err)
	}

	m.mu.Lock()
	m.instances[name] = instance
	m.mu.Unlock()
	m.registry.Set(name, instance)

	m.log.Info("provider initialized", map[string]interface{}{"provider": name})
	return nil
}

// Get returns the default provider when one is set, otherwise defers to
// the selection strategy.
func (m *Manager[T]) Get(ctx context.Context) (T, error) {
	m.mu.RLock()
	defaultName := m.defaultName
	candidates := maps.Clone(m.instances)
	m.mu.RUnlock()

	if defaultName == "" {
		return m.selector.Select(ctx, candidates)
	}
	p, ok := candidates[defaultName]
	if !ok {
		var zero T
		return zero, fmt.Errorf("default provider %q not found", defaultName)
	}
	return p, nil
}

// GetByName returns a specific provider by name.
func (m *Manager[T]) GetByName(name string) (T, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	p, ok := m.instances[name]
	if !ok {
		var zero T
		return zero, fmt.Errorf("provider %q not found", name)
	}
	return p, nil
}

// SetDefault pins Get to one provider. The provider must already be
// initialized.
func (m *Manager[T]) SetDefault(name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.instances[name]; !ok {
		return fmt.Errorf("provider %q not initialized", name)
	}
	m.defaultName = name
	m.log.Info("default provider set", map[string]interface{}{"provider": name})
	return nil
}

// Available lists every initialized provider, sorted by name.
func (m *Manager[T]) Available() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return slices.Sorted(maps.Keys(m.instances))
}
