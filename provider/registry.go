package provider

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"sync"
)

// Provider is the base interface every pluggable backend implements,
// whether a transcription engine or a translation service.
type Provider interface {
	// Name returns the provider's unique name.
	Name() string
	// IsAvailable checks if the provider is ready to handle requests.
	IsAvailable(ctx context.Context) bool
}

// Factory builds a provider instance from a generic configuration map.
// Factories are registered by name and invoked at initialization time.
type Factory[T Provider] func(cfg map[string]any) (T, error)

// Registry holds named factories and the instances built from them.
// Factories describe how to build a backend; instances are cached after
// construction so repeated lookups return the same value.
type Registry[T Provider] struct {
	mu        sync.RWMutex
	factories map[string]Factory[T]
	instances map[string]T
}

// NewRegistry creates an empty Registry.
func NewRegistry[T Provider]() *Registry[T] {
	return &Registry[T]{
		factories: make(map[string]Factory[T]),
		instances: make(map[string]T),
	}
}

// RegisterFactory registers a named factory. Re-registering a name
// replaces the previous factory.
func (r *Registry[T]) RegisterFactory(name string, factory Factory[T]) {
	r.mu.Lock()
	r.factories[name] = factory
	r.mu.Unlock()
}

// Create builds a provider using the named factory. The instance is not
// cached; call Set to make it visible to Get.
func (r *Registry[T]) Create(name string, cfg map[string]any) (T, error) {
	r.mu.RLock()
	factory, ok := r.factories[name]
	r.mu.RUnlock()
	if !ok {
		var zero T
		return zero, fmt.Errorf("provider factory %q not registered", name)
	}
	return factory(cfg)
}

// Get returns a cached provider instance by name.
func (r *Registry[T]) Get(name string) (T, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	inst, ok := r.instances[name]
	return inst, ok
}

// Set caches a provider instance under the given name.
func (r *Registry[T]) Set(name string, instance T) {
	r.mu.Lock()
	r.instances[name] = instance
	r.mu.Unlock()
}

// List returns the names of all registered factories, sorted.
func (r *Registry[T]) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Sorted(maps.Keys(r.factories))
}
