package provider

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"sync/atomic"
)

// Selector picks one provider from the initialized set. Strategies range
// from a fixed priority list to availability probing.
type Selector[T Provider] interface {
	Select(ctx context.Context, providers map[string]T) (T, error)
}

// sortedNames returns the provider names in deterministic order.
func sortedNames[T Provider](providers map[string]T) []string {
	return slices.Sorted(maps.Keys(providers))
}

// PrioritySelector tries providers in a fixed order and returns the first
// one that is available. Use when a preferred engine has fallbacks.
type PrioritySelector[T Provider] struct {
	// Priority is the ordered list of provider names to try.
	Priority []string
}

func (s *PrioritySelector[T]) Select(ctx context.Context, providers map[string]T) (T, error) {
	for _, name := range s.Priority {
		if p, ok := providers[name]; ok && p.IsAvailable(ctx) {
			return p, nil
		}
	}
	var zero T
	return zero, fmt.Errorf("no available provider found in priority list")
}

// RoundRobinSelector spreads requests across available providers.
type RoundRobinSelector[T Provider] struct {
	counter atomic.Uint64
}

func (s *RoundRobinSelector[T]) Select(ctx context.Context, providers map[string]T) (T, error) {
	names := sortedNames(providers)
	if len(names) == 0 {
		var zero T
		return zero, fmt.Errorf("no providers available")
	}

	n := len(names)
	start := int(s.counter.Add(1) - 1)
	for i := range n {
		p := providers[names[(start+i)%n]]
		if p.IsAvailable(ctx) {
			return p, nil
		}
	}
	var zero T
	return zero, fmt.Errorf("no available provider found")
}

// HealthCheckSelector returns the first provider, in name order, that
// reports itself available.
type HealthCheckSelector[T Provider] struct{}

func (s *HealthCheckSelector[T]) Select(ctx context.Context, providers map[string]T) (T, error) {
	for _, name := range sortedNames(providers) {
		if p := providers[name]; p.IsAvailable(ctx) {
			return p, nil
		}
	}
	var zero T
	return zero, fmt.Errorf("no available provider found")
}
