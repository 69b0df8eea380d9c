package pixel

import (
	"fmt"
	"sort"
	"sync"
)

// Registry maps representation kinds to their singleton factories.
type Registry struct {
	mu        sync.RWMutex
	factories map[Kind]Factory
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{factories: make(map[Kind]Factory)}
}

// Register adds or replaces the factory for f.Kind().
func (r *Registry) Register(f Factory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[f.Kind()] = f
}

// Lookup returns the factory registered for kind.
func (r *Registry) Lookup(kind Kind) (Factory, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	f, ok := r.factories[kind]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedType, kind)
	}
	return f, nil
}

// Kinds lists the registered kinds in sorted order.
func (r *Registry) Kinds() []Kind {
	r.mu.RLock()
	defer r.mu.RUnlock()

	kinds := make([]Kind, 0, len(r.factories))
	for k := range r.factories {
		kinds = append(kinds, k)
	}
	sort.Slice(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })
	return kinds
}

var defaultRegistry = NewRegistry()

// Register adds f to the process-wide registry. Backends call it from init.
func Register(f Factory) {
	defaultRegistry.Register(f)
}

// Lookup finds a factory in the process-wide registry.
func Lookup(kind Kind) (Factory, error) {
	return defaultRegistry.Lookup(kind)
}

// Kinds lists the kinds in the process-wide registry.
func Kinds() []Kind {
	return defaultRegistry.Kinds()
}
