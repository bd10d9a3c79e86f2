package cache

import (
	"fmt"
	"sync"

	"kvcache/internal/models"
)

// Registry is an explicit collection of named cache frontends. It replaces
// any ambient process-wide lookup: whoever owns the registry constructs it
// and passes it to the components that need named caches. Only lazy frontends
// are registered here; eager caches are scope-local by lifecycle and belong
// to the scope that constructed them.
type Registry struct {
	mutex  sync.RWMutex
	caches map[string]*Lazy
}

// NewRegistry creates an empty cache registry
func NewRegistry() *Registry {
	return &Registry{
		caches: make(map[string]*Lazy),
	}
}

// Register adds a cache under the given name
func (r *Registry) Register(name string, c *Lazy) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if _, exists := r.caches[name]; exists {
		return fmt.Errorf("%w: %q", models.ErrDuplicateCache, name)
	}

	r.caches[name] = c
	return nil
}

// Get returns the cache registered under the given name
func (r *Registry) Get(name string) (*Lazy, error) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	c, exists := r.caches[name]
	if !exists {
		return nil, fmt.Errorf("%w: %q", models.ErrUnknownCache, name)
	}

	return c, nil
}

// Names returns the registered cache names
func (r *Registry) Names() []string {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	names := make([]string, 0, len(r.caches))
	for name := range r.caches {
		names = append(names, name)
	}
	return names
}
