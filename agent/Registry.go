package agent

import (
	"fmt"
	"sort"
	"sync"
)

// Closer is a System that must be closed once its owner is done with
// it, e.g. to release an attached environment or file handle.
type Closer interface {
	System
	Close() error
}

// Registry holds the named training systems owned by a process. It
// replaces ambient global state: the process entry point creates a
// Registry, passes it to whatever needs to look systems up, and
// closes it on shutdown.
//
// A Registry is safe for concurrent use.
type Registry struct {
	mu      sync.Mutex
	systems map[string]System
}

// NewRegistry returns a new, empty Registry
func NewRegistry() *Registry {
	return &Registry{systems: make(map[string]System)}
}

// Register adds a named system to the registry. Registering a nil
// system or reusing a name is an error.
func (r *Registry) Register(name string, system System) error {
	if system == nil {
		return fmt.Errorf("register: no system to register under name %v",
			name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.systems[name]; ok {
		return fmt.Errorf("register: a system named %v is already "+
			"registered", name)
	}
	r.systems[name] = system
	return nil
}

// Lookup returns the system registered under name, and whether any
// system is registered under that name.
func (r *Registry) Lookup(name string) (System, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	system, ok := r.systems[name]
	return system, ok
}

// Names returns the names of all registered systems in lexicographic
// order.
func (r *Registry) Names() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	names := make([]string, 0, len(r.systems))
	for name := range r.systems {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Remove removes the system registered under name, returning whether
// a system was registered under that name. The removed system is not
// closed.
func (r *Registry) Remove(name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, ok := r.systems[name]
	delete(r.systems, name)
	return ok
}

// Close removes all registered systems, closing any that implement
// Closer. The first close error is returned, but all systems are
// closed regardless.
func (r *Registry) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	var firstErr error
	for name, system := range r.systems {
		if closer, ok := system.(Closer); ok {
			if err := closer.Close(); err != nil && firstErr == nil {
				firstErr = fmt.Errorf("close: could not close system %v: %v",
					name, err)
			}
		}
	}
	r.systems = make(map[string]System)
	return firstErr
}
