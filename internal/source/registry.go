package source

import "sync"

// Registry is a thread-safe set of entropy sources. Add is safe at
// any time, including while the scheduler is mid-poll on a prior
// Snapshot; Snapshot is a shallow clone so the scheduler never holds
// the registry lock while polling (which may be slow).
type Registry struct {
	mu      sync.RWMutex
	sources []Source
}

// NewRegistry constructs an empty registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Add inserts a source into the registry.
func (r *Registry) Add(s Source) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sources = append(r.sources, s)
}

// Snapshot returns a shallow copy of the current source set.
func (r *Registry) Snapshot() []Source {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Source, len(r.sources))
	copy(out, r.sources)
	return out
}

// Remove drops the first source with the given name from the
// registry, if present. It does not call Release; callers that demote
// a source are responsible for releasing it themselves.
func (r *Registry) Remove(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, s := range r.sources {
		if s.Name() == name {
			r.sources = append(r.sources[:i], r.sources[i+1:]...)
			return
		}
	}
}

// Len reports the current number of registered sources.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sources)
}

// ReleaseAll calls Release on every registered source exactly once.
// Errors are collected but do not stop the sweep.
func (r *Registry) ReleaseAll() []error {
	r.mu.Lock()
	sources := r.sources
	r.sources = nil
	r.mu.Unlock()

	var errs []error
	for _, s := range sources {
		if err := s.Release(); err != nil {
			errs = append(errs, err)
		}
	}
	return errs
}
