package breaker

import "sync"

// Registry owns the breakers for a process, one per protected resource
// name. It is created at startup and passed explicitly to every component
// that needs a breaker; there is no package-level singleton.
type Registry struct {
	mu       sync.Mutex
	breakers map[string]*Breaker
}

// NewRegistry creates an empty breaker registry.
func NewRegistry() *Registry {
	return &Registry{
		breakers: make(map[string]*Breaker),
	}
}

// GetOrCreate returns the breaker registered under name, creating it on
// first access. Creation is first-access-wins: config and fallback are
// applied only when the breaker does not exist yet, and concurrent first
// accesses observe a single instance.
func (r *Registry) GetOrCreate(name string, config Config, fallback Fallback) *Breaker {
	r.mu.Lock()
	defer r.mu.Unlock()

	if b, ok := r.breakers[name]; ok {
		return b
	}
	b := New(name, config, fallback)
	r.breakers[name] = b
	return b
}

// Get returns the breaker registered under name, or nil.
func (r *Registry) Get(name string) *Breaker {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.breakers[name]
}

// ListAll returns a status snapshot of every registered breaker, keyed by
// name. The result is JSON-serializable for operational dashboards.
func (r *Registry) ListAll() map[string]Status {
	r.mu.Lock()
	breakers := make([]*Breaker, 0, len(r.breakers))
	for _, b := range r.breakers {
		breakers = append(breakers, b)
	}
	r.mu.Unlock()

	// Snapshot outside the registry lock; each breaker takes its own.
	statuses := make(map[string]Status, len(breakers))
	for _, b := range breakers {
		statuses[b.Name()] = b.Status()
	}
	return statuses
}

// Reset resets the named breaker to closed. It reports whether a breaker
// with that name exists.
func (r *Registry) Reset(name string) bool {
	b := r.Get(name)
	if b == nil {
		return false
	}
	b.Reset()
	return true
}

// ResetAll resets every registered breaker to closed.
func (r *Registry) ResetAll() {
	r.mu.Lock()
	breakers := make([]*Breaker, 0, len(r.breakers))
	for _, b := range r.breakers {
		breakers = append(breakers, b)
	}
	r.mu.Unlock()

	for _, b := range breakers {
		b.Reset()
	}
}
