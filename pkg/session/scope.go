package session

import "sync"

// Scope is the flat key/value context associated with a session's lifetime.
// Values are arbitrary (an audio handle, a locale tag); lookups for unset
// keys return (nil, false). No parent scope is assumed.
type Scope struct {
	mu     sync.RWMutex
	values map[string]any
}

// NewScope creates an empty scope store.
func NewScope() *Scope {
	return &Scope{values: make(map[string]any)}
}

// Get returns the value for key, or (nil, false) if unset.
func (s *Scope) Get(key string) (any, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.values[key]
	return v, ok
}

// Set stores a value under key, overwriting any previous value.
func (s *Scope) Set(key string, value any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = value
}

// Delete removes key from the scope.
func (s *Scope) Delete(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.values, key)
}
