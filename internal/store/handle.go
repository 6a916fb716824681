package store

import "sync"

// Handle shares one Store between callers behind a single mutex.
//
// Each With call is one lock acquisition. A read-modify-write done inside one
// With is atomic; the same steps split across two With calls are not.
type Handle struct {
	mu    sync.Mutex
	store *Store
}

// NewHandle wraps s.
func NewHandle(s *Store) *Handle {
	return &Handle{store: s}
}

// With runs fn while holding the lock and returns its error.
func (h *Handle) With(fn func(s *Store) error) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	return fn(h.store)
}

// Close closes the underlying store under the lock.
func (h *Handle) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.store.Close()
}
