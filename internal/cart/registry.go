package cart

import (
	"strings"
	"sync"
)

// Registry hands out one cart store per shopper so concurrent shoppers never
// observe each other's carts. Keys must be stable for the lifetime of the
// sign-in (access-token rotation must not change them).
type Registry struct {
	mu     sync.Mutex
	stores map[string]*Store
}

// NewRegistry builds an empty registry.
func NewRegistry() *Registry {
	return &Registry{stores: make(map[string]*Store)}
}

// GetOrCreate returns the store bound to the key, creating it on first use.
// An empty key yields nil.
func (r *Registry) GetOrCreate(key string) *Store {
	key = strings.TrimSpace(key)
	if key == "" {
		return nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	store, ok := r.stores[key]
	if !ok {
		store = NewStore()
		r.stores[key] = store
	}
	return store
}

// Drop discards the cart for the key, if any.
func (r *Registry) Drop(key string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.stores, key)
}

// Len reports the number of live carts.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.stores)
}
