package appstate

import (
	"context"
	"fmt"
	"sync"

	"Lumi_V0.1/internal/database"
	lru "github.com/hashicorp/golang-lru/v2"
)

// Registry hands out one hydrated Store per user, keeping the most
// recently used ones in memory.
type Registry struct {
	kv    database.KV
	opts  []Option
	mu    sync.Mutex
	cache *lru.Cache[string, *Store]
}

// NewRegistry creates a registry holding at most size stores.
func NewRegistry(kv database.KV, size int, opts ...Option) (*Registry, error) {
	cache, err := lru.New[string, *Store](size)
	if err != nil {
		return nil, fmt.Errorf("state cache: %w", err)
	}
	return &Registry{kv: kv, opts: opts, cache: cache}, nil
}

// Get returns the store of userID, hydrating it on first use.
func (r *Registry) Get(ctx context.Context, userID string) (*Store, error) {
	r.mu.Lock()
	store, ok := r.cache.Get(userID)
	if !ok {
		store = NewStore(userID, r.kv, r.opts...)
		r.cache.Add(userID, store)
	}
	r.mu.Unlock()

	if err := store.Hydrate(ctx); err != nil {
		return nil, fmt.Errorf("hydrate state for %s: %w", userID, err)
	}
	return store, nil
}

// Len returns the number of cached stores.
func (r *Registry) Len() int {
	return r.cache.Len()
}
