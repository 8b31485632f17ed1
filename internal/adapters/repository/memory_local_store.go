package repository

import (
	"context"
	"sync"

	"github.com/comitanigiacomo/kanso-tracker/internal/core/domain"
)

var _ domain.LocalStore = (*InMemoryLocalStore)(nil)

type InMemoryLocalStore struct {
	store map[string][]byte

	mu sync.RWMutex
}

func NewInMemoryLocalStore() *InMemoryLocalStore {
	return &InMemoryLocalStore{
		store: make(map[string][]byte),
	}
}

func (r *InMemoryLocalStore) Get(ctx context.Context, key string) ([]byte, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	value, ok := r.store[key]
	if !ok {
		return nil, domain.ErrKeyNotFound
	}
	return append([]byte(nil), value...), nil
}

func (r *InMemoryLocalStore) Set(ctx context.Context, key string, value []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.store[key] = append([]byte(nil), value...)
	return nil
}

func (r *InMemoryLocalStore) Delete(ctx context.Context, key string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.store, key)
	return nil
}
