package storage

import (
	"context"
	"fmt"
	"sync"

	"github.com/filez-project/filez/pkg/models"
)

// Registry holds one live Provider per configured StorageLocation. The
// reconciler (C7) populates and updates it as StorageLocation resources are
// applied; request handlers only ever read from it.
type Registry struct {
	mu        sync.RWMutex
	providers map[models.StorageLocID]Provider
}

func NewRegistry() *Registry {
	return &Registry{providers: make(map[models.StorageLocID]Provider)}
}

// Set installs or replaces the provider for a storage location.
func (r *Registry) Set(id models.StorageLocID, p Provider) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.providers[id] = p
}

// Remove drops the provider for a storage location, e.g. when the
// StorageLocation resource is deleted.
func (r *Registry) Remove(id models.StorageLocID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.providers, id)
}

// Get returns the provider for a storage location, or an error if none is
// registered (the location was deleted, or never finished reconciling).
func (r *Registry) Get(id models.StorageLocID) (Provider, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.providers[id]
	if !ok {
		return nil, fmt.Errorf("no storage provider registered for location %s", id)
	}
	return p, nil
}

// Health runs Health against every registered provider and returns the
// subset that failed, keyed by location ID.
func (r *Registry) Health(ctx context.Context) map[models.StorageLocID]error {
	r.mu.RLock()
	snapshot := make(map[models.StorageLocID]Provider, len(r.providers))
	for id, p := range r.providers {
		snapshot[id] = p
	}
	r.mu.RUnlock()

	failures := make(map[models.StorageLocID]error)
	for id, p := range snapshot {
		if err := p.Health(ctx); err != nil {
			failures[id] = err
		}
	}
	return failures
}
