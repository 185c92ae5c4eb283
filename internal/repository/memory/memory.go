// Package memory provides an in-process repository.Repository.
// It backs the "memory" storage driver and is the default adapter handed out by the registry.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"datasync/internal/future"
	"datasync/internal/repository"
)

// Repository is a thread-safe map of entities keyed by id.
// Entities without an id receive a generated one on Put.
type Repository[E any] struct {
	mu       sync.RWMutex
	data     map[string]E
	identity repository.Identity[E]
}

// New creates an empty in-memory repository.
func New[E any](identity repository.Identity[E]) *Repository[E] {
	return &Repository[E]{
		data:     make(map[string]E),
		identity: identity,
	}
}

var _ repository.Repository[struct{}] = (*Repository[struct{}])(nil)

// Get returns the entity under q.Key, or every entity ordered by id for an all-query.
// A miss resolves with an empty, non-nil slice.
func (r *Repository[E]) Get(_ context.Context, q repository.Query) *future.Future[[]E] {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]E, 0)
	if !q.IsAll() {
		if e, ok := r.data[q.Key]; ok {
			out = append(out, e)
		}
		return future.Resolved(out)
	}

	keys := make([]string, 0, len(r.data))
	for k := range r.data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		out = append(out, r.data[k])
	}
	return future.Resolved(out)
}

// Put upserts every entity and returns them as stored.
func (r *Repository[E]) Put(_ context.Context, entities []E) *future.Future[[]E] {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]E, 0, len(entities))
	for _, e := range entities {
		id := r.identity.ID(e)
		if id == "" {
			id = uuid.NewString()
			e = r.identity.WithID(e, id)
		}
		r.data[id] = e
		out = append(out, e)
	}
	return future.Resolved(out)
}

// Delete removes the entity under q.Key, or everything for an all-query.
func (r *Repository[E]) Delete(_ context.Context, q repository.Query) *future.Future[bool] {
	r.mu.Lock()
	defer r.mu.Unlock()

	if q.IsAll() {
		removed := len(r.data) > 0
		r.data = make(map[string]E)
		return future.Resolved(removed)
	}
	if _, ok := r.data[q.Key]; !ok {
		return future.Resolved(false)
	}
	delete(r.data, q.Key)
	return future.Resolved(true)
}

// Len returns the number of stored entities.
func (r *Repository[E]) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.data)
}
