// Package repository defines the contract between the sync orchestrator and its
// backing stores. Concrete adapters live in subpackages (sqlstore, objectstore, memory).
package repository

import (
	"context"
	"strings"
	"unicode"

	"datasync/internal/future"
)

// Query addresses entities in a repository. An empty Key selects every entity.
type Query struct {
	Key string
}

// AllQuery selects every entity in a repository.
func AllQuery() Query {
	return Query{}
}

// KeyQuery selects the entity stored under key.
func KeyQuery(key string) Query {
	return Query{Key: key}
}

// IsAll reports whether q selects every entity.
func (q Query) IsAll() bool {
	return q.Key == ""
}

// ValidKey reports whether key can address a single entity in any adapter.
// Keys become object names in the network store, so path separators, ".."
// and control characters are refused.
func ValidKey(key string) bool {
	if key == "" || strings.ContainsAny(key, `/\`) || strings.Contains(key, "..") {
		return false
	}
	return strings.IndexFunc(key, unicode.IsControl) < 0
}

// Getter fetches entities matching a query.
type Getter[E any] interface {
	Get(ctx context.Context, q Query) *future.Future[[]E]
}

// Putter stores entities and resolves with the stored representation,
// which may carry fields assigned by the store (for example ids).
type Putter[E any] interface {
	Put(ctx context.Context, entities []E) *future.Future[[]E]
}

// Deleter removes entities matching a query and resolves with whether anything was removed.
type Deleter interface {
	Delete(ctx context.Context, q Query) *future.Future[bool]
}

// Repository is the full capability set the orchestrator needs from a store.
// Implementations settle every returned future exactly once and never panic.
type Repository[E any] interface {
	Getter[E]
	Putter[E]
	Deleter
}

// Identity tells adapters how to read and assign an entity's id.
type Identity[E any] struct {
	ID     func(E) string
	WithID func(E, string) E
}
