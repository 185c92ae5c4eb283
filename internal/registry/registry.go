// Package registry keeps the long-lived collaborators of a process (database
// handles, repositories, providers) keyed by name. Instances are built lazily on
// first lookup and torn down together by Close.
package registry

import (
	"errors"
	"fmt"
	"io"
	"sync"
)

// Registry is an explicit, owned replacement for package-level singletons.
// The zero value is not usable; call New.
type Registry struct {
	mu        sync.Mutex
	instances map[string]any
	order     []string
	closed    bool
}

// New returns an empty registry.
func New() *Registry {
	return &Registry{instances: make(map[string]any)}
}

// Get returns the instance registered under key, calling build to construct it
// on first use. A failed build registers nothing, so a later call retries.
// build runs under the registry lock and must not call back into r.
func Get[T any](r *Registry, key string, build func() (T, error)) (T, error) {
	var zero T
	if key == "" {
		return zero, fmt.Errorf("registry key cannot be empty")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return zero, fmt.Errorf("registry closed")
	}

	if v, ok := r.instances[key]; ok {
		t, ok := v.(T)
		if !ok {
			return zero, fmt.Errorf("registry key %q holds %T, not %T", key, v, zero)
		}
		return t, nil
	}

	t, err := build()
	if err != nil {
		return zero, fmt.Errorf("build %q: %w", key, err)
	}
	r.instances[key] = t
	r.order = append(r.order, key)
	return t, nil
}

// MustGet is Get for composition roots where a failed build is fatal.
func MustGet[T any](r *Registry, key string, build func() (T, error)) T {
	t, err := Get(r, key, build)
	if err != nil {
		panic(err)
	}
	return t
}

// Keys lists registered keys in construction order.
func (r *Registry) Keys() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.order...)
}

// Close closes every registered instance implementing io.Closer, newest first,
// and empties the registry. Errors are collected rather than stopping the teardown.
func (r *Registry) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	var errs []error
	for i := len(r.order) - 1; i >= 0; i-- {
		key := r.order[i]
		if c, ok := r.instances[key].(io.Closer); ok {
			if err := c.Close(); err != nil {
				errs = append(errs, fmt.Errorf("close %q: %w", key, err))
			}
		}
	}

	r.instances = make(map[string]any)
	r.order = nil
	r.closed = true
	return errors.Join(errs...)
}
