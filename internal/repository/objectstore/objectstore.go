// Package objectstore implements repository.Repository over an S3-compatible
// object store. It plays the authoritative "network" role: every entity is a
// JSON object under <prefix>/<id>.json, and ids for new entities are assigned here.
package objectstore

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"

	"datasync/internal/apperr"
	"datasync/internal/future"
	"datasync/internal/repository"
	"datasync/internal/storage"
)

const contentType = "application/json"

// Repository stores entities E as objects. Calls run on their own goroutine
// and settle the returned future when the object store answers.
type Repository[E any] struct {
	store    storage.Storage
	prefix   string
	identity repository.Identity[E]
	stamp    func(E, time.Time) E
	now      func() time.Time
}

// Option configures a Repository.
type Option[E any] func(*Repository[E])

// WithSyncStamp sets a hook applied to every entity read from or written to the
// store, typically recording when the entity was last synced.
func WithSyncStamp[E any](fn func(E, time.Time) E) Option[E] {
	return func(r *Repository[E]) {
		r.stamp = fn
	}
}

// New creates an object-store repository rooted at prefix.
func New[E any](store storage.Storage, prefix string, identity repository.Identity[E], opts ...Option[E]) *Repository[E] {
	r := &Repository[E]{
		store:    store,
		prefix:   strings.Trim(prefix, "/"),
		identity: identity,
		now:      func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

var _ repository.Repository[struct{}] = (*Repository[struct{}])(nil)

func invalidKey(op, key string) error {
	return apperr.InvalidInput(op, "key %q cannot name an object", key)
}

// key maps an id to its object name. Callers check repository.ValidKey first
// so the name always stays under the prefix.
func (r *Repository[E]) key(id string) string {
	return path.Join(r.prefix, id+".json")
}

func (r *Repository[E]) dir() string {
	if r.prefix == "" {
		return ""
	}
	return r.prefix + "/"
}

func (r *Repository[E]) stamped(e E) E {
	if r.stamp == nil {
		return e
	}
	return r.stamp(e, r.now())
}

// Get downloads the addressed objects. A missing key resolves with an empty collection.
func (r *Repository[E]) Get(ctx context.Context, q repository.Query) *future.Future[[]E] {
	if !q.IsAll() && !repository.ValidKey(q.Key) {
		return future.Failed[[]E](invalidKey("objectstore.get", q.Key))
	}
	return future.Async(ctx, func(ctx context.Context) ([]E, error) {
		items, err := r.get(ctx, q)
		if err != nil {
			return nil, apperr.CollaboratorFailure("objectstore.get", err)
		}
		return items, nil
	})
}

func (r *Repository[E]) get(ctx context.Context, q repository.Query) ([]E, error) {
	items := make([]E, 0)
	if !q.IsAll() {
		e, err := r.read(ctx, r.key(q.Key))
		if errors.Is(err, storage.ErrObjectNotFound) {
			return items, nil
		}
		if err != nil {
			return nil, err
		}
		return append(items, e), nil
	}

	objects, err := r.store.List(ctx, r.dir())
	if err != nil {
		return nil, fmt.Errorf("list objects: %w", err)
	}
	for _, obj := range objects {
		e, err := r.read(ctx, obj.Key)
		if errors.Is(err, storage.ErrObjectNotFound) {
			// Removed between List and Get.
			continue
		}
		if err != nil {
			return nil, err
		}
		items = append(items, e)
	}
	return items, nil
}

func (r *Repository[E]) read(ctx context.Context, key string) (E, error) {
	var e E
	rc, _, err := r.store.Get(ctx, key)
	if err != nil {
		return e, err
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return e, fmt.Errorf("read object %s: %w", key, err)
	}
	if err := json.Unmarshal(data, &e); err != nil {
		return e, fmt.Errorf("decode object %s: %w", key, err)
	}
	return r.stamped(e), nil
}

// Put uploads every entity, assigning a UUID to entities without an id,
// and resolves with the entities as stored. Nothing is uploaded when any id
// is unusable as an object name.
func (r *Repository[E]) Put(ctx context.Context, entities []E) *future.Future[[]E] {
	for _, e := range entities {
		if id := r.identity.ID(e); id != "" && !repository.ValidKey(id) {
			return future.Failed[[]E](invalidKey("objectstore.put", id))
		}
	}
	return future.Async(ctx, func(ctx context.Context) ([]E, error) {
		stored := make([]E, 0, len(entities))
		for _, e := range entities {
			id := r.identity.ID(e)
			if id == "" {
				id = uuid.NewString()
				e = r.identity.WithID(e, id)
			}
			e = r.stamped(e)

			data, err := json.Marshal(e)
			if err != nil {
				return nil, apperr.CollaboratorFailure("objectstore.put", fmt.Errorf("encode entity %s: %w", id, err))
			}
			_, err = r.store.Put(ctx, r.key(id), bytes.NewReader(data), storage.PutObjectOptions{
				Size:        int64(len(data)),
				ContentType: contentType,
			})
			if err != nil {
				return nil, apperr.CollaboratorFailure("objectstore.put", err)
			}
			stored = append(stored, e)
		}
		return stored, nil
	})
}

// Delete removes the addressed objects and resolves with whether any existed.
func (r *Repository[E]) Delete(ctx context.Context, q repository.Query) *future.Future[bool] {
	if !q.IsAll() && !repository.ValidKey(q.Key) {
		return future.Failed[bool](invalidKey("objectstore.delete", q.Key))
	}
	return future.Async(ctx, func(ctx context.Context) (bool, error) {
		removed, err := r.delete(ctx, q)
		if err != nil {
			return false, apperr.CollaboratorFailure("objectstore.delete", err)
		}
		return removed, nil
	})
}

func (r *Repository[E]) delete(ctx context.Context, q repository.Query) (bool, error) {
	var keys []string
	if q.IsAll() {
		objects, err := r.store.List(ctx, r.dir())
		if err != nil {
			return false, fmt.Errorf("list objects: %w", err)
		}
		for _, obj := range objects {
			keys = append(keys, obj.Key)
		}
	} else {
		key := r.key(q.Key)
		ok, err := r.store.Exists(ctx, key)
		if err != nil {
			return false, err
		}
		if ok {
			keys = append(keys, key)
		}
	}

	for _, key := range keys {
		if err := r.store.Delete(ctx, key); err != nil {
			return false, fmt.Errorf("delete object %s: %w", key, err)
		}
	}
	return len(keys) > 0, nil
}
