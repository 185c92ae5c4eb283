// Package sqlstore implements repository.Repository on database/sql.
// Entities are stored as JSON payloads in the shared "entities" table, partitioned
// by collection, so the same code serves the pgx and go-sqlite3 drivers.
package sqlstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"datasync/internal/apperr"
	"datasync/internal/future"
	"datasync/internal/repository"
)

// Repository is a SQL-backed repository of entities E.
// It uses parameterized queries only and contains no business logic.
type Repository[E any] struct {
	db         *sql.DB
	collection string
	identity   repository.Identity[E]
	now        func() time.Time
}

// New creates a repository storing entities under collection.
func New[E any](db *sql.DB, collection string, identity repository.Identity[E]) *Repository[E] {
	return &Repository[E]{
		db:         db,
		collection: collection,
		identity:   identity,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

var _ repository.Repository[struct{}] = (*Repository[struct{}])(nil)

// Get loads the entities addressed by q. A miss resolves with an empty, non-nil slice.
func (r *Repository[E]) Get(ctx context.Context, q repository.Query) *future.Future[[]E] {
	items, err := r.get(ctx, q)
	return future.FromResult(items, apperr.CollaboratorFailure("sqlstore.get", err))
}

func (r *Repository[E]) get(ctx context.Context, q repository.Query) ([]E, error) {
	var (
		rows *sql.Rows
		err  error
	)
	if q.IsAll() {
		const qAll = `
		SELECT payload
		FROM entities
		WHERE collection = $1
		ORDER BY id
	`
		rows, err = r.db.QueryContext(ctx, qAll, r.collection)
	} else {
		const qKey = `
		SELECT payload
		FROM entities
		WHERE collection = $1 AND id = $2
	`
		rows, err = r.db.QueryContext(ctx, qKey, r.collection, q.Key)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]E, 0)
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, err
		}
		var e E
		if err := json.Unmarshal([]byte(payload), &e); err != nil {
			return nil, fmt.Errorf("decode payload: %w", err)
		}
		items = append(items, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

// Put upserts entities in a single transaction and resolves with them as stored.
// Entities without an id are assigned a UUID.
func (r *Repository[E]) Put(ctx context.Context, entities []E) *future.Future[[]E] {
	stored, err := r.put(ctx, entities)
	return future.FromResult(stored, apperr.CollaboratorFailure("sqlstore.put", err))
}

func (r *Repository[E]) put(ctx context.Context, entities []E) ([]E, error) {
	const q = `
		INSERT INTO entities (collection, id, payload, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (collection, id) DO UPDATE
		SET payload = excluded.payload, updated_at = excluded.updated_at
	`
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	now := r.now()
	stored := make([]E, 0, len(entities))
	for _, e := range entities {
		id := r.identity.ID(e)
		if id == "" {
			id = uuid.NewString()
			e = r.identity.WithID(e, id)
		}
		payload, err := json.Marshal(e)
		if err != nil {
			return nil, fmt.Errorf("encode payload: %w", err)
		}
		if _, err := tx.ExecContext(ctx, q, r.collection, id, string(payload), now); err != nil {
			return nil, err
		}
		stored = append(stored, e)
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return stored, nil
}

// Delete removes the addressed rows and resolves with whether any row was removed.
func (r *Repository[E]) Delete(ctx context.Context, q repository.Query) *future.Future[bool] {
	removed, err := r.delete(ctx, q)
	return future.FromResult(removed, apperr.CollaboratorFailure("sqlstore.delete", err))
}

func (r *Repository[E]) delete(ctx context.Context, q repository.Query) (bool, error) {
	var (
		res sql.Result
		err error
	)
	if q.IsAll() {
		res, err = r.db.ExecContext(ctx, `DELETE FROM entities WHERE collection = $1`, r.collection)
	} else {
		res, err = r.db.ExecContext(ctx, `DELETE FROM entities WHERE collection = $1 AND id = $2`, r.collection, q.Key)
	}
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
