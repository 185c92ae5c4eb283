// Package provider implements DataProvider, the façade that keeps a local store
// and an authoritative network store consistent under a selectable Policy.
package provider

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"datasync/internal/apperr"
	"datasync/internal/future"
	"datasync/internal/mapper"
	"datasync/internal/repository"
	"datasync/internal/validation"
)

// DataProvider orchestrates get/put/delete across a network and a storage
// repository of entities E, exposing objects O to its callers.
//
// It holds no per-call state; every call returns a fresh chain of futures.
// Failures of the primary store reach the caller unchanged. Write-behind calls
// to the secondary store are detached: their failures are only reported to the
// WriteBehindObserver, if one is installed.
type DataProvider[O, E any] struct {
	network  repository.Repository[E]
	storage  repository.Repository[E]
	toEntity mapper.Mapper[O, E]
	toObject mapper.Mapper[E, O]
	validate validation.ObjectValidation[E]
	opts     options
}

// New builds a DataProvider. A nil validate accepts every entity.
func New[O, E any](
	network, storage repository.Repository[E],
	toEntity mapper.Mapper[O, E],
	toObject mapper.Mapper[E, O],
	validate validation.ObjectValidation[E],
	opts ...Option,
) *DataProvider[O, E] {
	if validate == nil {
		validate = validation.Always[E]{}
	}
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return &DataProvider[O, E]{
		network:  network,
		storage:  storage,
		toEntity: toEntity,
		toObject: toObject,
		validate: validate,
		opts:     o,
	}
}

// Get fetches the objects addressed by q.
func (p *DataProvider[O, E]) Get(ctx context.Context, q repository.Query, policy Policy) *future.Future[[]O] {
	ctx, span := p.start(ctx, OpGet, policy, q)

	var entities *future.Future[[]E]
	switch policy {
	case Network:
		entities = p.network.Get(ctx, q)
	case Storage:
		entities = p.storage.Get(ctx, q)
	case NetworkSync:
		entities = p.network.Get(ctx, q).AndThen(func(fresh []E) {
			future.Detach(p.storage.Put(context.WithoutCancel(ctx), fresh), p.writeBehind(OpPut, TargetStorage))
		})
	case StorageSync:
		entities = future.FlatMap(p.storage.Get(ctx, q), func(cached []E) *future.Future[[]E] {
			if validation.IsArrayValid(p.validate, cached) {
				return future.Resolved(cached)
			}
			return p.network.Get(ctx, q).AndThen(func(fresh []E) {
				future.Detach(p.storage.Put(context.WithoutCancel(ctx), fresh), p.writeBehind(OpPut, TargetStorage))
			})
		})
	default:
		entities = future.Failed[[]E](invalidPolicy(OpGet, policy))
	}

	return traced(span, future.Map(entities, p.objects))
}

// Put stores values and resolves with the stored objects as returned by the primary store.
func (p *DataProvider[O, E]) Put(ctx context.Context, values []O, policy Policy) *future.Future[[]O] {
	ctx, span := p.start(ctx, OpPut, policy, repository.Query{})
	span.SetAttributes(attribute.Int("datasync.count", len(values)))

	entities := mapper.MapAll(p.toEntity, values)

	var stored *future.Future[[]E]
	switch policy {
	case Network:
		stored = p.network.Put(ctx, entities)
	case Storage:
		stored = p.storage.Put(ctx, entities)
	case NetworkSync:
		// Storage receives what the network returned so server-assigned fields survive.
		stored = p.network.Put(ctx, entities).AndThen(func(saved []E) {
			future.Detach(p.storage.Put(context.WithoutCancel(ctx), saved), p.writeBehind(OpPut, TargetStorage))
		})
	case StorageSync:
		stored = p.storage.Put(ctx, entities).AndThen(func(saved []E) {
			future.Detach(p.network.Put(context.WithoutCancel(ctx), saved), p.writeBehind(OpPut, TargetNetwork))
		})
	default:
		stored = future.Failed[[]E](invalidPolicy(OpPut, policy))
	}

	return traced(span, future.Map(stored, p.objects))
}

// PutOne stores a single value. A primary store that answers with an empty
// collection breaks its contract; the returned future then fails with a
// CONTRACT_VIOLATION error.
func (p *DataProvider[O, E]) PutOne(ctx context.Context, value O, policy Policy) *future.Future[O] {
	return future.FlatMap(p.Put(ctx, []O{value}, policy), func(objs []O) *future.Future[O] {
		if len(objs) == 0 {
			return future.Failed[O](apperr.ContractViolation("provider.PutOne", "store returned no entity for a single put"))
		}
		return future.Resolved(objs[0])
	})
}

// Delete removes the entities addressed by q and resolves with the primary store's answer.
// Under the sync policies the secondary store is only touched when the primary removed something.
func (p *DataProvider[O, E]) Delete(ctx context.Context, q repository.Query, policy Policy) *future.Future[bool] {
	ctx, span := p.start(ctx, OpDelete, policy, q)

	var deleted *future.Future[bool]
	switch policy {
	case Network:
		deleted = p.network.Delete(ctx, q)
	case Storage:
		deleted = p.storage.Delete(ctx, q)
	case NetworkSync:
		deleted = p.network.Delete(ctx, q).AndThen(func(ok bool) {
			if ok {
				future.Detach(p.storage.Delete(context.WithoutCancel(ctx), q), p.writeBehind(OpDelete, TargetStorage))
			}
		})
	case StorageSync:
		deleted = p.storage.Delete(ctx, q).AndThen(func(ok bool) {
			if ok {
				future.Detach(p.network.Delete(context.WithoutCancel(ctx), q), p.writeBehind(OpDelete, TargetNetwork))
			}
		})
	default:
		deleted = future.Failed[bool](invalidPolicy(OpDelete, policy))
	}

	return traced(span, deleted)
}

func (p *DataProvider[O, E]) objects(entities []E) []O {
	return mapper.MapAll(p.toObject, entities)
}

func (p *DataProvider[O, E]) start(ctx context.Context, op Operation, policy Policy, q repository.Query) (context.Context, trace.Span) {
	return p.opts.tracer.Start(ctx, "provider."+string(op), trace.WithAttributes(
		attribute.String("datasync.policy", policy.String()),
		attribute.String("datasync.query", q.Key),
	))
}

// writeBehind returns the completion hook for a detached secondary call.
func (p *DataProvider[O, E]) writeBehind(op Operation, target Target) func(error) {
	obs := p.opts.observer
	return func(err error) {
		if obs != nil {
			obs(op, target, err)
		}
	}
}

func traced[V any](span trace.Span, f *future.Future[V]) *future.Future[V] {
	future.Detach(f, func(err error) {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	})
	return f
}

func invalidPolicy(op Operation, policy Policy) error {
	return apperr.InvalidInput("provider."+string(op), "unsupported policy %d", int(policy))
}
