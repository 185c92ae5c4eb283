package future

import (
	"context"

	"datasync/internal/apperr"
)

// Map returns a Future resolved with fn(v) when f resolves with v.
// A failure of f propagates unchanged and fn is never called.
func Map[V, W any](f *Future[V], fn func(V) W) *Future[W] {
	out := New[W]()
	f.OnSuccess(func(v V) {
		out.Resolve(fn(v))
	}).OnFailure(out.Fail)
	return out
}

// FlatMap returns a Future settled by the Future fn produces from f's value.
// A failure of f short-circuits: fn is never called.
func FlatMap[V, W any](f *Future[V], fn func(V) *Future[W]) *Future[W] {
	out := New[W]()
	f.OnSuccess(func(v V) {
		inner := fn(v)
		if inner == nil {
			out.Fail(apperr.ContractViolation("future.FlatMap", "continuation returned nil future"))
			return
		}
		inner.OnSuccess(out.Resolve).OnFailure(out.Fail)
	}).OnFailure(out.Fail)
	return out
}

// Detach consumes f without joining it to any other chain.
// done, when non-nil, observes the outcome: nil on success, the error on failure.
func Detach[V any](f *Future[V], done func(error)) {
	if done == nil {
		return
	}
	f.OnSuccess(func(V) { done(nil) }).OnFailure(done)
}

type outcome[V any] struct {
	value V
	err   error
}

// Await blocks until f settles or ctx is done.
func Await[V any](ctx context.Context, f *Future[V]) (V, error) {
	ch := make(chan outcome[V], 1)
	f.OnSuccess(func(v V) {
		ch <- outcome[V]{value: v}
	}).OnFailure(func(err error) {
		ch <- outcome[V]{err: err}
	})

	select {
	case o := <-ch:
		return o.value, o.err
	case <-ctx.Done():
		var zero V
		return zero, ctx.Err()
	}
}
