package repository

import (
	"context"

	"datasync/internal/apperr"
	"datasync/internal/future"
)

// VoidGetter is a Getter that supports nothing.
type VoidGetter[E any] struct{}

func (VoidGetter[E]) Get(context.Context, Query) *future.Future[[]E] {
	return future.Failed[[]E](apperr.NotImplemented("get"))
}

// VoidPutter is a Putter that supports nothing.
type VoidPutter[E any] struct{}

func (VoidPutter[E]) Put(context.Context, []E) *future.Future[[]E] {
	return future.Failed[[]E](apperr.NotImplemented("put"))
}

// VoidDeleter is a Deleter that supports nothing.
type VoidDeleter struct{}

func (VoidDeleter) Delete(context.Context, Query) *future.Future[bool] {
	return future.Failed[bool](apperr.NotImplemented("delete"))
}

type composite[E any] struct {
	Getter[E]
	Putter[E]
	Deleter
}

// Compose assembles a Repository from separate capabilities.
// A nil capability is replaced by its void implementation, so a get-only
// store is Compose(g, nil, nil).
func Compose[E any](g Getter[E], p Putter[E], d Deleter) Repository[E] {
	if g == nil {
		g = VoidGetter[E]{}
	}
	if p == nil {
		p = VoidPutter[E]{}
	}
	if d == nil {
		d = VoidDeleter{}
	}
	return composite[E]{Getter: g, Putter: p, Deleter: d}
}

// Void returns a Repository that supports no operation.
func Void[E any]() Repository[E] {
	return Compose[E](nil, nil, nil)
}
