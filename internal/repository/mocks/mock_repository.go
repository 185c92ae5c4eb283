package mocks

import (
	"context"

	"datasync/internal/future"
	"datasync/internal/repository"

	"github.com/stretchr/testify/mock"
)

// MockRepository is a testify mock of repository.Repository.
// Return values may be futures, or plain values/errors that are wrapped in settled futures.
type MockRepository[E any] struct {
	mock.Mock
}

var _ repository.Repository[struct{}] = (*MockRepository[struct{}])(nil)

func (m *MockRepository[E]) Get(ctx context.Context, q repository.Query) *future.Future[[]E] {
	args := m.Called(ctx, q)
	if f, ok := args.Get(0).(*future.Future[[]E]); ok {
		return f
	}
	if args.Get(0) == nil {
		return future.FromResult[[]E](nil, args.Error(1))
	}
	return future.FromResult(args.Get(0).([]E), args.Error(1))
}

func (m *MockRepository[E]) Put(ctx context.Context, entities []E) *future.Future[[]E] {
	args := m.Called(ctx, entities)
	if f, ok := args.Get(0).(*future.Future[[]E]); ok {
		return f
	}
	if fn, ok := args.Get(0).(func([]E) []E); ok {
		return future.FromResult(fn(entities), args.Error(1))
	}
	if args.Get(0) == nil {
		return future.FromResult[[]E](nil, args.Error(1))
	}
	return future.FromResult(args.Get(0).([]E), args.Error(1))
}

func (m *MockRepository[E]) Delete(ctx context.Context, q repository.Query) *future.Future[bool] {
	args := m.Called(ctx, q)
	if f, ok := args.Get(0).(*future.Future[bool]); ok {
		return f
	}
	return future.FromResult(args.Bool(0), args.Error(1))
}
