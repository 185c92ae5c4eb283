package future

import (
	"context"
	"errors"
	"sync"

	"datasync/internal/apperr"
)

// ErrPending is returned by Result while the Future has not been settled.
var ErrPending = errors.New("future is pending")

// State is the settlement state of a Future.
type State int

const (
	StatePending State = iota
	StateResolved
	StateFailed
)

func (s State) String() string {
	switch s {
	case StatePending:
		return "pending"
	case StateResolved:
		return "resolved"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Future is a single-assignment container for a value of type V or an error.
// It is safe for concurrent use.
type Future[V any] struct {
	mu        sync.Mutex
	state     State
	value     V
	err       error
	onSuccess []func(V)
	onFailure []func(error)
}

// New returns a pending Future awaiting Resolve or Fail.
func New[V any]() *Future[V] {
	return &Future[V]{}
}

// Resolved returns a Future already resolved with v.
func Resolved[V any](v V) *Future[V] {
	return &Future[V]{state: StateResolved, value: v}
}

// Failed returns a Future already failed with err.
func Failed[V any](err error) *Future[V] {
	if err == nil {
		panic(apperr.ContractViolation("future.Failed", "nil error"))
	}
	return &Future[V]{state: StateFailed, err: err}
}

// FromResult converts a conventional (value, error) pair into a settled Future.
func FromResult[V any](v V, err error) *Future[V] {
	if err != nil {
		return Failed[V](err)
	}
	return Resolved(v)
}

// Async runs fn on a new goroutine and settles the returned Future with its result.
func Async[V any](ctx context.Context, fn func(context.Context) (V, error)) *Future[V] {
	f := New[V]()
	go func() {
		v, err := fn(ctx)
		if err != nil {
			f.Fail(err)
			return
		}
		f.Resolve(v)
	}()
	return f
}

// Resolve settles the Future with v and runs the success continuations.
// Calling it on a settled Future panics with a contract violation.
func (f *Future[V]) Resolve(v V) {
	f.mu.Lock()
	if f.state != StatePending {
		st := f.state
		f.mu.Unlock()
		panic(apperr.ContractViolation("future.Resolve", "future already %s", st))
	}
	f.state = StateResolved
	f.value = v
	callbacks := f.onSuccess
	f.onSuccess, f.onFailure = nil, nil
	f.mu.Unlock()

	for _, cb := range callbacks {
		cb(v)
	}
}

// Fail settles the Future with err and runs the failure continuations.
// Calling it on a settled Future, or with a nil error, panics with a contract violation.
func (f *Future[V]) Fail(err error) {
	if err == nil {
		panic(apperr.ContractViolation("future.Fail", "nil error"))
	}
	f.mu.Lock()
	if f.state != StatePending {
		st := f.state
		f.mu.Unlock()
		panic(apperr.ContractViolation("future.Fail", "future already %s", st))
	}
	f.state = StateFailed
	f.err = err
	callbacks := f.onFailure
	f.onSuccess, f.onFailure = nil, nil
	f.mu.Unlock()

	for _, cb := range callbacks {
		cb(err)
	}
}

// OnSuccess registers fn to run with the value once the Future resolves.
// If the Future is already resolved, fn runs before OnSuccess returns.
func (f *Future[V]) OnSuccess(fn func(V)) *Future[V] {
	f.mu.Lock()
	switch f.state {
	case StatePending:
		f.onSuccess = append(f.onSuccess, fn)
		f.mu.Unlock()
	case StateResolved:
		v := f.value
		f.mu.Unlock()
		fn(v)
	default:
		f.mu.Unlock()
	}
	return f
}

// OnFailure registers fn to run with the error once the Future fails.
// If the Future has already failed, fn runs before OnFailure returns.
func (f *Future[V]) OnFailure(fn func(error)) *Future[V] {
	f.mu.Lock()
	switch f.state {
	case StatePending:
		f.onFailure = append(f.onFailure, fn)
		f.mu.Unlock()
	case StateFailed:
		err := f.err
		f.mu.Unlock()
		fn(err)
	default:
		f.mu.Unlock()
	}
	return f
}

// AndThen returns a Future with the same eventual value or error as f.
// When f resolves, fn runs first as a side effect; it cannot alter the value.
func (f *Future[V]) AndThen(fn func(V)) *Future[V] {
	out := New[V]()
	f.OnSuccess(func(v V) {
		fn(v)
		out.Resolve(v)
	}).OnFailure(out.Fail)
	return out
}

// State reports the current settlement state.
func (f *Future[V]) State() State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// Result returns the settled value or error without blocking.
// It returns ErrPending while the Future is pending.
func (f *Future[V]) Result() (V, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.state == StatePending {
		var zero V
		return zero, ErrPending
	}
	return f.value, f.err
}
