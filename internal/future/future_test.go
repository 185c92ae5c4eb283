package future

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"datasync/internal/apperr"
)

func TestFuture_Resolve(t *testing.T) {
	t.Run("continuations registered before resolve fire in order", func(t *testing.T) {
		f := New[int]()
		var got []string
		f.OnSuccess(func(v int) { got = append(got, "first") })
		f.OnSuccess(func(v int) { got = append(got, "second") })
		f.OnFailure(func(err error) { got = append(got, "failure") })

		f.Resolve(7)

		assert.Equal(t, []string{"first", "second"}, got)
		assert.Equal(t, StateResolved, f.State())
	})

	t.Run("continuation registered after resolve runs immediately", func(t *testing.T) {
		f := Resolved("a")
		calls := 0
		var seen string
		f.OnSuccess(func(v string) {
			calls++
			seen = v
		})
		f.OnFailure(func(err error) { t.Fatal("failure continuation must not run") })

		assert.Equal(t, 1, calls)
		assert.Equal(t, "a", seen)
	})

	t.Run("second resolve panics and keeps outcome", func(t *testing.T) {
		f := New[int]()
		f.Resolve(1)

		assert.Panics(t, func() { f.Resolve(2) })
		assert.Panics(t, func() { f.Fail(errors.New("late")) })

		v, err := f.Result()
		assert.NoError(t, err)
		assert.Equal(t, 1, v)
	})

	t.Run("panic value is a contract violation", func(t *testing.T) {
		f := Failed[int](errors.New("boom"))
		defer func() {
			r := recover()
			require.NotNil(t, r)
			err, ok := r.(error)
			require.True(t, ok)
			assert.True(t, apperr.IsKind(err, apperr.KindContractViolation))
		}()
		f.Resolve(1)
	})
}

func TestFuture_Fail(t *testing.T) {
	cause := errors.New("network down")

	t.Run("failure continuations receive the same error", func(t *testing.T) {
		f := New[int]()
		var got []error
		f.OnFailure(func(err error) { got = append(got, err) })
		f.OnSuccess(func(int) { t.Fatal("success continuation must not run") })

		f.Fail(cause)
		f.OnFailure(func(err error) { got = append(got, err) })

		require.Len(t, got, 2)
		assert.Same(t, cause, got[0])
		assert.Same(t, cause, got[1])
	})

	t.Run("nil error is rejected", func(t *testing.T) {
		f := New[int]()
		assert.Panics(t, func() { f.Fail(nil) })
		assert.Equal(t, StatePending, f.State())
	})
}

func TestFuture_Result(t *testing.T) {
	_, err := New[int]().Result()
	assert.ErrorIs(t, err, ErrPending)

	v, err := FromResult(3, nil).Result()
	assert.NoError(t, err)
	assert.Equal(t, 3, v)

	_, err = FromResult(0, errors.New("x")).Result()
	assert.EqualError(t, err, "x")
}

func TestMap(t *testing.T) {
	t.Run("transforms value", func(t *testing.T) {
		src := New[int]()
		out := Map(src, func(v int) string { return time.Duration(v).String() })
		assert.Equal(t, StatePending, out.State())

		src.Resolve(int(time.Second))

		v, err := out.Result()
		assert.NoError(t, err)
		assert.Equal(t, "1s", v)
	})

	t.Run("failure skips fn and propagates", func(t *testing.T) {
		cause := apperr.CollaboratorFailure("get", errors.New("down"))
		called := false
		out := Map(Failed[int](cause), func(v int) int {
			called = true
			return v
		})

		_, err := out.Result()
		assert.False(t, called)
		assert.Same(t, cause, err)
	})
}

func TestFlatMap(t *testing.T) {
	t.Run("settles with the inner future", func(t *testing.T) {
		inner := New[string]()
		out := FlatMap(Resolved(1), func(int) *Future[string] { return inner })
		assert.Equal(t, StatePending, out.State())

		inner.Resolve("done")
		v, err := out.Result()
		assert.NoError(t, err)
		assert.Equal(t, "done", v)
	})

	t.Run("inner failure propagates", func(t *testing.T) {
		cause := errors.New("inner")
		out := FlatMap(Resolved(1), func(int) *Future[int] { return Failed[int](cause) })
		_, err := out.Result()
		assert.Same(t, cause, err)
	})

	t.Run("outer failure short-circuits", func(t *testing.T) {
		cause := errors.New("outer")
		called := false
		out := FlatMap(Failed[int](cause), func(int) *Future[int] {
			called = true
			return Resolved(0)
		})
		_, err := out.Result()
		assert.False(t, called)
		assert.Same(t, cause, err)
	})

	t.Run("nil inner future is a contract violation", func(t *testing.T) {
		out := FlatMap(Resolved(1), func(int) *Future[int] { return nil })
		_, err := out.Result()
		assert.True(t, apperr.IsKind(err, apperr.KindContractViolation))
	})
}

func TestAndThen(t *testing.T) {
	t.Run("side effect runs before downstream continuations", func(t *testing.T) {
		src := New[int]()
		var order []string
		out := src.AndThen(func(int) { order = append(order, "side") })
		out.OnSuccess(func(int) { order = append(order, "downstream") })

		src.Resolve(5)

		assert.Equal(t, []string{"side", "downstream"}, order)
		v, err := out.Result()
		assert.NoError(t, err)
		assert.Equal(t, 5, v)
	})

	t.Run("failing side effect does not change the value", func(t *testing.T) {
		var sideErr error
		out := Resolved(9).AndThen(func(int) {
			Detach(Failed[int](errors.New("secondary")), func(err error) { sideErr = err })
		})

		v, err := out.Result()
		assert.NoError(t, err)
		assert.Equal(t, 9, v)
		assert.EqualError(t, sideErr, "secondary")
	})

	t.Run("failure propagates without running side effect", func(t *testing.T) {
		cause := errors.New("primary")
		called := false
		out := Failed[int](cause).AndThen(func(int) { called = true })
		_, err := out.Result()
		assert.False(t, called)
		assert.Same(t, cause, err)
	})
}

func TestDetach(t *testing.T) {
	var outcomes []error
	Detach(Resolved(1), func(err error) { outcomes = append(outcomes, err) })
	Detach(Failed[int](errors.New("x")), func(err error) { outcomes = append(outcomes, err) })
	Detach(Resolved(1), nil)

	require.Len(t, outcomes, 2)
	assert.NoError(t, outcomes[0])
	assert.EqualError(t, outcomes[1], "x")
}

func TestAsyncAndAwait(t *testing.T) {
	ctx := context.Background()

	t.Run("value", func(t *testing.T) {
		f := Async(ctx, func(context.Context) (int, error) { return 42, nil })
		v, err := Await(ctx, f)
		assert.NoError(t, err)
		assert.Equal(t, 42, v)
	})

	t.Run("error", func(t *testing.T) {
		f := Async(ctx, func(context.Context) (int, error) { return 0, errors.New("fail") })
		_, err := Await(ctx, f)
		assert.EqualError(t, err, "fail")
	})

	t.Run("context deadline on a pending future", func(t *testing.T) {
		cctx, cancel := context.WithTimeout(ctx, 10*time.Millisecond)
		defer cancel()
		_, err := Await(cctx, New[int]())
		assert.ErrorIs(t, err, context.DeadlineExceeded)
	})
}

func TestFuture_ConcurrentRegistration(t *testing.T) {
	f := New[int]()
	const n = 64

	var wg sync.WaitGroup
	var mu sync.Mutex
	seen := 0
	start := make(chan struct{})

	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			f.OnSuccess(func(v int) {
				mu.Lock()
				seen += v
				mu.Unlock()
			})
		}()
	}

	resolvers := 4
	panics := make(chan any, resolvers)
	for i := 0; i < resolvers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			defer func() {
				if r := recover(); r != nil {
					panics <- r
				}
			}()
			<-start
			f.Resolve(1)
		}()
	}

	close(start)
	wg.Wait()
	close(panics)

	assert.Equal(t, n, seen)
	assert.Len(t, panics, resolvers-1)
}
