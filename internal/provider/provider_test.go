package provider

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"datasync/internal/apperr"
	"datasync/internal/future"
	"datasync/internal/mapper"
	"datasync/internal/repository"
	repoMocks "datasync/internal/repository/mocks"
	"datasync/internal/validation"
)

type object struct {
	ID   int
	Name string
}

type entity struct {
	ID   int
	Name string
}

var (
	toEntity = mapper.Func[object, entity](func(o object) entity { return entity{ID: o.ID, Name: o.Name} })
	toObject = mapper.Func[entity, object](func(e entity) object { return object{ID: e.ID, Name: e.Name} })
	savedID  = validation.Func[entity](func(e entity) bool { return e.ID > 0 })
)

type writeBehindLog struct {
	mu     sync.Mutex
	events []string
	errs   []error
}

func (l *writeBehindLog) observe(op Operation, target Target, err error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events = append(l.events, string(op)+":"+string(target))
	l.errs = append(l.errs, err)
}

func newProvider(net, store *repoMocks.MockRepository[entity], opts ...Option) *DataProvider[object, entity] {
	return New[object, entity](net, store, toEntity, toObject, savedID, opts...)
}

func TestDataProvider_Get(t *testing.T) {
	ctx := context.Background()
	q := repository.KeyQuery("1")
	cause := apperr.CollaboratorFailure("get", errors.New("unreachable"))
	one := []entity{{ID: 1, Name: "a"}}

	tests := []struct {
		name       string
		policy     Policy
		setupMocks func(net, store *repoMocks.MockRepository[entity])
		want       []object
		wantErr    error
		wantWrites []string
	}{
		{
			name:   "network only",
			policy: Network,
			setupMocks: func(net, store *repoMocks.MockRepository[entity]) {
				net.On("Get", mock.Anything, q).Return(one, nil)
			},
			want: []object{{ID: 1, Name: "a"}},
		},
		{
			name:   "storage only",
			policy: Storage,
			setupMocks: func(net, store *repoMocks.MockRepository[entity]) {
				store.On("Get", mock.Anything, q).Return(one, nil)
			},
			want: []object{{ID: 1, Name: "a"}},
		},
		{
			name:   "network sync writes result behind into storage",
			policy: NetworkSync,
			setupMocks: func(net, store *repoMocks.MockRepository[entity]) {
				net.On("Get", mock.Anything, q).Return(one, nil)
				store.On("Put", mock.Anything, one).Return(one, nil)
			},
			want:       []object{{ID: 1, Name: "a"}},
			wantWrites: []string{"put:storage"},
		},
		{
			name:   "network sync failure skips storage",
			policy: NetworkSync,
			setupMocks: func(net, store *repoMocks.MockRepository[entity]) {
				net.On("Get", mock.Anything, q).Return(nil, cause)
			},
			wantErr: cause,
		},
		{
			name:   "storage sync with valid cache never calls network",
			policy: StorageSync,
			setupMocks: func(net, store *repoMocks.MockRepository[entity]) {
				store.On("Get", mock.Anything, q).Return(one, nil)
			},
			want: []object{{ID: 1, Name: "a"}},
		},
		{
			name:   "storage sync with empty cache falls back to network",
			policy: StorageSync,
			setupMocks: func(net, store *repoMocks.MockRepository[entity]) {
				store.On("Get", mock.Anything, q).Return([]entity{}, nil)
				net.On("Get", mock.Anything, q).Return(one, nil)
				store.On("Put", mock.Anything, one).Return(one, nil)
			},
			want:       []object{{ID: 1, Name: "a"}},
			wantWrites: []string{"put:storage"},
		},
		{
			name:   "storage sync with an invalid element falls back to network",
			policy: StorageSync,
			setupMocks: func(net, store *repoMocks.MockRepository[entity]) {
				store.On("Get", mock.Anything, q).Return([]entity{{ID: 0, Name: "draft"}}, nil)
				net.On("Get", mock.Anything, q).Return(one, nil)
				store.On("Put", mock.Anything, one).Return(one, nil)
			},
			want:       []object{{ID: 1, Name: "a"}},
			wantWrites: []string{"put:storage"},
		},
		{
			name:   "storage sync propagates storage failure without fallback",
			policy: StorageSync,
			setupMocks: func(net, store *repoMocks.MockRepository[entity]) {
				store.On("Get", mock.Anything, q).Return(nil, cause)
			},
			wantErr: cause,
		},
		{
			name:   "storage sync fallback failure is surfaced",
			policy: StorageSync,
			setupMocks: func(net, store *repoMocks.MockRepository[entity]) {
				store.On("Get", mock.Anything, q).Return([]entity{}, nil)
				net.On("Get", mock.Anything, q).Return(nil, cause)
			},
			wantErr: cause,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			net := new(repoMocks.MockRepository[entity])
			store := new(repoMocks.MockRepository[entity])
			log := &writeBehindLog{}
			tt.setupMocks(net, store)

			got, err := newProvider(net, store, WithObserver(log.observe)).Get(ctx, q, tt.policy).Result()

			if tt.wantErr != nil {
				assert.Same(t, tt.wantErr, err)
				assert.Nil(t, got)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.want, got)
			}
			assert.Equal(t, tt.wantWrites, log.events)
			net.AssertExpectations(t)
			store.AssertExpectations(t)
			if tt.wantWrites == nil {
				store.AssertNotCalled(t, "Put", mock.Anything, mock.Anything)
			}
		})
	}
}

// Scenario A: a valid cache is served without touching the network.
func TestDataProvider_StorageSyncValidCache(t *testing.T) {
	net := new(repoMocks.MockRepository[entity])
	store := new(repoMocks.MockRepository[entity])
	store.On("Get", mock.Anything, repository.AllQuery()).Return([]entity{{ID: 1, Name: "a"}}, nil)

	got, err := newProvider(net, store).Get(context.Background(), repository.AllQuery(), StorageSync).Result()

	require.NoError(t, err)
	assert.Equal(t, []object{{ID: 1, Name: "a"}}, got)
	net.AssertNotCalled(t, "Get", mock.Anything, mock.Anything)
}

// Scenario B: an empty cache is refreshed from the network and written back after the caller sees the result.
func TestDataProvider_StorageSyncEmptyCache(t *testing.T) {
	net := new(repoMocks.MockRepository[entity])
	store := new(repoMocks.MockRepository[entity])
	fresh := []entity{{ID: 1, Name: "a"}}

	pendingNet := future.New[[]entity]()
	pendingPut := future.New[[]entity]()
	store.On("Get", mock.Anything, repository.AllQuery()).Return([]entity{}, nil)
	net.On("Get", mock.Anything, repository.AllQuery()).Return(pendingNet)
	store.On("Put", mock.Anything, fresh).Return(pendingPut)

	result := newProvider(net, store).Get(context.Background(), repository.AllQuery(), StorageSync)
	assert.Equal(t, future.StatePending, result.State())

	pendingNet.Resolve(fresh)

	got, err := result.Result()
	require.NoError(t, err)
	assert.Equal(t, []object{{ID: 1, Name: "a"}}, got)
	store.AssertCalled(t, "Put", mock.Anything, fresh)

	// The write-behind is still in flight; the caller already has its answer.
	assert.Equal(t, future.StatePending, pendingPut.State())
	pendingPut.Resolve(fresh)
}

func TestDataProvider_Put(t *testing.T) {
	ctx := context.Background()
	cause := apperr.CollaboratorFailure("put", errors.New("rejected"))
	draft := []object{{ID: 0, Name: "x"}}
	draftEntities := []entity{{ID: 0, Name: "x"}}
	saved := []entity{{ID: 7, Name: "x"}}

	tests := []struct {
		name       string
		policy     Policy
		setupMocks func(net, store *repoMocks.MockRepository[entity])
		want       []object
		wantErr    error
		wantWrites []string
	}{
		{
			name:   "network only",
			policy: Network,
			setupMocks: func(net, store *repoMocks.MockRepository[entity]) {
				net.On("Put", mock.Anything, draftEntities).Return(saved, nil)
			},
			want: []object{{ID: 7, Name: "x"}},
		},
		{
			name:   "storage only",
			policy: Storage,
			setupMocks: func(net, store *repoMocks.MockRepository[entity]) {
				store.On("Put", mock.Anything, draftEntities).Return(draftEntities, nil)
			},
			want: []object{{ID: 0, Name: "x"}},
		},
		{
			name:   "network sync stores the server's entities",
			policy: NetworkSync,
			setupMocks: func(net, store *repoMocks.MockRepository[entity]) {
				net.On("Put", mock.Anything, draftEntities).Return(saved, nil)
				store.On("Put", mock.Anything, saved).Return(saved, nil)
			},
			want:       []object{{ID: 7, Name: "x"}},
			wantWrites: []string{"put:storage"},
		},
		{
			name:   "storage sync forwards storage's entities to the network",
			policy: StorageSync,
			setupMocks: func(net, store *repoMocks.MockRepository[entity]) {
				store.On("Put", mock.Anything, draftEntities).Return(saved, nil)
				net.On("Put", mock.Anything, saved).Return(saved, nil)
			},
			want:       []object{{ID: 7, Name: "x"}},
			wantWrites: []string{"put:network"},
		},
		{
			name:   "network sync primary failure skips storage",
			policy: NetworkSync,
			setupMocks: func(net, store *repoMocks.MockRepository[entity]) {
				net.On("Put", mock.Anything, draftEntities).Return(nil, cause)
			},
			wantErr: cause,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			net := new(repoMocks.MockRepository[entity])
			store := new(repoMocks.MockRepository[entity])
			log := &writeBehindLog{}
			tt.setupMocks(net, store)

			got, err := newProvider(net, store, WithObserver(log.observe)).Put(ctx, draft, tt.policy).Result()

			if tt.wantErr != nil {
				assert.Same(t, tt.wantErr, err)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.want, got)
			}
			assert.Equal(t, tt.wantWrites, log.events)
			net.AssertExpectations(t)
			store.AssertExpectations(t)
		})
	}
}

// Scenario C: the object comes back with the id the network assigned, and storage holds that id.
func TestDataProvider_PutOneNetworkSync(t *testing.T) {
	net := new(repoMocks.MockRepository[entity])
	store := new(repoMocks.MockRepository[entity])
	net.On("Put", mock.Anything, []entity{{ID: 0, Name: "x"}}).Return([]entity{{ID: 7, Name: "x"}}, nil)
	store.On("Put", mock.Anything, []entity{{ID: 7, Name: "x"}}).Return([]entity{{ID: 7, Name: "x"}}, nil)

	got, err := newProvider(net, store).PutOne(context.Background(), object{ID: 0, Name: "x"}, NetworkSync).Result()

	require.NoError(t, err)
	assert.Equal(t, object{ID: 7, Name: "x"}, got)
	net.AssertExpectations(t)
	store.AssertExpectations(t)
}

func TestDataProvider_PutOneEmptyResult(t *testing.T) {
	net := new(repoMocks.MockRepository[entity])
	store := new(repoMocks.MockRepository[entity])
	net.On("Put", mock.Anything, mock.Anything).Return([]entity{}, nil)

	_, err := newProvider(net, store).PutOne(context.Background(), object{Name: "x"}, Network).Result()

	assert.True(t, apperr.IsKind(err, apperr.KindContractViolation))
}

func TestDataProvider_Delete(t *testing.T) {
	ctx := context.Background()
	q := repository.KeyQuery("1")
	cause := apperr.CollaboratorFailure("delete", errors.New("refused"))

	tests := []struct {
		name       string
		policy     Policy
		setupMocks func(net, store *repoMocks.MockRepository[entity])
		want       bool
		wantErr    error
		wantWrites []string
	}{
		{
			name:   "storage only",
			policy: Storage,
			setupMocks: func(net, store *repoMocks.MockRepository[entity]) {
				store.On("Delete", mock.Anything, q).Return(true, nil)
			},
			want: true,
		},
		{
			// Scenario D.
			name:   "network sync deletes from storage when the network deleted",
			policy: NetworkSync,
			setupMocks: func(net, store *repoMocks.MockRepository[entity]) {
				net.On("Delete", mock.Anything, q).Return(true, nil)
				store.On("Delete", mock.Anything, q).Return(false, errors.New("disk full"))
			},
			want:       true,
			wantWrites: []string{"delete:storage"},
		},
		{
			name:   "network sync leaves storage alone when nothing was deleted",
			policy: NetworkSync,
			setupMocks: func(net, store *repoMocks.MockRepository[entity]) {
				net.On("Delete", mock.Anything, q).Return(false, nil)
			},
			want: false,
		},
		{
			name:   "storage sync deletes from the network when storage deleted",
			policy: StorageSync,
			setupMocks: func(net, store *repoMocks.MockRepository[entity]) {
				store.On("Delete", mock.Anything, q).Return(true, nil)
				net.On("Delete", mock.Anything, q).Return(true, nil)
			},
			want:       true,
			wantWrites: []string{"delete:network"},
		},
		{
			// Scenario E.
			name:   "network failure is surfaced and storage untouched",
			policy: Network,
			setupMocks: func(net, store *repoMocks.MockRepository[entity]) {
				net.On("Delete", mock.Anything, q).Return(false, cause)
			},
			wantErr: cause,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			net := new(repoMocks.MockRepository[entity])
			store := new(repoMocks.MockRepository[entity])
			log := &writeBehindLog{}
			tt.setupMocks(net, store)

			got, err := newProvider(net, store, WithObserver(log.observe)).Delete(ctx, q, tt.policy).Result()

			if tt.wantErr != nil {
				assert.Same(t, tt.wantErr, err)
				assert.True(t, apperr.IsKind(err, apperr.KindCollaboratorFailure))
				store.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.want, got)
			}
			assert.Equal(t, tt.wantWrites, log.events)
			net.AssertExpectations(t)
			store.AssertExpectations(t)
		})
	}
}

func TestDataProvider_WriteBehindFailureIsObservedNotSurfaced(t *testing.T) {
	net := new(repoMocks.MockRepository[entity])
	store := new(repoMocks.MockRepository[entity])
	log := &writeBehindLog{}
	secondary := errors.New("storage offline")
	net.On("Get", mock.Anything, repository.AllQuery()).Return([]entity{{ID: 1, Name: "a"}}, nil)
	store.On("Put", mock.Anything, mock.Anything).Return(nil, secondary)

	got, err := newProvider(net, store, WithObserver(log.observe)).
		Get(context.Background(), repository.AllQuery(), NetworkSync).Result()

	require.NoError(t, err)
	assert.Equal(t, []object{{ID: 1, Name: "a"}}, got)
	require.Len(t, log.errs, 1)
	assert.Same(t, secondary, log.errs[0])
}

func TestDataProvider_UnknownPolicy(t *testing.T) {
	net := new(repoMocks.MockRepository[entity])
	store := new(repoMocks.MockRepository[entity])
	p := newProvider(net, store)
	ctx := context.Background()

	_, err := p.Get(ctx, repository.AllQuery(), Policy(42)).Result()
	assert.True(t, apperr.IsKind(err, apperr.KindInvalidInput))
	_, err = p.Put(ctx, nil, Policy(42)).Result()
	assert.True(t, apperr.IsKind(err, apperr.KindInvalidInput))
	_, err = p.Delete(ctx, repository.AllQuery(), Policy(42)).Result()
	assert.True(t, apperr.IsKind(err, apperr.KindInvalidInput))
}

func TestDataProvider_Spans(t *testing.T) {
	rec := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(rec))
	net := new(repoMocks.MockRepository[entity])
	store := new(repoMocks.MockRepository[entity])
	net.On("Delete", mock.Anything, repository.AllQuery()).Return(false, errors.New("boom"))

	p := newProvider(net, store, WithTracer(tp.Tracer("test")))
	_, _ = p.Delete(context.Background(), repository.AllQuery(), Network).Result()

	spans := rec.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, "provider.delete", spans[0].Name())
	assert.Equal(t, "boom", spans[0].Status().Description)
}

func TestParsePolicy(t *testing.T) {
	tests := []struct {
		in      string
		want    Policy
		wantErr bool
	}{
		{in: "network", want: Network},
		{in: "Network-Sync", want: NetworkSync},
		{in: "storage", want: Storage},
		{in: "storagesync", want: StorageSync},
		{in: "cache", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParsePolicy(tt.in)
			if tt.wantErr {
				assert.True(t, apperr.IsKind(err, apperr.KindInvalidInput))
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, got, mustParse(t, got.String()))
		})
	}
}

func mustParse(t *testing.T, s string) Policy {
	t.Helper()
	p, err := ParsePolicy(s)
	require.NoError(t, err)
	return p
}
