package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"datasync/internal/apperr"
	"datasync/internal/future"
	"datasync/internal/model"
	"datasync/internal/provider"
	"datasync/internal/repository"
)

var (
	ErrIDRequired         = errors.New("id is required")
	ErrInvalidID          = errors.New("id must not contain '/', '\\', '..' or control characters")
	ErrNameRequired       = errors.New("name is required")
	ErrNotFound     error = apperr.NotFound("service", "item not found")
)

// ItemService defines the use cases for handling items.
// Every call takes the sync policy deciding which store answers.
type ItemService interface {
	// List returns every item.
	List(ctx context.Context, policy provider.Policy) ([]model.Item, error)

	// Get returns a single item by its ID.
	Get(ctx context.Context, id string, policy provider.Policy) (*model.Item, error)

	// Save stores item and returns it as the primary store kept it.
	// An empty ID lets the network store assign one.
	Save(ctx context.Context, item model.Item, policy provider.Policy) (*model.Item, error)

	// Delete removes an item by ID.
	Delete(ctx context.Context, id string, policy provider.Policy) error
}

// ItemProvider is the subset of provider.DataProvider used by the service.
type ItemProvider interface {
	Get(ctx context.Context, q repository.Query, policy provider.Policy) *future.Future[[]model.Item]
	PutOne(ctx context.Context, value model.Item, policy provider.Policy) *future.Future[model.Item]
	Delete(ctx context.Context, q repository.Query, policy provider.Policy) *future.Future[bool]
}

var _ ItemProvider = (*provider.DataProvider[model.Item, model.ItemEntity])(nil)

// itemService is a concrete implementation of ItemService.
type itemService struct {
	provider ItemProvider
	timeout  time.Duration
	now      func() time.Time
}

// NewItemService constructs a new ItemService. A positive timeout bounds how
// long each call waits for the provider.
func NewItemService(p ItemProvider, timeout time.Duration) ItemService {
	return &itemService{
		provider: p,
		timeout:  timeout,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

func (s *itemService) List(ctx context.Context, policy provider.Policy) ([]model.Item, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	items, err := future.Await(ctx, s.provider.Get(ctx, repository.AllQuery(), policy))
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	if items == nil {
		items = []model.Item{}
	}
	return items, nil
}

func (s *itemService) Get(ctx context.Context, id string, policy provider.Policy) (*model.Item, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, ErrIDRequired
	}
	if !repository.ValidKey(id) {
		return nil, ErrInvalidID
	}
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	items, err := future.Await(ctx, s.provider.Get(ctx, repository.KeyQuery(id), policy))
	if err != nil {
		return nil, fmt.Errorf("get item %s: %w", id, err)
	}
	if len(items) == 0 {
		return nil, ErrNotFound
	}
	return &items[0], nil
}

func (s *itemService) Save(ctx context.Context, item model.Item, policy provider.Policy) (*model.Item, error) {
	item.ID = strings.TrimSpace(item.ID)
	item.Name = strings.TrimSpace(item.Name)
	if item.ID != "" && !repository.ValidKey(item.ID) {
		return nil, ErrInvalidID
	}
	if item.Name == "" {
		return nil, ErrNameRequired
	}
	item.UpdatedAt = s.now()

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	saved, err := future.Await(ctx, s.provider.PutOne(ctx, item, policy))
	if err != nil {
		return nil, fmt.Errorf("save item: %w", err)
	}
	return &saved, nil
}

func (s *itemService) Delete(ctx context.Context, id string, policy provider.Policy) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return ErrIDRequired
	}
	if !repository.ValidKey(id) {
		return ErrInvalidID
	}
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	removed, err := future.Await(ctx, s.provider.Delete(ctx, repository.KeyQuery(id), policy))
	if err != nil {
		return fmt.Errorf("delete item %s: %w", id, err)
	}
	if !removed {
		return ErrNotFound
	}
	return nil
}

func (s *itemService) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.timeout)
}
