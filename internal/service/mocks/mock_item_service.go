package mocks

import (
	"context"

	"datasync/internal/model"
	"datasync/internal/provider"
	"datasync/internal/service"

	"github.com/stretchr/testify/mock"
)

type MockItemService struct {
	mock.Mock
}

var _ service.ItemService = (*MockItemService)(nil)

func (m *MockItemService) List(ctx context.Context, policy provider.Policy) ([]model.Item, error) {
	args := m.Called(ctx, policy)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Item), args.Error(1)
}

func (m *MockItemService) Get(ctx context.Context, id string, policy provider.Policy) (*model.Item, error) {
	args := m.Called(ctx, id, policy)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Item), args.Error(1)
}

func (m *MockItemService) Save(ctx context.Context, item model.Item, policy provider.Policy) (*model.Item, error) {
	args := m.Called(ctx, item, policy)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Item), args.Error(1)
}

func (m *MockItemService) Delete(ctx context.Context, id string, policy provider.Policy) error {
	args := m.Called(ctx, id, policy)
	return args.Error(0)
}
