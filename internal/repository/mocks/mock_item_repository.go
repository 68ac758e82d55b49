package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"smartinventory/internal/model"
)

type MockItemRepository struct {
	mock.Mock
}

func (m *MockItemRepository) Create(ctx context.Context, item *model.Item) (*model.Item, error) {
	args := m.Called(ctx, item)
	if f, ok := args.Get(0).(func(context.Context, *model.Item) *model.Item); ok {
		return f(ctx, item), args.Error(1)
	}
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Item), args.Error(1)
}

func (m *MockItemRepository) FindByID(ctx context.Context, ownerID, id string) (*model.Item, error) {
	args := m.Called(ctx, ownerID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Item), args.Error(1)
}

func (m *MockItemRepository) ListByOwner(ctx context.Context, ownerID string) ([]model.Item, error) {
	args := m.Called(ctx, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Item), args.Error(1)
}

func (m *MockItemRepository) Update(ctx context.Context, item *model.Item) (*model.Item, error) {
	args := m.Called(ctx, item)
	if f, ok := args.Get(0).(func(context.Context, *model.Item) *model.Item); ok {
		return f(ctx, item), args.Error(1)
	}
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Item), args.Error(1)
}

func (m *MockItemRepository) Delete(ctx context.Context, ownerID, id string) error {
	args := m.Called(ctx, ownerID, id)
	return args.Error(0)
}
