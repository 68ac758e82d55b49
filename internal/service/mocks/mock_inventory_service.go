package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"smartinventory/internal/model"
	"smartinventory/internal/service"
)

type MockInventoryService struct {
	mock.Mock
}

func (m *MockInventoryService) Create(ctx context.Context, ownerID string, in service.ItemInput) (*model.Item, error) {
	args := m.Called(ctx, ownerID, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Item), args.Error(1)
}

func (m *MockInventoryService) Get(ctx context.Context, ownerID, id string) (*model.Item, error) {
	args := m.Called(ctx, ownerID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Item), args.Error(1)
}

func (m *MockInventoryService) Update(ctx context.Context, ownerID, id string, in service.ItemInput) (*model.Item, error) {
	args := m.Called(ctx, ownerID, id, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Item), args.Error(1)
}

func (m *MockInventoryService) Delete(ctx context.Context, ownerID, id string) error {
	args := m.Called(ctx, ownerID, id)
	return args.Error(0)
}

func (m *MockInventoryService) Snapshot(ctx context.Context, ownerID string, f service.Filter) (*service.Snapshot, error) {
	args := m.Called(ctx, ownerID, f)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.Snapshot), args.Error(1)
}

func (m *MockInventoryService) Categories(ctx context.Context, ownerID string) ([]string, error) {
	args := m.Called(ctx, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockInventoryService) Export(ctx context.Context, ownerID string) (*service.ExportResult, error) {
	args := m.Called(ctx, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.ExportResult), args.Error(1)
}
