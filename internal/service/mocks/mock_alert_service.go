package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"smartinventory/internal/model"
	"smartinventory/internal/service"
)

type MockAlertService struct {
	mock.Mock
}

func (m *MockAlertService) GetSettings(ctx context.Context, userID string) (*model.AlertSettings, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.AlertSettings), args.Error(1)
}

func (m *MockAlertService) UpdateSettings(ctx context.Context, userID string, in service.SettingsInput) (*model.AlertSettings, error) {
	args := m.Called(ctx, userID, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.AlertSettings), args.Error(1)
}

func (m *MockAlertService) ClearSettings(ctx context.Context, userID string) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

func (m *MockAlertService) CanSend(s *model.AlertSettings) bool {
	args := m.Called(s)
	return args.Bool(0)
}

func (m *MockAlertService) SendTest(ctx context.Context, userID string) (*service.TestResult, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.TestResult), args.Error(1)
}

func (m *MockAlertService) NotifyStockChange(ctx context.Context, userID string, before, after *model.Item) {
	m.Called(ctx, userID, before, after)
}

func (m *MockAlertService) SendDigest(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}
