package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"smartinventory/internal/model"
)

type MockAlertSettingsRepository struct {
	mock.Mock
}

func (m *MockAlertSettingsRepository) Get(ctx context.Context, userID string) (*model.AlertSettings, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.AlertSettings), args.Error(1)
}

func (m *MockAlertSettingsRepository) Upsert(ctx context.Context, s *model.AlertSettings) (*model.AlertSettings, error) {
	args := m.Called(ctx, s)
	if f, ok := args.Get(0).(func(context.Context, *model.AlertSettings) *model.AlertSettings); ok {
		return f(ctx, s), args.Error(1)
	}
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.AlertSettings), args.Error(1)
}

func (m *MockAlertSettingsRepository) Delete(ctx context.Context, userID string) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

func (m *MockAlertSettingsRepository) ListEnabled(ctx context.Context) ([]model.AlertSettings, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.AlertSettings), args.Error(1)
}
