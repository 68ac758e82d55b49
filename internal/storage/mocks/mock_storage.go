package mocks

import (
	"context"
	"io"
	"time"

	"github.com/stretchr/testify/mock"

	"smartinventory/internal/storage"
)

type MockStorage struct {
	mock.Mock
}

func (m *MockStorage) Upload(ctx context.Context, obj storage.Object, r io.Reader) (storage.Stored, error) {
	args := m.Called(ctx, obj, r)
	if f, ok := args.Get(0).(func(context.Context, storage.Object, io.Reader) storage.Stored); ok {
		return f(ctx, obj, r), args.Error(1)
	}
	return args.Get(0).(storage.Stored), args.Error(1)
}

func (m *MockStorage) PresignDownload(ctx context.Context, key, filename string, expiry time.Duration) (string, error) {
	args := m.Called(ctx, key, filename, expiry)
	return args.String(0), args.Error(1)
}

func (m *MockStorage) Remove(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

func (m *MockStorage) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}
