package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
)

type MockSender struct {
	mock.Mock
}

func (m *MockSender) Send(ctx context.Context, to, body string) (string, error) {
	args := m.Called(ctx, to, body)
	return args.String(0), args.Error(1)
}

func (m *MockSender) Configured() bool {
	args := m.Called()
	return args.Bool(0)
}
