package mailer

import (
	"context"

	"github.com/stretchr/testify/mock"
)

// MockSender is a testify mock of Sender for service tests.
type MockSender struct {
	mock.Mock
}

func (m *MockSender) SendVerificationEmail(ctx context.Context, to string, link string) error {
	args := m.Called(ctx, to, link)
	return args.Error(0)
}

func (m *MockSender) SendPasswordResetEmail(ctx context.Context, to string, link string) error {
	args := m.Called(ctx, to, link)
	return args.Error(0)
}

func (m *MockSender) SendPasswordChangedNotification(ctx context.Context, to string) error {
	args := m.Called(ctx, to)
	return args.Error(0)
}
