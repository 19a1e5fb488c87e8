package identity

import (
	"context"

	"github.com/stretchr/testify/mock"

	"enrollment-api/internal/model"
)

// MockProvider is a testify mock of Provider for service tests.
type MockProvider struct {
	mock.Mock
}

func (m *MockProvider) CreateUser(ctx context.Context, params CreateUserParams) (*UserRecord, error) {
	args := m.Called(ctx, params)
	if rec, ok := args.Get(0).(*UserRecord); ok {
		return rec, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockProvider) GetUser(ctx context.Context, uid string) (*UserRecord, error) {
	args := m.Called(ctx, uid)
	if rec, ok := args.Get(0).(*UserRecord); ok {
		return rec, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockProvider) UpdateUser(ctx context.Context, uid string, params UpdateUserParams) error {
	args := m.Called(ctx, uid, params)
	return args.Error(0)
}

func (m *MockProvider) DeleteUser(ctx context.Context, uid string) error {
	args := m.Called(ctx, uid)
	return args.Error(0)
}

func (m *MockProvider) SetRoleClaim(ctx context.Context, uid string, role model.Role) error {
	args := m.Called(ctx, uid, role)
	return args.Error(0)
}

func (m *MockProvider) SignIn(ctx context.Context, email string, password string) (*TokenPair, error) {
	args := m.Called(ctx, email, password)
	if pair, ok := args.Get(0).(*TokenPair); ok {
		return pair, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockProvider) MintCustomToken(ctx context.Context, uid string, role model.Role) (*TokenPair, error) {
	args := m.Called(ctx, uid, role)
	if pair, ok := args.Get(0).(*TokenPair); ok {
		return pair, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockProvider) ExchangeRefreshToken(ctx context.Context, refreshToken string) (*TokenPair, error) {
	args := m.Called(ctx, refreshToken)
	if pair, ok := args.Get(0).(*TokenPair); ok {
		return pair, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockProvider) VerifyIDToken(ctx context.Context, idToken string) (*TokenInfo, error) {
	args := m.Called(ctx, idToken)
	if info, ok := args.Get(0).(*TokenInfo); ok {
		return info, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockProvider) RevokeRefreshTokens(ctx context.Context, uid string) error {
	args := m.Called(ctx, uid)
	return args.Error(0)
}

func (m *MockProvider) PasswordResetLink(ctx context.Context, email string) (string, error) {
	args := m.Called(ctx, email)
	return args.String(0), args.Error(1)
}

func (m *MockProvider) EmailVerificationLink(ctx context.Context, email string) (string, error) {
	args := m.Called(ctx, email)
	return args.String(0), args.Error(1)
}
