package identity

import (
	"context"
	"errors"
	"time"

	"enrollment-api/internal/model"
)

var (
	ErrEmailExists        = errors.New("identity: email already registered")
	ErrWeakPassword       = errors.New("identity: password too weak")
	ErrInvalidCredentials = errors.New("identity: invalid credentials")
	ErrUserNotFound       = errors.New("identity: user not found")
	ErrInvalidToken       = errors.New("identity: invalid or expired token")
)

// UserRecord mirrors the provider's view of an account.
type UserRecord struct {
	UID           string
	Email         string
	EmailVerified bool
	DisplayName   string
	PhoneNumber   string
	Disabled      bool
	Role          string
}

// TokenPair is a session token plus the long-lived refresh token that can
// be exchanged for a new pair.
type TokenPair struct {
	IDToken      string
	RefreshToken string
	ExpiresIn    time.Duration
}

// TokenInfo is the decoded content of a verified session token.
type TokenInfo struct {
	UID           string
	Email         string
	EmailVerified bool
	Role          model.Role
	IssuedAt      time.Time
	ExpiresAt     time.Time
}

type CreateUserParams struct {
	Email         string
	Password      string
	DisplayName   string
	PhoneNumber   string
	EmailVerified bool
	Disabled      bool
}

type UpdateUserParams struct {
	Password      *string
	Disabled      *bool
	EmailVerified *bool
}

// Provider is the external identity service owning credentials and session
// tokens. The local database never stores passwords for real accounts.
type Provider interface {
	CreateUser(ctx context.Context, params CreateUserParams) (*UserRecord, error)
	GetUser(ctx context.Context, uid string) (*UserRecord, error)
	UpdateUser(ctx context.Context, uid string, params UpdateUserParams) error
	DeleteUser(ctx context.Context, uid string) error
	SetRoleClaim(ctx context.Context, uid string, role model.Role) error

	SignIn(ctx context.Context, email string, password string) (*TokenPair, error)
	MintCustomToken(ctx context.Context, uid string, role model.Role) (*TokenPair, error)
	ExchangeRefreshToken(ctx context.Context, refreshToken string) (*TokenPair, error)
	VerifyIDToken(ctx context.Context, idToken string) (*TokenInfo, error)
	RevokeRefreshTokens(ctx context.Context, uid string) error

	PasswordResetLink(ctx context.Context, email string) (string, error)
	EmailVerificationLink(ctx context.Context, email string) (string, error)
}
