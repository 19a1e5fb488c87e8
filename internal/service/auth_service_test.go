package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"enrollment-api/internal/cache"
	"enrollment-api/internal/identity"
	"enrollment-api/internal/mailer"
	"enrollment-api/internal/metrics"
	"enrollment-api/internal/model"
	"enrollment-api/pkg/apierror"
)

type authFixture struct {
	svc      *AuthService
	users    *mockUserStore
	provider *identity.MockProvider
	mail     *mailer.MockSender
	profiles *cache.MemoryCache
}

func newAuthFixture(production bool) *authFixture {
	users := new(mockUserStore)
	provider := new(identity.MockProvider)
	mail := new(mailer.MockSender)
	profiles := cache.NewMemoryCache()

	svc := NewAuthService(users, provider, profiles, mail, metrics.NewCollector(), 10*time.Minute, production)
	return &authFixture{svc: svc, users: users, provider: provider, mail: mail, profiles: profiles}
}

func validRegister() model.RegisterRequest {
	return model.RegisterRequest{
		Email:       "parent@example.com",
		Password:    "longenough1",
		FirstName:   "Dana",
		LastName:    "Reyes",
		PhoneNumber: "+1-555-0100",
		AcceptTerms: true,
	}
}

func TestRegisterCreatesProviderAndLocalAccount(t *testing.T) {
	f := newAuthFixture(false)
	ctx := context.Background()

	f.users.On("EmailExists", ctx, "parent@example.com").Return(false, nil)
	f.provider.On("CreateUser", ctx, mock.Anything).
		Return(&identity.UserRecord{UID: "uid-1", Email: "parent@example.com"}, nil)
	f.provider.On("SetRoleClaim", ctx, "uid-1", model.RoleParent).Return(nil)
	f.users.On("Add", ctx, mock.Anything).Return(nil)
	f.provider.On("EmailVerificationLink", ctx, "parent@example.com").Return("https://verify", nil)
	f.mail.On("SendVerificationEmail", ctx, "parent@example.com", "https://verify").Return(nil)
	f.provider.On("MintCustomToken", ctx, "uid-1", model.RoleParent).
		Return(&identity.TokenPair{IDToken: "tok", ExpiresIn: time.Hour}, nil)

	resp, err := f.svc.Register(ctx, validRegister())
	require.NoError(t, err)
	assert.Equal(t, "tok", resp.IDToken)
	assert.Equal(t, "Bearer", resp.TokenType)
	assert.Equal(t, "parent@example.com", resp.User.Email)
	assert.Equal(t, model.RoleParent.String(), resp.User.Role)

	f.provider.AssertNotCalled(t, "DeleteUser", mock.Anything, mock.Anything)
	f.provider.AssertExpectations(t)
	f.users.AssertExpectations(t)
}

func TestRegisterDeletesProviderAccountWhenLocalInsertFails(t *testing.T) {
	f := newAuthFixture(false)
	ctx := context.Background()

	f.users.On("EmailExists", ctx, "parent@example.com").Return(false, nil)
	f.provider.On("CreateUser", ctx, mock.Anything).
		Return(&identity.UserRecord{UID: "uid-1"}, nil)
	f.provider.On("SetRoleClaim", ctx, "uid-1", model.RoleParent).Return(nil)
	f.users.On("Add", ctx, mock.Anything).Return(errors.New("insert failed"))
	f.provider.On("DeleteUser", mock.Anything, "uid-1").Return(nil)

	_, err := f.svc.Register(ctx, validRegister())
	require.Error(t, err)

	f.provider.AssertCalled(t, "DeleteUser", mock.Anything, "uid-1")
}

func TestRegisterRejectsDuplicateEmail(t *testing.T) {
	f := newAuthFixture(false)
	ctx := context.Background()

	f.users.On("EmailExists", ctx, "parent@example.com").Return(true, nil)

	_, err := f.svc.Register(ctx, validRegister())
	requireAPIErrorCode(t, err, apierror.CodeAlreadyExists)
	f.provider.AssertNotCalled(t, "CreateUser", mock.Anything, mock.Anything)
}

func TestRegisterValidation(t *testing.T) {
	f := newAuthFixture(false)
	ctx := context.Background()

	bad := validRegister()
	bad.Email = "not-an-email"
	_, err := f.svc.Register(ctx, bad)
	requireAPIErrorCode(t, err, apierror.CodeValidation)

	bad = validRegister()
	bad.Password = "short"
	_, err = f.svc.Register(ctx, bad)
	requireAPIErrorCode(t, err, apierror.CodeValidation)

	bad = validRegister()
	bad.AcceptTerms = false
	_, err = f.svc.Register(ctx, bad)
	requireAPIErrorCode(t, err, apierror.CodeValidation)

	bad = validRegister()
	bad.Role = "Admin"
	_, err = f.svc.Register(ctx, bad)
	requireAPIErrorCode(t, err, apierror.CodeForbidden)

	// A role that does not parse at all is malformed input, not a
	// privilege escalation attempt.
	bad = validRegister()
	bad.Role = "wizard"
	_, err = f.svc.Register(ctx, bad)
	requireAPIErrorCode(t, err, apierror.CodeValidation)
}

func seedUserFixture(t *testing.T, password string) *model.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	hashStr := string(hash)

	return &model.User{
		ProviderUID:   "seed-uid",
		Email:         "admin@littlesprouts.test",
		EmailVerified: true,
		Role:          model.RoleAdmin,
		IsActive:      true,
		IsSeedUser:    true,
		PasswordHash:  &hashStr,
	}
}

func TestLoginSeedAccountBypassesProvider(t *testing.T) {
	f := newAuthFixture(false)
	ctx := context.Background()
	user := seedUserFixture(t, "Admin123!")

	f.users.On("GetByEmail", ctx, "admin@littlesprouts.test").Return(user, nil)
	f.users.On("Update", ctx, user).Return(nil)
	f.provider.On("MintCustomToken", ctx, "seed-uid", model.RoleAdmin).
		Return(&identity.TokenPair{IDToken: "tok", ExpiresIn: time.Hour}, nil)

	resp, err := f.svc.Login(ctx, model.LoginRequest{
		Email:    "admin@littlesprouts.test",
		Password: "Admin123!",
	})
	require.NoError(t, err)
	assert.Equal(t, "tok", resp.IDToken)
	assert.NotNil(t, user.LastLoginAt)

	f.provider.AssertNotCalled(t, "SignIn", mock.Anything, mock.Anything, mock.Anything)
}

func TestLoginSeedAccountUsesProviderInProduction(t *testing.T) {
	f := newAuthFixture(true)
	ctx := context.Background()
	user := seedUserFixture(t, "Admin123!")

	f.users.On("GetByEmail", ctx, "admin@littlesprouts.test").Return(user, nil)
	f.provider.On("SignIn", ctx, "admin@littlesprouts.test", "Admin123!").
		Return(nil, identity.ErrInvalidCredentials)

	_, err := f.svc.Login(ctx, model.LoginRequest{
		Email:    "admin@littlesprouts.test",
		Password: "Admin123!",
	})
	requireAPIErrorCode(t, err, apierror.CodeUnauthorized)

	f.provider.AssertNotCalled(t, "MintCustomToken", mock.Anything, mock.Anything, mock.Anything)
}

func TestLoginRejectsWrongSeedPassword(t *testing.T) {
	f := newAuthFixture(false)
	ctx := context.Background()
	user := seedUserFixture(t, "Admin123!")

	f.users.On("GetByEmail", ctx, "admin@littlesprouts.test").Return(user, nil)

	_, err := f.svc.Login(ctx, model.LoginRequest{
		Email:    "admin@littlesprouts.test",
		Password: "wrong",
	})
	requireAPIErrorCode(t, err, apierror.CodeUnauthorized)
}

func TestLoginRejectsUnknownEmail(t *testing.T) {
	f := newAuthFixture(false)
	ctx := context.Background()

	f.users.On("GetByEmail", ctx, "nobody@example.com").Return(nil, model.ErrUserNotFound)

	_, err := f.svc.Login(ctx, model.LoginRequest{Email: "nobody@example.com", Password: "whatever1"})
	requireAPIErrorCode(t, err, apierror.CodeUnauthorized)
}

func TestLoginRejectsDeactivatedAccountAfterCredentialCheck(t *testing.T) {
	f := newAuthFixture(false)
	ctx := context.Background()

	user := &model.User{ProviderUID: "uid-1", Email: "parent@example.com", Role: model.RoleParent, IsActive: false}
	f.users.On("GetByEmail", ctx, "parent@example.com").Return(user, nil)
	f.provider.On("SignIn", ctx, "parent@example.com", "longenough1").
		Return(&identity.TokenPair{IDToken: "tok", ExpiresIn: time.Hour}, nil)

	_, err := f.svc.Login(ctx, model.LoginRequest{Email: "parent@example.com", Password: "longenough1"})
	requireAPIErrorCode(t, err, apierror.CodeForbidden)

	// Credentials were verified before the active check.
	f.provider.AssertCalled(t, "SignIn", ctx, "parent@example.com", "longenough1")
}

func TestLogoutRevokesTokensAndEvictsProfile(t *testing.T) {
	f := newAuthFixture(false)
	ctx := context.Background()

	f.profiles.Set(ctx, "uid-1", &model.UserProfile{Email: "parent@example.com"}, time.Minute)
	f.provider.On("RevokeRefreshTokens", ctx, "uid-1").Return(nil)

	require.NoError(t, f.svc.Logout(ctx, "uid-1"))

	_, ok := f.profiles.Get(ctx, "uid-1")
	assert.False(t, ok)
}

func TestLogoutSucceedsAndEvictsWhenRevocationFails(t *testing.T) {
	f := newAuthFixture(false)
	ctx := context.Background()

	f.profiles.Set(ctx, "uid-1", &model.UserProfile{Email: "parent@example.com"}, time.Minute)
	f.provider.On("RevokeRefreshTokens", ctx, "uid-1").Return(errors.New("provider down"))

	// Revocation is best-effort; a provider outage never blocks logout.
	require.NoError(t, f.svc.Logout(ctx, "uid-1"))

	_, ok := f.profiles.Get(ctx, "uid-1")
	assert.False(t, ok)
}

func TestRefreshReturnsNewSessionForActiveAccount(t *testing.T) {
	f := newAuthFixture(false)
	ctx := context.Background()

	user := &model.User{ProviderUID: "uid-1", Email: "parent@example.com", Role: model.RoleParent, IsActive: true}
	f.provider.On("ExchangeRefreshToken", ctx, "refresh-1").
		Return(&identity.TokenPair{IDToken: "new-tok", RefreshToken: "refresh-2", ExpiresIn: time.Hour}, nil)
	f.provider.On("VerifyIDToken", ctx, "new-tok").
		Return(&identity.TokenInfo{UID: "uid-1", Role: model.RoleParent}, nil)
	f.users.On("GetByProviderUID", ctx, "uid-1").Return(user, nil)

	resp, err := f.svc.Refresh(ctx, "refresh-1")
	require.NoError(t, err)
	assert.Equal(t, "new-tok", resp.IDToken)
	assert.Equal(t, "refresh-2", resp.RefreshToken)
	// The profile comes from the new token's subject, not from the caller.
	assert.Equal(t, "parent@example.com", resp.User.Email)
}

func TestRefreshRejectsInvalidToken(t *testing.T) {
	f := newAuthFixture(false)
	ctx := context.Background()

	f.provider.On("ExchangeRefreshToken", ctx, "stale").
		Return(nil, identity.ErrInvalidToken)

	_, err := f.svc.Refresh(ctx, "stale")
	requireAPIErrorCode(t, err, apierror.CodeUnauthorized)
}

func TestRefreshRejectsBlankToken(t *testing.T) {
	f := newAuthFixture(false)

	_, err := f.svc.Refresh(context.Background(), "   ")
	requireAPIErrorCode(t, err, apierror.CodeValidation)
	f.provider.AssertNotCalled(t, "ExchangeRefreshToken", mock.Anything, mock.Anything)
}

func TestRefreshRejectsDeactivatedAccount(t *testing.T) {
	f := newAuthFixture(false)
	ctx := context.Background()

	user := &model.User{ProviderUID: "uid-1", Email: "parent@example.com", Role: model.RoleParent, IsActive: false}
	f.provider.On("ExchangeRefreshToken", ctx, "refresh-1").
		Return(&identity.TokenPair{IDToken: "new-tok", ExpiresIn: time.Hour}, nil)
	f.provider.On("VerifyIDToken", ctx, "new-tok").
		Return(&identity.TokenInfo{UID: "uid-1", Role: model.RoleParent}, nil)
	f.users.On("GetByProviderUID", ctx, "uid-1").Return(user, nil)

	_, err := f.svc.Refresh(ctx, "refresh-1")
	requireAPIErrorCode(t, err, apierror.CodeForbidden)
}

func TestRefreshRejectsDeletedAccount(t *testing.T) {
	f := newAuthFixture(false)
	ctx := context.Background()

	f.provider.On("ExchangeRefreshToken", ctx, "refresh-1").
		Return(&identity.TokenPair{IDToken: "new-tok", ExpiresIn: time.Hour}, nil)
	f.provider.On("VerifyIDToken", ctx, "new-tok").
		Return(&identity.TokenInfo{UID: "uid-gone", Role: model.RoleParent}, nil)
	f.users.On("GetByProviderUID", ctx, "uid-gone").Return(nil, model.ErrUserNotFound)

	_, err := f.svc.Refresh(ctx, "refresh-1")
	requireAPIErrorCode(t, err, apierror.CodeUnauthorized)
}

func TestChangePasswordRejectsWrongCurrentPassword(t *testing.T) {
	f := newAuthFixture(false)
	ctx := context.Background()

	user := &model.User{ProviderUID: "uid-1", Email: "parent@example.com"}
	f.users.On("GetByProviderUID", ctx, "uid-1").Return(user, nil)
	f.provider.On("SignIn", ctx, "parent@example.com", "wrongcurrent").
		Return(nil, identity.ErrInvalidCredentials)

	err := f.svc.ChangePassword(ctx, "uid-1", model.ChangePasswordRequest{
		CurrentPassword: "wrongcurrent",
		NewPassword:     "newpassword1",
	})
	requireAPIErrorCode(t, err, apierror.CodeUnauthorized)

	f.provider.AssertNotCalled(t, "UpdateUser", mock.Anything, mock.Anything, mock.Anything)
}

func TestGetProfileServesFromCacheAfterFirstHit(t *testing.T) {
	f := newAuthFixture(false)
	ctx := context.Background()

	user := &model.User{ProviderUID: "uid-1", Email: "parent@example.com", Role: model.RoleParent, IsActive: true}
	f.users.On("GetByProviderUID", ctx, "uid-1").Return(user, nil).Once()

	first, err := f.svc.GetProfile(ctx, "uid-1")
	require.NoError(t, err)

	second, err := f.svc.GetProfile(ctx, "uid-1")
	require.NoError(t, err)
	assert.Equal(t, first.Email, second.Email)

	f.users.AssertNumberOfCalls(t, "GetByProviderUID", 1)
}

func TestSendPasswordResetHidesUnknownEmails(t *testing.T) {
	f := newAuthFixture(false)
	ctx := context.Background()

	f.users.On("GetByEmail", ctx, "nobody@example.com").Return(nil, model.ErrUserNotFound)

	require.NoError(t, f.svc.SendPasswordReset(ctx, "nobody@example.com"))
	f.provider.AssertNotCalled(t, "PasswordResetLink", mock.Anything, mock.Anything)
}

func TestUpdateRoleRejectsSelfChange(t *testing.T) {
	f := newAuthFixture(false)
	ctx := context.Background()
	id := uuid.New()

	f.users.On("GetByID", ctx, id).Return(&model.User{ProviderUID: "admin-uid"}, nil)

	_, err := f.svc.UpdateRole(ctx, "admin-uid", id, "Staff")
	requireAPIErrorCode(t, err, apierror.CodeConflict)
}

func TestUpdateRoleWritesClaimBeforeLocalRecord(t *testing.T) {
	f := newAuthFixture(false)
	ctx := context.Background()
	id := uuid.New()

	user := &model.User{ProviderUID: "uid-2", Email: "staff@example.com", Role: model.RoleParent, IsActive: true}
	f.users.On("GetByID", ctx, id).Return(user, nil)
	f.provider.On("SetRoleClaim", ctx, "uid-2", model.RoleStaff).Return(errors.New("provider down"))

	_, err := f.svc.UpdateRole(ctx, "admin-uid", id, "Staff")
	require.Error(t, err)
	assert.Equal(t, model.RoleParent, user.Role)
	f.users.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func requireAPIErrorCode(t *testing.T, err error, code string) {
	t.Helper()
	require.Error(t, err)
	var apiErr *apierror.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, code, apiErr.Code)
}
