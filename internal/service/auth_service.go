package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"enrollment-api/internal/cache"
	"enrollment-api/internal/identity"
	"enrollment-api/internal/mailer"
	"enrollment-api/internal/metrics"
	"enrollment-api/internal/model"
	"enrollment-api/pkg/apierror"
)

const minPasswordLength = 8

// UserStore is the slice of the user repository the auth service needs.
type UserStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	GetByProviderUID(ctx context.Context, uid string) (*model.User, error)
	EmailExists(ctx context.Context, email string) (bool, error)
	Add(ctx context.Context, user *model.User) error
	Update(ctx context.Context, user *model.User) error
}

// AuthService pairs identity-provider accounts with local user records and
// owns the session lifecycle.
type AuthService struct {
	users      UserStore
	provider   identity.Provider
	profiles   cache.ProfileCache
	mail       mailer.Sender
	collector  *metrics.Collector
	profileTTL time.Duration
	production bool
}

func NewAuthService(
	users UserStore,
	provider identity.Provider,
	profiles cache.ProfileCache,
	mail mailer.Sender,
	collector *metrics.Collector,
	profileTTL time.Duration,
	production bool,
) *AuthService {
	return &AuthService{
		users:      users,
		provider:   provider,
		profiles:   profiles,
		mail:       mail,
		collector:  collector,
		profileTTL: profileTTL,
		production: production,
	}
}

// Register creates the provider account first and the local record second.
// If the local insert fails the provider account is deleted again so the
// two systems never diverge.
func (s *AuthService) Register(ctx context.Context, req model.RegisterRequest) (_ *model.LoginResponse, err error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if err := validateRegistration(email, req); err != nil {
		return nil, err
	}

	exists, err := s.users.EmailExists(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("check email: %w", err)
	}
	if exists {
		return nil, apierror.AlreadyExists("an account with this email already exists", "email")
	}

	record, err := s.provider.CreateUser(ctx, identity.CreateUserParams{
		Email:       email,
		Password:    req.Password,
		DisplayName: strings.TrimSpace(req.FirstName + " " + req.LastName),
		PhoneNumber: req.PhoneNumber,
	})
	if err != nil {
		if errors.Is(err, identity.ErrEmailExists) {
			return nil, apierror.AlreadyExists("an account with this email already exists", "email")
		}
		if errors.Is(err, identity.ErrWeakPassword) {
			return nil, apierror.Validation("password does not meet the provider's strength requirements", "password")
		}
		return nil, fmt.Errorf("create provider account: %w", err)
	}

	// Undo the provider account if anything below fails.
	defer func() {
		if err != nil {
			if delErr := s.provider.DeleteUser(context.WithoutCancel(ctx), record.UID); delErr != nil {
				slog.Error("orphaned identity account, manual cleanup needed",
					"uid", record.UID, "error", delErr)
			}
		}
	}()

	if err = s.provider.SetRoleClaim(ctx, record.UID, model.RoleParent); err != nil {
		return nil, fmt.Errorf("set role claim: %w", err)
	}

	user := &model.User{
		ProviderUID:     record.UID,
		Email:           email,
		FirstName:       strings.TrimSpace(req.FirstName),
		LastName:        strings.TrimSpace(req.LastName),
		PhoneNumber:     strings.TrimSpace(req.PhoneNumber),
		Role:            model.RoleParent,
		IsActive:        true,
		AcceptedTerms:   true,
		TermsAcceptedAt: ptrTime(time.Now().UTC()),
	}
	user.CreatedBy = record.UID
	user.CalculateProfileCompletion()

	if err = s.users.Add(ctx, user); err != nil {
		return nil, fmt.Errorf("create user record: %w", err)
	}

	s.sendVerificationEmail(ctx, email)

	pair, err := s.provider.MintCustomToken(ctx, record.UID, model.RoleParent)
	if err != nil {
		return nil, fmt.Errorf("mint session token: %w", err)
	}

	if s.collector != nil {
		s.collector.RecordRegistration()
	}
	slog.Info("account registered", "uid", record.UID)

	return s.loginResponse(user, pair), nil
}

// Login verifies credentials against the identity provider. Seed accounts
// carry a local hash and never reach the provider; that path is disabled in
// production.
func (s *AuthService) Login(ctx context.Context, req model.LoginRequest) (*model.LoginResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" || req.Password == "" {
		return nil, apierror.Validation("email and password are required", "")
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, model.ErrUserNotFound) {
			s.recordLogin(false)
			return nil, apierror.Unauthorized("invalid email or password")
		}
		return nil, fmt.Errorf("lookup user: %w", err)
	}

	var pair *identity.TokenPair
	if user.IsSeedUser && !s.production {
		if user.PasswordHash == nil ||
			bcrypt.CompareHashAndPassword([]byte(*user.PasswordHash), []byte(req.Password)) != nil {
			s.recordLogin(false)
			return nil, apierror.Unauthorized("invalid email or password")
		}
		pair, err = s.provider.MintCustomToken(ctx, user.ProviderUID, user.Role)
	} else {
		pair, err = s.provider.SignIn(ctx, email, req.Password)
	}
	if err != nil {
		if errors.Is(err, identity.ErrInvalidCredentials) || errors.Is(err, identity.ErrUserNotFound) {
			s.recordLogin(false)
			return nil, apierror.Unauthorized("invalid email or password")
		}
		return nil, fmt.Errorf("sign in: %w", err)
	}

	if !user.IsActive {
		s.recordLogin(false)
		return nil, apierror.Forbidden("this account has been deactivated")
	}

	user.UpdateLastLogin()
	if err := s.users.Update(ctx, user); err != nil {
		slog.Warn("failed to record last login", "uid", user.ProviderUID, "error", err)
	}

	profile := model.NewProfile(user)
	s.profiles.Set(ctx, user.ProviderUID, &profile, s.profileTTL)

	s.recordLogin(true)
	return s.loginResponse(user, pair), nil
}

// Refresh exchanges a refresh token for a fresh session token.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*model.LoginResponse, error) {
	if strings.TrimSpace(refreshToken) == "" {
		return nil, apierror.Validation("refresh token is required", "refresh_token")
	}

	pair, err := s.provider.ExchangeRefreshToken(ctx, refreshToken)
	if err != nil {
		if errors.Is(err, identity.ErrInvalidToken) {
			return nil, apierror.Unauthorized("refresh token is invalid or expired")
		}
		return nil, fmt.Errorf("exchange refresh token: %w", err)
	}

	info, err := s.provider.VerifyIDToken(ctx, pair.IDToken)
	if err != nil {
		return nil, apierror.Unauthorized("refresh token is invalid or expired")
	}

	user, err := s.users.GetByProviderUID(ctx, info.UID)
	if err != nil {
		if errors.Is(err, model.ErrUserNotFound) {
			return nil, apierror.Unauthorized("account no longer exists")
		}
		return nil, fmt.Errorf("lookup user: %w", err)
	}
	if !user.IsActive {
		return nil, apierror.Forbidden("this account has been deactivated")
	}

	return s.loginResponse(user, pair), nil
}

// Logout drops the cached profile and revokes the account's refresh
// tokens. Revocation is best-effort: a provider outage must not keep a
// user logged in locally.
func (s *AuthService) Logout(ctx context.Context, uid string) error {
	s.profiles.Evict(ctx, uid)
	if err := s.provider.RevokeRefreshTokens(ctx, uid); err != nil {
		slog.Warn("failed to revoke refresh tokens", "error", err)
	}
	return nil
}

// SendPasswordReset always reports success so the endpoint cannot be used
// to probe which emails have accounts.
func (s *AuthService) SendPasswordReset(ctx context.Context, email string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return apierror.Validation("email is required", "email")
	}

	if _, err := s.users.GetByEmail(ctx, email); err != nil {
		if errors.Is(err, model.ErrUserNotFound) {
			slog.Debug("password reset requested for unknown email")
			return nil
		}
		return fmt.Errorf("lookup user: %w", err)
	}

	link, err := s.provider.PasswordResetLink(ctx, email)
	if err != nil {
		slog.Error("failed to create password reset link", "error", err)
		return nil
	}
	if err := s.mail.SendPasswordResetEmail(ctx, email, link); err != nil {
		slog.Error("failed to send password reset email", "error", err)
	}
	return nil
}

// SendEmailVerification re-sends the verification link for the account.
func (s *AuthService) SendEmailVerification(ctx context.Context, uid string) error {
	user, err := s.users.GetByProviderUID(ctx, uid)
	if err != nil {
		return mapUserLookupErr(err)
	}
	if user.EmailVerified {
		return apierror.Conflict("email is already verified", "")
	}

	s.sendVerificationEmail(ctx, user.Email)
	return nil
}

// SyncEmailVerification pulls the verification flag from the provider after
// the user followed the emailed link.
func (s *AuthService) SyncEmailVerification(ctx context.Context, uid string) (*model.UserProfile, error) {
	user, err := s.users.GetByProviderUID(ctx, uid)
	if err != nil {
		return nil, mapUserLookupErr(err)
	}

	record, err := s.provider.GetUser(ctx, uid)
	if err != nil {
		return nil, fmt.Errorf("lookup provider account: %w", err)
	}

	if record.EmailVerified && !user.EmailVerified {
		user.EmailVerified = true
		user.CalculateProfileCompletion()
		if err := s.users.Update(ctx, user); err != nil {
			return nil, fmt.Errorf("update user record: %w", err)
		}
		s.profiles.Evict(ctx, uid)
	}

	profile := model.NewProfile(user)
	return &profile, nil
}

// ChangePassword re-verifies the current password before setting the new
// one, then invalidates every outstanding refresh token.
func (s *AuthService) ChangePassword(ctx context.Context, uid string, req model.ChangePasswordRequest) error {
	if len(req.NewPassword) < minPasswordLength {
		return apierror.Validation(
			fmt.Sprintf("new password must be at least %d characters", minPasswordLength), "new_password")
	}

	user, err := s.users.GetByProviderUID(ctx, uid)
	if err != nil {
		return mapUserLookupErr(err)
	}

	if _, err := s.provider.SignIn(ctx, user.Email, req.CurrentPassword); err != nil {
		if errors.Is(err, identity.ErrInvalidCredentials) {
			return apierror.Unauthorized("current password is incorrect")
		}
		return fmt.Errorf("verify current password: %w", err)
	}

	if err := s.provider.UpdateUser(ctx, uid, identity.UpdateUserParams{
		Password: &req.NewPassword,
	}); err != nil {
		return fmt.Errorf("update password: %w", err)
	}

	if err := s.provider.RevokeRefreshTokens(ctx, uid); err != nil {
		slog.Warn("failed to revoke refresh tokens after password change", "uid", uid, "error", err)
	}
	if err := s.mail.SendPasswordChangedNotification(ctx, user.Email); err != nil {
		slog.Warn("failed to send password changed notification", "error", err)
	}

	return nil
}

// GetProfile serves the cached profile when fresh, falling back to the
// database and repopulating the cache.
func (s *AuthService) GetProfile(ctx context.Context, uid string) (*model.UserProfile, error) {
	if profile, ok := s.profiles.Get(ctx, uid); ok {
		if s.collector != nil {
			s.collector.RecordCacheHit()
		}
		return profile, nil
	}
	if s.collector != nil {
		s.collector.RecordCacheMiss()
	}

	user, err := s.users.GetByProviderUID(ctx, uid)
	if err != nil {
		return nil, mapUserLookupErr(err)
	}

	profile := model.NewProfile(user)
	s.profiles.Set(ctx, uid, &profile, s.profileTTL)
	return &profile, nil
}

// UpdateRole is the admin path that promotes or demotes an account. The
// provider claim is written first so a failure leaves the local record
// unchanged.
func (s *AuthService) UpdateRole(ctx context.Context, actorUID string, userID uuid.UUID, rawRole string) (*model.UserProfile, error) {
	role, err := model.ParseRole(rawRole)
	if err != nil {
		return nil, apierror.Validation("role must be Parent, Staff, or Admin", "role")
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, mapUserLookupErr(err)
	}
	if user.ProviderUID == actorUID {
		return nil, apierror.Conflict("administrators cannot change their own role", "")
	}

	if err := s.provider.SetRoleClaim(ctx, user.ProviderUID, role); err != nil {
		return nil, fmt.Errorf("set role claim: %w", err)
	}

	user.Role = role
	user.UpdatedBy = &actorUID
	if err := s.users.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("update user record: %w", err)
	}
	s.profiles.Evict(ctx, user.ProviderUID)

	slog.Info("role updated", "user_id", userID, "role", role, "actor", actorUID)
	profile := model.NewProfile(user)
	return &profile, nil
}

// SetActive deactivates or reactivates an account. Deactivation also
// disables the provider account and revokes its sessions.
func (s *AuthService) SetActive(ctx context.Context, actorUID string, userID uuid.UUID, active bool) error {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return mapUserLookupErr(err)
	}
	if user.ProviderUID == actorUID && !active {
		return apierror.Conflict("administrators cannot deactivate their own account", "")
	}
	if user.IsActive == active {
		return nil
	}

	disabled := !active
	if err := s.provider.UpdateUser(ctx, user.ProviderUID, identity.UpdateUserParams{
		Disabled: &disabled,
	}); err != nil {
		return fmt.Errorf("update provider account: %w", err)
	}

	user.IsActive = active
	user.UpdatedBy = &actorUID
	if err := s.users.Update(ctx, user); err != nil {
		return fmt.Errorf("update user record: %w", err)
	}

	s.profiles.Evict(ctx, user.ProviderUID)
	if !active {
		if err := s.provider.RevokeRefreshTokens(ctx, user.ProviderUID); err != nil {
			slog.Warn("failed to revoke tokens on deactivation", "uid", user.ProviderUID, "error", err)
		}
	}

	slog.Info("account active flag changed", "user_id", userID, "active", active, "actor", actorUID)
	return nil
}

func (s *AuthService) sendVerificationEmail(ctx context.Context, email string) {
	link, err := s.provider.EmailVerificationLink(ctx, email)
	if err != nil {
		slog.Warn("failed to create verification link", "error", err)
		return
	}
	if err := s.mail.SendVerificationEmail(ctx, email, link); err != nil {
		slog.Warn("failed to send verification email", "error", err)
	}
}

func (s *AuthService) loginResponse(user *model.User, pair *identity.TokenPair) *model.LoginResponse {
	return &model.LoginResponse{
		IDToken:      pair.IDToken,
		RefreshToken: pair.RefreshToken,
		TokenType:    "Bearer",
		ExpiresAt:    time.Now().UTC().Add(pair.ExpiresIn),
		User:         model.NewProfile(user),
	}
}

func (s *AuthService) recordLogin(success bool) {
	if s.collector != nil {
		s.collector.RecordLogin(success)
	}
}

func validateRegistration(email string, req model.RegisterRequest) error {
	if _, err := mail.ParseAddress(email); err != nil {
		return apierror.Validation("a valid email address is required", "email")
	}
	if len(req.Password) < minPasswordLength {
		return apierror.Validation(
			fmt.Sprintf("password must be at least %d characters", minPasswordLength), "password")
	}
	if strings.TrimSpace(req.FirstName) == "" || strings.TrimSpace(req.LastName) == "" {
		return apierror.Validation("first and last name are required", "")
	}
	if !req.AcceptTerms {
		return apierror.Validation("the terms of service must be accepted", "accept_terms")
	}
	if req.Role != "" {
		role, err := model.ParseRole(req.Role)
		if err != nil {
			return apierror.Validation("unknown role", "role")
		}
		if role != model.RoleParent {
			return apierror.Forbidden("staff and admin accounts are provisioned by an administrator")
		}
	}
	return nil
}

func mapUserLookupErr(err error) error {
	if errors.Is(err, model.ErrUserNotFound) || errors.Is(err, model.ErrNotFound) {
		return apierror.NotFound("account not found", "")
	}
	return err
}

func ptrTime(t time.Time) *time.Time { return &t }
