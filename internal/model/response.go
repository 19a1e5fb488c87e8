package model

import (
	"time"

	"github.com/google/uuid"
)

type APIResponse struct {
	Success bool      `json:"success"`
	Data    any       `json:"data,omitempty"`
	Error   *APIError `json:"error,omitempty"`
	Meta    *Meta     `json:"meta,omitempty"`
}

type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

type Meta struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
}

// UserProfile is the resolved account snapshot returned by profile lookups
// and cached for a short TTL keyed by provider UID.
type UserProfile struct {
	ID                          uuid.UUID  `json:"id"`
	ProviderUID                 string     `json:"provider_uid"`
	Email                       string     `json:"email"`
	EmailVerified               bool       `json:"email_verified"`
	FirstName                   string     `json:"first_name"`
	LastName                    string     `json:"last_name"`
	FullName                    string     `json:"full_name"`
	PhoneNumber                 string     `json:"phone_number"`
	Role                        string     `json:"role"`
	IsActive                    bool       `json:"is_active"`
	LastLoginAt                 *time.Time `json:"last_login_at,omitempty"`
	ProfileCompletionPercentage int        `json:"profile_completion_percentage"`
	CanEnroll                   bool       `json:"can_enroll"`
}

type LoginResponse struct {
	IDToken      string      `json:"id_token"`
	RefreshToken string      `json:"refresh_token"`
	TokenType    string      `json:"token_type"`
	ExpiresAt    time.Time   `json:"expires_at"`
	User         UserProfile `json:"user"`
}

func NewProfile(u *User) UserProfile {
	return UserProfile{
		ID:                          u.ID,
		ProviderUID:                 u.ProviderUID,
		Email:                       u.Email,
		EmailVerified:               u.EmailVerified,
		FirstName:                   u.FirstName,
		LastName:                    u.LastName,
		FullName:                    u.FullName(),
		PhoneNumber:                 u.PhoneNumber,
		Role:                        u.Role.String(),
		IsActive:                    u.IsActive,
		LastLoginAt:                 u.LastLoginAt,
		ProfileCompletionPercentage: u.ProfileCompletionPercentage,
		CanEnroll:                   u.CanEnroll(),
	}
}
