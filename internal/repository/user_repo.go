package repository

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"enrollment-api/internal/model"
)

// UserRepository layers account-specific lookups over the generic contract.
type UserRepository struct {
	*Repository[model.User, *model.User]
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{Repository: New[model.User, *model.User](db)}
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	user, err := r.FindSingle(ctx, "lower(email) = ?", normalizeEmail(email))
	if err == model.ErrNotFound {
		return nil, model.ErrUserNotFound
	}
	return user, err
}

func (r *UserRepository) GetByProviderUID(ctx context.Context, uid string) (*model.User, error) {
	user, err := r.FindSingle(ctx, "provider_uid = ?", uid)
	if err == model.ErrNotFound {
		return nil, model.ErrUserNotFound
	}
	return user, err
}

func (r *UserRepository) EmailExists(ctx context.Context, email string) (bool, error) {
	return r.Any(ctx, "lower(email) = ?", normalizeEmail(email))
}

// GetWithChildren eager-loads the parent's non-deleted children.
func (r *UserRepository) GetWithChildren(ctx context.Context, uid string) (*model.User, error) {
	var user model.User
	err := r.Query(ctx).
		Preload("Children", "is_deleted = ?", false).
		Where("provider_uid = ?", uid).
		First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, model.ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
