package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"enrollment-api/internal/model"
)

type ApplicationRepository struct {
	*Repository[model.Application, *model.Application]
}

func NewApplicationRepository(db *gorm.DB) *ApplicationRepository {
	return &ApplicationRepository{Repository: New[model.Application, *model.Application](db)}
}

func (r *ApplicationRepository) ListBySubmitter(ctx context.Context, userID uuid.UUID) ([]*model.Application, error) {
	return r.Find(ctx, "submitted_by_id = ?", userID)
}

func (r *ApplicationRepository) ListByStatus(ctx context.Context, status model.ApplicationStatus) ([]*model.Application, error) {
	return r.Find(ctx, "status = ?", status)
}

// GetWithPayments eager-loads the application's payments for review and
// refund decisions.
func (r *ApplicationRepository) GetWithPayments(ctx context.Context, id uuid.UUID) (*model.Application, error) {
	var application model.Application
	err := r.Query(ctx).
		Preload("Payments", "is_deleted = ?", false).
		Where("id = ?", id).
		First(&application).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, model.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &application, nil
}

// HasOpenForChild reports whether the child already has an application that
// is still in flight (neither rejected nor cancelled).
func (r *ApplicationRepository) HasOpenForChild(ctx context.Context, childID uuid.UUID) (bool, error) {
	return r.Any(ctx, "child_id = ? AND status NOT IN ?", childID,
		[]model.ApplicationStatus{model.ApplicationRejected, model.ApplicationCancelled})
}
