package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"enrollment-api/internal/model"
)

type ChildRepository struct {
	*Repository[model.Child, *model.Child]
}

func NewChildRepository(db *gorm.DB) *ChildRepository {
	return &ChildRepository{Repository: New[model.Child, *model.Child](db)}
}

func (r *ChildRepository) ListByParent(ctx context.Context, parentID uuid.UUID) ([]*model.Child, error) {
	return r.Find(ctx, "parent_id = ?", parentID)
}

// GetOwned resolves a child only when it belongs to the given parent, so
// handlers cannot leak another family's records through guessed IDs.
func (r *ChildRepository) GetOwned(ctx context.Context, id uuid.UUID, parentID uuid.UUID) (*model.Child, error) {
	return r.FindSingle(ctx, "id = ? AND parent_id = ?", id, parentID)
}
