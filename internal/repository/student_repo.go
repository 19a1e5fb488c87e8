package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"enrollment-api/internal/model"
)

type StudentRepository struct {
	*Repository[model.Student, *model.Student]
}

func NewStudentRepository(db *gorm.DB) *StudentRepository {
	return &StudentRepository{Repository: New[model.Student, *model.Student](db)}
}

func (r *StudentRepository) ListByParent(ctx context.Context, parentID uuid.UUID) ([]*model.Student, error) {
	return r.Find(ctx, "parent_id = ?", parentID)
}

func (r *StudentRepository) ListByClassroom(ctx context.Context, classroomID uuid.UUID) ([]*model.Student, error) {
	return r.Find(ctx, "classroom_id = ?", classroomID)
}

// ExistsForChild reports whether the child already has an active student
// record, which blocks duplicate enrollments.
func (r *StudentRepository) ExistsForChild(ctx context.Context, childID uuid.UUID) (bool, error) {
	return r.Any(ctx, "child_id = ?", childID)
}
