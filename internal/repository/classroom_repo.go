package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"enrollment-api/internal/model"
)

type ClassroomRepository struct {
	*Repository[model.Classroom, *model.Classroom]
}

func NewClassroomRepository(db *gorm.DB) *ClassroomRepository {
	return &ClassroomRepository{Repository: New[model.Classroom, *model.Classroom](db)}
}

func (r *ClassroomRepository) NameExists(ctx context.Context, name string) (bool, error) {
	return r.Any(ctx, "lower(name) = lower(?)", name)
}

// GetWithStudents eager-loads the classroom's non-deleted students.
func (r *ClassroomRepository) GetWithStudents(ctx context.Context, id uuid.UUID) (*model.Classroom, error) {
	var classroom model.Classroom
	err := r.Query(ctx).
		Preload("Students", "is_deleted = ?", false).
		Where("id = ?", id).
		First(&classroom).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, model.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &classroom, nil
}

// EnrolledCount counts the non-deleted students assigned to the classroom,
// used for capacity checks before an assignment.
func (r *ClassroomRepository) EnrolledCount(ctx context.Context, id uuid.UUID) (int64, error) {
	var count int64
	err := r.session().WithContext(ctx).
		Model(&model.Student{}).
		Where("classroom_id = ? AND is_deleted = ?", id, false).
		Count(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}
