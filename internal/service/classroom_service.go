package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"enrollment-api/internal/model"
	"enrollment-api/internal/repository"
	"enrollment-api/pkg/apierror"
)

const maxClassroomCapacity = 100

// ClassroomStore is the slice of the classroom repository the service needs.
type ClassroomStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*model.Classroom, error)
	GetPaged(ctx context.Context, opts repository.PageOptions) ([]*model.Classroom, int64, error)
	NameExists(ctx context.Context, name string) (bool, error)
	GetWithStudents(ctx context.Context, id uuid.UUID) (*model.Classroom, error)
	EnrolledCount(ctx context.Context, id uuid.UUID) (int64, error)
	Add(ctx context.Context, classroom *model.Classroom) error
	Update(ctx context.Context, classroom *model.Classroom) error
	Delete(ctx context.Context, classroom *model.Classroom, deletedBy string) error
}

// ClassroomService manages classrooms and their capacity limits.
type ClassroomService struct {
	classrooms ClassroomStore
}

func NewClassroomService(classrooms ClassroomStore) *ClassroomService {
	return &ClassroomService{classrooms: classrooms}
}

func (s *ClassroomService) Create(ctx context.Context, actorUID string, req model.CreateClassroomRequest) (*model.Classroom, error) {
	name := strings.TrimSpace(req.Name)
	if err := validateClassroomFields(name, req.Capacity); err != nil {
		return nil, err
	}

	taken, err := s.classrooms.NameExists(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("check classroom name: %w", err)
	}
	if taken {
		return nil, apierror.AlreadyExists("a classroom with this name already exists", "name")
	}

	classroom := &model.Classroom{Name: name, Capacity: req.Capacity}
	classroom.CreatedBy = actorUID
	if err := s.classrooms.Add(ctx, classroom); err != nil {
		return nil, fmt.Errorf("create classroom: %w", err)
	}
	return classroom, nil
}

func (s *ClassroomService) List(ctx context.Context, page model.PageRequest) ([]*model.Classroom, int64, error) {
	return s.classrooms.GetPaged(ctx, repository.PageOptions{
		Page:      page.Page,
		PageSize:  page.PageSize,
		OrderBy:   page.OrderBy,
		Ascending: page.Ascending,
	})
}

func (s *ClassroomService) Get(ctx context.Context, id uuid.UUID) (*model.Classroom, error) {
	classroom, err := s.classrooms.GetWithStudents(ctx, id)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return nil, apierror.NotFound("classroom not found", "")
		}
		return nil, err
	}
	return classroom, nil
}

// Update renames or resizes a classroom. The capacity can never drop below
// the current enrollment.
func (s *ClassroomService) Update(ctx context.Context, actorUID string, id uuid.UUID, req model.UpdateClassroomRequest) (*model.Classroom, error) {
	classroom, err := s.classrooms.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return nil, apierror.NotFound("classroom not found", "")
		}
		return nil, err
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if !strings.EqualFold(name, classroom.Name) {
			taken, err := s.classrooms.NameExists(ctx, name)
			if err != nil {
				return nil, fmt.Errorf("check classroom name: %w", err)
			}
			if taken {
				return nil, apierror.AlreadyExists("a classroom with this name already exists", "name")
			}
		}
		classroom.Name = name
	}
	if req.Capacity != nil {
		classroom.Capacity = *req.Capacity
	}

	if err := validateClassroomFields(classroom.Name, classroom.Capacity); err != nil {
		return nil, err
	}

	enrolled, err := s.classrooms.EnrolledCount(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("count enrollment: %w", err)
	}
	if int64(classroom.Capacity) < enrolled {
		return nil, apierror.Conflict(
			fmt.Sprintf("capacity cannot be lower than the %d enrolled students", enrolled), "capacity")
	}

	classroom.UpdatedBy = &actorUID
	if err := s.classrooms.Update(ctx, classroom); err != nil {
		return nil, fmt.Errorf("update classroom: %w", err)
	}
	return classroom, nil
}

// Delete soft-deletes an empty classroom.
func (s *ClassroomService) Delete(ctx context.Context, actorUID string, id uuid.UUID) error {
	classroom, err := s.classrooms.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return apierror.NotFound("classroom not found", "")
		}
		return err
	}

	enrolled, err := s.classrooms.EnrolledCount(ctx, id)
	if err != nil {
		return fmt.Errorf("count enrollment: %w", err)
	}
	if enrolled > 0 {
		return apierror.Conflict("classroom still has enrolled students", "")
	}

	return s.classrooms.Delete(ctx, classroom, actorUID)
}

func validateClassroomFields(name string, capacity int) error {
	if name == "" {
		return apierror.Validation("classroom name is required", "name")
	}
	if capacity < 1 || capacity > maxClassroomCapacity {
		return apierror.Validation(
			fmt.Sprintf("capacity must be between 1 and %d", maxClassroomCapacity), "capacity")
	}
	return nil
}
