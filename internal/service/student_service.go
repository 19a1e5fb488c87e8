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

// StudentStore is the slice of the student repository the service needs.
type StudentStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*model.Student, error)
	GetPaged(ctx context.Context, opts repository.PageOptions) ([]*model.Student, int64, error)
	ListByParent(ctx context.Context, parentID uuid.UUID) ([]*model.Student, error)
	ExistsForChild(ctx context.Context, childID uuid.UUID) (bool, error)
	Add(ctx context.Context, student *model.Student) error
	Update(ctx context.Context, student *model.Student) error
	Delete(ctx context.Context, student *model.Student, deletedBy string) error
}

type StudentUserStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*model.User, error)
	GetByProviderUID(ctx context.Context, uid string) (*model.User, error)
}

type ClassroomCapacityStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*model.Classroom, error)
	EnrolledCount(ctx context.Context, id uuid.UUID) (int64, error)
}

// StudentService is the staff-facing roster: enrolled students and their
// classroom assignments.
type StudentService struct {
	students   StudentStore
	users      StudentUserStore
	classrooms ClassroomCapacityStore
}

func NewStudentService(students StudentStore, users StudentUserStore, classrooms ClassroomCapacityStore) *StudentService {
	return &StudentService{students: students, users: users, classrooms: classrooms}
}

// Create enrolls a student directly, outside the application flow.
func (s *StudentService) Create(ctx context.Context, actorUID string, req model.CreateStudentRequest) (*model.Student, error) {
	if err := validateChildFields(req.FullName, req.Birthdate, req.Gender); err != nil {
		return nil, err
	}
	if strings.TrimSpace(req.Grade) == "" {
		return nil, apierror.Validation("grade is required", "grade")
	}

	parent, err := s.users.GetByID(ctx, req.ParentID)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return nil, apierror.NotFound("parent not found", "parent_id")
		}
		return nil, err
	}
	if parent.Role != model.RoleParent {
		return nil, apierror.Validation("the referenced account is not a parent", "parent_id")
	}

	if req.ChildID != nil {
		enrolled, err := s.students.ExistsForChild(ctx, *req.ChildID)
		if err != nil {
			return nil, fmt.Errorf("check enrollment: %w", err)
		}
		if enrolled {
			return nil, apierror.Conflict("this child is already enrolled", "child_id")
		}
	}

	if req.ClassroomID != nil {
		if err := s.checkClassroomCapacity(ctx, *req.ClassroomID); err != nil {
			return nil, err
		}
	}

	student := &model.Student{
		FullName:    strings.TrimSpace(req.FullName),
		Birthdate:   req.Birthdate,
		Gender:      req.Gender,
		Grade:       strings.TrimSpace(req.Grade),
		ChildID:     req.ChildID,
		ParentID:    req.ParentID,
		ClassroomID: req.ClassroomID,
	}
	student.CreatedBy = actorUID

	if err := s.students.Add(ctx, student); err != nil {
		return nil, fmt.Errorf("create student: %w", err)
	}
	return student, nil
}

func (s *StudentService) List(ctx context.Context, page model.PageRequest) ([]*model.Student, int64, error) {
	return s.students.GetPaged(ctx, repository.PageOptions{
		Page:      page.Page,
		PageSize:  page.PageSize,
		OrderBy:   page.OrderBy,
		Ascending: page.Ascending,
	})
}

// ListMine returns the students belonging to the calling parent.
func (s *StudentService) ListMine(ctx context.Context, uid string) ([]*model.Student, error) {
	user, err := s.users.GetByProviderUID(ctx, uid)
	if err != nil {
		return nil, mapUserLookupErr(err)
	}
	return s.students.ListByParent(ctx, user.ID)
}

func (s *StudentService) Get(ctx context.Context, id uuid.UUID) (*model.Student, error) {
	student, err := s.students.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return nil, apierror.NotFound("student not found", "")
		}
		return nil, err
	}
	return student, nil
}

// Update edits the roster entry. Moving the student to another classroom
// re-checks that room's capacity.
func (s *StudentService) Update(ctx context.Context, actorUID string, id uuid.UUID, req model.UpdateStudentRequest) (*model.Student, error) {
	student, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	applyString(&student.FullName, req.FullName)
	applyString(&student.Grade, req.Grade)

	if req.ClassroomID != nil && !sameClassroom(student.ClassroomID, req.ClassroomID) {
		if err := s.checkClassroomCapacity(ctx, *req.ClassroomID); err != nil {
			return nil, err
		}
		student.ClassroomID = req.ClassroomID
	}

	if strings.TrimSpace(student.FullName) == "" {
		return nil, apierror.Validation("student name cannot be cleared", "full_name")
	}
	if strings.TrimSpace(student.Grade) == "" {
		return nil, apierror.Validation("grade cannot be cleared", "grade")
	}

	student.UpdatedBy = &actorUID
	if err := s.students.Update(ctx, student); err != nil {
		return nil, fmt.Errorf("update student: %w", err)
	}
	return student, nil
}

func (s *StudentService) Delete(ctx context.Context, actorUID string, id uuid.UUID) error {
	student, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	return s.students.Delete(ctx, student, actorUID)
}

func (s *StudentService) checkClassroomCapacity(ctx context.Context, classroomID uuid.UUID) error {
	classroom, err := s.classrooms.GetByID(ctx, classroomID)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return apierror.NotFound("classroom not found", "classroom_id")
		}
		return err
	}

	enrolled, err := s.classrooms.EnrolledCount(ctx, classroomID)
	if err != nil {
		return fmt.Errorf("count enrollment: %w", err)
	}
	if enrolled >= int64(classroom.Capacity) {
		return apierror.Conflict("classroom is at capacity", "classroom_id")
	}
	return nil
}

func sameClassroom(a *uuid.UUID, b *uuid.UUID) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
