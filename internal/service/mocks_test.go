package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"enrollment-api/internal/model"
	"enrollment-api/internal/repository"
)

type mockUserStore struct {
	mock.Mock
}

func (m *mockUserStore) GetByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	args := m.Called(ctx, id)
	if u, ok := args.Get(0).(*model.User); ok {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockUserStore) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	args := m.Called(ctx, email)
	if u, ok := args.Get(0).(*model.User); ok {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockUserStore) GetByProviderUID(ctx context.Context, uid string) (*model.User, error) {
	args := m.Called(ctx, uid)
	if u, ok := args.Get(0).(*model.User); ok {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockUserStore) GetWithChildren(ctx context.Context, uid string) (*model.User, error) {
	args := m.Called(ctx, uid)
	if u, ok := args.Get(0).(*model.User); ok {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockUserStore) EmailExists(ctx context.Context, email string) (bool, error) {
	args := m.Called(ctx, email)
	return args.Bool(0), args.Error(1)
}

func (m *mockUserStore) Add(ctx context.Context, user *model.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *mockUserStore) Update(ctx context.Context, user *model.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

type mockChildStore struct {
	mock.Mock
}

func (m *mockChildStore) ListByParent(ctx context.Context, parentID uuid.UUID) ([]*model.Child, error) {
	args := m.Called(ctx, parentID)
	if c, ok := args.Get(0).([]*model.Child); ok {
		return c, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockChildStore) GetOwned(ctx context.Context, id uuid.UUID, parentID uuid.UUID) (*model.Child, error) {
	args := m.Called(ctx, id, parentID)
	if c, ok := args.Get(0).(*model.Child); ok {
		return c, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockChildStore) Add(ctx context.Context, child *model.Child) error {
	args := m.Called(ctx, child)
	return args.Error(0)
}

func (m *mockChildStore) Update(ctx context.Context, child *model.Child) error {
	args := m.Called(ctx, child)
	return args.Error(0)
}

func (m *mockChildStore) Delete(ctx context.Context, child *model.Child, deletedBy string) error {
	args := m.Called(ctx, child, deletedBy)
	return args.Error(0)
}

type mockApplicationStore struct {
	mock.Mock
}

func (m *mockApplicationStore) GetByID(ctx context.Context, id uuid.UUID) (*model.Application, error) {
	args := m.Called(ctx, id)
	if a, ok := args.Get(0).(*model.Application); ok {
		return a, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockApplicationStore) GetPaged(ctx context.Context, opts repository.PageOptions) ([]*model.Application, int64, error) {
	args := m.Called(ctx, opts)
	if a, ok := args.Get(0).([]*model.Application); ok {
		return a, args.Get(1).(int64), args.Error(2)
	}
	return nil, 0, args.Error(2)
}

func (m *mockApplicationStore) ListBySubmitter(ctx context.Context, userID uuid.UUID) ([]*model.Application, error) {
	args := m.Called(ctx, userID)
	if a, ok := args.Get(0).([]*model.Application); ok {
		return a, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockApplicationStore) GetWithPayments(ctx context.Context, id uuid.UUID) (*model.Application, error) {
	args := m.Called(ctx, id)
	if a, ok := args.Get(0).(*model.Application); ok {
		return a, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockApplicationStore) HasOpenForChild(ctx context.Context, childID uuid.UUID) (bool, error) {
	args := m.Called(ctx, childID)
	return args.Bool(0), args.Error(1)
}

func (m *mockApplicationStore) Add(ctx context.Context, application *model.Application) error {
	args := m.Called(ctx, application)
	return args.Error(0)
}

func (m *mockApplicationStore) Update(ctx context.Context, application *model.Application) error {
	args := m.Called(ctx, application)
	return args.Error(0)
}

type mockPaymentStore struct {
	mock.Mock
}

func (m *mockPaymentStore) Add(ctx context.Context, payment *model.Payment) error {
	args := m.Called(ctx, payment)
	return args.Error(0)
}

func (m *mockPaymentStore) Remove(ctx context.Context, payment *model.Payment) error {
	args := m.Called(ctx, payment)
	return args.Error(0)
}

func (m *mockPaymentStore) ListByApplication(ctx context.Context, applicationID uuid.UUID) ([]*model.Payment, error) {
	args := m.Called(ctx, applicationID)
	if p, ok := args.Get(0).([]*model.Payment); ok {
		return p, args.Error(1)
	}
	return nil, args.Error(1)
}

type mockStudentStore struct {
	mock.Mock
}

func (m *mockStudentStore) ExistsForChild(ctx context.Context, childID uuid.UUID) (bool, error) {
	args := m.Called(ctx, childID)
	return args.Bool(0), args.Error(1)
}

func (m *mockStudentStore) Add(ctx context.Context, student *model.Student) error {
	args := m.Called(ctx, student)
	return args.Error(0)
}

func (m *mockStudentStore) Remove(ctx context.Context, student *model.Student) error {
	args := m.Called(ctx, student)
	return args.Error(0)
}

type mockRosterStore struct {
	mockStudentStore
}

func (m *mockRosterStore) GetByID(ctx context.Context, id uuid.UUID) (*model.Student, error) {
	args := m.Called(ctx, id)
	if s, ok := args.Get(0).(*model.Student); ok {
		return s, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockRosterStore) GetPaged(ctx context.Context, opts repository.PageOptions) ([]*model.Student, int64, error) {
	args := m.Called(ctx, opts)
	if s, ok := args.Get(0).([]*model.Student); ok {
		return s, args.Get(1).(int64), args.Error(2)
	}
	return nil, 0, args.Error(2)
}

func (m *mockRosterStore) ListByParent(ctx context.Context, parentID uuid.UUID) ([]*model.Student, error) {
	args := m.Called(ctx, parentID)
	if s, ok := args.Get(0).([]*model.Student); ok {
		return s, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockRosterStore) Update(ctx context.Context, student *model.Student) error {
	args := m.Called(ctx, student)
	return args.Error(0)
}

func (m *mockRosterStore) Delete(ctx context.Context, student *model.Student, deletedBy string) error {
	args := m.Called(ctx, student, deletedBy)
	return args.Error(0)
}

type mockClassroomStore struct {
	mock.Mock
}

func (m *mockClassroomStore) GetByID(ctx context.Context, id uuid.UUID) (*model.Classroom, error) {
	args := m.Called(ctx, id)
	if c, ok := args.Get(0).(*model.Classroom); ok {
		return c, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockClassroomStore) GetPaged(ctx context.Context, opts repository.PageOptions) ([]*model.Classroom, int64, error) {
	args := m.Called(ctx, opts)
	if c, ok := args.Get(0).([]*model.Classroom); ok {
		return c, args.Get(1).(int64), args.Error(2)
	}
	return nil, 0, args.Error(2)
}

func (m *mockClassroomStore) NameExists(ctx context.Context, name string) (bool, error) {
	args := m.Called(ctx, name)
	return args.Bool(0), args.Error(1)
}

func (m *mockClassroomStore) GetWithStudents(ctx context.Context, id uuid.UUID) (*model.Classroom, error) {
	args := m.Called(ctx, id)
	if c, ok := args.Get(0).(*model.Classroom); ok {
		return c, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockClassroomStore) EnrolledCount(ctx context.Context, id uuid.UUID) (int64, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockClassroomStore) Add(ctx context.Context, classroom *model.Classroom) error {
	args := m.Called(ctx, classroom)
	return args.Error(0)
}

func (m *mockClassroomStore) Update(ctx context.Context, classroom *model.Classroom) error {
	args := m.Called(ctx, classroom)
	return args.Error(0)
}

func (m *mockClassroomStore) Delete(ctx context.Context, classroom *model.Classroom, deletedBy string) error {
	args := m.Called(ctx, classroom, deletedBy)
	return args.Error(0)
}
