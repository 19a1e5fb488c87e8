package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"enrollment-api/internal/metrics"
	"enrollment-api/internal/model"
	"enrollment-api/internal/repository"
	"enrollment-api/pkg/apierror"
)

// ApplicationStore is the slice of the application repository the service
// needs.
type ApplicationStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*model.Application, error)
	GetPaged(ctx context.Context, opts repository.PageOptions) ([]*model.Application, int64, error)
	ListBySubmitter(ctx context.Context, userID uuid.UUID) ([]*model.Application, error)
	GetWithPayments(ctx context.Context, id uuid.UUID) (*model.Application, error)
	HasOpenForChild(ctx context.Context, childID uuid.UUID) (bool, error)
	Add(ctx context.Context, application *model.Application) error
	Update(ctx context.Context, application *model.Application) error
}

type PaymentStore interface {
	Add(ctx context.Context, payment *model.Payment) error
	Remove(ctx context.Context, payment *model.Payment) error
	ListByApplication(ctx context.Context, applicationID uuid.UUID) ([]*model.Payment, error)
}

type EnrollingStudentStore interface {
	ExistsForChild(ctx context.Context, childID uuid.UUID) (bool, error)
	Add(ctx context.Context, student *model.Student) error
	Remove(ctx context.Context, student *model.Student) error
}

// ApplicationService drives the enrollment lifecycle: submission, payment,
// and the staff decision.
type ApplicationService struct {
	applications ApplicationStore
	payments     PaymentStore
	students     EnrollingStudentStore
	children     ChildStore
	users        StudentUserStore
	collector    *metrics.Collector
}

func NewApplicationService(
	applications ApplicationStore,
	payments PaymentStore,
	students EnrollingStudentStore,
	children ChildStore,
	users StudentUserStore,
	collector *metrics.Collector,
) *ApplicationService {
	return &ApplicationService{
		applications: applications,
		payments:     payments,
		students:     students,
		children:     children,
		users:        users,
		collector:    collector,
	}
}

// Submit files an application for one of the parent's children. The child's
// details are copied onto the application so later edits to the child do
// not rewrite history.
func (s *ApplicationService) Submit(ctx context.Context, uid string, req model.SubmitApplicationRequest) (*model.Application, error) {
	if strings.TrimSpace(req.Grade) == "" {
		return nil, apierror.Validation("grade is required", "grade")
	}

	user, err := s.users.GetByProviderUID(ctx, uid)
	if err != nil {
		return nil, mapUserLookupErr(err)
	}
	if !user.CanEnroll() {
		return nil, apierror.Forbidden("complete and verify your profile before applying for enrollment")
	}

	child, err := s.children.GetOwned(ctx, req.ChildID, user.ID)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return nil, apierror.NotFound("child not found", "child_id")
		}
		return nil, err
	}

	open, err := s.applications.HasOpenForChild(ctx, child.ID)
	if err != nil {
		return nil, fmt.Errorf("check applications: %w", err)
	}
	if open {
		return nil, apierror.Conflict("this child already has an application in progress", "child_id")
	}

	enrolled, err := s.students.ExistsForChild(ctx, child.ID)
	if err != nil {
		return nil, fmt.Errorf("check enrollment: %w", err)
	}
	if enrolled {
		return nil, apierror.Conflict("this child is already enrolled", "child_id")
	}

	application := &model.Application{
		ChildID:       &child.ID,
		StudentName:   child.FullName,
		Birthdate:     child.Birthdate,
		Gender:        child.Gender,
		Address:       child.Address,
		Grade:         strings.TrimSpace(req.Grade),
		Status:        model.ApplicationPaymentPending,
		SubmittedByID: user.ID,
	}
	application.CreatedBy = uid

	if err := s.applications.Add(ctx, application); err != nil {
		return nil, fmt.Errorf("submit application: %w", err)
	}

	s.recordStatus(application.Status)
	slog.Info("application submitted", "application_id", application.ID, "child_id", child.ID)
	return application, nil
}

func (s *ApplicationService) ListMine(ctx context.Context, uid string) ([]*model.Application, error) {
	user, err := s.users.GetByProviderUID(ctx, uid)
	if err != nil {
		return nil, mapUserLookupErr(err)
	}
	return s.applications.ListBySubmitter(ctx, user.ID)
}

func (s *ApplicationService) List(ctx context.Context, page model.PageRequest, status model.ApplicationStatus) ([]*model.Application, int64, error) {
	opts := repository.PageOptions{
		Page:      page.Page,
		PageSize:  page.PageSize,
		OrderBy:   page.OrderBy,
		Ascending: page.Ascending,
	}
	if status != "" {
		opts.Filter = "status = ?"
		opts.FilterArgs = []any{status}
	}
	return s.applications.GetPaged(ctx, opts)
}

func (s *ApplicationService) Get(ctx context.Context, id uuid.UUID) (*model.Application, error) {
	application, err := s.applications.GetWithPayments(ctx, id)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return nil, apierror.NotFound("application not found", "")
		}
		return nil, err
	}
	return application, nil
}

// GetOwned resolves an application only for the parent who submitted it.
func (s *ApplicationService) GetOwned(ctx context.Context, uid string, id uuid.UUID) (*model.Application, error) {
	user, err := s.users.GetByProviderUID(ctx, uid)
	if err != nil {
		return nil, mapUserLookupErr(err)
	}

	application, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if application.SubmittedByID != user.ID {
		// Hidden rather than forbidden, so IDs cannot be probed.
		return nil, apierror.NotFound("application not found", "")
	}
	return application, nil
}

// RecordPayment registers a payment and, for the first successful payment
// on a pending application, advances it to PaymentCompleted. If the status
// update fails the payment row is removed again.
func (s *ApplicationService) RecordPayment(ctx context.Context, actorUID string, applicationID uuid.UUID, req model.RecordPaymentRequest) (_ *model.Payment, err error) {
	if req.AmountCents <= 0 {
		return nil, apierror.Validation("amount must be positive", "amount_cents")
	}
	if req.Type != model.PaymentTypePayment && req.Type != model.PaymentTypeRefund {
		return nil, apierror.Validation("payment type must be Payment or Refund", "type")
	}

	application, err := s.Get(ctx, applicationID)
	if err != nil {
		return nil, err
	}

	if req.Type == model.PaymentTypePayment &&
		application.Status != model.ApplicationPaymentPending {
		return nil, apierror.Conflict(
			fmt.Sprintf("application is %s and does not accept payments", application.Status), "status")
	}
	if req.Type == model.PaymentTypeRefund &&
		application.Status != model.ApplicationRejected &&
		application.Status != model.ApplicationCancelled {
		return nil, apierror.Conflict("refunds are only recorded against rejected or cancelled applications", "status")
	}

	actor, err := s.users.GetByProviderUID(ctx, actorUID)
	if err != nil {
		return nil, mapUserLookupErr(err)
	}

	currency := strings.ToUpper(strings.TrimSpace(req.Currency))
	if currency == "" {
		currency = "USD"
	}

	payment := &model.Payment{
		ApplicationID: application.ID,
		MadeByID:      actor.ID,
		Type:          req.Type,
		AmountCents:   req.AmountCents,
		Currency:      currency,
		TxnRef:        req.TxnRef,
		OrderInfo:     req.OrderInfo,
	}
	payment.CreatedBy = actorUID

	if err = s.payments.Add(ctx, payment); err != nil {
		return nil, fmt.Errorf("record payment: %w", err)
	}

	if req.Type == model.PaymentTypePayment {
		application.Status = model.ApplicationPaymentCompleted
		application.UpdatedBy = &actorUID
		if err = s.applications.Update(ctx, application); err != nil {
			if remErr := s.payments.Remove(ctx, payment); remErr != nil {
				slog.Error("stranded payment row, manual cleanup needed",
					"payment_id", payment.ID, "error", remErr)
			}
			return nil, fmt.Errorf("advance application: %w", err)
		}
		s.recordStatus(application.Status)
	}

	return payment, nil
}

// Approve turns a paid application into an enrolled student. The student
// row is created first; if the status change then fails, the row is
// removed again so approval stays all-or-nothing.
func (s *ApplicationService) Approve(ctx context.Context, actorUID string, id uuid.UUID) (_ *model.Application, err error) {
	application, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if application.Status != model.ApplicationPaymentCompleted {
		return nil, apierror.Conflict("only applications with completed payment can be approved", "status")
	}

	if application.ChildID != nil {
		enrolled, err := s.students.ExistsForChild(ctx, *application.ChildID)
		if err != nil {
			return nil, fmt.Errorf("check enrollment: %w", err)
		}
		if enrolled {
			return nil, apierror.Conflict("this child is already enrolled", "child_id")
		}
	}

	student := &model.Student{
		FullName:  application.StudentName,
		Birthdate: application.Birthdate,
		Gender:    application.Gender,
		Grade:     application.Grade,
		ChildID:   application.ChildID,
		ParentID:  application.SubmittedByID,
	}
	student.CreatedBy = actorUID

	if err = s.students.Add(ctx, student); err != nil {
		return nil, fmt.Errorf("enroll student: %w", err)
	}

	application.Status = model.ApplicationApproved
	application.UpdatedBy = &actorUID
	if err = s.applications.Update(ctx, application); err != nil {
		if remErr := s.students.Remove(ctx, student); remErr != nil {
			slog.Error("stranded student row, manual cleanup needed",
				"student_id", student.ID, "error", remErr)
		}
		return nil, fmt.Errorf("approve application: %w", err)
	}

	s.recordStatus(application.Status)
	slog.Info("application approved", "application_id", id, "student_id", student.ID, "actor", actorUID)
	return application, nil
}

// Reject declines an application with a mandatory reason for the parent.
func (s *ApplicationService) Reject(ctx context.Context, actorUID string, id uuid.UUID, reason string) (*model.Application, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, apierror.Validation("a rejection reason is required", "reason")
	}

	application, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if application.Status != model.ApplicationPaymentPending &&
		application.Status != model.ApplicationPaymentCompleted {
		return nil, apierror.Conflict(
			fmt.Sprintf("a %s application cannot be rejected", application.Status), "status")
	}

	application.Status = model.ApplicationRejected
	application.Reason = &reason
	application.UpdatedBy = &actorUID
	if err := s.applications.Update(ctx, application); err != nil {
		return nil, fmt.Errorf("reject application: %w", err)
	}

	s.recordStatus(application.Status)
	slog.Info("application rejected", "application_id", id, "actor", actorUID)
	return application, nil
}

// Cancel lets the submitting parent withdraw an undecided application.
func (s *ApplicationService) Cancel(ctx context.Context, uid string, id uuid.UUID) (*model.Application, error) {
	application, err := s.GetOwned(ctx, uid, id)
	if err != nil {
		return nil, err
	}
	if application.Status != model.ApplicationPaymentPending &&
		application.Status != model.ApplicationPaymentCompleted {
		return nil, apierror.Conflict(
			fmt.Sprintf("a %s application cannot be cancelled", application.Status), "status")
	}

	application.Status = model.ApplicationCancelled
	application.UpdatedBy = &uid
	if err := s.applications.Update(ctx, application); err != nil {
		return nil, fmt.Errorf("cancel application: %w", err)
	}

	s.recordStatus(application.Status)
	return application, nil
}

func (s *ApplicationService) recordStatus(status model.ApplicationStatus) {
	if s.collector != nil {
		s.collector.RecordApplicationStatus(string(status))
	}
}
