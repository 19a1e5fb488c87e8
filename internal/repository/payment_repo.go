package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"enrollment-api/internal/model"
)

type PaymentRepository struct {
	*Repository[model.Payment, *model.Payment]
}

func NewPaymentRepository(db *gorm.DB) *PaymentRepository {
	return &PaymentRepository{Repository: New[model.Payment, *model.Payment](db)}
}

func (r *PaymentRepository) ListByApplication(ctx context.Context, applicationID uuid.UUID) ([]*model.Payment, error) {
	return r.Find(ctx, "application_id = ?", applicationID)
}

// TotalPaidCents sums completed payments minus refunds for an application.
func (r *PaymentRepository) TotalPaidCents(ctx context.Context, applicationID uuid.UUID) (int64, error) {
	var paid, refunded int64

	err := r.Query(ctx).
		Select("COALESCE(SUM(amount_cents), 0)").
		Where("application_id = ? AND type = ?", applicationID, model.PaymentTypePayment).
		Scan(&paid).Error
	if err != nil {
		return 0, err
	}

	err = r.Query(ctx).
		Select("COALESCE(SUM(amount_cents), 0)").
		Where("application_id = ? AND type = ?", applicationID, model.PaymentTypeRefund).
		Scan(&refunded).Error
	if err != nil {
		return 0, err
	}

	return paid - refunded, nil
}
