package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"travelbook_app/internal/models"
)

// PaymentRecordRepository stores settled payments and refunds
type PaymentRecordRepository interface {
	Record(ctx context.Context, payment *models.PaymentRecord) error
	LatestForBooking(ctx context.Context, bookingID uint) (*models.PaymentRecord, error)
	RecordRefund(ctx context.Context, refund *models.Refund) error
}

type gormPaymentRecordRepository struct {
	db *gorm.DB
}

// NewPaymentRecordRepository returns a GORM-backed PaymentRecordRepository
func NewPaymentRecordRepository(db *gorm.DB) PaymentRecordRepository {
	return &gormPaymentRecordRepository{db: db}
}

func (r *gormPaymentRecordRepository) Record(ctx context.Context, payment *models.PaymentRecord) error {
	return r.db.WithContext(ctx).Create(payment).Error
}

func (r *gormPaymentRecordRepository) LatestForBooking(ctx context.Context, bookingID uint) (*models.PaymentRecord, error) {
	var payment models.PaymentRecord
	err := r.db.WithContext(ctx).
		Where("booking_id = ?", bookingID).
		Order("payment_date desc").
		First(&payment).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &payment, nil
}

func (r *gormPaymentRecordRepository) RecordRefund(ctx context.Context, refund *models.Refund) error {
	return r.db.WithContext(ctx).Create(refund).Error
}
