package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"travelbook_app/internal/models"
)

// SessionRepository stores the local mirrors of gateway checkout sessions
type SessionRepository interface {
	Create(ctx context.Context, session *models.PaymentSession) error
	ActiveForBooking(ctx context.Context, bookingID uint) (*models.PaymentSession, error)
	GetByOrderID(ctx context.Context, orderID string) (*models.PaymentSession, error)
	Deactivate(ctx context.Context, id uint) error
}

type gormSessionRepository struct {
	db *gorm.DB
}

// NewSessionRepository returns a GORM-backed SessionRepository
func NewSessionRepository(db *gorm.DB) SessionRepository {
	return &gormSessionRepository{db: db}
}

func (r *gormSessionRepository) Create(ctx context.Context, session *models.PaymentSession) error {
	return r.db.WithContext(ctx).Create(session).Error
}

// ActiveForBooking returns the newest active session for the booking, or
// (nil, nil) when there is none.
func (r *gormSessionRepository) ActiveForBooking(ctx context.Context, bookingID uint) (*models.PaymentSession, error) {
	var session models.PaymentSession
	err := r.db.WithContext(ctx).
		Where("booking_id = ? AND is_active = ?", bookingID, true).
		Order("created_at desc").
		First(&session).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &session, nil
}

func (r *gormSessionRepository) GetByOrderID(ctx context.Context, orderID string) (*models.PaymentSession, error) {
	var session models.PaymentSession
	err := r.db.WithContext(ctx).Where("order_id = ?", orderID).First(&session).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &session, nil
}

func (r *gormSessionRepository) Deactivate(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Model(&models.PaymentSession{}).
		Where("id = ?", id).
		Update("is_active", false).Error
}
