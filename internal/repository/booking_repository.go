package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"travelbook_app/internal/models"
)

// ErrNotFound is returned when a requested row does not exist
var ErrNotFound = errors.New("record not found")

// BookingRepository is the persistence boundary for bookings. Status
// transitions go through TransitionIfPaymentStatus so that a write only
// lands when the row is still in the state the caller inspected.
type BookingRepository interface {
	Create(ctx context.Context, booking *models.Booking) error
	GetByID(ctx context.Context, id uint) (*models.Booking, error)
	GetByReference(ctx context.Context, reference string) (*models.Booking, error)
	ListByUser(ctx context.Context, userID uint) ([]models.Booking, error)
	ListStalePending(ctx context.Context, before time.Time) ([]models.Booking, error)
	SetPaymentSessionID(ctx context.Context, id uint, sessionID string) error
	TransitionIfPaymentStatus(ctx context.Context, id uint, expected models.PaymentStatus, updates map[string]interface{}) (bool, error)
	Delete(ctx context.Context, id uint) error
}

type gormBookingRepository struct {
	db *gorm.DB
}

// NewBookingRepository returns a GORM-backed BookingRepository
func NewBookingRepository(db *gorm.DB) BookingRepository {
	return &gormBookingRepository{db: db}
}

func (r *gormBookingRepository) Create(ctx context.Context, booking *models.Booking) error {
	return r.db.WithContext(ctx).Create(booking).Error
}

func (r *gormBookingRepository) GetByID(ctx context.Context, id uint) (*models.Booking, error) {
	var booking models.Booking
	err := r.db.WithContext(ctx).Preload("Package").First(&booking, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &booking, nil
}

func (r *gormBookingRepository) GetByReference(ctx context.Context, reference string) (*models.Booking, error) {
	var booking models.Booking
	err := r.db.WithContext(ctx).Preload("Package").Where("reference = ?", reference).First(&booking).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &booking, nil
}

func (r *gormBookingRepository) ListByUser(ctx context.Context, userID uint) ([]models.Booking, error) {
	var bookings []models.Booking
	err := r.db.WithContext(ctx).Preload("Package").
		Where("user_id = ?", userID).
		Order("created_at desc").
		Find(&bookings).Error
	return bookings, err
}

func (r *gormBookingRepository) ListStalePending(ctx context.Context, before time.Time) ([]models.Booking, error) {
	var bookings []models.Booking
	err := r.db.WithContext(ctx).
		Where("status = ? AND payment_status = ? AND created_at < ?",
			models.BookingStatusPending, models.PaymentStatusPending, before).
		Find(&bookings).Error
	return bookings, err
}

func (r *gormBookingRepository) SetPaymentSessionID(ctx context.Context, id uint, sessionID string) error {
	return r.db.WithContext(ctx).Model(&models.Booking{}).
		Where("id = ?", id).
		Update("payment_session_id", sessionID).Error
}

// TransitionIfPaymentStatus applies updates only while the booking's payment
// status still equals expected. Returns false when the row has moved on,
// which callers treat as "someone else got there first", not as an error.
func (r *gormBookingRepository) TransitionIfPaymentStatus(ctx context.Context, id uint, expected models.PaymentStatus, updates map[string]interface{}) (bool, error) {
	res := r.db.WithContext(ctx).Model(&models.Booking{}).
		Where("id = ? AND payment_status = ?", id, expected).
		Updates(updates)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *gormBookingRepository) Delete(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Unscoped().Delete(&models.Booking{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
