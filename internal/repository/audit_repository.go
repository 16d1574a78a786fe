package repository

import (
	"context"

	"gorm.io/gorm"

	"travelbook_app/internal/models"
)

// AuditRepository appends to the booking audit trail. Append-only; there is
// deliberately no update or delete.
type AuditRepository interface {
	Record(ctx context.Context, entry *models.BookingStatusAudit) error
	ListForBooking(ctx context.Context, bookingID uint) ([]models.BookingStatusAudit, error)
}

type gormAuditRepository struct {
	db *gorm.DB
}

// NewAuditRepository returns a GORM-backed AuditRepository
func NewAuditRepository(db *gorm.DB) AuditRepository {
	return &gormAuditRepository{db: db}
}

func (r *gormAuditRepository) Record(ctx context.Context, entry *models.BookingStatusAudit) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *gormAuditRepository) ListForBooking(ctx context.Context, bookingID uint) ([]models.BookingStatusAudit, error) {
	var entries []models.BookingStatusAudit
	err := r.db.WithContext(ctx).
		Where("booking_id = ?", bookingID).
		Order("created_at asc").
		Find(&entries).Error
	return entries, err
}
