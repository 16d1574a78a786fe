package models

import (
	"time"
)

// AuditSource identifies which code path performed a booking transition
type AuditSource string

const (
	AuditSourceCheckout AuditSource = "checkout"
	AuditSourceCallback AuditSource = "callback"
	AuditSourceWebhook  AuditSource = "webhook"
	AuditSourceAdmin    AuditSource = "admin"
	AuditSourceWorker   AuditSource = "worker"
)

// BookingStatusAudit is one entry in the booking audit trail: who moved a
// booking from which state to which, when, through which path. Rows are
// plain inserts with no soft delete and no foreign key constraint, so the
// trail survives a hard delete of the booking itself.
type BookingStatusAudit struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`

	BookingID uint `gorm:"index" json:"booking_id"`

	// ActorID is the user who caused the transition; zero for gateway
	// callbacks and worker sweeps
	ActorID uint `gorm:"index" json:"actor_id"`

	Source AuditSource `gorm:"type:varchar(20)" json:"source"`

	FromStatus        BookingStatus `gorm:"type:varchar(20)" json:"from_status"`
	ToStatus          BookingStatus `gorm:"type:varchar(20)" json:"to_status"`
	FromPaymentStatus PaymentStatus `gorm:"type:varchar(20)" json:"from_payment_status"`
	ToPaymentStatus   PaymentStatus `gorm:"type:varchar(20)" json:"to_payment_status"`

	Note string `gorm:"type:text" json:"note"`
}
