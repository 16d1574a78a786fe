package models

import (
	"time"

	"gorm.io/gorm"
)

// Refund records a refund owed to a user. Rows are created when an admin
// override downgrades a paid booking; actually moving the money back is a
// manual support operation tracked elsewhere.
type Refund struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`

	BookingID       uint           `gorm:"index" json:"booking_id"`
	PaymentRecordID uint           `gorm:"index" json:"payment_record_id"`
	UserID          uint           `gorm:"index" json:"user_id"`
	TotalRefund     float64        `gorm:"type:decimal(15,2)" json:"total_refund"`
	PaymentGateway  PaymentGateway `gorm:"type:varchar(50)" json:"payment_gateway"`
	Reason          string         `gorm:"type:text" json:"reason"`
	RefundDate      time.Time      `json:"refund_date"`

	// Relationships
	Booking       Booking       `gorm:"foreignKey:BookingID" json:"booking,omitempty"`
	PaymentRecord PaymentRecord `gorm:"foreignKey:PaymentRecordID" json:"payment_record,omitempty"`
	User          User          `gorm:"foreignKey:UserID" json:"user,omitempty"`
}
