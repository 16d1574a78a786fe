package models

import (
	"time"

	"gorm.io/gorm"
)

// PaymentRecord records a settled payment for a booking
type PaymentRecord struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`

	BookingID      uint           `gorm:"index" json:"booking_id"`
	UserID         uint           `gorm:"index" json:"user_id"`
	TotalPay       float64        `gorm:"type:decimal(15,2)" json:"total_pay"`
	PaymentGateway PaymentGateway `gorm:"type:varchar(50)" json:"payment_gateway"`
	ChannelPayment string         `gorm:"type:varchar(100)" json:"channel_payment"` // e.g., "bank_transfer", "e-wallet"
	TransactionID  string         `gorm:"type:varchar(100)" json:"transaction_id"`
	PaymentDate    time.Time      `json:"payment_date"`

	// Relationships
	Booking Booking  `gorm:"foreignKey:BookingID" json:"booking,omitempty"`
	User    User     `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Refunds []Refund `gorm:"foreignKey:PaymentRecordID" json:"refunds,omitempty"`
}
