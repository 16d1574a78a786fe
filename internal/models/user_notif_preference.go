package models

import (
	"time"

	"gorm.io/gorm"
)

// UserNotifPreference holds a user's e-mail notification opt-outs. A user
// without a row gets all notifications.
type UserNotifPreference struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`

	UserID uint `gorm:"uniqueIndex" json:"user_id"`

	BookingConfirmation bool `gorm:"default:true" json:"booking_confirmation"`
	PaymentReminder     bool `gorm:"default:true" json:"payment_reminder"`
}
