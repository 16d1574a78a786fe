package models

import (
	"encoding/json"
	"time"

	"gorm.io/gorm"
)

// PaymentSession mirrors one checkout attempt on the payment gateway. The
// gateway's own record stays authoritative; these rows exist for session
// reuse and for correlating callbacks back to a booking and its owner.
type PaymentSession struct {
	ID               uint            `gorm:"primaryKey" json:"id"`
	BookingID        uint            `gorm:"index" json:"booking_id"`
	UserID           uint            `gorm:"index" json:"user_id"`
	PaymentGateway   PaymentGateway  `gorm:"type:varchar(50);not null" json:"payment_gateway"`
	OrderID          string          `gorm:"type:varchar(100);index" json:"order_id"`
	Amount           float64         `gorm:"type:decimal(15,2)" json:"amount"`
	IsActive         bool            `gorm:"default:true" json:"is_active"`
	RequestMetadata  json.RawMessage `gorm:"type:jsonb" json:"request_metadata"`
	ResponseMetadata json.RawMessage `gorm:"type:jsonb" json:"response_metadata"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
	DeletedAt        gorm.DeletedAt  `gorm:"index" json:"deleted_at,omitempty"`
}
